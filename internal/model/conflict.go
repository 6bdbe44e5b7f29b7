package model

import "time"

// ConflictKind 冲突类型
type ConflictKind string

const (
	ConflictOverlap   ConflictKind = "overlap"   // 时间部分重叠
	ConflictDuplicate ConflictKind = "duplicate" // 起止时间完全相同
)

// Conflict 同一天内共享教室或教师的两次课之间的冲突（只读，供可视化使用）
type Conflict struct {
	Weekday   string       `json:"weekday"`
	Dimension string       `json:"dimension"` // location | instructor
	Value     string       `json:"value"`     // 教室名或教师名
	Kind      ConflictKind `json:"kind"`
	First     string       `json:"first_cid"`
	Second    string       `json:"second_cid"`
	FirstRow  int          `json:"first_row"`
	SecondRow int          `json:"second_row"`
	From      time.Time    `json:"from"` // 重叠区间
	To        time.Time    `json:"to"`
}
