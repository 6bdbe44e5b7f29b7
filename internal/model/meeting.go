package model

import "time"

// Meeting 单次课：一个课程班在某个星期几的一次上课
//
// StartAt/EndAt 锚定在固定参考周上，只用于同一时间轴上比较与绘图。
type Meeting struct {
	Offering Offering   `json:"offering"`
	Weekday  string     `json:"weekday"` // Monday … Sunday
	StartAt  *time.Time `json:"sts,omitempty"`
	EndAt    *time.Time `json:"ets,omitempty"`
	OldIdx   int        `json:"oldidx"` // 来源课程班的行键
}

// Scheduled 是否有可比较的真实时间（排除占位与未解析行）
func (m *Meeting) Scheduled() bool {
	return m.StartAt != nil && m.EndAt != nil && !m.Offering.Unscheduled()
}

// ScheduleRow 输出给展示层与表格写出的最终投影行
type ScheduleRow struct {
	College     string     `json:"college"`
	CID         string     `json:"cid"`
	Instructor  string     `json:"instructor"`
	CourseTitle string     `json:"course_title"`
	Weekday     string     `json:"weekday"`
	StartTime   string     `json:"start_time"` // "HH:MM" 24 小时制
	EndTime     string     `json:"end_time"`
	Location    string     `json:"location"`
	Credit      string     `json:"credit"`
	Ets         *time.Time `json:"ets,omitempty"`
	Sts         *time.Time `json:"sts,omitempty"`
	OldIdx      int        `json:"oldidx"`
	Unscheduled bool       `json:"unscheduled"`
}

// HasTime 是否有可绘制的时间
func (r *ScheduleRow) HasTime() bool {
	return r.Sts != nil && r.Ets != nil && !r.Unscheduled
}
