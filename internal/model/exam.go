package model

import "time"

// ExamRecord 考试安排表中的一场考试
type ExamRecord struct {
	StartAt     *time.Time `json:"sts,omitempty"`
	EndAt       *time.Time `json:"ets,omitempty"`
	Weekday     string     `json:"weekday"`
	WeekdayText string     `json:"weekday_text"` // 表格里手填的星期
	CourseCode  string     `json:"course_code"`
	CourseNo    string     `json:"course_no"`
	CourseTitle string     `json:"course_title"`
	Section     string     `json:"section"`
	Instructor  string     `json:"instructor"`
	Location    string     `json:"location"`
	College     string     `json:"college"` // 工作表名
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	ExamDate    *time.Time `json:"exam_date,omitempty"`
	CID         string     `json:"cid"`
	Time        string     `json:"time"`
}
