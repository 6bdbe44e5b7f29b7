package dto

import "github.com/maliky/schedule-checker-app/internal/model"

// ── 课表模块 DTO ──

// ScheduleUploadRequest 课表上传附加参数（文件走 multipart 字段 file）
type ScheduleUploadRequest struct {
	Sheet string `form:"sheet" binding:"omitempty,max=100"`
}

// ArtifactQuery 下载产物时可指定批次，缺省取最近一次
type ArtifactQuery struct {
	RunID string `form:"run_id" binding:"omitempty,max=64"`
}

// ChartRequest 图表类型
type ChartRequest struct {
	Kind string `uri:"kind" binding:"required,oneof=room instructor"`
}

// ── 响应 ──

// ScheduleUploadResponse 课表处理结果
type ScheduleUploadResponse struct {
	RunID         string           `json:"run_id"`
	Sheet         string           `json:"sheet"`
	Offerings     int              `json:"offerings"`
	Meetings      int              `json:"meetings"`
	Unscheduled   int              `json:"unscheduled"`
	AnomalyCounts map[string]int   `json:"anomaly_counts"`
	Anomalies     []model.Anomaly  `json:"anomalies"`
	Conflicts     []model.Conflict `json:"conflicts"`
	Links         ScheduleLinks    `json:"links"`
}

// ScheduleLinks 本批次产物下载地址
type ScheduleLinks struct {
	Workbook        string `json:"workbook"`
	RoomChart       string `json:"room_chart"`
	InstructorChart string `json:"instructor_chart"`
	Calendar        string `json:"calendar"`
}
