package dto

import "github.com/maliky/schedule-checker-app/internal/model"

// ── 考试安排模块 DTO ──

// ExamUploadRequest 考试表上传附加参数，sheets 缺省取配置
type ExamUploadRequest struct {
	Sheets []string `form:"sheets" binding:"omitempty,max=20,dive,max=100"`
}

// ExamUploadResponse 考试表处理结果
type ExamUploadResponse struct {
	RunID     string             `json:"run_id"`
	Total     int                `json:"total"`
	Records   []model.ExamRecord `json:"records"`
	Anomalies []model.Anomaly    `json:"anomalies"`
	Links     ExamLinks          `json:"links"`
}

// ExamLinks 本批次产物下载地址
type ExamLinks struct {
	Workbook string `json:"workbook"`
	Calendar string `json:"calendar"`
}
