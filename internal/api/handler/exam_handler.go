package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maliky/schedule-checker-app/internal/dto"
	"github.com/maliky/schedule-checker-app/internal/repository"
	"github.com/maliky/schedule-checker-app/internal/service"
	"github.com/maliky/schedule-checker-app/pkg/response"
)

// ExamHandler 考试安排模块 Handler
type ExamHandler struct {
	svc service.ExamService
}

// NewExamHandler 创建 ExamHandler 实例
func NewExamHandler(svc service.ExamService) *ExamHandler {
	return &ExamHandler{svc: svc}
}

// Upload 上传考试安排表，返回考试记录
// POST /api/v1/exams/upload
//
// multipart/form-data: file=考试表.xlsx, sheets=可重复的工作表名
func (h *ExamHandler) Upload(c *gin.Context) {
	var req dto.ExamUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	file, _, ok := MustOpenUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	resp, err := h.svc.Process(c.Request.Context(), file, req.Sheets)
	if err != nil {
		handleProcessError(c, err)
		return
	}
	response.Created(c, resp)
}

// Download 下载考试安排工作簿
// GET /api/v1/exams/download?run_id=xxx
func (h *ExamHandler) Download(c *gin.Context) {
	h.serve(c, repository.ArtifactExamWorkbook, contentTypeXLSX, true)
}

// Calendar 考试日历
// GET /api/v1/exams/calendar.ics?run_id=xxx
func (h *ExamHandler) Calendar(c *gin.Context) {
	h.serve(c, repository.ArtifactExamCalendar, contentTypeICS, true)
}

// Records 最近一次（或指定批次）的考试记录 JSON
// GET /api/v1/exams/records?run_id=xxx
func (h *ExamHandler) Records(c *gin.Context) {
	h.serve(c, repository.ArtifactExamRecords, "application/json; charset=utf-8", false)
}

func (h *ExamHandler) serve(c *gin.Context, kind repository.ArtifactKind, contentType string, attachment bool) {
	runID, ok := MustGetRunID(c)
	if !ok {
		return
	}
	data, runID, err := h.svc.Artifact(c.Request.Context(), runID, kind)
	if err != nil {
		handleArtifactError(c, err)
		return
	}
	sendArtifact(c, runID, data, string(kind), contentType, attachment)
}
