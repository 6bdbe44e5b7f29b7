package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maliky/schedule-checker-app/internal/dto"
	"github.com/maliky/schedule-checker-app/internal/repository"
	"github.com/maliky/schedule-checker-app/internal/service"
	"github.com/maliky/schedule-checker-app/pkg/response"
)

// ScheduleHandler 课表模块 Handler
type ScheduleHandler struct {
	svc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler 实例
func NewScheduleHandler(svc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// Upload 上传课表并处理
// POST /api/v1/schedules/upload
//
// multipart/form-data: file=课表.xlsx, sheet=可选工作表名
func (h *ScheduleHandler) Upload(c *gin.Context) {
	var req dto.ScheduleUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	file, _, ok := MustOpenUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	resp, err := h.svc.Process(c.Request.Context(), file, req.Sheet)
	if err != nil {
		handleProcessError(c, err)
		return
	}
	response.Created(c, resp)
}

// Download 下载处理后的课表工作簿
// GET /api/v1/schedules/download?run_id=xxx
func (h *ScheduleHandler) Download(c *gin.Context) {
	h.serve(c, repository.ArtifactWorkbook, contentTypeXLSX, true)
}

// Chart 教室或教师甘特图
// GET /api/v1/schedules/charts/:kind?run_id=xxx
func (h *ScheduleHandler) Chart(c *gin.Context) {
	var req dto.ChartRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "图表类型只能是 room 或 instructor", err.Error())
		return
	}
	kind := repository.ArtifactRoomChart
	if req.Kind == "instructor" {
		kind = repository.ArtifactInstructorChart
	}
	h.serve(c, kind, contentTypeHTML, false)
}

// Calendar 课表日历
// GET /api/v1/schedules/calendar.ics?run_id=xxx
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	h.serve(c, repository.ArtifactCalendar, contentTypeICS, true)
}

// Report 处理报告（异常 + 冲突）
// GET /api/v1/schedules/report?run_id=xxx
func (h *ScheduleHandler) Report(c *gin.Context) {
	h.serve(c, repository.ArtifactReport, "application/json; charset=utf-8", false)
}

func (h *ScheduleHandler) serve(c *gin.Context, kind repository.ArtifactKind, contentType string, attachment bool) {
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
