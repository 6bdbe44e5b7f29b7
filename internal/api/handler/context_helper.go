package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/maliky/schedule-checker-app/internal/dto"
	"github.com/maliky/schedule-checker-app/internal/pipeline"
	"github.com/maliky/schedule-checker-app/internal/repository"
	"github.com/maliky/schedule-checker-app/internal/service"
	apperrors "github.com/maliky/schedule-checker-app/pkg/errors"
	"github.com/maliky/schedule-checker-app/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// MustOpenUpload 从 multipart 字段 file 取出工作簿。
// 失败时已写入响应，调用方应在 ok=false 时直接 return 。
func MustOpenUpload(c *gin.Context) (multipart.File, string, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return nil, "", false
		}
		response.BadRequest(c, 20001, "请上传文件（字段 file）")
		return nil, "", false
	}
	if err := apperrors.CheckWorkbookName(header.Filename); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 20002, err.Error(), header.Filename)
		return nil, "", false
	}
	if header.Size == 0 {
		response.BadRequest(c, 20001, apperrors.ErrEmptyFile.Error())
		return nil, "", false
	}
	file, err := header.Open()
	if err != nil {
		response.InternalError(c)
		return nil, "", false
	}
	return file, header.Filename, true
}

// MustGetRunID 读取可选的 run_id 查询参数，缺省为空串（取最近一次）
func MustGetRunID(c *gin.Context) (string, bool) {
	var q dto.ArtifactQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return "", false
	}
	return q.RunID, true
}

// sendArtifact 写出产物；attachment 为 true 时作为下载文件
func sendArtifact(c *gin.Context, runID string, data []byte, filename, contentType string, attachment bool) {
	c.Header("X-Run-ID", runID)
	if attachment {
		encodedFilename := url.QueryEscape(filename)
		c.Header("Content-Description", "File Transfer")
		c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	}
	c.Data(http.StatusOK, contentType, data)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// handleProcessError 课表与考试表共用的错误映射
func handleProcessError(c *gin.Context, err error) {
	var (
		rowErr     *pipeline.RowError
		specialErr *pipeline.SpecialCaseError
	)
	switch {
	case isBodyTooLarge(err):
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
	case errors.Is(err, service.ErrUnreadableExcel):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20003, "无法解析 Excel 文件", err.Error())
	case errors.Is(err, service.ErrSheetNotFound):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20004, "工作表不存在", err.Error())
	case errors.Is(err, service.ErrHeaderNotFound):
		response.UnprocessableEntity(c, 20005, "未找到表头行", err.Error())
	case errors.Is(err, service.ErrMissingColumns):
		response.UnprocessableEntity(c, 20006, "表头缺少必要列", err.Error())
	case errors.Is(err, service.ErrNoRows):
		response.UnprocessableEntity(c, 20007, "工作表无数据行", err.Error())
	case errors.Is(err, service.ErrTooManyRows):
		response.UnprocessableEntity(c, 20008, "数据行数超过上限", err.Error())
	case errors.As(err, &rowErr):
		response.UnprocessableEntity(c, 20101, "课表数据无法规范化，请修正源数据", err.Error())
	case errors.As(err, &specialErr):
		response.UnprocessableEntity(c, 20102, "拆分行无法确定，请修正源数据", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// handleArtifactError 读取产物的错误映射
func handleArtifactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNothingProcessed):
		response.NotFound(c, 20201, "尚无处理结果，请先上传")
	case errors.Is(err, service.ErrArtifactMissing):
		response.NotFound(c, 20202, "该批次没有此产物")
	case errors.Is(err, repository.ErrInvalidRunID):
		response.BadRequest(c, 20203, "run_id 格式非法")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
