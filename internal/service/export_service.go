package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRows       = errors.New("没有可导出的课表行")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const (
	scheduleSheet  = "schedule"
	anomalySheet   = "anomalies"
	conflictSheet  = "conflicts"
	examSheet      = "exams"
	timestampStyle = "2006-01-02 15:04:05"

	ProcessedScheduleFile = "processed_schedule.xlsx"
	ProcessedExamFile     = "processed_exams.xlsx"
)

// scheduleHeader 输出列顺序固定，下游脚本按列位置读取
var scheduleHeader = []interface{}{
	"college", "cid", "instructor", "course_title", "weekday",
	"start_time", "end_time", "location", "credit", "ets", "sts", "oldidx",
}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 或 CLI 决定写到响应还是文件。
type ExportService interface {
	// ExportSchedule 输出课表，附带异常与冲突两个工作表
	ExportSchedule(rows []model.ScheduleRow, anomalies []model.Anomaly, conflicts []model.Conflict) (*bytes.Buffer, string, error)
	// ExportExams 输出考试安排
	ExportExams(records []model.ExamRecord) (*bytes.Buffer, string, error)
}

type exportService struct {
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(logger *zap.Logger) ExportService {
	return &exportService{logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule：课表写出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "schedule"：固定列顺序，首行加粗
//   - Sheet "anomalies"：被降级处理的行
//   - Sheet "conflicts"：教室/教师冲突
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSchedule(rows []model.ScheduleRow, anomalies []model.Anomaly, conflicts []model.Conflict) (*bytes.Buffer, string, error) {
	if len(rows) == 0 {
		return nil, "", ErrExportNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		s.logger.Error("创建表头样式失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	body := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		body = append(body, []interface{}{
			r.College, r.CID, r.Instructor, r.CourseTitle, r.Weekday,
			r.StartTime, r.EndTime, r.Location, r.Credit,
			formatTimestamp(r.Ets), formatTimestamp(r.Sts), r.OldIdx,
		})
	}
	if err := writeSheet(f, scheduleSheet, scheduleHeader, body, headerStyle); err != nil {
		s.logger.Error("写入课表工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	body = body[:0]
	for _, a := range anomalies {
		body = append(body, []interface{}{a.Row, a.Stage, string(a.Kind), a.Field, a.Value, a.Message})
	}
	anomalyHeader := []interface{}{"row", "stage", "kind", "field", "value", "message"}
	if err := writeSheet(f, anomalySheet, anomalyHeader, body, headerStyle); err != nil {
		s.logger.Error("写入异常工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	body = body[:0]
	for _, c := range conflicts {
		body = append(body, []interface{}{
			c.Weekday, c.Dimension, c.Value, string(c.Kind),
			c.First, c.FirstRow, c.Second, c.SecondRow,
			c.From.Format("15:04"), c.To.Format("15:04"),
		})
	}
	conflictHeader := []interface{}{"weekday", "dimension", "value", "kind",
		"first_cid", "first_row", "second_cid", "second_row", "from", "to"}
	if err := writeSheet(f, conflictSheet, conflictHeader, body, headerStyle); err != nil {
		s.logger.Error("写入冲突工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return s.finish(f, scheduleSheet, ProcessedScheduleFile)
}

// ═══════════════════════════════════════════════════════════
// ExportExams：考试安排写出为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportExams(records []model.ExamRecord) (*bytes.Buffer, string, error) {
	if len(records) == 0 {
		return nil, "", ErrExportNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}

	header := []interface{}{"sts", "ets", "weekday", "course_code", "course_no", "course_title",
		"section", "instructor", "location", "college", "start_time", "end_time", "exam_date", "cid"}
	body := make([][]interface{}, 0, len(records))
	for _, r := range records {
		examDate := ""
		if r.ExamDate != nil {
			examDate = r.ExamDate.Format("2006-01-02")
		}
		body = append(body, []interface{}{
			formatTimestamp(r.StartAt), formatTimestamp(r.EndAt), r.Weekday,
			r.CourseCode, r.CourseNo, r.CourseTitle, r.Section, r.Instructor, r.Location,
			r.College, r.StartTime, r.EndTime, examDate, r.CID,
		})
	}
	if err := writeSheet(f, examSheet, header, body, headerStyle); err != nil {
		s.logger.Error("写入考试工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return s.finish(f, examSheet, ProcessedExamFile)
}

func (s *exportService) finish(f *excelize.File, active, filename string) (*bytes.Buffer, string, error) {
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Warn("删除默认工作表失败", zap.Error(err))
	}
	if idx, err := f.GetSheetIndex(active); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, filename, nil
}

// ── 辅助函数 ──

func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, body [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	for i, row := range body {
		if err := f.SetSheetRow(sheet, cell("A", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampStyle)
}
