package service

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/maliky/schedule-checker-app/internal/model"
	"github.com/maliky/schedule-checker-app/internal/pipeline"
)

// ── 课表工作簿加载 ──

const (
	maxScheduleRows = 20000
	stageLoad       = "load"
)

var (
	ErrSheetNotFound   = errors.New("工作表不存在")
	ErrHeaderNotFound  = errors.New("未找到表头行")
	ErrMissingColumns  = errors.New("表头缺少必要列")
	ErrNoRows          = errors.New("工作表无数据行")
	ErrTooManyRows     = fmt.Errorf("数据行数超过上限 %d 行", maxScheduleRows)
	ErrUnreadableExcel = errors.New("无法解析Excel文件")
)

// scheduleColumns 规范化列名 → 字段名
var scheduleColumns = map[string]string{
	"no":            "no",
	"n0":            "no",
	"course_code":   "course_code",
	"code":          "course_code",
	"course_n0":     "course_no",
	"course_no":     "course_no",
	"course_number": "course_no",
	"course_title":  "course_title",
	"title":         "course_title",
	"credit":        "credit",
	"credits":       "credit",
	"cr":            "credit",
	"sec":           "section",
	"section":       "section",
	"instructor":    "instructor",
	"location":      "location",
	"room":          "location",
	"location/room": "location",
	"days":          "days",
	"day":           "days",
	"time":          "time",
	"capacity":      "capacity",
	"cap":           "capacity",
}

var requiredScheduleColumns = []string{"course_code", "course_no", "days", "time"}

// LoadedSchedule 加载结果：原始行 + 被丢弃的行
type LoadedSchedule struct {
	Sheet   string
	Rows    []model.RawOffering
	Dropped []model.Anomaly
}

// LoadSchedule 读取课表工作表
//
// 表头行是第一个含 marker（大小写不敏感）的行，数据从下一行开始。
// 全空行直接跳过；课程代码与课程号都为空的行记为 dropped_row。
// sheet 为空时取第一个工作表。
func LoadSchedule(r io.Reader, sheet, marker string) (*LoadedSchedule, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableExcel, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := readSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	headerIdx := findHeaderRow(rows, marker)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: 工作表 %q 中没有含 %q 的行", ErrHeaderNotFound, sheet, marker)
	}

	colIndex := make(map[string]int)
	for j, h := range rows[headerIdx] {
		field, ok := scheduleColumns[pipeline.NormalizeHeader(pipeline.CollapseSpace(h))]
		if !ok {
			continue
		}
		if _, seen := colIndex[field]; !seen {
			colIndex[field] = j
		}
	}
	var missing []string
	for _, field := range requiredScheduleColumns {
		if _, ok := colIndex[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	out := &LoadedSchedule{Sheet: sheet}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		get := func(field string) string {
			idx, ok := colIndex[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		item := model.RawOffering{
			No:          rowKey(get("no"), i+1),
			CourseCode:  get("course_code"),
			CourseNo:    get("course_no"),
			CourseTitle: get("course_title"),
			Credit:      get("credit"),
			Section:     get("section"),
			Instructor:  get("instructor"),
			Location:    get("location"),
			Days:        get("days"),
			Time:        get("time"),
			Capacity:    get("capacity"),
		}

		if item.CourseCode == "" && item.CourseNo == "" {
			out.Dropped = append(out.Dropped, model.Anomaly{
				Row:     item.No,
				Stage:   stageLoad,
				Kind:    model.AnomalyDroppedRow,
				Field:   "course_code",
				Value:   strings.Join(row, " | "),
				Message: "课程代码与课程号均为空，已丢弃",
			})
			continue
		}
		out.Rows = append(out.Rows, item)
	}

	if len(out.Rows) == 0 {
		return nil, ErrNoRows
	}
	if len(out.Rows) > maxScheduleRows {
		return nil, ErrTooManyRows
	}
	return out, nil
}

// ── 辅助函数 ──

func readSheet(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	return rows, nil
}

// findHeaderRow 返回第一个含 marker 的行下标，找不到返回 -1
func findHeaderRow(rows [][]string, marker string) int {
	needle := strings.ToLower(marker)
	for i, row := range rows {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), needle) {
				return i
			}
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// rowKey 行键取 N0. 列（表格里可能是 "12" 或 "12.0"），否则用工作表行号
func rowKey(value string, sheetRow int) int {
	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		return int(f)
	}
	return sheetRow
}
