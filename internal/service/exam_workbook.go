package service

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/model"
	"github.com/maliky/schedule-checker-app/internal/pipeline"
)

// ── 考试安排工作簿解析 ──

const stageExam = "exam"

// examColumns 考试表列名（小写、压缩空白后）→ 字段名
var examColumns = map[string]string{
	"n0.":                       "no",
	"course code":               "course_code",
	"course n0.":                "course_no",
	"course title":              "course_title",
	"sec":                       "section",
	"day & time":                "day_time",
	"location/room":             "location",
	"instructor/ proctor":       "instructor",
	"exam day":                  "exam_date",
	"exam date":                 "exam_date",
	"remedial program schedule": "program",
	"time":                      "time",
}

var (
	examTimePattern = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:am|pm)?\s*(?:-|to)\s*\d{1,2}(?::\d{2})?\s*(?:am|pm))`)
	examToPattern   = regexp.MustCompile(`(?i)\s*to\s*`)
)

var examDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006/01/02",
	"2-Jan-2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, January 2, 2006",
}

// ExamWorkbookOptions 考试表解析参数
type ExamWorkbookOptions struct {
	Sheets       []string
	HeaderMarker string
	Meridiem     pipeline.MeridiemPolicy
}

// ExamOutcome 考试表解析结果
type ExamOutcome struct {
	RunID     string
	Records   []model.ExamRecord
	Anomalies []model.Anomaly
}

// ProcessExamWorkbook 逐个工作表解析考试安排
//
// 表头行含 marker，空白表头单元格沿用左侧列名，表头下一行是说明行被跳过。
// 工作表名作为学院；"Day & Time" 拆成星期文本与时间区间，时间区间复用
// 课表流水线的规范化与上下午推断，再与考试日期组合。
func ProcessExamWorkbook(r io.Reader, opts ExamWorkbookOptions, logger *zap.Logger) (*ExamOutcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableExcel, err)
	}
	defer f.Close()

	sheets := opts.Sheets
	if len(sheets) == 0 {
		sheets = f.GetSheetList()
	}
	logger.Info("开始解析考试安排", zap.Strings("sheets", sheets))

	rep := pipeline.NewReport(logger)
	out := &ExamOutcome{}
	for _, sheet := range sheets {
		rows, err := readSheet(f, sheet)
		if err != nil {
			return nil, err
		}
		records, err := parseExamSheet(rows, sheet, opts, rep)
		if err != nil {
			return nil, err
		}
		logger.Info("考试工作表解析完成", zap.String("sheet", sheet), zap.Int("records", len(records)))
		out.Records = append(out.Records, records...)
	}
	out.Anomalies = rep.Anomalies()
	return out, nil
}

func parseExamSheet(rows [][]string, sheet string, opts ExamWorkbookOptions, rep *pipeline.Report) ([]model.ExamRecord, error) {
	headerIdx := findHeaderRow(rows, opts.HeaderMarker)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: 工作表 %q 中没有含 %q 的行", ErrHeaderNotFound, sheet, opts.HeaderMarker)
	}

	colIndex := make(map[string]int)
	prev := ""
	for j, h := range rows[headerIdx] {
		name := strings.ToLower(pipeline.CollapseSpace(h))
		if name == "" {
			name = prev
		}
		prev = name
		if name == "" {
			continue
		}
		field, ok := examColumns[name]
		if !ok {
			field = strings.ReplaceAll(name, " ", "_")
		}
		if _, seen := colIndex[field]; !seen {
			colIndex[field] = j
		}
	}
	if _, ok := colIndex["day_time"]; !ok {
		return nil, fmt.Errorf("%w: 工作表 %q 缺少 Day & Time 列", ErrMissingColumns, sheet)
	}

	var records []model.ExamRecord
	for i := headerIdx + 2; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		get := func(field string) string {
			idx, ok := colIndex[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return pipeline.CollapseSpace(row[idx])
		}

		rowNo := rowKey(get("no"), i+1)
		rec := model.ExamRecord{
			CourseCode:  get("course_code"),
			CourseNo:    get("course_no"),
			CourseTitle: get("course_title"),
			Section:     pipeline.FormatSection(get("section")),
			Instructor:  get("instructor"),
			Location:    get("location"),
			College:     sheet,
		}
		if rec.CourseCode == "" && rec.CourseNo == "" {
			continue
		}

		dayText, timeText := SplitDayTime(get("day_time"))
		rec.WeekdayText = dayText
		if timeText == "" {
			rep.Add(model.Anomaly{
				Row: rowNo, Stage: stageExam, Kind: model.AnomalyDroppedRow,
				Field: "day_time", Value: get("day_time"),
				Message: fmt.Sprintf("[%s] 未找到考试时间区间，已丢弃", sheet),
			})
			continue
		}
		rec.Time = pipeline.CanonicalizeTime(timeText)

		if dateText := get("exam_date"); dateText != "" {
			if d, ok := parseExamDate(dateText); ok {
				rec.ExamDate = &d
			} else {
				rep.Add(model.Anomaly{
					Row: rowNo, Stage: stageExam, Kind: model.AnomalyTimeUnresolved,
					Field: "exam_date", Value: dateText,
					Message: fmt.Sprintf("[%s] 考试日期无法解析", sheet),
				})
			}
		}

		resolveExamTime(&rec, rowNo, opts.Meridiem, rep)

		rec.Weekday = dayText
		if rec.StartAt != nil && rec.ExamDate != nil {
			rec.Weekday = rec.StartAt.Weekday().String()
		}
		rec.CID = strings.ToLower(fmt.Sprintf("%s_%s_exam_%s", rec.CourseCode, rec.CourseNo, rec.Section))
		records = append(records, rec)
	}
	return records, nil
}

// resolveExamTime 拆分、推断上下午并与考试日期组合
func resolveExamTime(rec *model.ExamRecord, rowNo int, policy pipeline.MeridiemPolicy, rep *pipeline.Report) {
	fail := func(err error) {
		rep.Add(model.Anomaly{
			Row: rowNo, Stage: stageExam, Kind: model.AnomalyTimeUnresolved,
			Field: "time", Value: rec.Time, Message: err.Error(),
		})
	}

	iv, err := pipeline.SplitInterval(rec.Time)
	if err != nil {
		fail(err)
		return
	}
	res, err := policy.Resolve(pipeline.FixClockTypo(iv.Stime), pipeline.FixClockTypo(iv.Etime), iv.Meridiem)
	if err != nil {
		fail(err)
		return
	}

	start, end := res.Start, res.End
	if rec.ExamDate != nil {
		d := *rec.ExamDate
		start = time.Date(d.Year(), d.Month(), d.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
		end = time.Date(d.Year(), d.Month(), d.Day(), end.Hour(), end.Minute(), 0, 0, time.UTC)
	}
	rec.StartAt, rec.EndAt = &start, &end
	rec.StartTime = start.Format("15:04")
	rec.EndTime = end.Format("15:04")
}

// SplitDayTime 把 "Monday, Dec 16 (9:00 - 11:00am)" 拆成星期文本与时间区间
//
// 找不到时间区间时返回整段文本与空串。
func SplitDayTime(value string) (string, string) {
	value = strings.TrimSpace(value)
	loc := examTimePattern.FindStringSubmatchIndex(value)
	if loc == nil {
		return value, ""
	}
	day := strings.Trim(value[:loc[0]], " ,(")
	t := strings.Trim(strings.TrimSpace(value[loc[2]:loc[3]]), "()")
	t = examToPattern.ReplaceAllString(t, "-")
	t = strings.ReplaceAll(t, " ", "")
	return day, t
}

// parseExamDate 考试日期可能是 Excel 序列号或各种文本日期
func parseExamDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	for _, layout := range examDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
