package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/model"
	"github.com/maliky/schedule-checker-app/internal/pipeline"
)

func TestSplitDayTime(t *testing.T) {
	tests := []struct {
		in       string
		wantDay  string
		wantTime string
	}{
		{"Monday, (9:00 - 11:00am)", "Monday", "9:00-11:00am"},
		{"Monday, Dec 16 (9:00 - 11:00am)", "Monday, Dec 16", "9:00-11:00am"},
		{"Tuesday 1 to 3pm", "Tuesday", "1-3pm"},
		{"Wed 8:30-10:30am", "Wed", "8:30-10:30am"},
		{"TBA", "TBA", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			day, tm := SplitDayTime(tt.in)
			if day != tt.wantDay || tm != tt.wantTime {
				t.Errorf("SplitDayTime(%q) = (%q, %q)，期望 (%q, %q)", tt.in, day, tm, tt.wantDay, tt.wantTime)
			}
		})
	}
}

func TestParseExamDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"45642", "2024-12-16", true},
		{"2024-12-16", "2024-12-16", true},
		{"12/17/2024", "2024-12-17", true},
		{"16-Dec-2024", "2024-12-16", true},
		{"someday", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseExamDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseExamDate(%q) ok = %v，期望 %v", tt.in, ok, tt.ok)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("parseExamDate(%q) = %s，期望 %s", tt.in, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

// examFixture 表头第 6 列后接一个空白列（沿用左侧列名），表头下一行为说明行
func examFixture(t *testing.T) []byte {
	return newWorkbook(t, sheetFixture{
		name: "FINAL EXAM SCHEDULE",
		rows: [][]interface{}{
			{"FINAL EXAMINATION"},
			{"N0.", "Course Code", "Course N0.", "Course Title", "Sec", "Day & Time", "", "Location/Room", "Instructor/ Proctor", "Exam Date"},
			{"", "", "", "", "", "(day)", "(time)", "", "", ""},
			{1, "BIO", "301", "Genetics", 1, "Monday, (9:00 - 11:00am)", "", "R101", "Dr. Doe", "2024-12-16"},
			{2, "CHEM", "101", "Chem I", 2, "Tuesday 1 to 3pm", "", "R102", "Dr. Roe", "12/17/2024"},
			{3, "HIS", "201", "History", 1, "TBA", "", "R103", "Dr. Poe", ""},
		},
	}).Bytes()
}

func TestProcessExamWorkbook(t *testing.T) {
	out, err := ProcessExamWorkbook(bytesReader(string(examFixture(t))), ExamWorkbookOptions{
		HeaderMarker: "N0.",
		Meridiem:     pipeline.DefaultMeridiemPolicy(),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("期望 2 条考试记录，实际 %d", len(out.Records))
	}

	tests := []struct {
		cid, weekday, start, end, date string
	}{
		{"bio_301_exam_1", "Monday", "09:00", "11:00", "2024-12-16"},
		{"chem_101_exam_2", "Tuesday", "13:00", "15:00", "2024-12-17"},
	}
	for i, tt := range tests {
		rec := out.Records[i]
		if rec.CID != tt.cid {
			t.Errorf("第 %d 条 cid = %q，期望 %q", i, rec.CID, tt.cid)
		}
		if rec.Weekday != tt.weekday || rec.StartTime != tt.start || rec.EndTime != tt.end {
			t.Errorf("第 %d 条时间 = %s %s-%s，期望 %s %s-%s", i,
				rec.Weekday, rec.StartTime, rec.EndTime, tt.weekday, tt.start, tt.end)
		}
		if rec.ExamDate == nil || rec.ExamDate.Format("2006-01-02") != tt.date {
			t.Errorf("第 %d 条考试日期不符: %v", i, rec.ExamDate)
		}
		if rec.StartAt == nil || rec.StartAt.Format("2006-01-02 15:04") != tt.date+" "+tt.start {
			t.Errorf("第 %d 条开始时刻应与考试日期组合: %v", i, rec.StartAt)
		}
		if rec.College != "FINAL EXAM SCHEDULE" {
			t.Errorf("学院应取工作表名，实际 %q", rec.College)
		}
	}

	if len(out.Anomalies) != 1 {
		t.Fatalf("期望 1 条异常，实际 %+v", out.Anomalies)
	}
	if a := out.Anomalies[0]; a.Kind != model.AnomalyDroppedRow || a.Row != 3 {
		t.Errorf("TBA 行应记为 dropped_row，实际 %+v", a)
	}
}

func TestProcessExamWorkbook_Errors(t *testing.T) {
	noDayTime := newWorkbook(t, sheetFixture{
		name: "S",
		rows: [][]interface{}{{"N0.", "Course Code", "Time"}, {}, {1, "BIO", "9-10am"}},
	})
	tests := []struct {
		name  string
		data  string
		sheet string
		want  error
	}{
		{"不是 Excel", "plain text", "", ErrUnreadableExcel},
		{"工作表不存在", string(examFixture(t)), "NOPE", ErrSheetNotFound},
		{"缺少 Day & Time 列", noDayTime.String(), "S", ErrMissingColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := ExamWorkbookOptions{HeaderMarker: "N0.", Meridiem: pipeline.DefaultMeridiemPolicy()}
			if tt.sheet != "" {
				opts.Sheets = []string{tt.sheet}
			}
			_, err := ProcessExamWorkbook(bytesReader(tt.data), opts, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("错误 = %v，期望 %v", err, tt.want)
			}
		})
	}
}
