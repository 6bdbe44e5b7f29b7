package service

import (
	"errors"
	"testing"

	"github.com/maliky/schedule-checker-app/internal/model"
)

func TestLoadSchedule(t *testing.T) {
	loaded, err := LoadSchedule(scheduleFixture(t), "GENERAL SCHEDULE", "N0.")
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if len(loaded.Rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(loaded.Rows))
	}

	bio := loaded.Rows[0]
	want := model.RawOffering{
		No: 1, CourseCode: "BIO", CourseNo: "301", CourseTitle: "Genetics", Credit: "3",
		Section: "1", Instructor: "Dr. Doe", Location: "R101", Days: "MWF", Time: "9-10:30", Capacity: "40",
	}
	if bio != want {
		t.Errorf("第一行不符:\n期望 %+v\n实际 %+v", want, bio)
	}

	chem := loaded.Rows[1]
	if chem.No != 7 {
		t.Errorf("缺少 N0. 时应使用工作表行号 7，实际 %d", chem.No)
	}
	if chem.Time != "" {
		t.Errorf("空时间应保留给流水线处理，实际 %q", chem.Time)
	}

	if len(loaded.Dropped) != 1 || loaded.Dropped[0].Row != 2 || loaded.Dropped[0].Kind != model.AnomalyDroppedRow {
		t.Errorf("期望第 2 行被记为 dropped_row，实际 %+v", loaded.Dropped)
	}
}

func TestLoadSchedule_DefaultSheet(t *testing.T) {
	loaded, err := LoadSchedule(scheduleFixture(t), "", "n0.")
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if loaded.Sheet != "GENERAL SCHEDULE" {
		t.Errorf("期望使用第一个工作表，实际 %q", loaded.Sheet)
	}
}

func TestLoadSchedule_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sheet   string
		rows    [][]interface{}
		wantErr error
	}{
		{
			name:    "工作表不存在",
			sheet:   "MISSING",
			rows:    [][]interface{}{{"N0.", "Course Code", "Course N0.", "Days", "Time"}},
			wantErr: ErrSheetNotFound,
		},
		{
			name:    "没有表头行",
			sheet:   "S",
			rows:    [][]interface{}{{"Course Code", "Days"}, {"BIO", "MWF"}},
			wantErr: ErrHeaderNotFound,
		},
		{
			name:    "缺少必要列",
			sheet:   "S",
			rows:    [][]interface{}{{"N0.", "Course Code", "Course Title"}, {1, "BIO", "Genetics"}},
			wantErr: ErrMissingColumns,
		},
		{
			name:    "没有数据行",
			sheet:   "S",
			rows:    [][]interface{}{{"N0.", "Course Code", "Course N0.", "Days", "Time"}},
			wantErr: ErrNoRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newWorkbook(t, sheetFixture{name: "S", rows: tt.rows})
			_, err := LoadSchedule(buf, tt.sheet, "N0.")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际 %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadSchedule_NotExcel(t *testing.T) {
	_, err := LoadSchedule(bytesReader("not a workbook"), "", "N0.")
	if !errors.Is(err, ErrUnreadableExcel) {
		t.Errorf("期望 ErrUnreadableExcel，实际 %v", err)
	}
}
