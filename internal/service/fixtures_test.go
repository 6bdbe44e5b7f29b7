package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// ── 测试辅助 ──

type sheetFixture struct {
	name string
	rows [][]interface{}
}

// newWorkbook 在内存中构造工作簿
func newWorkbook(t *testing.T, sheets ...sheetFixture) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			t.Fatalf("创建工作表失败: %v", err)
		}
		for i, row := range sh.rows {
			if err := f.SetSheetRow(sh.name, cell("A", i+1), &row); err != nil {
				t.Fatalf("写入测试行失败: %v", err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("删除默认工作表失败: %v", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("生成测试工作簿失败: %v", err)
	}
	return buf
}

// scheduleFixture 标题行 + 表头 + 正常行 + 无代码行 + 空行 + 缺时间行
func scheduleFixture(t *testing.T) *bytes.Buffer {
	return newWorkbook(t, sheetFixture{
		name: "GENERAL SCHEDULE",
		rows: [][]interface{}{
			{"GENERAL SCHEDULE"},
			{""},
			{"N0.", "Course Code", "Course N0.", "Course Title", "Cr", "Sec", "Instructor", "Room", "Days", "Time", "Cap"},
			{1, "BIO", "301", "Genetics", 3, 1, "Dr. Doe", "R101", "MWF", "9-10:30", 40},
			{2, "", "", "Note: see registrar", "", "", "", "", "", "", ""},
			{"", "", ""},
			{"", "CHEM", "101", "Chem I", 3, 2, "Dr. Roe", "R102", "TTh", "", 30},
		},
	})
}

var refMonday = time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

// meetingRow 落在参考周上的一行输出
func meetingRow(cid, weekday, location, instructor, start, end string) model.ScheduleRow {
	offsets := map[string]int{"Sunday": -1, "Monday": 0, "Tuesday": 1, "Wednesday": 2,
		"Thursday": 3, "Friday": 4, "Saturday": 5}
	day := refMonday.AddDate(0, 0, offsets[weekday])
	at := func(hm string) *time.Time {
		c, _ := time.Parse("15:04", hm)
		t := time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC)
		return &t
	}
	return model.ScheduleRow{
		CID:        cid,
		Weekday:    weekday,
		Location:   location,
		Instructor: instructor,
		StartTime:  start,
		EndTime:    end,
		Sts:        at(start),
		Ets:        at(end),
	}
}

func bytesReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
