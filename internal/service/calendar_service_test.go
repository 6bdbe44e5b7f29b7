package service

import (
	"bytes"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/model"
)

func parseCalendar(t *testing.T, data []byte) []*ics.VEvent {
	t.Helper()
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("导出的 ICS 无法解析: %v", err)
	}
	return cal.Events()
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	if p := evt.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

func TestCalendarService_ExportMeetings_ReferenceWeek(t *testing.T) {
	svc, err := NewCalendarService(&config.CalendarConfig{Timezone: "UTC"}, zap.NewNop())
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	row := meetingRow("BIO_301_s1", "Monday", "R101", "Dr. Doe", "09:00", "10:30")
	unscheduled := model.ScheduleRow{CID: "CHEM_101_s2", Weekday: "Sunday", Unscheduled: true}

	data, err := svc.ExportMeetings([]model.ScheduleRow{row, unscheduled})
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}

	events := parseCalendar(t, data)
	if len(events) != 1 {
		t.Fatalf("期望 1 个事件（占位行不导出），实际 %d", len(events))
	}
	evt := events[0]
	if got := propValue(evt, ics.ComponentPropertyDtStart); got != "20250203T090000Z" {
		t.Errorf("DTSTART 应落在参考周，实际 %s", got)
	}
	if got := propValue(evt, ics.ComponentPropertyDtEnd); got != "20250203T103000Z" {
		t.Errorf("DTEND 不符: %s", got)
	}
	if got := propValue(evt, ics.ComponentPropertyLocation); got != "R101" {
		t.Errorf("LOCATION 不符: %s", got)
	}
	if evt.GetProperty(ics.ComponentPropertyRrule) != nil {
		t.Error("未配置学期时不应带 RRULE")
	}
}

func TestCalendarService_ExportMeetings_Semester(t *testing.T) {
	svc, err := NewCalendarService(&config.CalendarConfig{
		SemesterStart: "2025-02-05", // 周三
		SemesterEnd:   "2025-05-30",
		Timezone:      "UTC",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	rows := []model.ScheduleRow{
		meetingRow("BIO_301_s1", "Monday", "R101", "", "09:00", "10:30"),
		meetingRow("BIO_301_s1", "Wednesday", "R101", "", "09:00", "10:30"),
	}

	data, err := svc.ExportMeetings(rows)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	events := parseCalendar(t, data)
	if len(events) != 2 {
		t.Fatalf("期望 2 个事件，实际 %d", len(events))
	}

	wantStart := []string{"20250210T090000Z", "20250205T090000Z"}
	for i, evt := range events {
		if got := propValue(evt, ics.ComponentPropertyDtStart); got != wantStart[i] {
			t.Errorf("第 %d 个事件应从学期内第一个对应星期开始，期望 %s 实际 %s", i, wantStart[i], got)
		}
		if got := propValue(evt, ics.ComponentPropertyRrule); got != "FREQ=WEEKLY;UNTIL=20250530T235959Z" {
			t.Errorf("RRULE 不符: %s", got)
		}
	}
}

func TestCalendarService_ExportExams(t *testing.T) {
	svc, _ := NewCalendarService(&config.CalendarConfig{Timezone: "UTC"}, zap.NewNop())
	date := time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 12, 16, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 16, 11, 0, 0, 0, time.UTC)
	records := []model.ExamRecord{
		{CID: "bio_301_exam_1", CourseCode: "BIO", CourseNo: "301", ExamDate: &date, StartAt: &start, EndAt: &end},
		{CID: "his_201_exam_1", CourseCode: "HIS", CourseNo: "201"},
	}

	data, err := svc.ExportExams(records)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	events := parseCalendar(t, data)
	if len(events) != 1 {
		t.Fatalf("没有日期的考试不导出，期望 1 个事件，实际 %d", len(events))
	}
	if got := propValue(events[0], ics.ComponentPropertyDtStart); got != "20241216T090000Z" {
		t.Errorf("DTSTART 不符: %s", got)
	}
}

func TestNewCalendarService_InvalidTimezone(t *testing.T) {
	if _, err := NewCalendarService(&config.CalendarConfig{Timezone: "Mars/Base"}, zap.NewNop()); err == nil {
		t.Error("无效时区应报错")
	}
}

func TestFirstWeekdayOnOrAfter(t *testing.T) {
	wed := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	tests := map[time.Weekday]string{
		time.Wednesday: "2025-02-05",
		time.Thursday:  "2025-02-06",
		time.Monday:    "2025-02-10",
		time.Sunday:    "2025-02-09",
	}
	for day, want := range tests {
		if got := firstWeekdayOnOrAfter(wed, day).Format("2006-01-02"); got != want {
			t.Errorf("%s 期望 %s，实际 %s", day, want, got)
		}
	}
}
