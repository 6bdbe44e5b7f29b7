package service

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/model"
)

// ── ICS 导出 ────────────────────────────────────────────────
//
// 与课表导入方向相反：把规范化后的单次课写成 VEVENT。
//   - 配置了学期起止：事件放在学期开始后第一个对应星期，带 RRULE 每周重复到学期结束
//   - 未配置：事件落在参考周上，不重复
//   - 占位时间、未解析时间的课不导出
// ─────────────────────────────────────────────────────────────

const (
	icsProductID  = "-//schedule-checker//schedule//EN"
	icsUIDDomain  = "schedule-checker"
	icsUntilStyle = "20060102T150405Z"

	CalendarFile     = "schedule.ics"
	ExamCalendarFile = "exam_schedule.ics"
)

// CalendarService 日历导出接口
type CalendarService interface {
	ExportMeetings(rows []model.ScheduleRow) ([]byte, error)
	ExportExams(records []model.ExamRecord) ([]byte, error)
}

type calendarService struct {
	loc           *time.Location
	semesterStart time.Time
	semesterEnd   time.Time
	recurring     bool
	logger        *zap.Logger
	now           func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.CalendarConfig, logger *zap.Logger) (CalendarService, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("无效时区 %q: %w", tz, err)
	}

	s := &calendarService{loc: loc, logger: logger, now: time.Now}
	if cfg.SemesterStart != "" || cfg.SemesterEnd != "" {
		start, end, err := cfg.SemesterRange()
		if err != nil {
			return nil, err
		}
		s.semesterStart, s.semesterEnd, s.recurring = start, end, true
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════
// ExportMeetings：课表 → ICS
// ═══════════════════════════════════════════════════════════

func (s *calendarService) ExportMeetings(rows []model.ScheduleRow) ([]byte, error) {
	cal := s.newCalendar("课表")
	stamp := s.now().UTC()

	var until string
	if s.recurring {
		last := time.Date(s.semesterEnd.Year(), s.semesterEnd.Month(), s.semesterEnd.Day(), 23, 59, 59, 0, s.loc)
		until = last.UTC().Format(icsUntilStyle)
	}

	exported, skipped := 0, 0
	for _, r := range rows {
		if !r.HasTime() {
			skipped++
			continue
		}
		date := r.Sts
		if s.recurring {
			first := firstWeekdayOnOrAfter(s.semesterStart, r.Sts.Weekday())
			date = &first
		}
		start := s.at(*date, *r.Sts)
		end := s.at(*date, *r.Ets)

		uid := fmt.Sprintf("%s-%s-%d@%s", strings.ToLower(r.CID), strings.ToLower(r.Weekday), r.OldIdx, icsUIDDomain)
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(strings.TrimSpace(r.CID + " " + r.CourseTitle))
		if r.Location != "" {
			ev.SetLocation(r.Location)
		}
		ev.SetDescription(meetingDescription(r))
		if s.recurring {
			ev.AddRrule("FREQ=WEEKLY;UNTIL=" + until)
		}
		exported++
	}

	s.logger.Info("课表日历导出完成",
		zap.Int("events", exported),
		zap.Int("skipped", skipped),
		zap.Bool("recurring", s.recurring),
	)
	return []byte(cal.Serialize()), nil
}

// ═══════════════════════════════════════════════════════════
// ExportExams：考试安排 → ICS（单次事件）
// ═══════════════════════════════════════════════════════════

func (s *calendarService) ExportExams(records []model.ExamRecord) ([]byte, error) {
	cal := s.newCalendar("考试安排")
	stamp := s.now().UTC()

	exported := 0
	for _, r := range records {
		if r.ExamDate == nil || r.StartAt == nil || r.EndAt == nil {
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("%s@%s", r.CID, icsUIDDomain))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(s.at(*r.ExamDate, *r.StartAt))
		ev.SetEndAt(s.at(*r.ExamDate, *r.EndAt))
		ev.SetSummary(strings.TrimSpace(fmt.Sprintf("%s %s %s", r.CourseCode, r.CourseNo, r.CourseTitle)))
		if r.Location != "" {
			ev.SetLocation(r.Location)
		}
		if r.Instructor != "" {
			ev.SetDescription("监考/教师: " + r.Instructor + "\n学院: " + r.College)
		}
		exported++
	}

	s.logger.Info("考试日历导出完成", zap.Int("events", exported), zap.Int("records", len(records)))
	return []byte(cal.Serialize()), nil
}

// ── 辅助函数 ──

func (s *calendarService) newCalendar(name string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(s.loc.String())
	return cal
}

// at 取 date 的年月日与 clock 的时分，按配置时区组合
func (s *calendarService) at(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, s.loc)
}

// firstWeekdayOnOrAfter 学期开始当天或之后第一个指定星期
func firstWeekdayOnOrAfter(start time.Time, day time.Weekday) time.Time {
	offset := (int(day) - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, offset)
}

func meetingDescription(r model.ScheduleRow) string {
	var b strings.Builder
	if r.Instructor != "" {
		b.WriteString("教师: " + r.Instructor + "\n")
	}
	if r.College != "" {
		b.WriteString("学院: " + r.College + "\n")
	}
	if r.Credit != "" {
		b.WriteString("学分: " + r.Credit + "\n")
	}
	fmt.Fprintf(&b, "行号: %d", r.OldIdx)
	return b.String()
}
