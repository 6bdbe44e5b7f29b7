package pipeline

import "github.com/maliky/schedule-checker-app/internal/model"

// clockLayout 24 小时制 HH:MM
const clockLayout = "15:04"

// Project 选取并重命名最终输出列
func Project(in []model.Meeting) []model.ScheduleRow {
	out := make([]model.ScheduleRow, 0, len(in))
	for _, m := range in {
		row := model.ScheduleRow{
			College:     m.Offering.College,
			CID:         m.Offering.CID,
			Instructor:  m.Offering.Instructor,
			CourseTitle: m.Offering.CourseTitle,
			Weekday:     m.Weekday,
			Location:    m.Offering.Location,
			Credit:      m.Offering.Credit,
			OldIdx:      m.OldIdx,
			Unscheduled: m.Offering.Unscheduled(),
		}
		if m.StartAt != nil && m.EndAt != nil {
			sts, ets := *m.StartAt, *m.EndAt
			row.Sts, row.Ets = &sts, &ets
			row.StartTime = sts.Format(clockLayout)
			row.EndTime = ets.Format(clockLayout)
		}
		out = append(out, row)
	}
	return out
}
