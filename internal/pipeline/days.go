package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// ErrMalformedDays 上课日无法解析
var ErrMalformedDays = errors.New("上课日格式无法解析")

// ReferenceWeek 固定参考周：所有课落在同一周上，便于在同一时间轴比较
// 不是实际学期日期。
type ReferenceWeek struct {
	Monday time.Time
}

// DefaultReferenceWeek 2025-02-03 (周一) 起的一周，周日为 2025-02-02
func DefaultReferenceWeek() ReferenceWeek {
	return ReferenceWeek{Monday: time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)}
}

// Date 星期几在参考周上的日期（周日排在周一之前）
func (w ReferenceWeek) Date(day time.Weekday) time.Time {
	offset := int(day) - int(time.Monday)
	return w.Monday.AddDate(0, 0, offset)
}

// At 把只有时分的时刻锚定到参考周的某一天
func (w ReferenceWeek) At(day time.Weekday, clock time.Time) time.Time {
	d := w.Date(day)
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, d.Location())
}

// ParseWeekdays 解析 "mwf"、"tth" 之类的上课日
//
// 记号：m t w th f s(周六) S(周日)；th 优先于 t 匹配。
// 除 s/S 外大小写不敏感；文本清洗会把 days 转小写，因此额外接受 su 表示周日。
// 结果去重，按参考周日期排序。
func ParseWeekdays(days string) ([]time.Weekday, error) {
	s := strings.TrimSpace(days)
	if s == "" {
		return nil, ErrMalformedDays
	}

	seen := make(map[time.Weekday]bool, 7)
	for i := 0; i < len(s); {
		rest := strings.ToLower(s[i:])
		switch {
		case strings.HasPrefix(rest, "th"):
			seen[time.Thursday] = true
			i += 2
			continue
		case strings.HasPrefix(rest, "su"):
			seen[time.Sunday] = true
			i += 2
			continue
		}

		switch s[i] {
		case 'm', 'M':
			seen[time.Monday] = true
		case 't', 'T':
			seen[time.Tuesday] = true
		case 'w', 'W':
			seen[time.Wednesday] = true
		case 'f', 'F':
			seen[time.Friday] = true
		case 's':
			seen[time.Saturday] = true
		case 'S':
			seen[time.Sunday] = true
		default:
			return nil, fmt.Errorf("%w: %q 中的 %q", ErrMalformedDays, days, s[i:i+1])
		}
		i++
	}

	out := make([]time.Weekday, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ExpandDays 按上课日把每个课程班展开为多次课
//
// 输出行数 = Σ 每行去重后的上课日数（至少 1）。上课日无法解析的行
// 落到一个周日占位，在图上一眼可见，不静默丢弃。
func ExpandDays(in []model.Offering, week ReferenceWeek, rep *Report) []model.Meeting {
	out := make([]model.Meeting, 0, len(in)*2)
	for _, o := range in {
		days, err := ParseWeekdays(o.Days)
		if err != nil {
			rep.Add(model.Anomaly{
				Row:     o.No,
				Stage:   StageExpand,
				Kind:    model.AnomalyMalformedDays,
				Field:   "days",
				Value:   o.Days,
				Message: "上课日无法解析，放到周日占位",
			})
			days = []time.Weekday{time.Sunday}
		}

		for _, day := range days {
			m := model.Meeting{
				Offering: o,
				Weekday:  day.String(),
				OldIdx:   o.No,
			}
			if o.Resolved() {
				start, end := week.At(day, *o.Start), week.At(day, *o.End)
				m.StartAt, m.EndAt = &start, &end
			}
			out = append(out, m)
		}
	}
	return out
}
