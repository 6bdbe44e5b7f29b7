package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maliky/schedule-checker-app/internal/model"
)

const (
	meridiemAM = "am"
	meridiemPM = "pm"
)

// clockDate 解析后的时刻统一落在这个日期上，只有时分有意义
var clockDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// MeridiemPolicy 上下午纠正阈值
type MeridiemPolicy struct {
	PMEndLimit int // 结束小时 > PMEndLimit 且标注 pm → am
	AMEndLimit int // 结束小时 < AMEndLimit 且标注 am → pm（占位区间除外）
}

// DefaultMeridiemPolicy 没有课早于 8 点开始、晚于 8-9 点结束
func DefaultMeridiemPolicy() MeridiemPolicy {
	return MeridiemPolicy{PMEndLimit: 8, AMEndLimit: 8}
}

// Resolution 上下午推断结果
type Resolution struct {
	Meridiem      string // 纠正后的结束标注
	Corrected     bool
	StartMeridiem string
	EndMeridiem   string
	Start         time.Time
	End           time.Time
}

// Duration 课程时长
func (r Resolution) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

type clock struct {
	hour   int
	minute int
}

func (c clock) before(o clock) bool {
	return c.hour < o.hour || (c.hour == o.hour && c.minute < o.minute)
}

// parseClock 解析 12 小时制 "H" 或 "H:MM"
func parseClock(s string) (clock, error) {
	hs, ms, hasMinute := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hs)
	if err != nil || hour < 1 || hour > 12 {
		return clock{}, fmt.Errorf("小时 %q 不是 1-12 的整数", hs)
	}
	if !hasMinute {
		return clock{hour: hour}, nil
	}
	minute, err := strconv.Atoi(ms)
	if err != nil || len(ms) != 2 || minute < 0 || minute > 59 {
		return clock{}, fmt.Errorf("分钟 %q 不是两位 00-59", ms)
	}
	return clock{hour: hour, minute: minute}, nil
}

func (c clock) at(meridiem string) time.Time {
	hour := c.hour % 12
	if meridiem == meridiemPM {
		hour += 12
	}
	return clockDate.Add(time.Duration(hour)*time.Hour + time.Duration(c.minute)*time.Minute)
}

// Resolve 推断每个端点的上下午并生成起止时刻
func (p MeridiemPolicy) Resolve(stime, etime, meridiem string) (Resolution, error) {
	fail := func(reason string) (Resolution, error) {
		return Resolution{}, &TimeResolutionError{Stime: stime, Etime: etime, Meridiem: meridiem, Reason: reason}
	}

	start, err := parseClock(stime)
	if err != nil {
		return fail("开始时间" + err.Error())
	}
	end, err := parseClock(etime)
	if err != nil {
		return fail("结束时间" + err.Error())
	}

	res := Resolution{Meridiem: meridiem}
	sentinel := start.hour == 1 && start.minute == 1
	switch {
	case end.hour > p.PMEndLimit && meridiem == meridiemPM:
		res.Meridiem, res.Corrected = meridiemAM, true
	case end.hour < p.AMEndLimit && meridiem == meridiemAM && !sentinel:
		res.Meridiem, res.Corrected = meridiemPM, true
	}

	switch {
	case start.hour == 12:
		res.StartMeridiem, res.EndMeridiem = meridiemPM, meridiemPM
	case (end.hour == 12 && start.hour < 12) || start.hour > end.hour:
		// 跨中午
		res.StartMeridiem, res.EndMeridiem = meridiemAM, meridiemPM
	case start.before(end):
		res.StartMeridiem, res.EndMeridiem = res.Meridiem, res.Meridiem
	default:
		return fail("开始时间不早于结束时间")
	}

	res.Start = start.at(res.StartMeridiem)
	res.End = end.at(res.EndMeridiem)
	if !res.End.After(res.Start) {
		return fail("结束时间不晚于开始时间")
	}
	return res, nil
}

// FormatDuration 时长格式化为 "HH:MM"，分钟向下取整
func FormatDuration(sec int) string {
	return fmt.Sprintf("%02d:%02d", sec/3600, sec%3600/60)
}

// ResolveTimes 对整表推断上下午并计算时长
//
// 无法推断的行记入报告，起止时间保持 nil，继续进入后续阶段。
func ResolveTimes(in []model.Offering, policy MeridiemPolicy, rep *Report) []model.Offering {
	out := make([]model.Offering, len(in))
	for i, o := range in {
		o.Start, o.End = nil, nil
		o.DurationSec, o.Duration = 0, ""

		res, err := policy.Resolve(o.Stime, o.Etime, o.Meridiem)
		if err != nil {
			rep.Add(model.Anomaly{
				Row:     o.No,
				Stage:   StageResolve,
				Kind:    model.AnomalyTimeUnresolved,
				Field:   "time",
				Value:   o.Raw.Time,
				Message: err.Error(),
			})
			out[i] = o
			continue
		}

		// 缺省补上的 "pm" 被改正不算源数据问题，只报告原文写错的上下午
		if res.Corrected && !o.MeridiemDefaulted {
			rep.Add(model.Anomaly{
				Row:     o.No,
				Stage:   StageResolve,
				Kind:    model.AnomalyMeridiemCorrected,
				Field:   "time",
				Value:   o.Raw.Time,
				Message: fmt.Sprintf("结束时间标注 %s 不合理，已改为 %s", o.Meridiem, res.Meridiem),
			})
		}

		start, end := res.Start, res.End
		o.Start, o.End = &start, &end
		o.DurationSec = int(res.Duration() / time.Second)
		o.Duration = FormatDuration(o.DurationSec)
		out[i] = o
	}
	return out
}
