package pipeline

import (
	"strings"

	"github.com/maliky/schedule-checker-app/internal/model"
)

var meridiemStripper = strings.NewReplacer("am", "", "pm", "")

// Interval 拆分后的时间区间
type Interval struct {
	Stime    string
	Etime    string
	Meridiem string // 取自结束时间；开始时间上的 am/pm 不可信，一律丢弃
}

// SplitInterval 按唯一的 "-" 拆分规范化时间串
//
//	"9:00-10:30am" → {"9:00", "10:30", "am"}
func SplitInterval(canonical string) (Interval, error) {
	parts := strings.Split(canonical, "-")
	if len(parts) != 2 {
		return Interval{}, &FormatError{Value: canonical, Parts: len(parts)}
	}

	meridiem := "pm"
	if strings.Contains(parts[1], "am") {
		meridiem = "am"
	}

	return Interval{
		Stime:    meridiemStripper.Replace(parts[0]),
		Etime:    meridiemStripper.Replace(parts[1]),
		Meridiem: meridiem,
	}, nil
}

// clockTypos 历史数据中出现过的错误时刻写法
var clockTypos = map[string]string{
	"8:00:":  "8:00",
	"12":     "12:00",
	"12:":    "12:00",
	"930":    "9:30",
	"30":     "9:30",
	":40":    "3:40",
	"4:":     "4:00",
	"5:4:10": "4:10",
}

// FixClockTypo 修正已知的错误时刻写法，未登记的原样返回（后续解析失败时会被报告）
func FixClockTypo(token string) string {
	if fixed, ok := clockTypos[token]; ok {
		return fixed
	}
	return token
}

// SplitTimes 对整表拆分时间区间并修正已知笔误
//
// 拆分失败说明规范化规则有缺口，直接中止并附上原始行。
func SplitTimes(in []model.Offering) ([]model.Offering, error) {
	out := make([]model.Offering, len(in))
	for i, o := range in {
		iv, err := SplitInterval(o.Time)
		if err != nil {
			return nil, &RowError{Stage: StageSplit, Raw: o.Raw, Value: o.Time, Err: err}
		}
		o.Stime = FixClockTypo(iv.Stime)
		o.Etime = FixClockTypo(iv.Etime)
		o.Meridiem = iv.Meridiem
		out[i] = o
	}
	return out, nil
}
