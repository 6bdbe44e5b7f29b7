package pipeline

import (
	"regexp"
	"strings"

	"github.com/maliky/schedule-checker-app/internal/model"
)

var (
	dashReplacer      = strings.NewReplacer("–", "-", "—", "-")
	separatorReplacer = strings.NewReplacer(".", ":", ";", ":")
	noonPattern       = regexp.MustCompile(`no{1,2}n?`)
	dottedMeridiem    = regexp.MustCompile(`([ap])\s*\.\s*m\b\.?`)
	digitGapPattern   = regexp.MustCompile(`(\d) (\d)`)
	digitPattern      = regexp.MustCompile(`\d`)
)

// CanonicalizeTime 把手填的时间区间改写为 H[:MM]-H[:MM](am|pm)
//
// 规则按固定顺序执行，后面的规则依赖前面的结果。不含任何数字的输入
// （空、nan、none、tba 等）降级为 model.UnscheduledTime，永不报错。
// 含数字但分隔符数量不对的输入原样传出，由 SplitInterval 报告。
func CanonicalizeTime(raw string) string {
	s, _ := canonicalize(raw)
	return s
}

// canonicalize 同 CanonicalizeTime，另返回末尾 "pm" 是否为缺省补上的
func canonicalize(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = dashReplacer.Replace(s)

	if !digitPattern.MatchString(s) || strings.Contains(s, "tba") {
		return model.UnscheduledTime, false
	}

	s = noonPattern.ReplaceAllString(s, "pm")
	// "a.m." / "p.m." 必须在 "." → ":" 之前收拢
	s = dottedMeridiem.ReplaceAllString(s, "${1}m")
	s = strings.ReplaceAll(s, "pmpm", "pm")
	s = strings.ReplaceAll(s, "ampm", "am")
	s = digitGapPattern.ReplaceAllString(s, "${1}-${2}")
	s = whitespaceRun.ReplaceAllString(s, "")
	s = separatorReplacer.Replace(s)

	switch {
	case strings.HasSuffix(s, "p"), strings.HasSuffix(s, "a"):
		s += "m"
	}
	if !strings.HasSuffix(s, "am") && !strings.HasSuffix(s, "pm") {
		return s + "pm", true
	}
	return s, false
}

// CanonicalizeTimes 对整表执行时间规范化，占位行记入报告
func CanonicalizeTimes(in []model.Offering, rep *Report) []model.Offering {
	out := make([]model.Offering, len(in))
	for i, o := range in {
		o.Time, o.MeridiemDefaulted = canonicalize(o.Time)
		if o.Unscheduled() {
			rep.Add(model.Anomaly{
				Row:     o.No,
				Stage:   StageCanonicalize,
				Kind:    model.AnomalyUnscheduledTime,
				Field:   "time",
				Value:   o.Raw.Time,
				Message: "时间缺失或为 TBA，使用未排时间占位",
			})
		}
		out[i] = o
	}
	return out
}
