package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// SpecialCaseRule 一格写两个子时段的课程拆分规则
//
// ExtraDays 是针对某门课的历史数据修正（第二个子时段的上课日），
// 属于学校特有的数据修补，不是通用算法。
type SpecialCaseRule struct {
	ExtraDays string
	Credits   [2]int
}

// DefaultSpecialCaseRule 5 学分课程拆成 3+2，第二段在周二、周六
func DefaultSpecialCaseRule() SpecialCaseRule {
	return SpecialCaseRule{ExtraDays: "ts", Credits: [2]int{3, 2}}
}

// SplitSpecialCase 把时间中含 "/" 的唯一一行拆成两行
//
// 没有这样的行时原样返回；多于一行时返回 ErrSpecialCaseAmbiguous。
// 第一段替换原行位置，第二段追加在表尾，行键取最大行键 + 1。
func SplitSpecialCase(in []model.Offering, rule SpecialCaseRule, rep *Report) ([]model.Offering, error) {
	var hits []int
	maxNo := 0
	for i, o := range in {
		if strings.Contains(o.Time, "/") {
			hits = append(hits, i)
		}
		if o.No > maxNo {
			maxNo = o.No
		}
	}

	out := make([]model.Offering, len(in), len(in)+1)
	copy(out, in)
	switch len(hits) {
	case 0:
		return out, nil
	case 1:
	default:
		rows := make([]int, len(hits))
		for i, idx := range hits {
			rows[i] = in[idx].No
		}
		return nil, &SpecialCaseError{Rows: rows, Err: ErrSpecialCaseAmbiguous}
	}

	src := in[hits[0]]
	times := strings.Split(src.Time, "/")
	if len(times) != 2 {
		return nil, &RowError{Stage: StageSpecialCase, Raw: src.Raw, Value: src.Time, Err: ErrSpecialCaseShape}
	}
	days := strings.Split(src.Days+"/"+rule.ExtraDays, "/")

	first, second := src, src
	first.Time, first.MeridiemDefaulted = canonicalize(times[0])
	second.Time, second.MeridiemDefaulted = canonicalize(times[1])
	first.Days, second.Days = days[0], days[1]
	first.Credit = strconv.Itoa(rule.Credits[0])
	second.Credit = strconv.Itoa(rule.Credits[1])
	first.Part, second.Part = 1, 2
	second.No = maxNo + 1

	out[hits[0]] = first
	out = append(out, second)

	rep.Add(model.Anomaly{
		Row:     src.No,
		Stage:   StageSpecialCase,
		Kind:    model.AnomalySpecialCaseSplit,
		Field:   "time",
		Value:   src.Time,
		Message: fmt.Sprintf("一格两个子时段，已拆为第 %d 行与第 %d 行（学分 %d/%d）", first.No, second.No, rule.Credits[0], rule.Credits[1]),
	})
	return out, nil
}
