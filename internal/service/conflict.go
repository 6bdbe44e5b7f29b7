package service

import (
	"sort"
	"time"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// 冲突检测维度
const (
	DimensionLocation   = "location"
	DimensionInstructor = "instructor"
)

// weekdayOrder 展示与排序用的星期顺序
var weekdayOrder = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

// DetectConflicts 找出同一天共享教室或教师且时间重叠的两次课
//
// 每组按开始时间扫描，维护仍在进行中的课（结束晚于当前开始），
// 当前课与其中每一次不同 cid 的课各记一条冲突。起止完全相同记为 duplicate。
// 占位时间、未解析时间以及教室/教师为空的行不参与比较；同一 cid 之间不算冲突。
func DetectConflicts(rows []model.ScheduleRow) []model.Conflict {
	var out []model.Conflict
	out = append(out, detectBy(rows, DimensionLocation, func(r *model.ScheduleRow) string { return r.Location })...)
	out = append(out, detectBy(rows, DimensionInstructor, func(r *model.ScheduleRow) string { return r.Instructor })...)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Weekday != b.Weekday {
			return weekdayOrder[a.Weekday] < weekdayOrder[b.Weekday]
		}
		if a.Dimension != b.Dimension {
			return a.Dimension < b.Dimension
		}
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		if !a.From.Equal(b.From) {
			return a.From.Before(b.From)
		}
		if a.First != b.First {
			return a.First < b.First
		}
		return a.Second < b.Second
	})
	return out
}

func detectBy(rows []model.ScheduleRow, dimension string, value func(*model.ScheduleRow) string) []model.Conflict {
	type groupKey struct {
		weekday string
		value   string
	}
	groups := make(map[groupKey][]*model.ScheduleRow)
	for i := range rows {
		r := &rows[i]
		v := value(r)
		if !r.HasTime() || v == "" {
			continue
		}
		k := groupKey{weekday: r.Weekday, value: v}
		groups[k] = append(groups[k], r)
	}

	var out []model.Conflict
	for k, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].Sts.Equal(*group[j].Sts) {
				return group[i].Sts.Before(*group[j].Sts)
			}
			return group[i].Ets.Before(*group[j].Ets)
		})

		var active []*model.ScheduleRow
		for _, r := range group {
			// 已结束的课移出；首尾相接不算重叠
			kept := active[:0]
			for _, a := range active {
				if a.Ets.After(*r.Sts) {
					kept = append(kept, a)
				}
			}
			active = kept

			for _, a := range active {
				if a.CID == r.CID {
					continue
				}
				kind := model.ConflictOverlap
				if r.Sts.Equal(*a.Sts) && r.Ets.Equal(*a.Ets) {
					kind = model.ConflictDuplicate
				}
				out = append(out, model.Conflict{
					Weekday:   k.weekday,
					Dimension: dimension,
					Value:     k.value,
					Kind:      kind,
					First:     a.CID,
					Second:    r.CID,
					FirstRow:  a.OldIdx,
					SecondRow: r.OldIdx,
					From:      *r.Sts,
					To:        minTime(*r.Ets, *a.Ets),
				})
			}
			active = append(active, r)
		}
	}
	return out
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// ConflictValues 有冲突的教室或教师集合，按星期分组（图表高亮用）
func ConflictValues(conflicts []model.Conflict, dimension string) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, c := range conflicts {
		if c.Dimension != dimension {
			continue
		}
		if out[c.Weekday] == nil {
			out[c.Weekday] = make(map[string]bool)
		}
		out[c.Weekday][c.Value] = true
	}
	return out
}
