package pipeline

import (
	"strings"
	"testing"

	"github.com/maliky/schedule-checker-app/internal/model"
)

func TestCanonicalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9 - 10:30 AM", "9-10:30am"},
		{"2.40-5.4.10pm", "2:40-5:4:10pm"},
		{"9-12noon", "9-12pm"},
		{"9–10:30", "9-10:30pm"},
		{"9—10:30am", "9-10:30am"},
		{"1:00-2:30pmpm", "1:00-2:30pm"},
		{"11:00-12:30ampm", "11:00-12:30am"},
		{"9 10", "9-10pm"},
		{"2;40-4;10p", "2:40-4:10pm"},
		{"8:00-9:15a", "8:00-9:15am"},
		{"12 noon-1:30", "12pm-1:30pm"},
		{"9:00-10:30 a.m.", "9:00-10:30am"},
		{"2.40-4.10 P.M.", "2:40-4:10pm"},
		{"8-9 a. m", "8-9am"},
		{"TBA", model.UnscheduledTime},
		{"tba ", model.UnscheduledTime},
		{"", model.UnscheduledTime},
		{"nan", model.UnscheduledTime},
		{"None", model.UnscheduledTime},
		{"by arrangement", model.UnscheduledTime},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CanonicalizeTime(tt.in); got != tt.want {
				t.Errorf("CanonicalizeTime(%q) = %q，期望 %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeTime_Total(t *testing.T) {
	inputs := []string{"", " ", "TBA", "NaN", "none", "noon", "9-10", "9 - 10:30 AM",
		"2.40-5.4.10pm", "10-1", "12-1:30p", "8:00:-930am", "9 10", "—", "–"}

	for _, in := range inputs {
		got := CanonicalizeTime(in)
		if !strings.HasSuffix(got, "am") && !strings.HasSuffix(got, "pm") {
			t.Errorf("CanonicalizeTime(%q) = %q，应以 am/pm 结尾", in, got)
		}
		if n := strings.Count(got, "-"); n != 1 {
			t.Errorf("CanonicalizeTime(%q) = %q，应恰好含 1 个连字符，实际 %d", in, got, n)
		}
	}
}

func TestCanonicalizeTimes_MeridiemDefaulted(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"9-10:30", true},
		{"9-10:30am", false},
		{"2-3 p.m.", false},
		{"9-12noon", false},
		{"TBA", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			out := CanonicalizeTimes([]model.Offering{model.NewOffering(model.RawOffering{No: 1, Time: tt.raw})}, NewReport(nil))
			if out[0].MeridiemDefaulted != tt.want {
				t.Errorf("%q 缺省上下午标记 = %v，期望 %v", tt.raw, out[0].MeridiemDefaulted, tt.want)
			}
		})
	}
}

func TestCanonicalizeTimes_ReportsUnscheduled(t *testing.T) {
	in := []model.Offering{
		model.NewOffering(model.RawOffering{No: 1, Time: "9-10"}),
		model.NewOffering(model.RawOffering{No: 2, Time: "TBA"}),
	}
	rep := NewReport(nil)

	out := CanonicalizeTimes(in, rep)

	if out[1].Time != model.UnscheduledTime {
		t.Errorf("期望占位时间，实际 %q", out[1].Time)
	}
	if rep.Count(model.AnomalyUnscheduledTime) != 1 {
		t.Errorf("期望 1 条 unscheduled_time 异常，实际 %d", rep.Count(model.AnomalyUnscheduledTime))
	}
	if in[1].Time != "TBA" {
		t.Error("输入表不应被修改")
	}
}
