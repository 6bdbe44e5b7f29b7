package pipeline

import (
	"errors"
	"testing"

	"github.com/maliky/schedule-checker-app/internal/model"
)

func TestSplitInterval(t *testing.T) {
	tests := []struct {
		in   string
		want Interval
	}{
		{"9:00-10:30am", Interval{"9:00", "10:30", "am"}},
		{"2:40-4:10pm", Interval{"2:40", "4:10", "pm"}},
		{"11am-12:30pm", Interval{"11", "12:30", "pm"}},
		{"9-10:30", Interval{"9", "10:30", "pm"}},
		{model.UnscheduledTime, Interval{"01:01", "02:02", "am"}},
	}
	for _, tt := range tests {
		got, err := SplitInterval(tt.in)
		if err != nil {
			t.Fatalf("SplitInterval(%q) 失败: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("SplitInterval(%q) = %+v，期望 %+v", tt.in, got, tt.want)
		}
	}
}

func TestSplitInterval_FormatError(t *testing.T) {
	for _, in := range []string{"9pm", "9-10-11pm", "9-10/2-3pm"} {
		_, err := SplitInterval(in)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("SplitInterval(%q) 期望 FormatError，实际 %v", in, err)
			continue
		}
		if fe.Value != in {
			t.Errorf("FormatError 应携带原始串 %q，实际 %q", in, fe.Value)
		}
	}
}

func TestFixClockTypo(t *testing.T) {
	tests := map[string]string{
		"8:00:":  "8:00",
		"930":    "9:30",
		"5:4:10": "4:10",
		"12":     "12:00",
		"4:":     "4:00",
		"10:30":  "10:30",
		"7;15":   "7;15",
	}
	for in, want := range tests {
		if got := FixClockTypo(in); got != want {
			t.Errorf("FixClockTypo(%q) = %q，期望 %q", in, got, want)
		}
	}
}

func TestSplitTimes_RowError(t *testing.T) {
	raw := model.RawOffering{No: 42, CourseCode: "BIO", CourseNo: "301", Time: "9-10-11"}
	o := model.NewOffering(raw)
	o.Time = CanonicalizeTime(o.Time)

	_, err := SplitTimes([]model.Offering{o})

	var re *RowError
	if !errors.As(err, &re) {
		t.Fatalf("期望 RowError，实际 %v", err)
	}
	if re.Raw.No != 42 || re.Raw.Time != "9-10-11" {
		t.Errorf("RowError 应携带原始行，实际 %+v", re.Raw)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("RowError 应包装 FormatError，实际 %v", err)
	}
}
