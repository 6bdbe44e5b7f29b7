package pipeline

import (
	"errors"
	"testing"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/catalog"
	"github.com/maliky/schedule-checker-app/internal/model"
)

func TestPipeline_Run(t *testing.T) {
	raw := []model.RawOffering{
		{No: 1, CourseCode: "BIO", CourseNo: "301", Section: "1", CourseTitle: "Genetics",
			Days: "MWF", Time: "9-10:30", Credit: "3", Instructor: "Dr. Doe", Location: "R101"},
	}

	res, err := New(DefaultOptions(), nil).Run(raw)
	if err != nil {
		t.Fatalf("流水线失败: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("期望 3 行输出，实际 %d", len(res.Rows))
	}

	wantDays := []string{"Monday", "Wednesday", "Friday"}
	for i, row := range res.Rows {
		if row.Weekday != wantDays[i] {
			t.Errorf("第 %d 行期望 %s，实际 %s", i, wantDays[i], row.Weekday)
		}
		if row.StartTime != "09:00" || row.EndTime != "10:30" {
			t.Errorf("第 %d 行期望 09:00-10:30，实际 %s-%s", i, row.StartTime, row.EndTime)
		}
		if row.CID != "BIO_301_s1" {
			t.Errorf("第 %d 行期望 cid=BIO_301_s1，实际 %s", i, row.CID)
		}
		if row.OldIdx != 1 || row.Credit != "3" || row.Unscheduled {
			t.Errorf("第 %d 行字段不符: %+v", i, row)
		}
	}
	if res.Offerings[0].Duration != "01:30" {
		t.Errorf("期望时长 01:30，实际 %s", res.Offerings[0].Duration)
	}
}

func TestPipeline_Run_UnscheduledSurvives(t *testing.T) {
	raw := []model.RawOffering{
		{No: 1, CourseCode: "BIO", CourseNo: "301", Section: "1", Days: "TTh", Time: "TBA"},
		{No: 2, CourseCode: "BIO", CourseNo: "302", Section: "1", Days: "M", Time: ""},
	}

	res, err := New(DefaultOptions(), nil).Run(raw)
	if err != nil {
		t.Fatalf("流水线失败: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("期望 3 行输出，实际 %d", len(res.Rows))
	}
	for _, row := range res.Rows {
		if !row.Unscheduled || row.StartTime != "01:01" || row.EndTime != "02:02" {
			t.Errorf("占位行应保留 01:01-02:02 且标记未排，实际 %+v", row)
		}
		if row.HasTime() {
			t.Error("占位行不应参与绘图")
		}
	}
	for _, a := range res.Anomalies {
		if a.Kind == model.AnomalyMeridiemCorrected {
			t.Error("占位区间不应触发上下午纠正")
		}
	}
}

func TestPipeline_Run_SpecialCase(t *testing.T) {
	raw := []model.RawOffering{
		{No: 1, CourseCode: "CHEM", CourseNo: "201", Section: "1", Days: "M", Time: "9-10:30/2-3:30pm", Credit: "5"},
		{No: 2, CourseCode: "BIO", CourseNo: "101", Section: "1", Days: "W", Time: "8-9am"},
	}

	res, err := New(DefaultOptions(), nil).Run(raw)
	if err != nil {
		t.Fatalf("流水线失败: %v", err)
	}
	// 第一段周一 1 次 + BIO 周三 1 次 + 第二段周二/周六 2 次
	if len(res.Rows) != 4 {
		t.Fatalf("期望 4 行输出，实际 %d", len(res.Rows))
	}
	last := res.Rows[3]
	if last.Weekday != "Saturday" || last.StartTime != "14:00" || last.Credit != "2" || last.OldIdx != 3 {
		t.Errorf("第二段展开不符: %+v", last)
	}
	if res.Rows[0].StartTime != "09:00" || res.Rows[0].Credit != "3" {
		t.Errorf("第一段不符: %+v", res.Rows[0])
	}
}

func TestPipeline_Run_StructuralErrors(t *testing.T) {
	t.Run("连字符过多", func(t *testing.T) {
		raw := []model.RawOffering{{No: 7, CourseCode: "BIO", CourseNo: "301", Days: "M", Time: "9-10-11"}}
		_, err := New(DefaultOptions(), nil).Run(raw)
		var re *RowError
		if !errors.As(err, &re) || re.Raw.No != 7 {
			t.Fatalf("期望携带第 7 行的 RowError，实际 %v", err)
		}
	})

	t.Run("多行含斜杠", func(t *testing.T) {
		raw := []model.RawOffering{
			{No: 1, Days: "M", Time: "9-10/2-3"},
			{No: 2, Days: "W", Time: "9-10/2-3"},
		}
		_, err := New(DefaultOptions(), nil).Run(raw)
		if !errors.Is(err, ErrSpecialCaseAmbiguous) {
			t.Fatalf("期望 ErrSpecialCaseAmbiguous，实际 %v", err)
		}
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.PipelineConfig{
		Meridiem:        config.MeridiemConfig{PMEndLimit: 9, AMEndLimit: 7},
		ReferenceMonday: "2025-09-01",
		SpecialCase:     config.SpecialCaseConfig{ExtraDays: "f", Credits: []int{4, 1}},
	}
	cat := catalog.New(map[string]string{"BIO": "BIOL"}, nil)

	opts, err := OptionsFromConfig(cfg, cat)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if opts.Meridiem.PMEndLimit != 9 || opts.Meridiem.AMEndLimit != 7 {
		t.Errorf("阈值不符: %+v", opts.Meridiem)
	}
	if opts.Week.Date(0).Format("2006-01-02") != "2025-08-31" {
		t.Errorf("参考周日期不符: %s", opts.Week.Monday)
	}
	if opts.SpecialCase.Credits != [2]int{4, 1} || opts.SpecialCase.ExtraDays != "f" {
		t.Errorf("拆分规则不符: %+v", opts.SpecialCase)
	}

	cfg.SpecialCase.Credits = []int{5}
	if _, err := OptionsFromConfig(cfg, cat); err == nil {
		t.Error("学分数量不为 2 时应报错")
	}
}
