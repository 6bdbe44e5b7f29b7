package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ExplicitMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("期望读取不存在的配置文件失败，实际成功: %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8088
pipeline:
  meridiem:
    pm_end_limit: 9
  special_case:
    extra_days: "tf"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("期望 port=8088，实际=%d", cfg.Server.Port)
	}
	if cfg.Pipeline.Meridiem.PMEndLimit != 9 {
		t.Errorf("期望 pm_end_limit=9，实际=%d", cfg.Pipeline.Meridiem.PMEndLimit)
	}
	if cfg.Pipeline.Meridiem.AMEndLimit != 8 {
		t.Errorf("am_end_limit 应保持默认值 8，实际=%d", cfg.Pipeline.Meridiem.AMEndLimit)
	}
	if cfg.Pipeline.SpecialCase.ExtraDays != "tf" {
		t.Errorf("期望 extra_days=tf，实际=%s", cfg.Pipeline.SpecialCase.ExtraDays)
	}
	if cfg.Pipeline.HeaderMarker != "N0." {
		t.Errorf("期望默认 header_marker=N0.，实际=%s", cfg.Pipeline.HeaderMarker)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server: ServerConfig{Port: 9090},
			Pipeline: PipelineConfig{
				Meridiem:        MeridiemConfig{PMEndLimit: 8, AMEndLimit: 8},
				ReferenceMonday: "2025-02-03",
				SpecialCase:     SpecialCaseConfig{ExtraDays: "ts", Credits: []int{3, 2}},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"默认值合法", func(c *Config) {}, false},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"阈值越界", func(c *Config) { c.Pipeline.Meridiem.PMEndLimit = 13 }, true},
		{"参考日期不是周一", func(c *Config) { c.Pipeline.ReferenceMonday = "2025-02-04" }, true},
		{"参考日期格式错误", func(c *Config) { c.Pipeline.ReferenceMonday = "03/02/2025" }, true},
		{"学分拆分不是两个值", func(c *Config) { c.Pipeline.SpecialCase.Credits = []int{5} }, true},
		{"学期结束早于开始", func(c *Config) {
			c.Calendar.SemesterStart = "2025-06-01"
			c.Calendar.SemesterEnd = "2025-01-01"
		}, true},
		{"学期区间合法", func(c *Config) {
			c.Calendar.SemesterStart = "2025-01-13"
			c.Calendar.SemesterEnd = "2025-05-09"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v，实际 err=%v", tt.wantErr, err)
			}
		})
	}
}
