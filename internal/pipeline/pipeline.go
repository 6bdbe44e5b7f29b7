package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/catalog"
	"github.com/maliky/schedule-checker-app/internal/model"
)

// 阶段名（出现在异常报告与错误信息中）
const (
	StageNormalize    = "normalize"
	StageCanonicalize = "canonicalize"
	StageSpecialCase  = "special_case"
	StageSplit        = "split"
	StageResolve      = "resolve"
	StageIdentity     = "identity"
	StageExpand       = "expand"
	StageProject      = "project"
)

// ── 课表规范化流水线 ──────────────────────────────────────────
//
// 线性批处理，每个阶段都是 "整表 → 新表" 的纯函数，严格顺序执行：
//   文本清洗 → 时间规范化 → 特殊行拆分 → 区间拆分(+笔误修正)
//   → 上下午推断/时长 → 标识/年级/学院 → 按上课日展开 → 投影
//
// 特殊行拆分必须在区间拆分之前：含 "/" 的时间有两个 "-"。
// ─────────────────────────────────────────────────────────────

// Options 流水线策略参数
type Options struct {
	Meridiem    MeridiemPolicy
	Week        ReferenceWeek
	SpecialCase SpecialCaseRule
	Catalog     *catalog.Catalog
}

// DefaultOptions 默认策略，查找表为空
func DefaultOptions() Options {
	return Options{
		Meridiem:    DefaultMeridiemPolicy(),
		Week:        DefaultReferenceWeek(),
		SpecialCase: DefaultSpecialCaseRule(),
		Catalog:     catalog.Empty(),
	}
}

// OptionsFromConfig 由配置构建策略参数
func OptionsFromConfig(cfg *config.PipelineConfig, cat *catalog.Catalog) (Options, error) {
	monday, err := cfg.ReferenceDate()
	if err != nil {
		return Options{}, fmt.Errorf("参考周日期无效: %w", err)
	}
	if len(cfg.SpecialCase.Credits) != 2 {
		return Options{}, fmt.Errorf("特殊拆分学分必须恰好两个值，实际 %v", cfg.SpecialCase.Credits)
	}
	if cat == nil {
		cat = catalog.Empty()
	}
	return Options{
		Meridiem: MeridiemPolicy{
			PMEndLimit: cfg.Meridiem.PMEndLimit,
			AMEndLimit: cfg.Meridiem.AMEndLimit,
		},
		Week: ReferenceWeek{Monday: monday},
		SpecialCase: SpecialCaseRule{
			ExtraDays: cfg.SpecialCase.ExtraDays,
			Credits:   [2]int{cfg.SpecialCase.Credits[0], cfg.SpecialCase.Credits[1]},
		},
		Catalog: cat,
	}, nil
}

// Result 一次批处理的输出
type Result struct {
	Offerings []model.Offering    // 展开前的规范化课程班
	Meetings  []model.Meeting     // 按上课日展开后的单次课
	Rows      []model.ScheduleRow // 投影后的输出表
	Anomalies []model.Anomaly     // 被降级处理的行
}

// Pipeline 课表规范化流水线
type Pipeline struct {
	opts   Options
	logger *zap.Logger
}

// New 创建流水线
func New(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Empty()
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Options 返回流水线使用的策略参数
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run 执行整条流水线
//
// 行级异常进入 Result.Anomalies；结构性错误（区间拆分失败、特殊行歧义）中止并返回。
func (p *Pipeline) Run(raw []model.RawOffering) (*Result, error) {
	began := time.Now()
	rep := NewReport(p.logger)

	table := make([]model.Offering, len(raw))
	for i, r := range raw {
		table[i] = model.NewOffering(r)
	}

	p.logger.Info("开始文本清洗", zap.Int("rows", len(table)))
	table = NormalizeText(table)

	p.logger.Info("开始时间规范化")
	table = CanonicalizeTimes(table, rep)

	table, err := SplitSpecialCase(table, p.opts.SpecialCase, rep)
	if err != nil {
		p.logger.Error("特殊行拆分失败", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", StageSpecialCase, err)
	}

	table, err = SplitTimes(table)
	if err != nil {
		p.logger.Error("时间区间拆分失败", zap.Error(err))
		return nil, err
	}

	p.logger.Info("开始推断上下午与时长")
	table = ResolveTimes(table, p.opts.Meridiem, rep)

	p.logger.Info("开始生成课程标识与学院归属")
	table = AssignIdentity(table, p.opts.Catalog, rep, p.logger)

	meetings := ExpandDays(table, p.opts.Week, rep)
	rows := Project(meetings)

	p.logger.Info("流水线完成",
		zap.Int("offerings", len(table)),
		zap.Int("meetings", len(meetings)),
		zap.Int("anomalies", len(rep.anomalies)),
		zap.Duration("elapsed", time.Since(began)),
	)

	return &Result{
		Offerings: table,
		Meetings:  meetings,
		Rows:      rows,
		Anomalies: rep.Anomalies(),
	}, nil
}
