package pipeline

import (
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/internal/model"
)

// Report 行级异常的旁路报告，随主输出一起返回
type Report struct {
	anomalies []model.Anomaly
	logger    *zap.Logger
}

// NewReport 创建异常报告；logger 为 nil 时不记日志
func NewReport(logger *zap.Logger) *Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Report{logger: logger}
}

// Add 记录一条异常并以 Warn 级别输出
func (r *Report) Add(a model.Anomaly) {
	r.anomalies = append(r.anomalies, a)
	r.logger.Warn(a.Message,
		zap.Int("row", a.Row),
		zap.String("stage", a.Stage),
		zap.String("kind", string(a.Kind)),
		zap.String("field", a.Field),
		zap.String("value", a.Value),
	)
}

// Anomalies 返回异常副本
func (r *Report) Anomalies() []model.Anomaly {
	out := make([]model.Anomaly, len(r.anomalies))
	copy(out, r.anomalies)
	return out
}

// Count 按类型统计
func (r *Report) Count(kind model.AnomalyKind) int {
	n := 0
	for _, a := range r.anomalies {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
