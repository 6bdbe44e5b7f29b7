package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/dto"
	"github.com/maliky/schedule-checker-app/internal/model"
	"github.com/maliky/schedule-checker-app/internal/pipeline"
	"github.com/maliky/schedule-checker-app/internal/repository"
)

// ── 课表模块业务错误 ──

var (
	ErrNothingProcessed = errors.New("尚无处理结果，请先上传")
	ErrArtifactMissing  = errors.New("该批次没有此产物")
)

// ScheduleOutcome 一次课表处理的完整结果
type ScheduleOutcome struct {
	RunID     string
	Sheet     string
	Result    *pipeline.Result
	Anomalies []model.Anomaly // 加载阶段丢弃的行 + 流水线异常
	Conflicts []model.Conflict
}

// ScheduleService 课表业务接口
type ScheduleService interface {
	// Run 加载工作表、执行流水线并检测冲突（不落盘）
	Run(r io.Reader, sheet string) (*ScheduleOutcome, error)
	// Process 在 Run 的基础上生成并保存工作簿、图表、日历
	Process(ctx context.Context, r io.Reader, sheet string) (*dto.ScheduleUploadResponse, error)
	// Artifact 读取某批次的产物，runID 为空取最近一次
	Artifact(ctx context.Context, runID string, kind repository.ArtifactKind) ([]byte, string, error)
}

type scheduleService struct {
	cfg      *config.PipelineConfig
	pipeline *pipeline.Pipeline
	repo     *repository.Repository
	export   ExportService
	chart    ChartService
	calendar CalendarService
	logger   *zap.Logger
	newRunID func() string
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(
	cfg *config.PipelineConfig,
	p *pipeline.Pipeline,
	repo *repository.Repository,
	export ExportService,
	chart ChartService,
	calendar CalendarService,
	logger *zap.Logger,
) ScheduleService {
	return &scheduleService{
		cfg:      cfg,
		pipeline: p,
		repo:     repo,
		export:   export,
		chart:    chart,
		calendar: calendar,
		logger:   logger,
		newRunID: func() string { return uuid.New().String() },
	}
}

// ═══════════════════════════════════════════════════════════
// Run：加载 + 流水线 + 冲突检测
// ═══════════════════════════════════════════════════════════

func (s *scheduleService) Run(r io.Reader, sheet string) (*ScheduleOutcome, error) {
	if sheet == "" {
		sheet = s.cfg.SheetName
	}
	runID := s.newRunID()
	log := s.logger.With(zap.String("run_id", runID), zap.String("sheet", sheet))

	loaded, err := LoadSchedule(r, sheet, s.cfg.HeaderMarker)
	if err != nil {
		log.Warn("课表加载失败", zap.Error(err))
		return nil, err
	}
	log.Info("课表加载完成", zap.Int("rows", len(loaded.Rows)), zap.Int("dropped", len(loaded.Dropped)))

	res, err := s.pipeline.Run(loaded.Rows)
	if err != nil {
		log.Error("课表规范化失败", zap.Error(err))
		return nil, err
	}

	anomalies := make([]model.Anomaly, 0, len(loaded.Dropped)+len(res.Anomalies))
	anomalies = append(anomalies, loaded.Dropped...)
	anomalies = append(anomalies, res.Anomalies...)

	conflicts := DetectConflicts(res.Rows)
	log.Info("冲突检测完成", zap.Int("conflicts", len(conflicts)))

	return &ScheduleOutcome{
		RunID:     runID,
		Sheet:     loaded.Sheet,
		Result:    res,
		Anomalies: anomalies,
		Conflicts: conflicts,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Process：处理并保存全部产物
// ═══════════════════════════════════════════════════════════
//
// 产物：processed_schedule.xlsx / room_final_chart.html /
// instructor_final_chart.html / schedule.ics / report.json
// 全部保存成功后才更新最新批次指针。

func (s *scheduleService) Process(ctx context.Context, r io.Reader, sheet string) (*dto.ScheduleUploadResponse, error) {
	began := time.Now()
	out, err := s.Run(r, sheet)
	if err != nil {
		return nil, err
	}
	rows := out.Result.Rows

	workbook, _, err := s.export.ExportSchedule(rows, out.Anomalies, out.Conflicts)
	if err != nil {
		return nil, err
	}
	charts, err := s.chart.Render(rows, out.Conflicts)
	if err != nil {
		return nil, err
	}
	calendar, err := s.calendar.ExportMeetings(rows)
	if err != nil {
		return nil, err
	}

	resp := s.toUploadResponse(out)
	report, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("序列化处理报告失败: %w", err)
	}

	artifacts := map[repository.ArtifactKind][]byte{
		repository.ArtifactWorkbook:        workbook.Bytes(),
		repository.ArtifactRoomChart:       charts.Room,
		repository.ArtifactInstructorChart: charts.Instructor,
		repository.ArtifactCalendar:        calendar,
		repository.ArtifactReport:          report,
	}
	for kind, data := range artifacts {
		if err := s.repo.Artifact.Save(ctx, out.RunID, kind, data); err != nil {
			s.logger.Error("保存处理产物失败", zap.String("run_id", out.RunID), zap.String("kind", string(kind)), zap.Error(err))
			return nil, err
		}
	}
	if err := s.repo.Artifact.SetLatest(ctx, repository.ScopeSchedule, out.RunID); err != nil {
		return nil, err
	}

	s.logger.Info("课表处理完成",
		zap.String("run_id", out.RunID),
		zap.Int("meetings", resp.Meetings),
		zap.Int("anomalies", len(resp.Anomalies)),
		zap.Int("conflicts", len(resp.Conflicts)),
		zap.Duration("elapsed", time.Since(began)),
	)
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// Artifact：读取产物
// ═══════════════════════════════════════════════════════════

func (s *scheduleService) Artifact(ctx context.Context, runID string, kind repository.ArtifactKind) ([]byte, string, error) {
	return loadArtifact(ctx, s.repo, repository.ScopeSchedule, runID, kind)
}

func (s *scheduleService) toUploadResponse(out *ScheduleOutcome) *dto.ScheduleUploadResponse {
	counts := make(map[string]int)
	for _, a := range out.Anomalies {
		counts[string(a.Kind)]++
	}
	unscheduled := 0
	for _, o := range out.Result.Offerings {
		if o.Unscheduled() {
			unscheduled++
		}
	}

	base := "/api/v1/schedules"
	query := "?run_id=" + out.RunID
	return &dto.ScheduleUploadResponse{
		RunID:         out.RunID,
		Sheet:         out.Sheet,
		Offerings:     len(out.Result.Offerings),
		Meetings:      len(out.Result.Rows),
		Unscheduled:   unscheduled,
		AnomalyCounts: counts,
		Anomalies:     out.Anomalies,
		Conflicts:     out.Conflicts,
		Links: dto.ScheduleLinks{
			Workbook:        base + "/download" + query,
			RoomChart:       base + "/charts/room" + query,
			InstructorChart: base + "/charts/instructor" + query,
			Calendar:        base + "/calendar.ics" + query,
		},
	}
}

// ── 辅助函数 ──

func loadArtifact(ctx context.Context, repo *repository.Repository, scope repository.Scope, runID string, kind repository.ArtifactKind) ([]byte, string, error) {
	if runID == "" {
		latest, err := repo.Artifact.Latest(ctx, scope)
		if errors.Is(err, repository.ErrArtifactNotFound) {
			return nil, "", ErrNothingProcessed
		}
		if err != nil {
			return nil, "", err
		}
		runID = latest
	}

	data, err := repo.Artifact.Load(ctx, runID, kind)
	if errors.Is(err, repository.ErrArtifactNotFound) {
		return nil, runID, ErrArtifactMissing
	}
	if err != nil {
		return nil, runID, err
	}
	return data, runID, nil
}
