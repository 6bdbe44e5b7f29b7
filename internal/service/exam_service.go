package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/dto"
	"github.com/maliky/schedule-checker-app/internal/pipeline"
	"github.com/maliky/schedule-checker-app/internal/repository"
)

// ExamService 考试安排业务接口
type ExamService interface {
	// Run 解析考试安排工作簿（不落盘），sheets 为空时取配置
	Run(r io.Reader, sheets []string) (*ExamOutcome, error)
	// Process 解析并保存考试记录、工作簿与日历
	Process(ctx context.Context, r io.Reader, sheets []string) (*dto.ExamUploadResponse, error)
	// Artifact 读取某批次的产物，runID 为空取最近一次
	Artifact(ctx context.Context, runID string, kind repository.ArtifactKind) ([]byte, string, error)
}

type examService struct {
	cfg      *config.Config
	policy   pipeline.MeridiemPolicy
	repo     *repository.Repository
	export   ExportService
	calendar CalendarService
	logger   *zap.Logger
	newRunID func() string
}

// NewExamService 创建 ExamService 实例
func NewExamService(
	cfg *config.Config,
	policy pipeline.MeridiemPolicy,
	repo *repository.Repository,
	export ExportService,
	calendar CalendarService,
	logger *zap.Logger,
) ExamService {
	return &examService{
		cfg:      cfg,
		policy:   policy,
		repo:     repo,
		export:   export,
		calendar: calendar,
		logger:   logger,
		newRunID: func() string { return uuid.New().String() },
	}
}

func (s *examService) Run(r io.Reader, sheets []string) (*ExamOutcome, error) {
	if len(sheets) == 0 {
		sheets = s.cfg.Exam.Sheets
	}
	out, err := ProcessExamWorkbook(r, ExamWorkbookOptions{
		Sheets:       sheets,
		HeaderMarker: s.cfg.Pipeline.HeaderMarker,
		Meridiem:     s.policy,
	}, s.logger)
	if err != nil {
		s.logger.Warn("考试安排解析失败", zap.Error(err))
		return nil, err
	}
	out.RunID = s.newRunID()
	return out, nil
}

func (s *examService) Process(ctx context.Context, r io.Reader, sheets []string) (*dto.ExamUploadResponse, error) {
	out, err := s.Run(r, sheets)
	if err != nil {
		return nil, err
	}

	calendar, err := s.calendar.ExportExams(out.Records)
	if err != nil {
		return nil, err
	}

	base := "/api/v1/exams"
	query := "?run_id=" + out.RunID
	resp := &dto.ExamUploadResponse{
		RunID:     out.RunID,
		Total:     len(out.Records),
		Records:   out.Records,
		Anomalies: out.Anomalies,
		Links: dto.ExamLinks{
			Calendar: base + "/calendar.ics" + query,
		},
	}

	artifacts := map[repository.ArtifactKind][]byte{
		repository.ArtifactExamCalendar: calendar,
	}
	if len(out.Records) > 0 {
		workbook, _, err := s.export.ExportExams(out.Records)
		if err != nil {
			return nil, err
		}
		artifacts[repository.ArtifactExamWorkbook] = workbook.Bytes()
		resp.Links.Workbook = base + "/download" + query
	}
	records, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("序列化考试记录失败: %w", err)
	}
	artifacts[repository.ArtifactExamRecords] = records

	for kind, data := range artifacts {
		if err := s.repo.Artifact.Save(ctx, out.RunID, kind, data); err != nil {
			s.logger.Error("保存考试产物失败", zap.String("run_id", out.RunID), zap.String("kind", string(kind)), zap.Error(err))
			return nil, err
		}
	}
	if err := s.repo.Artifact.SetLatest(ctx, repository.ScopeExam, out.RunID); err != nil {
		return nil, err
	}

	s.logger.Info("考试安排处理完成",
		zap.String("run_id", out.RunID),
		zap.Int("records", len(out.Records)),
		zap.Int("anomalies", len(out.Anomalies)),
	)
	return resp, nil
}

func (s *examService) Artifact(ctx context.Context, runID string, kind repository.ArtifactKind) ([]byte, string, error) {
	return loadArtifact(ctx, s.repo, repository.ScopeExam, runID, kind)
}
