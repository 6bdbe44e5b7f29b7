package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/maliky/schedule-checker-app/pkg/redis"
)

// ErrArtifactNotFound 处理产物不存在或已过期
var ErrArtifactNotFound = errors.New("处理产物不存在")

// ErrInvalidRunID 批次 ID 含非法字符
var ErrInvalidRunID = errors.New("批次 ID 非法")

// ArtifactKind 处理产物类型（同时决定落盘文件名）
type ArtifactKind string

const (
	ArtifactWorkbook        ArtifactKind = "processed_schedule.xlsx"
	ArtifactRoomChart       ArtifactKind = "room_final_chart.html"
	ArtifactInstructorChart ArtifactKind = "instructor_final_chart.html"
	ArtifactCalendar        ArtifactKind = "schedule.ics"
	ArtifactReport          ArtifactKind = "report.json"
	ArtifactExamRecords     ArtifactKind = "exam_records.json"
	ArtifactExamCalendar    ArtifactKind = "exam_schedule.ics"
	ArtifactExamWorkbook    ArtifactKind = "processed_exams.xlsx"
)

// Scope 最新批次指针的分类
type Scope string

const (
	ScopeSchedule Scope = "schedule"
	ScopeExam     Scope = "exam"
)

var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ArtifactRepository 处理产物存取接口
type ArtifactRepository interface {
	Save(ctx context.Context, runID string, kind ArtifactKind, data []byte) error
	Load(ctx context.Context, runID string, kind ArtifactKind) ([]byte, error)
	SetLatest(ctx context.Context, scope Scope, runID string) error
	Latest(ctx context.Context, scope Scope) (string, error)
}

func checkRunID(runID string) error {
	if !runIDPattern.MatchString(runID) {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

// ── 本地目录实现 ──

type fileArtifactRepo struct {
	dir string
	ttl time.Duration
}

// NewFileArtifactRepo 以 dir/{run_id}/{kind} 形式落盘
// ttl > 0 时，每次更新最新批次指针后清理修改时间早于 ttl 的批次目录
func NewFileArtifactRepo(dir string, ttl time.Duration) (ArtifactRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建产物目录失败: %w", err)
	}
	return &fileArtifactRepo{dir: dir, ttl: ttl}, nil
}

func (r *fileArtifactRepo) Save(_ context.Context, runID string, kind ArtifactKind, data []byte) error {
	if err := checkRunID(runID); err != nil {
		return err
	}
	runDir := filepath.Join(r.dir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(runDir, string(kind)), data)
}

func (r *fileArtifactRepo) Load(_ context.Context, runID string, kind ArtifactKind) ([]byte, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.dir, runID, string(kind)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrArtifactNotFound
	}
	return data, err
}

func (r *fileArtifactRepo) SetLatest(_ context.Context, scope Scope, runID string) error {
	if err := checkRunID(runID); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(r.dir, "latest_"+string(scope)), []byte(runID)); err != nil {
		return err
	}
	// 清理失败不影响本次批次
	_ = r.prune(time.Now())
	return nil
}

// prune 删除过期的批次目录，各分类的最新批次始终保留
func (r *fileArtifactRepo) prune(now time.Time) error {
	if r.ttl <= 0 {
		return nil
	}
	keep := make(map[string]bool)
	for _, scope := range []Scope{ScopeSchedule, ScopeExam} {
		if id, err := r.Latest(context.Background(), scope); err == nil {
			keep[id] = true
		}
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}
	cutoff := now.Add(-r.ttl)
	for _, e := range entries {
		if !e.IsDir() || keep[e.Name()] || !runIDPattern.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(r.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (r *fileArtifactRepo) Latest(_ context.Context, scope Scope) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, "latest_"+string(scope)))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrArtifactNotFound
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeFileAtomic 先写同目录下的唯一临时文件再改名，避免下载到半截文件
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// ── Redis 实现 ──

const artifactPrefix = "schedule:artifact:"

type redisArtifactRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisArtifactRepo 产物写入 Redis，按 ttl 过期（多实例部署时共享）
func NewRedisArtifactRepo(client *redis.Client, ttl time.Duration) ArtifactRepository {
	return &redisArtifactRepo{client: client, ttl: ttl}
}

func (r *redisArtifactRepo) Save(ctx context.Context, runID string, kind ArtifactKind, data []byte) error {
	if err := checkRunID(runID); err != nil {
		return err
	}
	return r.client.SetBytes(ctx, artifactPrefix+runID+":"+string(kind), data, r.ttl)
}

func (r *redisArtifactRepo) Load(ctx context.Context, runID string, kind ArtifactKind) ([]byte, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	data, err := r.client.GetBytes(ctx, artifactPrefix+runID+":"+string(kind))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrArtifactNotFound
	}
	return data, err
}

func (r *redisArtifactRepo) SetLatest(ctx context.Context, scope Scope, runID string) error {
	if err := checkRunID(runID); err != nil {
		return err
	}
	return r.client.SetBytes(ctx, artifactPrefix+"latest:"+string(scope), []byte(runID), r.ttl)
}

func (r *redisArtifactRepo) Latest(ctx context.Context, scope Scope) (string, error) {
	data, err := r.client.GetBytes(ctx, artifactPrefix+"latest:"+string(scope))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return "", ErrArtifactNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
