package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFileArtifactRepo_SaveLoad(t *testing.T) {
	repo, err := NewFileArtifactRepo(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	ctx := context.Background()

	if err := repo.Save(ctx, "run-1", ArtifactWorkbook, []byte("xlsx")); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	got, err := repo.Load(ctx, "run-1", ArtifactWorkbook)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if string(got) != "xlsx" {
		t.Errorf("期望 xlsx，实际 %q", got)
	}

	if _, err := repo.Load(ctx, "run-1", ArtifactCalendar); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("期望 ErrArtifactNotFound，实际 %v", err)
	}
}

func TestFileArtifactRepo_Latest(t *testing.T) {
	repo, _ := NewFileArtifactRepo(t.TempDir(), 0)
	ctx := context.Background()

	if _, err := repo.Latest(ctx, ScopeSchedule); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("尚无批次时期望 ErrArtifactNotFound，实际 %v", err)
	}

	_ = repo.SetLatest(ctx, ScopeSchedule, "run-1")
	_ = repo.SetLatest(ctx, ScopeSchedule, "run-2")
	_ = repo.SetLatest(ctx, ScopeExam, "exam-1")

	if got, _ := repo.Latest(ctx, ScopeSchedule); got != "run-2" {
		t.Errorf("期望 run-2，实际 %q", got)
	}
	if got, _ := repo.Latest(ctx, ScopeExam); got != "exam-1" {
		t.Errorf("期望 exam-1，实际 %q", got)
	}
}

func TestFileArtifactRepo_RejectsTraversal(t *testing.T) {
	repo, _ := NewFileArtifactRepo(t.TempDir(), 0)
	ctx := context.Background()

	for _, id := range []string{"../etc", "a/b", "", "x y"} {
		if err := repo.Save(ctx, id, ArtifactReport, []byte("{}")); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("runID=%q 期望 ErrInvalidRunID，实际 %v", id, err)
		}
		if _, err := repo.Load(ctx, id, ArtifactReport); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("runID=%q 读取期望 ErrInvalidRunID，实际 %v", id, err)
		}
	}
}

func TestFileArtifactRepo_ConcurrentSetLatest(t *testing.T) {
	dir := t.TempDir()
	repo, _ := NewFileArtifactRepo(dir, 0)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.SetLatest(ctx, ScopeSchedule, fmt.Sprintf("run-%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("并发更新最新批次失败: %v", err)
		}
	}
	got, err := repo.Latest(ctx, ScopeSchedule)
	if err != nil || !strings.HasPrefix(got, "run-") {
		t.Errorf("最新批次应为某个 run-N，实际 %q (%v)", got, err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("不应残留临时文件: %s", e.Name())
		}
	}
}

func TestFileArtifactRepo_PrunesExpiredRuns(t *testing.T) {
	dir := t.TempDir()
	repo, _ := NewFileArtifactRepo(dir, time.Hour)
	ctx := context.Background()

	for _, id := range []string{"old-run", "old-exam", "fresh-run"} {
		if err := repo.Save(ctx, id, ArtifactReport, []byte("{}")); err != nil {
			t.Fatalf("保存 %s 失败: %v", id, err)
		}
	}
	stale := time.Now().Add(-2 * time.Hour)
	for _, id := range []string{"old-run", "old-exam"} {
		if err := os.Chtimes(filepath.Join(dir, id), stale, stale); err != nil {
			t.Fatalf("修改时间失败: %v", err)
		}
	}

	// old-exam 仍是考试分类的最新批次，过期也保留
	_ = repo.SetLatest(ctx, ScopeExam, "old-exam")
	if err := repo.SetLatest(ctx, ScopeSchedule, "fresh-run"); err != nil {
		t.Fatalf("更新最新批次失败: %v", err)
	}

	tests := []struct {
		runID string
		want  bool
	}{
		{"old-run", false},
		{"old-exam", true},
		{"fresh-run", true},
	}
	for _, tt := range tests {
		_, err := repo.Load(ctx, tt.runID, ArtifactReport)
		if exists := err == nil; exists != tt.want {
			t.Errorf("%s 存在 = %v，期望 %v (%v)", tt.runID, exists, tt.want, err)
		}
	}
}
