package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mcfarmerz/internal/model"
)

// JsonlStorage writes snapshot records and pool stats to JSONL files. An
// empty pool stats path drops pool stats.
type JsonlStorage struct {
	snapshotPath  string
	poolStatsPath string
	mu            sync.Mutex
}

func NewJsonlStorage(snapshotPath, poolStatsPath string) *JsonlStorage {
	return &JsonlStorage{snapshotPath: snapshotPath, poolStatsPath: poolStatsPath}
}

// PutSnapshotBatch appends a batch of snapshot records as JSON lines.
func (s *JsonlStorage) PutSnapshotBatch(_ context.Context, records []model.SnapshotRecord) error {
	if len(records) == 0 {
		return nil
	}
	lines := make([]any, 0, len(records))
	for _, r := range records {
		lines = append(lines, r)
	}
	return s.appendLines(s.snapshotPath, lines)
}

// PutPoolStats appends pool stats as JSON lines.
func (s *JsonlStorage) PutPoolStats(_ context.Context, stats []model.PoolStat) error {
	if len(stats) == 0 || s.poolStatsPath == "" {
		return nil
	}
	lines := make([]any, 0, len(stats))
	for _, st := range stats {
		lines = append(lines, st)
	}
	return s.appendLines(s.poolStatsPath, lines)
}

func (s *JsonlStorage) appendLines(path string, lines []any) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range lines {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Multi fans writes out to every sink in order, stopping at the first error.
type Multi []Storage

func (m Multi) PutSnapshotBatch(ctx context.Context, records []model.SnapshotRecord) error {
	for _, s := range m {
		if err := s.PutSnapshotBatch(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) PutPoolStats(ctx context.Context, stats []model.PoolStat) error {
	for _, s := range m {
		if err := s.PutPoolStats(ctx, stats); err != nil {
			return err
		}
	}
	return nil
}
