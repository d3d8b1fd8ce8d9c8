package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plansync/internal/models"
)

// Manager copies presentation documents aside before the rewrite toolchain
// touches them. Each run gets its own directory under the backup root, and
// each source file is copied at most once per run no matter how many rewrite
// calls hit it.
type Manager struct {
	runDir string
	logger *slog.Logger
	done   map[string]string
	used   map[string]bool
}

// NewManager creates the run directory and a manager scoped to it
func NewManager(baseDir, runID string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	runDir := filepath.Join(baseDir, time.Now().Format("2006-01-02")+"_"+runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	return &Manager{
		runDir: runDir,
		logger: logger,
		done:   make(map[string]string),
		used:   make(map[string]bool),
	}, nil
}

// RunDir returns the directory backups for this run land in
func (m *Manager) RunDir() string {
	return m.runDir
}

// Count returns how many distinct files have been backed up this run
func (m *Manager) Count() int {
	return len(m.done)
}

// BackupOnce copies path into the run directory and returns the copy's
// location. Repeat calls for the same source are free.
func (m *Manager) BackupOnce(path string) (string, error) {
	if dest, ok := m.done[path]; ok {
		return dest, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening backup source: %w", err)
	}
	defer src.Close()

	dest := m.destFor(filepath.Base(path))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating backup file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("copying %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing backup file: %w", err)
	}

	m.done[path] = dest
	m.logger.Debug("backed up document", "source", path, "backup", dest)
	return dest, nil
}

// destFor picks a free file name in the run directory. Same-named sources
// from different directories get numeric suffixes.
func (m *Manager) destFor(base string) string {
	dest := filepath.Join(m.runDir, base)
	if !m.used[dest] {
		m.used[dest] = true
		return dest
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 2; ; i++ {
		cand := filepath.Join(m.runDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !m.used[cand] {
			m.used[cand] = true
			return cand
		}
	}
}

// WriteResult persists the run summary next to the backups
func (m *Manager) WriteResult(result models.RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run result: %w", err)
	}
	data = append(data, '\n')

	resultPath := filepath.Join(m.runDir, "run_result.json")

	// Write to a temporary file first, then rename
	tmpPath := resultPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing run result: %w", err)
	}
	if err := os.Rename(tmpPath, resultPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming run result: %w", err)
	}
	return nil
}
