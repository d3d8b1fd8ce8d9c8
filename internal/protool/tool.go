package protool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"plansync/internal/models"
)

// Script names inside the configured scripts directory
const (
	scriptNotes      = "apply_notes.py"
	scriptSong       = "apply_song_template.py"
	scriptTransition = "apply_transition_template.py"
	scriptIndex      = "index_presentations.py"
)

// Scripts lists every script the runner expects in its scripts directory
func Scripts() []string {
	return []string{scriptNotes, scriptSong, scriptTransition, scriptIndex}
}

// RewriteError wraps a failed toolchain invocation with the output the
// script produced before dying
type RewriteError struct {
	Script string
	Path   string
	Output string
	Err    error
}

func (e *RewriteError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed for %s: %v: %s", e.Script, e.Path, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Script, e.Path, e.Err)
}

func (e *RewriteError) Unwrap() error {
	return e.Err
}

// IsRewrite reports whether err came from a toolchain invocation
func IsRewrite(err error) bool {
	var re *RewriteError
	return errors.As(err, &re)
}

// Runner invokes the out-of-process document rewrite toolchain. Each call
// spawns one interpreter process with a JSON payload on its argv and waits
// for it under a deadline.
type Runner struct {
	command string
	dir     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a toolchain runner
func NewRunner(command, scriptsDir string, timeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		command: command,
		dir:     scriptsDir,
		timeout: timeout,
		logger:  logger,
	}
}

// ApplyNotes replaces the slide text of a notes presentation
func (r *Runner) ApplyNotes(ctx context.Context, path, text string) error {
	_, err := r.run(ctx, scriptNotes, path, text)
	return err
}

// ApplySong rebuilds a song presentation from the payload
func (r *Runner) ApplySong(ctx context.Context, path string, payload SongPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding song payload: %w", err)
	}
	_, err = r.run(ctx, scriptSong, path, string(data))
	return err
}

// ApplyTransition rebuilds a transition presentation from the payload
func (r *Runner) ApplyTransition(ctx context.Context, path string, payload TransitionPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding transition payload: %w", err)
	}
	_, err = r.run(ctx, scriptTransition, path, string(data))
	return err
}

// IndexLibrary walks the library root and maps presentation UUIDs to file
// paths. The script emits one JSON object per line; warn lines are logged
// and skipped.
func (r *Runner) IndexLibrary(ctx context.Context, root string) ([]models.IndexEntry, error) {
	out, err := r.run(ctx, scriptIndex, root)
	if err != nil {
		return nil, err
	}
	return r.parseIndex(bytes.NewReader(out))
}

// run spawns one toolchain process and returns its stdout. The first arg is
// the file or directory being worked on and names the call in errors.
func (r *Runner) run(ctx context.Context, script string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	argv := append([]string{filepath.Join(r.dir, script)}, args...)
	cmd := exec.CommandContext(ctx, r.command, argv...)

	start := time.Now()
	out, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = lastLines(string(exitErr.Stderr), 4)
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		r.logger.Error("toolchain call failed",
			"script", script,
			"target", target,
			"elapsed", time.Since(start).Round(time.Millisecond),
			"error", err)
		return nil, &RewriteError{Script: script, Path: target, Output: detail, Err: err}
	}

	r.logger.Debug("toolchain call finished",
		"script", script,
		"target", target,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// parseIndex decodes the index script's line-delimited JSON output
func (r *Runner) parseIndex(in *bytes.Reader) ([]models.IndexEntry, error) {
	var entries []models.IndexEntry

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record struct {
			UUID  string `json:"uuid"`
			Title string `json:"title"`
			Path  string `json:"path"`
			Warn  string `json:"warn"`
			Info  string `json:"info"`
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("parsing index line %q: %w", line, err)
		}

		switch {
		case record.Warn != "":
			r.logger.Warn("index warning", "detail", record.Warn)
		case record.Info != "":
			r.logger.Debug("index info", "detail", record.Info)
		case record.UUID != "" && record.Path != "":
			entries = append(entries, models.IndexEntry{
				UUID:  record.UUID,
				Title: record.Title,
				Path:  record.Path,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index output: %w", err)
	}
	return entries, nil
}

// lastLines keeps the tail of noisy script output for error messages
func lastLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
