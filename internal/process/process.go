package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// Controller manages the presentation application's lifecycle on the host
// machine. Rewriting documents under a live application corrupts its caches,
// so sync runs bracket their writes with Terminate and Launch.
//
// Lifecycle control only works on macOS, where the application runs. On
// other platforms every method is a no-op so the rest of the engine can be
// developed and tested anywhere.
type Controller struct {
	appName string
	grace   time.Duration
	logger  *slog.Logger
}

// NewController creates a lifecycle controller for the named application
func NewController(appName string, grace time.Duration, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{appName: appName, grace: grace, logger: logger}
}

// Supported reports whether this platform can control the application
func (c *Controller) Supported() bool {
	return runtime.GOOS == "darwin"
}

// IsRunning reports whether the application currently has a process
func (c *Controller) IsRunning(ctx context.Context) (bool, error) {
	if !c.Supported() {
		return false, nil
	}

	err := exec.CommandContext(ctx, "pgrep", "-x", c.appName).Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("checking for %s process: %w", c.appName, err)
}

// Terminate asks the application to quit and escalates to a forced kill if
// it is still running when the grace period runs out
func (c *Controller) Terminate(ctx context.Context) error {
	if !c.Supported() {
		return nil
	}

	running, err := c.IsRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		return nil
	}

	c.logger.Info("asking application to quit", "app", c.appName)
	script := fmt.Sprintf("tell application %q to quit", c.appName)
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		c.logger.Warn("graceful quit request failed", "app", c.appName, "error", err)
	}

	deadline := time.Now().Add(c.grace)
	for time.Now().Before(deadline) {
		running, err = c.IsRunning(ctx)
		if err != nil {
			return err
		}
		if !running {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	c.logger.Warn("grace period expired, killing application", "app", c.appName)
	if err := exec.CommandContext(ctx, "pkill", "-9", "-x", c.appName).Run(); err != nil {
		var exitErr *exec.ExitError
		// pkill exits 1 when no process matched
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return fmt.Errorf("killing %s: %w", c.appName, err)
		}
	}
	return nil
}

// Launch starts the application without bringing it to the foreground
func (c *Controller) Launch(ctx context.Context) error {
	if !c.Supported() {
		return nil
	}

	if err := exec.CommandContext(ctx, "open", "-g", "-a", c.appName).Run(); err != nil {
		return fmt.Errorf("launching %s: %w", c.appName, err)
	}
	return nil
}
