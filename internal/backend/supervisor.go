// Package backend supervises the calibration core: it optionally spawns
// the core as a child process, waits for its health endpoint to come up,
// and tracks liveness for the readiness probe.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/couchcryptid/calibrate-workbench/internal/observability"
)

// HealthChecker reports whether the calibration core answers its
// health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Supervisor manages the core process lifecycle. When the configured
// command is empty the core is assumed to be managed externally and the
// supervisor only polls health.
type Supervisor struct {
	command      string
	startTimeout time.Duration
	checker      HealthChecker
	logger       *slog.Logger
	metrics      *observability.Metrics

	mu      sync.Mutex
	cmd     *exec.Cmd
	healthy bool
}

// NewSupervisor wires a supervisor. command may be an empty string.
func NewSupervisor(
	command string,
	startTimeout time.Duration,
	checker HealthChecker,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Supervisor {
	return &Supervisor{
		command:      command,
		startTimeout: startTimeout,
		checker:      checker,
		logger:       logger,
		metrics:      metrics,
	}
}

// Start launches the core process when a command is configured and
// blocks until the core answers its health endpoint or the start
// timeout expires. Health polling backs off exponentially between
// attempts.
func (s *Supervisor) Start(ctx context.Context) error {
	// A blank command (including whitespace-only) means externally managed.
	if strings.TrimSpace(s.command) != "" {
		if err := s.spawn(); err != nil {
			return err
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.startTimeout)
	defer cancel()

	backoff := 250 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		err := s.checker.Health(waitCtx)
		if err == nil {
			s.setHealthy(true)
			s.logger.Info("calibration core ready")
			return nil
		}

		if waitCtx.Err() != nil {
			s.Stop()
			return fmt.Errorf("calibration core not ready after %s: %w", s.startTimeout, err)
		}
		s.logger.Debug("core health check failed, retrying", "error", err, "backoff", backoff.String())

		if !sleepWithContext(waitCtx, backoff) {
			s.Stop()
			return fmt.Errorf("calibration core not ready after %s: %w", s.startTimeout, err)
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

// Watch polls health every interval until ctx is canceled, updating the
// readiness state and the health gauge.
func (s *Supervisor) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.checker.Health(ctx)
			healthy := err == nil
			if healthy != s.isHealthy() {
				if healthy {
					s.logger.Info("calibration core recovered")
				} else {
					s.logger.Warn("calibration core unhealthy", "error", err)
				}
			}
			s.setHealthy(healthy)
		}
	}
}

// Stop terminates a spawned core process, first with SIGTERM and after
// a grace period with SIGKILL. It is a no-op when the core is external.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()

	s.setHealthy(false)
	if cmd == nil || cmd.Process == nil {
		return
	}

	s.logger.Info("stopping calibration core", "pid", cmd.Process.Pid)
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.logger.Warn("signal core failed", "error", err)
	}

	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.logger.Warn("calibration core did not exit, killing", "pid", cmd.Process.Pid)
		cmd.Process.Kill()
		<-done
	}
}

// CheckReadiness satisfies the readiness probe contract.
func (s *Supervisor) CheckReadiness(ctx context.Context) error {
	if s.isHealthy() {
		return nil
	}
	if err := s.checker.Health(ctx); err != nil {
		return fmt.Errorf("calibration core: %w", err)
	}
	s.setHealthy(true)
	return nil
}

func (s *Supervisor) spawn() error {
	parts := strings.Fields(s.command)
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start calibration core: %w", err)
	}
	s.logger.Info("calibration core started", "pid", cmd.Process.Pid, "command", parts[0])

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()
	return nil
}

func (s *Supervisor) setHealthy(healthy bool) {
	s.mu.Lock()
	s.healthy = healthy
	s.mu.Unlock()

	if healthy {
		s.metrics.BackendHealthy.Set(1)
	} else {
		s.metrics.BackendHealthy.Set(0)
	}
}

func (s *Supervisor) isHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthy
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
