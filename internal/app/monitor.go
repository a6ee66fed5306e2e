package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/stamper/internal/adapters/fs"
	"github.com/bft-labs/stamper/internal/ports"
)

// Default monitor timings.
const (
	DefaultMonitorTimeout      = 120 * time.Second
	DefaultMonitorInterval     = 2 * time.Second
	DefaultMonitorErrorBackoff = 1 * time.Second
)

// MonitorConfig contains configuration for the completion monitor.
type MonitorConfig struct {
	Timeout      time.Duration
	Interval     time.Duration
	ErrorBackoff time.Duration
}

// DefaultMonitorConfig returns a MonitorConfig with default values.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Timeout:      DefaultMonitorTimeout,
		Interval:     DefaultMonitorInterval,
		ErrorBackoff: DefaultMonitorErrorBackoff,
	}
}

// Monitor waits for dispatched stamps to leave the spooler.
// It is best-effort: a timeout is reported, never treated as a failure.
type Monitor struct {
	cfg     MonitorConfig
	spooler ports.Spooler
	logger  ports.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewMonitor creates a monitor. Zero durations in cfg take their defaults.
func NewMonitor(cfg MonitorConfig, spooler ports.Spooler, logger ports.Logger) *Monitor {
	def := DefaultMonitorConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = def.ErrorBackoff
	}
	return &Monitor{
		cfg:     cfg,
		spooler: spooler,
		logger:  logger,
		now:     time.Now,
		after:   time.After,
	}
}

// WaitForQueue polls queue until it has no pending jobs or the timeout
// elapses. Polling errors are logged and retried after the error backoff.
// The error is non-nil only when ctx is done.
func (m *Monitor) WaitForQueue(ctx context.Context, queue string) (bool, error) {
	deadline := m.now().Add(m.cfg.Timeout)

	for m.now().Before(deadline) {
		delay := m.cfg.Interval

		n, err := m.spooler.PendingJobs(ctx, queue)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			m.logger.Warn("printer monitoring error", ports.String("queue", queue), ports.Err(err))
			delay = m.cfg.ErrorBackoff
		case n == 0:
			m.logger.Info("print job completed", ports.String("queue", queue))
			return true, nil
		default:
			m.logger.Debug("waiting for print queue", ports.String("queue", queue), ports.Int("pending", n))
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-m.after(delay):
		}
	}

	m.logger.Warn("print queue did not drain before timeout",
		ports.String("queue", queue),
		ports.Duration("timeout", m.cfg.Timeout),
	)
	return false, nil
}

// WaitForFile waits until path exists with content or the timeout elapses.
// The directory is watched for changes and re-checked every interval.
func (m *Monitor) WaitForFile(ctx context.Context, path string) (bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return false, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	deadline := m.now().Add(m.cfg.Timeout)
	events, errs := watcher.Events, watcher.Errors

	for {
		if fs.NonEmpty(path) {
			m.logger.Info("PDF saved", ports.String("path", path))
			return true, nil
		}

		remaining := deadline.Sub(m.now())
		if remaining <= 0 {
			m.logger.Warn("PDF did not appear before timeout",
				ports.String("path", path),
				ports.Duration("timeout", m.cfg.Timeout),
			)
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			m.logger.Warn("file watcher error", ports.Err(werr))
		case <-m.after(min(m.cfg.Interval, remaining)):
		}
	}
}
