// Package cups implements the spooler port with the CUPS command line
// tools (lp, lpstat, lpoptions).
package cups

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/bft-labs/stamper/internal/adapters/command"
	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

var requestIDPattern = regexp.MustCompile(`request id is (\S+)`)

// Spooler implements ports.Spooler.
type Spooler struct {
	runner command.Runner
}

// NewSpooler creates a spooler. A nil runner executes real commands.
func NewSpooler(runner command.Runner) *Spooler {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Spooler{runner: runner}
}

// Destinations lists the queues known to the spooler.
func (s *Spooler) Destinations(ctx context.Context) ([]string, error) {
	out, err := s.runner.Run(ctx, "lpstat", "-e")
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	return lines(out), nil
}

// Open acquires a handle on queue. The queue must exist.
func (s *Spooler) Open(ctx context.Context, queue string) (ports.Device, error) {
	if _, err := s.runner.Run(ctx, "lpstat", "-p", queue); err != nil {
		return nil, fmt.Errorf("open printer %q: %w", queue, err)
	}
	return &Device{runner: s.runner, queue: queue}, nil
}

// Submit prints file on queue.
func (s *Spooler) Submit(ctx context.Context, queue, file string, opts ports.SubmitOptions) (ports.SubmitResult, error) {
	return submit(ctx, s.runner, queue, file, opts)
}

// PendingJobs counts the jobs queued on queue.
func (s *Spooler) PendingJobs(ctx context.Context, queue string) (int, error) {
	out, err := s.runner.Run(ctx, "lpstat", "-o", queue)
	if err != nil {
		return 0, fmt.Errorf("list jobs on %q: %w", queue, err)
	}
	return len(lines(out)), nil
}

// Device is an open handle on a CUPS queue.
type Device struct {
	runner command.Runner
	queue  string

	mu     sync.Mutex
	closed bool
}

// Name returns the queue name.
func (d *Device) Name() string {
	return d.queue
}

// Options returns the queue's PPD options.
func (d *Device) Options(ctx context.Context) ([]ports.DeviceOption, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	out, err := d.runner.Run(ctx, "lpoptions", "-p", d.queue, "-l")
	if err != nil {
		return nil, fmt.Errorf("read options of %q: %w", d.queue, err)
	}
	return ParseOptions(out), nil
}

// Apply stores name=value as the queue's default.
func (d *Device) Apply(ctx context.Context, name, value string) error {
	if err := d.check(); err != nil {
		return err
	}
	if _, err := d.runner.Run(ctx, "lpoptions", "-p", d.queue, "-o", name+"="+value); err != nil {
		return fmt.Errorf("apply %s=%s on %q: %w", name, value, d.queue, err)
	}
	return nil
}

// Submit prints file on the queue.
func (d *Device) Submit(ctx context.Context, file string, opts ports.SubmitOptions) (ports.SubmitResult, error) {
	if err := d.check(); err != nil {
		return ports.SubmitResult{Status: -1}, err
	}
	return submit(ctx, d.runner, d.queue, file, opts)
}

// Close releases the handle.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrDeviceClosed
	}
	d.closed = true
	return nil
}

func (d *Device) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return domain.ErrDeviceClosed
	}
	return nil
}

func submit(ctx context.Context, runner command.Runner, queue, file string, opts ports.SubmitOptions) (ports.SubmitResult, error) {
	args := []string{"-d", queue}
	if opts.Media != "" {
		args = append(args, "-o", "media="+opts.Media)
	}
	if opts.Title != "" {
		args = append(args, "-t", opts.Title)
	}
	if opts.OutputPath != "" {
		args = append(args, "-o", "outputfile="+opts.OutputPath)
	}
	args = append(args, "--", file)

	out, err := runner.Run(ctx, "lp", args...)
	if err != nil {
		return ports.SubmitResult{Status: command.ExitStatus(err)}, fmt.Errorf("submit to %q: %w", queue, err)
	}

	res := ports.SubmitResult{}
	if m := requestIDPattern.FindSubmatch(out); m != nil {
		res.JobID = string(m[1])
	}
	return res, nil
}

// ParseOptions parses `lpoptions -l` output. Each line has the form
// "Name/Label: choice *current choice".
func ParseOptions(out []byte) []ports.DeviceOption {
	var opts []ports.DeviceOption
	for _, line := range lines(out) {
		head, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name, label, _ := strings.Cut(head, "/")
		opt := ports.DeviceOption{Name: strings.TrimSpace(name), Label: strings.TrimSpace(label)}
		for _, choice := range strings.Fields(rest) {
			if strings.HasPrefix(choice, "*") {
				choice = strings.TrimPrefix(choice, "*")
				opt.Current = choice
			}
			opt.Choices = append(opt.Choices, choice)
		}
		if opt.Name != "" {
			opts = append(opts, opt)
		}
	}
	return opts
}

func lines(out []byte) []string {
	var res []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			res = append(res, l)
		}
	}
	return res
}
