package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

// fakeSpooler implements ports.Spooler in memory.
type fakeSpooler struct {
	mu sync.Mutex

	options   map[string][]ports.DeviceOption
	openErr   error
	applyErr  error
	submitErr error
	status    int

	pending    []int
	pendingErr []error
	polls      int

	opened        int
	closed        int
	applied       []string
	submitted     []string
	submittedOpts []ports.SubmitOptions
}

func (s *fakeSpooler) Destinations(ctx context.Context) ([]string, error) {
	return []string{"HP", "PDF"}, nil
}

func (s *fakeSpooler) Open(ctx context.Context, queue string) (ports.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened++
	return &fakeDevice{spooler: s, queue: queue}, nil
}

func (s *fakeSpooler) Submit(ctx context.Context, queue, file string, opts ports.SubmitOptions) (ports.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitErr != nil {
		return ports.SubmitResult{Status: s.status}, s.submitErr
	}
	s.submitted = append(s.submitted, queue+":"+opts.Title)
	s.submittedOpts = append(s.submittedOpts, opts)
	return ports.SubmitResult{JobID: fmt.Sprintf("%s-%d", queue, len(s.submitted)), Status: s.status}, nil
}

// PendingJobs replays pending/pendingErr one poll at a time; the last
// value repeats.
func (s *fakeSpooler) PendingJobs(ctx context.Context, queue string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.polls
	s.polls++
	if i < len(s.pendingErr) && s.pendingErr[i] != nil {
		return 0, s.pendingErr[i]
	}
	if len(s.pending) == 0 {
		return 0, nil
	}
	if i >= len(s.pending) {
		i = len(s.pending) - 1
	}
	return s.pending[i], nil
}

type fakeDevice struct {
	spooler *fakeSpooler
	queue   string
	closed  bool
}

func (d *fakeDevice) Name() string { return d.queue }

func (d *fakeDevice) Options(ctx context.Context) ([]ports.DeviceOption, error) {
	if d.closed {
		return nil, domain.ErrDeviceClosed
	}
	return d.spooler.options[d.queue], nil
}

func (d *fakeDevice) Apply(ctx context.Context, name, value string) error {
	if d.closed {
		return domain.ErrDeviceClosed
	}
	if d.spooler.applyErr != nil {
		return d.spooler.applyErr
	}
	d.spooler.applied = append(d.spooler.applied, name+"="+value)
	return nil
}

func (d *fakeDevice) Submit(ctx context.Context, file string, opts ports.SubmitOptions) (ports.SubmitResult, error) {
	if d.closed {
		return ports.SubmitResult{}, domain.ErrDeviceClosed
	}
	return d.spooler.Submit(ctx, d.queue, file, opts)
}

func (d *fakeDevice) Close() error {
	d.closed = true
	d.spooler.mu.Lock()
	d.spooler.closed++
	d.spooler.mu.Unlock()
	return nil
}

func pageSizeOption() []ports.DeviceOption {
	return []ports.DeviceOption{
		{Name: "Duplex", Choices: []string{"None"}, Current: "None"},
		{Name: "PageSize", Label: "Media Size", Choices: []string{"Letter", "Legal", "A4"}, Current: "Letter"},
	}
}

// fakeConverter writes a small file per conversion and fails on the
// calls listed in failOn (zero-based).
type fakeConverter struct {
	failOn  map[int]bool
	calls   int
	opened  int
	closed  int
	openErr error
}

func (c *fakeConverter) Open(ctx context.Context) (ports.ConversionSession, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.opened++
	return &fakeSession{conv: c}, nil
}

type fakeSession struct {
	conv *fakeConverter
}

func (s *fakeSession) Convert(ctx context.Context, src, outDir string) (string, error) {
	i := s.conv.calls
	s.conv.calls++
	if s.conv.failOn[i] {
		return "", errors.New("conversion engine crashed")
	}
	out := filepath.Join(outDir, "stamp.pdf")
	return out, os.WriteFile(out, []byte("%PDF-1.7 converted"), 0o600)
}

func (s *fakeSession) Close() error {
	s.conv.closed++
	return nil
}

// fakeCompositor appends the label to the source bytes.
type fakeCompositor struct {
	failSerials map[int]bool
	serials     []int
}

func (c *fakeCompositor) Compose(ctx context.Context, src, dst string, serial int) (ports.Stamp, error) {
	c.serials = append(c.serials, serial)
	label := domain.FormatLabel(serial)
	if c.failSerials[serial] {
		return ports.Stamp{}, errors.New("render failed")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return ports.Stamp{}, err
	}
	if err := os.WriteFile(dst, append(data, []byte(" "+label)...), 0o600); err != nil {
		return ports.Stamp{}, err
	}
	return ports.Stamp{Path: dst, Label: label, Font: "Helvetica"}, nil
}

// phaseRecorder implements PhaseObserver.
type phaseRecorder struct {
	phases map[int][]Phase
}

func (r *phaseRecorder) OnPhase(unit domain.Unit, p Phase) {
	if r.phases == nil {
		r.phases = map[int][]Phase{}
	}
	r.phases[unit.Serial] = append(r.phases[unit.Serial], p)
}

// fakeClock drives Monitor without real sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}
