package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/stamper/internal/adapters/fs"
	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

// DefaultPause is the delay between two units.
const DefaultPause = 500 * time.Millisecond

// Config contains configuration for the batch orchestrator.
type Config struct {
	// Template is the document every stamp is made from.
	Template string

	// Wait enables the completion monitor after each dispatch.
	Wait bool

	// Pause is the delay between two units.
	Pause time.Duration
}

// EntrySource is implemented by loggers that keep the run journal.
// Reset is called when a batch starts so each report holds only its own run.
type EntrySource interface {
	Entries() []domain.Entry
	Reset()
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Destinations Destinations
	Converter    ports.Converter
	Compositor   ports.Compositor
	Dispatcher   *Dispatcher
	Monitor      *Monitor
	Workspace    *fs.Workspace
	Logger       ports.Logger

	// Optional.
	Progress ports.Progress
	Observer PhaseObserver
	Emitter  EventEmitter
}

// Orchestrator runs stamp batches one unit at a time.
type Orchestrator struct {
	cfg       Config
	deps      Deps
	logger    ports.Logger
	lifecycle *Lifecycle

	newRunID func() string
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg Config, deps Deps) *Orchestrator {
	if deps.Progress == nil {
		deps.Progress = noopProgress{}
	}
	return &Orchestrator{
		cfg:       cfg,
		deps:      deps,
		logger:    deps.Logger,
		lifecycle: NewLifecycle(deps.Logger, deps.Emitter),
		newRunID:  func() string { return uuid.NewString() },
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// State returns the lifecycle state of the current or last batch.
func (o *Orchestrator) State() State {
	return o.lifecycle.State()
}

// Run executes job. A non-nil error means the batch was aborted: either a
// fatal error before the first unit, or ctx ended. Unit failures are
// reported in the Report and do not stop the batch.
func (o *Orchestrator) Run(ctx context.Context, job domain.Job) (*domain.Report, error) {
	report := &domain.Report{
		RunID:   o.newRunID(),
		Job:     job,
		Started: o.now(),
	}

	if !o.lifecycle.CanStart() {
		return report, fmt.Errorf("%w: a batch is already running", domain.ErrInvalidTransition)
	}
	if src, ok := o.logger.(EntrySource); ok {
		src.Reset()
	}
	if err := o.lifecycle.TransitionTo(StateRunning, "batch started"); err != nil {
		return report, err
	}

	dest, err := o.prepare(job)
	if err != nil {
		o.logger.Error("fatal error", ports.String("run", report.RunID), ports.Err(err))
		return o.finish(report, StateAborted, "fatal error"), err
	}

	o.logger.Info("starting batch",
		ports.String("run", report.RunID),
		ports.Int("copies", job.Copies),
		ports.String("first", domain.FormatLabel(job.StartSerial)),
		ports.String("last", domain.FormatLabel(job.LastSerial())),
		ports.String("destination", dest.Name),
		ports.String("paper", job.Paper.String()),
		ports.String("work_dir", o.deps.Workspace.Root()),
	)
	o.deps.Progress.Start(job.Copies)

	for i, unit := range job.Units() {
		if err := ctx.Err(); err != nil {
			return o.abort(report, err)
		}
		if i > 0 && o.cfg.Pause > 0 {
			if err := o.sleep(ctx, o.cfg.Pause); err != nil {
				return o.abort(report, err)
			}
		}

		o.deps.Progress.Step(i+1, job.Copies, unit)
		o.logger.Info("processing stamp",
			ports.String("label", unit.Label()),
			ports.Int("n", i+1),
			ports.Int("of", job.Copies),
		)

		res := o.runUnit(ctx, dest, unit)
		report.Results = append(report.Results, res)
		if res.Err != nil {
			o.logger.Error("error processing stamp", ports.String("label", unit.Label()), ports.Err(res.Err))
		}
	}

	o.logger.Info(fmt.Sprintf("processed %d stamps: %d succeeded, %d failed",
		report.Attempted(), report.Succeeded(), len(report.Failed())),
		ports.String("run", report.RunID),
	)
	return o.finish(report, StateCompleted, "batch finished"), nil
}

// prepare performs the checks that abort a batch before any unit runs.
func (o *Orchestrator) prepare(job domain.Job) (Destination, error) {
	if err := job.Validate(); err != nil {
		return Destination{}, domain.Fatal(domain.StageSetup, err)
	}
	dest, err := o.deps.Destinations.Lookup(job.Destination)
	if err != nil {
		return Destination{}, domain.Fatal(domain.StageSetup, err)
	}
	info, err := os.Stat(o.cfg.Template)
	if err != nil || info.IsDir() {
		return Destination{}, domain.Fatal(domain.StageSetup,
			fmt.Errorf("%w: %s", domain.ErrTemplateMissing, o.cfg.Template))
	}
	return dest, nil
}

// runUnit drives one unit through its phases. Its work directory is
// removed on every path.
func (o *Orchestrator) runUnit(ctx context.Context, dest Destination, unit domain.Unit) (res domain.UnitResult) {
	res.Unit = unit

	dir, err := o.deps.Workspace.Prepare(unit)
	if err != nil {
		res.Err = domain.UnitFailure(domain.StageSetup, unit.Serial, err)
		return res
	}
	defer func() {
		o.phase(unit, PhaseCleaning)
		if err := dir.Remove(); err != nil {
			o.logger.Warn("cleanup failed",
				ports.String("label", unit.Label()),
				ports.Err(domain.BestEffort(domain.StageCleanup, unit.Serial, err)),
			)
		}
	}()

	o.phase(unit, PhaseConverting)
	converted, err := o.convert(ctx, dir.Path)
	if err != nil {
		res.Err = domain.UnitFailure(domain.StageConvert, unit.Serial, err)
		return res
	}

	o.phase(unit, PhaseCompositing)
	stamp, err := o.deps.Compositor.Compose(ctx, converted, dir.Composed(), unit.Serial)
	if err != nil {
		res.Err = domain.UnitFailure(domain.StageCompose, unit.Serial, err)
		return res
	}
	o.logger.Info("stamp generated", ports.String("label", stamp.Label), ports.String("font", stamp.Font))

	o.phase(unit, PhaseDispatching)
	receipt, err := o.deps.Dispatcher.Dispatch(ctx, dest, unit, stamp.Path)
	if err != nil {
		res.Err = domain.UnitFailure(domain.StageDispatch, unit.Serial, err)
		return res
	}
	if receipt.Path != "" {
		res.Files = append(res.Files, receipt.Path)
	}
	res.Media = receipt.Media
	res.OK = true

	if o.cfg.Wait {
		o.phase(unit, PhaseMonitoring)
		o.confirm(ctx, unit, receipt)
	}
	return res
}

// convert runs the template through a conversion session that is released
// before returning.
func (o *Orchestrator) convert(ctx context.Context, outDir string) (string, error) {
	o.logger.Debug("converting template", ports.String("template", o.cfg.Template))

	sess, err := o.deps.Converter.Open(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			o.logger.Warn("close converter failed", ports.Err(err))
		}
	}()

	return sess.Convert(ctx, o.cfg.Template, outDir)
}

// confirm waits for the destination to take the stamp. The outcome is only
// logged.
func (o *Orchestrator) confirm(ctx context.Context, unit domain.Unit, r Receipt) {
	var (
		ok  bool
		err error
	)
	switch {
	case r.Strategy == StrategyDevice:
		ok, err = o.deps.Monitor.WaitForQueue(ctx, r.Destination.Queue)
	case r.Strategy == StrategySpool:
		ok, err = o.deps.Monitor.WaitForFile(ctx, r.Path)
	default:
		return
	}

	if err != nil {
		o.logger.Warn("completion monitor failed",
			ports.String("label", unit.Label()),
			ports.Err(domain.BestEffort(domain.StageMonitor, unit.Serial, err)),
		)
		return
	}
	if !ok {
		o.logger.Warn("completion not confirmed", ports.String("label", unit.Label()))
	}
}

func (o *Orchestrator) abort(report *domain.Report, err error) (*domain.Report, error) {
	o.logger.Error("batch aborted", ports.String("run", report.RunID), ports.Err(err))
	return o.finish(report, StateAborted, "batch aborted"), err
}

func (o *Orchestrator) finish(report *domain.Report, state State, reason string) *domain.Report {
	o.deps.Progress.Reset()
	if err := o.lifecycle.TransitionTo(state, reason); err != nil {
		o.logger.Error("lifecycle", ports.Err(err))
	}
	report.State = state.String()
	report.Finished = o.now()
	if src, ok := o.logger.(EntrySource); ok {
		report.Entries = src.Entries()
	}
	return report
}

func (o *Orchestrator) phase(unit domain.Unit, p Phase) {
	if o.deps.Observer != nil {
		o.deps.Observer.OnPhase(unit, p)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type noopProgress struct{}

func (noopProgress) Start(int)                  {}
func (noopProgress) Step(int, int, domain.Unit) {}
func (noopProgress) Reset()                     {}
