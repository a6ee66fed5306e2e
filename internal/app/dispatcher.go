package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bft-labs/stamper/internal/adapters/fs"
	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

// Strategy records how a stamp reached its destination.
type Strategy string

const (
	// StrategyCopy wrote the PDF straight into the output directory.
	StrategyCopy Strategy = "copy"
	// StrategySpool handed the PDF to the save-as-PDF queue.
	StrategySpool Strategy = "spool"
	// StrategyDevice printed on a physical device.
	StrategyDevice Strategy = "device"
)

// Receipt describes a dispatched stamp.
type Receipt struct {
	Destination Destination
	Strategy    Strategy

	// Path is the expected output file for save-as-PDF destinations.
	Path string

	// JobID is the spooler job, when one was created.
	JobID string

	// Media is the paper value applied to a physical device.
	Media string
}

// DispatcherConfig contains configuration for the dispatcher.
type DispatcherConfig struct {
	// OutputDir receives stamps saved as PDF.
	OutputDir string

	// Paper is applied to physical devices.
	Paper domain.PaperSize
}

// Dispatcher sends finished stamps to their destination.
type Dispatcher struct {
	cfg      DispatcherConfig
	spooler  ports.Spooler
	logger   ports.Logger
	copyFile func(src, dst string) error
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg DispatcherConfig, spooler ports.Spooler, logger ports.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		spooler:  spooler,
		logger:   logger,
		copyFile: fs.CopyFile,
	}
}

// Dispatch delivers artifact for unit to dest. Success means the stamp was
// written or accepted by the spooler; it does not mean it was printed.
func (d *Dispatcher) Dispatch(ctx context.Context, dest Destination, unit domain.Unit, artifact string) (Receipt, error) {
	switch dest.Kind {
	case KindPDF:
		return d.savePDF(ctx, dest, unit, artifact)
	case KindPrinter:
		return d.print(ctx, dest, unit, artifact)
	default:
		return Receipt{}, fmt.Errorf("%w: %q has kind %q", domain.ErrUnknownDestination, dest.Name, dest.Kind)
	}
}

func (d *Dispatcher) savePDF(ctx context.Context, dest Destination, unit domain.Unit, artifact string) (Receipt, error) {
	out := filepath.Join(d.cfg.OutputDir, unit.OutputName())
	r := Receipt{Destination: dest, Path: out}

	d.logger.Info("saving PDF", ports.String("path", out))

	copyErr := d.copyFile(artifact, out)
	if copyErr == nil {
		r.Strategy = StrategyCopy
		return r, nil
	}
	d.logger.Warn("direct copy failed, trying PDF printer",
		ports.String("label", unit.Label()),
		ports.Err(copyErr),
	)

	if dest.Queue == "" {
		return r, fmt.Errorf("PDF save failed: no PDF printer queue configured: %w", copyErr)
	}

	res, err := d.spooler.Submit(ctx, dest.Queue, artifact, ports.SubmitOptions{
		Title:      jobTitle(unit),
		OutputPath: out,
	})
	switch {
	case err != nil && res.Status == 0:
		return r, fmt.Errorf("PDF save failed: %w", errors.Join(copyErr, err))
	case err != nil || res.Status != 0:
		return r, fmt.Errorf("PDF save failed (exit status %d): %w", res.Status, errors.Join(copyErr, err))
	}
	r.Strategy = StrategySpool
	r.JobID = res.JobID
	return r, nil
}

func (d *Dispatcher) print(ctx context.Context, dest Destination, unit domain.Unit, artifact string) (Receipt, error) {
	r := Receipt{Destination: dest, Strategy: StrategyDevice}

	err := withDevice(ctx, d.spooler, dest.Queue, func(dev ports.Device) error {
		opts, err := dev.Options(ctx)
		if err != nil {
			return err
		}
		opt, ok := PaperOption(opts)
		if !ok {
			return domain.ErrNoDeviceMode
		}

		media := matchChoice(opt.Choices, d.cfg.Paper.Media())
		if err := dev.Apply(ctx, opt.Name, media); err != nil {
			return err
		}
		r.Media = media

		res, err := dev.Submit(ctx, artifact, ports.SubmitOptions{Media: media, Title: jobTitle(unit)})
		if err != nil {
			return err
		}
		r.JobID = res.JobID
		return nil
	})
	if err != nil {
		return r, fmt.Errorf("print failed: %w", err)
	}

	d.logger.Info("sent to printer",
		ports.String("printer", dest.Name),
		ports.String("job", r.JobID),
		ports.String("media", r.Media),
	)
	return r, nil
}

// withDevice opens queue, runs fn and closes the device on every path,
// including panics in fn. A close failure is joined into the result.
func withDevice(ctx context.Context, spooler ports.Spooler, queue string, fn func(ports.Device) error) (err error) {
	dev, err := spooler.Open(ctx, queue)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close printer %q: %w", queue, cerr))
		}
	}()
	return fn(dev)
}

// PaperOption finds the modifiable paper-size option of a device.
func PaperOption(opts []ports.DeviceOption) (ports.DeviceOption, bool) {
	for _, want := range []string{"PageSize", "media"} {
		for _, o := range opts {
			if strings.EqualFold(o.Name, want) && len(o.Choices) > 0 {
				return o, true
			}
		}
	}
	return ports.DeviceOption{}, false
}

// matchChoice returns the device's spelling of media, or media itself when
// the device does not list it.
func matchChoice(choices []string, media string) string {
	for _, c := range choices {
		if strings.EqualFold(c, media) {
			return c
		}
	}
	return media
}

func jobTitle(unit domain.Unit) string {
	return strings.TrimSuffix(unit.OutputName(), filepath.Ext(unit.OutputName()))
}
