package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/stamper/internal/adapters/command"
	"github.com/bft-labs/stamper/internal/adapters/convert"
	"github.com/bft-labs/stamper/internal/adapters/cups"
	"github.com/bft-labs/stamper/internal/adapters/fs"
	logAdapter "github.com/bft-labs/stamper/internal/adapters/log"
	"github.com/bft-labs/stamper/internal/adapters/pdf"
	"github.com/bft-labs/stamper/internal/app"
	"github.com/bft-labs/stamper/internal/cliconfig"
	"github.com/bft-labs/stamper/internal/domain"
)

// runBatch wires the adapters from cfg and runs one batch.
func runBatch(ctx context.Context, cmd *cobra.Command, cfg cliconfig.Config) error {
	log := logAdapter.NewConsoleLogger(cmd.ErrOrStderr(), cfg.Verbose)
	journal := logAdapter.NewJournal(logAdapter.NewZerologAdapterWithLogger(log))

	log.Debug().Interface("config", cfg).Msg("configuration")

	dests, err := destinationsFrom(cfg.Destinations)
	if err != nil {
		return err
	}
	placement, err := placementFrom(cfg.Placement)
	if err != nil {
		return err
	}
	paper, _ := domain.ParsePaperSize(cfg.Paper)

	runner := command.ExecRunner{}
	spooler := cups.NewSpooler(runner)

	compositor := pdf.NewCompositor(pdf.Config{
		Font:         cfg.Font,
		FallbackFont: pdf.DefaultFallbackFont,
		FontSize:     cfg.FontSize,
		Paper:        paper,
		Placement:    placement,
	}, journal)

	orch := app.NewOrchestrator(app.Config{
		Template: cfg.Template,
		Wait:     cfg.Wait,
		Pause:    cfg.Pause,
	}, app.Deps{
		Destinations: dests,
		Converter:    convert.ForTemplate(cfg.Template, cfg.Converter, runner),
		Compositor:   compositor,
		Dispatcher: app.NewDispatcher(app.DispatcherConfig{
			OutputDir: cfg.OutputDir,
			Paper:     paper,
		}, spooler, journal),
		Monitor: app.NewMonitor(app.MonitorConfig{
			Timeout:  cfg.MonitorTimeout,
			Interval: cfg.MonitorInterval,
		}, spooler, journal),
		Workspace: fs.NewWorkspace(cfg.WorkDir),
		Logger:    journal,
		Progress:  app.NewLogProgress(journal),
	})

	job := domain.Job{
		StartSerial: cfg.StartSerial,
		Copies:      cfg.Copies,
		Destination: cfg.Printer,
		Paper:       paper,
	}
	report, err := orch.Run(ctx, job)
	printReport(cmd.OutOrStdout(), report)
	return err
}

// listDestinations prints the configured destinations and whether the
// spooler reports their queue.
func listDestinations(ctx context.Context, w io.Writer, cfg cliconfig.Config) error {
	dests, err := destinationsFrom(cfg.Destinations)
	if err != nil {
		return err
	}

	known := map[string]bool{}
	queues, err := cups.NewSpooler(nil).Destinations(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spooler unavailable: %v\n", err)
	}
	for _, q := range queues {
		known[q] = true
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tQUEUE\tSPOOLER")
	for _, d := range dests {
		state := "missing"
		if known[d.Queue] {
			state = "ready"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Kind, d.Queue, state)
	}
	return tw.Flush()
}

func destinationsFrom(cfgs []cliconfig.DestinationConfig) (app.Destinations, error) {
	dests := make(app.Destinations, 0, len(cfgs))
	for _, c := range cfgs {
		dests = append(dests, app.Destination{
			Name:  c.Name,
			Kind:  app.DestinationKind(c.Kind),
			Queue: c.Queue,
		})
	}
	if err := dests.Validate(); err != nil {
		return nil, err
	}
	return dests, nil
}

func placementFrom(points map[string]cliconfig.Point) (map[domain.PaperSize]pdf.Point, error) {
	if len(points) == 0 {
		return nil, nil
	}
	out := make(map[domain.PaperSize]pdf.Point, len(points))
	for name, p := range points {
		paper, ok := domain.ParsePaperSize(name)
		if !ok {
			return nil, fmt.Errorf("placement: unknown paper size %q", name)
		}
		out[paper] = pdf.Point{X: p.X, Y: p.Y}
	}
	return out, nil
}

func printReport(w io.Writer, r *domain.Report) {
	if r == nil || r.Attempted() == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAMP\tRESULT\tMEDIA\tDETAIL")
	for _, res := range r.Results {
		media := res.Media
		if media == "" {
			media = "-"
		}
		if res.OK {
			fmt.Fprintf(tw, "%s\tok\t%s\t%s\n", res.Unit.Label(), media, strings.Join(res.Files, ", "))
			continue
		}
		fmt.Fprintf(tw, "%s\tfailed\t%s\t%v\n", res.Unit.Label(), media, res.Err)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d of %d stamps succeeded (run %s, %s)\n",
		r.Succeeded(), r.Attempted(), r.RunID, r.Finished.Sub(r.Started).Round(time.Millisecond))
	fmt.Fprintf(w, "paper %s (device mode %d)\n", r.Job.Paper.Media(), r.Job.Paper.DevModeCode())
}

// supportedPapers lists the paper sizes in display order.
func supportedPapers() string {
	names := make([]string, 0, len(domain.PaperSizes))
	for _, p := range domain.PaperSizes {
		names = append(names, p.Media())
	}
	return strings.Join(names, ", ")
}
