package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/stamper/internal/cliconfig"
	"github.com/bft-labs/stamper/internal/domain"
)

const helpDescription = `
Print a batch of serially numbered stamps from a single document template.

Each stamp is converted to PDF, labelled with a zero-padded serial number on
its first page and sent to a printer or saved as a PDF file, one at a time.

Highlights:
  - Accepts .docx/.odt templates (converted with LibreOffice) or ready PDFs.
  - Prints through CUPS, or saves stamp_<serial>.pdf files.
  - A failed stamp is logged and skipped; the batch carries on.
  - Configure via file ($HOME/.stamper/config.toml), .env, STAMPER_* or flags.
`

var longHelp = strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  stamper --start 120 --copies 50
  stamper --printer "Save as PDF" --output-dir ~/stamps --copies 3
  stamper --template ./stamp.odt --paper A4 --wait=false
  stamper destinations
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "stamper",
		Short:         "Print serially numbered stamps from a document template",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runBatch(ctx, cmd, cfg)
		},
	}

	destinations := &cobra.Command{
		Use:   "destinations",
		Short: "List configured destinations and the queues the spooler knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			return listDestinations(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	root.AddCommand(destinations)

	// Flags
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.stamper/config.toml)")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log debug output")

	root.Flags().StringVar(&cfg.Template, "template", cfg.Template, "document template (default: stamp.docx next to the executable)")
	root.Flags().IntVar(&cfg.StartSerial, "start", cfg.StartSerial, "serial number of the first stamp")
	root.Flags().IntVarP(&cfg.Copies, "copies", "n", cfg.Copies, "number of stamps to produce")
	root.Flags().StringVarP(&cfg.Printer, "printer", "p", cfg.Printer, "destination name")
	root.Flags().StringVar(&cfg.Paper, "paper", cfg.Paper, "paper size for printers: "+supportedPapers())
	root.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for stamps saved as PDF (default: next to the executable)")
	root.Flags().StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "directory for intermediate files (default: system temp dir)")

	root.Flags().BoolVar(&cfg.Wait, "wait", cfg.Wait, "wait for each stamp to leave the print queue")
	root.Flags().DurationVar(&cfg.MonitorTimeout, "monitor-timeout", cfg.MonitorTimeout, "how long to wait for the print queue")
	root.Flags().DurationVar(&cfg.MonitorInterval, "monitor-interval", cfg.MonitorInterval, "print queue poll interval")
	if err := root.Flags().MarkHidden("monitor-interval"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to hide monitor-interval flag:", err)
	}

	root.Flags().StringVar(&cfg.Font, "font", cfg.Font, "label font; falls back to Helvetica when unavailable")
	root.Flags().Float64Var(&cfg.FontSize, "font-size", cfg.FontSize, "label font size in points")
	root.Flags().StringVar(&cfg.Converter, "converter", cfg.Converter, "LibreOffice executable used to convert the template")
	root.Flags().DurationVar(&cfg.Pause, "pause", cfg.Pause, "delay between stamps")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stamper:", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

// loadConfig layers file, .env and environment values under the flags set
// on cmd, then resolves paths and validates.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgPath != "" && !cliconfig.FileExists(cfgPath) {
		return fmt.Errorf("config file %s not found", cfgPath)
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	// .env files never override variables that are already set.
	exeDir := cliconfig.ExecutableDir()
	if err := cliconfig.LoadDotEnv(".env", filepath.Join(exeDir, ".env")); err != nil {
		return err
	}
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	if err := cliconfig.ResolvePaths(cfg, exeDir); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, ok := domain.ParsePaperSize(cfg.Paper); !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "unknown paper size %q (supported: %s), using Letter\n", cfg.Paper, supportedPapers())
	}
	return nil
}
