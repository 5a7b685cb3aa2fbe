package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/parceltrack/internal/classify"
	"github.com/rshade/parceltrack/internal/config"
	"github.com/rshade/parceltrack/internal/cpost"
	"github.com/rshade/parceltrack/internal/engine"
	"github.com/rshade/parceltrack/internal/logging"
	"github.com/rshade/parceltrack/internal/store"
	"github.com/rshade/parceltrack/internal/tui"
)

// syncFlags holds the flag values for the sync command.
type syncFlags struct {
	input           string
	output          string
	endpoint        string
	language        string
	timeoutSeconds  int
	checkpointEvery int
	noTUI           bool
}

func newSyncCmd() *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Look up every tracking number in a spreadsheet and save enriched results",
		Long: "Reads the tracking-number column from the input spreadsheet, queries the parcel " +
			"history service for each row, classifies the required action, and writes the table " +
			"back with Stav, Last Update, and Action Required columns. Progress is saved every " +
			"few rows so an interrupted run loses little work.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input spreadsheet (.csv or .xlsx) with a tracking-number column")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"output path (default: input path with "+store.OutputSuffix+" before the extension)")
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "parcel history endpoint (overrides config)")
	cmd.Flags().StringVar(&flags.language, "language", "", "provider status language (overrides config)")
	cmd.Flags().IntVar(&flags.timeoutSeconds, "timeout", 0, "per-lookup timeout in seconds (overrides config)")
	cmd.Flags().IntVar(&flags.checkpointEvery, "checkpoint-every", 0, "rows between intermediate saves (overrides config)")
	cmd.Flags().BoolVar(&flags.noTUI, "no-tui", false, "disable the interactive progress display")

	return cmd
}

func runSync(cmd *cobra.Command, flags syncFlags) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cfg := config.GetGlobalConfig()
	lookupCfg := cfg.Lookup
	syncCfg := cfg.Sync
	if cmd.Flags().Changed("endpoint") {
		lookupCfg.Endpoint = flags.endpoint
	}
	if cmd.Flags().Changed("language") {
		lookupCfg.Language = flags.language
	}
	if cmd.Flags().Changed("timeout") {
		lookupCfg.TimeoutSeconds = flags.timeoutSeconds
	}
	if cmd.Flags().Changed("checkpoint-every") {
		syncCfg.CheckpointInterval = flags.checkpointEvery
	}

	table, err := store.Load(flags.input, syncCfg.TrackingAliases)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("input", flags.input).Msg("failed to load spreadsheet")
		return fmt.Errorf("loading %s: %w", flags.input, err)
	}
	log.Info().Ctx(ctx).
		Str("input", flags.input).
		Int("rows", table.Len()).
		Msg("spreadsheet loaded")

	client := cpost.NewClient(cpost.Options{
		BaseURL:  lookupCfg.Endpoint,
		Language: lookupCfg.Language,
		Timeout:  time.Duration(lookupCfg.TimeoutSeconds) * time.Second,
		Logger:   *log,
	})

	cancel := &engine.CancelFlag{}
	opts := engine.Options{
		Store:              table,
		Client:             client,
		Classifier:         classify.NewDefault(),
		Output:             flags.output,
		CheckpointInterval: syncCfg.CheckpointInterval,
		Cancel:             cancel,
		Logger:             *log,
	}

	if !flags.noTUI && isTerminal(os.Stdout) {
		return runSyncInteractive(ctx, table.Len(), cancel, opts)
	}
	return runSyncPlain(ctx, cmd, opts)
}

// runSyncInteractive drives the run on its own goroutine while the Bubble
// Tea program owns the terminal. The runner only talks to the TUI through
// Program.Send; the TUI only talks back through the cancel flag.
func runSyncInteractive(
	ctx context.Context,
	totalRows int,
	cancel *engine.CancelFlag,
	opts engine.Options,
) error {
	p := tea.NewProgram(tui.NewSyncModel(cancel, totalRows))

	var runner *engine.Runner
	opts.Progress = func(current, total int, trackingNumber string) {
		snap := runner.State()
		p.Send(tui.ProgressMsg{
			Current:        current,
			Total:          total,
			TrackingNumber: trackingNumber,
			Succeeded:      snap.SuccessCount,
			Failed:         snap.ErrorCount,
		})
	}
	runner = engine.NewRunner(opts)

	var runErr error
	go func() {
		summary, err := runner.Run(ctx)
		runErr = err
		p.Send(tui.DoneMsg{Summary: summary, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel.Cancel()
		return fmt.Errorf("failed to run progress TUI: %w", err)
	}
	return runErr
}

// runSyncPlain runs without a TUI: progress goes to the log, the summary to
// stdout, and SIGINT/SIGTERM cancel cooperatively via the context.
func runSyncPlain(ctx context.Context, cmd *cobra.Command, opts engine.Options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.FromContext(ctx)
	opts.Progress = func(current, total int, trackingNumber string) {
		log.Info().Ctx(ctx).
			Int("current", current).
			Int("total", total).
			Str("tracking_number", trackingNumber).
			Msg("processing row")
	}

	summary, err := engine.NewRunner(opts).Run(ctx)
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunSummary(summary))
	return err
}
