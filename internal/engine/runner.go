// Package engine drives the batch synchronization loop: one lookup per row
// in source order, incremental persistence, partial-failure isolation, and
// cooperative cancellation.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/parceltrack/internal/classify"
	"github.com/rshade/parceltrack/internal/cpost"
	"github.com/rshade/parceltrack/internal/store"
)

// FailedLookupAction is written to a row's Action Required column when its
// lookup fails. It is distinct from every classifier-derived action, and the
// row's previous status and date are left untouched.
const FailedLookupAction = "Failed to get status"

// DefaultCheckpointInterval is the number of attempted rows between
// intermediate persists, bounding data loss on abrupt termination.
const DefaultCheckpointInterval = 10

// StatusLookup resolves one tracking number to its newest status event.
type StatusLookup interface {
	Lookup(ctx context.Context, trackingNumber string) (cpost.Result, error)
}

// TabularStore is the loaded record source/sink the loop reads and persists.
type TabularStore interface {
	Records() []*store.Record
	Persist(dest string) error
}

// ProgressFunc receives a progress event before each row is looked up. It
// is a side-channel notification: implementations must not block, and a
// panicking callback never fails the row.
type ProgressFunc func(current, total int, trackingNumber string)

// Summary is the final report of a run.
type Summary struct {
	Status    Status
	TotalRows int
	Processed int
	Succeeded int
	Failed    int
}

// Options configures a Runner.
type Options struct {
	Store      TabularStore
	Client     StatusLookup
	Classifier *classify.Classifier

	// Output is the persist destination; empty means the store's default.
	Output string

	// CheckpointInterval overrides DefaultCheckpointInterval when positive.
	CheckpointInterval int

	// Progress is optional.
	Progress ProgressFunc

	// Cancel is optional; a nil flag means only context cancellation stops
	// the run.
	Cancel *CancelFlag

	Logger zerolog.Logger
}

// Runner executes one batch run over a loaded table. A Runner is single
// use: it owns its RunState, and the caller must not start a second run
// against the same store while one is in flight.
type Runner struct {
	stor       TabularStore
	client     StatusLookup
	classifier *classify.Classifier
	output     string
	interval   int
	progress   ProgressFunc
	cancel     *CancelFlag
	state      *RunState
	log        zerolog.Logger
}

// NewRunner creates a Runner for the given loaded store.
func NewRunner(opts Options) *Runner {
	interval := opts.CheckpointInterval
	if interval <= 0 {
		interval = DefaultCheckpointInterval
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.NewDefault()
	}
	return &Runner{
		stor:       opts.Store,
		client:     opts.Client,
		classifier: classifier,
		output:     opts.Output,
		interval:   interval,
		progress:   opts.Progress,
		cancel:     opts.Cancel,
		state:      newRunState(len(opts.Store.Records())),
		log:        opts.Logger.With().Str("component", "engine").Logger(),
	}
}

// State returns a read-only snapshot of the run state.
func (r *Runner) State() StateSnapshot {
	return r.state.Snapshot()
}

// Run processes every row in source order. A single row's lookup failure
// marks that row and continues; a persist failure is fatal. On cancellation
// the run stops before the next row and deliberately skips the final save,
// so the last checkpoint is what remains on disk.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	records := r.stor.Records()
	total := len(records)
	r.state.setStatus(StatusRunning)

	r.log.Info().Ctx(ctx).
		Int("total_rows", total).
		Int("checkpoint_interval", r.interval).
		Msg("batch run started")

	processed := 0
	for i, rec := range records {
		if r.cancelled(ctx) {
			r.state.setStatus(StatusCancelled)
			r.log.Warn().Ctx(ctx).
				Int("processed", processed).
				Msg("batch run cancelled")
			return r.summary(processed), nil
		}

		r.reportProgress(i+1, total, rec.TrackingNumber)

		result, err := r.client.Lookup(ctx, rec.TrackingNumber)
		if err != nil {
			// One bad identifier never aborts the batch: mark the row and
			// keep whatever status/date it already had.
			rec.ActionRequired = FailedLookupAction
			r.state.recordError()
			r.log.Error().Ctx(ctx).Err(err).
				Str("tracking_number", rec.TrackingNumber).
				Int("row", i+1).
				Msg("lookup failed")
		} else {
			rec.Status = result.Status
			rec.LastUpdate = result.Date
			rec.ActionRequired = r.classifier.Classify(result.Status)
			r.state.recordSuccess()
		}

		r.state.advance()
		processed++

		if processed%r.interval == 0 {
			if err := r.checkpoint(ctx, processed); err != nil {
				r.state.setStatus(StatusFailed)
				return r.summary(processed), err
			}
		}
	}

	if err := r.checkpoint(ctx, processed); err != nil {
		r.state.setStatus(StatusFailed)
		return r.summary(processed), err
	}

	r.state.setStatus(StatusCompleted)
	snap := r.state.Snapshot()
	r.log.Info().Ctx(ctx).
		Int("succeeded", snap.SuccessCount).
		Int("failed", snap.ErrorCount).
		Msg("batch run completed")
	return r.summary(processed), nil
}

func (r *Runner) cancelled(ctx context.Context) bool {
	if r.cancel != nil && r.cancel.Cancelled() {
		return true
	}
	return ctx.Err() != nil
}

func (r *Runner) checkpoint(ctx context.Context, processed int) error {
	if err := r.stor.Persist(r.output); err != nil {
		r.log.Error().Ctx(ctx).Err(err).
			Int("processed", processed).
			Msg("persist failed")
		return fmt.Errorf("persisting results: %w", err)
	}
	r.log.Debug().Ctx(ctx).
		Int("processed", processed).
		Msg("checkpoint saved")
	return nil
}

func (r *Runner) reportProgress(current, total int, trackingNumber string) {
	if r.progress == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn().Interface("panic", p).Msg("progress callback panicked")
		}
	}()
	r.progress(current, total, trackingNumber)
}

func (r *Runner) summary(processed int) Summary {
	snap := r.state.Snapshot()
	return Summary{
		Status:    snap.Status,
		TotalRows: snap.TotalRows,
		Processed: processed,
		Succeeded: snap.SuccessCount,
		Failed:    snap.ErrorCount,
	}
}
