package worker

import (
	"context"
	"time"

	"sjsage522/contestharvester/helpers"
	"sjsage522/contestharvester/logger"
	"sjsage522/contestharvester/services/publisher"
	"sjsage522/contestharvester/services/snapshot"

	"github.com/robfig/cron/v3"
)

// Result is the outcome of one source in a run
type Result struct {
	Source    string
	Path      string
	Snapshot  snapshot.Snapshot
	Refreshed bool
	// Stale is set when nothing was harvested and the snapshot is still not
	// from today, because this session already attempted the source.
	Stale bool
	Err   error
}

// Worker refreshes every source in a fixed order, one at a time
type Worker struct {
	ctx        context.Context
	refreshers []*snapshot.Refresher
	publisher  publisher.Publisher
	failures   helpers.FailureLogger
	log        *logger.Logger
}

// NewWorker creates a new worker. pub may be nil.
func NewWorker(
	ctx context.Context,
	refreshers []*snapshot.Refresher,
	pub publisher.Publisher,
	failures helpers.FailureLogger,
) *Worker {
	return &Worker{
		ctx:        ctx,
		refreshers: refreshers,
		publisher:  pub,
		failures:   failures,
		log:        logger.ForWorker(),
	}
}

// RunAll runs every source. With force each source is harvested
// unconditionally, otherwise only stale ones are. A failing source never
// stops the ones after it.
func (w *Worker) RunAll(force bool) []Result {
	start := time.Now()
	results := make([]Result, 0, len(w.refreshers))

	for _, r := range w.refreshers {
		if err := w.ctx.Err(); err != nil {
			results = append(results, Result{Source: r.Source(), Path: r.Store().Path(), Err: err})
			continue
		}
		results = append(results, w.run(r, force))
	}

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			w.failures.LogError("StreamTrimming", err)
		}
	}

	w.log.Info().
		Int("sources", len(results)).
		Int("failed", len(Failed(results))).
		Dur("elapsed", time.Since(start)).
		Msg("Run finished")
	return results
}

func (w *Worker) run(r *snapshot.Refresher, force bool) Result {
	result := Result{Source: r.Source(), Path: r.Store().Path()}

	if force {
		result.Snapshot, result.Err = r.TriggerRefresh()
		result.Refreshed = result.Err == nil
	} else {
		result.Snapshot, result.Refreshed, result.Err = r.RefreshIfStale()
	}

	if result.Err != nil {
		w.failures.LogError(r.Source(), result.Err)
		return result
	}
	if result.Refreshed {
		w.failures.LogInfo("Saved %d contests to %s", len(result.Snapshot.Records), result.Path)
	} else {
		result.Stale = r.IsStale()
	}
	return result
}

// Failed returns the results that carry an error
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Schedule registers a refresh-if-stale run on the cron spec and returns the
// started scheduler. Runs never overlap.
func (w *Worker) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(w.log)),
		cron.SkipIfStillRunning(cron.PrintfLogger(w.log)),
	))

	if _, err := c.AddFunc(spec, func() { w.RunAll(false) }); err != nil {
		return nil, err
	}

	c.Start()
	w.log.Info().Str("schedule", spec).Msg("Scheduler started")
	return c, nil
}

// Start runs a refresh-if-stale pass, then keeps refreshing on the cron spec
// until the context is cancelled.
func (w *Worker) Start(spec string) error {
	w.RunAll(false)

	c, err := w.Schedule(spec)
	if err != nil {
		return err
	}

	<-w.ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	w.log.Info().Msg("Scheduler stopped")
	return nil
}
