package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/dgallion1/adocgest/internal/convert"
	"github.com/dgallion1/adocgest/internal/metrics"
	"github.com/dgallion1/adocgest/internal/publish"
)

// Publisher receives finished documents. *publish.Client implements it.
type Publisher interface {
	PutDocument(ctx context.Context, key string, doc publish.Document) error
}

// Worker processes a single document job.
type Worker struct {
	converter *convert.Converter
	publisher Publisher
	stats     *LatencyStats
	rec       metrics.Recorder
	log       *slog.Logger

	defaults map[string]string
	retry    publish.RetryPolicy
}

// NewWorker returns a worker. publisher may be nil.
func NewWorker(conv *convert.Converter, pub Publisher, stats *LatencyStats, rec metrics.Recorder, log *slog.Logger, defaults map[string]string) *Worker {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Worker{
		converter: conv,
		publisher: pub,
		stats:     stats,
		rec:       rec,
		log:       log,
		defaults:  defaults,
		retry:     publish.DefaultRetryPolicy,
	}
}

// Process converts the job's source and, when a publisher is configured,
// publishes the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "name", job.Name)

	job.SetStatus(StatusConverting, "converting")
	attrs := maps.Clone(w.defaults)
	if attrs == nil {
		attrs = make(map[string]string)
	}
	maps.Copy(attrs, job.attributes)

	start := time.Now()
	doc, err := w.converter.Convert(ctx, job.Source(), convert.Options{
		Attributes: attrs,
		Legacy:     job.legacy,
	})
	elapsed := time.Since(start)
	w.stats.Record(elapsed, err != nil)
	if err != nil {
		w.rec.ObserveConversion(elapsed, metrics.OutcomeFailed)
		w.rec.IncJobOutcome(metrics.OutcomeFailed)
		log.Error("conversion failed", "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "converting")
		return
	}
	w.rec.ObserveConversion(elapsed, metrics.OutcomeSuccess)

	res := &Result{
		HTML:       doc.HTML(),
		Attributes: doc.Attributes(),
		Title:      doc.Title(),
		Duration:   elapsed,
	}
	job.SetResult(res)
	log.Info("document converted", "duration_ms", elapsed.Milliseconds(), "title", res.Title)

	if w.publisher == nil {
		w.rec.IncJobOutcome(metrics.OutcomeSuccess)
		job.SetStatus(StatusCompleted, "done")
		return
	}

	job.SetStatus(StatusPublishing, "publishing")
	if err := w.publish(ctx, job, res); err != nil {
		log.Error("publish failed", "key", job.Key(), "error", err)
		job.AddError(fmt.Sprintf("publish %s: %s", job.Key(), err))
		w.rec.IncJobOutcome(metrics.OutcomePartial)
		job.SetStatus(StatusPartial, "publishing")
		return
	}
	w.rec.IncJobOutcome(metrics.OutcomeSuccess)
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) publish(ctx context.Context, job *Job, res *Result) error {
	doc := publish.Document{
		HTML:       res.HTML,
		Attributes: res.Attributes,
		Title:      res.Title,
		Source:     job.Name,
	}
	for attempt := 0; ; attempt++ {
		err := w.publisher.PutDocument(ctx, job.Key(), doc)
		if err == nil {
			return nil
		}
		delay, ok := w.retry.Delay(err, attempt)
		if !ok {
			return err
		}
		w.rec.IncPublishRetry()
		w.log.Warn("retryable publish error", "job_id", job.ID, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
