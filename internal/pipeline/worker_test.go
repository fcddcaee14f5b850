package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/adocgest/internal/config"
	"github.com/dgallion1/adocgest/internal/convert"
	"github.com/dgallion1/adocgest/internal/publish"
)

type fakePublisher struct {
	mu    sync.Mutex
	fails []error
	calls int
	docs  map[string]publish.Document
}

func (f *fakePublisher) PutDocument(_ context.Context, key string, doc publish.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.fails) > 0 {
		err := f.fails[0]
		f.fails = f.fails[1:]
		return err
	}
	if f.docs == nil {
		f.docs = make(map[string]publish.Document)
	}
	f.docs[key] = doc
	return nil
}

func newTestWorker(pub Publisher, defaults map[string]string) *Worker {
	log := slog.New(slog.DiscardHandler)
	w := NewWorker(convert.New(log), pub, NewLatencyStats(time.Hour), nil, log, defaults)
	w.retry = publish.RetryPolicy{Attempts: 3, Base: time.Millisecond, Max: time.Millisecond}
	return w
}

func TestWorkerProcess(t *testing.T) {
	retry := &publish.RetryableError{StatusCode: 503}
	tests := []struct {
		name       string
		source     string
		pub        *fakePublisher
		wantStatus JobStatus
		wantCalls  int
	}{
		{"no publisher", "= Doc\n\ntext\n", nil, StatusCompleted, 0},
		{"published", "= Doc\n\ntext\n", &fakePublisher{}, StatusCompleted, 1},
		{"retried then published", "= Doc\n\ntext\n", &fakePublisher{fails: []error{retry, retry}}, StatusCompleted, 3},
		{"retries exhausted", "= Doc\n\ntext\n", &fakePublisher{fails: []error{retry, retry, retry}}, StatusPartial, 3},
		{"permanent publish error", "= Doc\n\ntext\n", &fakePublisher{fails: []error{errors.New("bad request")}}, StatusPartial, 1},
		{"conversion error", "[role=\"x]\ntext\n", &fakePublisher{}, StatusFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pub Publisher
			if tt.pub != nil {
				pub = tt.pub
			}
			w := newTestWorker(pub, nil)
			job := NewJob("doc.adoc", tt.source, nil, false)
			w.Process(context.Background(), job)

			snap := job.Snapshot()
			if snap.Status != tt.wantStatus {
				t.Fatalf("expected status %q, got %q (errors %v)", tt.wantStatus, snap.Status, snap.Errors)
			}
			if tt.pub != nil && tt.pub.calls != tt.wantCalls {
				t.Errorf("expected %d publish calls, got %d", tt.wantCalls, tt.pub.calls)
			}
			if tt.wantStatus == StatusCompleted && tt.pub != nil {
				doc, ok := tt.pub.docs["documents/doc.adoc"]
				if !ok || doc.Title != "Doc" || !strings.Contains(doc.HTML, "text") {
					t.Errorf("unexpected published document %+v", doc)
				}
			}
		})
	}
}

func TestWorkerMergesDefaultAttributes(t *testing.T) {
	w := newTestWorker(nil, map[string]string{"product": "Widget", "edition": "basic"})
	job := NewJob("", "{product} {edition}\n", map[string]string{"edition": "pro"}, false)
	w.Process(context.Background(), job)

	res := job.Result()
	if res == nil {
		t.Fatalf("expected result, errors %v", job.Snapshot().Errors)
	}
	if !strings.Contains(res.HTML, "Widget pro") {
		t.Errorf("expected job attributes to override defaults, got %s", res.HTML)
	}
	if w.stats.Snapshot().Count != 1 {
		t.Errorf("expected one recorded conversion")
	}
}

func TestOrchestratorRunsJobs(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 10, JobTTL: time.Hour}
	log := slog.New(slog.DiscardHandler)
	orch := NewOrchestrator(cfg, convert.New(log), nil, nil, log)
	orch.Start(context.Background())

	jobs := make([]*Job, 5)
	for i := range jobs {
		jobs[i] = NewJob("", "Hello *world*.\n", nil, false)
		if err := orch.Submit(jobs[i]); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for _, job := range jobs {
		for job.Snapshot().Status != StatusCompleted {
			if time.Now().After(deadline) {
				t.Fatalf("job %s did not complete: %+v", job.ID, job.Snapshot())
			}
			time.Sleep(5 * time.Millisecond)
		}
		if orch.GetJob(job.ID) != job {
			t.Errorf("job %s not registered", job.ID)
		}
	}
	orch.Stop()

	if got := orch.Stats().Count; got != 5 {
		t.Errorf("expected 5 recorded conversions, got %d", got)
	}
}

func TestOrchestratorQueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	log := slog.New(slog.DiscardHandler)
	orch := NewOrchestrator(cfg, convert.New(log), nil, nil, log)

	if err := orch.Submit(NewJob("", "a\n", nil, false)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	job := NewJob("", "b\n", nil, false)
	if err := orch.Submit(job); err == nil {
		t.Fatal("expected queue full error")
	}
	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %q", job.Snapshot().Status)
	}
}
