package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/timegrid/internal/config"
	"github.com/dgallion1/timegrid/internal/fetch"
	"github.com/dgallion1/timegrid/internal/render"
)

// Orchestrator manages the timeline build pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	fetcher   *fetch.Client
	artifacts *ArtifactStore
	stats     *render.Stats
	theme     render.Theme
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline.
func NewOrchestrator(cfg config.Config, fetcher *fetch.Client, theme render.Theme, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		fetcher:   fetcher,
		artifacts: NewArtifactStore(),
		stats:     render.NewStats(time.Hour),
		theme:     theme,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.fetcher, o.artifacts, o.stats, o.theme, o.log, o.cfg.PDFFallbackPdftotext)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// DeleteJob removes a job and the artifacts of its timeline, if any.
func (o *Orchestrator) DeleteJob(id string) {
	if job := o.jobs.Get(id); job != nil {
		if snap := job.Snapshot(); snap.TimelineID != "" {
			o.artifacts.Delete(snap.TimelineID)
		}
	}
	o.jobs.Delete(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Artifacts returns the artifact store for direct use by API handlers.
func (o *Orchestrator) Artifacts() *ArtifactStore {
	return o.artifacts
}

// RenderStats returns the render latency tracker.
func (o *Orchestrator) RenderStats() *render.Stats {
	return o.stats
}
