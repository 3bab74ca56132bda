package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/timegrid/internal/fetch"
	"github.com/dgallion1/timegrid/internal/parser"
	"github.com/dgallion1/timegrid/internal/render"
	"github.com/dgallion1/timegrid/internal/timeline"
)

// Formats rendered for every completed build.
var renderFormats = []string{"html", "svg", "json"}

// Worker processes a single timeline build job.
type Worker struct {
	fetcher     *fetch.Client
	artifacts   *ArtifactStore
	stats       *render.Stats
	theme       render.Theme
	log         *slog.Logger
	pdfFallback bool
}

func NewWorker(fetcher *fetch.Client, artifacts *ArtifactStore, stats *render.Stats, theme render.Theme, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		fetcher:     fetcher,
		artifacts:   artifacts,
		stats:       stats,
		theme:       theme,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs the full build pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	data := job.SourceData()
	filename := job.Filename

	// Phase 1: Fetch (URL jobs only).
	if job.SourceURL != "" {
		job.SetStatus(StatusFetching, "fetching")
		res, err := w.fetchWithRetry(ctx, job.SourceURL, log)
		if err != nil {
			log.Error("fetch failed", "url", job.SourceURL, "error", err)
			job.AddError(fmt.Sprintf("fetch: %s", err))
			job.SetStatus(StatusFailed, "fetching")
			return
		}
		data, filename = res.Data, res.Filename
	}

	// Phase 2: Parse the source into the flat element sequence.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(filename)
	if err != nil {
		log.Error("unsupported format", "filename", filename, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = w.pdfFallback
	}

	elements, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		log.Error("parse failed", "filename", filename, "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetElementCount(len(elements))

	// Identical source content maps to the same timeline.
	contentHash := ContentHashHex(data)
	timelineID := contentHash[:16]
	job.SetResult(timelineID, contentHash, filename)

	if w.artifacts.Has(timelineID) && !job.Force {
		log.Info("duplicate source, skipping build", "timeline_id", timelineID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 3: Build the section tree.
	job.SetStatus(StatusBuilding, "building")
	tree, err := timeline.Build(elements)
	if err != nil {
		log.Error("build failed", "error", err)
		job.AddError(fmt.Sprintf("build: %s", err))
		job.SetStatus(StatusFailed, "building")
		return
	}
	groups, units, records := tree.Counts()
	job.SetTreeCounts(groups, units, records)
	log.Info("built tree", "groups", groups, "units", units, "records", records)

	// Phase 4: Render all output formats.
	job.SetStatus(StatusRendering, "rendering")
	title := job.Title
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	rendered := make(map[string][]byte, len(renderFormats))
	for _, format := range renderFormats {
		start := time.Now()
		var buf bytes.Buffer
		if err := w.render(format, &buf, title, tree); err != nil {
			log.Error("render failed", "format", format, "error", err)
			job.AddError(fmt.Sprintf("render %s: %s", format, err))
			job.SetStatus(StatusFailed, "rendering")
			return
		}
		w.stats.Record(time.Since(start).Milliseconds())
		rendered[format] = buf.Bytes()
		job.AddFormat(format)
	}

	w.artifacts.Put(Entry{
		TimelineID:  timelineID,
		Title:       title,
		Filename:    filename,
		ContentHash: contentHash,
		Groups:      groups,
		Units:       units,
		Records:     records,
		CreatedAt:   time.Now(),
	}, tree, rendered)

	job.SetStatus(StatusCompleted, "done")
	log.Info("build complete", "timeline_id", timelineID, "formats", len(rendered))
}

func (w *Worker) render(format string, buf *bytes.Buffer, title string, tree *timeline.Tree) error {
	switch format {
	case "html":
		return render.NewHTMLRenderer(w.theme).Render(buf, title, tree)
	case "svg":
		return render.NewSVGRenderer(w.theme).Render(buf, title, tree)
	case "json":
		return (&render.JSONRenderer{Indent: true}).Render(buf, title, tree)
	}
	return fmt.Errorf("unknown render format: %s", format)
}

func (w *Worker) fetchWithRetry(ctx context.Context, url string, log *slog.Logger) (*fetch.Result, error) {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		res, err := w.fetcher.Fetch(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
		log.Warn("retryable fetch error", "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
