package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/timegrid/internal/parser"
	"github.com/dgallion1/timegrid/internal/pipeline"
	"github.com/dgallion1/timegrid/internal/render"
	"github.com/go-chi/chi/v5"
)

// handleUpload accepts a multipart source file and queues a build job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := s.newJob(r.FormValue("title"), r.FormValue("force") == "true")
	job.Filename = filename
	job.SetSourceData(data)

	s.submit(w, job)
}

// handleSubmitURL queues a build job for a remote source URL.
func (s *Server) handleSubmitURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL   string `json:"url"`
		Title string `json:"title"`
		Force bool   `json:"force"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		jsonError(w, "url must be http or https", http.StatusBadRequest)
		return
	}

	job := s.newJob(req.Title, req.Force)
	job.SourceURL = req.URL

	s.submit(w, job)
}

func (s *Server) newJob(title string, force bool) *pipeline.Job {
	now := time.Now()
	return &pipeline.Job{
		ID:        pipeline.NewID(),
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Title:     title,
		Force:     force,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/timelines/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if s.orchestrator.GetJob(jobID) == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	s.orchestrator.DeleteJob(jobID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": jobID})
}

// handleListTimelines lists all completed builds, newest first.
func (s *Server) handleListTimelines(w http.ResponseWriter, r *http.Request) {
	entries := s.orchestrator.Artifacts().List()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"timelines": entries,
		"count":     len(entries),
	})
}

var formatContentTypes = map[string]string{
	"html": "text/html; charset=utf-8",
	"svg":  "image/svg+xml",
	"json": "application/json",
}

// handleGetTimeline serves a rendered output. Without a page parameter the
// cached artifact is returned as-is; with one, the tree is split on section
// boundaries and the requested page is rendered on demand.
func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	timelineID := chi.URLParam(r, "timelineID")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	contentType, ok := formatContentTypes[format]
	if !ok {
		jsonError(w, "format must be one of html, svg, json", http.StatusBadRequest)
		return
	}

	artifacts := s.orchestrator.Artifacts()
	entry, ok := artifacts.Entry(timelineID)
	if !ok {
		jsonError(w, "timeline not found", http.StatusNotFound)
		return
	}

	pageParam := r.URL.Query().Get("page")
	if pageParam == "" {
		data, ok := artifacts.Rendered(timelineID, format)
		if !ok {
			jsonError(w, "rendered output not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
		return
	}

	pageNum, err := strconv.Atoi(pageParam)
	if err != nil || pageNum < 1 {
		jsonError(w, "page must be a positive integer", http.StatusBadRequest)
		return
	}
	pageSize := s.cfg.DefaultPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}

	tree, ok := artifacts.Tree(timelineID)
	if !ok {
		jsonError(w, "timeline not found", http.StatusNotFound)
		return
	}

	pages := render.Paginate(tree, pageSize)
	if pageNum > len(pages) {
		jsonError(w, fmt.Sprintf("page %d out of range (1-%d)", pageNum, len(pages)), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := s.renderPage(format, &buf, entry.Title, pages[pageNum-1]); err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Page", strconv.Itoa(pageNum))
	w.Header().Set("X-Page-Count", strconv.Itoa(len(pages)))
	w.Write(buf.Bytes())
}

func (s *Server) renderPage(format string, buf *bytes.Buffer, title string, page render.Page) error {
	switch format {
	case "html":
		return render.NewHTMLRenderer(s.theme).Render(buf, title, page.Tree)
	case "svg":
		return render.NewSVGRenderer(s.theme).Render(buf, title, page.Tree)
	case "json":
		return (&render.JSONRenderer{Indent: true}).Render(buf, title, page.Tree)
	}
	return fmt.Errorf("unknown render format: %s", format)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
