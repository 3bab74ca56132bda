package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a timeline build job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusFetching   JobStatus = "fetching"
	StatusParsing    JobStatus = "parsing"
	StatusBuilding   JobStatus = "building"
	StatusRendering  JobStatus = "rendering"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single timeline build: either uploaded source
// bytes or a remote source URL, carried through fetch, parse, build and
// render phases.
type Job struct {
	mu sync.Mutex

	ID         string `json:"job_id"`
	TimelineID string `json:"timeline_id"`

	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	SourceURL string    `json:"source_url,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	Title     string    `json:"title,omitempty"`
	Force     bool      `json:"-"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	sourceData []byte
	errors     []string
}

// Progress tracks build progress and output inventory.
type Progress struct {
	Elements int      `json:"elements"`
	Groups   int      `json:"groups"`
	Units    int      `json:"units"`
	Records  int      `json:"records"`
	Formats  []string `json:"formats"`
	Errors   []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetElementCount records how many flat elements the source parsed into.
func (j *Job) SetElementCount(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Elements = n
	j.UpdatedAt = time.Now()
}

// SetTreeCounts records the section/leaf counts of the built tree.
func (j *Job) SetTreeCounts(groups, units, records int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Groups = groups
	j.Progress.Units = units
	j.Progress.Records = records
	j.UpdatedAt = time.Now()
}

// AddFormat records a rendered output format.
func (j *Job) AddFormat(format string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Formats = append(j.Progress.Formats, format)
	j.UpdatedAt = time.Now()
}

// SetResult records the identifiers of the finished build.
func (j *Job) SetResult(timelineID, contentHash, filename string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.TimelineID = timelineID
	j.ContentHash = contentHash
	if filename != "" {
		j.Filename = filename
	}
	j.UpdatedAt = time.Now()
}

// SetSourceData sets the raw source bytes for processing.
func (j *Job) SetSourceData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sourceData = data
}

// SourceData returns the raw source bytes.
func (j *Job) SourceData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sourceData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	TimelineID  string    `json:"timeline_id,omitempty"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	SourceURL   string    `json:"source_url,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	formats := j.Progress.Formats
	if formats == nil {
		formats = []string{}
	}
	return JobSnapshot{
		ID:          j.ID,
		TimelineID:  j.TimelineID,
		Status:      j.Status,
		Phase:       j.Phase,
		SourceURL:   j.SourceURL,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress: Progress{
			Elements: j.Progress.Elements,
			Groups:   j.Progress.Groups,
			Units:    j.Progress.Units,
			Records:  j.Progress.Records,
			Formats:  formats,
			Errors:   errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
