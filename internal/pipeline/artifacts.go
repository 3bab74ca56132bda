package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/timegrid/internal/timeline"
)

// Entry describes one completed timeline build.
type Entry struct {
	TimelineID  string    `json:"timeline_id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Groups      int       `json:"groups"`
	Units       int       `json:"units"`
	Records     int       `json:"records"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArtifactStore is a thread-safe in-memory registry of built trees and
// their rendered outputs, keyed by timeline ID (a content-hash prefix, so
// identical source content maps to the same entry).
type ArtifactStore struct {
	mu       sync.Mutex
	entries  map[string]Entry
	trees    map[string]*timeline.Tree
	rendered map[string]map[string][]byte
}

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		entries:  make(map[string]Entry),
		trees:    make(map[string]*timeline.Tree),
		rendered: make(map[string]map[string][]byte),
	}
}

// Put stores a build result, replacing any previous entry for the ID.
func (s *ArtifactStore) Put(entry Entry, tree *timeline.Tree, rendered map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.TimelineID] = entry
	s.trees[entry.TimelineID] = tree
	s.rendered[entry.TimelineID] = rendered
}

// Has reports whether a build exists for the ID.
func (s *ArtifactStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Entry returns the metadata for a build.
func (s *ArtifactStore) Entry(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// Tree returns the built tree for a timeline.
func (s *ArtifactStore) Tree(id string) (*timeline.Tree, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trees[id]
	return t, ok
}

// Rendered returns one rendered output.
func (s *ArtifactStore) Rendered(id, format string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	formats, ok := s.rendered[id]
	if !ok {
		return nil, false
	}
	data, ok := formats[format]
	return data, ok
}

// List returns all entries, newest first.
func (s *ArtifactStore) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Delete removes a build and its rendered outputs.
func (s *ArtifactStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	delete(s.trees, id)
	delete(s.rendered, id)
}
