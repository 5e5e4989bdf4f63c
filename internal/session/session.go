// Package session holds the per-session state of one dashboard user:
// retrieved evidence, the last uploaded blob name, and the raw completion
// results awaiting rendering. State was ambient UI state in the original
// dashboard; here it is an explicit object passed to each component call,
// created with defaults at session start and cleared atomically on reset.
package session

import (
	"sync"

	"github.com/google/uuid"

	"axinsight/internal/core"
)

// State is one session's working set. All access goes through methods; the
// mutex makes read-modify-write safe even though the dashboard has a single
// logical actor per session.
type State struct {
	mu sync.Mutex

	id           string
	newsResults  []core.NewsItem
	docHits      []core.DocumentChunk
	lastBlobName string
	lastQuery    string
	pestSwotRaw  string
	combinedRaw  string
	docSummary   string
}

// NewState creates an empty session state with a fresh ID.
func NewState() *State {
	return &State{id: uuid.NewString()}
}

// ID returns the session identifier.
func (s *State) ID() string { return s.id }

// SetNewsResults stores a new evidence set and clears any analysis results
// derived from the previous one.
func (s *State) SetNewsResults(query string, items []core.NewsItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = query
	s.newsResults = items
	s.pestSwotRaw = ""
	s.combinedRaw = ""
}

// NewsResults returns the current news evidence.
func (s *State) NewsResults() []core.NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.NewsItem(nil), s.newsResults...)
}

// LastQuery returns the query that produced the current news evidence.
func (s *State) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// SetDocHits stores the current document evidence.
func (s *State) SetDocHits(chunks []core.DocumentChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docHits = chunks
	s.docSummary = ""
}

// DocHits returns the current document evidence.
func (s *State) DocHits() []core.DocumentChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DocumentChunk(nil), s.docHits...)
}

// SetLastBlobName records the most recent upload's stored name.
func (s *State) SetLastBlobName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBlobName = name
}

// LastBlobName returns the most recent upload's stored name.
func (s *State) LastBlobName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBlobName
}

// SetPestSwotRaw stores the raw news-analysis completion text.
func (s *State) SetPestSwotRaw(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pestSwotRaw = raw
}

// PestSwotRaw returns the raw news-analysis completion text.
func (s *State) PestSwotRaw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pestSwotRaw
}

// SetCombinedRaw stores the raw combined-insight completion text.
func (s *State) SetCombinedRaw(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combinedRaw = raw
}

// CombinedRaw returns the raw combined-insight completion text.
func (s *State) CombinedRaw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combinedRaw
}

// SetDocSummary stores the document summary text.
func (s *State) SetDocSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docSummary = summary
}

// DocSummary returns the document summary text.
func (s *State) DocSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docSummary
}

// Reset clears every key back to its session-start default in one atomic
// operation.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newsResults = nil
	s.docHits = nil
	s.lastBlobName = ""
	s.lastQuery = ""
	s.pestSwotRaw = ""
	s.combinedRaw = ""
	s.docSummary = ""
}

// Manager tracks session states by ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*State)}
}

// Get returns the state for id, creating it on first use. An empty id maps
// to a shared default session.
func (m *Manager) Get(id string) *State {
	if id == "" {
		id = "default"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewState()
	s.id = id
	m.sessions[id] = s
	return s
}
