package session

import (
	"testing"

	"axinsight/internal/core"
)

func TestNewStateHasID(t *testing.T) {
	a, b := NewState(), NewState()
	if a.ID() == "" {
		t.Error("new state should carry an ID")
	}
	if a.ID() == b.ID() {
		t.Error("two states should not share an ID")
	}
}

func TestSetNewsResultsClearsAnalysis(t *testing.T) {
	s := NewState()
	s.SetPestSwotRaw(`{"one_liner": "old"}`)
	s.SetCombinedRaw(`{"strengths": []}`)

	s.SetNewsResults("새 질의", []core.NewsItem{{Title: "기사"}})

	if s.PestSwotRaw() != "" || s.CombinedRaw() != "" {
		t.Error("new evidence must clear analysis results derived from the old set")
	}
	if s.LastQuery() != "새 질의" {
		t.Errorf("LastQuery() = %q", s.LastQuery())
	}
	if len(s.NewsResults()) != 1 {
		t.Errorf("NewsResults() length = %d, want 1", len(s.NewsResults()))
	}
}

func TestSetDocHitsClearsSummary(t *testing.T) {
	s := NewState()
	s.SetDocSummary("이전 요약")
	s.SetDocHits([]core.DocumentChunk{{Content: "내용"}})
	if s.DocSummary() != "" {
		t.Error("new document evidence must clear the stale summary")
	}
}

func TestResultsAreCopies(t *testing.T) {
	s := NewState()
	s.SetNewsResults("q", []core.NewsItem{{Title: "원본"}})
	got := s.NewsResults()
	got[0].Title = "변조"
	if s.NewsResults()[0].Title != "원본" {
		t.Error("NewsResults() should return a copy, not the backing slice")
	}
}

func TestReset(t *testing.T) {
	s := NewState()
	s.SetNewsResults("질의", []core.NewsItem{{Title: "기사"}})
	s.SetDocHits([]core.DocumentChunk{{Content: "내용"}})
	s.SetLastBlobName("3f2a_report.pdf")
	s.SetPestSwotRaw("{}")
	s.SetCombinedRaw("{}")
	s.SetDocSummary("요약")

	s.Reset()

	if len(s.NewsResults()) != 0 || len(s.DocHits()) != 0 {
		t.Error("Reset() should drop both evidence sets")
	}
	if s.LastBlobName() != "" || s.LastQuery() != "" {
		t.Error("Reset() should clear the blob name and last query")
	}
	if s.PestSwotRaw() != "" || s.CombinedRaw() != "" || s.DocSummary() != "" {
		t.Error("Reset() should clear all analysis results")
	}
}

func TestManagerGet(t *testing.T) {
	m := NewManager()
	a := m.Get("alpha")
	if again := m.Get("alpha"); again != a {
		t.Error("same ID should resolve to the same state")
	}
	if b := m.Get("beta"); b == a {
		t.Error("different IDs should resolve to different states")
	}
}

func TestManagerDefaultSession(t *testing.T) {
	m := NewManager()
	if m.Get("") != m.Get("") {
		t.Error("empty ID should resolve to one shared default session")
	}
}
