package storage

import (
	"database/sql"
	"sort"
	"sync"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu sync.Mutex

	State     map[string]MatchState
	Documents map[string]*benner.Document
	Runs      map[string]*ReconRun

	// Optional error injection.
	LoadErr error
	SaveErr error
}

var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty mock.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		State:     make(map[string]MatchState),
		Documents: make(map[string]*benner.Document),
		Runs:      make(map[string]*ReconRun),
	}
}

func (m *MockRepository) LoadMatchState() (map[string]MatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make(map[string]MatchState, len(m.State))
	for k, v := range m.State {
		out[k] = v
	}
	return out, nil
}

func (m *MockRepository) SaveMatchState(lines []*statement.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for _, l := range lines {
		if l.Matched && l.MatchedAt != nil {
			m.State[l.Fingerprint] = MatchState{Matched: true, MatchedAt: *l.MatchedAt}
		}
	}
	return nil
}

func (m *MockRepository) GetDocument(id string) (*benner.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Documents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *doc
	return &copied, nil
}

func (m *MockRepository) UpsertDocuments(docs []*benner.Document, policy benner.DowngradePolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for _, doc := range docs {
		m.Documents[doc.ID] = benner.ResolveUpsert(m.Documents[doc.ID], doc, policy)
	}
	return nil
}

func (m *MockRepository) ListDocuments(status benner.Status) ([]*benner.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*benner.Document
	for _, doc := range m.Documents {
		if status == "" || doc.Status == status {
			copied := *doc
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRepository) SaveRun(run *ReconRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Runs[run.ID] = run
	return nil
}

func (m *MockRepository) GetRun(id string) (*ReconRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.Runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return run, nil
}

func (m *MockRepository) ListRuns(limit int) ([]*ReconRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ReconRun
	for _, run := range m.Runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) Close() error { return nil }
