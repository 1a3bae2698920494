package store

import "sync"

// MemStore is the in-memory Store used by tests.
type MemStore struct {
	mu       sync.Mutex
	runs     []*RunRecord
	attempts []*AttemptRecord
	nextRun  int64
	nextAtt  int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextRun: 1, nextAtt: 1}
}

func (m *MemStore) SaveRun(run *RunRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	cp.ID = m.nextRun
	m.nextRun++
	m.runs = append(m.runs, &cp)
	run.ID = cp.ID
	return cp.ID, nil
}

func (m *MemStore) SaveAttempt(att *AttemptRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *att
	cp.ID = m.nextAtt
	m.nextAtt++
	m.attempts = append(m.attempts, &cp)
	att.ID = cp.ID
	return cp.ID, nil
}

func (m *MemStore) ListRuns() ([]*RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*RunRecord, len(m.runs))
	copy(out, m.runs)
	return out, nil
}

func (m *MemStore) LastRun() (*RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil, nil
	}
	return m.runs[len(m.runs)-1], nil
}

func (m *MemStore) ListAttemptsByRun(runID int64) ([]*AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*AttemptRecord
	for _, a := range m.attempts {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) Close() error { return nil }
