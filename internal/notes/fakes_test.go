package notes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"autonotes/internal/health"
)

// memRepo is an in-memory Repository. IDs look like "n-0001".
type memRepo struct {
	mu      sync.Mutex
	seq     int
	notes   map[string]Note
	inserts int

	insertErr error
	getErr    error
	listErr   error
}

func newMemRepo() *memRepo {
	return &memRepo{notes: map[string]Note{}}
}

func (m *memRepo) Open(context.Context) error  { return nil }
func (m *memRepo) Close(context.Context) error { return nil }

func (m *memRepo) Insert(_ context.Context, n *Note) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return "", m.insertErr
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	m.seq++
	id := fmt.Sprintf("n-%04d", m.seq)
	m.notes[id] = *n
	return id, nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.HasPrefix(id, "n-") {
		return nil, invalidID(id)
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	n.ID = id
	n.normalize()
	return &n, nil
}

func (m *memRepo) List(_ context.Context, limit, skip int) ([]*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	all := make([]*Note, 0, len(m.notes))
	for id, n := range m.notes {
		n.ID = id
		all = append(all, &n)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if skip >= len(all) {
		return []*Note{}, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.HasPrefix(id, "n-") {
		return false, invalidID(id)
	}
	_, ok := m.notes[id]
	delete(m.notes, id)
	return ok, nil
}

func (m *memRepo) Ping(context.Context) health.Status { return health.OK() }

// stubGenerator returns a fixed reply and counts calls.
type stubGenerator struct {
	mu     sync.Mutex
	data   map[string]any
	err    error
	calls  int
	status health.Status
	got    string
}

func (g *stubGenerator) Generate(_ context.Context, transcript string) (map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.got = transcript
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

func (g *stubGenerator) Check(context.Context) health.Status {
	if g.status.State == "" {
		return health.OK()
	}
	return g.status
}
