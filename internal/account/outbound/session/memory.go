package session

import (
	"context"
	"sync"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/clock"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
)

// Memory keeps sessions in process memory. Expired entries are dropped
// lazily on access and by Save.
type Memory struct {
	clock clock.Clocker
	ins   instrument.Instrumentation

	mu       sync.Mutex
	sessions map[string]entity.LoginSession
}

func NewMemory(clk clock.Clocker, ins instrument.Instrumentation) *Memory {
	return &Memory{
		clock:    clk,
		ins:      ins,
		sessions: make(map[string]entity.LoginSession),
	}
}

func (m *Memory) Save(ctx context.Context, s entity.LoginSession) (err error) {
	_, span := startSpan(ctx, m.ins, "Memory.Save")
	defer func() { endSpan(span, err) }()

	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, cur := range m.sessions {
		if cur.Expired(now) {
			delete(m.sessions, id)
		}
	}

	if s.Expired(now) {
		delete(m.sessions, s.Identifier)
		return nil
	}

	m.sessions[s.Identifier] = s
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (_ *entity.LoginSession, err error) {
	_, span := startSpan(ctx, m.ins, "Memory.Get")
	defer func() { endSpan(span, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	if s.Expired(m.clock.Now()) {
		delete(m.sessions, id)
		return nil, goerror.ErrNotFound
	}

	return &s, nil
}

func (m *Memory) Delete(ctx context.Context, id string) (err error) {
	_, span := startSpan(ctx, m.ins, "Memory.Delete")
	defer func() { endSpan(span, err) }()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	return nil
}

// Close implements io.Closer.
func (m *Memory) Close() error { return nil }
