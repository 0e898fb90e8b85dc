package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/cybershield/internal/account/entity"
	"github.com/shandysiswandi/cybershield/internal/pkg/goerror"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
)

// Memory keeps credentials in process memory. Writers for the same
// identifier are serialized by a per-key mutex; different identifiers never
// contend on it.
type Memory struct {
	ins instrument.Instrumentation

	mu      sync.RWMutex
	records map[string]*entity.Credential
	locks   sync.Map // identifier -> *sync.Mutex
}

func NewMemory(ins instrument.Instrumentation) *Memory {
	return &Memory{
		ins:     ins,
		records: make(map[string]*entity.Credential),
	}
}

func (m *Memory) lock(id string) func() {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu, _ := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (m *Memory) Get(ctx context.Context, id string) (_ *entity.Credential, err error) {
	_, span := startSpan(ctx, m.ins, "Memory.Get")
	defer func() { endSpan(span, err) }()

	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return nil, goerror.ErrNotFound
	}

	return rec.Clone(), nil
}

func (m *Memory) Create(ctx context.Context, c entity.Credential) (err error) {
	_, span := startSpan(ctx, m.ins, "Memory.Create")
	defer func() { endSpan(span, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[c.Identifier]; ok {
		return goerror.ErrConflict
	}

	m.records[c.Identifier] = c.Clone()
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(c *entity.Credential) error) (err error) {
	_, span := startSpan(ctx, m.ins, "Memory.Update")
	defer func() { endSpan(span, err) }()

	unlock := m.lock(id)
	defer unlock()

	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return goerror.ErrNotFound
	}

	next := rec.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.Identifier = id

	m.mu.Lock()
	m.records[id] = next
	m.mu.Unlock()

	return nil
}

// Close implements io.Closer.
func (m *Memory) Close() error { return nil }
