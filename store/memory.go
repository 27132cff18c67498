// Package store provides the persistence backends of the ledger:
// an in-memory store for tests and ephemeral runs, a JSONL file store
// where the transaction log is the durable source of truth, and a
// SQLite store for larger portfolios.
package store

import (
	"context"
	"fmt"
	"sync"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

// Memory is a Store kept entirely in process memory. It is safe for
// concurrent use.
type Memory struct {
	mu        sync.RWMutex
	positions map[varlik.PositionKey]varlik.Position
	records   []varlik.TransactionRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{positions: make(map[varlik.PositionKey]varlik.Position)}
}

func (s *Memory) LoadPosition(_ context.Context, key varlik.PositionKey) (*varlik.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[key]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Memory) SavePosition(_ context.Context, p varlik.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[p.Key] = p
	return nil
}

func (s *Memory) DeletePosition(_ context.Context, key varlik.PositionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, key)
	return nil
}

func (s *Memory) ListPositions(_ context.Context) ([]varlik.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]varlik.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	sortPositions(out)
	return out, nil
}

func (s *Memory) Transactions(_ context.Context, key varlik.PositionKey) ([]varlik.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return varlik.FilterByKey(s.records, key), nil
}

func (s *Memory) AllTransactions(_ context.Context) ([]varlik.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]varlik.TransactionRecord, len(s.records))
	copy(out, s.records)
	varlik.SortRecords(out)
	return out, nil
}

func (s *Memory) AppendTransaction(_ context.Context, t varlik.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == t.ID {
			return fmt.Errorf("duplicate record id %q", t.ID)
		}
	}
	s.records = append(s.records, t)
	return nil
}

func (s *Memory) UpdateTransaction(_ context.Context, t varlik.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == t.ID {
			s.records[i] = t
			return nil
		}
	}
	return &NotFoundError{ID: t.ID}
}

func (s *Memory) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{ID: id}
}

var _ varlik.Store = (*Memory)(nil)
