package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

// File is a Store backed by one JSONL transaction log. The log is the only
// durable state: positions are the materialized view, rebuilt by replaying
// the log when the file is opened, so the file can be edited by hand (or by
// git merge) and the store stays consistent.
//
// Appends go straight to the end of the file; edits and deletions rewrite
// it, keeping one record per line in effective-date order.
type File struct {
	path string

	mu        sync.Mutex
	records   []varlik.TransactionRecord
	positions map[varlik.PositionKey]varlik.Position
}

// OpenFile opens (or creates) a JSONL transaction log and replays it into
// the in-memory position view.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create directory for %q: %w", path, err)
	}

	s := &File{path: path, positions: make(map[varlik.PositionKey]varlik.Position)}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open transaction log %q: %w", path, err)
	}
	defer f.Close()

	records, err := varlik.DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode transaction log %q: %w", path, err)
	}
	s.records = records
	s.rebuildAll()
	return s, nil
}

// rebuildAll derives every position from the log. Caller holds s.mu (or is
// the constructor).
func (s *File) rebuildAll() {
	keys := make(map[varlik.PositionKey]struct{})
	for _, t := range s.records {
		keys[t.Key] = struct{}{}
	}
	s.positions = make(map[varlik.PositionKey]varlik.Position, len(keys))
	for key := range keys {
		if p, open := varlik.Replay(key, s.records); open {
			s.positions[key] = p
		}
	}
}

// rewrite persists the whole log atomically through a temp file rename.
func (s *File) rewrite() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", tmp, err)
	}
	sorted := make([]varlik.TransactionRecord, len(s.records))
	copy(sorted, s.records)
	varlik.SortRecords(sorted)
	for _, t := range sorted {
		if err := varlik.EncodeRecord(f, t); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *File) LoadPosition(_ context.Context, key varlik.PositionKey) (*varlik.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[key]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// SavePosition updates the in-memory view only: the position is derivable
// from the log, which is the durable state.
func (s *File) SavePosition(_ context.Context, p varlik.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[p.Key] = p
	return nil
}

func (s *File) DeletePosition(_ context.Context, key varlik.PositionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, key)
	return nil
}

func (s *File) ListPositions(_ context.Context) ([]varlik.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]varlik.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	sortPositions(out)
	return out, nil
}

func (s *File) Transactions(_ context.Context, key varlik.PositionKey) ([]varlik.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return varlik.FilterByKey(s.records, key), nil
}

func (s *File) AllTransactions(_ context.Context) ([]varlik.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]varlik.TransactionRecord, len(s.records))
	copy(out, s.records)
	varlik.SortRecords(out)
	return out, nil
}

func (s *File) AppendTransaction(_ context.Context, t varlik.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == t.ID {
			return fmt.Errorf("duplicate record id %q", t.ID)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open transaction log %q: %w", s.path, err)
	}
	defer f.Close()
	if err := varlik.EncodeRecord(f, t); err != nil {
		return err
	}
	s.records = append(s.records, t)
	return nil
}

func (s *File) UpdateTransaction(_ context.Context, t varlik.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == t.ID {
			s.records[i] = t
			return s.rewrite()
		}
	}
	return &NotFoundError{ID: t.ID}
}

func (s *File) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return s.rewrite()
		}
	}
	return &NotFoundError{ID: id}
}

var _ varlik.Store = (*File)(nil)
