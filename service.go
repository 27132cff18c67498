package varlik

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Store is the persistence collaborator: it owns positions (the
// materialized view) and the append-only transaction log. The core never
// reaches into storage on its own; every side effect goes through this
// interface at the call boundary.
//
// LoadPosition returns (nil, nil) when no position exists for the key.
type Store interface {
	LoadPosition(ctx context.Context, key PositionKey) (*Position, error)
	SavePosition(ctx context.Context, p Position) error
	DeletePosition(ctx context.Context, key PositionKey) error
	ListPositions(ctx context.Context) ([]Position, error)

	Transactions(ctx context.Context, key PositionKey) ([]TransactionRecord, error)
	AllTransactions(ctx context.Context) ([]TransactionRecord, error)
	AppendTransaction(ctx context.Context, t TransactionRecord) error
	UpdateTransaction(ctx context.Context, t TransactionRecord) error
	DeleteTransaction(ctx context.Context, id string) error
}

// PriceSource supplies already-fetched market prices. Absence of data is an
// expected steady state and degrades to the attribution fallbacks, never to
// a failure: History returns (nil, nil) for a key it has no observations
// for, and reserves errors for I/O failures.
type PriceSource interface {
	History(ctx context.Context, key PositionKey, r Range) (*PriceHistory, error)
}

// Service is the entry point of the ledger core. It serializes every
// read-compute-write sequence per position key: two interleaved settlements
// on the same key would silently corrupt the average cost, so the per-key
// lock is a correctness requirement, not an optimization. Replays run under
// the same lock so they always observe a stable log.
type Service struct {
	store Store
	log   *slog.Logger

	mu    sync.Mutex // guards locks
	locks map[PositionKey]*sync.Mutex
}

// NewService creates a service on top of a store. A nil logger disables
// logging.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store: store,
		log:   logger,
		locks: make(map[PositionKey]*sync.Mutex),
	}
}

// keyLock returns the mutex dedicated to one position key, creating it on
// first use.
func (s *Service) keyLock(key PositionKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// lockKeys acquires the locks of both keys in a stable order and returns the
// matching unlock. Ordering by the rendered key prevents two edits moving
// records between the same pair of keys from deadlocking each other.
func (s *Service) lockKeys(a, b PositionKey) func() {
	if a == b {
		l := s.keyLock(a)
		l.Lock()
		return l.Unlock
	}
	first, second := s.keyLock(a), s.keyLock(b)
	if b.String() < a.String() {
		first, second = second, first
	}
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// Buy settles a buy event: it updates (or creates) the weighted-average
// position and appends the record to the log, atomically from the point of
// view of any other operation on the same key.
func (s *Service) Buy(ctx context.Context, key PositionKey, quantity Quantity, price Money, on Date) (Position, error) {
	record := NewBuyRecord(uuid.NewString(), key, on, quantity, price)
	if err := record.Validate(); err != nil {
		return Position{}, err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	position, err := s.store.LoadPosition(ctx, key)
	if err != nil {
		return Position{}, fmt.Errorf("could not load position %s: %w", key, err)
	}
	updated, err := ApplyBuy(position, key, quantity, price)
	if err != nil {
		return Position{}, err
	}
	if err := s.store.AppendTransaction(ctx, record); err != nil {
		return Position{}, fmt.Errorf("could not append buy record: %w", err)
	}
	if err := s.store.SavePosition(ctx, updated); err != nil {
		return Position{}, fmt.Errorf("could not save position %s: %w", key, err)
	}
	s.log.Info("buy settled", "key", key.String(), "quantity", quantity.String(),
		"price", price.String(), "avgCost", updated.AverageCost.String())
	return updated, nil
}

// Sell settles a sell event against the position, realizing profit or loss
// against the average cost at that moment. A sell never moves the average
// cost. A sell that empties the position (within the dust tolerance) closes
// and deletes it.
func (s *Service) Sell(ctx context.Context, key PositionKey, quantity Quantity, price Money, on Date) (Position, Money, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	position, err := s.store.LoadPosition(ctx, key)
	if err != nil {
		return Position{}, Money{}, fmt.Errorf("could not load position %s: %w", key, err)
	}
	if position == nil {
		return Position{}, Money{}, &InsufficientQuantityError{Key: key, Requested: quantity, Available: Q(0)}
	}
	updated, realized, err := ApplySell(*position, quantity, price)
	if err != nil {
		return Position{}, Money{}, err
	}

	record := NewSellRecord(uuid.NewString(), key, on, quantity, price, realized)
	if err := record.Validate(); err != nil {
		return Position{}, Money{}, err
	}
	if err := s.store.AppendTransaction(ctx, record); err != nil {
		return Position{}, Money{}, fmt.Errorf("could not append sell record: %w", err)
	}
	if updated.IsClosed() {
		if err := s.store.DeletePosition(ctx, key); err != nil {
			return Position{}, Money{}, fmt.Errorf("could not delete closed position %s: %w", key, err)
		}
	} else if err := s.store.SavePosition(ctx, updated); err != nil {
		return Position{}, Money{}, fmt.Errorf("could not save position %s: %w", key, err)
	}
	s.log.Info("sell settled", "key", key.String(), "quantity", quantity.String(),
		"price", price.String(), "realized", realized.String(), "closed", updated.IsClosed())
	return updated, realized, nil
}

// EditTransaction replaces the content of an existing record and rebuilds
// the affected position from the log. An edit may move the record to a
// different key; both the old and the new position are rebuilt then, or the
// old key would keep serving its stale materialized view. The returned
// position is nil when the rebuilt log nets out to a closed position.
func (s *Service) EditTransaction(ctx context.Context, t TransactionRecord) (*Position, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	oldKey, err := s.recordKey(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockKeys(oldKey, t.Key)
	defer unlock()

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("could not update record %s: %w", t.ID, err)
	}
	if oldKey != t.Key {
		if _, err := s.rebuild(ctx, oldKey); err != nil {
			return nil, err
		}
	}
	return s.rebuild(ctx, t.Key)
}

// recordKey finds the key a record is currently filed under.
func (s *Service) recordKey(ctx context.Context, id string) (PositionKey, error) {
	records, err := s.store.AllTransactions(ctx)
	if err != nil {
		return PositionKey{}, fmt.Errorf("could not load transaction log: %w", err)
	}
	for _, r := range records {
		if r.ID == id {
			return r.Key, nil
		}
	}
	return PositionKey{}, fmt.Errorf("no record with id %s", id)
}

// DeleteTransaction removes a record from the log and rebuilds the affected
// position. Deleting the sell that had closed a position re-opens it: the
// replay result is synthesized into a new position rather than discarded.
func (s *Service) DeleteTransaction(ctx context.Context, key PositionKey, id string) (*Position, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return nil, fmt.Errorf("could not delete record %s: %w", id, err)
	}
	return s.rebuild(ctx, key)
}

// OnTransactionEdited re-derives the position for a key after its log was
// changed by an external collaborator.
func (s *Service) OnTransactionEdited(ctx context.Context, key PositionKey) (*Position, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	return s.rebuild(ctx, key)
}

// OnTransactionDeleted is the deletion twin of OnTransactionEdited.
func (s *Service) OnTransactionDeleted(ctx context.Context, key PositionKey) (*Position, error) {
	return s.OnTransactionEdited(ctx, key)
}

// rebuild replays the log for one key and persists the result. The caller
// must hold the key lock, so the replay observes a stable snapshot of the
// log and cannot interleave with a concurrent settlement.
func (s *Service) rebuild(ctx context.Context, key PositionKey) (*Position, error) {
	log, err := s.store.Transactions(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not load log for %s: %w", key, err)
	}
	position, open := Replay(key, log)
	if !open {
		if err := s.store.DeletePosition(ctx, key); err != nil {
			return nil, fmt.Errorf("could not delete position %s: %w", key, err)
		}
		s.log.Info("replay closed position", "key", key.String(), "records", len(log))
		return nil, nil
	}
	if err := s.store.SavePosition(ctx, position); err != nil {
		return nil, fmt.Errorf("could not save position %s: %w", key, err)
	}
	s.log.Info("replay rebuilt position", "key", key.String(), "records", len(log),
		"quantity", position.Quantity.String(), "avgCost", position.AverageCost.String())
	return &position, nil
}

// PortfolioXIRR computes the money-weighted return of the whole portfolio
// from its transaction log plus the current valuation as a terminal inflow.
// It returns ErrIndeterminate (never a silent 0) when no rate is defined.
func (s *Service) PortfolioXIRR(ctx context.Context, valuation Money, on Date) (Rate, error) {
	records, err := s.store.AllTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not load transaction log: %w", err)
	}
	rate, err := XIRR(PortfolioFlows(records, valuation, on), 0.1)
	if errors.Is(err, ErrIndeterminate) {
		s.log.Warn("portfolio rate indeterminate", "records", len(records))
	}
	return rate, err
}

// MonthlyChange computes the net-flow attribution report for the period.
// Prices are resolved through the PriceSource; a nil source or missing data
// degrades to the attribution fallbacks.
func (s *Service) MonthlyChange(ctx context.Context, prices PriceSource, period Range) (*ChangeReport, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list positions: %w", err)
	}
	records, err := s.store.AllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load transaction log: %w", err)
	}

	histories := make(map[PositionKey]*PriceHistory)
	if prices != nil {
		seen := make(map[PositionKey]struct{})
		for _, p := range positions {
			seen[p.Key] = struct{}{}
		}
		for _, t := range records {
			if period.Contains(t.Date) {
				seen[t.Key] = struct{}{}
			}
		}
		for key := range seen {
			h, err := prices.History(ctx, key, period)
			if err != nil {
				s.log.Warn("price history unavailable", "key", key.String(), "err", err)
				continue
			}
			// a nil history means no data for the key, which is steady
			// state: attribution falls back to cost for it.
			if h != nil {
				histories[key] = h
			}
		}
	}
	return Attribute(positions, records, histories, period), nil
}
