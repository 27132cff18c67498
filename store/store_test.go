package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

func testKey() varlik.PositionKey {
	return varlik.PositionKey{Class: varlik.ClassStock, Symbol: "THYAO", Platform: "midas"}
}

// backends returns every Store implementation under test.
func backends(t *testing.T) map[string]varlik.Store {
	t.Helper()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "transactions.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	db, err := OpenSQLite(filepath.Join(dir, "varlik.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]varlik.Store{
		"memory": NewMemory(),
		"jsonl":  file,
		"sqlite": db,
	}
}

func TestStore_PositionRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := testKey()

			p, err := s.LoadPosition(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if p != nil {
				t.Fatalf("LoadPosition(absent) = %+v, want nil", p)
			}

			want := varlik.Position{Key: key, Quantity: varlik.Q(15), AverageCost: varlik.M(110.25, "TRY")}
			if err := s.SavePosition(ctx, want); err != nil {
				t.Fatal(err)
			}
			p, err = s.LoadPosition(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if p == nil {
				t.Fatal("LoadPosition() = nil after save")
			}
			if !p.Quantity.Equal(want.Quantity) || !p.AverageCost.Equal(want.AverageCost) {
				t.Errorf("loaded %+v, want %+v", *p, want)
			}

			// overwrite
			want.Quantity = varlik.Q(20)
			if err := s.SavePosition(ctx, want); err != nil {
				t.Fatal(err)
			}
			p, _ = s.LoadPosition(ctx, key)
			if !p.Quantity.Equal(varlik.Q(20)) {
				t.Errorf("quantity after overwrite = %s, want 20", p.Quantity)
			}

			if err := s.DeletePosition(ctx, key); err != nil {
				t.Fatal(err)
			}
			p, err = s.LoadPosition(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if p != nil {
				t.Errorf("LoadPosition(deleted) = %+v, want nil", p)
			}
		})
	}
}

func TestStore_TransactionLog(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := testKey()
			other := varlik.PositionKey{Class: varlik.ClassFund, Symbol: "AFT", Platform: "tefas"}

			buy := varlik.NewBuyRecord("a1", key, varlik.MustParse("2025-08-10"), varlik.Q(5), varlik.M(120.5, "TRY"))
			sell := varlik.NewSellRecord("a2", key, varlik.MustParse("2025-08-11"), varlik.Q(2), varlik.M(130, "TRY"), varlik.M(19, "TRY"))
			noise := varlik.NewBuyRecord("b1", other, varlik.MustParse("2025-08-01"), varlik.Q(1), varlik.M(50, "TRY"))

			for _, r := range []varlik.TransactionRecord{buy, sell, noise} {
				if err := s.AppendTransaction(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			log, err := s.Transactions(ctx, key)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := len(log), 2; got != want {
				t.Fatalf("len(Transactions(key)) = %d, want %d", got, want)
			}
			if !log[0].Equal(buy) || !log[1].Equal(sell) {
				t.Errorf("log round trip = %+v, want buy then sell", log)
			}

			all, err := s.AllTransactions(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := len(all), 3; got != want {
				t.Fatalf("len(AllTransactions()) = %d, want %d", got, want)
			}
			// sorted by effective date: the other key's buy is earliest.
			if all[0].ID != "b1" {
				t.Errorf("AllTransactions()[0].ID = %q, want b1", all[0].ID)
			}

			edited := varlik.NewBuyRecord("a1", key, buy.Date, varlik.Q(5), varlik.M(100, "TRY"))
			if err := s.UpdateTransaction(ctx, edited); err != nil {
				t.Fatal(err)
			}
			log, _ = s.Transactions(ctx, key)
			if !log[0].Price.Equal(varlik.M(100, "TRY")) {
				t.Errorf("price after update = %s, want 100", log[0].Price.Decimal())
			}

			if err := s.DeleteTransaction(ctx, "a2"); err != nil {
				t.Fatal(err)
			}
			log, _ = s.Transactions(ctx, key)
			if got, want := len(log), 1; got != want {
				t.Errorf("len after delete = %d, want %d", got, want)
			}
		})
	}
}

func TestStore_MissingTransactionErrors(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var notFound *NotFoundError
			err := s.DeleteTransaction(ctx, "missing")
			if !errors.As(err, &notFound) {
				t.Errorf("DeleteTransaction(missing) = %v, want NotFoundError", err)
			}
			record := varlik.NewBuyRecord("missing", testKey(), varlik.MustParse("2025-08-10"), varlik.Q(1), varlik.M(1, "TRY"))
			err = s.UpdateTransaction(ctx, record)
			if !errors.As(err, &notFound) {
				t.Errorf("UpdateTransaction(missing) = %v, want NotFoundError", err)
			}
		})
	}
}

func TestStore_ListPositionsSorted(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			keys := []varlik.PositionKey{
				{Class: varlik.ClassStock, Symbol: "THYAO", Platform: "midas"},
				{Class: varlik.ClassCrypto, Symbol: "BTC", Platform: "binance"},
				{Class: varlik.ClassFund, Symbol: "AFT", Platform: "tefas"},
			}
			for _, key := range keys {
				p := varlik.Position{Key: key, Quantity: varlik.Q(1), AverageCost: varlik.M(1, "TRY")}
				if err := s.SavePosition(ctx, p); err != nil {
					t.Fatal(err)
				}
			}
			got, err := s.ListPositions(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 3 {
				t.Fatalf("len(ListPositions()) = %d, want 3", len(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i-1].Key.String() >= got[i].Key.String() {
					t.Errorf("positions not sorted: %s before %s", got[i-1].Key, got[i].Key)
				}
			}
		})
	}
}

func TestFile_ReopenDerivesPositionsFromLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transactions.jsonl")
	key := testKey()

	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	records := []varlik.TransactionRecord{
		varlik.NewBuyRecord("a1", key, varlik.MustParse("2025-01-10"), varlik.Q(10), varlik.M(100, "TRY")),
		varlik.NewBuyRecord("a2", key, varlik.MustParse("2025-02-01"), varlik.Q(5), varlik.M(130, "TRY")),
		varlik.NewSellRecord("a3", key, varlik.MustParse("2025-03-01"), varlik.Q(6), varlik.M(150, "TRY"), varlik.M(240, "TRY")),
	}
	for _, r := range records {
		if err := s.AppendTransaction(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	// a fresh open must replay the log into the same position.
	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := reopened.LoadPosition(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("no position derived from reopened log")
	}
	if got, want := p.Quantity, varlik.Q(9); !got.Equal(want) {
		t.Errorf("quantity = %s, want %s", got, want)
	}
	if got, want := p.AverageCost, varlik.M(110, "TRY"); !got.Equal(want) {
		t.Errorf("averageCost = %s, want %s", got.Decimal(), want.Decimal())
	}
}

func TestFile_DeleteClosingSellReopensOnReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transactions.jsonl")
	key := testKey()

	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	buy := varlik.NewBuyRecord("a1", key, varlik.MustParse("2025-01-10"), varlik.Q(10), varlik.M(100, "TRY"))
	sell := varlik.NewSellRecord("a2", key, varlik.MustParse("2025-02-01"), varlik.Q(10), varlik.M(150, "TRY"), varlik.M(500, "TRY"))
	if err := s.AppendTransaction(ctx, buy); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendTransaction(ctx, sell); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTransaction(ctx, sell.ID); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := reopened.LoadPosition(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("position not reopened after deleting the closing sell")
	}
	if got, want := p.Quantity, varlik.Q(10); !got.Equal(want) {
		t.Errorf("quantity = %s, want %s", got, want)
	}
}
