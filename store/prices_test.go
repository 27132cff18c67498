package store

import (
	"context"
	"strings"
	"testing"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

func TestReadPrices(t *testing.T) {
	data := `{"class":"stock","symbol":"THYAO","platform":"midas","date":"2025-08-01","price":110.5,"currency":"TRY"}
{"class":"stock","symbol":"THYAO","platform":"midas","date":"2025-08-15","price":120,"currency":"TRY"}

{"class":"fund","symbol":"AFT","platform":"tefas","date":"2025-08-01","price":48,"currency":"TRY"}
`
	prices, err := ReadPrices(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	r := varlik.NewRange(varlik.MustParse("2025-08-01"), varlik.MustParse("2025-08-31"))

	h, err := prices.History(ctx, testKey(), r)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := h.Len(), 2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	// sparse data: the 20th resolves to the last observation before it.
	p, ok := h.PriceOn(varlik.MustParse("2025-08-20"))
	if !ok {
		t.Fatal("PriceOn() found no price")
	}
	if want := varlik.M(120, "TRY"); !p.Equal(want) {
		t.Errorf("PriceOn(2025-08-20) = %s, want %s", p.Decimal(), want.Decimal())
	}

	// a key without observations is steady state, not an error.
	missing := varlik.PositionKey{Class: varlik.ClassCrypto, Symbol: "BTC", Platform: "binance"}
	h, err = prices.History(ctx, missing, r)
	if err != nil {
		t.Errorf("History(unknown key) = %v, want nil error", err)
	}
	if h != nil {
		t.Errorf("History(unknown key) = %d observations, want nil", h.Len())
	}
}

func TestReadPrices_RejectsMalformedLine(t *testing.T) {
	if _, err := ReadPrices(strings.NewReader("nope\n")); err == nil {
		t.Fatal("ReadPrices() accepted malformed input")
	}
}

func TestOpenPriceFile_MissingIsEmpty(t *testing.T) {
	prices, err := OpenPriceFile(t.TempDir() + "/absent.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	r := varlik.NewRange(varlik.MustParse("2025-08-01"), varlik.MustParse("2025-08-31"))
	h, err := prices.History(context.Background(), testKey(), r)
	if err != nil {
		t.Errorf("History() on empty source = %v, want nil error", err)
	}
	if h != nil {
		t.Errorf("History() on empty source = %d observations, want nil", h.Len())
	}
}
