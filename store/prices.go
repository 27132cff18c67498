package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
	"github.com/shopspring/decimal"
)

// PriceFile is a PriceSource backed by a JSONL file of already-fetched
// market prices, one observation per line:
//
//	{"class":"stock","symbol":"THYAO","platform":"midas","date":"2025-08-01","price":110.5,"currency":"TRY"}
//
// Fetching prices is out of scope here; the fetchers of the surrounding
// application write this file.
type PriceFile struct {
	histories map[varlik.PositionKey]*varlik.PriceHistory
}

type priceLine struct {
	Class    varlik.AssetClass `json:"class"`
	Symbol   string            `json:"symbol"`
	Platform string            `json:"platform"`
	Date     varlik.Date       `json:"date"`
	Price    decimal.Decimal   `json:"price"`
	Currency string            `json:"currency"`
}

// OpenPriceFile loads a JSONL price file. A missing file yields an empty
// source: absent market data degrades to the attribution fallbacks.
func OpenPriceFile(path string) (*PriceFile, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &PriceFile{histories: make(map[varlik.PositionKey]*varlik.PriceHistory)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open price file %q: %w", path, err)
	}
	defer f.Close()
	return ReadPrices(f)
}

// ReadPrices decodes a stream of JSONL price observations.
func ReadPrices(r io.Reader) (*PriceFile, error) {
	s := &PriceFile{histories: make(map[varlik.PositionKey]*varlik.PriceHistory)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var line priceLine
		if err := json.Unmarshal(lineBytes, &line); err != nil {
			return nil, fmt.Errorf("could not decode price line %q: %w", string(lineBytes), err)
		}
		key := varlik.PositionKey{Class: line.Class, Symbol: line.Symbol, Platform: line.Platform}
		h, ok := s.histories[key]
		if !ok {
			h = &varlik.PriceHistory{}
			s.histories[key] = h
		}
		h.Append(line.Date, varlik.M(line.Price, line.Currency))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// History returns the loaded series for one key, or (nil, nil) when the file
// carries no observations for it: absent market data is a steady state the
// caller falls back from, not an error. The range argument is ignored: the
// whole series is returned and lookups narrow it, which is cheap for
// file-sized data.
func (s *PriceFile) History(_ context.Context, key varlik.PositionKey, _ varlik.Range) (*varlik.PriceHistory, error) {
	return s.histories[key], nil
}

var _ varlik.PriceSource = (*PriceFile)(nil)
