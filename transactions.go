package varlik

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind identifies the direction of a ledger event.
type Kind string

const (
	KindBuy  Kind = "buy"
	KindSell Kind = "sell"
)

// TransactionRecord is one immutable entry of the transaction log, ordered
// by its effective date (which is distinct from the time it was entered).
//
// The log is the source of truth; a Position is a materialized, derivable
// view over it. An "edit" or "delete" of history never mutates other
// records, it triggers a Replay to rebuild the affected position.
type TransactionRecord struct {
	ID          string
	Key         PositionKey
	Kind        Kind
	Quantity    Quantity
	Price       Money // unit price
	Amount      Money // total = quantity * price
	RealizedPnL Money // sells only
	Date        Date  // effective date
}

// NewBuyRecord creates a buy record; the total amount is derived from the
// unit price.
func NewBuyRecord(id string, key PositionKey, on Date, quantity Quantity, price Money) TransactionRecord {
	return TransactionRecord{
		ID:       id,
		Key:      key,
		Kind:     KindBuy,
		Quantity: quantity,
		Price:    price,
		Amount:   price.Mul(quantity),
		Date:     on,
	}
}

// NewSellRecord creates a sell record with the realized profit or loss
// locked in at settlement time.
func NewSellRecord(id string, key PositionKey, on Date, quantity Quantity, price Money, realized Money) TransactionRecord {
	return TransactionRecord{
		ID:          id,
		Key:         key,
		Kind:        KindSell,
		Quantity:    quantity,
		Price:       price,
		Amount:      price.Mul(quantity),
		RealizedPnL: realized,
		Date:        on,
	}
}

// When returns the effective date of the record.
func (t TransactionRecord) When() Date { return t.Date }

// Validate checks the record for correctness before it enters the log.
func (t TransactionRecord) Validate() error {
	if err := t.Key.Validate(); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if t.Kind != KindBuy && t.Kind != KindSell {
		return fmt.Errorf("unknown transaction kind: %q", t.Kind)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity %s must be positive", ErrInvalidQuantity, t.Quantity)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%w: price %s must be positive", ErrInvalidQuantity, t.Price)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("effective date is missing")
	}
	return nil
}

// Equal reports whether two records are the same entry with the same content.
func (t TransactionRecord) Equal(o TransactionRecord) bool {
	return t.ID == o.ID &&
		t.Key == o.Key &&
		t.Kind == o.Kind &&
		t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) &&
		t.Amount.Equal(o.Amount) &&
		t.RealizedPnL.Equal(o.RealizedPnL) &&
		t.Date == o.Date
}

// MarshalJSON writes the record with a stable field order for JSONL files.
func (t TransactionRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("kind", t.Kind)
	w.Append("date", t.Date)
	w.EmbedFrom(t.Key)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.Append("amount", t.Amount.Decimal())
	if t.Kind == KindSell {
		w.Append("realizedPnL", t.RealizedPnL.Decimal())
	}
	w.Optional("currency", t.Price.Currency())
	return w.MarshalJSON()
}

// recordLine is a specialized struct to decode a JSONL record where monetary
// fields are plain decimals sharing one currency field.
type recordLine struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Date        Date            `json:"date"`
	Class       AssetClass      `json:"class"`
	Symbol      string          `json:"symbol"`
	Platform    string          `json:"platform"`
	Quantity    Quantity        `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	RealizedPnL decimal.Decimal `json:"realizedPnL"`
	Currency    string          `json:"currency"`
}

func (l recordLine) record() TransactionRecord {
	t := TransactionRecord{
		ID:       l.ID,
		Key:      PositionKey{Class: l.Class, Symbol: l.Symbol, Platform: l.Platform},
		Kind:     l.Kind,
		Quantity: l.Quantity,
		Price:    M(l.Price, l.Currency),
		Amount:   M(l.Amount, l.Currency),
		Date:     l.Date,
	}
	if l.Kind == KindSell {
		t.RealizedPnL = M(l.RealizedPnL, l.Currency)
	}
	return t
}

// DecodeRecords decodes transaction records from a stream of JSONL data and
// returns them sorted by effective date.
func DecodeRecords(r io.Reader) ([]TransactionRecord, error) {
	var records []TransactionRecord
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var line recordLine
		if err := json.Unmarshal(lineBytes, &line); err != nil {
			return nil, fmt.Errorf("could not decode record line %q: %w", string(lineBytes), err)
		}
		records = append(records, line.record())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	SortRecords(records)
	return records, nil
}

// EncodeRecord appends a single record as one JSONL line.
func EncodeRecord(w io.Writer, t TransactionRecord) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("could not encode record %s: %w", t.ID, err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// SortRecords sorts records by effective date ascending. The sort is stable:
// records on the same day keep their original relative order, so replaying
// is deterministic.
func SortRecords(records []TransactionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// FilterByKey returns the sub-log of records belonging to one position key,
// preserving order.
func FilterByKey(records []TransactionRecord, key PositionKey) []TransactionRecord {
	var out []TransactionRecord
	for _, t := range records {
		if t.Key == key {
			out = append(out, t)
		}
	}
	return out
}
