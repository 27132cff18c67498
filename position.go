package varlik

import (
	"fmt"
	"strings"
)

// AssetClass groups instruments the way the monthly breakdown reports them.
type AssetClass string

const (
	ClassFund     AssetClass = "fund"     // mutual/pension funds (TEFAS)
	ClassStock    AssetClass = "stock"    // equities (BIST, US)
	ClassCrypto   AssetClass = "crypto"   // crypto assets
	ClassCurrency AssetClass = "currency" // foreign currency holdings
	ClassMetal    AssetClass = "metal"    // gold and other precious metals
)

// ParseAssetClass parses a string into an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	switch c := AssetClass(strings.ToLower(strings.TrimSpace(s))); c {
	case ClassFund, ClassStock, ClassCrypto, ClassCurrency, ClassMetal:
		return c, nil
	default:
		return "", fmt.Errorf("unknown asset class: %q", s)
	}
}

// PositionKey is the identity of one logical position. Two transactions with
// the same key consolidate into one position; the same symbol held on two
// platforms is deliberately two distinct positions.
type PositionKey struct {
	Class    AssetClass `json:"class"`
	Symbol   string     `json:"symbol"`
	Platform string     `json:"platform"`
}

func (k PositionKey) String() string {
	return fmt.Sprintf("%s/%s@%s", k.Class, k.Symbol, k.Platform)
}

// Validate checks the key's fields.
func (k PositionKey) Validate() error {
	if _, err := ParseAssetClass(string(k.Class)); err != nil {
		return err
	}
	if k.Symbol == "" {
		return fmt.Errorf("symbol is missing")
	}
	if k.Platform == "" {
		return fmt.Errorf("platform is missing")
	}
	return nil
}

// Position is the consolidated holding for one key: a quantity and the
// quantity-weighted mean purchase price across all buys net of prior sells.
//
// A position with zero quantity is closed: it is removed from the active set
// and its average cost is cleared so a later re-open cannot reuse a stale
// value.
type Position struct {
	Key         PositionKey
	Quantity    Quantity
	AverageCost Money
}

// Currency returns the currency the position is priced in.
func (p Position) Currency() string { return p.AverageCost.Currency() }

// CostBasis returns quantity * average cost.
func (p Position) CostBasis() Money { return p.AverageCost.Mul(p.Quantity) }

// MarketValue returns the value of the position at the given unit price.
func (p Position) MarketValue(price Money) Money { return price.Mul(p.Quantity) }

// IsClosed reports whether the position holds nothing.
func (p Position) IsClosed() bool { return p.Quantity.NearZero() }

// close zeroes the position, clearing the average cost.
func (p Position) close() Position {
	return Position{Key: p.Key, Quantity: Q(0), AverageCost: M(0, p.Currency())}
}

func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("class", p.Key.Class)
	w.Append("symbol", p.Key.Symbol)
	w.Append("platform", p.Key.Platform)
	w.Append("quantity", p.Quantity)
	w.Append("averageCost", p.AverageCost.Decimal())
	w.Optional("currency", p.Currency())
	return w.MarshalJSON()
}
