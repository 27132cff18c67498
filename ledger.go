package varlik

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity rejects a non-positive quantity or price on a buy
	// or sell, before any state is touched.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// InsufficientQuantityError rejects a sell whose quantity exceeds the
// available position by more than the dust tolerance.
type InsufficientQuantityError struct {
	Key       PositionKey
	Requested Quantity
	Available Quantity
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity on %s: requested %s, available %s",
		e.Key, e.Requested, e.Available)
}

// ApplyBuy settles a buy against the position (nil for a first buy) and
// returns the updated position.
//
// The new average cost is the quantity-weighted mean across all historical
// buys net of prior sells:
//
//	newAvg = (oldQty*oldAvg + qty*price) / (oldQty + qty)
//
// A buy never looks at the market price, and never re-prices sold quantity.
func ApplyBuy(position *Position, key PositionKey, quantity Quantity, price Money) (Position, error) {
	if !quantity.IsPositive() {
		return Position{}, fmt.Errorf("%w: buy quantity %s must be positive", ErrInvalidQuantity, quantity)
	}
	if !price.IsPositive() {
		return Position{}, fmt.Errorf("%w: buy price %s must be positive", ErrInvalidQuantity, price)
	}

	oldQty := Q(0)
	oldCost := M(0, price.Currency())
	if position != nil {
		oldQty = position.Quantity
		oldCost = position.CostBasis()
		key = position.Key
	}

	newQty := oldQty.Add(quantity)
	newCost := oldCost.Add(price.Mul(quantity))
	avg := M(0, price.Currency())
	if newQty.IsPositive() {
		avg = newCost.Div(newQty)
	}
	return Position{Key: key, Quantity: newQty, AverageCost: avg}, nil
}

// ApplySell settles a sell against the position and returns the updated
// position and the realized profit or loss.
//
// Selling partitions the existing cost, it does not re-price it: the average
// cost is unchanged by a sell, only the quantity shrinks. This is the pooled
// weighted-average model, not lot-level FIFO. When the remaining quantity is
// within the dust tolerance of zero the position is closed.
func ApplySell(position Position, quantity Quantity, price Money) (Position, Money, error) {
	if !quantity.IsPositive() {
		return position, Money{}, fmt.Errorf("%w: sell quantity %s must be positive", ErrInvalidQuantity, quantity)
	}
	if !price.IsPositive() {
		return position, Money{}, fmt.Errorf("%w: sell price %s must be positive", ErrInvalidQuantity, price)
	}
	if quantity.ExceedsBeyondEpsilon(position.Quantity) {
		return position, Money{}, &InsufficientQuantityError{
			Key:       position.Key,
			Requested: quantity,
			Available: position.Quantity,
		}
	}

	costBasis := position.AverageCost.Mul(quantity)
	revenue := price.Mul(quantity)
	realized := revenue.Sub(costBasis)

	remaining := position.Quantity.Sub(quantity)
	if remaining.NearZero() {
		return position.close(), realized, nil
	}
	position.Quantity = remaining
	return position, realized, nil
}
