package varlik

import (
	"sort"
)

// ClassChange is the net-flow breakdown for one asset class over a period:
// the value change that remains after removing the cash that moved in or out
// through buys and sells, i.e. the market-driven part of the change.
type ClassChange struct {
	Class      AssetClass
	StartValue Money
	EndValue   Money
	NetFlow    Money   // buys minus sells inside the period
	Profit     Money   // EndValue - StartValue - NetFlow
	Return     Percent // Profit / StartValue, 0 when nothing was held at start
}

// ChangeReport is the monthly (or any period) change attribution: one row
// per asset class plus a total row.
//
// The total return is the sum of profits over the sum of start values. It is
// deliberately NOT the re-derived percentage of total profit over total end
// value; those are different quantities.
type ChangeReport struct {
	Range   Range
	Total   ClassChange
	Classes []ClassChange

	// MissingPrices lists the keys valued through a fallback because no
	// market price was available for the period. The report is still
	// complete; this is an annotation, not a failure.
	MissingPrices []PositionKey
}

// keyActivity accumulates the in-period trading of one key.
type keyActivity struct {
	buyQty, sellQty Quantity
	buyAmt, sellAmt Money
}

// averageSellPrice is the best-effort historical price of a position that
// was fully closed during the period: the mean price actually realized.
func (a keyActivity) averageSellPrice() (Money, bool) {
	if !a.sellQty.IsPositive() {
		return Money{}, false
	}
	return a.sellAmt.Div(a.sellQty), true
}

// Attribute computes the net-flow change breakdown for the given period.
//
// For each position the start-of-period quantity is reconstructed by
// reversing the in-period buy/sell deltas from the current quantity.
// Positions fully closed during the period (no current row) still contribute
// to the start value with their reconstructed quantity: omitting them would
// silently understate the denominator and corrupt the percentages.
func Attribute(positions []Position, records []TransactionRecord, prices map[PositionKey]*PriceHistory, period Range) *ChangeReport {
	activity := make(map[PositionKey]keyActivity)
	for _, t := range records {
		if !period.Contains(t.Date) {
			continue
		}
		a := activity[t.Key]
		switch t.Kind {
		case KindBuy:
			a.buyQty = a.buyQty.Add(t.Quantity)
			a.buyAmt = a.buyAmt.Add(t.Amount)
		case KindSell:
			a.sellQty = a.sellQty.Add(t.Quantity)
			a.sellAmt = a.sellAmt.Add(t.Amount)
		}
		activity[t.Key] = a
	}

	// the key universe is every open position plus every key traded in the
	// period: the latter catches "phantom" positions closed mid-period.
	current := make(map[PositionKey]Position, len(positions))
	keys := make([]PositionKey, 0, len(positions)+len(activity))
	for _, p := range positions {
		current[p.Key] = p
		keys = append(keys, p.Key)
	}
	for key := range activity {
		if _, held := current[key]; !held {
			keys = append(keys, key)
		}
	}

	byClass := make(map[AssetClass]*ClassChange)
	report := &ChangeReport{Range: period}

	for _, key := range keys {
		pos, held := current[key]
		a := activity[key]

		currentQty := Q(0)
		if held {
			currentQty = pos.Quantity
		}
		startQty := currentQty.Sub(a.buyQty).Add(a.sellQty)
		if startQty.NearZero() || startQty.IsNegative() {
			startQty = Q(0)
		}

		endPrice, startPrice, missing := resolvePrices(key, pos, held, a, prices, period)
		if missing {
			report.MissingPrices = append(report.MissingPrices, key)
		}

		c := byClass[key.Class]
		if c == nil {
			c = &ClassChange{Class: key.Class}
			byClass[key.Class] = c
		}
		c.StartValue = c.StartValue.Add(startPrice.Mul(startQty))
		c.EndValue = c.EndValue.Add(endPrice.Mul(currentQty))
		c.NetFlow = c.NetFlow.Add(a.buyAmt).Sub(a.sellAmt)
	}

	var totalProfit, totalStart Money
	for _, c := range byClass {
		c.Profit = c.EndValue.Sub(c.StartValue).Sub(c.NetFlow)
		if c.StartValue.IsPositive() {
			c.Return = Percent(100 * c.Profit.AsFloat() / c.StartValue.AsFloat())
		}
		totalProfit = totalProfit.Add(c.Profit)
		totalStart = totalStart.Add(c.StartValue)
		report.Total.StartValue = report.Total.StartValue.Add(c.StartValue)
		report.Total.EndValue = report.Total.EndValue.Add(c.EndValue)
		report.Total.NetFlow = report.Total.NetFlow.Add(c.NetFlow)
		report.Classes = append(report.Classes, *c)
	}
	report.Total.Profit = totalProfit
	if totalStart.IsPositive() {
		report.Total.Return = Percent(100 * totalProfit.AsFloat() / totalStart.AsFloat())
	}

	sort.Slice(report.Classes, func(i, j int) bool {
		return report.Classes[i].Class < report.Classes[j].Class
	})
	return report
}

// resolvePrices picks the end- and start-of-period unit prices for one key,
// degrading through the defined fallbacks when market data is missing:
// last known price, realized sale price (for positions closed in the
// period), then the position's own average cost.
func resolvePrices(key PositionKey, pos Position, held bool, a keyActivity, prices map[PositionKey]*PriceHistory, period Range) (endPrice, startPrice Money, missing bool) {
	var history *PriceHistory
	if prices != nil {
		history = prices[key]
	}

	if history != nil {
		if p, ok := history.PriceOn(period.To); ok {
			endPrice = p
		}
		if p, ok := history.PriceOn(period.From); ok {
			startPrice = p
		}
	}

	if endPrice.IsZero() {
		missing = true
		if held {
			endPrice = pos.AverageCost
		} else if p, ok := a.averageSellPrice(); ok {
			endPrice = p
		}
	}
	if startPrice.IsZero() {
		missing = true
		if p, ok := a.averageSellPrice(); ok && !held {
			startPrice = p
		} else {
			startPrice = endPrice
		}
	}
	return endPrice, startPrice, missing
}
