package varlik

import (
	"errors"
	"math"
)

// ErrIndeterminate reports that no meaningful rate exists for the given cash
// flows: either they are all one-signed, or the solver did not converge.
// Callers must be able to tell this apart from a confirmed 0% return.
var ErrIndeterminate = errors.New("indeterminate rate")

// Rate is an annualized money-weighted rate of return, e.g. 0.10 for 10%.
type Rate float64

// Percent returns the rate as a display percentage.
func (r Rate) Percent() Percent { return Percent(r * 100) }

// CashFlow is one dated, signed flow: outflows (buys, deposits into the
// market) are negative, inflows and the terminal valuation are positive.
type CashFlow struct {
	Amount Money
	Date   Date
}

const (
	xirrMaxIterations = 50
	xirrTolerance     = 1e-6
	xirrDerivativeMin = 1e-10
)

// XIRR computes the annualized internal rate of return of irregularly dated,
// irregularly sized cash flows by Newton-Raphson on the present value
// anchored at the earliest flow date:
//
//	pv(rate) = Σ amount / (1+rate)^(days/365)
//
// The derivative is computed analytically for stability. It returns
// ErrIndeterminate when the flows do not contain both signs, when the
// iteration does not converge, or when the math degenerates (NaN, or a
// derivative too close to zero to divide by).
func XIRR(flows []CashFlow, guess float64) (Rate, error) {
	var hasPositive, hasNegative bool
	for _, f := range flows {
		if f.Amount.IsPositive() {
			hasPositive = true
		}
		if f.Amount.IsNegative() {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		// a single-direction cash flow set has no meaningful IRR.
		return 0, ErrIndeterminate
	}

	// anchor at the earliest flow date.
	t0 := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(t0) {
			t0 = f.Date
		}
	}

	// exact money enters the float world only here, at the solver boundary.
	amounts := make([]float64, len(flows))
	years := make([]float64, len(flows))
	for i, f := range flows {
		amounts[i] = f.Amount.AsFloat()
		years[i] = float64(f.Date.DaysSince(t0)) / 365.0
	}

	rate := guess
	for i := 0; i < xirrMaxIterations; i++ {
		var pv, dpv float64
		for j := range amounts {
			factor := math.Pow(1+rate, years[j])
			pv += amounts[j] / factor
			dpv -= years[j] * amounts[j] / (factor * (1 + rate))
		}
		if math.Abs(dpv) < xirrDerivativeMin {
			// abort the step rather than dividing by near-zero.
			return 0, ErrIndeterminate
		}
		next := rate - pv/dpv
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return 0, ErrIndeterminate
		}
		if math.Abs(next-rate) < xirrTolerance {
			return Rate(next), nil
		}
		rate = next
	}
	return 0, ErrIndeterminate
}

// PortfolioFlows converts a transaction log plus a terminal valuation into
// the cash flow set of the whole portfolio: buys are outflows, sells are
// inflows, and the current value is a final inflow on the valuation date.
func PortfolioFlows(records []TransactionRecord, valuation Money, on Date) []CashFlow {
	flows := make([]CashFlow, 0, len(records)+1)
	for _, t := range records {
		switch t.Kind {
		case KindBuy:
			flows = append(flows, CashFlow{Amount: t.Amount.Neg(), Date: t.Date})
		case KindSell:
			flows = append(flows, CashFlow{Amount: t.Amount, Date: t.Date})
		}
	}
	if !valuation.IsZero() {
		flows = append(flows, CashFlow{Amount: valuation, Date: on})
	}
	return flows
}
