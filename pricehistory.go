package varlik

import (
	"iter"
	"slices"
	"sort"
)

// PricePoint is one observed market price on a given day.
type PricePoint struct {
	On    Date
	Price Money
}

// PriceHistory stores a chronological series of prices for one instrument.
// Dates are unique and the series is always sorted; lookups resolve to the
// last known price on or before a date, because market data is sparse
// (weekends, holidays, fetch gaps).
type PriceHistory struct {
	points []PricePoint
}

// Len returns the number of points in the history.
func (h *PriceHistory) Len() int { return len(h.points) }

// Latest returns the most recent point in the history.
// If the history is empty, it returns the zero point.
func (h *PriceHistory) Latest() PricePoint {
	if len(h.points) == 0 {
		return PricePoint{}
	}
	return h.points[len(h.points)-1]
}

// Append adds a point to the history. An existing value on that date is
// overwritten, giving priority to the last data.
func (h *PriceHistory) Append(on Date, price Money) *PriceHistory {
	if i := slices.IndexFunc(h.points, func(p PricePoint) bool { return p.On == on }); i >= 0 {
		h.points[i].Price = price
		return h
	}
	h.points = append(h.points, PricePoint{On: on, Price: price})
	sort.SliceStable(h.points, func(i, j int) bool {
		return h.points[i].On.Before(h.points[j].On)
	})
	return h
}

// PriceOn returns the last known price on or before the given date.
// The bool is false when the history has no data up to that date; callers
// degrade to their defined fallback, never to a failure, because missing
// market data is a steady-state condition.
func (h *PriceHistory) PriceOn(on Date) (Money, bool) {
	var last Money
	found := false
	for _, p := range h.points {
		if p.On.After(on) {
			break
		}
		last = p.Price
		found = true
	}
	return last, found
}

// Points returns an iterator over all points in chronological order.
func (h *PriceHistory) Points() iter.Seq[PricePoint] {
	return func(yield func(PricePoint) bool) {
		for _, p := range h.points {
			if !yield(p) {
				return
			}
		}
	}
}
