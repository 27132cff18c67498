package varlik

// Replay rebuilds the position for one key purely as a fold over its
// transaction log. It is required whenever a record is inserted out of
// temporal order, edited, or deleted, because the running average cost is
// path-dependent on transaction order.
//
// Replay is a pure function: it never reads or writes any shared state, and
// replaying the same log twice yields bit-identical results. The returned
// bool is false when the log nets out to a closed (or empty) position.
//
// If the final quantity is positive but no position currently exists for the
// key (a sell that fully closed it was later deleted, say), the caller must
// persist the returned position: the recovered quantity is never discarded.
func Replay(key PositionKey, records []TransactionRecord) (Position, bool) {
	log := FilterByKey(records, key)
	SortRecords(log)

	quantity := Q(0)
	totalCost := M(0, "")
	for _, t := range log {
		switch t.Kind {
		case KindBuy:
			totalCost = totalCost.Add(t.Price.Mul(t.Quantity))
			quantity = quantity.Add(t.Quantity)
		case KindSell:
			if quantity.IsPositive() {
				avg := totalCost.Div(quantity)
				totalCost = totalCost.Sub(avg.Mul(t.Quantity))
				quantity = quantity.Sub(t.Quantity)
			}
			if quantity.IsDepleted() {
				// signed snap: an oversell left in history (a buy edited
				// down after a later sell) must not leak negative quantity
				// into the following buys.
				quantity = Q(0)
				totalCost = M(0, totalCost.Currency())
			}
		}
	}

	if !quantity.IsPositive() {
		return Position{Key: key, Quantity: Q(0), AverageCost: M(0, currencyOf(log))}, false
	}
	return Position{Key: key, Quantity: quantity, AverageCost: totalCost.Div(quantity)}, true
}

// currencyOf returns the currency of the first record, or "" for an empty log.
func currencyOf(log []TransactionRecord) string {
	if len(log) == 0 {
		return ""
	}
	return log[0].Price.Currency()
}
