package varlik

// PeriodReturn returns the simple percentage return between a historical
// price and the current one.
//
// It is defined only for a positive historical price. "No comparable
// history" is a common, expected state for newly opened positions, so a
// non-positive historical price yields 0 rather than an error; callers that
// need to tell the two apart should check the history themselves.
func PeriodReturn(current, historical Money) Percent {
	if !historical.IsPositive() {
		return 0
	}
	return Percent(100 * current.Sub(historical).AsFloat() / historical.AsFloat())
}
