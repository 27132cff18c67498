package varlik

import "testing"

func TestMoney_StringRoundsHalfEven(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{110, "$110.00"},
		{2.345, "$2.34"}, // banker's rounding, down to even
		{2.355, "$2.36"}, // banker's rounding, up to even
		{1234.5, "$1,234.50"},
		{-3.5, "-$3.50"},
	}
	for _, tc := range tests {
		if got := M(tc.value, "USD").String(); got != tc.want {
			t.Errorf("M(%v).String() = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestMoney_StringKeepsFullPrecisionInternally(t *testing.T) {
	m := M(2.345, "USD")
	if got, want := m.String(), "$2.34"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	// display rounding never touches the stored value.
	if got, want := m.Decimal().String(), "2.345"; got != want {
		t.Errorf("Decimal() = %q, want %q", got, want)
	}
}

func TestMoney_SignedString(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{5, "+$5.00"},
		{-5, "-$5.00"},
		{0, "-"},
	}
	for _, tc := range tests {
		if got := M(tc.value, "USD").SignedString(); got != tc.want {
			t.Errorf("M(%v).SignedString() = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestMoney_WeakEmptyCurrency(t *testing.T) {
	sum := Money{}.Add(M(5, "TRY"))
	if got, want := sum.Currency(), "TRY"; got != want {
		t.Errorf("Currency() = %q, want %q", got, want)
	}
	if got, want := sum, M(5, "TRY"); !got.Equal(want) {
		t.Errorf("sum = %s, want %s", got.Decimal(), want.Decimal())
	}
}

func TestMoney_MismatchedCurrencyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Add() across currencies did not panic")
		}
	}()
	M(1, "TRY").Add(M(1, "USD"))
}

func TestMoney_MulDivByQuantity(t *testing.T) {
	price := M(120.5, "TRY")
	total := price.Mul(Q(5))
	if got, want := total, M(602.5, "TRY"); !got.Equal(want) {
		t.Errorf("Mul(5) = %s, want %s", got.Decimal(), want.Decimal())
	}
	if got, want := total.Div(Q(5)), price; !got.Equal(want) {
		t.Errorf("Div(5) = %s, want %s", got.Decimal(), want.Decimal())
	}
}

func TestMoney_DivKeepsExactThirds(t *testing.T) {
	// 100 / 3 carries enough digits that multiplying back is stable at
	// display precision.
	avg := M(100, "TRY").Div(Q(3))
	back := avg.Mul(Q(3))
	if back.Sub(M(100, "TRY")).Decimal().Abs().GreaterThan(epsilon) {
		t.Errorf("100/3*3 = %s, drifted beyond tolerance", back.Decimal())
	}
}
