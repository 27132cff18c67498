package varlik

import "testing"

func TestPriceHistory_PriceOn(t *testing.T) {
	h := &PriceHistory{}
	h.Append(MustParse("2025-08-15"), M(120, "TRY"))
	h.Append(MustParse("2025-08-01"), M(110, "TRY")) // out of order on purpose

	tests := []struct {
		on    string
		want  float64
		found bool
	}{
		{"2025-07-31", 0, false}, // before any data
		{"2025-08-01", 110, true},
		{"2025-08-10", 110, true}, // weekend gap, last-on-or-before
		{"2025-08-15", 120, true},
		{"2025-08-28", 120, true},
	}
	for _, tc := range tests {
		got, ok := h.PriceOn(MustParse(tc.on))
		if ok != tc.found {
			t.Errorf("PriceOn(%s) found = %v, want %v", tc.on, ok, tc.found)
			continue
		}
		if ok && !got.Equal(M(tc.want, "TRY")) {
			t.Errorf("PriceOn(%s) = %s, want %v", tc.on, got.Decimal(), tc.want)
		}
	}
}

func TestPriceHistory_AppendReplacesSameDay(t *testing.T) {
	h := &PriceHistory{}
	h.Append(MustParse("2025-08-01"), M(110, "TRY"))
	h.Append(MustParse("2025-08-01"), M(111, "TRY"))
	if got, want := h.Len(), 1; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got := h.Latest(); !got.Price.Equal(M(111, "TRY")) {
		t.Errorf("Latest().Price = %s, want 111", got.Price.Decimal())
	}
}

func TestPriceHistory_Points(t *testing.T) {
	h := &PriceHistory{}
	h.Append(MustParse("2025-08-15"), M(120, "TRY"))
	h.Append(MustParse("2025-08-01"), M(110, "TRY"))

	var dates []Date
	for p := range h.Points() {
		dates = append(dates, p.On)
	}
	if len(dates) != 2 || dates[0] != MustParse("2025-08-01") {
		t.Errorf("Points() order = %v, want chronological", dates)
	}
}
