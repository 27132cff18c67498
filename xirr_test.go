package varlik

import (
	"errors"
	"math"
	"testing"
)

func flow(amount float64, on string) CashFlow {
	return CashFlow{Amount: M(amount, "TRY"), Date: MustParse(on)}
}

func TestXIRR_KnownRates(t *testing.T) {
	tests := []struct {
		name  string
		flows []CashFlow
		want  float64
	}{
		{
			name: "10 percent over one year",
			flows: []CashFlow{
				flow(-100, "2024-01-01"),
				flow(110, "2024-12-31"), // 365 days
			},
			want: 0.10,
		},
		{
			name: "flat over one year",
			flows: []CashFlow{
				flow(-100, "2024-01-01"),
				flow(100, "2024-12-31"),
			},
			want: 0.0,
		},
		{
			name: "loss over one year",
			flows: []CashFlow{
				flow(-100, "2024-01-01"),
				flow(90, "2024-12-31"),
			},
			want: -0.10,
		},
		{
			name: "staggered contributions",
			flows: []CashFlow{
				flow(-1000, "2024-01-01"),
				flow(-500, "2024-07-01"),
				flow(1650, "2024-12-31"),
			},
			// reference value computed with a spreadsheet XIRR.
			want: 0.1206,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := XIRR(tc.flows, 0.1)
			if err != nil {
				t.Fatalf("XIRR() error: %v", err)
			}
			if math.Abs(float64(got)-tc.want) > 5e-4 {
				t.Errorf("XIRR() = %.6f, want %.4f", float64(got), tc.want)
			}
		})
	}
}

func TestXIRR_IndeterminateFlows(t *testing.T) {
	tests := []struct {
		name  string
		flows []CashFlow
	}{
		{name: "empty", flows: nil},
		{name: "all outflows", flows: []CashFlow{
			flow(-100, "2024-01-01"),
			flow(-50, "2024-06-01"),
		}},
		{name: "all inflows", flows: []CashFlow{
			flow(100, "2024-01-01"),
			flow(50, "2024-06-01"),
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := XIRR(tc.flows, 0.1)
			if !errors.Is(err, ErrIndeterminate) {
				t.Fatalf("XIRR() = %.6f, %v; want ErrIndeterminate", float64(got), err)
			}
		})
	}
}

func TestXIRR_UnorderedFlowsAnchorAtEarliest(t *testing.T) {
	// same flows as the 10% case, listed terminal-first.
	got, err := XIRR([]CashFlow{
		flow(110, "2024-12-31"),
		flow(-100, "2024-01-01"),
	}, 0.1)
	if err != nil {
		t.Fatalf("XIRR() error: %v", err)
	}
	if math.Abs(float64(got)-0.10) > 1e-4 {
		t.Errorf("XIRR() = %.6f, want 0.10", float64(got))
	}
}

func TestPortfolioFlows(t *testing.T) {
	key := testKey()
	records := []TransactionRecord{
		buyRec("1", key, "2025-01-10", 10, 100),
		sellRec("2", key, "2025-02-01", 4, 120),
	}
	valuation := M(700, "TRY")
	on := MustParse("2025-03-01")

	flows := PortfolioFlows(records, valuation, on)
	if got, want := len(flows), 3; got != want {
		t.Fatalf("len(flows) = %d, want %d", got, want)
	}
	if got, want := flows[0].Amount, M(-1000, "TRY"); !got.Equal(want) {
		t.Errorf("buy flow = %s, want %s (buys must be outflows)", got.Decimal(), want.Decimal())
	}
	if got, want := flows[1].Amount, M(480, "TRY"); !got.Equal(want) {
		t.Errorf("sell flow = %s, want %s", got.Decimal(), want.Decimal())
	}
	if got, want := flows[2], (CashFlow{Amount: valuation, Date: on}); got != want {
		t.Errorf("terminal flow = %+v, want %+v", got, want)
	}
}

func TestPortfolioFlows_SkipsZeroValuation(t *testing.T) {
	key := testKey()
	records := []TransactionRecord{buyRec("1", key, "2025-01-10", 10, 100)}
	flows := PortfolioFlows(records, Money{}, MustParse("2025-03-01"))
	if got, want := len(flows), 1; got != want {
		t.Errorf("len(flows) = %d, want %d", got, want)
	}
}
