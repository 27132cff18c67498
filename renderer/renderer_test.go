package renderer

import (
	"strings"
	"testing"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

func testKey() varlik.PositionKey {
	return varlik.PositionKey{Class: varlik.ClassStock, Symbol: "THYAO", Platform: "midas"}
}

func TestRenderPositions(t *testing.T) {
	positions := []varlik.Position{
		{Key: testKey(), Quantity: varlik.Q(15), AverageCost: varlik.M(110, "USD")},
	}
	var b strings.Builder
	RenderPositions(&b, positions, varlik.MustParse("2025-08-28"))
	out := b.String()

	for _, want := range []string{
		"# Positions on 2025-08-28",
		"stock/THYAO@midas",
		"| 15 |",
		"$110.00",
		"$1,650.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPositions_Empty(t *testing.T) {
	var b strings.Builder
	RenderPositions(&b, nil, varlik.MustParse("2025-08-28"))
	if !strings.Contains(b.String(), "No open positions.") {
		t.Errorf("empty output = %q", b.String())
	}
}

func TestRenderTransactions(t *testing.T) {
	records := []varlik.TransactionRecord{
		varlik.NewBuyRecord("a1", testKey(), varlik.MustParse("2025-08-10"), varlik.Q(5), varlik.M(120, "USD")),
		varlik.NewSellRecord("a2", testKey(), varlik.MustParse("2025-08-11"), varlik.Q(2), varlik.M(130, "USD"), varlik.M(20, "USD")),
	}
	var b strings.Builder
	RenderTransactions(&b, records)
	out := b.String()

	if !strings.Contains(out, "| 2025-08-10 | buy |") {
		t.Errorf("output missing buy row:\n%s", out)
	}
	if !strings.Contains(out, "+$20.00") {
		t.Errorf("output missing realized PnL:\n%s", out)
	}
	// buys carry no realized column value.
	if !strings.Contains(out, "| $600.00 | - |") {
		t.Errorf("buy row should show '-' for realized:\n%s", out)
	}
}

func TestRenderChangeReport(t *testing.T) {
	report := &varlik.ChangeReport{
		Range: varlik.NewRange(varlik.MustParse("2025-08-01"), varlik.MustParse("2025-08-31")),
		Total: varlik.ClassChange{
			StartValue: varlik.M(1100, "USD"),
			EndValue:   varlik.M(1950, "USD"),
			NetFlow:    varlik.M(600, "USD"),
			Profit:     varlik.M(250, "USD"),
			Return:     varlik.Percent(22.73),
		},
		Classes: []varlik.ClassChange{{
			Class:      varlik.ClassStock,
			StartValue: varlik.M(1100, "USD"),
			EndValue:   varlik.M(1950, "USD"),
			NetFlow:    varlik.M(600, "USD"),
			Profit:     varlik.M(250, "USD"),
			Return:     varlik.Percent(22.73),
		}},
		MissingPrices: []varlik.PositionKey{testKey()},
	}

	var b strings.Builder
	RenderChangeReport(&b, report)
	out := b.String()

	for _, want := range []string{
		"# Review 2025-August",
		"| stock |",
		"+$600.00",
		"+$250.00",
		"+22.73%",
		"**Total**",
		"fallback prices",
		"- stock/THYAO@midas",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderChangeReport_Empty(t *testing.T) {
	report := &varlik.ChangeReport{
		Range: varlik.NewRange(varlik.MustParse("2025-08-01"), varlik.MustParse("2025-08-31")),
	}
	var b strings.Builder
	RenderChangeReport(&b, report)
	if !strings.Contains(b.String(), "No activity") {
		t.Errorf("empty report output = %q", b.String())
	}
}

func TestRenderPerformance(t *testing.T) {
	var b strings.Builder
	RenderPerformance(&b, varlik.Rate(0.1234), varlik.M(5000, "USD"), varlik.MustParse("2025-08-28"))
	out := b.String()
	if !strings.Contains(out, "+12.34%") {
		t.Errorf("output missing rate:\n%s", out)
	}
	if !strings.Contains(out, "$5,000.00") {
		t.Errorf("output missing valuation:\n%s", out)
	}
}
