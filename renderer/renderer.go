// Package renderer builds the markdown reports of the ledger: the open
// positions table, the transaction log, and the periodic change review.
// The output is plain markdown; the CLI decides how to display it.
package renderer

import (
	"fmt"
	"io"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

// RenderPositions writes the open positions table.
func RenderPositions(w io.Writer, positions []varlik.Position, on varlik.Date) {
	fmt.Fprintf(w, "# Positions on %s\n\n", on)
	if len(positions) == 0 {
		fmt.Fprintln(w, "No open positions.")
		return
	}

	fmt.Fprintln(w, "| Position | Quantity | Avg Cost | Cost Basis |")
	fmt.Fprintln(w, "|:---|---:|---:|---:|")
	for _, p := range positions {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			p.Key, p.Quantity, p.AverageCost, p.CostBasis())
	}
}

// RenderTransactions writes the transaction log table, most recent last.
func RenderTransactions(w io.Writer, records []varlik.TransactionRecord) {
	fmt.Fprintf(w, "# Transactions\n\n")
	if len(records) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return
	}

	fmt.Fprintln(w, "| Date | Kind | Position | Quantity | Price | Amount | Realized | Id |")
	fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|---:|:---|")
	for _, t := range records {
		realized := "-"
		if t.Kind == varlik.KindSell {
			realized = t.RealizedPnL.SignedString()
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			t.Date, t.Kind, t.Key, t.Quantity, t.Price, t.Amount, realized, t.ID)
	}
}

// RenderChangeReport writes the periodic change review: one row per asset
// class with the value change split into cash flow and market profit, plus
// the total row.
func RenderChangeReport(w io.Writer, report *varlik.ChangeReport) {
	fmt.Fprintf(w, "# Review %s\n\n", report.Range.Identifier())

	if len(report.Classes) == 0 {
		fmt.Fprintln(w, "No activity and no open positions in this period.")
		return
	}

	fmt.Fprintln(w, "| Class | Start | End | Net Flow | Profit | Return |")
	fmt.Fprintln(w, "|:---|---:|---:|---:|---:|---:|")
	for _, c := range report.Classes {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
			c.Class, c.StartValue, c.EndValue,
			c.NetFlow.SignedString(), c.Profit.SignedString(), c.Return.SignedString())
	}
	t := report.Total
	fmt.Fprintf(w, "| **Total** | **%s** | **%s** | **%s** | **%s** | **%s** |\n",
		t.StartValue, t.EndValue,
		t.NetFlow.SignedString(), t.Profit.SignedString(), t.Return.SignedString())

	if len(report.MissingPrices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Valued through fallback prices (no market data):")
		fmt.Fprintln(w)
		for _, key := range report.MissingPrices {
			fmt.Fprintf(w, "- %s\n", key)
		}
	}
}

// RenderPerformance writes the money-weighted return line.
func RenderPerformance(w io.Writer, rate varlik.Rate, valuation varlik.Money, on varlik.Date) {
	fmt.Fprintf(w, "# Performance on %s\n\n", on)
	fmt.Fprintf(w, "Annualized money-weighted return: **%s** (portfolio valued at %s).\n",
		rate.Percent().SignedString(), valuation)
}
