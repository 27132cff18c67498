package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
	"github.com/gurbeyk/Varlik-takip-programi-sub000/renderer"
)

type performanceCmd struct {
	date     string
	currency string
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "display the annualized money-weighted return" }
func (*performanceCmd) Usage() string {
	return `performance [-d <date>] [-c <currency>]

  Computes the XIRR of the whole transaction log: buys are outflows, sells
  inflows, and the current market value a terminal inflow on the given date.
  Positions are valued through the price file, falling back to their average
  cost where no market data exists.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", varlik.Today().String(), "Valuation date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "TRY", "Valuation currency")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := varlik.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	s, closer, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()
	service := varlik.NewService(s, nil)

	prices, err := openPrices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	valuation, err := valuePortfolio(ctx, s, prices, on, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	rate, err := service.PortfolioXIRR(ctx, valuation, on)
	if errors.Is(err, varlik.ErrIndeterminate) {
		fmt.Fprintln(os.Stderr, "No meaningful rate exists for these cash flows (this is not a 0% return).")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderer.RenderPerformance(&b, rate, valuation, on)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// valuePortfolio sums the market value of every open position on the given
// date, falling back to the position's average cost when no price is known.
func valuePortfolio(ctx context.Context, s varlik.Store, prices varlik.PriceSource, on varlik.Date, currency string) (varlik.Money, error) {
	positions, err := s.ListPositions(ctx)
	if err != nil {
		return varlik.Money{}, err
	}
	total := varlik.M(0, currency)
	r := varlik.NewRange(on.StartOf(varlik.Yearly), on)
	for _, p := range positions {
		price := p.AverageCost
		if prices != nil {
			if h, err := prices.History(ctx, p.Key, r); err == nil && h != nil {
				if market, ok := h.PriceOn(on); ok {
					price = market
				}
			}
		}
		total = total.Add(p.MarketValue(price))
	}
	return total, nil
}
