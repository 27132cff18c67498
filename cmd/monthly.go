package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
	"github.com/gurbeyk/Varlik-takip-programi-sub000/renderer"
)

type monthlyCmd struct {
	date   string
	period string
}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "display the periodic change breakdown per asset class" }
func (*monthlyCmd) Usage() string {
	return `monthly [-d <date>] [-p <period>]

  Displays the value change of the period split per asset class into cash
  flow (net buys minus sells) and market profit, with a per-class and total
  return. Defaults to the month containing the given date.
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", varlik.Today().String(), "Date selecting the period")
	f.StringVar(&c.period, "p", "month", "Period to review (month, quarter, year)")
}

func (c *monthlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := varlik.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	period, err := varlik.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	service, closer, err := openService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	prices, err := openPrices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := service.MonthlyChange(ctx, prices, period.Range(on))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderer.RenderChangeReport(&b, report)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
