package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

// --- Buy Command ---

type buyCmd struct {
	keyFlags
	date     string
	quantity string
	price    string
	currency string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase units to open or add to a position" }
func (*buyCmd) Usage() string {
	return `buy -class <class> -symbol <symbol> -platform <platform> -q <quantity> -p <price> [-d <date>] [-c <currency>]

  Settles a buy: the position's quantity grows and its average cost moves to
  the quantity-weighted mean of all purchases.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	c.keyFlags.register(f)
	f.StringVar(&c.date, "d", varlik.Today().String(), "Effective date (YYYY-MM-DD)")
	f.StringVar(&c.quantity, "q", "", "Number of units")
	f.StringVar(&c.price, "p", "", "Price per unit")
	f.StringVar(&c.currency, "c", "TRY", "Currency of the price")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := c.key()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	quantity, err := parseQuantity(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := parseMoney(c.price, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	on, err := varlik.ParseDate(c.date)
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

	position, err := service.Buy(ctx, key, quantity, price, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Bought %s %s at %s; position is now %s units at %s average cost.\n",
		quantity, key, price, position.Quantity, position.AverageCost)
	return subcommands.ExitSuccess
}

// --- Sell Command ---

type sellCmd struct {
	keyFlags
	date     string
	quantity string
	price    string
	currency string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell units to trim or close a position" }
func (*sellCmd) Usage() string {
	return `sell -class <class> -symbol <symbol> -platform <platform> -q <quantity> -p <price> [-d <date>] [-c <currency>]

  Settles a sell: profit or loss is realized against the average cost, which
  never moves on a sell. Selling everything closes the position.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	c.keyFlags.register(f)
	f.StringVar(&c.date, "d", varlik.Today().String(), "Effective date (YYYY-MM-DD)")
	f.StringVar(&c.quantity, "q", "", "Number of units")
	f.StringVar(&c.price, "p", "", "Price per unit")
	f.StringVar(&c.currency, "c", "TRY", "Currency of the price")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := c.key()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	quantity, err := parseQuantity(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := parseMoney(c.price, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	on, err := varlik.ParseDate(c.date)
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

	position, realized, err := service.Sell(ctx, key, quantity, price, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if position.IsClosed() {
		fmt.Printf("Sold %s %s at %s, realized %s; position closed.\n",
			quantity, key, price, realized.SignedString())
	} else {
		fmt.Printf("Sold %s %s at %s, realized %s; %s units remain at %s average cost.\n",
			quantity, key, price, realized.SignedString(), position.Quantity, position.AverageCost)
	}
	return subcommands.ExitSuccess
}
