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

// --- Tx (list) Command ---

type txCmd struct {
	keyFlags
	period string
	date   string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions from the log" }
func (*txCmd) Usage() string {
	return `tx [-class <class> -symbol <symbol> -platform <platform>] [-p <period>] [-d <date>]

  Lists transactions, optionally narrowed to one position and one period.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	c.keyFlags.register(f)
	f.StringVar(&c.period, "p", "", "Period to list (day, month, quarter, year); all when empty")
	f.StringVar(&c.date, "d", varlik.Today().String(), "Date selecting the period")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, closer, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	records, err := s.AllTransactions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	// narrow to one position when a full key was given.
	if c.class != "" || c.symbol != "" || c.platform != "" {
		key, err := c.key()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		records = varlik.FilterByKey(records, key)
	}

	if c.period != "" {
		period, err := varlik.ParsePeriod(c.period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		on, err := varlik.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		r := period.Range(on)
		filtered := records[:0]
		for _, t := range records {
			if r.Contains(t.Date) {
				filtered = append(filtered, t)
			}
		}
		records = filtered
	}

	var b strings.Builder
	renderer.RenderTransactions(&b, records)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// --- Edit Command ---

type editCmd struct {
	keyFlags
	id       string
	kind     string
	date     string
	quantity string
	price    string
	currency string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "replace a transaction and rebuild its position" }
func (*editCmd) Usage() string {
	return `edit -id <id> -class <class> -symbol <symbol> -platform <platform> -kind <buy|sell> -q <quantity> -p <price> -d <date> [-c <currency>]

  Replaces the content of an existing transaction. The affected position is
  rebuilt by replaying the whole log, so backdated corrections are safe.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	c.keyFlags.register(f)
	f.StringVar(&c.id, "id", "", "Id of the transaction to edit")
	f.StringVar(&c.kind, "kind", "buy", "Transaction kind (buy or sell)")
	f.StringVar(&c.date, "d", "", "Effective date (YYYY-MM-DD)")
	f.StringVar(&c.quantity, "q", "", "Number of units")
	f.StringVar(&c.price, "p", "", "Price per unit")
	f.StringVar(&c.currency, "c", "TRY", "Currency of the price")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
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

	var record varlik.TransactionRecord
	switch varlik.Kind(c.kind) {
	case varlik.KindBuy:
		record = varlik.NewBuyRecord(c.id, key, on, quantity, price)
	case varlik.KindSell:
		// realized PnL is display data; the rebuild only needs quantity
		// and price, so an edited sell leaves it empty.
		record = varlik.NewSellRecord(c.id, key, on, quantity, price, varlik.Money{})
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown kind %q\n", c.kind)
		return subcommands.ExitUsageError
	}

	service, closer, err := openService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	position, err := service.EditTransaction(ctx, record)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if position == nil {
		fmt.Printf("Edited %s; position %s is now closed.\n", c.id, key)
	} else {
		fmt.Printf("Edited %s; position %s rebuilt to %s units at %s average cost.\n",
			c.id, key, position.Quantity, position.AverageCost)
	}
	return subcommands.ExitSuccess
}

// --- Delete Command ---

type deleteCmd struct {
	keyFlags
	id string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a transaction and rebuild its position" }
func (*deleteCmd) Usage() string {
	return `delete -id <id> -class <class> -symbol <symbol> -platform <platform>

  Removes a transaction from the log and replays the rest. Deleting the sell
  that had closed a position re-opens it with the replayed quantity.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	c.keyFlags.register(f)
	f.StringVar(&c.id, "id", "", "Id of the transaction to delete")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	key, err := c.key()
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

	position, err := service.DeleteTransaction(ctx, key, c.id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if position == nil {
		fmt.Printf("Deleted %s; position %s is now closed.\n", c.id, key)
	} else {
		fmt.Printf("Deleted %s; position %s rebuilt to %s units at %s average cost.\n",
			c.id, key, position.Quantity, position.AverageCost)
	}
	return subcommands.ExitSuccess
}
