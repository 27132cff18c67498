// Package cmd implements the CLI application to manage the asset ledger.
package cmd

import (
	"flag"
	"fmt"

	"github.com/google/subcommands"
	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
	"github.com/gurbeyk/Varlik-takip-programi-sub000/store"
)

// Commands lists every subcommand of the application. A main package
// registers them and executes the user-selected one.
var Commands = []subcommands.Command{
	&buyCmd{},
	&sellCmd{},
	&txCmd{},
	&editCmd{},
	&deleteCmd{},
	&positionsCmd{},
	&monthlyCmd{},
	&performanceCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the transaction log (JSONL format)")
var dbFile = flag.String("db", "", "Path to a SQLite database; overrides -ledger-file when set")
var priceFile = flag.String("price-file", "prices.jsonl", "Path to the market price file (JSONL format)")

// openStore opens the configured persistence backend: the SQLite database
// when -db is set, the JSONL transaction log otherwise.
func openStore() (varlik.Store, func() error, error) {
	if *dbFile != "" {
		s, err := store.OpenSQLite(*dbFile)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open database: %w", err)
		}
		return s, s.Close, nil
	}
	s, err := store.OpenFile(*ledgerFile)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open ledger: %w", err)
	}
	return s, func() error { return nil }, nil
}

// openService opens the store and wraps it in the ledger service.
func openService() (*varlik.Service, func() error, error) {
	s, closer, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return varlik.NewService(s, nil), closer, nil
}

// openPrices loads the already-fetched market prices. A missing file is an
// empty source, never an error.
func openPrices() (varlik.PriceSource, error) {
	return store.OpenPriceFile(*priceFile)
}
