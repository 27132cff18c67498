package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
	"github.com/shopspring/decimal"
)

// printMarkdown renders markdown to the terminal. When rendering fails (no
// TTY, unknown style) the raw markdown is printed instead.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// keyFlags is the common -class, -symbol and -platform triple identifying
// one position.
type keyFlags struct {
	class    string
	symbol   string
	platform string
}

func (k *keyFlags) register(f *flag.FlagSet) {
	f.StringVar(&k.class, "class", "", "Asset class (fund, stock, crypto, currency, metal)")
	f.StringVar(&k.symbol, "symbol", "", "Asset symbol (e.g. THYAO, BTC)")
	f.StringVar(&k.platform, "platform", "", "Platform holding the asset (e.g. midas, binance)")
}

func (k *keyFlags) key() (varlik.PositionKey, error) {
	class, err := varlik.ParseAssetClass(k.class)
	if err != nil {
		return varlik.PositionKey{}, err
	}
	key := varlik.PositionKey{Class: class, Symbol: k.symbol, Platform: k.platform}
	if err := key.Validate(); err != nil {
		return varlik.PositionKey{}, err
	}
	return key, nil
}

// parseQuantity parses a decimal quantity string, exact to the last digit.
func parseQuantity(s string) (varlik.Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return varlik.Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return varlik.Q(d), nil
}

// parseMoney parses a decimal amount string in the given currency.
func parseMoney(s, currency string) (varlik.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return varlik.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return varlik.M(d, currency), nil
}
