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

type positionsCmd struct {
	class    string
	platform string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the open positions" }
func (*positionsCmd) Usage() string {
	return `positions [-class <class>] [-platform <platform>]

  Displays the open positions with their quantity, average cost and cost
  basis, optionally narrowed to one asset class or platform.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.class, "class", "", "Only this asset class")
	f.StringVar(&c.platform, "platform", "", "Only this platform")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, closer, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	positions, err := s.ListPositions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.class != "" || c.platform != "" {
		filtered := positions[:0]
		for _, p := range positions {
			if c.class != "" && string(p.Key.Class) != c.class {
				continue
			}
			if c.platform != "" && p.Key.Platform != c.platform {
				continue
			}
			filtered = append(filtered, p)
		}
		positions = filtered
	}

	var b strings.Builder
	renderer.RenderPositions(&b, positions, varlik.Today())
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
