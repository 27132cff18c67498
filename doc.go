// Package varlik implements the cost-basis ledger and performance analytics
// of a personal asset-tracking application.
//
// The core functionalities include:
//   - Position Ledger: consolidating buy events into a single
//     weighted-average-cost position per (asset class, symbol, platform) key
//     and settling sell events against it.
//   - History Replay: rebuilding a position deterministically from its
//     ordered transaction log, so that editing or deleting history never
//     leaves a stale materialized state behind. The log is the source of
//     truth; a Position is a derivable view over it.
//   - Performance Analytics: money-weighted return (XIRR) over dated cash
//     flows, simple period returns, and a monthly net-flow attribution that
//     separates market movement from cash inflow and outflow.
//
// All quantities, prices and amounts use exact decimal arithmetic. Values
// are rounded (half-even) only when formatted or serialized, never inside a
// cost-basis computation.
//
// This package serves as the foundational logic for the `vtp` command-line
// tool and for any service embedding the ledger.
package varlik
