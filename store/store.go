package store

import (
	"fmt"
	"sort"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
)

// NotFoundError reports a transaction id that is not in the log.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %q not found", e.ID)
}

// sortPositions orders positions by key so listings are stable across
// backends.
func sortPositions(positions []varlik.Position) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Key.String() < positions[j].Key.String()
	})
}
