// Package store abstracts the remote account store the watcher reads from.
package store

import (
	"context"
	"errors"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
)

// ErrNotFound is returned when no account exists at the address. It is
// terminal for the current poll; any other fetch error is transient and may
// succeed on a later attempt.
var ErrNotFound = errors.New("account not found")

// AccountStore fetches raw account data by derived address.
// An existing account with zero-length data returns an empty, non-nil slice.
type AccountStore interface {
	Fetch(ctx context.Context, addr game.Pubkey) ([]byte, error)
}
