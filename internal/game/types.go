// Package game defines the on-chain account types for the grid game and
// their fixed-layout binary codecs.
package game

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// GridCells is the number of cells on the board (5x5 grid).
const GridCells = 25

// Pubkey is a 32-byte on-chain identity. It is an opaque value type,
// comparable with ==, never interpreted numerically.
type Pubkey [32]byte

// PubkeyFromBase58 parses a base58-encoded 32-byte public key.
func PubkeyFromBase58(s string) (Pubkey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("decode pubkey %q: %w", s, err)
	}
	if len(raw) != 32 {
		return Pubkey{}, fmt.Errorf("pubkey %q is %d bytes, expected 32", s, len(raw))
	}
	var pk Pubkey
	copy(pk[:], raw)
	return pk, nil
}

// String returns the base58 encoding of the key.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// IsZero reports whether the key is all zero bytes.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// Hash is a 32-byte opaque digest used for display and verification only.
type Hash [32]byte

// String returns the base58 encoding of the hash.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// Board is the global board account. It points at the currently active
// round and defines its validity window in slots.
type Board struct {
	RoundID   uint64 // monotonically non-decreasing across rounds
	StartSlot uint64
	EndSlot   uint64 // StartSlot < EndSlot for a well-formed board
}

// Round is the full state of one round, addressed by its id.
// It is replaced wholesale on each fetch while the round is open and
// becomes static once the board's RoundID advances past it.
type Round struct {
	ID              uint64
	CellDeposits    [GridCells]uint64 // lamports per cell
	EndHash         Hash
	CellPlayers     [GridCells]uint64 // participant counts, index-aligned with CellDeposits
	ClaimExpirySlot uint64            // claims are invalid after this slot
	Jackpot         uint64            // lamports
	RentCollector   Pubkey
	TopPlayer       Pubkey
	TopPlayerReward uint64
	TotalDeposited  uint64
	TotalReserved   uint64
	TotalPaidOut    uint64
}
