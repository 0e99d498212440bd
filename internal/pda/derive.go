// Package pda computes program-derived addresses for the board program's
// accounts using the Solana derivation algorithm.
package pda

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
)

// Static bounds of the derivation scheme. Violating them is a
// misconfiguration, never a condition to retry.
const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

// pdaMarker terminates the derivation preimage.
var pdaMarker = []byte("ProgramDerivedAddress")

// DerivationError reports seed material that violates the scheme's static
// bounds, or seeds for which no off-curve address exists.
type DerivationError struct {
	Reason string
}

func (e *DerivationError) Error() string {
	return "derive address: " + e.Reason
}

// Derive computes the program-derived address for the given seeds.
// It searches bump 255 down to 1 for the first
// sha256(seeds || bump || programID || "ProgramDerivedAddress") digest that
// is not a valid curve point, matching the on-chain runtime byte for byte.
// Pure and deterministic: identical inputs always yield the same address.
func Derive(seeds [][]byte, programID game.Pubkey) (game.Pubkey, uint8, error) {
	if len(seeds) > MaxSeeds {
		return game.Pubkey{}, 0, &DerivationError{fmt.Sprintf("%d seeds exceeds maximum of %d", len(seeds), MaxSeeds)}
	}
	size := 0
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return game.Pubkey{}, 0, &DerivationError{fmt.Sprintf("seed %d is %d bytes, maximum is %d", i, len(seed), MaxSeedLength)}
		}
		size += len(seed)
	}

	buf := make([]byte, 0, size+1+32+len(pdaMarker))
	for bump := byte(255); bump > 0; bump-- {
		buf = buf[:0]
		for _, seed := range seeds {
			buf = append(buf, seed...)
		}
		buf = append(buf, bump)
		buf = append(buf, programID[:]...)
		buf = append(buf, pdaMarker...)

		hash := sha256.Sum256(buf)
		if !isOnCurve(hash[:]) {
			return game.Pubkey(hash), bump, nil
		}
	}

	return game.Pubkey{}, 0, &DerivationError{"no off-curve address for seeds"}
}

// isOnCurve reports whether point decodes as a valid ed25519 curve point.
// Derived addresses must be off the curve so no private key can exist.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
