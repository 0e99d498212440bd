package pda

import (
	"encoding/binary"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
)

// Seed labels fixed by the on-chain program.
const (
	boardSeed = "board"
	roundSeed = "round"
)

// BoardAddress derives the global board account address.
func BoardAddress(programID game.Pubkey) (game.Pubkey, error) {
	addr, _, err := Derive([][]byte{[]byte(boardSeed)}, programID)
	return addr, err
}

// RoundAddress derives the account address for one round. The round id is
// serialized as exactly 8 little-endian bytes; the program indexes round
// accounts by this encoding, so the byte order is part of the contract.
func RoundAddress(programID game.Pubkey, roundID uint64) (game.Pubkey, error) {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], roundID)
	addr, _, err := Derive([][]byte{[]byte(roundSeed), key[:]}, programID)
	return addr, err
}
