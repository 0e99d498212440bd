package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBoard() *Board {
	return &Board{
		RoundID:   7,
		StartSlot: 250_000_000,
		EndSlot:   250_000_900,
	}
}

func sampleRound() *Round {
	r := &Round{
		ID:              7,
		ClaimExpirySlot: 250_100_000,
		Jackpot:         5_000_000_000,
		TopPlayerReward: 1_250_000_000,
		TotalReserved:   750_000_000,
		TotalPaidOut:    2_000_000_000,
	}
	for i := range r.CellDeposits {
		r.CellDeposits[i] = uint64(i) * 100_000_000
		r.CellPlayers[i] = uint64(i % 5)
	}
	var total uint64
	for _, d := range r.CellDeposits {
		total += d
	}
	r.TotalDeposited = total

	for i := range r.EndHash {
		r.EndHash[i] = byte(i)
	}
	for i := range r.RentCollector {
		r.RentCollector[i] = byte(0xA0 + i%16)
	}
	for i := range r.TopPlayer {
		r.TopPlayer[i] = byte(0x30 + i%16)
	}
	return r
}

func TestAccountLengths(t *testing.T) {
	assert.Equal(t, 32, BoardAccountLength)
	assert.Len(t, sampleBoard().Marshal(), BoardAccountLength)
	assert.Len(t, sampleRound().Marshal(), RoundAccountLength)
}

func TestDecodeBoard_RoundTrip(t *testing.T) {
	want := sampleBoard()

	got, err := DecodeBoard(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeRound_RoundTrip(t *testing.T) {
	want := sampleRound()

	got, err := DecodeRound(want.Marshal())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeBoard_Empty(t *testing.T) {
	b, err := DecodeBoard(nil)
	assert.ErrorIs(t, err, ErrEmptyAccount)
	assert.Nil(t, b)

	b, err = DecodeBoard([]byte{})
	assert.ErrorIs(t, err, ErrEmptyAccount)
	assert.Nil(t, b)
}

func TestDecodeRound_Empty(t *testing.T) {
	r, err := DecodeRound([]byte{})
	assert.ErrorIs(t, err, ErrEmptyAccount)
	assert.Nil(t, r)
}

func TestDecodeBoard_TooShort(t *testing.T) {
	full := sampleBoard().Marshal()

	// Every truncation strictly between empty and full must fail with
	// ErrTooShort and never panic.
	for n := 1; n < len(full); n++ {
		b, err := DecodeBoard(full[:n])
		assert.ErrorIs(t, err, ErrTooShort, "length %d", n)
		assert.Nil(t, b)
	}
}

func TestDecodeRound_TooShort(t *testing.T) {
	full := sampleRound().Marshal()

	for _, n := range []int{1, 7, DiscriminatorLength, DiscriminatorLength + 7, 100, 300, len(full) - 1} {
		r, err := DecodeRound(full[:n])
		assert.ErrorIs(t, err, ErrTooShort, "length %d", n)
		assert.Nil(t, r)
	}
}

func TestDecode_BadDiscriminator(t *testing.T) {
	// A board-shaped buffer fetched at a round address must be rejected.
	r, err := DecodeRound(sampleBoard().Marshal())
	assert.ErrorIs(t, err, ErrBadDiscriminator)
	assert.Nil(t, r)

	b, err := DecodeBoard(sampleRound().Marshal())
	assert.ErrorIs(t, err, ErrBadDiscriminator)
	assert.Nil(t, b)

	garbage := make([]byte, RoundAccountLength)
	_, err = DecodeRound(garbage)
	assert.ErrorIs(t, err, ErrBadDiscriminator)
}

func TestDecodeBoard_TrailingBytesTolerated(t *testing.T) {
	// Accounts may carry reserved space past the declared fields.
	raw := append(sampleBoard().Marshal(), make([]byte, 64)...)

	got, err := DecodeBoard(raw)
	require.NoError(t, err)
	assert.Equal(t, sampleBoard(), got)
}

func TestCheckTotals(t *testing.T) {
	r := sampleRound()
	require.NoError(t, r.CheckTotals())

	r.TotalDeposited++
	err := r.CheckTotals()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total deposited")
}

func TestPubkeyFromBase58(t *testing.T) {
	pk := Pubkey{1, 2, 3}
	parsed, err := PubkeyFromBase58(pk.String())
	require.NoError(t, err)
	assert.Equal(t, pk, parsed)

	_, err = PubkeyFromBase58("tooshort")
	assert.Error(t, err)

	_, err = PubkeyFromBase58("not!base58")
	assert.Error(t, err)
}
