package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// DiscriminatorLength is the fixed account tag length.
const DiscriminatorLength = 8

// Body lengths per account kind, excluding the discriminator.
// All integers are little-endian, packed with no padding.
const (
	BoardBodyLength = 3 * 8
	RoundBodyLength = 8 + GridCells*8 + 32 + GridCells*8 + 8 + 8 + 32 + 32 + 8 + 8 + 8 + 8

	BoardAccountLength = DiscriminatorLength + BoardBodyLength
	RoundAccountLength = DiscriminatorLength + RoundBodyLength
)

// Account discriminators: first 8 bytes of sha256("account:<Name>").
var (
	BoardDiscriminator = discriminator("Board")
	RoundDiscriminator = discriminator("Round")
)

func discriminator(name string) [DiscriminatorLength]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [DiscriminatorLength]byte
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

var (
	// ErrEmptyAccount means the account has no data at all: the record does
	// not exist. Distinct from a record with the wrong length.
	ErrEmptyAccount = errors.New("account data is empty")

	// ErrTooShort means the data ran out before a declared field.
	ErrTooShort = errors.New("account data too short")

	// ErrBadDiscriminator means the leading tag does not match the expected
	// account kind.
	ErrBadDiscriminator = errors.New("unexpected account discriminator")
)

// reader walks a fixed-layout buffer, failing with ErrTooShort before any
// out-of-bounds read.
type reader struct {
	buf []byte
	off int
}

func (r *reader) u64() (uint64, error) {
	if len(r.buf)-r.off < 8 {
		return 0, fmt.Errorf("%w: need 8 bytes at offset %d, %d remain", ErrTooShort, r.off, len(r.buf)-r.off)
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) block32() ([32]byte, error) {
	var b [32]byte
	if len(r.buf)-r.off < 32 {
		return b, fmt.Errorf("%w: need 32 bytes at offset %d, %d remain", ErrTooShort, r.off, len(r.buf)-r.off)
	}
	copy(b[:], r.buf[r.off:])
	r.off += 32
	return b, nil
}

func (r *reader) u64Array(out []uint64) error {
	for i := range out {
		v, err := r.u64()
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

// checkHeader validates length and the leading discriminator, returning a
// reader positioned at the start of the body.
func checkHeader(raw []byte, want [DiscriminatorLength]byte) (*reader, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyAccount
	}
	if len(raw) < DiscriminatorLength {
		return nil, fmt.Errorf("%w: %d bytes, need %d for discriminator", ErrTooShort, len(raw), DiscriminatorLength)
	}
	if !bytes.Equal(raw[:DiscriminatorLength], want[:]) {
		return nil, fmt.Errorf("%w: got %x, want %x", ErrBadDiscriminator, raw[:DiscriminatorLength], want[:])
	}
	return &reader{buf: raw, off: DiscriminatorLength}, nil
}

// DecodeBoard decodes a board account. All-or-nothing: on any error the
// returned Board is nil.
func DecodeBoard(raw []byte) (*Board, error) {
	r, err := checkHeader(raw, BoardDiscriminator)
	if err != nil {
		return nil, err
	}

	var b Board
	if b.RoundID, err = r.u64(); err != nil {
		return nil, err
	}
	if b.StartSlot, err = r.u64(); err != nil {
		return nil, err
	}
	if b.EndSlot, err = r.u64(); err != nil {
		return nil, err
	}
	return &b, nil
}

// DecodeRound decodes a round account. Fields are read strictly in layout
// order; no partial record is ever returned.
func DecodeRound(raw []byte) (*Round, error) {
	r, err := checkHeader(raw, RoundDiscriminator)
	if err != nil {
		return nil, err
	}

	var rd Round
	if rd.ID, err = r.u64(); err != nil {
		return nil, err
	}
	if err = r.u64Array(rd.CellDeposits[:]); err != nil {
		return nil, err
	}
	var block [32]byte
	if block, err = r.block32(); err != nil {
		return nil, err
	}
	rd.EndHash = Hash(block)
	if err = r.u64Array(rd.CellPlayers[:]); err != nil {
		return nil, err
	}
	if rd.ClaimExpirySlot, err = r.u64(); err != nil {
		return nil, err
	}
	if rd.Jackpot, err = r.u64(); err != nil {
		return nil, err
	}
	if block, err = r.block32(); err != nil {
		return nil, err
	}
	rd.RentCollector = Pubkey(block)
	if block, err = r.block32(); err != nil {
		return nil, err
	}
	rd.TopPlayer = Pubkey(block)
	if rd.TopPlayerReward, err = r.u64(); err != nil {
		return nil, err
	}
	if rd.TotalDeposited, err = r.u64(); err != nil {
		return nil, err
	}
	if rd.TotalReserved, err = r.u64(); err != nil {
		return nil, err
	}
	if rd.TotalPaidOut, err = r.u64(); err != nil {
		return nil, err
	}
	return &rd, nil
}
