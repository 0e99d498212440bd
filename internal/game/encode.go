package game

import "encoding/binary"

// writer builds a fixed-layout buffer. Counterpart of reader; used to
// produce byte-exact fixtures and stub accounts.
type writer struct {
	buf []byte
}

func (w *writer) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) block32(b [32]byte) {
	w.buf = append(w.buf, b[:]...)
}

// Marshal encodes the board with its discriminator. The result is exactly
// BoardAccountLength bytes and round-trips through DecodeBoard.
func (b *Board) Marshal() []byte {
	w := &writer{buf: make([]byte, 0, BoardAccountLength)}
	w.buf = append(w.buf, BoardDiscriminator[:]...)
	w.u64(b.RoundID)
	w.u64(b.StartSlot)
	w.u64(b.EndSlot)
	return w.buf
}

// Marshal encodes the round with its discriminator. The result is exactly
// RoundAccountLength bytes and round-trips through DecodeRound.
func (r *Round) Marshal() []byte {
	w := &writer{buf: make([]byte, 0, RoundAccountLength)}
	w.buf = append(w.buf, RoundDiscriminator[:]...)
	w.u64(r.ID)
	for _, d := range r.CellDeposits {
		w.u64(d)
	}
	w.block32(r.EndHash)
	for _, p := range r.CellPlayers {
		w.u64(p)
	}
	w.u64(r.ClaimExpirySlot)
	w.u64(r.Jackpot)
	w.block32(r.RentCollector)
	w.block32(r.TopPlayer)
	w.u64(r.TopPlayerReward)
	w.u64(r.TotalDeposited)
	w.u64(r.TotalReserved)
	w.u64(r.TotalPaidOut)
	return w.buf
}
