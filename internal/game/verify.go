package game

import "fmt"

// CheckTotals verifies that the per-cell deposits account for the round's
// recorded total. The on-chain program maintains this invariant; a
// discrepancy indicates a torn read or layout drift. Callers should surface
// the error but may still display the round.
func (r *Round) CheckTotals() error {
	var sum uint64
	for _, d := range r.CellDeposits {
		sum += d
	}
	if sum != r.TotalDeposited {
		return fmt.Errorf("round %d: cell deposits sum %d, total deposited %d", r.ID, sum, r.TotalDeposited)
	}
	return nil
}
