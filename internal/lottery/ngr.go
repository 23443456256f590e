package lottery

import (
	"errors"
	"fmt"

	"drawstats/internal/domain"
)

// NGR reconciliation needs two resolved adjacent snapshots; anything less
// is this error, never a guess.
var ErrMissingDrawData = errors.New("missing draw data")

// Reconcile computes the net gaming revenue the current draw added on top
// of the previous draw's rollover:
//
//	ngr = cur.pool - (prev.pool - prev.payouts)
//
// Pure function. A negative result signals extraction noise (a partially
// captured rollover larger than the new pool); it is reported raw with
// Suspect set, deliberately not clamped.
func Reconcile(prev, cur *domain.DrawSnapshot) (domain.NGRResult, error) {
	if cur == nil || cur.Empty() {
		return domain.NGRResult{}, fmt.Errorf("%w: current draw unresolved", ErrMissingDrawData)
	}
	if prev == nil || prev.Empty() {
		return domain.NGRResult{}, fmt.Errorf("%w: draw %d unresolved", ErrMissingDrawData, cur.DrawNumber-1)
	}
	if prev.DrawNumber != cur.DrawNumber-1 {
		return domain.NGRResult{}, fmt.Errorf("%w: draws %d and %d are not adjacent", ErrMissingDrawData, prev.DrawNumber, cur.DrawNumber)
	}

	rollover := prev.TotalPrizePool.Sub(prev.TotalPayouts)
	ngr := cur.TotalPrizePool.Sub(rollover)

	return domain.NGRResult{
		DrawNumber:       cur.DrawNumber,
		Success:          true,
		NGRAdded:         ngr,
		PreviousRollover: rollover,
		Formula: fmt.Sprintf("%s - (%s - %s) = %s",
			cur.TotalPrizePool, prev.TotalPrizePool, prev.TotalPayouts, ngr),
		Suspect: ngr.IsNegative(),
	}, nil
}
