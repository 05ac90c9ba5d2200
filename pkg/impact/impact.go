// Package impact scores completed donations for donor recognition. The
// score is derived state: it is awarded inside the same transaction as
// the completion transition and reversed exactly on refund, so it can
// never drift from the ledger.
package impact

import "github.com/impactlink/impactlink/pkg/money"

// Category multipliers in basis points (10000 = x1.0). Causes with higher
// urgency weight donations more heavily.
var categoryMultipliers = map[string]int64{
	"education":       12000,
	"healthcare":      13000,
	"environment":     12500,
	"poverty":         13000,
	"disaster-relief": 14000,
	"community":       11000,
}

const defaultMultiplier = 10000

// earlySupporterBps is the bonus for backing a project among its first
// donors, in basis points.
const earlySupporterBps = 12000

// earlySupporterLimit is how many donors count as early.
const earlySupporterLimit = 10

// Score computes the impact points for a completed donation. net is the
// donation's net amount in minor units; donorCountBefore is the target's
// donor count before this donation completed. One point corresponds to
// one major currency unit of net donation at x1.0 weight.
func Score(net money.Amount, category string, donorCountBefore int64) int64 {
	mult, ok := categoryMultipliers[category]
	if !ok {
		mult = defaultMultiplier
	}
	bonus := int64(10000)
	if donorCountBefore < earlySupporterLimit {
		bonus = earlySupporterBps
	}
	// net * mult * bonus / (10000 * 10000 * 100), rounded half up, with
	// a single rounding at the end.
	num := net * mult * bonus
	const div = 10000 * 10000 * 100
	return (num + div/2) / div
}
