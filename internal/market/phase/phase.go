// Package phase classifies auctions into time-based phases shared by the
// query surface and any UI-facing affordance logic.
package phase

import "time"

// Phase is the time-based state of an auction relative to its end time.
type Phase string

const (
	// Open means bidding is still allowed.
	Open Phase = "open"
	// Reveal means the auction ended and sealed bids may be disclosed.
	Reveal Phase = "reveal"
	// FinalizePending means the reveal window closed and the auction awaits
	// finalization.
	FinalizePending Phase = "finalize"
)

// DefaultRevealWindow is the canonical interval after auction end during
// which sealed bids may be revealed.
const DefaultRevealWindow = time.Hour

// Classify maps an auction end time and the current time to exactly one
// phase. The boundaries are half-open so every instant belongs to a single
// phase: end of bidding is the first reveal second, end of the reveal window
// is the first finalize second.
func Classify(auctionEndTime int64, now time.Time, revealWindow time.Duration) Phase {
	ts := now.Unix()
	switch {
	case ts < auctionEndTime:
		return Open
	case ts < auctionEndTime+int64(revealWindow/time.Second):
		return Reveal
	default:
		return FinalizePending
	}
}

// TimeBounds translates a phase into the auction-end-time constraints a cache
// query applies. Open lists auctions still accepting bids, Reveal those inside
// the reveal window, FinalizePending those past it.
func TimeBounds(p Phase, now time.Time, revealWindow time.Duration) (after, before int64) {
	ts := now.Unix()
	window := int64(revealWindow / time.Second)
	switch p {
	case Reveal:
		return ts - window, ts
	case FinalizePending:
		return 0, ts - window
	default:
		return ts, 0
	}
}

// Parse maps a productStatus query value to a phase. Values other than
// "reveal" and "finalize" fall through to Open, matching the forgiving
// behavior of the original endpoint.
func Parse(value string) Phase {
	switch value {
	case string(Reveal):
		return Reveal
	case string(FinalizePending):
		return FinalizePending
	default:
		return Open
	}
}
