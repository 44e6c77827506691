package rules

import (
	"errors"
	"fmt"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
)

var (
	ErrIllegalBid = errors.New("illegal bid")
	ErrBlindBid   = errors.New("illegal blind bid")
)

// BidContext is the public state a bid-legality predicate needs beyond the
// bidder's own hand.
type BidContext struct {
	// PartnerBid is nil until the bidder's partner has bid. In solo mode it
	// stays nil for the whole auction.
	PartnerBid *int
	// SeenHand is true once the seat has looked at its cards; blind nil is
	// only accepted while it is false.
	SeenHand bool
}

// CheckBid validates one bid under the format. A nil return means legal; a
// non-nil error wraps ErrIllegalBid/ErrBlindBid with a readable reason.
func CheckBid(f Format, hand []cards.Card, ctx BidContext, bid int, blind bool) error {
	if bid < 0 || bid > 13 {
		return fmt.Errorf("%w: %d is outside 0-13", ErrIllegalBid, bid)
	}
	if blind {
		if f.Kind != Regular || !f.AllowBlindNil {
			return fmt.Errorf("%w: blind nil is not allowed in this game", ErrBlindBid)
		}
		if bid != 0 {
			return fmt.Errorf("%w: a blind bid must be nil", ErrBlindBid)
		}
		if ctx.SeenHand {
			return fmt.Errorf("%w: hand already seen", ErrBlindBid)
		}
		return nil
	}

	legal := LegalBids(f, hand, ctx)
	for _, b := range legal {
		if b == bid {
			return nil
		}
	}
	return fmt.Errorf("%w: %d is not a legal %s bid", ErrIllegalBid, bid, f)
}

// LegalBids returns every legal (non-blind) bid value for the seat, lowest
// first. The set is never empty.
func LegalBids(f Format, hand []cards.Card, ctx BidContext) []int {
	spadeCount := cards.CountSuit(hand, cards.Spades)

	switch f.Kind {
	case Regular:
		lo := 1
		if f.AllowNil {
			lo = 0
		}
		out := make([]int, 0, 14)
		for b := lo; b <= 13; b++ {
			out = append(out, b)
		}
		return out

	case Whiz:
		if spadeCount == 0 {
			return []int{0}
		}
		return []int{0, spadeCount}

	case Mirror:
		return []int{spadeCount}

	case Gimmick:
		switch f.Gimmick {
		case Suicide:
			if ctx.PartnerBid == nil {
				// First partner to bid is unconstrained.
				out := make([]int, 0, 14)
				for b := 0; b <= 13; b++ {
					out = append(out, b)
				}
				return out
			}
			if *ctx.PartnerBid == 0 {
				// Partner took the nil; this seat is forced away from it.
				out := make([]int, 0, 13)
				for b := 1; b <= 13; b++ {
					out = append(out, b)
				}
				return out
			}
			return []int{0}
		case Bid4OrNil:
			return []int{0, 4}
		case Bid3:
			return []int{3}
		case BidHearts:
			return []int{cards.CountSuit(hand, cards.Hearts)}
		case CrazyAces:
			return []int{3 * cards.CountRank(hand, cards.Ace)}
		}
	}
	// Unreachable for a well-formed Format.
	return []int{0}
}
