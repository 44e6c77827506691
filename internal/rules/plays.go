package rules

import (
	"errors"
	"fmt"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
)

var ErrIllegalPlay = errors.New("illegal play")

// TrickView is the public trick state a play-legality predicate needs.
type TrickView struct {
	// LeadSuit is nil when the seat is leading the trick.
	LeadSuit *cards.Suit
	// SpadesBroken is true once any spade has been played this hand.
	SpadesBroken bool
}

// CheckPlay validates one card. A nil return means legal.
func CheckPlay(spec Special, hand []cards.Card, t TrickView, c cards.Card) error {
	if !cards.Contains(hand, c) {
		return fmt.Errorf("%w: %s is not in hand", ErrIllegalPlay, c)
	}
	for _, legal := range LegalPlays(spec, hand, t) {
		if legal == c {
			return nil
		}
	}
	if t.LeadSuit != nil && c.Suit != *t.LeadSuit && cards.CountSuit(hand, *t.LeadSuit) > 0 {
		return fmt.Errorf("%w: must follow %s", ErrIllegalPlay, t.LeadSuit)
	}
	if c.Suit == cards.Spades {
		return fmt.Errorf("%w: cannot play a spade here", ErrIllegalPlay)
	}
	return fmt.Errorf("%w: %s", ErrIllegalPlay, c)
}

// LegalPlays returns the full legal candidate set for the seat, base
// suit-following rules first, then the Screamer/Assassin overlays. The
// result is never empty for a non-empty hand.
func LegalPlays(spec Special, hand []cards.Card, t TrickView) []cards.Card {
	candidates := basePlays(hand, t)

	if spec.Assassin {
		// Forced to play a spade whenever one is legal.
		if spadesOnly := filterSuit(candidates, cards.Spades, true); len(spadesOnly) > 0 {
			candidates = spadesOnly
		}
	}
	if spec.Screamer {
		// Spades only when following a spade lead or void in everything else.
		followingSpades := t.LeadSuit != nil && *t.LeadSuit == cards.Spades
		if !followingSpades {
			if offSuit := filterSuit(candidates, cards.Spades, false); len(offSuit) > 0 {
				candidates = offSuit
			}
		}
	}
	return candidates
}

func basePlays(hand []cards.Card, t TrickView) []cards.Card {
	if t.LeadSuit == nil {
		// Leading: spades stay in the hand until broken, unless that is all
		// the leader holds.
		if !t.SpadesBroken {
			if offSuit := filterSuit(hand, cards.Spades, false); len(offSuit) > 0 {
				return offSuit
			}
		}
		return append([]cards.Card(nil), hand...)
	}
	if follow := filterSuit(hand, *t.LeadSuit, true); len(follow) > 0 {
		return follow
	}
	return append([]cards.Card(nil), hand...)
}

// filterSuit keeps cards of suit s when keep is true, or everything but s
// when keep is false.
func filterSuit(hand []cards.Card, s cards.Suit, keep bool) []cards.Card {
	var out []cards.Card
	for _, c := range hand {
		if (c.Suit == s) == keep {
			out = append(out, c)
		}
	}
	return out
}
