// Package bot picks legal bids and plays for automated seats. Every
// function is pure over the game state so decisions are reproducible in
// tests; the table actor owns scheduling and delays.
package bot

import (
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/rules"
)

// Bid returns the bot's bid for the seat. Bots never bid blind.
func Bid(g *engine.Game, seat int) int {
	hand := g.Seats[seat].Hand
	ctx := g.BidContext(seat)
	legal := rules.LegalBids(g.Format, hand, ctx)
	if len(legal) == 1 {
		return legal[0]
	}

	est := Estimate(hand)

	switch g.Format.Kind {
	case rules.Whiz:
		// {0, spadeCount}: take the nil only on a hand that can dodge tricks.
		if NilSafe(hand) {
			return 0
		}
		return legal[len(legal)-1]

	case rules.Gimmick:
		switch g.Format.Gimmick {
		case rules.Bid4OrNil:
			if NilSafe(hand) {
				return 0
			}
			return 4
		case rules.Suicide:
			// First partner: nil on a safe hand, otherwise pad the estimate
			// so the forced-nil partner has cover.
			if ctx.PartnerBid == nil {
				if NilSafe(hand) {
					return 0
				}
				return clampBid(est + 1)
			}
			// Second partner, forced away from nil.
			return clampBid(max(1, est))
		}

	case rules.Regular:
		if g.Format.AllowNil && NilSafe(hand) {
			return 0
		}
		return clampBid(max(1, est))
	}
	return pickLegal(legal, clampBid(max(1, est)))
}

// Play picks the bot's card for the current trick.
func Play(g *engine.Game, seat int) cards.Card {
	hand := g.Seats[seat].Hand
	legal := rules.LegalPlays(g.Special, hand, g.TrickView())

	if bid := g.Seats[seat].Bid; bid != nil && *bid == 0 {
		return duck(legal, g.Trick.Plays)
	}

	if partner := g.Partner(seat); partner >= 0 {
		pb := g.Seats[partner].Bid
		if pb != nil && *pb == 0 && g.Seats[partner].Tricks == 0 {
			return coverNil(legal, g.Trick.Plays, partner)
		}
	}

	return heuristic(g, seat, legal)
}

// duck keeps a nil intact: the highest card that does not take the trick,
// falling back to the lowest card.
func duck(legal []cards.Card, plays []engine.Play) cards.Card {
	if len(plays) == 0 {
		return lowest(legal)
	}
	winning := winningCard(plays)
	lead := plays[0].Card.Suit

	var best *cards.Card
	for i := range legal {
		c := legal[i]
		if c.Beats(winning, lead) {
			continue
		}
		if best == nil || c.Rank > best.Rank {
			best = &legal[i]
		}
	}
	if best != nil {
		return *best
	}
	return lowest(legal)
}

// coverNil protects a nil-bidding partner: play high before the partner's
// turn in the trick so they can slide under, low after.
func coverNil(legal []cards.Card, plays []engine.Play, partner int) cards.Card {
	for _, p := range plays {
		if p.Seat == partner {
			return lowest(legal)
		}
	}
	return highest(legal)
}

func heuristic(g *engine.Game, seat int, legal []cards.Card) cards.Card {
	needTricks := sideNeedsTricks(g, seat)

	if len(g.Trick.Plays) == 0 {
		if needTricks {
			return highest(legal)
		}
		return lowest(legal)
	}

	winning := winningCard(g.Trick.Plays)
	lead := g.Trick.Plays[0].Card.Suit

	if needTricks {
		// Cheapest card that takes the trick, if any.
		var cheapest *cards.Card
		for i := range legal {
			c := legal[i]
			if !c.Beats(winning, lead) {
				continue
			}
			if cheapest == nil || cheapWins(c, *cheapest) {
				cheapest = &legal[i]
			}
		}
		if cheapest != nil {
			return *cheapest
		}
	}
	return lowest(legal)
}

// cheapWins orders winning candidates: any non-spade before a spade, then
// lower rank first.
func cheapWins(a, b cards.Card) bool {
	aSpade := a.Suit == cards.Spades
	bSpade := b.Suit == cards.Spades
	if aSpade != bSpade {
		return !aSpade
	}
	return a.Rank < b.Rank
}

func sideNeedsTricks(g *engine.Game, seat int) bool {
	side := g.SideOf(seat)
	bid, tricks := 0, 0
	for i := range g.Seats {
		if g.SideOf(i) != side {
			continue
		}
		if b := g.Seats[i].Bid; b != nil && *b > 0 {
			bid += *b
			tricks += g.Seats[i].Tricks
		}
	}
	return tricks < bid
}

func winningCard(plays []engine.Play) cards.Card {
	lead := plays[0].Card.Suit
	best := plays[0].Card
	for _, p := range plays[1:] {
		if p.Card.Beats(best, lead) {
			best = p.Card
		}
	}
	return best
}

// Estimate is a deterministic trick-count heuristic: aces, protected kings,
// and spade length beyond three.
func Estimate(hand []cards.Card) int {
	est := 0
	for _, c := range hand {
		switch c.Rank {
		case cards.Ace:
			est++
		case cards.King:
			if cards.CountSuit(hand, c.Suit) >= 2 {
				est++
			}
		}
	}
	if spades := cards.CountSuit(hand, cards.Spades); spades > 3 {
		est += spades - 3
	}
	return est
}

// NilSafe reports whether a hand looks able to avoid every trick: no aces,
// short spades and little top-end weight.
func NilSafe(hand []cards.Card) bool {
	high := 0
	for _, c := range hand {
		if c.Rank == cards.Ace {
			return false
		}
		if c.Rank >= cards.Queen {
			high++
		}
		if c.Suit == cards.Spades && c.Rank >= cards.Jack {
			return false
		}
	}
	return high <= 2 && cards.CountSuit(hand, cards.Spades) <= 3
}

func lowest(set []cards.Card) cards.Card {
	out := set[0]
	for _, c := range set[1:] {
		if c.Rank < out.Rank {
			out = c
		}
	}
	return out
}

func highest(set []cards.Card) cards.Card {
	out := set[0]
	for _, c := range set[1:] {
		if c.Rank > out.Rank {
			out = c
		}
	}
	return out
}

func pickLegal(legal []int, want int) int {
	best := legal[0]
	for _, b := range legal {
		if abs(b-want) < abs(best-want) {
			best = b
		}
	}
	return best
}

func clampBid(b int) int {
	if b < 0 {
		return 0
	}
	if b > 13 {
		return 13
	}
	return b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
