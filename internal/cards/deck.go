package cards

import "math/rand"

// NewDeck returns all 52 cards in a fixed order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range []Suit{Spades, Hearts, Diamonds, Clubs} {
		for r := Two; r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Deal shuffles a fresh deck and splits it into four 13-card hands.
// This is the only point where cards move from the deck into hands.
func Deal(rng *rand.Rand) [4][]Card {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	var hands [4][]Card
	for seat := 0; seat < 4; seat++ {
		hands[seat] = make([]Card, 13)
		copy(hands[seat], deck[seat*13:(seat+1)*13])
	}
	return hands
}
