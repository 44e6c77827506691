package cards

import (
	"math/rand"
	"testing"
)

func TestDealPartitionsDeck(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hands := Deal(rng)

	seen := map[Card]bool{}
	for seat := 0; seat < 4; seat++ {
		if len(hands[seat]) != 13 {
			t.Fatalf("seat %d: want 13 cards, got %d", seat, len(hands[seat]))
		}
		for _, c := range hands[seat] {
			if seen[c] {
				t.Fatalf("card %v dealt twice", c)
			}
			seen[c] = true
		}
	}
	if len(seen) != 52 {
		t.Fatalf("want 52 unique cards across hands, got %d", len(seen))
	}
}

func TestBeats(t *testing.T) {
	cases := []struct {
		name  string
		a, b  Card
		lead  Suit
		beats bool
	}{
		{"trump beats lead suit", Card{Spades, Two}, Card{Hearts, Ace}, Hearts, true},
		{"lead suit loses to trump", Card{Hearts, Ace}, Card{Spades, Two}, Hearts, false},
		{"higher trump wins", Card{Spades, King}, Card{Spades, Queen}, Diamonds, true},
		{"higher lead suit wins", Card{Clubs, Ten}, Card{Clubs, Nine}, Clubs, true},
		{"offsuit never beats lead", Card{Diamonds, Ace}, Card{Clubs, Two}, Clubs, false},
		{"lead beats offsuit", Card{Clubs, Two}, Card{Diamonds, Ace}, Clubs, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Beats(tc.b, tc.lead); got != tc.beats {
				t.Fatalf("Beats(%v, %v, lead=%v) = %v, want %v", tc.a, tc.b, tc.lead, got, tc.beats)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, c := range NewDeck() {
		parsed, err := Parse(c.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.String(), err)
		}
		if parsed != c {
			t.Fatalf("round trip %v -> %q -> %v", c, c.String(), parsed)
		}
	}
	if _, err := Parse("XX"); err == nil {
		t.Fatalf("expected error for bad code")
	}
}
