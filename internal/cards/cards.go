package cards

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadCard = errors.New("unrecognized card")

type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

func (s Suit) String() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	}
	return "?"
}

type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	}
	return "?"
}

// Card is an immutable suit+rank value. The wire/storage form is a short
// code like "AS" or "10H" (rank then suit letter).
type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) String() string { return c.Rank.String() + c.Suit.String() }

// Parse decodes a card code produced by String.
func Parse(code string) (Card, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 2 {
		return Card{}, ErrBadCard
	}
	suitCh := code[len(code)-1]
	rankStr := code[:len(code)-1]

	var suit Suit
	switch suitCh {
	case 'S':
		suit = Spades
	case 'H':
		suit = Hearts
	case 'D':
		suit = Diamonds
	case 'C':
		suit = Clubs
	default:
		return Card{}, ErrBadCard
	}

	var rank Rank
	switch rankStr {
	case "2", "3", "4", "5", "6", "7", "8", "9", "10":
		n := 0
		fmt.Sscanf(rankStr, "%d", &n)
		rank = Rank(n)
	case "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, ErrBadCard
	}
	return Card{Suit: suit, Rank: rank}, nil
}

func (c Card) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Card) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Beats reports whether c wins over other, given the suit that was led.
// Spades are always trump.
func (c Card) Beats(other Card, lead Suit) bool {
	if c.Suit == Spades && other.Suit != Spades {
		return true
	}
	if other.Suit == Spades && c.Suit != Spades {
		return false
	}
	if c.Suit == other.Suit {
		return c.Rank > other.Rank
	}
	// Different non-trump suits: only the lead suit can win.
	return c.Suit == lead && other.Suit != lead
}

// CountSuit returns how many cards of suit s are in hand.
func CountSuit(hand []Card, s Suit) int {
	n := 0
	for _, c := range hand {
		if c.Suit == s {
			n++
		}
	}
	return n
}

// CountRank returns how many cards of rank r are in hand.
func CountRank(hand []Card, r Rank) int {
	n := 0
	for _, c := range hand {
		if c.Rank == r {
			n++
		}
	}
	return n
}

// Contains reports whether hand holds the exact card.
func Contains(hand []Card, c Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}

// Remove returns hand without the first occurrence of c, and whether it was found.
func Remove(hand []Card, c Card) ([]Card, bool) {
	for i, h := range hand {
		if h == c {
			out := make([]Card, 0, len(hand)-1)
			out = append(out, hand[:i]...)
			out = append(out, hand[i+1:]...)
			return out, true
		}
	}
	return hand, false
}
