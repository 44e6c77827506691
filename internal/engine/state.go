package engine

import (
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/rules"
)

type Phase string

const (
	PhaseWaiting     Phase = "WAITING"
	PhaseBidding     Phase = "BIDDING"
	PhasePlaying     Phase = "PLAYING"
	PhaseHandScoring Phase = "HAND_SCORING"
	PhaseFinished    Phase = "FINISHED"
)

type Mode string

const (
	Partners Mode = "PARTNERS"
	Solo     Mode = "SOLO"
)

// SeatState is the closed occupancy variant for one seat.
type SeatState string

const (
	SeatEmpty SeatState = "EMPTY"
	SeatHuman SeatState = "HUMAN"
	SeatBot   SeatState = "BOT"
)

// Seat is one of the four fixed table positions.
type Seat struct {
	State     SeatState    `json:"state"`
	UserID    string       `json:"userId,omitempty"`
	Name      string       `json:"name,omitempty"`
	Hand      []cards.Card `json:"hand"`
	Bid       *int         `json:"bid"`
	BlindNil  bool         `json:"blindNil"`
	Tricks    int          `json:"tricks"`
	Connected bool         `json:"connected"`
	// SeenHand flips when the seat first looks at its cards; blind nil is
	// only accepted while it is false.
	SeenHand bool `json:"seenHand"`
	// Timeouts counts consecutive expired turns, reset on any real action.
	Timeouts int `json:"timeouts"`
}

func (s *Seat) Filled() bool { return s.State != SeatEmpty }

type Play struct {
	Seat int        `json:"seat"`
	Card cards.Card `json:"card"`
}

// Trick holds up to four plays in play order. Winner is -1 until resolved.
type Trick struct {
	Number int    `json:"number"`
	Lead   int    `json:"lead"`
	Plays  []Play `json:"plays"`
	Winner int    `json:"winner"`
}

func (t *Trick) Complete() bool { return len(t.Plays) == 4 }

func (t *Trick) LeadSuit() *cards.Suit {
	if len(t.Plays) == 0 {
		return nil
	}
	s := t.Plays[0].Card.Suit
	return &s
}

// SideScore is the running total for one side (a team in partners mode, a
// single seat in solo).
type SideScore struct {
	Points int `json:"points"`
	Bags   int `json:"bags"`
}

// Game is the full state of one table. It is only ever mutated through
// Apply, and only from the table actor's goroutine.
type Game struct {
	ID        string        `json:"id"`
	Format    rules.Format  `json:"format"`
	Special   rules.Special `json:"special"`
	Mode      Mode          `json:"mode"`
	MinPoints int           `json:"minPoints"`
	MaxPoints int           `json:"maxPoints"`

	Phase   Phase `json:"phase"`
	Dealer  int   `json:"dealer"`
	Current int   `json:"current"`
	Round   int   `json:"round"`

	Seats        [4]Seat     `json:"seats"`
	Trick        Trick       `json:"trick"`
	PastTricks   []Trick     `json:"pastTricks"`
	SpadesBroken bool        `json:"spadesBroken"`
	Scores       []SideScore `json:"scores"`
}

// NewGame returns a table in the waiting phase. Dealer starts at -1 so the
// first deal rotates it to seat 0.
func NewGame(id string, format rules.Format, special rules.Special, mode Mode, minPoints, maxPoints int) *Game {
	g := &Game{
		ID:        id,
		Format:    format,
		Special:   special,
		Mode:      mode,
		MinPoints: minPoints,
		MaxPoints: maxPoints,
		Phase:     PhaseWaiting,
		Dealer:    -1,
		Current:   -1,
	}
	if mode == Solo {
		g.Scores = make([]SideScore, 4)
	} else {
		g.Scores = make([]SideScore, 2)
	}
	return g
}

// Sides returns the number of scoring sides (2 in partners, 4 in solo).
func (g *Game) Sides() int { return len(g.Scores) }

// SideOf maps a seat index to its scoring side. Partners pair {0,2} against
// {1,3}; solo scores every seat on its own.
func (g *Game) SideOf(seat int) int {
	if g.Mode == Solo {
		return seat
	}
	return seat % 2
}

// Partner returns the partner seat in partners mode, or -1 in solo.
func (g *Game) Partner(seat int) int {
	if g.Mode == Solo {
		return -1
	}
	return (seat + 2) % 4
}

func nextSeat(seat int) int { return (seat + 1) % 4 }

// BidContext assembles the rule-engine context for a seat's bid.
func (g *Game) BidContext(seat int) rules.BidContext {
	ctx := rules.BidContext{SeenHand: g.Seats[seat].SeenHand}
	if p := g.Partner(seat); p >= 0 {
		ctx.PartnerBid = g.Seats[p].Bid
	}
	return ctx
}

// TrickView assembles the rule-engine view of the current trick.
func (g *Game) TrickView() rules.TrickView {
	return rules.TrickView{LeadSuit: g.Trick.LeadSuit(), SpadesBroken: g.SpadesBroken}
}
