package engine

import (
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/rules"
)

// SeatView is what one recipient may know about a seat. Only the
// recipient's own seat carries cards.
type SeatView struct {
	State     SeatState    `json:"state"`
	Name      string       `json:"name,omitempty"`
	Bid       *int         `json:"bid"`
	BlindNil  bool         `json:"blindNil"`
	Tricks    int          `json:"tricks"`
	Connected bool         `json:"connected"`
	HandCount int          `json:"handCount"`
	Hand      []cards.Card `json:"hand,omitempty"`
}

// GameView is the sanitized state broadcast to one seat or spectator.
type GameView struct {
	ID           string        `json:"id"`
	Format       rules.Format  `json:"format"`
	Special      rules.Special `json:"special"`
	Mode         Mode          `json:"mode"`
	MinPoints    int           `json:"minPoints"`
	MaxPoints    int           `json:"maxPoints"`
	Phase        Phase         `json:"phase"`
	Dealer       int           `json:"dealer"`
	Current      int           `json:"current"`
	Round        int           `json:"round"`
	YourSeat     int           `json:"yourSeat"`
	Seats        [4]SeatView   `json:"seats"`
	Trick        Trick         `json:"trick"`
	SpadesBroken bool          `json:"spadesBroken"`
	Scores       []SideScore   `json:"scores"`
}

// ViewFor builds the state view for one seat; pass -1 for a spectator. A
// seat that has not yet looked at its cards (the blind-nil window) sees only
// its hand count, like everyone else.
func (g *Game) ViewFor(seat int) GameView {
	v := GameView{
		ID:           g.ID,
		Format:       g.Format,
		Special:      g.Special,
		Mode:         g.Mode,
		MinPoints:    g.MinPoints,
		MaxPoints:    g.MaxPoints,
		Phase:        g.Phase,
		Dealer:       g.Dealer,
		Current:      g.Current,
		Round:        g.Round,
		YourSeat:     seat,
		Trick:        g.Trick,
		SpadesBroken: g.SpadesBroken,
		Scores:       append([]SideScore(nil), g.Scores...),
	}
	for i := range g.Seats {
		s := &g.Seats[i]
		v.Seats[i] = SeatView{
			State:     s.State,
			Name:      s.Name,
			Bid:       s.Bid,
			BlindNil:  s.BlindNil,
			Tricks:    s.Tricks,
			Connected: s.Connected,
			HandCount: len(s.Hand),
		}
		if i == seat && s.SeenHand {
			v.Seats[i].Hand = append([]cards.Card(nil), s.Hand...)
		}
	}
	return v
}
