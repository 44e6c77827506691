package store

import (
	"encoding/json"
	"fmt"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
)

// Encode serializes a game for the journal.
func Encode(g *engine.Game) ([]byte, error) {
	return json.Marshal(g)
}

// Decode deserializes a journal blob back into a game.
func Decode(blob []byte) (*engine.Game, error) {
	var g engine.Game
	if err := json.Unmarshal(blob, &g); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &g, nil
}

// Repair fixes structural damage in a loaded snapshot so play can resume.
// Every fix is reported so the caller can log the recovered anomaly; a
// damaged snapshot is never silently accepted.
func Repair(g *engine.Game) []string {
	var fixes []string

	wantSides := 2
	if g.Mode == engine.Solo {
		wantSides = 4
	}
	if len(g.Scores) != wantSides {
		scores := make([]engine.SideScore, wantSides)
		copy(scores, g.Scores)
		g.Scores = scores
		fixes = append(fixes, "rebuilt score table")
	}

	if g.Dealer < 0 || g.Dealer > 3 {
		if g.Phase != engine.PhaseWaiting {
			g.Dealer = 0
			fixes = append(fixes, "reset dealer to seat 0")
		}
	}

	if len(g.Trick.Plays) > 4 {
		g.Trick.Plays = g.Trick.Plays[:4]
		fixes = append(fixes, "truncated oversized trick")
	}

	switch g.Phase {
	case engine.PhaseBidding:
		if g.Current < 0 || g.Current > 3 || g.Seats[g.Current].Bid != nil {
			g.Current = nextUnbidSeat(g)
			fixes = append(fixes, fmt.Sprintf("reset current bidder to seat %d", g.Current))
		}
	case engine.PhasePlaying:
		want := (g.Trick.Lead + len(g.Trick.Plays)) % 4
		if g.Current != want {
			g.Current = want
			fixes = append(fixes, fmt.Sprintf("reset current player to seat %d", want))
		}
	}

	// Humans are offline until they reattach; their turn timers take over.
	for i := range g.Seats {
		if g.Seats[i].State == engine.SeatHuman && g.Seats[i].Connected {
			g.Seats[i].Connected = false
		}
	}
	return fixes
}

// nextUnbidSeat walks the rotation from dealer+1 to the first seat still
// owing a bid.
func nextUnbidSeat(g *engine.Game) int {
	for off := 1; off <= 4; off++ {
		seat := (g.Dealer + off) % 4
		if g.Seats[seat].Bid == nil {
			return seat
		}
	}
	return (g.Dealer + 1) % 4
}
