// Package types holds the wire messages exchanged with clients. The engine
// state never crosses the socket directly; only sanitized views do.
package types

import (
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
)

// ClientMessage is a command from a connected client.
//
//	join_seat:      seat (optional, -1 = first empty), name
//	add_bot:        seat (optional)
//	remove_bot:     seat
//	fill_with_bots: {}
//	start_game:     {}
//	reveal_hand:    {}
//	make_bid:       bid, blind
//	play_card:      card ("QS", "10H", ...)
type ClientMessage struct {
	Type  string `json:"type"`
	Seat  *int   `json:"seat,omitempty"`
	Name  string `json:"name,omitempty"`
	Bid   int    `json:"bid,omitempty"`
	Blind bool   `json:"blind,omitempty"`
	Card  string `json:"card,omitempty"`
}

// ServerMessage is one event or state frame sent to a client.
type ServerMessage struct {
	Type    string           `json:"type"`
	Version int              `json:"version,omitempty"`
	View    *engine.GameView `json:"view,omitempty"`

	Seat  int    `json:"seat,omitempty"`
	Bid   int    `json:"bid,omitempty"`
	Blind bool   `json:"blind,omitempty"`
	Card  string `json:"card,omitempty"`

	Trick       *engine.Trick `json:"trick,omitempty"`
	WinningSeat int           `json:"winningSeat,omitempty"`

	Deltas []int `json:"deltas,omitempty"`
	Totals []int `json:"totals,omitempty"`
	Bags   []int `json:"bags,omitempty"`

	WinningSide int    `json:"winningSide,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Server message type names.
const (
	MsgState          = "state"
	MsgBidMade        = "bid_made"
	MsgCardPlayed     = "card_played"
	MsgTrickCompleted = "trick_completed"
	MsgHandCompleted  = "hand_completed"
	MsgGameFinished   = "game_finished"
	MsgError          = "error"
)
