package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/rules"
)

var (
	ErrWrongTurn          = errors.New("not your turn")
	ErrWrongPhase         = errors.New("wrong phase")
	ErrSeatOccupied       = errors.New("seat occupied")
	ErrSeatEmpty          = errors.New("seat empty")
	ErrSeatOutOfRange     = errors.New("seat index out of range")
	ErrNotReady           = errors.New("need 4 filled seats")
	ErrGameFinished       = errors.New("game already finished")
	ErrUnsupportedCommand = errors.New("unsupported command")
)

type CommandType string

const (
	CmdJoinSeat       CommandType = "JoinSeat"
	CmdLeaveSeat      CommandType = "LeaveSeat"
	CmdAddBot         CommandType = "AddBot"
	CmdRemoveBot      CommandType = "RemoveBot"
	CmdFillWithBots   CommandType = "FillWithBots"
	CmdStartGame      CommandType = "StartGame"
	CmdMakeBid        CommandType = "MakeBid"
	CmdPlayCard       CommandType = "PlayCard"
	CmdTimeoutAct     CommandType = "TimeoutAct"
	CmdReplaceWithBot CommandType = "ReplaceWithBot"
	CmdRevealHand     CommandType = "RevealHand"
)

type Command struct {
	Type   CommandType
	Seat   int // -1 on JoinSeat/AddBot means "first empty"
	UserID string
	Name   string
	Bid    int
	Blind  bool
	Card   cards.Card
}

type EventType string

const (
	EvtSeatJoined     EventType = "SeatJoined"
	EvtSeatLeft       EventType = "SeatLeft"
	EvtBotAdded       EventType = "BotAdded"
	EvtBotRemoved     EventType = "BotRemoved"
	EvtGameStarted    EventType = "GameStarted"
	EvtHandDealt      EventType = "HandDealt"
	EvtBidMade        EventType = "BidMade"
	EvtCardPlayed     EventType = "CardPlayed"
	EvtTrickCompleted EventType = "TrickCompleted"
	EvtHandCompleted  EventType = "HandCompleted"
	EvtGameFinished   EventType = "GameFinished"
)

type Event struct {
	Type  EventType
	Seat  int
	Bid   int
	Blind bool
	Card  cards.Card
	Trick Trick // copy, set on EvtTrickCompleted

	// Per-side numbers on EvtHandCompleted / EvtGameFinished.
	Deltas []int
	Totals []int
	Bags   []int

	// Winning side on EvtGameFinished.
	Side int
}

// Apply validates cmd against the current phase and the format rules,
// mutates the game, and returns the events the mutation produced. On error
// the game is unchanged. The rng is only touched when a hand is dealt.
func (g *Game) Apply(cmd Command, rng *rand.Rand) ([]Event, error) {
	if g.Phase == PhaseFinished && cmd.Type != CmdLeaveSeat {
		return nil, ErrGameFinished
	}

	switch cmd.Type {
	case CmdJoinSeat:
		return g.joinSeat(cmd)
	case CmdLeaveSeat:
		return g.leaveSeat(cmd)
	case CmdAddBot:
		return g.addBot(cmd.Seat)
	case CmdRemoveBot:
		return g.removeBot(cmd.Seat)
	case CmdFillWithBots:
		return g.fillWithBots()
	case CmdStartGame:
		return g.startGame(rng)
	case CmdMakeBid:
		return g.makeBid(cmd.Seat, cmd.Bid, cmd.Blind)
	case CmdPlayCard:
		return g.playCard(cmd.Seat, cmd.Card, rng)
	case CmdTimeoutAct:
		return g.timeoutAct(cmd.Seat, rng)
	case CmdReplaceWithBot:
		return g.replaceWithBot(cmd.Seat)
	case CmdRevealHand:
		return g.revealHand(cmd.Seat)
	default:
		return nil, ErrUnsupportedCommand
	}
}

func checkSeat(seat int) error {
	if seat < 0 || seat > 3 {
		return ErrSeatOutOfRange
	}
	return nil
}

func (g *Game) firstEmpty() int {
	for i := range g.Seats {
		if !g.Seats[i].Filled() {
			return i
		}
	}
	return -1
}

func (g *Game) joinSeat(cmd Command) ([]Event, error) {
	// A known user rejoining mid-game reclaims their seat.
	for i := range g.Seats {
		s := &g.Seats[i]
		if s.State == SeatHuman && cmd.UserID != "" && s.UserID == cmd.UserID {
			s.Connected = true
			s.Timeouts = 0
			return []Event{{Type: EvtSeatJoined, Seat: i}}, nil
		}
	}

	if g.Phase != PhaseWaiting {
		return nil, fmt.Errorf("%w: game already started", ErrWrongPhase)
	}
	seat := cmd.Seat
	if seat == -1 {
		if seat = g.firstEmpty(); seat == -1 {
			return nil, fmt.Errorf("%w: table is full", ErrSeatOccupied)
		}
	}
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	if g.Seats[seat].Filled() {
		return nil, ErrSeatOccupied
	}
	g.Seats[seat] = Seat{State: SeatHuman, UserID: cmd.UserID, Name: cmd.Name, Connected: true}
	return []Event{{Type: EvtSeatJoined, Seat: seat}}, nil
}

func (g *Game) leaveSeat(cmd Command) ([]Event, error) {
	if err := checkSeat(cmd.Seat); err != nil {
		return nil, err
	}
	s := &g.Seats[cmd.Seat]
	if s.State != SeatHuman {
		return nil, ErrSeatEmpty
	}
	if g.Phase == PhaseWaiting || g.Phase == PhaseFinished {
		g.Seats[cmd.Seat] = Seat{}
	} else {
		// Mid-game a leave is a disconnect; the seat's timeout keeps running
		// and the replacement policy decides what happens next.
		s.Connected = false
	}
	return []Event{{Type: EvtSeatLeft, Seat: cmd.Seat}}, nil
}

func (g *Game) addBot(seat int) ([]Event, error) {
	if g.Phase != PhaseWaiting {
		return nil, fmt.Errorf("%w: bots can only be seated before start", ErrWrongPhase)
	}
	if seat == -1 {
		if seat = g.firstEmpty(); seat == -1 {
			return nil, fmt.Errorf("%w: table is full", ErrSeatOccupied)
		}
	}
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	if g.Seats[seat].Filled() {
		return nil, ErrSeatOccupied
	}
	g.Seats[seat] = Seat{
		State:     SeatBot,
		Name:      fmt.Sprintf("Bot %d", seat+1),
		Connected: true,
		SeenHand:  true,
	}
	return []Event{{Type: EvtBotAdded, Seat: seat}}, nil
}

func (g *Game) removeBot(seat int) ([]Event, error) {
	if g.Phase != PhaseWaiting {
		return nil, fmt.Errorf("%w: bots can only be removed before start", ErrWrongPhase)
	}
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	if g.Seats[seat].State != SeatBot {
		return nil, fmt.Errorf("%w: seat %d is not a bot", ErrSeatEmpty, seat)
	}
	g.Seats[seat] = Seat{}
	return []Event{{Type: EvtBotRemoved, Seat: seat}}, nil
}

func (g *Game) fillWithBots() ([]Event, error) {
	if g.Phase != PhaseWaiting {
		return nil, fmt.Errorf("%w: bots can only be seated before start", ErrWrongPhase)
	}
	var events []Event
	for i := range g.Seats {
		if g.Seats[i].Filled() {
			continue
		}
		evs, err := g.addBot(i)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return events, nil
}

// replaceWithBot converts a seat to a bot mid-game, keeping its hand, bid
// and trick count. Used by the timeout policy for abandoned seats.
func (g *Game) replaceWithBot(seat int) ([]Event, error) {
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	s := &g.Seats[seat]
	if !s.Filled() {
		return nil, ErrSeatEmpty
	}
	s.State = SeatBot
	s.UserID = ""
	s.Name = fmt.Sprintf("Bot %d", seat+1)
	s.Connected = true
	s.SeenHand = true
	s.Timeouts = 0
	return []Event{{Type: EvtBotAdded, Seat: seat}}, nil
}

// revealHand closes the seat's blind-nil window: once the cards are looked
// at, only a regular bid remains available.
func (g *Game) revealHand(seat int) ([]Event, error) {
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	if !g.Seats[seat].Filled() {
		return nil, ErrSeatEmpty
	}
	g.Seats[seat].SeenHand = true
	return nil, nil
}

func (g *Game) startGame(rng *rand.Rand) ([]Event, error) {
	if g.Phase != PhaseWaiting {
		return nil, fmt.Errorf("%w: game already started", ErrWrongPhase)
	}
	for i := range g.Seats {
		if !g.Seats[i].Filled() {
			return nil, ErrNotReady
		}
	}
	events := []Event{{Type: EvtGameStarted}}
	events = append(events, g.newHand(rng)...)
	return events, nil
}

// newHand advances the dealer, deals four fresh hands and opens the auction
// at dealer+1.
func (g *Game) newHand(rng *rand.Rand) []Event {
	g.Round++
	g.Dealer = nextSeat(g.Dealer)
	g.Current = nextSeat(g.Dealer)
	g.Phase = PhaseBidding
	g.SpadesBroken = false
	g.Trick = Trick{}
	g.PastTricks = nil

	hands := cards.Deal(rng)
	for i := range g.Seats {
		s := &g.Seats[i]
		s.Hand = hands[i]
		s.Bid = nil
		s.BlindNil = false
		s.Tricks = 0
		// Bots never bid blind; humans have not looked yet.
		s.SeenHand = s.State == SeatBot
	}
	return []Event{{Type: EvtHandDealt, Seat: g.Dealer}}
}

func (g *Game) makeBid(seat, bid int, blind bool) ([]Event, error) {
	if g.Phase != PhaseBidding {
		return nil, fmt.Errorf("%w: not in bidding", ErrWrongPhase)
	}
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	if seat != g.Current {
		return nil, fmt.Errorf("%w: seat %d to bid", ErrWrongTurn, g.Current)
	}
	s := &g.Seats[seat]
	if err := rules.CheckBid(g.Format, s.Hand, g.BidContext(seat), bid, blind); err != nil {
		return nil, err
	}

	b := bid
	s.Bid = &b
	s.BlindNil = blind
	s.Timeouts = 0
	if !blind {
		s.SeenHand = true
	}

	events := []Event{{Type: EvtBidMade, Seat: seat, Bid: bid, Blind: blind}}
	g.Current = nextSeat(g.Current)

	if g.allBid() {
		g.Phase = PhasePlaying
		g.Current = nextSeat(g.Dealer)
		g.Trick = Trick{Number: 1, Lead: g.Current, Winner: -1}
		// Everyone plays face up from here, blind bidders included.
		for i := range g.Seats {
			g.Seats[i].SeenHand = true
		}
	}
	return events, nil
}

func (g *Game) allBid() bool {
	for i := range g.Seats {
		if g.Seats[i].Bid == nil {
			return false
		}
	}
	return true
}

func (g *Game) playCard(seat int, card cards.Card, rng *rand.Rand) ([]Event, error) {
	if g.Phase != PhasePlaying {
		return nil, fmt.Errorf("%w: not in play", ErrWrongPhase)
	}
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	if seat != g.Current {
		return nil, fmt.Errorf("%w: seat %d to play", ErrWrongTurn, g.Current)
	}
	s := &g.Seats[seat]
	if err := rules.CheckPlay(g.Special, s.Hand, g.TrickView(), card); err != nil {
		return nil, err
	}

	s.Hand, _ = cards.Remove(s.Hand, card)
	s.Timeouts = 0
	g.Trick.Plays = append(g.Trick.Plays, Play{Seat: seat, Card: card})
	if card.Suit == cards.Spades {
		g.SpadesBroken = true
	}

	events := []Event{{Type: EvtCardPlayed, Seat: seat, Card: card}}

	if !g.Trick.Complete() {
		g.Current = nextSeat(g.Current)
		return events, nil
	}

	winner := ResolveTrick(g.Trick.Plays)
	g.Trick.Winner = winner
	g.Seats[winner].Tricks++
	events = append(events, Event{Type: EvtTrickCompleted, Seat: winner, Trick: g.Trick})
	g.PastTricks = append(g.PastTricks, g.Trick)

	if g.Trick.Number < 13 {
		g.Trick = Trick{Number: g.Trick.Number + 1, Lead: winner, Winner: -1}
		g.Current = winner
		return events, nil
	}

	// 13th trick resolved: score the hand.
	events = append(events, g.scoreHand(rng)...)
	return events, nil
}

// scoreHand posts the hand result, applies bag penalties, and either
// finishes the game or deals the next hand.
func (g *Game) scoreHand(rng *rand.Rand) []Event {
	g.Phase = PhaseHandScoring

	deltas, bags := ScoreHand(g.Mode, g.Seats)
	for side := range g.Scores {
		g.Scores[side].Points += deltas[side]
		g.Scores[side].Bags += bags[side]
		for g.Scores[side].Bags >= 10 {
			g.Scores[side].Points -= 100
			deltas[side] -= 100
			g.Scores[side].Bags -= 10
		}
	}

	totals := make([]int, g.Sides())
	bagCounters := make([]int, g.Sides())
	for side := range g.Scores {
		totals[side] = g.Scores[side].Points
		bagCounters[side] = g.Scores[side].Bags
	}
	events := []Event{{Type: EvtHandCompleted, Deltas: deltas, Totals: totals, Bags: bagCounters}}

	if winner, done := g.winningSide(); done {
		g.Phase = PhaseFinished
		g.Current = -1
		events = append(events, Event{Type: EvtGameFinished, Side: winner, Totals: totals})
		return events
	}

	events = append(events, g.newHand(rng)...)
	return events
}

// winningSide reports whether a score bound has been crossed and which side
// wins. A tie for the lead keeps the game running for another hand.
func (g *Game) winningSide() (int, bool) {
	crossed := false
	for side := range g.Scores {
		p := g.Scores[side].Points
		if p >= g.MaxPoints || p <= g.MinPoints {
			crossed = true
		}
	}
	if !crossed {
		return -1, false
	}
	best, tied := 0, false
	for side := 1; side < g.Sides(); side++ {
		if g.Scores[side].Points > g.Scores[best].Points {
			best, tied = side, false
		} else if g.Scores[side].Points == g.Scores[best].Points {
			tied = true
		}
	}
	if tied {
		return -1, false
	}
	return best, true
}

// timeoutAct performs the lowest legal action for the seat whose turn
// expired: the lowest legal non-nil bid, or the lowest-ranked legal card.
// Nil is only auto-bid when it is the sole legal bid; an idle seat must not
// be committed to a contract it will almost certainly break.
func (g *Game) timeoutAct(seat int, rng *rand.Rand) ([]Event, error) {
	if err := checkSeat(seat); err != nil {
		return nil, err
	}
	if seat != g.Current {
		return nil, ErrWrongTurn
	}

	// makeBid/playCard reset the counter on the assumption the seat acted;
	// restore and bump it so consecutive timeouts accumulate.
	missed := g.Seats[seat].Timeouts + 1

	switch g.Phase {
	case PhaseBidding:
		legal := rules.LegalBids(g.Format, g.Seats[seat].Hand, g.BidContext(seat))
		bid := -1
		for _, b := range legal {
			if b > 0 && (bid < 0 || b < bid) {
				bid = b
			}
		}
		if bid < 0 {
			bid = legal[0] // nil is forced
		}
		events, err := g.makeBid(seat, bid, false)
		if err != nil {
			return nil, err
		}
		g.Seats[seat].Timeouts = missed
		return events, nil

	case PhasePlaying:
		legal := rules.LegalPlays(g.Special, g.Seats[seat].Hand, g.TrickView())
		low := legal[0]
		for _, c := range legal[1:] {
			if c.Rank < low.Rank {
				low = c
			}
		}
		events, err := g.playCard(seat, low, rng)
		if err != nil {
			return nil, err
		}
		g.Seats[seat].Timeouts = missed
		return events, nil

	default:
		return nil, fmt.Errorf("%w: nothing to time out", ErrWrongPhase)
	}
}
