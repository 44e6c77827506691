// Package table runs one game per goroutine. Every command, timer fire,
// bot move and snapshot flush passes through the table's inbox, so state
// mutations for one game are serialized by construction while different
// games proceed in parallel.
package table

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/bot"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/store"
	"github.com/tomBUXDAO2/bux-spades-sub005/pkg/types"
)

type Msg interface{ isTableMsg() }

// Join registers a client connection. Seat -1 joins as a spectator; the
// seat binding only controls which hand the state frames reveal.
type Join struct {
	ClientID string
	Seat     int
	Outbox   chan types.ServerMessage
}

func (Join) isTableMsg() {}

type Leave struct{ ClientID string }

func (Leave) isTableMsg() {}

// FromClient carries one engine command from a connection. Rejections are
// sent back on that client's outbox only; other seats never see them.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isTableMsg() {}

type GetState struct{ Reply chan View }

func (GetState) isTableMsg() {}

// HealthCheck reports phase and idle time, used by the stuck-game sweep.
type HealthCheck struct{ Reply chan Health }

func (HealthCheck) isTableMsg() {}

// ForceResolve discards a stuck game: terminal frame, final flush, shutdown.
type ForceResolve struct{}

func (ForceResolve) isTableMsg() {}

type Shutdown struct{}

func (Shutdown) isTableMsg() {}

type timerFired struct{ gen uint64 }

func (timerFired) isTableMsg() {}

type botTurn struct{ gen uint64 }

func (botTurn) isTableMsg() {}

type flushDue struct{}

func (flushDue) isTableMsg() {}

type View struct {
	Version    int
	NumClients int
	Game       engine.GameView
}

type Health struct {
	Phase engine.Phase
	Idle  time.Duration
}

type Config struct {
	TurnTimeout     time.Duration
	BotDelay        time.Duration
	FlushInterval   time.Duration
	BotReplaceAfter int
}

func (c Config) withDefaults() Config {
	if c.TurnTimeout == 0 {
		c.TurnTimeout = 30 * time.Second
	}
	if c.BotDelay == 0 {
		c.BotDelay = 800 * time.Millisecond
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = 2 * time.Second
	}
	if c.BotReplaceAfter == 0 {
		c.BotReplaceAfter = 3
	}
	return c
}

type client struct {
	seat int
	out  chan types.ServerMessage
}

type Table struct {
	inbox   chan Msg
	game    *engine.Game
	rng     *rand.Rand
	version int
	clients map[string]*client

	cfg    Config
	logger *zap.Logger
	st     store.Store

	// gen invalidates pending timer and bot fires; it bumps on every
	// applied command so a stale fire can never double-act.
	gen          uint64
	turnTimer    *time.Timer
	dirty        bool
	flushPending bool
	flushCh      chan snapshot
	lastMove     time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts the actor. The game may be freshly created or recovered from
// a snapshot; a recovered game mid-bid or mid-play re-arms its timers on
// the first loop pass.
func New(parent context.Context, g *engine.Game, st store.Store, cfg Config, logger *zap.Logger) *Table {
	ctx, cancel := context.WithCancel(parent)
	t := &Table{
		inbox:    make(chan Msg, 64),
		game:     g,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		clients:  make(map[string]*client),
		cfg:      cfg.withDefaults(),
		logger:   logger.With(zap.String("game_id", g.ID)),
		st:       st,
		flushCh:  make(chan snapshot, 8),
		lastMove: time.Now(),
		ctx:      ctx,
		cancel:   cancel,
	}
	go t.persister()
	go t.loop()
	return t
}

func (t *Table) Inbox() chan<- Msg { return t.inbox }

func (t *Table) loop() {
	t.scheduleNext()
	for {
		select {
		case <-t.ctx.Done():
			t.shutdown()
			return

		case m := <-t.inbox:
			switch msg := m.(type) {
			case Join:
				t.clients[msg.ClientID] = &client{seat: msg.Seat, out: msg.Outbox}
				t.sendTo(msg.ClientID, t.stateFrame(msg.Seat))

			case Leave:
				t.handleLeave(msg.ClientID)

			case FromClient:
				t.handleFromClient(msg)

			case timerFired:
				t.handleTimeout(msg.gen)

			case botTurn:
				t.handleBotTurn(msg.gen)

			case flushDue:
				t.flushPending = false
				if t.dirty {
					t.flushAsync()
				}

			case GetState:
				// The sanitized view is built inside the lane; handing out
				// the raw game would share slices with a mutating goroutine.
				msg.Reply <- View{Version: t.version, NumClients: len(t.clients), Game: t.game.ViewFor(-1)}

			case HealthCheck:
				msg.Reply <- Health{Phase: t.game.Phase, Idle: time.Since(t.lastMove)}

			case ForceResolve:
				t.logger.Warn("force-resolving stuck game", zap.String("phase", string(t.game.Phase)))
				t.game.Phase = engine.PhaseFinished
				t.game.Current = -1
				t.broadcast(types.ServerMessage{Type: types.MsgGameFinished, WinningSide: -1})
				t.dirty = true
				t.flushSync()
				t.shutdown()
				return

			case Shutdown:
				t.shutdown()
				return
			}
		}
	}
}

// handleFromClient stamps acting commands with the seat this client is
// bound to, applies them, and rebinds the client after a successful seat
// join so a spectator who takes a seat can act and see their own hand.
func (t *Table) handleFromClient(msg FromClient) {
	cmd := msg.Cmd
	c := t.clients[msg.ClientID]
	if c != nil {
		switch cmd.Type {
		case engine.CmdMakeBid, engine.CmdPlayCard, engine.CmdRevealHand:
			cmd.Seat = c.seat
		}
	}

	events, err := t.game.Apply(cmd, t.rng)
	if err != nil {
		t.sendTo(msg.ClientID, types.ServerMessage{Type: types.MsgError, Error: err.Error()})
		return
	}
	if c != nil && cmd.Type == engine.CmdJoinSeat {
		for _, ev := range events {
			if ev.Type == engine.EvtSeatJoined {
				c.seat = ev.Seat
			}
		}
	}
	t.postApply(events)
}

func (t *Table) handleLeave(clientID string) {
	c, ok := t.clients[clientID]
	if !ok {
		return
	}
	delete(t.clients, clientID)
	// The ws writer drains this channel until it closes; closing here lets
	// it exit on a normal disconnect.
	close(c.out)
	if c.seat < 0 {
		return
	}
	// Last connection for a seated human: mark the seat disconnected. The
	// running turn timeout is deliberately left alone.
	for _, other := range t.clients {
		if other.seat == c.seat {
			return
		}
	}
	if t.game.Seats[c.seat].State != engine.SeatHuman {
		return
	}
	events, err := t.game.Apply(engine.Command{Type: engine.CmdLeaveSeat, Seat: c.seat}, t.rng)
	if err != nil {
		return
	}
	t.postApply(events)
}

func (t *Table) handleTimeout(gen uint64) {
	if gen != t.gen {
		return // the seat acted before the timer landed
	}
	seat := t.game.Current
	events, err := t.game.Apply(engine.Command{Type: engine.CmdTimeoutAct, Seat: seat}, t.rng)
	if err != nil {
		t.logger.Error("timeout auto-act failed", zap.Int("seat", seat), zap.Error(err))
		return
	}
	t.logger.Info("seat timed out, auto-acted",
		zap.Int("seat", seat),
		zap.Int("missed_turns", t.game.Seats[seat].Timeouts))

	s := &t.game.Seats[seat]
	if s.State == engine.SeatHuman && !s.Connected && s.Timeouts >= t.cfg.BotReplaceAfter {
		if more, err := t.game.Apply(engine.Command{Type: engine.CmdReplaceWithBot, Seat: seat}, t.rng); err == nil {
			t.logger.Info("abandoned seat replaced with bot", zap.Int("seat", seat))
			events = append(events, more...)
		}
	}
	t.postApply(events)
}

func (t *Table) handleBotTurn(gen uint64) {
	if gen != t.gen {
		return
	}
	seat := t.game.Current
	var cmd engine.Command
	switch t.game.Phase {
	case engine.PhaseBidding:
		cmd = engine.Command{Type: engine.CmdMakeBid, Seat: seat, Bid: bot.Bid(t.game, seat)}
	case engine.PhasePlaying:
		cmd = engine.Command{Type: engine.CmdPlayCard, Seat: seat, Card: bot.Play(t.game, seat)}
	default:
		return
	}
	events, err := t.game.Apply(cmd, t.rng)
	if err != nil {
		// The bot is built on the same predicates the engine checks, so
		// this indicates a rules bug; fall back to the lowest legal action.
		t.logger.Error("bot move rejected", zap.Int("seat", seat), zap.Error(err))
		events, err = t.game.Apply(engine.Command{Type: engine.CmdTimeoutAct, Seat: seat}, t.rng)
		if err != nil {
			return
		}
	}
	t.postApply(events)
}

// postApply runs after every successful mutation: bump the version, fan
// out events and fresh views, persist, and schedule whoever acts next.
func (t *Table) postApply(events []engine.Event) {
	t.version++
	t.lastMove = time.Now()

	boundary := false
	for _, ev := range events {
		if frame, ok := eventFrame(ev); ok {
			t.broadcast(frame)
		}
		if ev.Type == engine.EvtHandCompleted || ev.Type == engine.EvtGameFinished {
			boundary = true
		}
	}
	for id, c := range t.clients {
		t.sendTo(id, t.stateFrame(c.seat))
	}

	t.dirty = true
	if boundary {
		// Terminal and hand-boundary state must not be lost to the debounce.
		t.flushSync()
	} else if !t.flushPending {
		t.flushPending = true
		t.after(t.cfg.FlushInterval, flushDue{})
	}

	t.scheduleNext()
}

// scheduleNext arms the timer or bot move for the seat on turn. Bumping the
// generation here invalidates anything already in flight.
func (t *Table) scheduleNext() {
	t.gen++
	if t.turnTimer != nil {
		t.turnTimer.Stop()
		t.turnTimer = nil
	}
	if t.game.Phase != engine.PhaseBidding && t.game.Phase != engine.PhasePlaying {
		return
	}
	seat := t.game.Current
	gen := t.gen
	if t.game.Seats[seat].State == engine.SeatBot {
		// Paced so the UI can follow; the delay lives outside the lane.
		t.after(t.cfg.BotDelay, botTurn{gen: gen})
		return
	}
	t.turnTimer = time.AfterFunc(t.cfg.TurnTimeout, func() { t.post(timerFired{gen: gen}) })
}

func (t *Table) after(d time.Duration, msg Msg) {
	time.AfterFunc(d, func() { t.post(msg) })
}

func (t *Table) post(msg Msg) {
	select {
	case t.inbox <- msg:
	case <-t.ctx.Done():
	}
}

func (t *Table) stateFrame(seat int) types.ServerMessage {
	v := t.game.ViewFor(seat)
	return types.ServerMessage{Type: types.MsgState, Version: t.version, View: &v}
}

func eventFrame(ev engine.Event) (types.ServerMessage, bool) {
	switch ev.Type {
	case engine.EvtBidMade:
		return types.ServerMessage{Type: types.MsgBidMade, Seat: ev.Seat, Bid: ev.Bid, Blind: ev.Blind}, true
	case engine.EvtCardPlayed:
		return types.ServerMessage{Type: types.MsgCardPlayed, Seat: ev.Seat, Card: ev.Card.String()}, true
	case engine.EvtTrickCompleted:
		trick := ev.Trick
		return types.ServerMessage{Type: types.MsgTrickCompleted, Trick: &trick, WinningSeat: ev.Seat}, true
	case engine.EvtHandCompleted:
		return types.ServerMessage{Type: types.MsgHandCompleted, Deltas: ev.Deltas, Totals: ev.Totals, Bags: ev.Bags}, true
	case engine.EvtGameFinished:
		return types.ServerMessage{Type: types.MsgGameFinished, WinningSide: ev.Side, Totals: ev.Totals}, true
	default:
		return types.ServerMessage{}, false
	}
}

func (t *Table) sendTo(clientID string, msg types.ServerMessage) {
	c, ok := t.clients[clientID]
	if !ok {
		return
	}
	select {
	case c.out <- msg:
	default:
		// Slow or dead connection: drop it rather than stall the lane.
		close(c.out)
		delete(t.clients, clientID)
	}
}

func (t *Table) broadcast(msg types.ServerMessage) {
	for id := range t.clients {
		t.sendTo(id, msg)
	}
}

// snapshot is one queued journal write. Waiters are closed once it, or a
// write that superseded it, has landed.
type snapshot struct {
	phase   string
	blob    []byte
	waiters []chan struct{}
}

// persister applies journal writes strictly in enqueue order, so a retrying
// stale write can never land on top of a newer one.
func (t *Table) persister() {
	for snap := range t.flushCh {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.SaveWithRetry(ctx, t.st, t.logger, t.game.ID, snap.phase, snap.blob); err != nil {
			t.logger.Error("snapshot write gave up", zap.Error(err))
		}
		cancel()
		for _, w := range snap.waiters {
			close(w)
		}
	}
}

func (t *Table) enqueueFlush(waiters ...chan struct{}) {
	blob, err := store.Encode(t.game)
	if err != nil {
		t.logger.Error("snapshot encode failed", zap.Error(err))
		for _, w := range waiters {
			close(w)
		}
		return
	}
	t.dirty = false
	snap := snapshot{phase: string(t.game.Phase), blob: blob, waiters: waiters}
	for {
		select {
		case t.flushCh <- snap:
			return
		default:
		}
		// Queue full while the store is slow: the oldest pending write is
		// superseded by this newer state, and its waiters ride along.
		select {
		case old := <-t.flushCh:
			snap.waiters = append(snap.waiters, old.waiters...)
		default:
		}
	}
}

func (t *Table) flushAsync() { t.enqueueFlush() }

// flushSync blocks the lane until this state, or newer, is in the journal.
// Used at hand boundaries and game finish so those are never lost to the
// debounce or reordered behind an older write.
func (t *Table) flushSync() {
	done := make(chan struct{})
	t.enqueueFlush(done)
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.logger.Error("snapshot flush timed out")
	}
}

func (t *Table) shutdown() {
	if t.turnTimer != nil {
		t.turnTimer.Stop()
	}
	if t.dirty {
		t.flushSync()
	}
	close(t.flushCh) // persister drains what is queued and exits
	for id, c := range t.clients {
		close(c.out)
		delete(t.clients, id)
	}
	t.cancel()
}
