// Package ws attaches websocket connections to tables. One connection is
// bound to one seat (or spectates); a reader loop feeds commands into the
// table's inbox and a writer goroutine drains its outbox.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/cards"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/hub"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/table"
	"github.com/tomBUXDAO2/bux-spades-sub005/pkg/types"
)

func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("game")
		if gameID == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}
		seat := -1
		if s := r.URL.Query().Get("seat"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 3 {
				http.Error(w, "bad seat", http.StatusBadRequest)
				return
			}
			seat = n
		}
		userID := r.URL.Query().Get("user")
		if userID == "" {
			userID = uuid.NewString()
		}

		reply := make(chan *table.Table, 1)
		h.Inbox() <- hub.GetTable{ID: gameID, Reply: reply}
		tbl := <-reply
		if tbl == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := logger.With(
			zap.String("game_id", gameID),
			zap.String("client_id", clientID),
			zap.Int("seat", seat))
		log.Info("client connected")

		out := make(chan types.ServerMessage, 32)
		tbl.Inbox() <- table.Join{ClientID: clientID, Seat: seat, Outbox: out}
		defer func() {
			tbl.Inbox() <- table.Leave{ClientID: clientID}
			log.Info("client disconnected")
		}()

		// Writer goroutine. The table closes the outbox if we fall behind.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			// Outbox closed: this connection was dropped as too slow.
			conn.Close(websocket.StatusPolicyViolation, "too slow")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			cmd, ok := toCommand(cm, seat, userID)
			if !ok {
				writeError(r.Context(), conn, "unknown or malformed message")
				continue
			}

			tbl.Inbox() <- table.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

// toCommand maps a client message onto an engine command. Acting commands
// carry the seat from the upgrade-time binding as a hint; the table stamps
// them with its own per-client binding, which tracks seat joins, so a
// client can never bid or play for another seat.
func toCommand(m types.ClientMessage, seat int, userID string) (engine.Command, bool) {
	switch m.Type {
	case "join_seat":
		// The requested seat wins over the connection binding; -1 lets the
		// engine pick the first empty seat. The table rebinds this
		// connection to whichever seat the join lands on.
		joinSeat := seat
		if m.Seat != nil {
			joinSeat = *m.Seat
		}
		return engine.Command{Type: engine.CmdJoinSeat, Seat: joinSeat, UserID: userID, Name: m.Name}, true
	case "add_bot":
		botSeat := -1
		if m.Seat != nil {
			botSeat = *m.Seat
		}
		return engine.Command{Type: engine.CmdAddBot, Seat: botSeat}, true
	case "remove_bot":
		if m.Seat == nil {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdRemoveBot, Seat: *m.Seat}, true
	case "fill_with_bots":
		return engine.Command{Type: engine.CmdFillWithBots}, true
	case "start_game":
		return engine.Command{Type: engine.CmdStartGame}, true
	case "reveal_hand":
		return engine.Command{Type: engine.CmdRevealHand, Seat: seat}, true
	case "make_bid":
		return engine.Command{Type: engine.CmdMakeBid, Seat: seat, Bid: m.Bid, Blind: m.Blind}, true
	case "play_card":
		c, err := cards.Parse(m.Card)
		if err != nil {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdPlayCard, Seat: seat, Card: c}, true
	default:
		return engine.Command{}, false
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, reason string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: types.MsgError, Error: reason})
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
