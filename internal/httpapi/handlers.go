package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/hub"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/rules"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/table"
)

// CreateGameRequest is the table setup chosen by the host.
type CreateGameRequest struct {
	Format        string `json:"format"`
	Gimmick       string `json:"gimmick,omitempty"`
	Mode          string `json:"mode"`
	AllowNil      bool   `json:"allowNil"`
	AllowBlindNil bool   `json:"allowBlindNil"`
	Screamer      bool   `json:"screamer"`
	Assassin      bool   `json:"assassin"`
	MinPoints     int    `json:"minPoints"`
	MaxPoints     int    `json:"maxPoints"`
}

func CreateGame(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}

		kind, gimmick, err := rules.ParseFormat(req.Format, req.Gimmick)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Screamer && req.Assassin {
			http.Error(w, "screamer and assassin are mutually exclusive", http.StatusBadRequest)
			return
		}
		mode := engine.Partners
		if req.Mode == "SOLO" {
			mode = engine.Solo
		}
		if req.MaxPoints == 0 {
			req.MinPoints, req.MaxPoints = -250, 500
		}
		if req.MinPoints >= req.MaxPoints {
			http.Error(w, "minPoints must be below maxPoints", http.StatusBadRequest)
			return
		}

		format := rules.Format{
			Kind:          kind,
			Gimmick:       gimmick,
			AllowNil:      req.AllowNil,
			AllowBlindNil: req.AllowBlindNil,
		}
		special := rules.Special{Screamer: req.Screamer, Assassin: req.Assassin}

		id := uuid.NewString()
		g := engine.NewGame(id, format, special, mode, req.MinPoints, req.MaxPoints)

		reply := make(chan *table.Table, 1)
		h.Inbox() <- hub.CreateTable{Game: g, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}
		logger.Info("game created",
			zap.String("game_id", id),
			zap.String("format", format.String()),
			zap.String("mode", string(mode)))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			ID string `json:"id"`
		}{ID: id})
	}
}

func ListGames(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []hub.Info, 1)
		h.Inbox() <- hub.ListTables{Reply: reply}
		infos := <-reply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(infos)
	}
}

func GetGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		reply := make(chan *table.Table, 1)
		h.Inbox() <- hub.GetTable{ID: id, Reply: reply}
		tbl := <-reply
		if tbl == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		stateReply := make(chan table.View, 1)
		tbl.Inbox() <- table.GetState{Reply: stateReply}
		view := <-stateReply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Version int             `json:"version"`
			Game    engine.GameView `json:"game"`
		}{Version: view.Version, Game: view.Game})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
