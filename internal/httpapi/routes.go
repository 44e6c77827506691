package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/hub"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/ws"
)

func SetupRoutes(h *hub.Hub, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(h, logger))
	r.Get("/games", ListGames(h))
	r.Get("/games/{id}", GetGame(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger))
	return r
}
