// Package hub is the registry of live tables. Like a table, it is an
// actor: every create, lookup and sweep runs through a single goroutine.
package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tomBUXDAO2/bux-spades-sub005/internal/engine"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/store"
	"github.com/tomBUXDAO2/bux-spades-sub005/internal/table"
)

type HubMsg interface{ isHubMsg() }

// CreateTable registers a table for a new or recovered game. If the id is
// already registered the existing table is returned.
type CreateTable struct {
	Game  *engine.Game
	Reply chan *table.Table
}

type GetTable struct {
	ID    string
	Reply chan *table.Table
}

type ListTables struct {
	Reply chan []Info
}

type RemoveTable struct {
	ID string
}

// Sweep probes every table and force-resolves the ones idle past the
// stuck threshold.
type Sweep struct{}

type ShutdownHub struct{}

func (CreateTable) isHubMsg() {}
func (GetTable) isHubMsg()    {}
func (ListTables) isHubMsg()  {}
func (RemoveTable) isHubMsg() {}
func (Sweep) isHubMsg()       {}
func (ShutdownHub) isHubMsg() {}

// Info is a registry entry summary for listings.
type Info struct {
	ID    string       `json:"id"`
	Phase engine.Phase `json:"phase"`
}

type Hub struct {
	inbox  chan HubMsg
	tables map[string]*table.Table

	st        store.Store
	tableCfg  table.Config
	stuckIdle time.Duration
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, tableCfg table.Config, stuckIdle time.Duration, logger *zap.Logger) *Hub {
	if stuckIdle == 0 {
		stuckIdle = time.Hour
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:     make(chan HubMsg, 64),
		tables:    make(map[string]*table.Table),
		st:        st,
		tableCfg:  tableCfg,
		stuckIdle: stuckIdle,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateTable:
				if tbl := h.tables[msg.Game.ID]; tbl != nil {
					msg.Reply <- tbl
					break
				}
				tbl := table.New(h.ctx, msg.Game, h.st, h.tableCfg, h.logger)
				h.tables[msg.Game.ID] = tbl
				msg.Reply <- tbl

			case GetTable:
				msg.Reply <- h.tables[msg.ID] // may be nil

			case ListTables:
				msg.Reply <- h.list()

			case RemoveTable:
				delete(h.tables, msg.ID)

			case Sweep:
				h.sweep()

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// list snapshots every table's phase. Each probe is a round trip into the
// table's lane, so a wedged table is skipped instead of blocking the hub.
func (h *Hub) list() []Info {
	infos := make([]Info, 0, len(h.tables))
	for id, tbl := range h.tables {
		health, ok := h.probe(tbl)
		if !ok {
			continue
		}
		infos = append(infos, Info{ID: id, Phase: health.Phase})
	}
	return infos
}

func (h *Hub) sweep() {
	for id, tbl := range h.tables {
		health, ok := h.probe(tbl)
		if !ok {
			continue
		}
		switch {
		case health.Phase == engine.PhaseFinished:
			delete(h.tables, id)
		case health.Idle > h.stuckIdle &&
			(health.Phase == engine.PhaseBidding || health.Phase == engine.PhasePlaying):
			h.logger.Warn("sweeping stuck game",
				zap.String("game_id", id),
				zap.Duration("idle", health.Idle))
			tbl.Inbox() <- table.ForceResolve{}
			delete(h.tables, id)
		}
	}
}

func (h *Hub) probe(tbl *table.Table) (table.Health, bool) {
	reply := make(chan table.Health, 1)
	select {
	case tbl.Inbox() <- table.HealthCheck{Reply: reply}:
	case <-time.After(time.Second):
		return table.Health{}, false
	}
	select {
	case health := <-reply:
		return health, true
	case <-time.After(time.Second):
		return table.Health{}, false
	}
}

func (h *Hub) shutdown() {
	for id, tbl := range h.tables {
		tbl.Inbox() <- table.Shutdown{}
		delete(h.tables, id)
	}
	h.cancel()
}

// RunSweeper drives periodic sweeps until ctx is cancelled. It is started
// alongside the HTTP server and shares its lifetime.
func (h *Hub) RunSweeper(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			select {
			case h.inbox <- Sweep{}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
