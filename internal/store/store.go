// Package store persists game snapshots. While a process is alive the
// in-memory game is authoritative; the store is a recovery journal read
// back only after a restart.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("snapshot not found")

type Store interface {
	SaveSnapshot(ctx context.Context, gameID, phase string, state []byte) error
	LoadSnapshot(ctx context.Context, gameID string) ([]byte, error)
	// ListRecoverable returns the ids of games worth resurrecting after a
	// restart: those persisted mid-bidding or mid-play.
	ListRecoverable(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, gameID string) error
}

// SaveWithRetry writes a snapshot with bounded backoff. Persistence
// failures never block gameplay; after the attempts run out the error is
// returned for the caller to log.
func SaveWithRetry(ctx context.Context, s Store, logger *zap.Logger, gameID, phase string, state []byte) error {
	backoff := 100 * time.Millisecond
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = s.SaveSnapshot(ctx, gameID, phase, state); err == nil {
			return nil
		}
		logger.Warn("snapshot write failed",
			zap.String("game_id", gameID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// Memory is an in-process Store used in tests and when no database is
// configured. It satisfies the interface but survives nothing.
type Memory struct {
	mu    sync.Mutex
	snaps map[string]memorySnap
}

type memorySnap struct {
	phase string
	state []byte
}

func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]memorySnap)}
}

func (m *Memory) SaveSnapshot(_ context.Context, gameID, phase string, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob := make([]byte, len(state))
	copy(blob, state)
	m.snaps[gameID] = memorySnap{phase: phase, state: blob}
	return nil
}

func (m *Memory) LoadSnapshot(_ context.Context, gameID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	blob := make([]byte, len(snap.state))
	copy(blob, snap.state)
	return blob, nil
}

func (m *Memory) ListRecoverable(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, snap := range m.snaps {
		if snap.phase == "BIDDING" || snap.phase == "PLAYING" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *Memory) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, gameID)
	return nil
}
