package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GameSnapshot is the journal row for one game. The state column is the
// engine's JSON encoding, opaque to the database beyond the indexed phase.
type GameSnapshot struct {
	GameID    string         `gorm:"primaryKey;size:64"`
	Phase     string         `gorm:"index;size:16"`
	State     datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

// Postgres implements Store on a gorm connection.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the snapshot table.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&GameSnapshot{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) SaveSnapshot(ctx context.Context, gameID, phase string, state []byte) error {
	row := GameSnapshot{
		GameID:    gameID,
		Phase:     phase,
		State:     datatypes.JSON(state),
		UpdatedAt: time.Now().UTC(),
	}
	return p.db.WithContext(ctx).Save(&row).Error
}

func (p *Postgres) LoadSnapshot(ctx context.Context, gameID string) ([]byte, error) {
	var row GameSnapshot
	err := p.db.WithContext(ctx).First(&row, "game_id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.State), nil
}

func (p *Postgres) ListRecoverable(ctx context.Context) ([]string, error) {
	var ids []string
	err := p.db.WithContext(ctx).
		Model(&GameSnapshot{}).
		Where("phase IN ?", []string{"BIDDING", "PLAYING"}).
		Pluck("game_id", &ids).Error
	return ids, err
}

func (p *Postgres) Delete(ctx context.Context, gameID string) error {
	return p.db.WithContext(ctx).Delete(&GameSnapshot{}, "game_id = ?", gameID).Error
}
