// Package archive persists finished games for later review.
package archive

import (
	"context"
	"time"
)

// GameRecord is one finished game as stored in the archive.
type GameRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"`
	Difficulty int       `json:"difficulty"`
	Result     string    `json:"result"`
	Method     string    `json:"method"`
	MovesUCI   []string  `json:"moves_uci"`
	MovesSAN   []string  `json:"moves_san"`
	PGN        string    `json:"pgn"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Repository stores finished games. InsertGame is idempotent per session:
// re-inserting the same session id is a no-op.
type Repository interface {
	InsertGame(ctx context.Context, rec *GameRecord) (int64, error)
	GetGame(ctx context.Context, id int64) (*GameRecord, error)
	GetRecentGames(ctx context.Context, limit int) ([]*GameRecord, error)
	Close() error
}
