package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresRepository archives games in a finished_games table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *PostgresRepository) InsertGame(ctx context.Context, rec *GameRecord) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("nil game record")
	}
	movesUCIRaw, _ := json.Marshal(rec.MovesUCI)
	movesSANRaw, _ := json.Marshal(rec.MovesSAN)

	q := `INSERT INTO finished_games (
	    session_id, mode, difficulty, result, result_method,
	    moves_uci, moves_san, pgn, started_at, ended_at, duration_ms
	  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	  ON CONFLICT (session_id) DO NOTHING
	  RETURNING id`

	var id sql.NullInt64
	err := r.db.QueryRowContext(ctx, q,
		rec.SessionID, rec.Mode, rec.Difficulty,
		rec.Result, rec.Method,
		string(movesUCIRaw), string(movesSANRaw), rec.PGN,
		rec.StartedAt, rec.EndedAt, rec.DurationMS,
	).Scan(&id)
	if err == sql.ErrNoRows {
		// conflict path: the session was already archived
		return r.lookupID(ctx, rec.SessionID)
	}
	if err != nil {
		return 0, err
	}
	return id.Int64, nil
}

func (r *PostgresRepository) lookupID(ctx context.Context, sessionID string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM finished_games WHERE session_id = $1`, sessionID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepository) GetGame(ctx context.Context, id int64) (*GameRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT
	    id, session_id, mode, difficulty, result, result_method,
	    moves_uci, moves_san, pgn, started_at, ended_at, duration_ms
	  FROM finished_games WHERE id = $1`, id)
	return scanRecord(row)
}

func (r *PostgresRepository) GetRecentGames(ctx context.Context, limit int) ([]*GameRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
	    id, session_id, mode, difficulty, result, result_method,
	    moves_uci, moves_san, pgn, started_at, ended_at, duration_ms
	  FROM finished_games ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*GameRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*GameRecord, error) {
	var rec GameRecord
	var movesUCIRaw, movesSANRaw string
	err := row.Scan(
		&rec.ID, &rec.SessionID, &rec.Mode, &rec.Difficulty,
		&rec.Result, &rec.Method,
		&movesUCIRaw, &movesSANRaw, &rec.PGN,
		&rec.StartedAt, &rec.EndedAt, &rec.DurationMS,
	)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(movesUCIRaw), &rec.MovesUCI)
	_ = json.Unmarshal([]byte(movesSANRaw), &rec.MovesSAN)
	return &rec, nil
}
