// Package session holds the orchestration core: game sessions, the manager
// that routes them to the engine worker, the move cache policy, and the
// random-move fallback that keeps games playable when the engine is gone.
package session

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aryanrajsinha8010/chesslearning/internal/engine"
	"github.com/aryanrajsinha8010/chesslearning/internal/rules"
)

// Mode selects who the engine plays for. Fixed for a session's lifetime.
type Mode string

const (
	ModePlay         Mode = "play"
	ModePractice     Mode = "practice"
	ModeSelfPractice Mode = "self-practice"
)

// ParseMode normalizes user-facing mode names. "Self-Practice" and
// "selfpractice" both resolve; anything else is rejected.
func ParseMode(text string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "play":
		return ModePlay, nil
	case "practice":
		return ModePractice, nil
	case "self-practice", "selfpractice", "self practice":
		return ModeSelfPractice, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, text)
	}
}

// Move is a from/to square pair with an optional promotion piece letter
// (q, r, b, n). Promotion defaults to queen when required and omitted.
type Move struct {
	From      string
	To        string
	Promotion string
}

func (m Move) uci() string {
	return strings.ToLower(strings.TrimSpace(m.From) + strings.TrimSpace(m.To) + strings.TrimSpace(m.Promotion))
}

// MoveInfo describes one applied move for API replies.
type MoveInfo struct {
	From string
	To   string
	San  string
}

// Hint is an engine suggestion with its derived explanation. The opening
// fields are set when the resulting position is still in the ECO book.
type Hint struct {
	From        string
	To          string
	San         string
	Explanation string
	OpeningCode string
	OpeningName string
}

// GameState is a full snapshot of one session's game.
type GameState struct {
	GameID      string
	FEN         string
	Turn        string
	IsCheck     bool
	IsCheckmate bool
	IsStalemate bool
	IsGameOver  bool
	MoveHistory []string
	Difficulty  int
	Mode        Mode
}

// MoveResult is the atomic reply to applyMove: the human move, the engine
// reply when one was made, and the post-move evaluation.
type MoveResult struct {
	State      GameState
	LastMove   *MoveInfo
	EngineMove *MoveInfo
	Evaluation engine.Evaluation
}

// Session is one logical game. All field access goes through mu; the manager
// holds the lock for the duration of each operation so apply and undo on the
// same game never race.
type Session struct {
	mu sync.Mutex

	ID           string
	Mode         Mode
	HumanIsWhite bool
	Difficulty   int

	game     *rules.Game
	lastHint *Hint

	createdAt time.Time

	// deadline is the expiry instant in UnixNano. Atomic because the TTL
	// sweeper reads it without taking the session lock.
	deadline atomic.Int64
}

func (s *Session) snapshot() GameState {
	check, mate, stale := s.game.IsCheck(), s.game.IsCheckmate(), s.game.IsStalemate()
	return GameState{
		GameID:      s.ID,
		FEN:         s.game.FEN(),
		Turn:        s.game.Turn(),
		IsCheck:     check,
		IsCheckmate: mate,
		IsStalemate: stale,
		IsGameOver:  s.game.GameOver(),
		MoveHistory: s.game.MovesSAN(),
		Difficulty:  s.Difficulty,
		Mode:        s.Mode,
	}
}

func (s *Session) humanToMove() bool {
	white := s.game.WhiteToMove()
	return (s.HumanIsWhite && white) || (!s.HumanIsWhite && !white)
}
