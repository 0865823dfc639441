// Package gamedto defines the JSON shapes of the web API.
package gamedto

// GameState mirrors the session snapshot returned by most endpoints.
type GameState struct {
	GameID      string   `json:"gameId,omitempty"`
	FEN         string   `json:"fen"`
	Turn        string   `json:"turn"`
	IsCheck     bool     `json:"isCheck"`
	IsCheckmate bool     `json:"isCheckmate"`
	IsStalemate bool     `json:"isStalemate"`
	IsGameOver  bool     `json:"isGameOver"`
	MoveHistory []string `json:"moveHistory"`
}

// Evaluation carries either a White-relative pawn score or a mate distance.
// Exactly one field is non-null; an unavailable analysis reads as score 0.0.
type Evaluation struct {
	Score *float64 `json:"score"`
	Mate  *int     `json:"mate"`
}

type MoveInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
	San  string `json:"san"`
}

// MoveReply is the combined answer to a move request: updated state, the
// human move, the engine reply when one was made, and the evaluation.
type MoveReply struct {
	GameState
	LastMove   *MoveInfo   `json:"lastMove,omitempty"`
	EngineMove *MoveInfo   `json:"engineMove,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

type Hint struct {
	From        string `json:"from"`
	To          string `json:"to"`
	San         string `json:"san,omitempty"`
	Explanation string `json:"explanation"`
	Opening     string `json:"opening,omitempty"`
}

type HintReply struct {
	Hint Hint `json:"hint"`
}

type AnalyzeReply struct {
	Evaluation Evaluation `json:"evaluation"`
}

type DifficultyReply struct {
	Success    bool `json:"success"`
	Difficulty int  `json:"difficulty"`
}

type CoachReply struct {
	Comment string `json:"comment"`
}

// ArchivedGame is one finished game in the /api/games listing.
type ArchivedGame struct {
	ID         int64    `json:"id"`
	Mode       string   `json:"mode"`
	Difficulty int      `json:"difficulty"`
	Result     string   `json:"result"`
	Method     string   `json:"method"`
	MovesSAN   []string `json:"movesSan"`
	PGN        string   `json:"pgn"`
	EndedAt    string   `json:"endedAt"`
}

type GamesReply struct {
	Games []ArchivedGame `json:"games"`
}

type ErrorReply struct {
	Error string `json:"error"`
}

// Requests

type NewGameRequest struct {
	Mode  string `json:"mode"`
	Color string `json:"color"`
}

type MoveRequest struct {
	GameID    string `json:"gameId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type SessionRequest struct {
	GameID string `json:"gameId"`
}

type DifficultyRequest struct {
	GameID     string `json:"gameId"`
	Difficulty int    `json:"difficulty"`
}

type CoachRequest struct {
	GameID  string `json:"gameId"`
	MoveIdx *int   `json:"moveIdx,omitempty"`
}
