// Package rules adapts the third-party chess rules library behind the small
// surface the session core needs: legality, move application, notation, and
// terminal-state detection. Nothing outside this package imports the library.
package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

// Game is one chess game replayable from the start position.
type Game struct {
	inner *nchess.Game
}

func NewGame() *Game {
	return &Game{inner: nchess.NewGame()}
}

// Replay rebuilds a game by applying UCI moves from the start position.
func Replay(movesUCI []string) (*Game, error) {
	g := NewGame()
	for _, mv := range movesUCI {
		if _, err := g.Push(mv); err != nil {
			return nil, fmt.Errorf("replay move %s: %w", mv, err)
		}
	}
	return g, nil
}

func (g *Game) Clone() *Game {
	return &Game{inner: g.inner.Clone()}
}

// FEN returns the canonical serialization of the current position. Two
// positions with equal FEN are interchangeable for caching purposes.
func (g *Game) FEN() string {
	return g.inner.FEN()
}

func (g *Game) Turn() string {
	if g.inner.Position().Turn() == nchess.White {
		return "white"
	}
	return "black"
}

func (g *Game) WhiteToMove() bool {
	return g.inner.Position().Turn() == nchess.White
}

// LegalMoves returns every legal move in the current position in UCI form.
func (g *Game) LegalMoves() []string {
	valid := g.inner.ValidMoves()
	notation := nchess.UCINotation{}
	pos := g.inner.Position()
	out := make([]string, 0, len(valid))
	for i := range valid {
		out = append(out, strings.ToLower(notation.Encode(pos, &valid[i])))
	}
	return out
}

func (g *Game) IsLegal(uci string) bool {
	target := strings.ToLower(strings.TrimSpace(uci))
	for _, mv := range g.LegalMoves() {
		if mv == target {
			return true
		}
	}
	return false
}

// Decode accepts SAN or UCI input and returns the canonical UCI encoding.
func (g *Game) Decode(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty move")
	}
	pos := g.inner.Position()
	notationSAN := nchess.AlgebraicNotation{}
	notationUCI := nchess.UCINotation{}
	mv, err := notationSAN.Decode(pos, text)
	if err != nil {
		mv, err = notationUCI.Decode(pos, strings.ToLower(text))
		if err != nil {
			return "", fmt.Errorf("decode move %q: %w", text, err)
		}
	}
	return strings.ToLower(notationUCI.Encode(pos, mv)), nil
}

// Push applies a UCI move and returns its SAN encoding.
func (g *Game) Push(uci string) (string, error) {
	pos := g.inner.Position()
	notationUCI := nchess.UCINotation{}
	mv, err := notationUCI.Decode(pos, strings.ToLower(strings.TrimSpace(uci)))
	if err != nil {
		return "", fmt.Errorf("decode move %s: %w", uci, err)
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := g.inner.Move(mv, nil); err != nil {
		return "", fmt.Errorf("apply move %s: %w", uci, err)
	}
	return san, nil
}

func (g *Game) IsCheck() bool {
	moves := g.inner.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(nchess.Check)
}

func (g *Game) IsCheckmate() bool {
	return g.inner.Method() == nchess.Checkmate
}

func (g *Game) IsStalemate() bool {
	return g.inner.Method() == nchess.Stalemate
}

func (g *Game) InsufficientMaterial() bool {
	return g.inner.Method() == nchess.InsufficientMaterial
}

func (g *Game) GameOver() bool {
	return g.inner.Outcome() != nchess.NoOutcome
}

// Outcome returns ("white"|"black"|"draw"|"", method) once the game is over.
func (g *Game) Outcome() (string, string) {
	switch g.inner.Outcome() {
	case nchess.WhiteWon:
		return "white", strings.ToLower(g.inner.Method().String())
	case nchess.BlackWon:
		return "black", strings.ToLower(g.inner.Method().String())
	case nchess.Draw:
		return "draw", strings.ToLower(g.inner.Method().String())
	default:
		return "", ""
	}
}

func (g *Game) PGN() string {
	return g.inner.String()
}

func (g *Game) MovesUCI() []string {
	moves := g.inner.Moves()
	positions := g.inner.Positions()
	notation := nchess.UCINotation{}
	out := make([]string, 0, len(moves))
	for i, mv := range moves {
		if i < len(positions) {
			out = append(out, strings.ToLower(notation.Encode(positions[i], mv)))
		}
	}
	return out
}

func (g *Game) MovesSAN() []string {
	moves := g.inner.Moves()
	positions := g.inner.Positions()
	notation := nchess.AlgebraicNotation{}
	out := make([]string, 0, len(moves))
	for i, mv := range moves {
		if i < len(positions) {
			out = append(out, notation.Encode(positions[i], mv))
		}
	}
	return out
}

func (g *Game) MoveCount() int {
	return len(g.inner.Moves())
}

func (g *Game) FullmoveNumber() int {
	return len(g.inner.Moves())/2 + 1
}

// MoveFacts describes a candidate move in the current position, used to
// derive hint explanations and coaching comments.
type MoveFacts struct {
	Piece         string
	From          string
	To            string
	Capture       bool
	CapturedPiece string
	GivesCheck    bool
	CenterTarget  bool
	Development   bool
	Castling      bool
	Promotion     string
}

func (g *Game) Facts(uci string) (MoveFacts, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	pos := g.inner.Position()
	notation := nchess.UCINotation{}
	mv, err := notation.Decode(pos, uci)
	if err != nil {
		return MoveFacts{}, fmt.Errorf("decode move %s: %w", uci, err)
	}

	board := pos.Board()
	piece := board.Piece(mv.S1())
	target := board.Piece(mv.S2())

	facts := MoveFacts{
		Piece: pieceName(piece.Type()),
		From:  mv.S1().String(),
		To:    mv.S2().String(),
	}
	if len(uci) == 5 {
		facts.Promotion = promotionName(uci[4])
	}

	switch mv.S2() {
	case nchess.E4, nchess.D4, nchess.E5, nchess.D5:
		facts.CenterTarget = true
	}

	if piece.Type() == nchess.Knight || piece.Type() == nchess.Bishop {
		rank := mv.S1().Rank()
		if rank == nchess.Rank1 || rank == nchess.Rank8 {
			facts.Development = true
		}
	}

	clone := g.inner.Clone()
	if err := clone.Move(mv, nil); err != nil {
		return MoveFacts{}, fmt.Errorf("apply move %s: %w", uci, err)
	}
	applied := clone.Moves()
	last := applied[len(applied)-1]

	facts.GivesCheck = last.HasTag(nchess.Check)
	facts.Castling = last.HasTag(nchess.KingSideCastle) || last.HasTag(nchess.QueenSideCastle)
	if last.HasTag(nchess.Capture) || last.HasTag(nchess.EnPassant) {
		facts.Capture = true
		if last.HasTag(nchess.EnPassant) || target == nchess.NoPiece {
			facts.CapturedPiece = "pawn"
		} else {
			facts.CapturedPiece = pieceName(target.Type())
		}
	}

	return facts, nil
}

// OpeningAfter returns the ECO code and title matching the game after the
// given move is applied. Empty strings when out of book.
func (g *Game) OpeningAfter(uci string) (string, string) {
	target := g.inner
	mvText := strings.ToLower(strings.TrimSpace(uci))
	if mvText != "" {
		clone := g.inner.Clone()
		pos := clone.Position()
		if pos != nil {
			notation := nchess.UCINotation{}
			if mv, err := notation.Decode(pos, mvText); err == nil {
				_ = clone.Move(mv, nil)
				target = clone
			}
		}
	}
	book := opening.NewBookECO()
	if book == nil {
		return "", ""
	}
	if eco := book.Find(target.Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}

// Verifier answers legality checks for engine-suggested moves. The engine
// worker consults it before trusting any best-move reply.
type Verifier struct{}

func (Verifier) LegalMove(movesUCI []string, candidate string) bool {
	g, err := Replay(movesUCI)
	if err != nil {
		return false
	}
	return g.IsLegal(candidate)
}

func pieceName(pt nchess.PieceType) string {
	switch pt {
	case nchess.Pawn:
		return "pawn"
	case nchess.Knight:
		return "knight"
	case nchess.Bishop:
		return "bishop"
	case nchess.Rook:
		return "rook"
	case nchess.Queen:
		return "queen"
	case nchess.King:
		return "king"
	default:
		return ""
	}
}

func promotionName(c byte) string {
	switch c {
	case 'q':
		return "queen"
	case 'r':
		return "rook"
	case 'b':
		return "bishop"
	case 'n':
		return "knight"
	default:
		return ""
	}
}
