package session

import (
	"strings"

	"github.com/aryanrajsinha8010/chesslearning/internal/rules"
)

// ExplainMove renders a short deterministic description of a candidate move:
// piece and squares, plus capture, check, and promotion notes.
func ExplainMove(f rules.MoveFacts) string {
	if f.Piece == "" {
		return "Invalid move"
	}
	var sb strings.Builder
	sb.WriteString(capitalize(f.Piece))
	sb.WriteString(" from ")
	sb.WriteString(f.From)
	sb.WriteString(" to ")
	sb.WriteString(f.To)
	if f.Capture {
		sb.WriteString(", capturing ")
		if f.CapturedPiece != "" {
			sb.WriteString(f.CapturedPiece)
		} else {
			sb.WriteString("a piece")
		}
	}
	if f.Promotion != "" {
		sb.WriteString(", promoting to ")
		sb.WriteString(f.Promotion)
	}
	if f.GivesCheck {
		sb.WriteString(", giving check")
	}
	return sb.String()
}

// CoachComment produces the coaching line for one applied move.
// fullmoveNumber is the move counter of the position before the move.
func CoachComment(f rules.MoveFacts, fullmoveNumber int) string {
	if f.Piece == "" {
		return "Unable to analyze this move."
	}

	var comments []string

	if f.Capture {
		captured := f.CapturedPiece
		if captured == "" {
			captured = "piece"
		}
		comments = append(comments, "Good capture! Taking the "+captured+" gains material advantage.")
	}
	if f.GivesCheck {
		comments = append(comments, "Nice check! Putting pressure on the opponent's king.")
	}
	if f.CenterTarget && (f.Piece == "pawn" || f.Piece == "knight") {
		comments = append(comments, "Good central control! Controlling the center is important in chess.")
	}
	if f.Development && fullmoveNumber <= 10 {
		comments = append(comments, "Good development! Getting your pieces into play early is a key principle.")
	}
	if f.Castling {
		comments = append(comments, "Good castling! This move protects your king and connects your rooks.")
	}

	if len(comments) == 0 {
		switch {
		case fullmoveNumber <= 10:
			comments = append(comments, "Remember to focus on development, central control, and king safety in the opening.")
		case fullmoveNumber <= 25:
			comments = append(comments, "In the middlegame, look for tactical opportunities and strategic advantages.")
		default:
			comments = append(comments, "In the endgame, activate your king and try to promote your pawns.")
		}
	}

	return strings.Join(comments, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
