package engine

import "fmt"

type EvaluationKind int

const (
	EvalUnavailable EvaluationKind = iota
	EvalScore
	EvalMate
)

// Evaluation is a position assessment: a centipawn score, a forced mate
// distance, or nothing when no engine verdict is available.
type Evaluation struct {
	Kind    EvaluationKind
	ScoreCP int
	MateIn  int
}

func Unavailable() Evaluation {
	return Evaluation{Kind: EvalUnavailable}
}

func Score(cp int) Evaluation {
	return Evaluation{Kind: EvalScore, ScoreCP: cp}
}

func MateIn(n int) Evaluation {
	return Evaluation{Kind: EvalMate, MateIn: n}
}

// Flip converts between side-to-move and White-relative points of view.
func (e Evaluation) Flip() Evaluation {
	switch e.Kind {
	case EvalScore:
		return Evaluation{Kind: EvalScore, ScoreCP: -e.ScoreCP}
	case EvalMate:
		return Evaluation{Kind: EvalMate, MateIn: -e.MateIn}
	default:
		return e
	}
}

func (e Evaluation) Pawns() float64 {
	return float64(e.ScoreCP) / 100.0
}

// String renders the display form: pawns with one decimal, or mate distance.
// Unavailable evaluations read as a neutral "0.0".
func (e Evaluation) String() string {
	switch e.Kind {
	case EvalScore:
		return fmt.Sprintf("%.1f", e.Pawns())
	case EvalMate:
		n := e.MateIn
		if n < 0 {
			n = -n
		}
		return fmt.Sprintf("Mate in %d", n)
	default:
		return "0.0"
	}
}
