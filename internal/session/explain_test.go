package session

import (
	"strings"
	"testing"

	"github.com/aryanrajsinha8010/chesslearning/internal/rules"
)

func TestExplainMove(t *testing.T) {
	g := rules.NewGame()
	facts, err := g.Facts("g1f3")
	if err != nil {
		t.Fatalf("Facts: %v", err)
	}
	if got := ExplainMove(facts); got != "Knight from g1 to f3" {
		t.Fatalf("plain move: %q", got)
	}

	for _, mv := range []string{"e2e4", "d7d5"} {
		if _, err := g.Push(mv); err != nil {
			t.Fatalf("Push(%s): %v", mv, err)
		}
	}
	facts, err = g.Facts("e4d5")
	if err != nil {
		t.Fatalf("Facts: %v", err)
	}
	if got := ExplainMove(facts); got != "Pawn from e4 to d5, capturing pawn" {
		t.Fatalf("capture move: %q", got)
	}

	if got := ExplainMove(rules.MoveFacts{}); got != "Invalid move" {
		t.Fatalf("empty facts: %q", got)
	}
}

func TestCoachCommentHeuristics(t *testing.T) {
	g := rules.NewGame()

	facts, _ := g.Facts("e2e4")
	if got := CoachComment(facts, g.FullmoveNumber()); !strings.Contains(got, "central control") {
		t.Fatalf("e4 comment: %q", got)
	}

	facts, _ = g.Facts("g1f3")
	got := CoachComment(facts, g.FullmoveNumber())
	if !strings.Contains(got, "development") {
		t.Fatalf("Nf3 comment: %q", got)
	}
	// development praise is an opening-phase comment only
	if got := CoachComment(facts, 20); strings.Contains(got, "development! ") {
		t.Fatalf("late development should not be praised: %q", got)
	}

	facts, _ = g.Facts("a2a3")
	if got := CoachComment(facts, 1); !strings.Contains(got, "opening") {
		t.Fatalf("quiet opening move comment: %q", got)
	}
	if got := CoachComment(facts, 15); !strings.Contains(got, "middlegame") {
		t.Fatalf("middlegame comment: %q", got)
	}
	if got := CoachComment(facts, 30); !strings.Contains(got, "endgame") {
		t.Fatalf("endgame comment: %q", got)
	}
}

func TestCoachCommentCaptureAndCheck(t *testing.T) {
	g := rules.NewGame()
	for _, mv := range []string{"e2e4", "d7d5"} {
		if _, err := g.Push(mv); err != nil {
			t.Fatalf("Push(%s): %v", mv, err)
		}
	}
	facts, _ := g.Facts("e4d5")
	got := CoachComment(facts, g.FullmoveNumber())
	if !strings.Contains(got, "Good capture!") || !strings.Contains(got, "pawn") {
		t.Fatalf("capture comment: %q", got)
	}
}
