package rules

import (
	"strings"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestNewGameStartPosition(t *testing.T) {
	g := NewGame()
	if g.FEN() != startFEN {
		t.Fatalf("unexpected start FEN: %s", g.FEN())
	}
	if g.Turn() != "white" || !g.WhiteToMove() {
		t.Fatalf("expected white to move, got %s", g.Turn())
	}
	if n := len(g.LegalMoves()); n != 20 {
		t.Fatalf("expected 20 legal moves at start, got %d", n)
	}
}

func TestPushAndReplayRoundTrip(t *testing.T) {
	g := NewGame()
	for _, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		if _, err := g.Push(mv); err != nil {
			t.Fatalf("Push(%s): %v", mv, err)
		}
	}
	if got := g.MovesUCI(); len(got) != 3 || got[0] != "e2e4" || got[2] != "g1f3" {
		t.Fatalf("unexpected history: %v", got)
	}
	replayed, err := Replay(g.MovesUCI())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if replayed.FEN() != g.FEN() {
		t.Fatalf("replay FEN mismatch: %s vs %s", replayed.FEN(), g.FEN())
	}
}

func TestUndoByTruncatedReplay(t *testing.T) {
	g := NewGame()
	if _, err := g.Push("e2e4"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	history := g.MovesUCI()
	back, err := Replay(history[:len(history)-1])
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if back.FEN() != startFEN {
		t.Fatalf("truncated replay did not restore start position: %s", back.FEN())
	}
}

func TestDecodeAcceptsSANAndUCI(t *testing.T) {
	g := NewGame()
	if got, err := g.Decode("Nf3"); err != nil || got != "g1f3" {
		t.Fatalf("Decode SAN: got %q err %v", got, err)
	}
	if got, err := g.Decode("e2e4"); err != nil || got != "e2e4" {
		t.Fatalf("Decode UCI: got %q err %v", got, err)
	}
	if _, err := g.Decode("xx99"); err == nil {
		t.Fatalf("expected error for nonsense move")
	}
}

func TestIsLegalAndPushIllegal(t *testing.T) {
	g := NewGame()
	if !g.IsLegal("e2e4") {
		t.Fatalf("e2e4 should be legal at start")
	}
	if g.IsLegal("e2e5") {
		t.Fatalf("e2e5 should be illegal at start")
	}
	if _, err := g.Push("e2e5"); err == nil {
		t.Fatalf("Push of illegal move should fail")
	}
}

func TestFactsCapture(t *testing.T) {
	g := NewGame()
	for _, mv := range []string{"e2e4", "d7d5"} {
		if _, err := g.Push(mv); err != nil {
			t.Fatalf("Push(%s): %v", mv, err)
		}
	}
	facts, err := g.Facts("e4d5")
	if err != nil {
		t.Fatalf("Facts: %v", err)
	}
	if facts.Piece != "pawn" || !facts.Capture || facts.CapturedPiece != "pawn" {
		t.Fatalf("unexpected capture facts: %+v", facts)
	}
	if !facts.CenterTarget {
		t.Fatalf("d5 should count as a center square")
	}
}

func TestFactsDevelopment(t *testing.T) {
	g := NewGame()
	facts, err := g.Facts("g1f3")
	if err != nil {
		t.Fatalf("Facts: %v", err)
	}
	if facts.Piece != "knight" || !facts.Development {
		t.Fatalf("knight from the back rank should be development: %+v", facts)
	}
	if facts.Capture || facts.GivesCheck || facts.CenterTarget {
		t.Fatalf("unexpected flags: %+v", facts)
	}
}

func TestFoolsMateOutcome(t *testing.T) {
	g := NewGame()
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if _, err := g.Push(mv); err != nil {
			t.Fatalf("Push(%s): %v", mv, err)
		}
	}
	if !g.GameOver() || !g.IsCheckmate() {
		t.Fatalf("fool's mate should end the game by checkmate")
	}
	result, method := g.Outcome()
	if result != "black" {
		t.Fatalf("expected black win, got %q", result)
	}
	if !strings.Contains(method, "checkmate") {
		t.Fatalf("expected checkmate method, got %q", method)
	}
	if len(g.LegalMoves()) != 0 {
		t.Fatalf("no legal moves should remain after mate")
	}
}

func TestVerifier(t *testing.T) {
	v := Verifier{}
	if !v.LegalMove(nil, "e2e4") {
		t.Fatalf("e2e4 is legal from the start position")
	}
	if v.LegalMove(nil, "e2e5") {
		t.Fatalf("e2e5 is not legal from the start position")
	}
	if !v.LegalMove([]string{"e2e4"}, "e7e5") {
		t.Fatalf("e7e5 is legal after e2e4")
	}
	if v.LegalMove([]string{"bogus"}, "e2e4") {
		t.Fatalf("broken history must fail verification")
	}
}

func TestMoveCountAndFullmoveNumber(t *testing.T) {
	g := NewGame()
	if g.FullmoveNumber() != 1 {
		t.Fatalf("start fullmove should be 1, got %d", g.FullmoveNumber())
	}
	for _, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		if _, err := g.Push(mv); err != nil {
			t.Fatalf("Push(%s): %v", mv, err)
		}
	}
	if g.MoveCount() != 3 {
		t.Fatalf("expected 3 moves, got %d", g.MoveCount())
	}
	if g.FullmoveNumber() != 2 {
		t.Fatalf("expected fullmove 2, got %d", g.FullmoveNumber())
	}
}
