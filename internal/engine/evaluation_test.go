package engine

import "testing"

func TestEvaluationString(t *testing.T) {
	if got := Score(34).String(); got != "0.3" {
		t.Fatalf("Score(34) = %q", got)
	}
	if got := Score(-150).String(); got != "-1.5" {
		t.Fatalf("Score(-150) = %q", got)
	}
	if got := MateIn(-2).String(); got != "Mate in 2" {
		t.Fatalf("MateIn(-2) = %q", got)
	}
	if got := Unavailable().String(); got != "0.0" {
		t.Fatalf("Unavailable = %q", got)
	}
}

func TestEvaluationFlip(t *testing.T) {
	if got := Score(120).Flip(); got.ScoreCP != -120 {
		t.Fatalf("flipped score: %+v", got)
	}
	if got := MateIn(3).Flip(); got.MateIn != -3 {
		t.Fatalf("flipped mate: %+v", got)
	}
	if got := Unavailable().Flip(); got.Kind != EvalUnavailable {
		t.Fatalf("flip must keep unavailable: %+v", got)
	}
}
