package archive

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRepositoryInsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	rec := &GameRecord{
		SessionID: "s1",
		Mode:      "play",
		Result:    "white",
		Method:    "checkmate",
		MovesSAN:  []string{"e4", "e5"},
		EndedAt:   time.Now(),
	}
	id, err := repo.InsertGame(ctx, rec)
	if err != nil || id == 0 {
		t.Fatalf("InsertGame: id=%d err=%v", id, err)
	}

	got, err := repo.GetGame(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.SessionID != "s1" || got.Result != "white" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if missing, err := repo.GetGame(ctx, 999); err != nil || missing != nil {
		t.Fatalf("missing id should return nil, got %+v err %v", missing, err)
	}
}

func TestMemoryRepositoryIdempotentPerSession(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first, err := repo.InsertGame(ctx, &GameRecord{SessionID: "s1"})
	if err != nil {
		t.Fatalf("InsertGame: %v", err)
	}
	second, err := repo.InsertGame(ctx, &GameRecord{SessionID: "s1", Result: "draw"})
	if err != nil {
		t.Fatalf("InsertGame again: %v", err)
	}
	if first != second {
		t.Fatalf("re-insert must return the original id: %d vs %d", first, second)
	}
	games, _ := repo.GetRecentGames(ctx, 10)
	if len(games) != 1 {
		t.Fatalf("duplicate session must not add a record: %d", len(games))
	}
}

func TestMemoryRepositoryRecentOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.InsertGame(ctx, &GameRecord{SessionID: id}); err != nil {
			t.Fatalf("InsertGame: %v", err)
		}
	}
	games, err := repo.GetRecentGames(ctx, 2)
	if err != nil || len(games) != 2 {
		t.Fatalf("GetRecentGames: %d err %v", len(games), err)
	}
	if games[0].SessionID != "c" || games[1].SessionID != "b" {
		t.Fatalf("expected newest first: %s, %s", games[0].SessionID, games[1].SessionID)
	}
}
