package server

import (
	"encoding/json"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/aryanrajsinha8010/chesslearning/internal/archive"
	"github.com/aryanrajsinha8010/chesslearning/internal/movecache"
	"github.com/aryanrajsinha8010/chesslearning/internal/session"
	"github.com/aryanrajsinha8010/chesslearning/pkg/gamedto"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mgr := session.NewManager(nil, movecache.NewMemoryStore(64), archive.NewMemoryRepository(), session.Config{DefaultDifficulty: 3}, nil)
	mgr.SetRandomSeed(1)
	return New(mgr, nil)
}

func doRequest(t *testing.T, s *Server, method, uri string, body any) (int, []byte) {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	s.Handler()(&ctx)
	return ctx.Response.StatusCode(), append([]byte(nil), ctx.Response.Body()...)
}

func TestNewGameMoveStateFlow(t *testing.T) {
	s := newTestServer(t)

	status, body := doRequest(t, s, fasthttp.MethodPost, "/api/new_game", gamedto.NewGameRequest{Mode: "Practice", Color: "white"})
	if status != fasthttp.StatusOK {
		t.Fatalf("new_game status %d: %s", status, body)
	}
	var created gamedto.GameState
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode new_game: %v", err)
	}
	if created.GameID == "" || created.Turn != "white" {
		t.Fatalf("unexpected state: %+v", created)
	}

	status, body = doRequest(t, s, fasthttp.MethodPost, "/api/move", gamedto.MoveRequest{GameID: created.GameID, From: "e2", To: "e4"})
	if status != fasthttp.StatusOK {
		t.Fatalf("move status %d: %s", status, body)
	}
	var moved gamedto.MoveReply
	if err := json.Unmarshal(body, &moved); err != nil {
		t.Fatalf("decode move: %v", err)
	}
	if moved.Turn != "black" || len(moved.MoveHistory) != 1 || moved.MoveHistory[0] != "e4" {
		t.Fatalf("unexpected move reply: %+v", moved)
	}
	if moved.LastMove == nil || moved.LastMove.San != "e4" {
		t.Fatalf("missing last move: %+v", moved.LastMove)
	}
	if moved.EngineMove != nil {
		t.Fatalf("practice mode must not auto-reply")
	}
	if moved.Evaluation == nil || moved.Evaluation.Score == nil || *moved.Evaluation.Score != 0.0 {
		t.Fatalf("no engine means a neutral evaluation: %+v", moved.Evaluation)
	}

	status, body = doRequest(t, s, fasthttp.MethodGet, "/api/state?gameId="+created.GameID, nil)
	if status != fasthttp.StatusOK {
		t.Fatalf("state status %d: %s", status, body)
	}
	var state gamedto.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.MoveHistory) != 1 {
		t.Fatalf("state history: %v", state.MoveHistory)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	status, body := doRequest(t, s, fasthttp.MethodPost, "/api/move", gamedto.MoveRequest{GameID: "missing", From: "e2", To: "e4"})
	if status != fasthttp.StatusBadRequest {
		t.Fatalf("unknown session status %d", status)
	}
	var errReply gamedto.ErrorReply
	if err := json.Unmarshal(body, &errReply); err != nil || errReply.Error != "Invalid game ID" {
		t.Fatalf("unexpected error payload: %s", body)
	}

	status, _ = doRequest(t, s, fasthttp.MethodPost, "/api/new_game", gamedto.NewGameRequest{Mode: "blitz"})
	if status != fasthttp.StatusBadRequest {
		t.Fatalf("invalid mode status %d", status)
	}

	created := createPracticeGame(t, s)
	status, body = doRequest(t, s, fasthttp.MethodPost, "/api/move", gamedto.MoveRequest{GameID: created, From: "e2", To: "e5"})
	if status != fasthttp.StatusBadRequest {
		t.Fatalf("illegal move status %d", status)
	}
	if err := json.Unmarshal(body, &errReply); err != nil || errReply.Error != "Illegal move" {
		t.Fatalf("unexpected error payload: %s", body)
	}

	status, _ = doRequest(t, s, fasthttp.MethodGet, "/api/unknown", nil)
	if status != fasthttp.StatusNotFound {
		t.Fatalf("unknown route status %d", status)
	}
}

func TestHintUndoAndDifficulty(t *testing.T) {
	s := newTestServer(t)
	created := createPracticeGame(t, s)

	status, body := doRequest(t, s, fasthttp.MethodPost, "/api/hint", gamedto.SessionRequest{GameID: created})
	if status != fasthttp.StatusOK {
		t.Fatalf("hint status %d: %s", status, body)
	}
	var hint gamedto.HintReply
	if err := json.Unmarshal(body, &hint); err != nil {
		t.Fatalf("decode hint: %v", err)
	}
	if hint.Hint.From == "" || hint.Hint.Explanation == "" {
		t.Fatalf("incomplete hint: %+v", hint.Hint)
	}

	status, body = doRequest(t, s, fasthttp.MethodPost, "/api/set_difficulty", gamedto.DifficultyRequest{GameID: created, Difficulty: 9})
	if status != fasthttp.StatusOK {
		t.Fatalf("set_difficulty status %d", status)
	}
	var diff gamedto.DifficultyReply
	if err := json.Unmarshal(body, &diff); err != nil || !diff.Success || diff.Difficulty != 4 {
		t.Fatalf("unexpected difficulty reply: %s", body)
	}

	doRequest(t, s, fasthttp.MethodPost, "/api/move", gamedto.MoveRequest{GameID: created, From: "e2", To: "e4"})
	status, body = doRequest(t, s, fasthttp.MethodPost, "/api/undo", gamedto.SessionRequest{GameID: created})
	if status != fasthttp.StatusOK {
		t.Fatalf("undo status %d", status)
	}
	var state gamedto.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode undo: %v", err)
	}
	if len(state.MoveHistory) != 0 {
		t.Fatalf("undo history: %v", state.MoveHistory)
	}
}

func createPracticeGame(t *testing.T, s *Server) string {
	t.Helper()
	status, body := doRequest(t, s, fasthttp.MethodPost, "/api/new_game", gamedto.NewGameRequest{Mode: "Practice", Color: "white"})
	if status != fasthttp.StatusOK {
		t.Fatalf("new_game status %d: %s", status, body)
	}
	var created gamedto.GameState
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode new_game: %v", err)
	}
	return created.GameID
}
