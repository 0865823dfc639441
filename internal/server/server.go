// Package server exposes the session manager over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/aryanrajsinha8010/chesslearning/internal/engine"
	"github.com/aryanrajsinha8010/chesslearning/internal/session"
	"github.com/aryanrajsinha8010/chesslearning/pkg/gamedto"
)

const requestTimeout = 30 * time.Second

type Server struct {
	mgr    *session.Manager
	logger *zap.Logger
	srv    *fasthttp.Server
}

func New(mgr *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{mgr: mgr, logger: logger}
	s.srv = &fasthttp.Server{
		Handler:      s.handle,
		Name:         "chesslearning",
		ReadTimeout:  requestTimeout,
		WriteTimeout: requestTimeout,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("api server listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

// Handler returns the raw request handler, used by in-memory listener tests.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.handle
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/api/new_game" && method == fasthttp.MethodPost:
		s.handleNewGame(ctx)
	case path == "/api/move" && method == fasthttp.MethodPost:
		s.handleMove(ctx)
	case path == "/api/hint" && method == fasthttp.MethodPost:
		s.handleHint(ctx)
	case path == "/api/analyze" && method == fasthttp.MethodPost:
		s.handleAnalyze(ctx)
	case path == "/api/undo" && method == fasthttp.MethodPost:
		s.handleUndo(ctx)
	case path == "/api/set_difficulty" && method == fasthttp.MethodPost:
		s.handleSetDifficulty(ctx)
	case path == "/api/coach_comment" && method == fasthttp.MethodPost:
		s.handleCoachComment(ctx)
	case path == "/api/state" && method == fasthttp.MethodGet:
		s.handleState(ctx)
	case path == "/api/games" && method == fasthttp.MethodGet:
		s.handleGames(ctx)
	case path == "/healthz" && method == fasthttp.MethodGet:
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) handleNewGame(ctx *fasthttp.RequestCtx) {
	var req gamedto.NewGameRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if req.Mode == "" {
		req.Mode = "Play"
	}
	humanIsWhite := req.Color != "black"

	rctx, cancel := s.reqCtx()
	defer cancel()
	state, err := s.mgr.CreateSession(rctx, req.Mode, humanIsWhite)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, stateDTO(state))
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	var req gamedto.MoveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	rctx, cancel := s.reqCtx()
	defer cancel()
	result, err := s.mgr.ApplyMove(rctx, req.GameID, session.Move{
		From:      req.From,
		To:        req.To,
		Promotion: req.Promotion,
	})
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}

	reply := gamedto.MoveReply{
		GameState:  stateDTO(result.State),
		LastMove:   moveInfoDTO(result.LastMove),
		EngineMove: moveInfoDTO(result.EngineMove),
	}
	eval := evalDTO(result.Evaluation)
	reply.Evaluation = &eval
	s.writeJSON(ctx, fasthttp.StatusOK, reply)
}

func (s *Server) handleHint(ctx *fasthttp.RequestCtx) {
	var req gamedto.SessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	rctx, cancel := s.reqCtx()
	defer cancel()
	hint, err := s.mgr.Hint(rctx, req.GameID)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	dto := gamedto.Hint{
		From:        hint.From,
		To:          hint.To,
		San:         hint.San,
		Explanation: hint.Explanation,
	}
	if hint.OpeningCode != "" {
		dto.Opening = hint.OpeningCode + " " + hint.OpeningName
	}
	s.writeJSON(ctx, fasthttp.StatusOK, gamedto.HintReply{Hint: dto})
}

func (s *Server) handleAnalyze(ctx *fasthttp.RequestCtx) {
	var req gamedto.SessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	rctx, cancel := s.reqCtx()
	defer cancel()
	eval, err := s.mgr.Analyze(rctx, req.GameID)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, gamedto.AnalyzeReply{Evaluation: evalDTO(eval)})
}

func (s *Server) handleUndo(ctx *fasthttp.RequestCtx) {
	var req gamedto.SessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	rctx, cancel := s.reqCtx()
	defer cancel()
	state, err := s.mgr.Undo(rctx, req.GameID)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, stateDTO(state))
}

func (s *Server) handleSetDifficulty(ctx *fasthttp.RequestCtx) {
	var req gamedto.DifficultyRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if req.Difficulty == 0 {
		req.Difficulty = 3
	}
	rctx, cancel := s.reqCtx()
	defer cancel()
	level, err := s.mgr.SetDifficulty(rctx, req.GameID, req.Difficulty)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, gamedto.DifficultyReply{Success: true, Difficulty: level})
}

func (s *Server) handleCoachComment(ctx *fasthttp.RequestCtx) {
	var req gamedto.CoachRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	moveIdx := -1
	if req.MoveIdx != nil {
		moveIdx = *req.MoveIdx
	}
	rctx, cancel := s.reqCtx()
	defer cancel()
	comment, err := s.mgr.CoachComment(rctx, req.GameID, moveIdx)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, gamedto.CoachReply{Comment: comment})
}

func (s *Server) handleState(ctx *fasthttp.RequestCtx) {
	gameID := string(ctx.QueryArgs().Peek("gameId"))
	rctx, cancel := s.reqCtx()
	defer cancel()
	state, err := s.mgr.State(rctx, gameID)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, stateDTO(state))
}

func (s *Server) handleGames(ctx *fasthttp.RequestCtx) {
	limit := ctx.QueryArgs().GetUintOrZero("limit")
	rctx, cancel := s.reqCtx()
	defer cancel()
	records, err := s.mgr.RecentGames(rctx, limit)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusInternalServerError, err)
		return
	}
	reply := gamedto.GamesReply{Games: []gamedto.ArchivedGame{}}
	for _, rec := range records {
		reply.Games = append(reply.Games, gamedto.ArchivedGame{
			ID:         rec.ID,
			Mode:       rec.Mode,
			Difficulty: rec.Difficulty,
			Result:     rec.Result,
			Method:     rec.Method,
			MovesSAN:   rec.MovesSAN,
			PGN:        rec.PGN,
			EndedAt:    rec.EndedAt.UTC().Format(time.RFC3339),
		})
	}
	s.writeJSON(ctx, fasthttp.StatusOK, reply)
}

func (s *Server) reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (s *Server) writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		s.writeErrorMessage(ctx, fasthttp.StatusBadRequest, "Invalid game ID")
	case errors.Is(err, session.ErrIllegalMove):
		s.writeErrorMessage(ctx, fasthttp.StatusBadRequest, "Illegal move")
	case errors.Is(err, session.ErrInvalidMode):
		s.writeErrorMessage(ctx, fasthttp.StatusBadRequest, "Invalid game mode")
	case errors.Is(err, session.ErrGameFinished):
		s.writeErrorMessage(ctx, fasthttp.StatusBadRequest, "Game is already over")
	case errors.Is(err, session.ErrInvalidMoveIndex):
		s.writeErrorMessage(ctx, fasthttp.StatusBadRequest, "Invalid move index")
	default:
		s.logger.Error("request failed", zap.String("path", string(ctx.Path())), zap.Error(err))
		s.writeErrorMessage(ctx, fasthttp.StatusInternalServerError, "Internal error")
	}
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, err error) {
	s.writeErrorMessage(ctx, status, err.Error())
}

func (s *Server) writeErrorMessage(ctx *fasthttp.RequestCtx, status int, msg string) {
	s.writeJSON(ctx, status, gamedto.ErrorReply{Error: msg})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("response marshal failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func stateDTO(st session.GameState) gamedto.GameState {
	history := st.MoveHistory
	if history == nil {
		history = []string{}
	}
	return gamedto.GameState{
		GameID:      st.GameID,
		FEN:         st.FEN,
		Turn:        st.Turn,
		IsCheck:     st.IsCheck,
		IsCheckmate: st.IsCheckmate,
		IsStalemate: st.IsStalemate,
		IsGameOver:  st.IsGameOver,
		MoveHistory: history,
	}
}

func moveInfoDTO(mi *session.MoveInfo) *gamedto.MoveInfo {
	if mi == nil {
		return nil
	}
	return &gamedto.MoveInfo{From: mi.From, To: mi.To, San: mi.San}
}

// evalDTO keeps the wire contract of the reference API: exactly one of
// score/mate is set, and a missing analysis reads as a neutral score.
func evalDTO(e engine.Evaluation) gamedto.Evaluation {
	switch e.Kind {
	case engine.EvalMate:
		n := e.MateIn
		return gamedto.Evaluation{Mate: &n}
	case engine.EvalScore:
		score := e.Pawns()
		return gamedto.Evaluation{Score: &score}
	default:
		zero := 0.0
		return gamedto.Evaluation{Score: &zero}
	}
}
