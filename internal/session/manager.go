package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aryanrajsinha8010/chesslearning/internal/archive"
	"github.com/aryanrajsinha8010/chesslearning/internal/engine"
	"github.com/aryanrajsinha8010/chesslearning/internal/movecache"
	"github.com/aryanrajsinha8010/chesslearning/internal/rules"
)

// EngineClient is the slice of the engine worker the manager depends on.
// A nil client means no engine: every move request falls back to random.
type EngineClient interface {
	Ready() bool
	BestMove(ctx context.Context, req engine.SearchRequest) (string, error)
	Evaluate(ctx context.Context, req engine.SearchRequest) (engine.Evaluation, error)
	ConfigureStrength(s engine.Strength)
}

type Config struct {
	// SessionTTL evicts sessions idle longer than this. Zero disables
	// the sweeper entirely.
	SessionTTL        time.Duration
	DefaultDifficulty int
}

// Manager owns the session table and mediates all engine access. Engine
// failures never surface to callers: a random legal move or a neutral
// evaluation is substituted instead.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	engine  EngineClient
	cache   movecache.Store
	archive archive.Repository
	cfg     Config
	logger  *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewManager(client EngineClient, cache movecache.Store, repo archive.Repository, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultDifficulty == 0 {
		cfg.DefaultDifficulty = 3
	}
	cfg.DefaultDifficulty = engine.ClampLevel(cfg.DefaultDifficulty)
	if cache == nil {
		cache = movecache.NewMemoryStore(0)
	}
	return &Manager{
		sessions: make(map[string]*Session),
		engine:   client,
		cache:    cache,
		archive:  repo,
		cfg:      cfg,
		logger:   logger,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRandomSeed makes the fallback move sequence reproducible.
func (m *Manager) SetRandomSeed(seed int64) {
	m.randMu.Lock()
	m.rand = rand.New(rand.NewSource(seed))
	m.randMu.Unlock()
}

// CreateSession starts a new game at the initial position. When the human
// plays Black and the engine has a side, the opening White move is computed
// and applied before the session is ever visible to the caller.
func (m *Manager) CreateSession(ctx context.Context, modeText string, humanIsWhite bool) (GameState, error) {
	mode, err := ParseMode(modeText)
	if err != nil {
		return GameState{}, err
	}

	s := &Session{
		ID:           uuid.NewString(),
		Mode:         mode,
		HumanIsWhite: humanIsWhite,
		Difficulty:   m.cfg.DefaultDifficulty,
		game:         rules.NewGame(),
		createdAt:    time.Now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !humanIsWhite && mode != ModeSelfPractice {
		if _, ok := m.engineReply(ctx, s); !ok {
			m.logger.Warn("opening engine move failed", zap.String("session_id", s.ID))
		}
	}

	m.touch(s)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("mode", string(mode)),
		zap.Bool("human_is_white", humanIsWhite),
	)
	return s.snapshot(), nil
}

// ApplyMove validates and applies one human move. In Play mode the engine's
// reply is computed synchronously and both moves come back in one result.
func (m *Manager) ApplyMove(ctx context.Context, id string, mv Move) (MoveResult, error) {
	s, err := m.lookup(id)
	if err != nil {
		return MoveResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.GameOver() {
		return MoveResult{}, ErrGameFinished
	}

	uci := mv.uci()
	if !s.game.IsLegal(uci) {
		// Pawn pushes to the last rank need a promotion piece; queen is
		// assumed when the caller omitted one.
		if mv.Promotion == "" && s.game.IsLegal(uci+"q") {
			uci += "q"
		} else {
			return MoveResult{}, ErrIllegalMove
		}
	}

	san, err := s.game.Push(uci)
	if err != nil {
		return MoveResult{}, ErrIllegalMove
	}
	s.lastHint = nil

	result := MoveResult{
		LastMove: &MoveInfo{From: uci[:2], To: uci[2:4], San: san},
	}

	if s.Mode == ModePlay && !s.game.GameOver() && !s.humanToMove() {
		if reply, ok := m.engineReply(ctx, s); ok {
			result.EngineMove = &reply
		}
	}

	result.State = s.snapshot()
	result.Evaluation = m.evaluate(ctx, s)
	m.touch(s)
	m.archiveIfFinished(ctx, s)
	return result, nil
}

// Undo removes the last move, or the last human+engine pair in Play mode.
// The position is rebuilt by replaying the truncated history, never by a
// reverse-move stack. Empty history is a no-op.
func (m *Manager) Undo(ctx context.Context, id string) (GameState, error) {
	s, err := m.lookup(id)
	if err != nil {
		return GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.game.MovesUCI()
	pop := 1
	if s.Mode == ModePlay && len(history) >= 2 {
		pop = 2
	}
	if len(history) == 0 {
		m.touch(s)
		return s.snapshot(), nil
	}

	truncated := history[:len(history)-pop]
	rebuilt, err := rules.Replay(truncated)
	if err != nil {
		return GameState{}, err
	}
	s.game = rebuilt
	s.lastHint = nil
	m.touch(s)
	return s.snapshot(), nil
}

// SetDifficulty clamps the level into range and forwards the strength change
// to the engine. The forwarding is advisory; it cannot fail the caller.
func (m *Manager) SetDifficulty(_ context.Context, id string, level int) (int, error) {
	s, err := m.lookup(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Difficulty = engine.ClampLevel(level)
	if m.engine != nil && m.engine.Ready() {
		m.engine.ConfigureStrength(engine.StrengthFor(s.Difficulty))
	}
	m.touch(s)
	return s.Difficulty, nil
}

// Hint computes the best move for the side to move without applying it,
// with a derived explanation and an opening label when still in book.
func (m *Manager) Hint(ctx context.Context, id string) (Hint, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Hint{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.GameOver() {
		return Hint{}, ErrGameFinished
	}

	uci, _ := m.bestMoveFor(ctx, s, engine.Limits{Depth: engine.AnalysisDepth})
	if uci == "" {
		return Hint{}, ErrGameFinished
	}

	hint := Hint{From: uci[:2], To: uci[2:4]}
	if facts, err := s.game.Facts(uci); err == nil {
		hint.Explanation = ExplainMove(facts)
	}
	clone := s.game.Clone()
	if san, err := clone.Push(uci); err == nil {
		hint.San = san
	}
	hint.OpeningCode, hint.OpeningName = s.game.OpeningAfter(uci)

	s.lastHint = &hint
	m.touch(s)
	return hint, nil
}

// Analyze evaluates the current position relative to White. Analysis
// failures are not errors; they come back as an unavailable evaluation.
func (m *Manager) Analyze(ctx context.Context, id string) (engine.Evaluation, error) {
	s, err := m.lookup(id)
	if err != nil {
		return engine.Unavailable(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.touch(s)
	return m.evaluate(ctx, s), nil
}

// CoachComment replays the game to the given move index and produces the
// heuristic commentary for that move. Index -1 means the latest move.
func (m *Manager) CoachComment(_ context.Context, id string, moveIdx int) (string, error) {
	s, err := m.lookup(id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.game.MovesUCI()
	if moveIdx == -1 && len(history) > 0 {
		moveIdx = len(history) - 1
	}
	if moveIdx < 0 || moveIdx >= len(history) {
		return "", ErrInvalidMoveIndex
	}

	before, err := rules.Replay(history[:moveIdx])
	if err != nil {
		return "", err
	}
	facts, err := before.Facts(history[moveIdx])
	if err != nil {
		return "", err
	}
	m.touch(s)
	return CoachComment(facts, before.FullmoveNumber()), nil
}

// State returns the current snapshot of one session.
func (m *Manager) State(_ context.Context, id string) (GameState, error) {
	s, err := m.lookup(id)
	if err != nil {
		return GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.touch(s)
	return s.snapshot(), nil
}

// RecentGames lists archived finished games, newest first.
func (m *Manager) RecentGames(ctx context.Context, limit int) ([]*archive.GameRecord, error) {
	if m.archive == nil {
		return nil, nil
	}
	return m.archive.GetRecentGames(ctx, limit)
}

// SessionCount reports how many sessions are live.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Start launches the TTL sweeper. Returns immediately when expiry is
// disabled. The sweeper stops when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	if m.cfg.SessionTTL <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	now := time.Now().UnixNano()
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if now > s.deadline.Load() {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	if len(expired) > 0 {
		m.logger.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) touch(s *Session) {
	ttl := m.cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * 365 * time.Hour
	}
	s.deadline.Store(time.Now().Add(ttl).UnixNano())
}

// engineReply computes and applies one move for the side to move. It never
// fails while legal moves remain; the worst case is a random move.
func (m *Manager) engineReply(ctx context.Context, s *Session) (MoveInfo, bool) {
	strength := engine.StrengthFor(s.Difficulty)
	uci, _ := m.bestMoveFor(ctx, s, engine.Limits{MoveTimeMillis: strength.MoveTimeMillis})
	if uci == "" {
		return MoveInfo{}, false
	}
	san, err := s.game.Push(uci)
	if err != nil {
		m.logger.Error("engine reply not applicable", zap.String("move", uci), zap.Error(err))
		return MoveInfo{}, false
	}
	return MoveInfo{From: uci[:2], To: uci[2:4], San: san}, true
}

// bestMoveFor is the single best-move path: cache first, then the engine,
// then the random fallback. The returned bool reports whether the move came
// from the engine (and was therefore cached). Fallback moves are never
// cached; a random pick is not a best move for the position.
func (m *Manager) bestMoveFor(ctx context.Context, s *Session, limits engine.Limits) (string, bool) {
	fen := s.game.FEN()

	if cached, ok := m.cache.Lookup(ctx, fen); ok {
		if s.game.IsLegal(cached) {
			return cached, false
		}
		m.logger.Warn("cached move no longer legal", zap.String("move", cached))
	}

	if m.engine != nil && m.engine.Ready() {
		req := engine.SearchRequest{Moves: s.game.MovesUCI(), Limits: limits}
		uci, err := m.engine.BestMove(ctx, req)
		if err == nil && s.game.IsLegal(uci) {
			m.cache.Insert(ctx, fen, uci)
			return uci, true
		}
		if err != nil {
			m.logger.Warn("engine best move failed, falling back to random",
				zap.String("session_id", s.ID),
				zap.Error(err),
			)
		}
	}

	return m.randomMove(s), false
}

func (m *Manager) randomMove(s *Session) string {
	legal := s.game.LegalMoves()
	if len(legal) == 0 {
		return ""
	}
	m.randMu.Lock()
	defer m.randMu.Unlock()
	return legal[m.rand.Intn(len(legal))]
}

// evaluate returns the White-relative evaluation of the current position.
// The engine reports relative to the side to move, so the score is flipped
// when Black is on move.
func (m *Manager) evaluate(ctx context.Context, s *Session) engine.Evaluation {
	if m.engine == nil || !m.engine.Ready() {
		return engine.Unavailable()
	}
	req := engine.SearchRequest{
		Moves:  s.game.MovesUCI(),
		Limits: engine.Limits{Depth: engine.AnalysisDepth},
	}
	eval, err := m.engine.Evaluate(ctx, req)
	if err != nil {
		m.logger.Warn("analysis failed", zap.String("session_id", s.ID), zap.Error(err))
		return engine.Unavailable()
	}
	if !s.game.WhiteToMove() {
		eval = eval.Flip()
	}
	return eval
}

// archiveIfFinished persists the finished game. Archive failures are logged
// and dropped; a full game is never lost to a storage error from the
// player's point of view.
func (m *Manager) archiveIfFinished(ctx context.Context, s *Session) {
	if m.archive == nil || !s.game.GameOver() {
		return
	}
	result, method := s.game.Outcome()
	now := time.Now()
	rec := &archive.GameRecord{
		SessionID:  s.ID,
		Mode:       string(s.Mode),
		Difficulty: s.Difficulty,
		Result:     result,
		Method:     method,
		MovesUCI:   s.game.MovesUCI(),
		MovesSAN:   s.game.MovesSAN(),
		PGN:        s.game.PGN(),
		StartedAt:  s.createdAt,
		EndedAt:    now,
		DurationMS: now.Sub(s.createdAt).Milliseconds(),
	}
	if _, err := m.archive.InsertGame(ctx, rec); err != nil {
		m.logger.Error("archive insert failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}
