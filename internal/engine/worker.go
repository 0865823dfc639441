// Package engine wraps one external UCI analysis process behind a worker
// that serializes access: the process cannot handle interleaved queries, so
// at most one search or evaluation is in flight at any time.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultReadyTimeout = 4 * time.Second
	shutdownGrace       = 2 * time.Second
)

var (
	ErrNotStarted        = errors.New("engine worker not started")
	ErrNoMove            = errors.New("engine returned no move")
	ErrIllegalSuggestion = errors.New("engine suggested an illegal move")
	ErrTerminated        = errors.New("engine process terminated")
)

type WorkerState int

const (
	StateUnstarted WorkerState = iota
	StateReady
	StateDegraded
)

func (s WorkerState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unstarted"
	}
}

// MoveVerifier checks an engine suggestion against the rules engine.
// Engine output is never trusted blindly.
type MoveVerifier interface {
	LegalMove(movesUCI []string, candidate string) bool
}

type WorkerConfig struct {
	BinaryPath   string
	Threads      int
	HashMB       int
	SkillLevel   int
	ReadyTimeout time.Duration
}

// SearchRequest identifies a position by its move history from the start
// position, plus the limits for this search.
type SearchRequest struct {
	Moves  []string
	Limits Limits
}

// Worker owns one analysis process. Once degraded it never self-heals;
// callers fall back to random legal moves for the rest of its lifetime.
type Worker struct {
	cfg      WorkerConfig
	verifier MoveVerifier
	logger   *zap.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	writeMu sync.Mutex
	flight  sync.Mutex

	stateMu sync.Mutex
	state   WorkerState
}

func NewWorker(cfg WorkerConfig, verifier MoveVerifier, logger *zap.Logger) (*Worker, error) {
	if strings.TrimSpace(cfg.BinaryPath) == "" {
		return nil, fmt.Errorf("engine binary path required")
	}
	if _, err := os.Stat(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("engine binary check: %w", err)
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 2
	}
	if cfg.HashMB <= 0 {
		cfg.HashMB = 128
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{cfg: cfg, verifier: verifier, logger: logger}, nil
}

func (w *Worker) State() WorkerState {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return w.state
}

func (w *Worker) Ready() bool {
	return w.State() == StateReady
}

func (w *Worker) setState(s WorkerState) {
	w.stateMu.Lock()
	w.state = s
	w.stateMu.Unlock()
}

func (w *Worker) degrade(reason string, err error) {
	if w.State() == StateDegraded {
		return
	}
	w.setState(StateDegraded)
	w.logger.Warn("engine worker degraded",
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// Start spawns the process and performs the protocol handshake. Option
// configuration is best-effort: engines that reject an option still count
// as started.
func (w *Worker) Start(ctx context.Context) error {
	if w.State() != StateUnstarted {
		return fmt.Errorf("engine worker already started")
	}

	cmd := exec.Command(w.cfg.BinaryPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return fmt.Errorf("start engine: %w", err)
	}

	w.cmd = cmd
	w.stdin = stdin
	w.stdout = bufio.NewReader(stdoutPipe)

	if err := w.initialize(ctx); err != nil {
		w.close()
		return err
	}
	w.setState(StateReady)
	w.logger.Info("engine worker ready",
		zap.String("binary", w.cfg.BinaryPath),
		zap.Int("threads", w.cfg.Threads),
		zap.Int("hash_mb", w.cfg.HashMB),
	)
	return nil
}

func (w *Worker) initialize(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, w.cfg.ReadyTimeout)
	defer cancel()

	if err := w.send("uci\n"); err != nil {
		return fmt.Errorf("send uci: %w", err)
	}
	if err := w.awaitToken(initCtx, "uciok"); err != nil {
		return fmt.Errorf("wait uciok: %w", err)
	}

	// Not every engine honors every option; failures here are ignored.
	opts := []string{
		fmt.Sprintf("setoption name Threads value %d\n", w.cfg.Threads),
		fmt.Sprintf("setoption name Hash value %d\n", w.cfg.HashMB),
		fmt.Sprintf("setoption name Skill Level value %d\n", w.cfg.SkillLevel),
	}
	for _, opt := range opts {
		if err := w.send(opt); err != nil {
			w.logger.Warn("engine option not applied", zap.String("option", strings.TrimSpace(opt)), zap.Error(err))
		}
	}

	if err := w.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := w.awaitToken(initCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

// BestMove runs one search and returns the suggested move in UCI form.
// Callers block while another request is in flight.
func (w *Worker) BestMove(ctx context.Context, req SearchRequest) (string, error) {
	w.flight.Lock()
	defer w.flight.Unlock()

	if w.State() != StateReady {
		return "", ErrNotStarted
	}

	line, err := w.exchange(ctx, req, func(string) {})
	if err != nil {
		return "", err
	}

	move, _ := parseBestMove(line)
	if move == "" {
		return "", ErrNoMove
	}
	if w.verifier != nil && !w.verifier.LegalMove(req.Moves, move) {
		w.degrade("illegal suggestion", fmt.Errorf("move %s", move))
		return "", fmt.Errorf("%w: %s", ErrIllegalSuggestion, move)
	}
	return move, nil
}

// Evaluate runs one search and returns the last score reported, relative to
// the side to move.
func (w *Worker) Evaluate(ctx context.Context, req SearchRequest) (Evaluation, error) {
	w.flight.Lock()
	defer w.flight.Unlock()

	if w.State() != StateReady {
		return Unavailable(), ErrNotStarted
	}
	if req.Limits.Depth <= 0 && req.Limits.MoveTimeMillis <= 0 {
		req.Limits.Depth = AnalysisDepth
	}

	eval := Unavailable()
	_, err := w.exchange(ctx, req, func(line string) {
		if e, ok := parseScoreInfo(line); ok {
			eval = e
		}
	})
	if err != nil {
		return Unavailable(), err
	}
	return eval, nil
}

// exchange sends one position+go pair and reads lines until bestmove,
// feeding each info line to observe. Returns the bestmove line.
func (w *Worker) exchange(ctx context.Context, req SearchRequest, observe func(string)) (string, error) {
	if err := w.ensureReady(ctx); err != nil {
		w.degrade("ready check failed", err)
		return "", fmt.Errorf("%w: %v", ErrTerminated, err)
	}

	positionCmd := buildPositionCommand(req.Moves)
	if err := w.send(positionCmd); err != nil {
		w.degrade("send position failed", err)
		return "", fmt.Errorf("%w: %v", ErrTerminated, err)
	}

	goTokens, err := buildGoTokens(req.Limits)
	if err != nil {
		return "", err
	}
	if err := w.send(strings.Join(goTokens, " ") + "\n"); err != nil {
		w.degrade("send go failed", err)
		return "", fmt.Errorf("%w: %v", ErrTerminated, err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, searchDeadline(req.Limits))
	defer cancel()

	for {
		line, err := w.readLine(searchCtx)
		if err != nil {
			w.degrade("read failed", err)
			return "", fmt.Errorf("%w: %v", ErrTerminated, err)
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			return line, nil
		}
		observe(line)
	}
}

// ConfigureStrength forwards the skill option. Best-effort: failures are
// logged and never surfaced.
func (w *Worker) ConfigureStrength(s Strength) {
	if w.State() != StateReady {
		return
	}
	cmd := fmt.Sprintf("setoption name Skill Level value %d\n", s.SkillLevel)
	if err := w.send(cmd); err != nil {
		w.logger.Warn("strength reconfiguration failed",
			zap.Int("skill_level", s.SkillLevel),
			zap.Error(err),
		)
	}
}

// Shutdown requests a graceful quit and reaps the process. The process may
// already be dead; all errors are swallowed.
func (w *Worker) Shutdown() {
	if w.cmd == nil {
		return
	}
	_ = w.send("quit\n")

	done := make(chan struct{})
	go func() {
		_ = w.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		w.close()
		<-done
	}
	w.setState(StateDegraded)
}

func (w *Worker) close() {
	if w.stdin != nil {
		_ = w.stdin.Close()
	}
	if w.cmd != nil && w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}

func (w *Worker) ensureReady(ctx context.Context) error {
	readyCtx, cancel := context.WithTimeout(ctx, w.cfg.ReadyTimeout)
	defer cancel()

	if err := w.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := w.awaitToken(readyCtx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

func (w *Worker) send(msg string) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if w.stdin == nil {
		return ErrNotStarted
	}
	_, err := io.WriteString(w.stdin, msg)
	return err
}

func (w *Worker) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := w.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

func (w *Worker) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := w.stdout.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
