// enginecheck verifies an engine binary end to end: handshake, one search
// from the start position, one evaluation. Operators run it before pointing
// the server at a new engine build.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/aryanrajsinha8010/chesslearning/internal/engine"
	"github.com/aryanrajsinha8010/chesslearning/internal/rules"
)

func main() {
	path := os.Getenv("STOCKFISH_PATH")
	if path == "" {
		path = "/usr/games/stockfish"
	}
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	worker, err := engine.NewWorker(engine.WorkerConfig{
		BinaryPath: path,
		Threads:    2,
		HashMB:     128,
		SkillLevel: 20,
	}, rules.Verifier{}, zap.NewNop())
	if err != nil {
		log.Fatalf("worker init error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := worker.Start(ctx); err != nil {
		log.Fatalf("engine start error: %v", err)
	}
	defer worker.Shutdown()
	log.Printf("engine ready: %s", path)

	move, err := worker.BestMove(ctx, engine.SearchRequest{
		Limits: engine.Limits{MoveTimeMillis: 1000},
	})
	if err != nil {
		log.Fatalf("best move error: %v", err)
	}
	fmt.Printf("best move from start position: %s\n", move)

	eval, err := worker.Evaluate(ctx, engine.SearchRequest{
		Limits: engine.Limits{Depth: 12},
	})
	if err != nil {
		log.Fatalf("evaluate error: %v", err)
	}
	fmt.Printf("start position evaluation: %s\n", eval)
}
