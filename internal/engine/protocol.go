package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Limits bounds one search. At least one of Depth or MoveTimeMillis must be
// set before a go command can be issued.
type Limits struct {
	Depth          int
	MoveTimeMillis int
}

func buildPositionCommand(moves []string) string {
	var sb strings.Builder
	sb.WriteString("position startpos")
	if len(moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(moves, " "))
	}
	sb.WriteString("\n")
	return sb.String()
}

func buildGoTokens(l Limits) ([]string, error) {
	args := []string{"go"}
	if l.Depth > 0 {
		args = append(args, "depth", strconv.Itoa(l.Depth))
	}
	if l.MoveTimeMillis > 0 {
		args = append(args, "movetime", strconv.Itoa(l.MoveTimeMillis))
	}
	if len(args) == 1 {
		return nil, fmt.Errorf("no search limits specified")
	}
	return args, nil
}

// searchDeadline bounds how long we wait for a bestmove reply beyond the
// requested limit. A breach is treated as a dead process.
func searchDeadline(l Limits) time.Duration {
	if l.MoveTimeMillis > 0 {
		// 3x the requested think time, plus protocol overhead
		return time.Duration(3*l.MoveTimeMillis+2000) * time.Millisecond
	}
	if l.Depth > 0 {
		base := time.Duration(l.Depth) * 300 * time.Millisecond
		if base < 6*time.Second {
			base = 6 * time.Second
		}
		if base > 20*time.Second {
			base = 20 * time.Second
		}
		return base
	}
	return 6 * time.Second
}

func parseBestMove(line string) (string, bool) {
	if !strings.HasPrefix(line, "bestmove") {
		return "", false
	}
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return "", true
	}
	move := strings.ToLower(parts[1])
	if move == "(none)" || move == "0000" {
		return "", true
	}
	return move, true
}

// parseScoreInfo extracts a score from an info line, relative to the side to
// move as the protocol defines it.
func parseScoreInfo(line string) (Evaluation, bool) {
	if !strings.HasPrefix(line, "info ") {
		return Evaluation{}, false
	}
	parts := strings.Fields(line)
	for i := 0; i < len(parts); i++ {
		if parts[i] != "score" || i+2 >= len(parts) {
			continue
		}
		val, err := strconv.Atoi(parts[i+2])
		if err != nil {
			return Evaluation{}, false
		}
		switch parts[i+1] {
		case "cp":
			return Score(val), true
		case "mate":
			return MateIn(val), true
		}
		return Evaluation{}, false
	}
	return Evaluation{}, false
}
