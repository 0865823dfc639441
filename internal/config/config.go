package config

import (
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	ListenAddr string

	StockfishPath string
	EngineThreads int
	EngineHashMB  int

	// StrengthConfigPath points at an optional YAML file overriding the
	// difficulty-to-strength table.
	StrengthConfigPath string

	RedisURL    string
	DatabaseURL string

	DefaultDifficulty int
	SessionTTLSec     int
	MoveCacheSize     int
	MoveCacheTTLSec   int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:        ":5000",
		StockfishPath:     "/usr/games/stockfish",
		EngineThreads:     2,
		EngineHashMB:      128,
		DefaultDifficulty: 3,
		SessionTTLSec:     3600,
		MoveCacheSize:     4096,
		MoveCacheTTLSec:   86400,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STOCKFISH_PATH")); v != "" {
		cfg.StockfishPath = v
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_THREADS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineThreads = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_HASH_MB")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineHashMB = n
		}
	}
	cfg.StrengthConfigPath = strings.TrimSpace(os.Getenv("ENGINE_STRENGTH_CONFIG"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_DIFFICULTY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultDifficulty = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SESSION_TTL")); v != "" { // seconds, 0 disables expiry
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MOVE_CACHE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MoveCacheSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MOVE_CACHE_TTL")); v != "" { // seconds, Redis backend only
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MoveCacheTTLSec = n
		}
	}

	return cfg, nil
}
