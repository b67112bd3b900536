package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"memoryboard/api"
	"memoryboard/board"
	"memoryboard/boardconfig"
	"memoryboard/config"
	"memoryboard/facade"
	"memoryboard/loghandler"
	"memoryboard/session"
	"memoryboard/storage"
	"memoryboard/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err2 := godotenv.Load("cmd/.env"); err2 != nil {
			log.Print("No .env file found; using environment variables. For local dev, set JWKS_URL and WS_PORT.")
		}
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))
	logger := slog.Default().With("tag", "main")

	cfg := config.Load()

	if cfg.JWKSURL == "" {
		logger.Warn("JWKS_URL is not set — connections will be assigned ephemeral player IDs without auth")
	} else {
		logger.Info("auth configured", "jwks_url", cfg.JWKSURL)
	}
	logger.Info("configuration loaded",
		"ws_port", cfg.WSPort,
		"reset_interval_sec", cfg.ResetIntervalSec,
		"keepalive_interval_sec", cfg.KeepAliveIntervalSec,
		"board_config_path", cfg.BoardConfigPath)

	b := loadBoard(cfg.BoardConfigPath, logger)
	f := facade.New(b)

	ctx := context.Background()
	eventStore, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if eventStore != nil {
		defer eventStore.Close()
	}

	registry := session.New()
	hub := ws.NewHub(cfg, f, registry, eventStore, slog.Default())
	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go hub.Run(hubCtx)

	stopReset := startResetTimer(b, time.Duration(cfg.ResetIntervalSec)*time.Second, logger.With("tag", "reset"))
	defer close(stopReset)

	handler := api.NewHandler(cfg, f, eventStore, slog.Default())

	http.HandleFunc("/ws", hub.ServeWS)
	http.HandleFunc("/look", handler.Look)
	http.HandleFunc("/flip", handler.Flip)
	http.HandleFunc("/map", handler.Map)
	http.HandleFunc("/healthz", handler.Healthz)

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	logger.Info("memoryboard server listening", "addr", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

// loadBoard reads the board-config file at path and constructs the
// board. A missing or malformed file is fatal at startup — per
// spec.md §6, "any deviation raises a configuration error at
// construction (outside the concurrency core)".
func loadBoard(path string, logger *slog.Logger) *board.Board {
	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open board config", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, cols, values, err := boardconfig.Parse(f)
	if err != nil {
		logger.Error("failed to parse board config", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("board loaded", "rows", rows, "cols", cols)
	return board.NewBoard(rows, cols, values)
}

// startResetTimer fires b.Reset every interval, grounded on the
// teacher's startTurnTimer/cancelTurnTimer cancel-channel pattern,
// generalized from a per-game turn clock to a process-lifetime board
// clock. interval <= 0 disables the timer.
func startResetTimer(b *board.Board, interval time.Duration, logger *slog.Logger) chan struct{} {
	stop := make(chan struct{})
	if interval <= 0 {
		return stop
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.Reset()
				logger.Info("board reset fired")
			case <-stop:
				return
			}
		}
	}()
	return stop
}
