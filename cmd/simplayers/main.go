// Command simplayers spawns N synthetic players against a freshly
// loaded board and drives them through random flips with jittered
// delays, to exercise the engine's contention paths outside of a
// human client. It talks to the board in-process, not over the
// network — it is a load/stress harness, not a client of the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"memoryboard/board"
	"memoryboard/boardconfig"
	"memoryboard/config"
	"memoryboard/facade"
	"memoryboard/loghandler"
)

func main() {
	boardPath := flag.String("board", "board.txt", "path to the board-config file")
	players := flag.Int("players", 8, "number of synthetic players")
	flips := flag.Int("flips", 100, "flips per player")
	delayMinMS := flag.Int("delay-min-ms", config.DefaultSimParams().DelayMinMS, "minimum delay between flips, in milliseconds")
	delayMaxMS := flag.Int("delay-max-ms", config.DefaultSimParams().DelayMaxMS, "maximum delay between flips, in milliseconds")
	flag.Parse()

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))
	logger := slog.Default().With("tag", "simplayers")

	if *delayMaxMS <= *delayMinMS {
		logger.Error("delay-max-ms must exceed delay-min-ms", "min", *delayMinMS, "max", *delayMaxMS)
		os.Exit(1)
	}

	f, err := os.Open(*boardPath)
	if err != nil {
		logger.Error("failed to open board config", "path", *boardPath, "error", err)
		os.Exit(1)
	}
	rows, cols, values, err := boardconfig.Parse(f)
	f.Close()
	if err != nil {
		logger.Error("failed to parse board config", "path", *boardPath, "error", err)
		os.Exit(1)
	}

	b := board.NewBoard(rows, cols, values)
	fc := facade.New(b)
	logger.Info("board loaded", "rows", rows, "cols", cols, "players", *players, "flips", *flips)

	var wg sync.WaitGroup
	var matched, mismatched, contended int64
	var mu sync.Mutex

	for p := 0; p < *players; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			playerID := fmt.Sprintf("sim-%d", id)
			rng := rand.New(rand.NewSource(int64(id) + time.Now().UnixNano()))
			for i := 0; i < *flips; i++ {
				row := rng.Intn(rows)
				col := rng.Intn(cols)
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				outcome, err := fc.Flip(ctx, playerID, row, col)
				cancel()
				if err != nil {
					mu.Lock()
					contended++
					mu.Unlock()
					continue
				}
				switch outcome {
				case board.OutcomeMatch:
					mu.Lock()
					matched++
					mu.Unlock()
				case board.OutcomeMismatch:
					mu.Lock()
					mismatched++
					mu.Unlock()
				}
				jitter := *delayMinMS + rng.Intn(*delayMaxMS-*delayMinMS)
				time.Sleep(time.Duration(jitter) * time.Millisecond)
			}
		}(p)
	}
	wg.Wait()

	logger.Info("simulation complete", "matched", matched, "mismatched", mismatched, "contended_or_invalid", contended)
}
