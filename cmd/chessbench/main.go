// Command chessbench drives the move-search core through a batch of
// positions, either playing itself or sparring against an external UCI
// engine via internal/harness, and reports SearchMetrics for each move
// decided.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/fatih/color"
	golog "github.com/op/go-logging"

	chessforge "github.com/ravensworth/chessforge"
	"github.com/ravensworth/chessforge/internal/board"
	"github.com/ravensworth/chessforge/internal/config"
	"github.com/ravensworth/chessforge/internal/harness"
	"github.com/ravensworth/chessforge/internal/logging"
)

var (
	configPath  = flag.String("config", "", "path to a TOML profile overriding the built-in defaults")
	fen         = flag.String("fen", "", "FEN to start from (default: standard starting position)")
	difficulty  = flag.String("difficulty", "hard", "easy, medium, hard, or max")
	plies       = flag.Int("moves", 20, "number of plies to play before stopping")
	vsStockfish = flag.String("vs-stockfish", "", "path to an external UCI engine binary to play against (optional)")
	playForWin  = flag.Bool("play-for-win", false, "enable the anti-repetition root policy")
	cpuProfile  = flag.String("cpuprofile", "", "write a CPU profile to this file")
	verbose     = flag.Bool("v", false, "enable debug logging")
)

var log = logging.Get("chessbench")

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "chessbench: could not create CPU profile:", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintln(os.Stderr, "chessbench: could not start CPU profile:", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	profile := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "chessbench:", err)
			os.Exit(1)
		}
		profile = loaded
	}

	if *verbose {
		logging.SetLevel(golog.DEBUG)
	} else if lvl, err := golog.LogLevel(profile.Log.Level); err == nil {
		logging.SetLevel(lvl)
	}

	diff, err := parseDifficulty(*difficulty)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chessbench:", err)
		os.Exit(1)
	}

	state, err := startingState(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chessbench:", err)
		os.Exit(1)
	}

	if *vsStockfish != "" {
		runAgainstExternal(state, diff, profile, *vsStockfish)
		return
	}
	runSelfPlay(state, diff, profile)
}

func parseDifficulty(s string) (chessforge.Difficulty, error) {
	switch s {
	case "easy":
		return chessforge.Easy, nil
	case "medium":
		return chessforge.Medium, nil
	case "hard":
		return chessforge.Hard, nil
	case "max":
		return chessforge.Max, nil
	default:
		return 0, fmt.Errorf("unknown difficulty %q (want easy, medium, hard, or max)", s)
	}
}

func startingState(fen string) (*board.GameState, error) {
	if fen == "" {
		return board.NewGameState(), nil
	}
	return board.FromFEN(fen)
}

// rootOptions folds the loaded profile's root-policy tuning into the
// per-move AIOptions, so -config reaches the anti-repetition pass. The
// profile's difficulty table is not applied: depth and time come from the
// -difficulty preset.
func rootOptions(diff chessforge.Difficulty, recent map[string]int, profile *config.Profile) chessforge.AIOptions {
	rp := profile.RootPolicy
	return chessforge.AIOptions{
		Difficulty:               diff,
		PlayForWin:               *playForWin,
		RecentPositions:          recent,
		RepeatBanWindowCp:        rp.RepeatBanWindowCp,
		DrawHoldThreshold:        rp.DrawHoldThreshold,
		TwoPlyRepeatPenalty:      rp.TwoPlyPenalty,
		TwoPlyRepeatTopN:         rp.TwoPlyTopN,
		ContemptCp:               rp.ContemptHardCp,
		HardRepetitionNudgeScale: 1.0,
	}
}

func runSelfPlay(state *board.GameState, diff chessforge.Difficulty, profile *config.Profile) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	recent := map[string]int{}

	for ply := 0; ply < *plies; ply++ {
		status := state.GameStatus()
		if status.IsTerminal() {
			fmt.Println(yellow("game over:"), status)
			break
		}

		opts := rootOptions(diff, recent, profile)
		move, ok, _, metrics := chessforge.ChooseMoveWithMetrics(state, opts)
		if !ok {
			fmt.Println(yellow("no legal move available"))
			break
		}

		applied, err := state.ApplyMove(move)
		if err != nil {
			log.Errorf("engine proposed an illegal move: %v", err)
			os.Exit(1)
		}
		recent[state.PositionKey()]++

		fmt.Printf("%3d. %s  depth=%d nodes=%d nps=%.0f time=%dms stop=%s\n",
			ply+1, green(applied.Move.String()),
			metrics.DepthCompleted, metrics.Nodes, metrics.NPS, metrics.DurationMs, cyan(metrics.StopReason))
	}
}

func runAgainstExternal(state *board.GameState, diff chessforge.Difficulty, profile *config.Profile, enginePath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ext, err := harness.Start(ctx, enginePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chessbench:", err)
		os.Exit(1)
	}
	defer ext.Close()

	if err := ext.NewGame(); err != nil {
		fmt.Fprintln(os.Stderr, "chessbench:", err)
		os.Exit(1)
	}

	var uciMoves []string
	recent := map[string]int{}

	for ply := 0; ply < *plies; ply++ {
		status := state.GameStatus()
		if status.IsTerminal() {
			fmt.Println("game over:", status)
			break
		}

		if ply%2 == 0 {
			opts := rootOptions(diff, recent, profile)
			move, ok := chessforge.ChooseMove(state, opts)
			if !ok {
				break
			}
			applied, err := state.ApplyMove(move)
			if err != nil {
				log.Errorf("engine proposed an illegal move: %v", err)
				os.Exit(1)
			}
			uciMoves = append(uciMoves, applied.Move.String())
			fmt.Println("engine:", applied.Move.String())
		} else {
			if err := ext.SetPosition(*fen, uciMoves); err != nil {
				fmt.Fprintln(os.Stderr, "chessbench:", err)
				os.Exit(1)
			}
			moveStr, err := ext.BestMove(ctx, harness.GoLimits{MoveTime: time.Second})
			if err != nil {
				fmt.Fprintln(os.Stderr, "chessbench:", err)
				os.Exit(1)
			}
			m, err := board.ParseMove(moveStr, state.Position())
			if err != nil {
				log.Errorf("could not parse opponent move %q: %v", moveStr, err)
				os.Exit(1)
			}
			if _, err := state.ApplyMove(m); err != nil {
				log.Errorf("opponent proposed an illegal move: %v", err)
				os.Exit(1)
			}
			uciMoves = append(uciMoves, moveStr)
			fmt.Println("opponent:", moveStr)
		}
		recent[state.PositionKey()]++
	}
}
