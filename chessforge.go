// Package chessforge is the public entry point of the move-search engine:
// a legal move generator, a static evaluator, an iterative-deepening
// alpha-beta search with transposition tables and move ordering, and an
// anti-repetition root policy, exposed as a single choose_move-shaped API.
// Everything else -- rendering, UI, audio, persistence, the UCI harness --
// is an external collaborator that only ever calls into this package and
// internal/board's GameState.
package chessforge

import (
	"math/rand"
	"time"

	"github.com/ravensworth/chessforge/internal/board"
	"github.com/ravensworth/chessforge/internal/eval"
	"github.com/ravensworth/chessforge/internal/logging"
	"github.com/ravensworth/chessforge/internal/root"
	"github.com/ravensworth/chessforge/internal/search"
)

var log = logging.Get("chessforge")

// Difficulty selects the depth/time/feature policy a move decision runs under.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Max
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	case Max:
		return "Max"
	default:
		return "Unknown"
	}
}

type difficultyPolicy struct {
	maxDepth    int
	maxTimeMs   int
	maxThinking bool
}

func (d Difficulty) policy() difficultyPolicy {
	switch d {
	case Easy:
		return difficultyPolicy{maxDepth: 1}
	case Medium:
		return difficultyPolicy{maxDepth: 2}
	case Hard:
		return difficultyPolicy{maxDepth: 3}
	case Max:
		return difficultyPolicy{maxDepth: 7, maxTimeMs: 10000, maxThinking: true}
	default:
		return difficultyPolicy{maxDepth: 1}
	}
}

// NNUEEvaluator re-exports internal/eval's optional NNUE seam so a caller
// never has to import internal/eval directly.
type NNUEEvaluator = eval.NNUEEvaluator

// AIOptions configures one move decision: which side to move for, how hard
// to think, the anti-repetition root policy's knobs, and the optional
// progress/cancellation hooks a caller can wire up for a long-running search.
type AIOptions struct {
	Color      board.Color // defaults to the state's active color if unset via ColorSet
	ColorSet   bool
	Difficulty Difficulty

	Seed    *int64
	RNGSeed int64 // deprecated alias kept for callers migrating from an int-only seed; Seed takes precedence

	PlayForWin      bool
	RecentPositions map[string]int

	RepetitionPenaltyScale   float64
	HardRepetitionNudgeScale float64
	RepeatBanWindowCp        int
	DrawHoldThreshold        int
	TwoPlyRepeatPenalty      int
	TwoPlyRepeatTopN         int
	ContemptCp               int

	MaxTimeMs     int
	MaxDepth      int
	DepthOverride int

	UsePVS  bool
	NNUE    NNUEEvaluator
	NNUEMix float64

	StopRequested func() bool
	OnProgress    func(depth int, move board.Move, score int)
}

// StopReason explains why a search stopped.
type StopReason string

const (
	StopNone              StopReason = "none"
	StopMidSearchDeadline StopReason = "mid_search_deadline"
	StopPreIterGate       StopReason = "pre_iter_gate"
	StopExternalCancel    StopReason = "external_cancel"
	StopCompleted         StopReason = "completed"
)

// SearchMetrics reports what one search actually did: how much work it got
// through, how it ended, and whether it had to fall back to a shallower
// completed depth.
type SearchMetrics struct {
	Nodes          uint64
	Cutoffs        uint64
	DepthCompleted int
	DurationMs     int64
	NPS            float64
	FallbackUsed   bool
	SoftStopUsed   bool
	HardStopUsed   bool
	StopReason     StopReason
}

// RootDiagnostics re-exports internal/root's diagnostics type.
type RootDiagnostics = root.Diagnostics

// ChooseMove picks a move for state under opts. It returns ok == false
// only when state has no legal move for the requested color.
func ChooseMove(state *board.GameState, opts AIOptions) (board.Move, bool) {
	move, ok, _, _ := chooseMove(state, opts, false, false)
	return move, ok
}

// ChooseMoveWithDiagnostics implements
// choose_move_with_diagnostics(state, opts) -> (Option<Move>, Option<RootDiagnostics>).
func ChooseMoveWithDiagnostics(state *board.GameState, opts AIOptions) (board.Move, bool, *RootDiagnostics) {
	move, ok, diag, _ := chooseMove(state, opts, true, false)
	return move, ok, diag
}

// ChooseMoveWithMetrics implements
// choose_move_with_metrics(state, opts) -> (Option<Move>, Option<RootDiagnostics>, Option<SearchMetrics>).
func ChooseMoveWithMetrics(state *board.GameState, opts AIOptions) (board.Move, bool, *RootDiagnostics, *SearchMetrics) {
	return chooseMove(state, opts, true, true)
}

func chooseMove(state *board.GameState, opts AIOptions, wantDiag, wantMetrics bool) (board.Move, bool, *RootDiagnostics, *SearchMetrics) {
	color := state.ActiveColor()
	if opts.ColorSet {
		color = opts.Color
	}

	pos := state.Position()
	legal := pos.LegalMovesForColor(color)
	if legal.Len() == 0 {
		return board.NoMove, false, nil, nil
	}

	policy := opts.Difficulty.policy()
	maxDepth := policy.maxDepth
	if opts.MaxDepth != 0 {
		maxDepth = opts.MaxDepth
	}
	if opts.DepthOverride != 0 {
		maxDepth = opts.DepthOverride
	}
	maxTimeMs := policy.maxTimeMs
	if opts.MaxTimeMs != 0 {
		maxTimeMs = opts.MaxTimeMs
	}
	if opts.Difficulty == Hard && maxTimeMs > 0 && opts.MaxDepth == 0 && opts.DepthOverride == 0 {
		// Hard with max_time_ms engages iterative deepening instead of
		// stopping dead at depth 3.
		maxDepth = 32
	}

	var deadline time.Time
	if maxTimeMs > 0 {
		deadline = time.Now().Add(time.Duration(maxTimeMs) * time.Millisecond)
	}

	searchOpts := search.Options{
		MaxThinking: policy.maxThinking,
		MaxDepth:    maxDepth,
		Deadline:    deadline,
		Stop:        opts.StopRequested,
		EvalOpts: eval.Options{
			Deep:    policy.maxThinking,
			NNUE:    opts.NNUE,
			NNUEMix: opts.NNUEMix,
		},
	}
	if opts.OnProgress != nil {
		searchOpts.OnDepthComplete = opts.OnProgress
	}

	working := pos.Copy()
	working.SideToMove = color
	working.UpdateCheckers()

	tt := newTT(policy.maxThinking)
	searcher := search.NewSearcher(working, tt, searchOpts)
	bestMove, _, metrics := searcher.FindBestMove()

	var diag *RootDiagnostics
	if opts.PlayForWin || wantDiag {
		candidates := scoreRootCandidates(working, legal, policy, searchOpts, opts)
		chosen, d := root.Select(working, candidates, rootOptions(opts, policy))
		bestMove = chosen
		diag = &d
	}

	log.Infof("chose %s for %s at difficulty %s (depth %d, %d nodes)", bestMove, color, opts.Difficulty, metrics.DepthCompleted, metrics.NodesSearched)

	if !wantMetrics {
		return bestMove, true, diag, nil
	}

	reason := StopCompleted
	switch {
	case metrics.FallbackUsed:
		reason = StopPreIterGate
	case !deadline.IsZero() && time.Now().After(deadline):
		reason = StopMidSearchDeadline
	case opts.StopRequested != nil && opts.StopRequested():
		reason = StopExternalCancel
	}

	sm := &SearchMetrics{
		Nodes:          metrics.NodesSearched,
		Cutoffs:        metrics.Cutoffs,
		DepthCompleted: metrics.DepthCompleted,
		DurationMs:     metrics.TimeSpent.Milliseconds(),
		FallbackUsed:   metrics.FallbackUsed,
		SoftStopUsed:   opts.StopRequested != nil,
		HardStopUsed:   !deadline.IsZero(),
		StopReason:     reason,
	}
	if metrics.TimeSpent > 0 {
		sm.NPS = float64(metrics.NodesSearched) / metrics.TimeSpent.Seconds()
	}

	return bestMove, true, diag, sm
}

// scoreRootCandidates runs one shallow search per legal root move to
// produce the base_score root.Select needs for every candidate, not just
// the single line the main search's PV follows. Depth is two below the
// main search depth, clamped to 1..4, to keep the per-move fan-out affordable.
func scoreRootCandidates(pos *board.Position, legal *board.MoveList, policy difficultyPolicy, mainOpts search.Options, opts AIOptions) []root.Candidate {
	candidateDepth := mainOpts.MaxDepth - 2
	if candidateDepth < 1 {
		candidateDepth = 1
	}
	if candidateDepth > 4 {
		candidateDepth = 4
	}

	childOpts := mainOpts
	childOpts.MaxDepth = candidateDepth
	childOpts.OnDepthComplete = nil

	candidates := make([]root.Candidate, 0, legal.Len())
	for i := 0; i < legal.Len(); i++ {
		move := legal.Get(i)

		child := pos.Copy()
		undo := child.MakeMove(move)
		if !undo.Valid {
			child.UnmakeMove(move, undo)
			continue
		}

		tt := newTT(policy.maxThinking)
		childSearcher := search.NewSearcher(child, tt, childOpts)
		_, childScore, _ := childSearcher.FindBestMove()
		baseScore := -childScore

		key := board.PositionKey(child)
		repeatCount := opts.RecentPositions[key]

		candidates = append(candidates, root.Candidate{
			Move:        move,
			BaseScore:   baseScore,
			RepeatCount: repeatCount,
			IsRepeat:    repeatCount > 0,
		})
	}
	return candidates
}

func rootOptions(opts AIOptions, policy difficultyPolicy) root.Options {
	seed := opts.Seed
	if seed == nil && opts.RNGSeed != 0 {
		s := opts.RNGSeed
		seed = &s
	}
	if seed == nil {
		s := rand.Int63()
		seed = &s
	}
	return root.Options{
		MaxThinking:              policy.maxThinking,
		PlayForWin:               opts.PlayForWin,
		Seed:                     seed,
		RecentPositions:          opts.RecentPositions,
		RepetitionPenaltyScale:   opts.RepetitionPenaltyScale,
		HardRepetitionNudgeScale: opts.HardRepetitionNudgeScale,
		RepeatBanWindowCp:        opts.RepeatBanWindowCp,
		DrawHoldThreshold:        opts.DrawHoldThreshold,
		TwoPlyRepeatPenalty:      opts.TwoPlyRepeatPenalty,
		TwoPlyRepeatTopN:         opts.TwoPlyRepeatTopN,
		ContemptCp:               opts.ContemptCp,
		EvalOpts:                 eval.Options{Deep: policy.maxThinking, NNUE: opts.NNUE, NNUEMix: opts.NNUEMix},
	}
}

func newTT(maxThinking bool) search.TranspositionTable {
	if maxThinking {
		return search.NewUnboundedTT()
	}
	return search.NewBoundedTT(4096)
}
