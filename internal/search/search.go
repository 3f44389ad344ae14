// Package search implements the alpha-beta search core: iterative
// deepening, quiescence and micro-quiescence, null-move pruning,
// principal-variation search, aspiration windows, late-move reductions,
// forcing extensions, and the two transposition-table variants.
//
// The search runs single-threaded and cooperatively: there is no internal
// goroutine, lock, or channel anywhere in this package. A caller that wants
// concurrent searches runs multiple Searchers from separate goroutines,
// each with its own board.Position and TranspositionTable; nothing here is
// shared between them. A single synchronous move decision does not need a
// long-lived multi-threaded search process sharing one table across
// worker goroutines.
package search

import (
	"time"

	"github.com/ravensworth/chessforge/internal/board"
	"github.com/ravensworth/chessforge/internal/eval"
	"github.com/ravensworth/chessforge/internal/logging"
)

const maxPly = 128

var log = logging.Get("search")

// Options configures one ChooseMove call.
type Options struct {
	// MaxThinking enables the "max" difficulty's deeper machinery: PVS,
	// aspiration windows, null-move pruning, LMR, killers, and
	// countermoves. When false the search still does plain alpha-beta
	// with history-only ordering and micro-quiescence instead of full
	// quiescence (the "hard" difficulty shape).
	MaxThinking bool

	MaxDepth int
	Deadline time.Time // zero value means no deadline

	// Stop is polled periodically; when it returns true the in-progress
	// search unwinds as fast as possible and the last completed depth's
	// result is used.
	Stop func() bool

	EvalOpts eval.Options

	// OnDepthComplete, if set, is called after each completed
	// iterative-deepening depth with the current best move and score.
	OnDepthComplete func(depth int, move board.Move, score int)
}

func (o Options) deadlineExceeded() bool {
	return !o.Deadline.IsZero() && time.Now().After(o.Deadline)
}

func (o Options) stopRequested() bool {
	if o.deadlineExceeded() {
		return true
	}
	return o.Stop != nil && o.Stop()
}

// Metrics reports what one ChooseMove call actually did.
type Metrics struct {
	NodesSearched     uint64
	Cutoffs           uint64
	DepthCompleted    int
	TimeSpent         time.Duration
	AspirationRetries int
	FallbackUsed      bool
}

// Searcher runs one alpha-beta search against a single board.Position. It
// owns no goroutines and is not safe for concurrent use; callers wanting
// parallel searches create one Searcher per goroutine.
type Searcher struct {
	pos     *board.Position
	tt      TranspositionTable
	orderer *Orderer
	opts    Options

	maximizing board.Color
	nodes      uint64
	cutoffs    uint64
	stopped    bool

	pvLength [maxPly]int
	pvMoves  [maxPly][maxPly]board.Move

	prevMove [maxPly]board.Move
}

// NewSearcher creates a searcher over pos using tt for transposition
// lookups. pos is not mutated after the call returns; the searcher clones
// it for its own make/unmake working copy.
func NewSearcher(pos *board.Position, tt TranspositionTable, opts Options) *Searcher {
	return &Searcher{
		pos:        pos.Copy(),
		tt:         tt,
		orderer:    NewOrderer(opts.MaxThinking),
		opts:       opts,
		maximizing: pos.SideToMove,
	}
}

// FindBestMove runs iterative deepening up to opts.MaxDepth or until
// opts.Stop/opts.Deadline fires, whichever comes first, and returns the
// best move found, its score, and the metrics for the call. If no depth
// completes, one depth-1 search is run with the stop predicate and deadline
// ignored and Metrics.FallbackUsed is set; the first legal move is returned
// only if that search yields no move.
func (s *Searcher) FindBestMove() (board.Move, int, Metrics) {
	start := time.Now()

	legal := s.pos.GenerateLegalMoves()
	if legal.Len() == 0 {
		return board.NoMove, 0, Metrics{TimeSpent: time.Since(start)}
	}

	var (
		bestMove       = legal.Get(0)
		bestScore      int
		depthCompleted int
		aspirRetries   int
		fallbackUsed   = true
	)

	window := 35
	prevScore := 0

	for depth := 1; depth <= s.opts.MaxDepth; depth++ {
		if s.opts.stopRequested() && depth > 1 {
			break
		}

		var score int
		var move board.Move
		var retries int

		if s.opts.MaxThinking && depth >= 4 {
			score, move, retries = s.aspirationSearch(depth, prevScore, window)
		} else {
			score = s.negamax(depth, 0, -Infinity, Infinity, board.NoMove, 0)
			move = s.pvMove(0)
		}
		aspirRetries += retries

		if s.stopped && depth > 1 {
			break
		}

		if move != board.NoMove {
			bestMove = move
			bestScore = score
			depthCompleted = depth
			fallbackUsed = false
			prevScore = score
			log.Debugf("depth %d: %s (%d cp, %d nodes)", depth, move, score, s.nodes)
			if s.opts.OnDepthComplete != nil {
				s.opts.OnDepthComplete(depth, move, score)
			}
		}

		if IsMateScore(score) {
			break
		}
	}

	if depthCompleted == 0 {
		saved := s.opts
		s.opts.Stop = nil
		s.opts.Deadline = time.Time{}
		s.stopped = false
		score := s.negamax(1, 0, -Infinity, Infinity, board.NoMove, 0)
		if move := s.pvMove(0); move != board.NoMove {
			bestMove, bestScore = move, score
		}
		s.opts = saved
	}

	return bestMove, bestScore, Metrics{
		NodesSearched:     s.nodes,
		Cutoffs:           s.cutoffs,
		DepthCompleted:    depthCompleted,
		TimeSpent:         time.Since(start),
		AspirationRetries: aspirRetries,
		FallbackUsed:      fallbackUsed,
	}
}

// aspirationSearch runs a narrow window around prevScore, widening on
// fail-high/fail-low up to 3 retries before giving up and searching the
// full window.
func (s *Searcher) aspirationSearch(depth, prevScore, window int) (int, board.Move, int) {
	alpha := prevScore - window
	beta := prevScore + window
	retries := 0

	for retries < 3 {
		score := s.negamax(depth, 0, alpha, beta, board.NoMove, 0)
		if s.stopped {
			return score, s.pvMove(0), retries
		}
		if score <= alpha {
			alpha -= window * (1 << uint(retries+1))
			if alpha < -Infinity {
				alpha = -Infinity
			}
		} else if score >= beta {
			beta += window * (1 << uint(retries+1))
			if beta > Infinity {
				beta = Infinity
			}
		} else {
			return score, s.pvMove(0), retries
		}
		retries++
	}

	score := s.negamax(depth, 0, -Infinity, Infinity, board.NoMove, 0)
	return score, s.pvMove(0), retries
}

func (s *Searcher) pvMove(ply int) board.Move {
	if s.pvLength[ply] > ply {
		return s.pvMoves[ply][ply]
	}
	return board.NoMove
}

func (s *Searcher) updatePV(ply int, m board.Move) {
	s.pvMoves[ply][ply] = m
	for j := ply + 1; j < s.pvLength[ply+1]; j++ {
		s.pvMoves[ply][j] = s.pvMoves[ply+1][j]
	}
	s.pvLength[ply] = s.pvLength[ply+1]
}

// negamax is the single-threaded alpha-beta core, shared by both
// difficulty shapes; MaxThinking gates the extras (null-move, PVS,
// aspiration is driven by the caller, LMR, killers/countermove ordering).
// extSoFar tracks cumulative forcing-extension plies consumed along this
// line, enforcing the per-line cap.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, prevMove board.Move, extSoFar int) int {
	if s.nodes&63 == 0 && s.opts.stopRequested() {
		s.stopped = true
		return 0
	}
	s.nodes++
	s.pvLength[ply] = ply

	if ply > 0 && s.pos.HalfMoveClock >= 100 {
		return 0
	}
	if s.pos.IsInsufficientMaterialStrict() {
		return 0
	}

	ttKey := s.tt.KeyFor(s.pos)

	var ttMove board.Move
	if entry, ok := s.tt.Probe(ttKey); ok {
		ttMove = entry.BestMove
		if entry.Depth >= depth {
			score := adjustScoreFromTT(entry.Score, ply)
			switch entry.Flag {
			case FlagExact:
				return score
			case FlagBeta:
				if score > alpha {
					alpha = score
				}
			case FlagAlpha:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	inCheck := s.pos.InCheck()

	if depth <= 0 {
		if s.opts.MaxThinking {
			return s.quiescence(ply, alpha, beta, 0)
		}
		return s.microQuiescence(ply, alpha, beta, 0)
	}

	// Null-move pruning: max-thinking only, not while in check, and only
	// with enough material left that zugzwang is unlikely.
	if s.opts.MaxThinking && depth >= 3 && ply > 0 && !inCheck &&
		s.pos.HasNonPawnMaterial() && nonKingMaterial(s.pos, s.pos.SideToMove) >= 1200 {
		undo := s.pos.MakeNullMove()
		score := -s.negamax(depth-3, ply+1, -beta, -beta+1, board.NoMove, extSoFar)
		s.pos.UnmakeNullMove(undo)
		if s.stopped {
			return 0
		}
		if score >= beta {
			return score
		}
	}

	moves := s.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return MateScore(s.pos.SideToMove, s.pos.SideToMove, ply)
		}
		return 0
	}

	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = s.orderer.Score(s.pos, moves.Get(i), ttMove, prevMove, ply, inCheck, s.opts.MaxThinking)
	}

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := FlagAlpha

	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		move := moves.Get(i)

		ext := s.extensionFor(move, inCheck, prevMove, depth, ply, extSoFar)
		childExt := extSoFar + ext

		quiet := !move.IsCapture(s.pos) && !move.IsPromotion() && !inCheck

		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			s.pos.UnmakeMove(move, undo)
			continue
		}
		s.prevMove[ply] = move

		childDepth := depth - 1 + ext

		var score int
		if i == 0 || !s.opts.MaxThinking {
			score = -s.negamax(childDepth, ply+1, -beta, -alpha, move, childExt)
		} else {
			reduction := 0
			if s.opts.MaxThinking && depth >= 3 && i >= 3 && quiet && ext == 0 {
				reduction = 1
			}
			reducedDepth := childDepth - reduction
			if reducedDepth < 0 {
				reducedDepth = 0
			}
			score = -s.negamax(reducedDepth, ply+1, -alpha-1, -alpha, move, childExt)
			if reduction > 0 && score > alpha && !s.stopped {
				score = -s.negamax(childDepth, ply+1, -alpha-1, -alpha, move, childExt)
			}
			if score > alpha && score < beta && !s.stopped {
				score = -s.negamax(childDepth, ply+1, -beta, -alpha, move, childExt)
			}
		}

		s.pos.UnmakeMove(move, undo)

		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				flag = FlagExact
				s.updatePV(ply, move)
			}
		}

		if score >= beta {
			flag = FlagBeta
			bestMove = move
			s.cutoffs++
			if quiet {
				s.orderer.UpdateKillers(ply, move)
				s.orderer.UpdateHistory(move, depth, true)
				s.orderer.UpdateCountermove(prevMove, move)
			}
			break
		}
	}

	s.tt.Store(ttKey, TTEntry{
		Depth:    depth,
		Score:    adjustScoreToTT(bestScore, ply),
		Flag:     flag,
		BestMove: bestMove,
	})

	return bestScore
}

// extensionFor grants a single extra ply for a promotion, an immediate
// recapture on the square the opponent just captured on, or a
// non-hanging check, bounded by a 2-ply-per-line budget and never past
// ply 6 from the root.
func (s *Searcher) extensionFor(move board.Move, inCheck bool, prevMove board.Move, depth, ply, extSoFar int) int {
	if extSoFar >= 2 || ply > 6 || depth <= 0 {
		return 0
	}
	if move.IsPromotion() {
		return 1
	}
	if prevMove != board.NoMove && move.IsCapture(s.pos) && move.To() == prevMove.To() && depth >= 2 {
		return 1
	}
	if givesCheck(s.pos, move) && !isHanging(s.pos, move) {
		return 1
	}
	return 0
}

func nonKingMaterial(pos *board.Position, c board.Color) int {
	total := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		total += pos.Pieces[c][pt].PopCount() * pieceValue[pt]
	}
	return total
}

func pickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}
