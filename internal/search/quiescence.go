package search

import (
	"github.com/ravensworth/chessforge/internal/board"
	"github.com/ravensworth/chessforge/internal/eval"
)

// maxQDepth caps full quiescence at 4 plies beyond the horizon.
const maxQDepth = 4

// maxMicroQDepth caps micro-quiescence at 2 plies.
const maxMicroQDepth = 2

// quiescence extends the search through captures and checks beyond the
// nominal horizon so the static evaluator is never asked to judge a
// position mid-exchange. Captures whose seeLite value is
// clearly losing are pruned unless they give check.
func (s *Searcher) quiescence(ply, alpha, beta, qdepth int) int {
	if s.nodes&63 == 0 && s.opts.stopRequested() {
		s.stopped = true
		return 0
	}
	s.nodes++

	inCheck := s.pos.InCheck()

	standPat := eval.Evaluate(s.pos, s.pos.SideToMove, s.opts.EvalOpts)
	if !inCheck {
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	if qdepth >= maxQDepth && !inCheck {
		return alpha
	}

	var moves *board.MoveList
	if inCheck {
		moves = s.pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			return MateScore(s.pos.SideToMove, s.pos.SideToMove, ply)
		}
	} else {
		moves = s.pos.GenerateCaptures()
		checks := checkingMoves(s.pos)
		for i := 0; i < checks.Len(); i++ {
			if m := checks.Get(i); !moves.Contains(m) {
				moves.Add(m)
			}
		}
	}

	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = s.orderer.Score(s.pos, moves.Get(i), board.NoMove, board.NoMove, ply, inCheck, s.opts.MaxThinking)
	}

	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		move := moves.Get(i)

		if !inCheck {
			net := seeLite(s.pos, move)
			if net <= -350 && !givesCheck(s.pos, move) {
				continue
			}
		}

		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			s.pos.UnmakeMove(move, undo)
			continue
		}
		score := -s.quiescence(ply+1, -beta, -alpha, qdepth+1)
		s.pos.UnmakeMove(move, undo)

		if s.stopped {
			return 0
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// microQuiescence is the "hard" difficulty's cheaper quiescence: only
// checking moves are explored, to a cap of 2 plies, with no capture
// search at all; positions with no checking move fall straight back to
// the static evaluation.
func (s *Searcher) microQuiescence(ply, alpha, beta, qdepth int) int {
	if s.nodes&63 == 0 && s.opts.stopRequested() {
		s.stopped = true
		return 0
	}
	s.nodes++

	inCheck := s.pos.InCheck()
	standPat := eval.Evaluate(s.pos, s.pos.SideToMove, s.opts.EvalOpts)

	if !inCheck {
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	if qdepth >= maxMicroQDepth {
		if inCheck {
			moves := s.pos.GenerateLegalMoves()
			if moves.Len() == 0 {
				return MateScore(s.pos.SideToMove, s.pos.SideToMove, ply)
			}
		}
		return alpha
	}

	var moves *board.MoveList
	if inCheck {
		moves = s.pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			return MateScore(s.pos.SideToMove, s.pos.SideToMove, ply)
		}
	} else {
		moves = checkingMoves(s.pos)
		if moves.Len() == 0 {
			return alpha
		}
	}

	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			s.pos.UnmakeMove(move, undo)
			continue
		}
		score := -s.microQuiescence(ply+1, -beta, -alpha, qdepth+1)
		s.pos.UnmakeMove(move, undo)

		if s.stopped {
			return 0
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// checkingMoves filters the legal move list down to moves that give
// check, since micro-quiescence never considers quiet non-checking moves.
func checkingMoves(pos *board.Position) *board.MoveList {
	all := pos.GenerateLegalMoves()
	out := board.NewMoveList()
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if givesCheck(pos, m) {
			out.Add(m)
		}
	}
	return out
}
