package search

import "github.com/ravensworth/chessforge/internal/board"

// MateIn is the base magnitude a mate score is encoded from; scores are
// shifted down by ply so that shorter mates always score strictly higher
// than longer ones.
const MateIn = 20000

// Infinity bounds the alpha-beta window; it is kept well clear of MateIn so
// a window of [-Infinity, Infinity] never clips a mate score.
const Infinity = 30000

// MateScore returns mate_score(side_to_move, maximizing_color, ply):
// sign*(MateIn-ply), where sign is -1 when the side to move is the
// maximizing side (it has just been mated) and +1 otherwise.
// It is a pure function of the three inputs, independent of the search
// engine's internal negamax convention, so diagnostics and tests can call
// it without touching the tree.
func MateScore(sideToMove, maximizingColor board.Color, ply int) int {
	sign := 1
	if sideToMove == maximizingColor {
		sign = -1
	}
	return sign * (MateIn - ply)
}

// IsMateScore reports whether s falls in the band MateScore can produce at
// some ply between 0 and maxPly, i.e. whether s represents a forced
// mate rather than a material/positional evaluation.
func IsMateScore(s int) bool {
	return s > MateIn-maxPly || s < -(MateIn-maxPly)
}

// adjustScoreFromTT and adjustScoreToTT re-base a mate score stored in the
// transposition table between "plies from the root" (used during search)
// and "plies from this node" (independent of where the node sits in the
// tree, the form fit to store).
func adjustScoreFromTT(score, ply int) int {
	if score > MateIn-maxPly {
		return score - ply
	}
	if score < -(MateIn - maxPly) {
		return score + ply
	}
	return score
}

func adjustScoreToTT(score, ply int) int {
	if score > MateIn-maxPly {
		return score + ply
	}
	if score < -(MateIn - maxPly) {
		return score - ply
	}
	return score
}
