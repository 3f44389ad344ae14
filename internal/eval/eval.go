// Package eval implements the static evaluator. It scores a
// position in centipawns from a given side's perspective. Evaluation is a
// pure function of the position and the enabled option set: no hidden
// state, no RNG, no clock.
//
// Terms are kept deliberately narrow: material, mobility, check, king
// exposure, file pressure, and king-ring attacks, plus a deep-only set of
// extras for max-thinking. Passed pawns, outposts, space, and piece
// coordination belong to a richer evaluator than this one.
package eval

import "github.com/ravensworth/chessforge/internal/board"

// Piece values in centipawns, indexed by board.PieceType.
var pieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// NNUEEvaluator is the optional seam reserved for NNUE inference. No
// implementation ships with this core; a caller may plug one in via
// Options.NNUE.
type NNUEEvaluator interface {
	// Evaluate returns a centipawn score from perspective's point of view.
	Evaluate(pos *board.Position, perspective board.Color) int
}

// Options enables the deep ("max-thinking") evaluation extras and the
// optional NNUE mix term.
type Options struct {
	// Deep enables the max-thinking-only evaluation extras: opening king
	// safety, early-queen penalty, knight/bishop piece-square tables, and
	// the extra king-shield penalty.
	Deep bool

	// NNUE, if non-nil, is mixed into the classical score as
	// classical + NNUEMix*nnue. A nil NNUE or zero NNUEMix leaves the
	// classical evaluation untouched.
	NNUE    NNUEEvaluator
	NNUEMix float64
}

// Evaluate returns evaluate(state, perspective, opts) -> centipawns,
// positive favoring perspective.
func Evaluate(pos *board.Position, perspective board.Color, opts Options) int {
	opponent := perspective.Other()

	score := material(pos, perspective)
	score += mobility(pos, perspective)
	score += checkPenalty(pos, perspective, opponent)
	score += kingExposure(pos, perspective, opponent)
	score += filePressure(pos, perspective, opponent)
	score += kingRingAttack(pos, perspective, opponent)

	if opts.Deep {
		score += openingKingSafety(pos, perspective, opponent)
		score += earlyQueenPenalty(pos, perspective)
		score -= earlyQueenPenalty(pos, opponent)
		score += pieceSquareTables(pos, perspective)
		score -= pieceSquareTables(pos, opponent)
		score += kingShieldPenalty(pos, perspective, opponent)
	}

	if opts.NNUE != nil && opts.NNUEMix != 0 {
		score = score + int(opts.NNUEMix*float64(opts.NNUE.Evaluate(pos, perspective)))
	}

	return score
}

func material(pos *board.Position, perspective board.Color) int {
	opponent := perspective.Other()
	total := 0
	for pt := board.Pawn; pt <= board.King; pt++ {
		total += pos.Pieces[perspective][pt].PopCount() * pieceValue[pt]
		total -= pos.Pieces[opponent][pt].PopCount() * pieceValue[pt]
	}
	return total
}

// mobility is (legal_moves(white) - legal_moves(black)) x 2, oriented to
// perspective.
func mobility(pos *board.Position, perspective board.Color) int {
	whiteMoves := pos.LegalMovesForColor(board.White).Len()
	blackMoves := pos.LegalMovesForColor(board.Black).Len()
	diff := (whiteMoves - blackMoves) * 2
	if perspective == board.Black {
		return -diff
	}
	return diff
}

func checkPenalty(pos *board.Position, perspective, opponent board.Color) int {
	score := 0
	if pos.IsInCheckColor(perspective) {
		score -= 50
	}
	if pos.IsInCheckColor(opponent) {
		score += 50
	}
	return score
}

// phase returns 0 at fullmove <= 10, ramping linearly to 1 by fullmove >= 20.
func phase(pos *board.Position) float64 {
	fm := pos.FullMoveNumber
	if fm <= 10 {
		return 0
	}
	if fm >= 20 {
		return 1
	}
	return float64(fm-10) / 10.0
}

func homeSquare(c board.Color) board.Square {
	if c == board.White {
		return board.E1
	}
	return board.E8
}

// kingExposure penalizes an uncastled king off its home square, with an
// extra penalty once castling rights are gone and the king sits on a
// central file; scaled by game phase and by 1.4x while any queen remains.
func kingExposure(pos *board.Position, perspective, opponent board.Color) int {
	selfPenalty := kingExposurePenalty(pos, perspective)
	oppPenalty := kingExposurePenalty(pos, opponent)

	ph := phase(pos)
	anyQueen := pos.Pieces[board.White][board.Queen] != 0 || pos.Pieces[board.Black][board.Queen] != 0
	mult := ph
	if anyQueen {
		mult *= 1.4
	}

	return int(float64(oppPenalty-selfPenalty) * mult)
}

func kingExposurePenalty(pos *board.Position, c board.Color) int {
	ksq := pos.KingSquare[c]
	if ksq == homeSquare(c) {
		return 0
	}

	penalty := 30
	file := ksq.File()
	if pos.CastlingRights.CanCastle(c, true) || pos.CastlingRights.CanCastle(c, false) {
		// Still has rights: likely a legal king step, not yet committed
		// to a plan; lighter penalty.
		penalty = 15
	} else if file >= 2 && file <= 5 {
		// Rights are gone and the king sits on a central file: exposed.
		penalty += 40
	}
	return penalty
}

// filePressure rewards a rook/queen on a file within one of the enemy
// king's file when that file is open or semi-open from the mover's side,
// and penalizes the symmetric case against perspective's own king.
// Scaled by 0.5 + 0.5*phase.
func filePressure(pos *board.Position, perspective, opponent board.Color) int {
	scale := 0.5 + 0.5*phase(pos)
	bonus := fileHeavyPressure(pos, perspective, opponent)
	penalty := fileHeavyPressure(pos, opponent, perspective)
	return int(float64(bonus-penalty) * scale)
}

// fileHeavyPressure scores attacker's rooks/queens that sit on, or one
// file from, defender's king file, weighted by whether that file is open
// or semi-open from attacker's side.
func fileHeavyPressure(pos *board.Position, attacker, defender board.Color) int {
	kingFile := pos.KingSquare[defender].File()
	score := 0

	heavy := pos.Pieces[attacker][board.Rook] | pos.Pieces[attacker][board.Queen]
	for temp := heavy; temp != 0; {
		sq := temp.PopLSB()
		file := sq.File()
		dist := file - kingFile
		if dist < 0 {
			dist = -dist
		}
		if dist > 1 {
			continue
		}

		ownPawns := pos.Pieces[attacker][board.Pawn] & board.FileMask[file]
		enemyPawns := pos.Pieces[defender][board.Pawn] & board.FileMask[file]

		if ownPawns == 0 && enemyPawns == 0 {
			score += 15 // fully open
		} else if ownPawns == 0 {
			score += 8 // semi-open from attacker's side
		}
	}
	return score
}

// kingRingAttack counts opponent attacks on the 8 squares around
// perspective's king, only while a queen remains, scaled down toward the
// endgame.
func kingRingAttack(pos *board.Position, perspective, opponent board.Color) int {
	anyQueen := pos.Pieces[board.White][board.Queen] != 0 || pos.Pieces[board.Black][board.Queen] != 0
	if !anyQueen {
		return 0
	}

	selfRingAttacks := countRingAttackers(pos, perspective, opponent)
	oppRingAttacks := countRingAttackers(pos, opponent, perspective)

	scale := 1.0 - phase(pos)*0.6
	return int(float64(oppRingAttacks-selfRingAttacks) * 8 * scale)
}

func countRingAttackers(pos *board.Position, defender, attacker board.Color) int {
	ring := board.KingAttacks(pos.KingSquare[defender])
	count := 0
	for ring != 0 {
		sq := ring.PopLSB()
		attackers := pos.AttackersByColor(sq, attacker, pos.AllOccupied)
		count += attackers.PopCount()
	}
	return count
}
