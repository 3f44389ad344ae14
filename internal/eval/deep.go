package eval

import "github.com/ravensworth/chessforge/internal/board"

// Deep ("max-thinking" only) evaluation extras.

var minorStartSquares = map[board.Color][]board.Square{
	board.White: {board.B1, board.G1, board.C1, board.F1},
	board.Black: {board.B8, board.G8, board.C8, board.F8},
}

func queenStartSquare(c board.Color) board.Square {
	if c == board.White {
		return board.D1
	}
	return board.D8
}

func castledSquares(c board.Color) (kingside, queenside board.Square) {
	if c == board.White {
		return board.G1, board.C1
	}
	return board.G8, board.C8
}

func chebyshev(a, b board.Square) int {
	df := a.File() - b.File()
	dr := a.Rank() - b.Rank()
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

// openingKingSafety bonuses a castled or home-square king, penalizes an
// uncastled king scaled by distance from home, and penalizes missing
// shield pawns on the f/g/h files (side-relative).
func openingKingSafety(pos *board.Position, perspective, opponent board.Color) int {
	return kingSafetyFor(pos, perspective) - kingSafetyFor(pos, opponent)
}

func kingSafetyFor(pos *board.Position, c board.Color) int {
	ksq := pos.KingSquare[c]
	home := homeSquare(c)
	kingside, queenside := castledSquares(c)

	score := 0
	switch ksq {
	case home:
		score += 10
	case kingside, queenside:
		score += 20
	default:
		score -= 10 * chebyshev(ksq, home)
	}

	shieldFiles := []int{5, 6, 7} // f, g, h
	for _, f := range shieldFiles {
		if pos.Pieces[c][board.Pawn]&board.FileMask[f] == 0 {
			score -= 10
		}
	}

	return score
}

// earlyQueenPenalty penalizes moving the queen before developing at least
// 2 minor pieces, fading to zero by fullmove 10.
func earlyQueenPenalty(pos *board.Position, c board.Color) int {
	if pos.FullMoveNumber >= 10 {
		return 0
	}

	queenBB := pos.Pieces[c][board.Queen]
	if queenBB == 0 || queenBB.IsSet(queenStartSquare(c)) {
		return 0
	}

	developed := 0
	for _, sq := range minorStartSquares[c] {
		piece := pos.PieceAt(sq)
		if piece == board.NoPiece || piece.Color() != c {
			developed++
		}
	}
	if developed >= 2 {
		return 0
	}

	fade := float64(10-pos.FullMoveNumber) / 10.0
	return -int(40 * fade)
}

// knightPST and bishopPST are White-relative piece-square tables (a1=0 in
// rank-major board.Square terms, so index 0 here is a1, 63 is h8). Mirrored
// for Black via Square.Mirror().
var knightPST = [64]int{
	-40, -30, -20, -20, -20, -20, -30, -40,
	-30, -10, 0, 5, 5, 0, -10, -30,
	-20, 5, 10, 15, 15, 10, 5, -20,
	-20, 0, 15, 20, 20, 15, 0, -20,
	-20, 5, 15, 20, 20, 15, 5, -20,
	-20, 0, 10, 15, 15, 10, 0, -20,
	-30, -10, 0, 0, 0, 0, -10, -30,
	-40, -30, -20, -20, -20, -20, -30, -40,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

func pieceSquareTables(pos *board.Position, c board.Color) int {
	score := 0
	knights := pos.Pieces[c][board.Knight]
	for knights != 0 {
		sq := knights.PopLSB()
		score += pstLookup(knightPST, sq, c)
	}
	bishops := pos.Pieces[c][board.Bishop]
	for bishops != 0 {
		sq := bishops.PopLSB()
		score += pstLookup(bishopPST, sq, c)
	}
	return score
}

func pstLookup(table [64]int, sq board.Square, c board.Color) int {
	if c == board.Black {
		sq = sq.Mirror()
	}
	return table[sq]
}

// kingShieldPenalty adds an extra penalty around the king's own file on
// top of the base king-exposure term.
func kingShieldPenalty(pos *board.Position, perspective, opponent board.Color) int {
	return shieldFor(pos, perspective) - shieldFor(pos, opponent)
}

func shieldFor(pos *board.Position, c board.Color) int {
	ksq := pos.KingSquare[c]
	file := ksq.File()

	var shieldRank int
	if c == board.White {
		shieldRank = 1
	} else {
		shieldRank = 6
	}

	shieldMask := board.FileMask[file] & board.RankMask[shieldRank]
	if pos.Pieces[c][board.Pawn]&shieldMask == 0 {
		return -15
	}
	return 0
}
