package search

import "github.com/ravensworth/chessforge/internal/board"

// pieceValue mirrors internal/eval's table; kept local so the search core
// does not import internal/eval just for six integers.
var pieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// seeLite approximates static-exchange-evaluation with a single recapture
// ply: captured value, minus the moving piece's value, minus the cheapest
// defender that could immediately recapture on the destination square. It
// is not a full SEE: deeper exchange chains
// beyond the first recapture are not modeled, which is why move ordering
// treats its output as a coarse "is this capture obviously bad" signal
// rather than an exact gain.
func seeLite(pos *board.Position, m board.Move) int {
	from, to := m.From(), m.To()
	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	var capturedValue int
	if m.IsEnPassant() {
		capturedValue = pieceValue[board.Pawn]
	} else {
		captured := pos.PieceAt(to)
		if captured == board.NoPiece {
			return 0
		}
		capturedValue = pieceValue[captured.Type()]
	}

	attackerValue := pieceValue[attacker.Type()]

	occAfter := (pos.AllOccupied &^ board.SquareBB(from)) | board.SquareBB(to)
	defenders := pos.AttackersByColor(to, attacker.Color().Other(), occAfter)

	minDefender := 0
	if defenders != 0 {
		minDefender = leastValueAmong(pos, defenders)
	}

	return capturedValue - attackerValue - minDefender
}

func leastValueAmong(pos *board.Position, bb board.Bitboard) int {
	min := -1
	for bb != 0 {
		sq := bb.PopLSB()
		v := pieceValue[pos.PieceAt(sq).Type()]
		if min == -1 || v < min {
			min = v
		}
	}
	return min
}
