package board

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// PositionKey returns a stable string key derived from piece placement,
// side to move, castling rights, and the en passant target square.
// HalfMoveClock and FullMoveNumber are intentionally excluded so that
// repetition detection treats positions differing only by move-counters
// as identical.
//
// The max-difficulty transposition table keys on the incremental 64-bit
// Zobrist hash (Position.Hash) instead; this string key is the
// slower-but-obviously-correct key used for GameState.PositionCounts and
// for reasoning about key equality in tests.
func PositionKey(p *Position) string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	return sb.String()
}

// PositionKeyHash hashes PositionKey(p) with xxhash into a 64-bit
// fingerprint; search.BoundedTT uses it as its probe/store key.
func PositionKeyHash(p *Position) uint64 {
	return xxhash.Sum64String(PositionKey(p))
}
