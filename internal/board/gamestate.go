package board

import "fmt"

// PieceID is a stable piece identity, unique within a single game and
// preserved across moves and promotions. 0 means "no piece". Rather than a
// map-based piece registry, identities live in a fixed 32-slot arena
// indexed by id (pieceArena below), with square-to-id lookup stored in a
// flat array (GameState.squareOwner).
type PieceID uint8

// maxPieces bounds the arena: 32 pieces can exist in a legal starting
// position and promotion never increases piece count.
const maxPieces = 32

// PieceInfo is the public, identity-stable view of a piece.
type PieceInfo struct {
	ID       PieceID
	Kind     PieceType
	Color    Color
	HasMoved bool
}

// AppliedMove is the move that produced a GameState, with the auxiliary
// captured-piece identity kept separate from Move equality, which compares
// every field except the captured piece's id.
type AppliedMove struct {
	Move       Move
	CapturedID PieceID // 0 if the move was not a capture
}

// GameState is the public, identity-preserving view of a chess position
// that external collaborators (UI, harness) mutate via ApplyMove. It wraps
// a bitboard Position (the fast representation the search core operates
// on) and layers a stable piece-id registry and repetition history on top:
//
//	board            -> squareOwner + pos (piece placement)
//	pieces           -> pieceArena
//	active_color     -> pos.SideToMove
//	castling_rights  -> pos.CastlingRights
//	en_passant_target -> pos.EnPassant
//	halfmove_clock   -> pos.HalfMoveClock
//	fullmove_number  -> pos.FullMoveNumber
//	last_move        -> LastMove
//	position_counts  -> PositionCounts
type GameState struct {
	pos            *Position
	squareOwner    [64]PieceID
	pieceArena     [maxPieces + 1]PieceInfo // index 0 unused (PieceID 0 = none)
	pieceAlive     [maxPieces + 1]bool
	nextID         PieceID
	LastMove       *AppliedMove
	PositionCounts map[string]int
}

// NewGameState creates the standard starting position with 32 freshly
// minted piece identities.
func NewGameState() *GameState {
	gs, err := FromFEN(StartFEN)
	if err != nil {
		panic(fmt.Sprintf("board: starting FEN failed to parse: %v", err))
	}
	return gs
}

// FromFEN parses a FEN string into a GameState, minting a fresh piece
// identity for every occupied square in a stable a1..h8 scan order. FEN
// does not carry piece identity, so identity is invented here and then
// preserved by ApplyMove for the life of the game.
func FromFEN(fen string) (*GameState, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("board: malformed FEN %q: %w", fen, err)
	}

	gs := &GameState{
		pos:            pos,
		PositionCounts: make(map[string]int, 64),
	}

	for sq := A1; sq <= H8; sq++ {
		piece := pos.PieceAt(sq)
		if piece == NoPiece {
			continue
		}
		gs.nextID++
		id := gs.nextID
		gs.squareOwner[sq] = id
		gs.pieceArena[id] = PieceInfo{ID: id, Kind: piece.Type(), Color: piece.Color()}
		gs.pieceAlive[id] = true
	}

	gs.PositionCounts[PositionKey(pos)] = 1
	return gs, nil
}

// Position exposes the underlying bitboard representation for the search
// core. External collaborators should prefer the identity-preserving
// accessors below.
func (gs *GameState) Position() *Position {
	return gs.pos
}

// PieceAt returns the piece occupying sq, and whether one is present.
func (gs *GameState) PieceAt(sq Square) (PieceInfo, bool) {
	id := gs.squareOwner[sq]
	if id == 0 || !gs.pieceAlive[id] {
		return PieceInfo{}, false
	}
	return gs.pieceArena[id], true
}

// Pieces returns every live piece, unordered.
func (gs *GameState) Pieces() []PieceInfo {
	out := make([]PieceInfo, 0, maxPieces)
	for id := PieceID(1); id <= maxPieces; id++ {
		if gs.pieceAlive[id] {
			out = append(out, gs.pieceArena[id])
		}
	}
	return out
}

// ActiveColor returns the side to move.
func (gs *GameState) ActiveColor() Color { return gs.pos.SideToMove }

// CastlingRights returns the four castling flags.
func (gs *GameState) CastlingRights() CastlingRights { return gs.pos.CastlingRights }

// EnPassantTarget returns the current en passant target square, or
// NoSquare if none is set.
func (gs *GameState) EnPassantTarget() Square { return gs.pos.EnPassant }

// HalfmoveClock returns plies since the last pawn move or capture. Tracked
// but never consulted by GameStatus.
func (gs *GameState) HalfmoveClock() int { return gs.pos.HalfMoveClock }

// FullmoveNumber returns the full-move counter.
func (gs *GameState) FullmoveNumber() int { return gs.pos.FullMoveNumber }

// PositionKey returns the repetition-relevant key for the current
// position.
func (gs *GameState) PositionKey() string { return PositionKey(gs.pos) }

// RepeatCount returns how many times the current position has occurred.
func (gs *GameState) RepeatCount() int { return gs.PositionCounts[gs.PositionKey()] }

// LegalMoves returns every legal move for c.
func (gs *GameState) LegalMoves(c Color) *MoveList {
	return gs.pos.LegalMovesForColor(c)
}

// LegalMovesFrom returns the legal moves originating at sq.
func (gs *GameState) LegalMovesFrom(sq Square) *MoveList {
	piece, ok := gs.PieceAt(sq)
	if !ok {
		return NewMoveList()
	}
	all := gs.pos.LegalMovesForColor(piece.Color)
	out := NewMoveList()
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if m.From() == sq {
			out.Add(m)
		}
	}
	return out
}

// IsInCheck reports whether c's king is currently attacked.
func (gs *GameState) IsInCheck(c Color) bool {
	return gs.pos.IsInCheckColor(c)
}

// GameStatus computes the terminal/non-terminal status of the position.
func (gs *GameState) GameStatus() GameStatus {
	return gs.pos.Status(gs.RepeatCount())
}

// ErrIllegalMove is returned by ApplyMove when m is not present in
// LegalMoves(ActiveColor()).
type ErrIllegalMove struct {
	Move Move
}

func (e *ErrIllegalMove) Error() string {
	return fmt.Sprintf("board: illegal move %s", e.Move)
}

// ApplyMove validates m against LegalMoves and, if legal, mutates the
// state and returns the applied move with its captured piece identity. The
// state is left unchanged if m is illegal.
func (gs *GameState) ApplyMove(m Move) (AppliedMove, error) {
	legal := gs.pos.GenerateLegalMoves()
	if !legal.Contains(m) {
		return AppliedMove{}, &ErrIllegalMove{Move: m}
	}

	us := gs.pos.SideToMove
	from, to := m.From(), m.To()
	movingID := gs.squareOwner[from]

	var capturedID PieceID
	var capturedSq Square
	if m.IsEnPassant() {
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		capturedID = gs.squareOwner[capturedSq]
	} else if gs.squareOwner[to] != 0 {
		capturedSq = to
		capturedID = gs.squareOwner[to]
	}

	gs.pos.MakeMove(m)

	if capturedID != 0 {
		gs.pieceAlive[capturedID] = false
		gs.squareOwner[capturedSq] = 0
	}

	gs.squareOwner[from] = 0
	gs.squareOwner[to] = movingID
	gs.pieceArena[movingID].HasMoved = true

	if m.IsCastling() {
		rank := from.Rank()
		var rookFrom, rookTo Square
		if to > from {
			rookFrom, rookTo = NewSquare(7, rank), NewSquare(5, rank)
		} else {
			rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
		}
		rookID := gs.squareOwner[rookFrom]
		gs.squareOwner[rookFrom] = 0
		gs.squareOwner[rookTo] = rookID
		gs.pieceArena[rookID].HasMoved = true
	}

	if m.IsPromotion() {
		gs.pieceArena[movingID].Kind = m.Promotion()
	}

	gs.PositionCounts[PositionKey(gs.pos)]++
	applied := AppliedMove{Move: m, CapturedID: capturedID}
	gs.LastMove = &applied
	return applied, nil
}

// Clone deep-copies the state, including its position counts and last
// move, into an independent GameState.
func (gs *GameState) Clone() *GameState {
	clone := *gs
	posCopy := *gs.pos
	clone.pos = &posCopy
	clone.PositionCounts = make(map[string]int, len(gs.PositionCounts))
	for k, v := range gs.PositionCounts {
		clone.PositionCounts[k] = v
	}
	if gs.LastMove != nil {
		lm := *gs.LastMove
		clone.LastMove = &lm
	}
	return &clone
}
