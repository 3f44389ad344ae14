package board

import "fmt"

// StatusKind enumerates the terminal and non-terminal states a position can
// be in. Modeled as a sum type with an explicit variant per Design Note
// "tagged unions ... modeled as sum types with explicit variants".
type StatusKind uint8

const (
	Ongoing StatusKind = iota
	InCheckStatus
	CheckmateStatus
	StalemateStatus
	DrawStatus
)

// String returns a short name for the status kind.
func (k StatusKind) String() string {
	switch k {
	case Ongoing:
		return "Ongoing"
	case InCheckStatus:
		return "Check"
	case CheckmateStatus:
		return "Checkmate"
	case StalemateStatus:
		return "Stalemate"
	case DrawStatus:
		return "Draw"
	default:
		return "Unknown"
	}
}

// DrawReasonThreefold and DrawReasonInsufficientMaterial are the only two
// draw reasons this engine declares; the 50-move rule is tracked via
// Position.HalfMoveClock but intentionally not surfaced here.
const (
	DrawReasonThreefold            = "threefold repetition"
	DrawReasonInsufficientMaterial = "insufficient material"
)

// GameStatus is the result of evaluating game_status(state).
type GameStatus struct {
	Kind   StatusKind
	Winner Color // only meaningful when Kind == CheckmateStatus
	Reason string
}

// String renders the status for logs and diagnostics.
func (s GameStatus) String() string {
	switch s.Kind {
	case CheckmateStatus:
		return fmt.Sprintf("Checkmate(%s)", s.Winner)
	case DrawStatus:
		return fmt.Sprintf("Draw(%q)", s.Reason)
	default:
		return s.Kind.String()
	}
}

// IsTerminal returns true if no further moves can be played.
func (s GameStatus) IsTerminal() bool {
	return s.Kind == CheckmateStatus || s.Kind == StalemateStatus || s.Kind == DrawStatus
}

// Status computes game_status for the position, consulting repCount for
// threefold repetition (the caller supplies the occurrence count of
// PositionKey(p) from GameState.PositionCounts, since Position itself does
// not track history — see Design Note on GameState vs. Position).
func (p *Position) Status(repCount int) GameStatus {
	hasMoves := p.HasLegalMoves()
	inCheck := p.InCheck()

	if !hasMoves {
		if inCheck {
			return GameStatus{Kind: CheckmateStatus, Winner: p.SideToMove.Other()}
		}
		return GameStatus{Kind: StalemateStatus}
	}

	if repCount >= 3 {
		return GameStatus{Kind: DrawStatus, Reason: DrawReasonThreefold}
	}

	if p.IsInsufficientMaterialStrict() {
		return GameStatus{Kind: DrawStatus, Reason: DrawReasonInsufficientMaterial}
	}

	if inCheck {
		return GameStatus{Kind: InCheckStatus}
	}
	return GameStatus{Kind: Ongoing}
}

// IsInsufficientMaterialStrict recognizes a narrow list of dead positions:
// K v K; K+N v K; K+B v K; K+B v K+B with both bishops on same-colored
// squares. This intentionally does not cover KBNvK or opposite-colored
// bishop endings.
func (p *Position) IsInsufficientMaterialStrict() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	totalMinors := wKnights + wBishops + bKnights + bBishops

	// K v K
	if totalMinors == 0 {
		return true
	}

	// K+N v K or K+B v K
	if totalMinors == 1 && (wKnights+bKnights <= 1) && (wBishops+bBishops <= 1) {
		return true
	}

	// K+B v K+B, same-colored bishops, nothing else
	if wKnights == 0 && bKnights == 0 && wBishops == 1 && bBishops == 1 {
		wSq := p.Pieces[White][Bishop].LSB()
		bSq := p.Pieces[Black][Bishop].LSB()
		return squareColor(wSq) == squareColor(bSq)
	}

	return false
}

// squareColor returns 0 for a dark square and 1 for a light square.
func squareColor(sq Square) int {
	return (sq.File() + sq.Rank()) % 2
}
