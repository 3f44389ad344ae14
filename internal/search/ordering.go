package search

import "github.com/ravensworth/chessforge/internal/board"

// Move ordering score bands. Higher sorts first.
const (
	ttMoveBonus       = 100000
	killerPrimary     = 3000
	killerSecondary   = 2000
	countermoveBonus  = 900
	checkBonus        = 40
	checkBonusDeep    = 60
	developmentBonus  = 15
	evasionCapture    = 2000
	evasionBlock      = 1000
	evasionKingMove   = -200
	evasionKingDanger = -800
	seeBadThreshold   = -200
	historyCapHard    = 250
	historyCapMax     = 1000
)

// Orderer holds the search-lifetime move ordering state: killer slots per
// ply, the history table, and the countermove table. It is reset once per
// ChooseMove call, not per iterative-deepening depth, so history
// accumulates across depths within a single search.
type Orderer struct {
	killers   [maxPly][2]board.Move
	history   [64][64]int
	counter   [64 * 64]board.Move
	maxThink  bool
	historyCp int
}

// NewOrderer creates an orderer. maxThinking enables killer slots and the
// countermove table, reserved for the "max" difficulty; hard mode still
// uses history, capped lower.
func NewOrderer(maxThinking bool) *Orderer {
	limit := historyCapHard
	if maxThinking {
		limit = historyCapMax
	}
	return &Orderer{maxThink: maxThinking, historyCp: limit}
}

func (o *Orderer) indexOf(m board.Move) int {
	return int(m.From())*64 + int(m.To())
}

// UpdateKillers records a beta-cutoff quiet move at ply.
func (o *Orderer) UpdateKillers(ply int, m board.Move) {
	if !o.maxThink || ply >= maxPly {
		return
	}
	if o.killers[ply][0] == m {
		return
	}
	o.killers[ply][1] = o.killers[ply][0]
	o.killers[ply][0] = m
}

// UpdateHistory bumps or decays the history score for a quiet move that
// caused (or failed to cause) a cutoff, capped at historyCp in either
// direction.
func (o *Orderer) UpdateHistory(m board.Move, depth int, good bool) {
	from, to := m.From(), m.To()
	delta := depth * depth
	if !good {
		delta = -delta
	}
	o.history[from][to] += delta
	if o.history[from][to] > o.historyCp {
		o.history[from][to] = o.historyCp
	}
	if o.history[from][to] < -o.historyCp {
		o.history[from][to] = -o.historyCp
	}
}

// UpdateCountermove records that m answered prevMove well.
func (o *Orderer) UpdateCountermove(prevMove, m board.Move) {
	if !o.maxThink || prevMove == board.NoMove {
		return
	}
	o.counter[o.indexOf(prevMove)] = m
}

// Clear resets killers and countermoves and halves history weight for a
// fresh ChooseMove call, aging the history table down rather than wiping it.
func (o *Orderer) Clear() {
	for i := range o.killers {
		o.killers[i][0], o.killers[i][1] = board.NoMove, board.NoMove
	}
	for i := range o.history {
		for j := range o.history[i] {
			o.history[i][j] /= 2
		}
	}
	for i := range o.counter {
		o.counter[i] = board.NoMove
	}
}

// Score assigns an ordering score to m in the current node.
// inCheck switches to check-evasion-specific ordering; deep enables the
// max-thinking-only bonuses (killers, countermoves, the larger check
// bonus).
func (o *Orderer) Score(pos *board.Position, m, ttMove, prevMove board.Move, ply int, inCheck, deep bool) int {
	if m == ttMove {
		return ttMoveBonus
	}

	if inCheck {
		if s, ok := o.evasionScore(pos, m); ok {
			return s
		}
	}

	if m.IsCapture(pos) {
		return o.captureScore(pos, m, deep)
	}

	if m.IsPromotion() {
		promoted := pieceValue[m.Promotion()]
		return promoted - pieceValue[board.Pawn] + 5000
	}

	score := 0
	if givesCheck(pos, m) {
		if deep {
			score += checkBonusDeep
		} else {
			score += checkBonus
		}
	}

	if deep {
		if m == o.killers[ply][0] {
			score += killerPrimary
		} else if m == o.killers[ply][1] {
			score += killerSecondary
		}
		if prevMove != board.NoMove && o.counter[o.indexOf(prevMove)] == m {
			score += countermoveBonus
		}
	}

	if isDevelopingMove(pos, m) {
		score += developmentBonus
	}

	score += o.history[m.From()][m.To()]

	if isHanging(pos, m) {
		score -= (pieceValue[pos.PieceAt(m.From()).Type()] * 3) / 4
	}

	return score
}

// captureScore implements the MVV-LVA-ish capture ordering: captured-piece
// value, scaled by 10x minus the moving piece's value in max-thinking
// mode (the classic MVV-LVA shape), penalized by seeLite when the
// exchange looks clearly bad.
func (o *Orderer) captureScore(pos *board.Position, m board.Move, deep bool) int {
	attacker := pos.PieceAt(m.From())
	var victimValue int
	if m.IsEnPassant() {
		victimValue = pieceValue[board.Pawn]
	} else {
		victimValue = pieceValue[pos.PieceAt(m.To()).Type()]
	}

	score := victimValue
	if deep {
		score = victimValue*10 - pieceValue[attacker.Type()]
	}
	score += 50000

	if net := seeLite(pos, m); net <= seeBadThreshold {
		score -= 400 + abs(net)
	}

	return score
}

func (o *Orderer) evasionScore(pos *board.Position, m board.Move) (int, bool) {
	us := pos.SideToMove
	king := pos.KingSquare[us]

	if m.From() == king {
		to := m.To()
		after := (pos.AllOccupied &^ board.SquareBB(king)) | board.SquareBB(to)
		if pos.AttackersByColor(to, us.Other(), after) != 0 {
			return evasionKingDanger, true
		}
		return evasionKingMove, true
	}
	if m.IsCapture(pos) {
		return evasionCapture, true
	}
	return evasionBlock, true
}

func givesCheck(pos *board.Position, m board.Move) bool {
	undo := pos.MakeMove(m)
	if !undo.Valid {
		pos.UnmakeMove(m, undo)
		return false
	}
	check := pos.InCheck()
	pos.UnmakeMove(m, undo)
	return check
}

// isDevelopingMove flags a minor piece leaving its own back rank during the
// first few moves.
func isDevelopingMove(pos *board.Position, m board.Move) bool {
	if pos.FullMoveNumber > 4 {
		return false
	}
	piece := pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return false
	}
	pt := piece.Type()
	if pt != board.Knight && pt != board.Bishop {
		return false
	}
	backRank := 0
	if piece.Color() == board.Black {
		backRank = 7
	}
	return m.From().Rank() == backRank && m.To().Rank() != backRank
}

// isHanging reports whether the destination square is undefended by the
// mover's own side after moving, and attacked by the opponent, using the
// same one-ply lookahead seeLite relies on.
func isHanging(pos *board.Position, m board.Move) bool {
	mover := pos.PieceAt(m.From())
	if mover == board.NoPiece {
		return false
	}
	to := m.To()
	occAfter := (pos.AllOccupied &^ board.SquareBB(m.From())) | board.SquareBB(to)
	attackers := pos.AttackersByColor(to, mover.Color().Other(), occAfter)
	if attackers == 0 {
		return false
	}
	defenders := pos.AttackersByColor(to, mover.Color(), occAfter)
	return defenders == 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
