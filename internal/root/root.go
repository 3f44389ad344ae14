// Package root implements the anti-repetition root policy:
// it takes the set of root move candidates a search has already scored and
// reshapes those scores with a progress bias, a repetition penalty, a
// two-ply anti-loop simulation, and contempt, then windows the survivors
// down to a final pick made with a seeded RNG.
//
// The package is deliberately decoupled from internal/search: it consumes
// plain Candidate values (move, base_score, repeat_count, is_repeat)
// rather than a *search.Searcher, so the shaping logic can be exercised
// and tested without running a real search. The top-level chessforge API
// is what wires internal/search's root-move scores into Candidate values
// and calls Select.
package root

import (
	"math/rand"

	"github.com/ravensworth/chessforge/internal/board"
	"github.com/ravensworth/chessforge/internal/eval"
	"github.com/ravensworth/chessforge/internal/logging"
)

var log = logging.Get("root")

// RepeatKind classifies how serious the best repeat among the candidates
// is, for diagnostics.
type RepeatKind string

const (
	RepeatNone    RepeatKind = "none"
	RepeatNear    RepeatKind = "near-repetition"
	RepeatThree   RepeatKind = "threefold"
)

// ChosenReason explains why Select returned the move it did.
type ChosenReason string

const (
	ReasonNonRepeatBest     ChosenReason = "non-repeat-best"
	ReasonRepeatNoCloseAlt  ChosenReason = "repeat-best-no-close-alt"
	ReasonAvoidRepeat       ChosenReason = "avoid-repeat-within-window"
	ReasonLosingAllowRepeat ChosenReason = "losing-allow-repeat"
)

// Candidate is one root move annotated for the shaping pass:
// base_score is the raw search score, score starts equal to base_score and
// accumulates the shaping terms below, repeat_count is the occurrence
// count of the post-move position in recent_positions, and is_repeat flags
// it as a repeat even when repeat_count is still 0 (a "near-repetition"
// the caller has otherwise identified).
type Candidate struct {
	Move        board.Move
	BaseScore   int
	Score       int
	RepeatCount int
	IsRepeat    bool
}

// Options carries the root-policy knobs a caller can override; every field
// left at its zero value falls back to a difficulty-aware default.
type Options struct {
	MaxThinking bool // Max difficulty vs. Hard; governs every scale/2x knob below
	PlayForWin  bool

	Seed *int64

	RecentPositions map[string]int // position_key -> occurrence count

	RepetitionPenaltyScale   float64 // multiplies the base repetition penalty; 0 means "use 1"
	HardRepetitionNudgeScale float64 // multiplies the tie-break nudge; 0 means "use 1"
	RepeatBanWindowCp        int     // 0 means "use the difficulty default (hard 60, max 100)"
	DrawHoldThreshold        int     // 0 means "use the default (-80)"
	TwoPlyRepeatPenalty      int     // 0 means "use the default (20)"
	TwoPlyRepeatTopN         int     // 0 means "use the default (6)"
	ContemptCp               int     // 0 means "use the difficulty default (hard 10, max 20)"

	TopWindow      int // 0 means "use the default (10)"
	FairnessWindow int // 0 means "use the default (25)"

	EvalOpts eval.Options
}

func (o Options) drawHold() int {
	if o.DrawHoldThreshold != 0 {
		return o.DrawHoldThreshold
	}
	return -80
}

func (o Options) repetitionScale() float64 {
	if o.RepetitionPenaltyScale != 0 {
		return o.RepetitionPenaltyScale
	}
	return 1
}

func (o Options) nudgeScale() float64 {
	if o.HardRepetitionNudgeScale != 0 {
		return o.HardRepetitionNudgeScale
	}
	return 1
}

func (o Options) repeatBanWindow() int {
	if o.RepeatBanWindowCp != 0 {
		return o.RepeatBanWindowCp
	}
	if o.MaxThinking {
		return 100
	}
	return 60
}

func (o Options) twoPlyPenaltyBase() int {
	if o.TwoPlyRepeatPenalty != 0 {
		return o.TwoPlyRepeatPenalty
	}
	return 20
}

func (o Options) twoPlyTopN() int {
	if o.TwoPlyRepeatTopN != 0 {
		return o.TwoPlyRepeatTopN
	}
	return 6
}

func (o Options) contempt() int {
	if o.ContemptCp != 0 {
		return o.ContemptCp
	}
	if o.MaxThinking {
		return 20
	}
	return 10
}

func (o Options) topWindow() int {
	if o.TopWindow != 0 {
		return o.TopWindow
	}
	return 10
}

func (o Options) fairnessWindow() int {
	if o.FairnessWindow != 0 {
		return o.FairnessWindow
	}
	return 25
}

// Diagnostics is the optional reporting a caller can surface alongside a
// chosen move: the top candidates considered, why the chosen one won, and
// the most serious repetition among the field.
type Diagnostics struct {
	Top5           []CandidateSummary
	ChosenReason   ChosenReason
	BestRepeatKind RepeatKind
}

// CandidateSummary is the diagnostics-facing view of a Candidate.
type CandidateSummary struct {
	Move        board.Move
	Score       int
	BaseScore   int
	IsRepeat    bool
	RepeatCount int
}

// Select runs the full root policy sequence over candidates and returns
// the chosen move plus diagnostics. pos is the position the candidates'
// moves are legal in; it is used (and restored) to simulate the two-ply
// anti-loop check. candidates must be non-empty.
func Select(pos *board.Position, candidates []Candidate, opts Options) (board.Move, Diagnostics) {
	working := make([]Candidate, len(candidates))
	copy(working, candidates)

	if opts.PlayForWin {
		for i := range working {
			working[i].Score = working[i].BaseScore + progressBias(pos, working[i], opts)
		}
		applyRepetitionPenalty(working, opts)
		applyTwoPlyPenalty(pos, working, opts)
		applyContempt(working, opts)
	} else {
		for i := range working {
			working[i].Score = working[i].BaseScore
		}
	}

	survivors, reason := windowAndBan(working, opts)

	chosen := pickRandom(survivors, opts.Seed)

	diag := Diagnostics{
		Top5:           top5(working),
		ChosenReason:   reason(chosen),
		BestRepeatKind: bestRepeatKind(working),
	}
	log.Debugf("chose %s (%s, repeat kind %s)", chosen.Move, diag.ChosenReason, diag.BestRepeatKind)
	return chosen.Move, diag
}

// progressBias rewards quiet, non-checking developing moves when the side
// is not losing, so the engine keeps making progress instead of shuffling
// pieces aimlessly.
func progressBias(pos *board.Position, c Candidate, opts Options) int {
	if c.BaseScore < opts.drawHold() {
		return 0
	}
	m := c.Move
	if m.IsCapture(pos) || givesCheck(pos, m) {
		return 0
	}

	piece := pos.PieceAt(m.From())
	if piece == board.NoPiece {
		return 0
	}

	bias := 0
	switch piece.Type() {
	case board.Knight, board.Bishop:
		if pos.FullMoveNumber <= 12 && leavesBackRank(piece, m) {
			bias += 6
		}
	case board.King:
		if m.IsCastling() {
			bias += 8
		} else if isCenterToFlank(m) {
			bias += 4
		}
	case board.Rook:
		if c.RepeatCount > 0 {
			bias -= 6
		}
	case board.Pawn:
		if isForwardPawnMove(piece, m) {
			bias += 3
			if reachesFarRank(piece, m) {
				bias += 3
			}
		}
	}
	return bias
}

func leavesBackRank(piece board.Piece, m board.Move) bool {
	backRank := 0
	if piece.Color() == board.Black {
		backRank = 7
	}
	return m.From().Rank() == backRank && m.To().Rank() != backRank
}

func isCenterToFlank(m board.Move) bool {
	fromFile := m.From().File()
	toFile := m.To().File()
	fromCenter := fromFile == 3 || fromFile == 4
	toFlank := toFile <= 2 || toFile >= 5
	return fromCenter && toFlank
}

func isForwardPawnMove(piece board.Piece, m board.Move) bool {
	if piece.Color() == board.White {
		return m.To().Rank() > m.From().Rank()
	}
	return m.To().Rank() < m.From().Rank()
}

func reachesFarRank(piece board.Piece, m board.Move) bool {
	if piece.Color() == board.White {
		return m.To().Rank() >= 4 // rank 5 in 1-indexed terms
	}
	return m.To().Rank() <= 3 // rank 4 in 1-indexed terms
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

// applyRepetitionPenalty discourages repeating a position while ahead,
// scaled by how far ahead and how many times it would repeat, with an
// escape rule that waives the penalty for a losing side's defensive draw.
func applyRepetitionPenalty(cands []Candidate, opts Options) {
	bestNonRepeatBase := -1 << 30
	hasNonRepeat := false
	for _, c := range cands {
		if !c.IsRepeat && c.BaseScore > bestNonRepeatBase {
			bestNonRepeatBase = c.BaseScore
			hasNonRepeat = true
		}
	}

	for i := range cands {
		c := &cands[i]
		if !c.IsRepeat || c.BaseScore < opts.drawHold() {
			continue
		}

		advantage := 0.5
		switch {
		case c.BaseScore >= 120:
			advantage = 3
		case c.BaseScore >= 20:
			advantage = 1
		case c.BaseScore <= -120:
			advantage = 0
		}

		repeatMult := 1.0
		switch {
		case c.RepeatCount >= 2:
			repeatMult = 4
		case c.RepeatCount == 1:
			repeatMult = 2.2
		}

		scale := 1.0
		if opts.MaxThinking {
			scale = 2
		}
		scale *= opts.repetitionScale()

		penalty := 15 * scale * advantage * repeatMult
		if opts.MaxThinking && c.RepeatCount >= 2 {
			penalty *= 1.5
		}

		if hasNonRepeat && bestNonRepeatBase <= -200 && c.BaseScore-bestNonRepeatBase >= 150 {
			penalty = 0
		}

		c.Score -= int(penalty)
	}
}

// applyTwoPlyPenalty simulates the opponent's best reply (by static eval,
// not a further search) to each of the top-N candidates and penalizes a
// move that walks back into a recently seen position.
func applyTwoPlyPenalty(pos *board.Position, cands []Candidate, opts Options) {
	n := opts.twoPlyTopN()
	order := rankByScore(cands)
	if n > len(order) {
		n = len(order)
	}

	for _, idx := range order[:n] {
		c := &cands[idx]

		undo1 := pos.MakeMove(c.Move)
		if !undo1.Valid {
			pos.UnmakeMove(c.Move, undo1)
			continue
		}

		replies := pos.GenerateLegalMoves()
		opponent := pos.SideToMove
		worstKey := ""
		worstScore := -1 << 30
		for i := 0; i < replies.Len(); i++ {
			reply := replies.Get(i)
			undo2 := pos.MakeMove(reply)
			if undo2.Valid {
				s := eval.Evaluate(pos, opponent, opts.EvalOpts)
				if s > worstScore {
					worstScore = s
					worstKey = board.PositionKey(pos)
				}
			}
			pos.UnmakeMove(reply, undo2)
		}
		pos.UnmakeMove(c.Move, undo1)

		if worstKey == "" {
			continue
		}
		if opts.RecentPositions[worstKey] >= 1 {
			mult := 1.0
			if c.RepeatCount >= 2 {
				mult = 1.5
			}
			if opts.MaxThinking {
				mult *= 1.2
			}
			c.Score -= int(float64(opts.twoPlyPenaltyBase()) * mult)
		}
	}
}

// applyContempt nudges the engine away from accepting a repeat-draw
// candidate when it isn't actually losing.
func applyContempt(cands []Candidate, opts Options) {
	for i := range cands {
		c := &cands[i]
		if c.IsRepeat && c.BaseScore >= opts.drawHold() {
			c.Score -= opts.contempt()
		}
	}
}

// rankByScore returns candidate indices sorted by Score, descending.
func rankByScore(cands []Candidate) []int {
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && cands[order[j-1]].Score < cands[order[j]].Score {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	return order
}

// windowAndBan applies the score/fairness windows, the repeat-ban
// restriction, and the tie-break preference for
// non-repeat alternatives. It returns the surviving candidate set and a
// function that derives the ChosenReason once the final pick is known.
func windowAndBan(cands []Candidate, opts Options) ([]Candidate, func(Candidate) ChosenReason) {
	order := rankByScore(cands)
	bestScore := cands[order[0]].Score

	var windowed []Candidate
	for _, c := range cands {
		if opts.PlayForWin {
			if c.Score >= bestScore-opts.topWindow() {
				windowed = append(windowed, c)
			}
		} else if c.Score == bestScore {
			windowed = append(windowed, c)
		}
	}

	bestBase := windowed[0].BaseScore
	for _, c := range windowed {
		if c.BaseScore > bestBase {
			bestBase = c.BaseScore
		}
	}
	var fair []Candidate
	for _, c := range windowed {
		if c.BaseScore >= bestBase-opts.fairnessWindow() {
			fair = append(fair, c)
		}
	}

	scoreBest := fair[0]
	for _, c := range fair {
		if c.Score > scoreBest.Score {
			scoreBest = c
		}
	}

	banApplied := false
	avoidApplied := false
	final := fair

	if opts.PlayForWin && scoreBest.IsRepeat && scoreBest.BaseScore >= opts.drawHold() {
		var bestAlt *Candidate
		for i := range fair {
			c := &fair[i]
			if !c.IsRepeat && c.BaseScore >= scoreBest.BaseScore-opts.repeatBanWindow() {
				if bestAlt == nil || c.Score > bestAlt.Score {
					bestAlt = c
				}
			}
		}
		if bestAlt != nil {
			final = []Candidate{*bestAlt}
			banApplied = true
		}
	}

	if !banApplied {
		tieWindow := 15 * opts.repetitionScale()
		if !opts.MaxThinking && scoreBest.IsRepeat && scoreBest.BaseScore >= 30 {
			bonus := 10 * opts.nudgeScale()
			tieWindow += bonus
		}
		if scoreBest.IsRepeat {
			var alts []Candidate
			for _, c := range fair {
				if !c.IsRepeat && scoreBest.BaseScore-c.BaseScore <= int(tieWindow) {
					alts = append(alts, c)
				}
			}
			if len(alts) > 0 {
				final = alts
				avoidApplied = true
			}
		}
	}

	reason := func(chosen Candidate) ChosenReason {
		switch {
		case !chosen.IsRepeat && (banApplied || avoidApplied):
			return ReasonAvoidRepeat
		case !chosen.IsRepeat:
			return ReasonNonRepeatBest
		case chosen.BaseScore < opts.drawHold():
			return ReasonLosingAllowRepeat
		default:
			return ReasonRepeatNoCloseAlt
		}
	}

	return final, reason
}

// pickRandom chooses uniformly among the survivors using a seeded RNG when
// seed is set, otherwise a time-seeded one.
func pickRandom(survivors []Candidate, seed *int64) Candidate {
	if len(survivors) == 1 {
		return survivors[0]
	}
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(*seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return survivors[rng.Intn(len(survivors))]
}

func top5(cands []Candidate) []CandidateSummary {
	order := rankByScore(cands)
	n := 5
	if n > len(order) {
		n = len(order)
	}
	out := make([]CandidateSummary, n)
	for i := 0; i < n; i++ {
		c := cands[order[i]]
		out[i] = CandidateSummary{
			Move:        c.Move,
			Score:       c.Score,
			BaseScore:   c.BaseScore,
			IsRepeat:    c.IsRepeat,
			RepeatCount: c.RepeatCount,
		}
	}
	return out
}

func bestRepeatKind(cands []Candidate) RepeatKind {
	kind := RepeatNone
	bestScore := -1 << 30
	for _, c := range cands {
		if !c.IsRepeat {
			continue
		}
		if c.Score <= bestScore {
			continue
		}
		bestScore = c.Score
		if c.RepeatCount >= 2 {
			kind = RepeatThree
		} else if kind != RepeatThree {
			kind = RepeatNear
		}
	}
	return kind
}
