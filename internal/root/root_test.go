package root

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravensworth/chessforge/internal/board"
)

func mustMove(t *testing.T, pos *board.Position, fromSAN, toSAN string) board.Move {
	t.Helper()
	from, err := board.ParseSquare(fromSAN)
	require.NoError(t, err)
	to, err := board.ParseSquare(toSAN)
	require.NoError(t, err)

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == from && m.To() == to {
			return m
		}
	}
	t.Fatalf("no legal move %s-%s in position", fromSAN, toSAN)
	return board.NoMove
}

func TestSelectPrefersNonRepeatWhenWinning(t *testing.T) {
	pos := board.NewPosition()
	repeatMove := mustMove(t, pos, "g1", "f3")
	otherMove := mustMove(t, pos, "e2", "e4")

	seed := int64(1)
	cands := []Candidate{
		{Move: repeatMove, BaseScore: 150, RepeatCount: 2, IsRepeat: true},
		{Move: otherMove, BaseScore: 140, RepeatCount: 0, IsRepeat: false},
	}

	chosen, diag := Select(pos, cands, Options{MaxThinking: true, PlayForWin: true, Seed: &seed})
	assert.Equal(t, otherMove, chosen)
	assert.Equal(t, ReasonAvoidRepeat, diag.ChosenReason)
}

func TestSelectAllowsRepeatWhenLosing(t *testing.T) {
	pos := board.NewPosition()
	onlyMove := mustMove(t, pos, "g1", "f3")

	seed := int64(1)
	cands := []Candidate{
		{Move: onlyMove, BaseScore: -300, RepeatCount: 2, IsRepeat: true},
	}

	chosen, diag := Select(pos, cands, Options{MaxThinking: true, PlayForWin: true, Seed: &seed})
	assert.Equal(t, onlyMove, chosen)
	assert.Equal(t, ReasonLosingAllowRepeat, diag.ChosenReason)
}

func TestSelectWithoutPlayForWinKeepsBestScoreOnly(t *testing.T) {
	pos := board.NewPosition()
	a := mustMove(t, pos, "g1", "f3")
	b := mustMove(t, pos, "e2", "e4")

	seed := int64(7)
	cands := []Candidate{
		{Move: a, BaseScore: 100},
		{Move: b, BaseScore: 120},
	}

	chosen, _ := Select(pos, cands, Options{PlayForWin: false, Seed: &seed})
	assert.Equal(t, b, chosen)
}

func TestBestRepeatKindClassification(t *testing.T) {
	cands := []Candidate{
		{Score: 10, IsRepeat: true, RepeatCount: 2},
		{Score: 5, IsRepeat: true, RepeatCount: 0},
	}
	assert.Equal(t, RepeatThree, bestRepeatKind(cands))

	cands2 := []Candidate{
		{Score: 10, IsRepeat: true, RepeatCount: 0},
	}
	assert.Equal(t, RepeatNear, bestRepeatKind(cands2))

	cands3 := []Candidate{
		{Score: 10, IsRepeat: false},
	}
	assert.Equal(t, RepeatNone, bestRepeatKind(cands3))
}
