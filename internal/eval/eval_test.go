package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravensworth/chessforge/internal/board"
)

func TestEvaluateStartingPositionIsSymmetric(t *testing.T) {
	pos, err := board.ParseFEN(board.StartFEN)
	require.NoError(t, err)

	white := Evaluate(pos, board.White, Options{})
	black := Evaluate(pos, board.Black, Options{})
	assert.Equal(t, white, black, "the starting position is symmetric, both perspectives must score it the same")
}

func TestEvaluateExtraQueenScoresHigher(t *testing.T) {
	withQueen, err := board.ParseFEN("rnbqkbnr/pppppppp/8/8/3Q4/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)
	withoutQueen, err := board.ParseFEN(board.StartFEN)
	require.NoError(t, err)

	scoreExtra := Evaluate(withQueen, board.White, Options{})
	scoreBase := Evaluate(withoutQueen, board.White, Options{})
	assert.Greater(t, scoreExtra, scoreBase)
}

func TestEvaluateDeepOptionAddsNoPanic(t *testing.T) {
	pos, err := board.ParseFEN(board.StartFEN)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		Evaluate(pos, board.White, Options{Deep: true})
	})
}
