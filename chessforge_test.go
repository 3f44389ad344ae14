package chessforge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravensworth/chessforge/internal/board"
)

func TestChooseMoveFoolsMate(t *testing.T) {
	state, err := board.FromFEN("rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2")
	require.NoError(t, err)

	move, ok := ChooseMove(state, AIOptions{Difficulty: Max})
	require.True(t, ok)
	assert.Equal(t, board.H4, move.To())
}

func TestChooseMoveNoLegalMoves(t *testing.T) {
	// Back-rank checkmate: black to move, no legal move.
	state, err := board.FromFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)

	move, ok := ChooseMove(state, AIOptions{Difficulty: Easy})
	assert.False(t, ok)
	assert.Equal(t, board.NoMove, move)
}

func TestChooseMoveWithMetricsReportsCompletion(t *testing.T) {
	state := board.NewGameState()

	move, ok, diag, metrics := ChooseMoveWithMetrics(state, AIOptions{Difficulty: Easy})
	require.True(t, ok)
	require.NotEqual(t, board.NoMove, move)
	require.NotNil(t, metrics)
	assert.NotNil(t, diag)
	assert.GreaterOrEqual(t, metrics.DepthCompleted, 1)
	assert.Equal(t, StopCompleted, metrics.StopReason)
}

func TestChooseMoveWithDiagnosticsPopulatesRootDiagnostics(t *testing.T) {
	state := board.NewGameState()

	move, ok, diag := ChooseMoveWithDiagnostics(state, AIOptions{Difficulty: Easy})
	require.True(t, ok)
	require.NotEqual(t, board.NoMove, move)
	require.NotNil(t, diag)
}

func TestChooseMoveDeterministicWithFixedSeed(t *testing.T) {
	state := board.NewGameState()
	seed := int64(42)

	opts := AIOptions{
		Difficulty:      Hard,
		PlayForWin:      true,
		Seed:            &seed,
		RecentPositions: map[string]int{},
	}

	first, okFirst := ChooseMove(state, opts)
	second, okSecond := ChooseMove(state, opts)

	require.True(t, okFirst)
	require.True(t, okSecond)
	assert.Equal(t, first, second, "the same seed against the same position must pick the same move")
}

func TestChooseMoveHonorsExternalStop(t *testing.T) {
	state := board.NewGameState()

	called := false
	opts := AIOptions{
		Difficulty: Max,
		StopRequested: func() bool {
			called = true
			return true
		},
	}

	move, ok, _, metrics := chooseMove(state, opts, false, true)
	require.True(t, ok)
	require.NotEqual(t, board.NoMove, move)
	require.NotNil(t, metrics)
	assert.True(t, called)
}

func TestDifficultyPolicyMapping(t *testing.T) {
	assert.Equal(t, 1, Easy.policy().maxDepth)
	assert.Equal(t, 2, Medium.policy().maxDepth)
	assert.Equal(t, 3, Hard.policy().maxDepth)

	maxPolicy := Max.policy()
	assert.Equal(t, 7, maxPolicy.maxDepth)
	assert.Equal(t, 10000, maxPolicy.maxTimeMs)
	assert.True(t, maxPolicy.maxThinking)
}

func TestDifficultyStringRoundTrip(t *testing.T) {
	assert.Equal(t, "Easy", Easy.String())
	assert.Equal(t, "Medium", Medium.String())
	assert.Equal(t, "Hard", Hard.String())
	assert.Equal(t, "Max", Max.String())
}
