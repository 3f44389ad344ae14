package harness

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// findStockfish locates a UCI engine binary for integration testing,
// skipping the test when none is installed.
func findStockfish(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("stockfish")
	if err != nil {
		t.Skip("stockfish not installed, skipping harness integration test")
	}
	return path
}

func TestStartHandshake(t *testing.T) {
	path := findStockfish(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eng, err := Start(ctx, path)
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.NewGame())
}

func TestBestMoveFromStartpos(t *testing.T) {
	path := findStockfish(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eng, err := Start(ctx, path)
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.NewGame())
	require.NoError(t, eng.SetPosition("startpos", nil))

	move, err := eng.BestMove(ctx, GoLimits{Depth: 5})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(move), 4, "expected a long-algebraic move like e2e4, got %q", move)
}
