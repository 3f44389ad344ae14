// Package harness drives an external UCI-speaking chess engine (Stockfish
// or similar) as a sparring partner for benchmarking, by shelling out to
// it and talking the UCI line protocol over its stdin/stdout. It is a
// client of that protocol, not an implementation of it: nothing here
// parses "go"/"position" commands the way an engine would, it only ever
// sends them.
package harness

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ravensworth/chessforge/internal/logging"
)

var log = logging.Get("harness")

// Engine is a running external UCI process.
type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    *bufio.Scanner
	mu     sync.Mutex
	name   string
	closed bool
}

// GoLimits mirrors the subset of UCI's "go" parameters a benchmark driver
// needs: a move-time budget, a depth budget, or both. Zero means
// "unset, let the engine decide".
type GoLimits struct {
	MoveTime time.Duration
	Depth    int
}

// Start launches path as a subprocess and performs the uci/uciok
// handshake (isready/readyok is done by NewGame). args are passed through
// to the subprocess unchanged.
func Start(ctx context.Context, path string, args ...string) (*Engine, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("harness: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("harness: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("harness: starting %s: %w", path, err)
	}

	e := &Engine{
		cmd:   cmd,
		stdin: stdin,
		out:   bufio.NewScanner(stdout),
		name:  path,
	}
	e.out.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if err := e.send("uci"); err != nil {
		return nil, err
	}
	if err := e.waitFor("uciok"); err != nil {
		return nil, fmt.Errorf("harness: %s did not reply uciok: %w", path, err)
	}
	log.Infof("started external engine %s", path)
	return e, nil
}

func (e *Engine) send(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := io.WriteString(e.stdin, line+"\n")
	return err
}

// waitFor scans lines until one equals or starts with want, discarding
// everything else (info strings, id lines, and so on).
func (e *Engine) waitFor(want string) error {
	for e.out.Scan() {
		line := strings.TrimSpace(e.out.Text())
		if line == want || strings.HasPrefix(line, want+" ") {
			return nil
		}
	}
	if err := e.out.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

// NewGame resets the external engine's internal state between games.
func (e *Engine) NewGame() error {
	if err := e.send("ucinewgame"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

// SetPosition sends a FEN (or "startpos") plus a move sequence in UCI
// long-algebraic form, matching the "position" command's argument shape.
func (e *Engine) SetPosition(fenOrStartpos string, moves []string) error {
	var sb strings.Builder
	sb.WriteString("position ")
	if fenOrStartpos == "" || fenOrStartpos == "startpos" {
		sb.WriteString("startpos")
	} else {
		sb.WriteString("fen ")
		sb.WriteString(fenOrStartpos)
	}
	if len(moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(moves, " "))
	}
	return e.send(sb.String())
}

// BestMove requests a move under limits and blocks until the engine
// replies with a "bestmove" line or ctx is canceled.
func (e *Engine) BestMove(ctx context.Context, limits GoLimits) (string, error) {
	var sb strings.Builder
	sb.WriteString("go")
	if limits.Depth > 0 {
		sb.WriteString(" depth ")
		sb.WriteString(strconv.Itoa(limits.Depth))
	}
	if limits.MoveTime > 0 {
		sb.WriteString(" movetime ")
		sb.WriteString(strconv.Itoa(int(limits.MoveTime.Milliseconds())))
	}
	if err := e.send(sb.String()); err != nil {
		return "", err
	}

	type result struct {
		move string
		err  error
	}
	resultCh := make(chan result, 1)
	go func() {
		for e.out.Scan() {
			line := strings.TrimSpace(e.out.Text())
			if strings.HasPrefix(line, "bestmove ") {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					resultCh <- result{move: fields[1]}
				} else {
					resultCh <- result{err: fmt.Errorf("harness: malformed bestmove line %q", line)}
				}
				return
			}
		}
		if err := e.out.Err(); err != nil {
			resultCh <- result{err: err}
			return
		}
		resultCh <- result{err: io.ErrUnexpectedEOF}
	}()

	select {
	case <-ctx.Done():
		_ = e.send("stop")
		return "", ctx.Err()
	case r := <-resultCh:
		return r.move, r.err
	}
}

// Close sends "quit" and waits for the subprocess to exit.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	_ = e.send("quit")
	_ = e.stdin.Close()
	return e.cmd.Wait()
}
