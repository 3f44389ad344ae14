package search

import "github.com/ravensworth/chessforge/internal/board"

// TTFlag records which side of the alpha-beta window a stored score bounds.
type TTFlag uint8

const (
	FlagExact TTFlag = iota
	FlagAlpha        // score is an upper bound (the node failed low)
	FlagBeta         // score is a lower bound (the node failed high)
)

// TTEntry is one transposition table record.
type TTEntry struct {
	Depth    int
	Score    int
	Flag     TTFlag
	BestMove board.Move
}

// TranspositionTable is the common interface both TT variants satisfy, so
// the searcher doesn't care which one backs a given difficulty. KeyFor lets
// each variant pick its own probe/store key instead of forcing one hash
// scheme on both: BoundedTT keys off the position's canonical string hash,
// UnboundedTT off the incremental Zobrist hash already maintained on Position.
type TranspositionTable interface {
	KeyFor(pos *board.Position) uint64
	Probe(key uint64) (TTEntry, bool)
	Store(key uint64, entry TTEntry)
	Clear()
	Len() int
}

// BoundedTT is a fixed-size, power-of-2, open-addressed table with one
// entry per slot: a store always replaces an entry for a different key, and
// replaces an entry for the same key unless the new entry is shallower. It
// is used for the "hard" difficulty so memory use stays predictable
// regardless of how long the search runs.
type BoundedTT struct {
	entries []boundedSlot
	mask    uint64
}

type boundedSlot struct {
	key      uint64
	occupied bool
	entry    TTEntry
}

// NewBoundedTT creates a table with at least minEntries slots, rounded up
// to the next power of 2.
func NewBoundedTT(minEntries int) *BoundedTT {
	n := uint64(1)
	for n < uint64(minEntries) {
		n <<= 1
	}
	return &BoundedTT{
		entries: make([]boundedSlot, n),
		mask:    n - 1,
	}
}

// KeyFor hashes the position's canonical placement+side+castling+ep string
// with xxhash, rather than the engine's incremental Zobrist hash, so the
// bounded table's replacement behavior is driven by the same notion of
// "same position" the rules and repetition tracking use.
func (tt *BoundedTT) KeyFor(pos *board.Position) uint64 {
	return board.PositionKeyHash(pos)
}

func (tt *BoundedTT) Probe(key uint64) (TTEntry, bool) {
	slot := &tt.entries[key&tt.mask]
	if slot.occupied && slot.key == key {
		return slot.entry, true
	}
	return TTEntry{}, false
}

func (tt *BoundedTT) Store(key uint64, entry TTEntry) {
	slot := &tt.entries[key&tt.mask]
	if slot.occupied && slot.key == key && entry.Depth < slot.entry.Depth {
		return
	}
	slot.key = key
	slot.occupied = true
	slot.entry = entry
}

func (tt *BoundedTT) Clear() {
	for i := range tt.entries {
		tt.entries[i] = boundedSlot{}
	}
}

func (tt *BoundedTT) Len() int {
	return len(tt.entries)
}

// UnboundedTT is a plain map keyed by the position's Zobrist hash, used for
// "max" difficulty where the search is allowed to spend however much
// memory it needs for the duration of one move decision.
type UnboundedTT struct {
	m map[uint64]TTEntry
}

func NewUnboundedTT() *UnboundedTT {
	return &UnboundedTT{m: make(map[uint64]TTEntry, 1<<16)}
}

// KeyFor uses Position's incremental Zobrist hash: "max" difficulty's
// unbounded table lives only for one move decision, where the cheaper
// incrementally-maintained hash is worth the (purely theoretical) risk of
// a collision that the bounded table's string hash avoids.
func (tt *UnboundedTT) KeyFor(pos *board.Position) uint64 {
	return pos.Hash
}

func (tt *UnboundedTT) Probe(key uint64) (TTEntry, bool) {
	e, ok := tt.m[key]
	return e, ok
}

func (tt *UnboundedTT) Store(key uint64, entry TTEntry) {
	if existing, ok := tt.m[key]; ok && entry.Depth < existing.Depth {
		return
	}
	tt.m[key] = entry
}

func (tt *UnboundedTT) Clear() {
	tt.m = make(map[uint64]TTEntry, 1<<16)
}

func (tt *UnboundedTT) Len() int {
	return len(tt.m)
}
