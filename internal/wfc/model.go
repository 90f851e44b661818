package wfc

import (
	"math/rand"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/tilemap"
)

// MaxBacktracks bounds the cumulative backtrack pops over a solver's
// lifetime.
const MaxBacktracks = 100

// State is the solver's lifecycle state.
type State int

const (
	StateSolving State = iota
	StateDone
	StateRecovering
	StateFailed
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateSolving:
		return "solving"
	case StateDone:
		return "done"
	case StateRecovering:
		return "recovering"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepEndCondition controls what happens when the open-step queue empties.
type StepEndCondition int

const (
	// StopAtEmptySteps terminates as soon as the queue is empty; no random
	// collapse is performed. Used by driven solves after user edits.
	StopAtEmptySteps StepEndCondition = iota
	// StopAtSolved keeps picking random collapse candidates until no
	// superposition cells remain.
	StopAtSolved
)

// Model is a solver over a working copy of a tilemap. It owns the copy until
// ToTilemap surrenders it.
type Model struct {
	tilemap       *tilemap.Tilemap
	rng           *rand.Rand
	state         State
	failure       *Failure
	openSteps     []Step
	previousSteps []historyEntry
	inventory     map[catalog.TileID]int
	backtracks    int
	pending       []tilemap.Action
	currentCell   *grid.Cell
	targetCell    *grid.Cell
}

// FromTilemap constructs a solver over a snapshot of the given tilemap, with
// a deterministic seed.
func FromTilemap(tm *tilemap.Tilemap, seed int64) *Model {
	return &Model{
		tilemap: tm.Clone(),
		rng:     rand.New(rand.NewSource(seed)),
		state:   StateSolving,
	}
}

// WithTileInventory caps how many instances of each listed tile id may be
// placed during the solve. Unlisted ids are unlimited.
func (m *Model) WithTileInventory(inventory map[catalog.TileID]int) *Model {
	m.inventory = make(map[catalog.TileID]int, len(inventory))
	for id, count := range inventory {
		m.inventory[id] = count
	}
	return m
}

// CurrentState returns the solver state.
func (m *Model) CurrentState() State {
	return m.state
}

// CurrentFailure returns the failure the solver is recovering from or failed
// on, if any.
func (m *Model) CurrentFailure() *Failure {
	return m.failure
}

// ToTilemap returns the solver's current tilemap snapshot.
func (m *Model) ToTilemap() *tilemap.Tilemap {
	return m.tilemap
}

// CurrentCell returns the cell the solver most recently worked from.
func (m *Model) CurrentCell() (grid.Cell, bool) {
	if m.currentCell == nil {
		return grid.Cell{}, false
	}
	return *m.currentCell, true
}

// TargetCell returns the cell the solver most recently wrote to.
func (m *Model) TargetCell() (grid.Cell, bool) {
	if m.targetCell == nil {
		return grid.Cell{}, false
	}
	return *m.targetCell, true
}

// Backtracks returns how many backtrack pops the solver has performed.
func (m *Model) Backtracks() int {
	return m.backtracks
}

// FlushPendingActions drains the queued actions. It only drains once the
// solver is done; before that it returns nothing.
func (m *Model) FlushPendingActions() []tilemap.Action {
	if m.state != StateDone {
		return nil
	}
	actions := m.pending
	m.pending = nil
	return actions
}

// PropagateConstraints seeds the queue with propagation steps from the cell
// to each of its in-bounds orthogonal neighbours.
func (m *Model) PropagateConstraints(c grid.Cell) {
	for _, dir := range grid.AllDirections() {
		if neighbor, ok := c.Next(m.tilemap.Size(), dir); ok {
			m.openSteps = append(m.openSteps, PropagateStep{From: c, To: neighbor})
		}
	}
}

// Collapse samples a variant from the cell's superposition by weight and
// enqueues its collapse. Returns the chosen variant if one could be picked.
func (m *Model) Collapse(c grid.Cell) (catalog.TileConfig, bool) {
	tile, ok := m.tilemap.TileByCell(c)
	if !ok || !tile.IsSuperposition() {
		return catalog.TileConfig{}, false
	}
	tc, ok := m.weightedPick(tile.Options)
	if !ok {
		return catalog.TileConfig{}, false
	}
	m.openSteps = append(m.openSteps, CollapseStep{Cell: c, Tile: tc})
	return tc, true
}

// weightedPick samples one variant from the options proportionally to the
// catalogue weights. Returns false when no option has positive weight.
func (m *Model) weightedPick(options []catalog.TileID) (catalog.TileConfig, bool) {
	configs := make([]catalog.TileConfig, 0, len(options))
	total := 0.0
	for _, id := range options {
		tc, ok := m.tilemap.Catalog().Tile(id)
		if !ok {
			continue
		}
		configs = append(configs, tc)
		total += tc.Weight
	}
	if total <= 0 {
		return catalog.TileConfig{}, false
	}
	r := m.rng.Float64() * total
	acc := 0.0
	for _, tc := range configs {
		acc += tc.Weight
		if r < acc {
			return tc, true
		}
	}
	return configs[len(configs)-1], true
}

// inventoryAvailable reports whether a variant may still be placed.
func (m *Model) inventoryAvailable(id catalog.TileID) bool {
	if m.inventory == nil {
		return true
	}
	count, tracked := m.inventory[id]
	return !tracked || count > 0
}

// takeInventory consumes one instance of a tracked variant. Returns whether
// anything was consumed.
func (m *Model) takeInventory(id catalog.TileID) bool {
	if m.inventory == nil {
		return false
	}
	if _, tracked := m.inventory[id]; !tracked {
		return false
	}
	m.inventory[id]--
	return true
}

// returnInventory gives one instance of a tracked variant back.
func (m *Model) returnInventory(id catalog.TileID) {
	if m.inventory == nil {
		return
	}
	if _, tracked := m.inventory[id]; tracked {
		m.inventory[id]++
	}
}
