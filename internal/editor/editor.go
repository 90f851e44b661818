// Package editor reconciles user edits with the tilemap: it validates and
// applies road placement and removal, then runs a driven WFC pass so the
// surrounding superpositions stay consistent with the edit.
package editor

import (
	"errors"
	"fmt"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/logger"
	"github.com/citysketch/citysketch/internal/tilemap"
	"github.com/citysketch/citysketch/internal/wfc"
)

var (
	ErrCellOccupied        = errors.New("editor: cell already holds a fixed tile")
	ErrPlacementNotAllowed = errors.New("editor: placement would form a road clump")
	ErrNoBaseTile          = errors.New("editor: no base road tile for neighbour bitmask")
	ErrNotRemovable        = errors.New("editor: tile is not removable")
	ErrSolveFailed         = errors.New("editor: decorative pass failed")
)

const (
	// defaultStepsPerCycle bounds solver work per reconciliation call.
	defaultStepsPerCycle = 1000
	// defaultMaxRestarts bounds how often a failed decorative pass is
	// restarted with reopened roads.
	defaultMaxRestarts = 5
)

// Editor owns a tilemap and drives edits against it.
type Editor struct {
	tm            *tilemap.Tilemap
	seed          int64
	runs          int64
	stepsPerCycle int
	maxRestarts   int
	inventory     map[catalog.TileID]int
}

// Option configures an Editor.
type Option func(*Editor)

// WithStepsPerCycle overrides how many solver steps one reconciliation may
// spend.
func WithStepsPerCycle(n int) Option {
	return func(e *Editor) { e.stepsPerCycle = n }
}

// WithMaxRestarts overrides the outer bound on decorative pass restarts.
func WithMaxRestarts(n int) Option {
	return func(e *Editor) { e.maxRestarts = n }
}

// WithTileInventory caps tile instances for decorative passes.
func WithTileInventory(inventory map[catalog.TileID]int) Option {
	return func(e *Editor) { e.inventory = inventory }
}

// New creates an editor over the given tilemap. The seed makes every solver
// run reproducible.
func New(tm *tilemap.Tilemap, seed int64, opts ...Option) *Editor {
	e := &Editor{
		tm:            tm,
		seed:          seed,
		stepsPerCycle: defaultStepsPerCycle,
		maxRestarts:   defaultMaxRestarts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tilemap returns the editor's current tilemap.
func (e *Editor) Tilemap() *tilemap.Tilemap {
	return e.tm
}

// nextSeed derives a fresh deterministic seed for the next solver run.
func (e *Editor) nextSeed() int64 {
	e.runs++
	return e.seed + e.runs*1000
}

// Primary places a road tile at the cell: the cell must be free, the
// placement must not complete a 2x2 road clump, and the neighbour bitmask
// must name a base variant. The surrounding superpositions are then
// reconciled with a driven solve.
func (e *Editor) Primary(c grid.Cell) ([]tilemap.Action, error) {
	if _, occupied := e.tm.FixedTileByCell(c); occupied {
		return nil, ErrCellOccupied
	}
	if !e.CellSupportsRoadPlacement(c) {
		return nil, ErrPlacementNotAllowed
	}

	mask := e.tm.CellBitmask(c)
	baseID, ok := e.tm.Catalog().BaseRoadID(mask)
	if !ok {
		return nil, fmt.Errorf("%w: %04b", ErrNoBaseTile, mask)
	}
	tc, ok := e.tm.Catalog().Tile(baseID)
	if !ok {
		return nil, fmt.Errorf("%w: tile %d missing", ErrNoBaseTile, baseID)
	}

	actions := e.tm.AddTile(tc, c)
	actions = append(actions, e.reconcile(c)...)
	return actions, nil
}

// Secondary removes the built road tile at the cell. Removing a subcell of a
// large tile wipes the whole instance. The surroundings are then reconciled
// with a driven solve.
func (e *Editor) Secondary(c grid.Cell) ([]tilemap.Action, error) {
	tile, ok := e.tm.FixedTileByCell(c)
	if !ok || tile.FSM.State() != tilemap.StateBuilt {
		return nil, ErrNotRemovable
	}

	actions := e.tm.RemoveTile(c)
	if tile.Parent != nil {
		e.tm.RemoveLargeTileIfExists(c)
	}
	actions = append(actions, e.reconcile(c)...)
	return actions, nil
}

// CellSupportsRoadPlacement reports whether a road at the cell would avoid
// forming a 2x2 road clump: every diagonal quadrant around the cell must
// have fewer than three of its three neighbour cells occupied by roads.
func (e *Editor) CellSupportsRoadPlacement(c grid.Cell) bool {
	size := e.tm.Size()
	for _, diagonal := range grid.AllDiagonalDirections() {
		roads := 0
		for _, neighbor := range c.QuadrantNeighbors(size, diagonal) {
			if e.tm.IsRoadAt(neighbor) {
				roads++
			}
		}
		if roads >= 3 {
			return false
		}
	}
	return true
}

// reconcile runs a driven solve around an edited cell: constraints propagate
// outward and fixed road neighbours are reopened and re-collapsed so their
// shapes follow the new bitmask and lot-entry variants can be explored. A
// backtrack can clear a reset neighbour's collapse from the queue, so the
// pass re-issues collapses until every reset cell is fixed again, for at
// most maxRestarts rounds; past that it logs a warning and returns no
// actions.
func (e *Editor) reconcile(c grid.Cell) []tilemap.Action {
	model := wfc.FromTilemap(e.tm, e.nextSeed())
	if e.inventory != nil {
		model = model.WithTileInventory(e.inventory)
	}
	model.PropagateConstraints(c)
	reset := e.collapseTileNeighbors(model, c)

	var actions []tilemap.Action
	for i := 0; i < e.maxRestarts; i++ {
		model.StepN(wfc.StopAtEmptySteps, e.stepsPerCycle)
		if model.CurrentState() != wfc.StateDone {
			continue
		}

		actions = append(actions, model.FlushPendingActions()...)
		pending := stillOpen(model.ToTilemap(), reset)
		if len(pending) == 0 {
			e.tm = model.ToTilemap()
			return actions
		}

		// A fresh model re-enters the loop with the unwound cells.
		model = wfc.FromTilemap(model.ToTilemap(), e.nextSeed())
		if e.inventory != nil {
			model = model.WithTileInventory(e.inventory)
		}
		for _, cell := range pending {
			if _, ok := model.Collapse(cell); !ok {
				logger.Debug("neighbour collapse had no options", "cell", cell.String())
			}
		}
	}

	logger.Warn("edit reconciliation did not converge",
		"cell", c.String(), "state", model.CurrentState().String())
	return nil
}

// stillOpen returns the cells that are back in superposition.
func stillOpen(tm *tilemap.Tilemap, cells []grid.Cell) []grid.Cell {
	var open []grid.Cell
	for _, cell := range cells {
		if tile, ok := tm.TileByCell(cell); ok && tile.IsSuperposition() {
			open = append(open, cell)
		}
	}
	return open
}

// collapseTileNeighbors reopens each fixed road neighbour of the cell to its
// surroundings-derived options and requests a collapse on it. Superposition
// neighbours are left to plain propagation. Returns the reopened cells.
func (e *Editor) collapseTileNeighbors(model *wfc.Model, c grid.Cell) []grid.Cell {
	tm := model.ToTilemap()
	var reset []grid.Cell
	for _, dir := range grid.AllDirections() {
		neighbor, ok := c.Next(tm.Size(), dir)
		if !ok {
			continue
		}
		if !tm.IsRoadAt(neighbor) {
			continue
		}
		tm.ResetFixedTileBySurroundings(neighbor)
		reset = append(reset, neighbor)
		if _, ok := model.Collapse(neighbor); !ok {
			logger.Debug("neighbour collapse had no options", "cell", neighbor.String())
		}
	}
	return reset
}
