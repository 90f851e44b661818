package tilemap

import (
	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
)

// UpdateResult reports what one tick of lifecycle advancement did.
type UpdateResult struct {
	// Actions preserves per-tile emission order, tiles visited in linear
	// index order.
	Actions []Action
	// TransitionedCells changed lifecycle state this tick.
	TransitionedCells []grid.Cell
	// EmptiedCells reached Removed and were reset to uninitialised.
	EmptiedCells []grid.Cell
	// DynamicCells are currently constructing or removing.
	DynamicCells []grid.Cell
}

// Update advances every tile's lifecycle by delta seconds, in linear index
// order, then drains the placement animation timers. Timer draining is two
// passes: decrement all timers first, then clear the animation attribute of
// the drained cells.
func (tm *Tilemap) Update(delta float32) UpdateResult {
	var result UpdateResult
	size := tm.Size()

	for i := range tm.cells {
		tile := tm.cells[i]
		cell, _ := grid.FromIndex(size, i)

		changed, actions := tile.FSM.Update(delta)
		result.Actions = append(result.Actions, actions...)
		if changed {
			result.TransitionedCells = append(result.TransitionedCells, cell)
		}

		if tile.FSM.State() == StateRemoved {
			tile = NewUninitialized()
			result.EmptiedCells = append(result.EmptiedCells, cell)
		}
		if tile.IsDynamic() {
			result.DynamicCells = append(result.DynamicCells, cell)
		}
		tm.updateCell(cell, tile)
	}

	drained := tm.advanceAnimationTimers(delta)
	for _, cell := range drained {
		if tile, ok := tm.TileByCell(cell); ok && tile.Animated {
			tile.Animated = false
			tm.updateCell(cell, tile)
		}
	}

	return result
}

// advanceAnimationTimers decrements every animation timer and returns the
// cells whose timers drained this tick.
func (tm *Tilemap) advanceAnimationTimers(delta float32) []grid.Cell {
	var drained []grid.Cell
	remaining := tm.animationTimers[:0]
	for _, entry := range tm.animationTimers {
		if _, finished := entry.timer.Update(delta); finished {
			drained = append(drained, entry.Cell)
			continue
		}
		remaining = append(remaining, entry)
	}
	tm.animationTimers = remaining
	return drained
}

// AnimationTimerCount returns how many placement animations are in flight.
func (tm *Tilemap) AnimationTimerCount() int {
	return len(tm.animationTimers)
}

// ListFilter selects which tiles ToList visits.
type ListFilter int

const (
	// NoFilter visits every tile.
	NoFilter ListFilter = iota
	// StaticTiles visits only settled fixed tiles: built, not animating.
	StaticTiles
)

func (f ListFilter) admits(t Tile) bool {
	if f == NoFilter {
		return true
	}
	return t.IsFixed() && t.FSM.State() == StateBuilt && !t.Animated
}

// ToList maps the admitted tiles to a slice, in linear index order.
func ToList[T any](tm *Tilemap, mapper func(grid.Cell, Tile) T, filter ListFilter) []T {
	var out []T
	size := tm.Size()
	for i := range tm.cells {
		if !filter.admits(tm.cells[i]) {
			continue
		}
		cell, _ := grid.FromIndex(size, i)
		out = append(out, mapper(cell, tm.cells[i]))
	}
	return out
}

// FoldTiles folds every tile in linear index order.
func FoldTiles[T any](tm *Tilemap, fn func(acc T, c grid.Cell, t Tile) T, init T) T {
	acc := init
	size := tm.Size()
	for i := range tm.cells {
		cell, _ := grid.FromIndex(size, i)
		acc = fn(acc, cell, tm.cells[i])
	}
	return acc
}

// Clone returns a working copy of the tilemap for a solver run. Cell tiles
// are copied with their own option slices; lifecycle instances of untouched
// tiles are shared, which is safe because a solver never advances them.
func (tm *Tilemap) Clone() *Tilemap {
	clone := &Tilemap{
		cells:            make([]Tile, len(tm.cells)),
		config:           tm.config,
		catalog:          tm.catalog,
		recentPlacements: append([]grid.Cell(nil), tm.recentPlacements...),
		animationTimers:  append([]AnimationTimer(nil), tm.animationTimers...),
	}
	for i, tile := range tm.cells {
		tile.Options = append([]catalog.TileID(nil), tile.Options...)
		clone.cells[i] = tile
	}
	return clone
}
