package wfc

import (
	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
)

// Step is one unit of solver work. Propagation emits more steps instead of
// recursing, which keeps call depth constant and makes backtracking a pure
// rewind of the step history.
type Step interface {
	// Target is the cell the step writes to.
	Target() grid.Cell
}

// CollapseStep commits a cell to a single variant, or plans a subgrid when
// the variant is a large tile.
type CollapseStep struct {
	Cell grid.Cell
	Tile catalog.TileConfig
}

// Target implements Step.
func (s CollapseStep) Target() grid.Cell { return s.Cell }

// CollapseSubgridStep places one subcell of a large tile.
type CollapseSubgridStep struct {
	Cell     grid.Cell
	ParentID catalog.TileID
	Subtile  catalog.TileConfig
	SubIndex int
}

// Target implements Step.
func (s CollapseSubgridStep) Target() grid.Cell { return s.Cell }

// PropagateStep shrinks the superposition at To against the fixed tile at
// From.
type PropagateStep struct {
	From grid.Cell
	To   grid.Cell
}

// Target implements Step.
func (s PropagateStep) Target() grid.Cell { return s.To }

// committedID returns the variant id the step removed from its target's
// superposition, if any. For subgrid steps that is the parent large id, so
// that unwinding the originating collapse strikes the large tile from the
// options.
func committedID(s Step) (catalog.TileID, bool) {
	switch step := s.(type) {
	case CollapseStep:
		return step.Tile.ID, true
	case CollapseSubgridStep:
		return step.ParentID, true
	default:
		return 0, false
	}
}

// historyEntry is one chronological record: the step and the superposition
// its target held before the step ran.
type historyEntry struct {
	step            Step
	previousOptions []catalog.TileID
	tookInventory   bool
	inventoryTileID catalog.TileID
}
