package wfc

import (
	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/logger"
	"github.com/citysketch/citysketch/internal/tilemap"
)

// SeedTilemap builds a tilemap where every cell holds a superposition over
// the subset of the given variants that close toward the map edges the cell
// touches.
func SeedTilemap(config tilemap.Config, cat *catalog.Catalog, variants []catalog.TileConfig) *tilemap.Tilemap {
	size := grid.Size{Width: config.HorizontalCellsAmount, Height: config.VerticalCellsAmount}
	return tilemap.New(config, cat, func(index int) tilemap.Tile {
		cell, _ := grid.FromIndex(size, index)
		options := cat.TileIDsByOrthogonalMatch(variants, cell.ConnectedBounds(size))
		return tilemap.NewSuperposition(options)
	})
}

// Step performs one unit of solver work: a backtrack pop while recovering,
// otherwise the next open step, or a random candidate pick when the queue is
// empty under StopAtSolved.
func (m *Model) Step(end StepEndCondition) {
	switch m.state {
	case StateDone, StateFailed:
		return
	case StateRecovering:
		m.backtrackStep()
		return
	}

	if len(m.openSteps) == 0 {
		switch end {
		case StopAtEmptySteps:
			m.state = StateDone
		case StopAtSolved:
			if !m.pickRandomCandidate() {
				m.state = StateDone
			}
		}
		return
	}

	step := m.openSteps[0]
	m.openSteps = m.openSteps[1:]
	m.observe(step)

	entryIndex := m.recordHistory(step)
	if failure := m.processStep(step, entryIndex); failure != nil {
		m.fail(failure)
	}
}

// StepN performs up to n steps, stopping early on a terminal state.
func (m *Model) StepN(end StepEndCondition, n int) {
	for i := 0; i < n; i++ {
		if m.state == StateDone || m.state == StateFailed {
			return
		}
		m.Step(end)
	}
}

// Solve drives the loop until every cell is collapsed or the solver fails.
func (m *Model) Solve() {
	for m.state == StateSolving || m.state == StateRecovering {
		m.Step(StopAtSolved)
	}
}

// observe records the step's cells for external observability.
func (m *Model) observe(step Step) {
	target := step.Target()
	m.targetCell = &target
	if prop, ok := step.(PropagateStep); ok {
		from := prop.From
		m.currentCell = &from
	} else {
		m.currentCell = &target
	}
}

// recordHistory pushes the step onto the chronological history if its target
// is currently in superposition. Returns the entry index, or -1.
func (m *Model) recordHistory(step Step) int {
	tile, ok := m.tilemap.TileByCell(step.Target())
	if !ok || !tile.IsSuperposition() {
		return -1
	}
	m.previousSteps = append(m.previousSteps, historyEntry{
		step:            step,
		previousOptions: append([]catalog.TileID(nil), tile.Options...),
	})
	return len(m.previousSteps) - 1
}

// markInventoryTaken annotates the history entry that consumed inventory so
// a later backtrack can return it.
func (m *Model) markInventoryTaken(entryIndex int, id catalog.TileID) {
	if entryIndex < 0 || entryIndex >= len(m.previousSteps) {
		return
	}
	m.previousSteps[entryIndex].tookInventory = true
	m.previousSteps[entryIndex].inventoryTileID = id
}

// fail moves the solver into recovery, or straight to Failed for internal
// bugs. Failures that invalidate the queue clear the remaining open steps.
func (m *Model) fail(failure *Failure) {
	m.failure = failure
	if !failure.recoverable() {
		logger.Error("solver failed", "kind", failure.Kind.String(), "cell", failure.Cell.String())
		m.state = StateFailed
		return
	}
	if failure.clearsOpenSteps() {
		m.openSteps = nil
	}
	logger.Debug("solver recovering", "kind", failure.Kind.String(), "cell", failure.Cell.String())
	m.state = StateRecovering
}

// processStep executes one step against the working tilemap.
func (m *Model) processStep(step Step, entryIndex int) *Failure {
	switch s := step.(type) {
	case CollapseStep:
		return m.processCollapse(s, entryIndex)
	case CollapseSubgridStep:
		return m.processCollapseSubgrid(s, entryIndex)
	case PropagateStep:
		return m.processPropagate(s)
	default:
		return &Failure{Kind: TileNotFound, Cell: step.Target(), Reason: "unknown step"}
	}
}

func (m *Model) processCollapse(s CollapseStep, entryIndex int) *Failure {
	if !m.inventoryAvailable(s.Tile.ID) {
		return &Failure{Kind: TileUnavailable, Cell: s.Cell, TileID: s.Tile.ID}
	}

	if s.Tile.IsLarge() {
		steps, failure := m.planSubgrid(s.Cell, s.Tile)
		if failure != nil {
			return failure
		}
		// Subgrid steps run back to back so the placement stays atomic.
		m.openSteps = append(steps, m.openSteps...)
		return nil
	}

	if m.takeInventory(s.Tile.ID) {
		m.markInventoryTaken(entryIndex, s.Tile.ID)
	}
	m.pending = append(m.pending, m.tilemap.AddTileFromWFC(nil, s.Tile, s.Cell)...)
	m.PropagateConstraints(s.Cell)
	return nil
}

func (m *Model) processCollapseSubgrid(s CollapseSubgridStep, entryIndex int) *Failure {
	parent := &tilemap.ParentTile{LargeID: s.ParentID, SubIndex: s.SubIndex}
	m.pending = append(m.pending, m.tilemap.AddTileFromWFC(parent, s.Subtile, s.Cell)...)

	size := m.tilemap.Size()
	for _, dir := range grid.AllDirections() {
		socket := s.Subtile.Sockets.ByDirection(dir)
		neighbor, inBounds := s.Cell.Next(size, dir)
		if !inBounds {
			if socket != catalog.DefaultSocket {
				return &Failure{Kind: InvalidBigTilePlacement, Cell: s.Cell, TileID: s.ParentID, Reason: "open socket against map edge"}
			}
			continue
		}

		tile, ok := m.tilemap.TileByCell(neighbor)
		if !ok {
			return &Failure{Kind: TileNotFound, Cell: neighbor}
		}
		switch tile.Kind {
		case tilemap.KindFixed:
			facing, ok := m.fixedSocket(tile, dir.Opposite())
			if !ok {
				return &Failure{Kind: TileNotFound, Cell: neighbor, TileID: tile.ID}
			}
			if !catalog.Compatible(socket, facing) {
				return &Failure{Kind: InvalidBigTilePlacement, Cell: s.Cell, TileID: s.ParentID, Reason: "cannot dock against fixed neighbour"}
			}
		case tilemap.KindSuperposition:
			if socket != catalog.DefaultSocket {
				m.openSteps = append(m.openSteps, PropagateStep{From: s.Cell, To: neighbor})
			}
		case tilemap.KindUninitialized:
			if socket != catalog.DefaultSocket {
				return &Failure{Kind: InvalidBigTilePlacement, Cell: s.Cell, TileID: s.ParentID, Reason: "open socket against uninitialised neighbour"}
			}
		}
	}

	// The parent counts against inventory once its last subcell is placed.
	if !m.nextStepContinuesParent(s.ParentID) {
		if m.takeInventory(s.ParentID) {
			m.markInventoryTaken(entryIndex, s.ParentID)
		}
	}
	return nil
}

func (m *Model) nextStepContinuesParent(parentID catalog.TileID) bool {
	if len(m.openSteps) == 0 {
		return false
	}
	next, ok := m.openSteps[0].(CollapseSubgridStep)
	return ok && next.ParentID == parentID
}

func (m *Model) processPropagate(s PropagateStep) *Failure {
	dir, err := grid.OrthogonalDirection(s.From, s.To)
	if err != nil {
		return &Failure{Kind: InvalidDirection, Cell: s.To, Reason: err.Error()}
	}

	from, ok := m.tilemap.TileByCell(s.From)
	if !ok {
		return &Failure{Kind: TileNotFound, Cell: s.From}
	}
	to, ok := m.tilemap.TileByCell(s.To)
	if !ok {
		return &Failure{Kind: TileNotFound, Cell: s.To}
	}

	// Only a fixed source can shrink a superposition target; every other
	// combination never narrows options.
	if !from.IsFixed() || !to.IsSuperposition() {
		return nil
	}

	fromSocket, ok := m.fixedSocket(from, dir)
	if !ok {
		return &Failure{Kind: TileNotFound, Cell: s.From, TileID: from.ID}
	}

	filtered := make([]catalog.TileID, 0, len(to.Options))
	for _, id := range to.Options {
		tc, ok := m.tilemap.Catalog().Tile(id)
		if !ok {
			continue
		}
		toSocket := tc.ExternalSockets().ByDirection(dir.Opposite())
		if catalog.Compatible(fromSocket, toSocket) {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return &Failure{Kind: NoSuperpositionOptions, Cell: s.To}
	}
	m.tilemap.SetSuperpositionOptions(s.To, filtered)
	return nil
}

// fixedSocket returns the socket a fixed tile exposes in a direction.
func (m *Model) fixedSocket(tile tilemap.Tile, dir grid.Direction) (catalog.Socket, bool) {
	tc, ok := m.tilemap.Catalog().Tile(tile.ID)
	if !ok {
		return catalog.DefaultSocket, false
	}
	return tc.Sockets.ByDirection(dir), true
}

// pickRandomCandidate scans for the minimum-entropy superposition cells,
// samples one uniformly and enqueues a weighted collapse for it. Returns
// false when no superposition cells remain.
func (m *Model) pickRandomCandidate() bool {
	size := m.tilemap.Size()
	minEntropy := -1
	var candidates []grid.Cell

	for i := 0; i < size.Area(); i++ {
		cell, _ := grid.FromIndex(size, i)
		tile, ok := m.tilemap.TileByCell(cell)
		if !ok || !tile.IsSuperposition() {
			continue
		}
		entropy := len(tile.Options)
		switch {
		case minEntropy == -1 || entropy < minEntropy:
			minEntropy = entropy
			candidates = candidates[:0]
			candidates = append(candidates, cell)
		case entropy == minEntropy:
			candidates = append(candidates, cell)
		}
	}

	if len(candidates) == 0 {
		return false
	}

	cell := candidates[m.rng.Intn(len(candidates))]
	tile, _ := m.tilemap.TileByCell(cell)
	tc, ok := m.weightedPick(tile.Options)
	if !ok {
		// An emptied superposition surfacing here is the detectable form
		// of invariant violation; recover through backtracking.
		m.fail(&Failure{Kind: NoSuperpositionOptions, Cell: cell})
		return true
	}
	m.openSteps = append(m.openSteps, CollapseStep{Cell: cell, Tile: tc})
	return true
}

// backtrackStep pops one history entry: the target cell gets its previous
// superposition back minus the id the step committed, and any consumed
// inventory is returned. Recovery ends at a collapse entry that retains at
// least one residual option.
func (m *Model) backtrackStep() {
	if m.backtracks >= MaxBacktracks {
		m.failure = &Failure{Kind: BacktrackFailed, Reason: "backtrack budget exceeded"}
		m.state = StateFailed
		return
	}
	if len(m.previousSteps) == 0 {
		m.failure = &Failure{Kind: BacktrackFailed, Reason: "step history exhausted"}
		m.state = StateFailed
		return
	}

	entry := m.previousSteps[len(m.previousSteps)-1]
	m.previousSteps = m.previousSteps[:len(m.previousSteps)-1]
	m.backtracks++

	residual := entry.previousOptions
	if chosen, ok := committedID(entry.step); ok {
		residual = removeID(residual, chosen)
	}
	m.tilemap.SetSuperpositionOptions(entry.step.Target(), residual)

	if entry.tookInventory {
		m.returnInventory(entry.inventoryTileID)
	}

	if _, isCollapse := entry.step.(CollapseStep); isCollapse && len(residual) >= 1 {
		logger.Debug("backtrack complete", "cell", entry.step.Target().String(), "residual", len(residual))
		m.failure = nil
		m.state = StateSolving
	}
}

func removeID(options []catalog.TileID, id catalog.TileID) []catalog.TileID {
	out := make([]catalog.TileID, 0, len(options))
	for _, o := range options {
		if o != id {
			out = append(out, o)
		}
	}
	return out
}
