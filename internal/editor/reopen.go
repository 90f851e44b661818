package editor

import (
	"fmt"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/logger"
	"github.com/citysketch/citysketch/internal/tilemap"
	"github.com/citysketch/citysketch/internal/wfc"
)

// ReopenRoads primes the tilemap for lot growth: every fixed road with
// sibling variants that expose a lot entry toward a superposition neighbour
// is reopened to the superposition of its base and those variants, and the
// superposition neighbours it faces are reset by their surroundings.
func ReopenRoads(tm *tilemap.Tilemap) {
	size := tm.Size()
	cat := tm.Catalog()

	for i := 0; i < size.Area(); i++ {
		cell, _ := grid.FromIndex(size, i)
		if !tm.IsRoadAt(cell) {
			continue
		}
		tile, _ := tm.FixedTileByCell(cell)
		base := baseOf(cat, tile.ID)

		openVariants, facedCells := lotEntryVariants(tm, cell, base)
		if len(openVariants) == 0 {
			continue
		}

		options := append([]catalog.TileID{base}, openVariants...)
		tm.SetSuperpositionOptions(cell, options)
		for _, faced := range facedCells {
			tm.ResetTileBySurroundings(faced)
		}
	}
}

// baseOf resolves a road variant to its base id.
func baseOf(cat *catalog.Catalog, id catalog.TileID) catalog.TileID {
	tc, ok := cat.Tile(id)
	if !ok || tc.BaseTileID == 0 {
		return id
	}
	return tc.BaseTileID
}

// lotEntryVariants returns the sibling variants of the base whose lot-entry
// socket faces a superposition neighbour of the cell, together with the
// cells those sockets face.
func lotEntryVariants(tm *tilemap.Tilemap, cell grid.Cell, base catalog.TileID) ([]catalog.TileID, []grid.Cell) {
	size := tm.Size()
	var variants []catalog.TileID
	var faced []grid.Cell

	for _, variant := range tm.Catalog().VariantsOfBase(base) {
		for _, dir := range grid.AllDirections() {
			if variant.Sockets.ByDirection(dir) != catalog.LotEntrySocket {
				continue
			}
			neighbor, ok := cell.Next(size, dir)
			if !ok {
				continue
			}
			tile, ok := tm.TileByCell(neighbor)
			if !ok || !tile.IsSuperposition() {
				continue
			}
			// The faced superposition must actually offer something
			// that can dock the entry, e.g. a lot anchor.
			if !tm.SuperpositionCanDock(neighbor, catalog.LotEntrySocket, dir) {
				continue
			}
			variants = append(variants, variant.ID)
			faced = append(faced, neighbor)
			break
		}
	}
	return variants, faced
}

// RunDecorativePass fills every remaining superposition with decorative
// tiles via a full solve. A failed solve is retried from the current
// snapshot with a reopened-road pass, up to the editor's restart bound.
func (e *Editor) RunDecorativePass() ([]tilemap.Action, error) {
	for attempt := 0; attempt < e.maxRestarts; attempt++ {
		model := wfc.FromTilemap(e.tm, e.nextSeed())
		if e.inventory != nil {
			model = model.WithTileInventory(e.inventory)
		}
		model.Solve()

		if model.CurrentState() == wfc.StateDone {
			actions := model.FlushPendingActions()
			e.tm = model.ToTilemap()
			return actions, nil
		}

		failure := model.CurrentFailure()
		logger.Info("decorative pass failed, reopening roads",
			"attempt", attempt+1, "failure", failure.Kind.String())
		ReopenRoads(e.tm)
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrSolveFailed, e.maxRestarts)
}
