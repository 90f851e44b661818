package wfc

import (
	"testing"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/tilemap"
)

// lotScene builds a 5x5 map seeded with decoratives, a lot-entry road at
// (4, 5) flanked by straight roads, ready for a 2x2 lot anchored at (4, 4).
func lotScene(t *testing.T) *tilemap.Tilemap {
	t.Helper()
	cat := catalog.Default()
	tm := SeedTilemap(
		tilemap.Config{HorizontalCellsAmount: 5, VerticalCellsAmount: 5},
		cat,
		cat.DecorativeTiles(),
	)

	place := func(id catalog.TileID, c grid.Cell) {
		tc, ok := cat.Tile(id)
		if !ok {
			t.Fatalf("tile %d missing", id)
		}
		tm.AddTileFromWFC(nil, tc, c)
	}
	place(catalog.RoadHorizontalID, grid.Cell{X: 3, Y: 5})
	place(catalog.LotEntryTopID, grid.Cell{X: 4, Y: 5})
	place(catalog.RoadHorizontalID, grid.Cell{X: 5, Y: 5})
	return tm
}

func lotConfig(t *testing.T, tm *tilemap.Tilemap) catalog.TileConfig {
	t.Helper()
	tc, ok := tm.Catalog().Tile(catalog.ResidentialLotID)
	if !ok {
		t.Fatal("lot missing from catalogue")
	}
	return tc
}

func TestLargeTilePlacement(t *testing.T) {
	tm := lotScene(t)
	lot := lotConfig(t, tm)
	anchor := grid.Cell{X: 4, Y: 4}

	model := FromTilemap(tm, 42).WithTileInventory(map[catalog.TileID]int{
		catalog.ResidentialLotID: 2,
	})
	model.openSteps = append(model.openSteps, CollapseStep{Cell: anchor, Tile: lot})
	model.StepN(StopAtEmptySteps, 200)

	if got := model.CurrentState(); got != StateDone {
		t.Fatalf("state = %v (failure %v)", got, model.CurrentFailure())
	}

	// Atomicity: exactly width*height cells share the parent id with
	// distinct subgrid indices covering the rectangle.
	result := model.ToTilemap()
	wantCells := map[grid.Cell]int{
		{X: 3, Y: 3}: 0,
		{X: 4, Y: 3}: 1,
		{X: 3, Y: 4}: 2,
		{X: 4, Y: 4}: 3,
	}
	seen := map[int]bool{}
	for cell, wantIndex := range wantCells {
		tile, ok := result.FixedTileByCell(cell)
		if !ok {
			t.Fatalf("subcell %v not fixed", cell)
		}
		if tile.Parent == nil {
			t.Fatalf("subcell %v has no parent linkage", cell)
		}
		if tile.Parent.LargeID != catalog.ResidentialLotID {
			t.Errorf("subcell %v parent = %d", cell, tile.Parent.LargeID)
		}
		if tile.Parent.SubIndex != wantIndex {
			t.Errorf("subcell %v index = %d, want %d", cell, tile.Parent.SubIndex, wantIndex)
		}
		seen[tile.Parent.SubIndex] = true
	}
	if len(seen) != 4 {
		t.Errorf("subgrid indices = %v", seen)
	}

	// No other cell carries the parent.
	count := tilemap.FoldTiles(result, func(acc int, c grid.Cell, tile tilemap.Tile) int {
		if tile.Parent != nil {
			return acc + 1
		}
		return acc
	}, 0)
	if count != 4 {
		t.Errorf("cells with parent linkage = %d, want 4", count)
	}

	if got := model.inventory[catalog.ResidentialLotID]; got != 1 {
		t.Errorf("inventory after placement = %d, want 1", got)
	}
}

func TestLargeTilePlacementRejectedOffMap(t *testing.T) {
	tm := lotScene(t)
	lot := lotConfig(t, tm)

	// Anchoring at the left edge pushes the subgrid off the map: the
	// anchor is the bottom-right subcell.
	model := FromTilemap(tm, 1)
	model.openSteps = append(model.openSteps, CollapseStep{Cell: grid.Cell{X: 1, Y: 3}, Tile: lot})
	model.Step(StopAtEmptySteps)

	if got := model.CurrentState(); got != StateRecovering {
		t.Fatalf("state = %v, want recovering", got)
	}
	if got := model.CurrentFailure().Kind; got != InvalidBigTilePlacement {
		t.Errorf("failure = %v", got)
	}
	if len(model.openSteps) != 0 {
		t.Errorf("open steps not cleared: %d", len(model.openSteps))
	}
}

func TestLargeTilePlacementRejectedOverFixed(t *testing.T) {
	tm := lotScene(t)
	lot := lotConfig(t, tm)
	tc, _ := tm.Catalog().Tile(catalog.GrassID)
	tm.AddTileFromWFC(nil, tc, grid.Cell{X: 3, Y: 3})

	model := FromTilemap(tm, 1)
	model.openSteps = append(model.openSteps, CollapseStep{Cell: grid.Cell{X: 4, Y: 4}, Tile: lot})
	model.Step(StopAtEmptySteps)

	if got := model.CurrentState(); got != StateRecovering {
		t.Fatalf("state = %v, want recovering", got)
	}
}

func TestLargeTileBacktrackRestoresInventory(t *testing.T) {
	tm := lotScene(t)
	lot := lotConfig(t, tm)
	anchor := grid.Cell{X: 4, Y: 4}

	model := FromTilemap(tm, 42).WithTileInventory(map[catalog.TileID]int{
		catalog.ResidentialLotID: 1,
	})
	model.openSteps = append(model.openSteps, CollapseStep{Cell: anchor, Tile: lot})
	model.StepN(StopAtEmptySteps, 200)
	if model.CurrentState() != StateDone {
		t.Fatalf("setup failed: %v", model.CurrentFailure())
	}
	if got := model.inventory[catalog.ResidentialLotID]; got != 0 {
		t.Fatalf("inventory = %d, want 0", got)
	}

	model.state = StateSolving
	model.fail(&Failure{Kind: NoSuperpositionOptions, Cell: anchor})
	for model.CurrentState() == StateRecovering {
		model.Step(StopAtSolved)
	}

	if got := model.inventory[catalog.ResidentialLotID]; got != 1 {
		t.Errorf("inventory after unwind = %d, want 1", got)
	}
	// The anchor's residual superposition no longer offers the lot.
	tile, _ := model.ToTilemap().TileByCell(anchor)
	if !tile.IsSuperposition() {
		t.Fatalf("anchor not reopened: %+v", tile)
	}
	for _, id := range tile.Options {
		if id == catalog.ResidentialLotID {
			t.Error("lot still among anchor options after unwind")
		}
	}
}

func TestCheckLargeTileFit(t *testing.T) {
	tm := lotScene(t)
	lot := lotConfig(t, tm)

	if _, ok := CheckLargeTileFit(tm, grid.Cell{X: 4, Y: 4}, lot); !ok {
		t.Error("lot should fit above its entry road")
	}

	// Without a lot-entry road below the anchor, the driveway socket has
	// a superposition neighbour, which validation accepts; against a
	// plain fixed road it must refuse.
	if _, ok := CheckLargeTileFit(tm, grid.Cell{X: 2, Y: 2}, lot); !ok {
		t.Error("lot over open ground should validate")
	}
	if _, ok := CheckLargeTileFit(tm, grid.Cell{X: 3, Y: 4}, lot); ok {
		t.Error("driveway against a plain road edge should not validate")
	}

	// Out of bounds.
	if _, ok := CheckLargeTileFit(tm, grid.Cell{X: 1, Y: 1}, lot); ok {
		t.Error("subgrid off the map should not validate")
	}

	// Single tiles are not valid arguments.
	grass, _ := tm.Catalog().Tile(catalog.GrassID)
	if _, ok := CheckLargeTileFit(tm, grid.Cell{X: 3, Y: 3}, grass); ok {
		t.Error("single tile should not validate as large")
	}
}
