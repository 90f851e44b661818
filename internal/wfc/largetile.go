package wfc

import (
	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/tilemap"
)

// subgridCells resolves the global cell of every subtile given the anchor
// cell the large tile docks through. Fails when the rectangle leaves the
// map.
func subgridCells(size grid.Size, anchor grid.Cell, tc catalog.TileConfig) ([]grid.Cell, *Failure) {
	large := tc.Large
	local := large.LocalCellOf(large.AnchorIndex)
	topLeft, ok := anchor.TranslateBy(size, -(local.X - 1), -(local.Y - 1))
	if !ok {
		return nil, &Failure{Kind: InvalidBigTilePlacement, Cell: anchor, TileID: tc.ID, Reason: "subgrid corner out of bounds"}
	}

	cells := make([]grid.Cell, len(large.Subtiles))
	for i := range large.Subtiles {
		global, ok := grid.PlaceIn(size, topLeft, large.LocalCellOf(i))
		if !ok {
			return nil, &Failure{Kind: InvalidBigTilePlacement, Cell: anchor, TileID: tc.ID, Reason: "subgrid cell out of bounds"}
		}
		cells[i] = global
	}
	return cells, nil
}

// planSubgrid validates that a large tile can occupy the subgrid anchored at
// the given cell and returns one collapse step per subcell, ordered by
// subgrid index. Every covered cell must currently be in superposition.
func (m *Model) planSubgrid(anchor grid.Cell, tc catalog.TileConfig) ([]Step, *Failure) {
	cells, failure := subgridCells(m.tilemap.Size(), anchor, tc)
	if failure != nil {
		return nil, failure
	}

	for _, cell := range cells {
		tile, ok := m.tilemap.TileByCell(cell)
		if !ok {
			return nil, &Failure{Kind: TileNotFound, Cell: cell}
		}
		switch tile.Kind {
		case tilemap.KindFixed:
			return nil, &Failure{Kind: InvalidBigTilePlacement, Cell: cell, TileID: tc.ID, Reason: "cell is fixed"}
		case tilemap.KindUninitialized:
			return nil, &Failure{Kind: InvalidBigTilePlacement, Cell: cell, TileID: tc.ID, Reason: "cell is uninitialised"}
		}
	}

	steps := make([]Step, len(cells))
	for i, cell := range cells {
		steps[i] = CollapseSubgridStep{
			Cell:     cell,
			ParentID: tc.ID,
			Subtile:  tc.Large.Subtiles[i],
			SubIndex: i,
		}
	}
	return steps, nil
}

// CheckLargeTileFit verifies, without mutating the tilemap, that the large
// tile could occupy the subgrid anchored at the given cell: every covered
// cell is in superposition and every subtile socket obeys the same docking
// rules a real collapse sequence would enforce. Returns the tile and true on
// a fit.
func CheckLargeTileFit(tm *tilemap.Tilemap, anchor grid.Cell, tc catalog.TileConfig) (catalog.TileConfig, bool) {
	if !tc.IsLarge() {
		return catalog.TileConfig{}, false
	}
	size := tm.Size()
	cells, failure := subgridCells(size, anchor, tc)
	if failure != nil {
		return catalog.TileConfig{}, false
	}

	covered := make(map[grid.Cell]int, len(cells))
	for i, cell := range cells {
		covered[cell] = i
		tile, ok := tm.TileByCell(cell)
		if !ok || !tile.IsSuperposition() {
			return catalog.TileConfig{}, false
		}
	}

	for i, cell := range cells {
		subtile := tc.Large.Subtiles[i]
		for _, dir := range grid.AllDirections() {
			socket := subtile.Sockets.ByDirection(dir)
			neighbor, inBounds := cell.Next(size, dir)
			if !inBounds {
				if socket != catalog.DefaultSocket {
					return catalog.TileConfig{}, false
				}
				continue
			}
			if siblingIndex, isSibling := covered[neighbor]; isSibling {
				sibling := tc.Large.Subtiles[siblingIndex]
				if !catalog.Compatible(socket, sibling.Sockets.ByDirection(dir.Opposite())) {
					return catalog.TileConfig{}, false
				}
				continue
			}
			tile, ok := tm.TileByCell(neighbor)
			if !ok {
				return catalog.TileConfig{}, false
			}
			switch tile.Kind {
			case tilemap.KindFixed:
				fixedConfig, ok := tm.Catalog().Tile(tile.ID)
				if !ok || !catalog.Compatible(socket, fixedConfig.Sockets.ByDirection(dir.Opposite())) {
					return catalog.TileConfig{}, false
				}
			case tilemap.KindUninitialized:
				if socket != catalog.DefaultSocket {
					return catalog.TileConfig{}, false
				}
			}
		}
	}
	return tc, true
}
