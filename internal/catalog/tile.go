package catalog

import "github.com/citysketch/citysketch/internal/grid"

// TileID identifies a tile variant in the catalogue.
type TileID int

// Biome classifies what a tile variant represents.
type Biome int

const (
	BiomeRoad Biome = iota
	BiomeLot
	BiomeNature
)

// String returns the string representation of a Biome.
func (b Biome) String() string {
	switch b {
	case BiomeRoad:
		return "road"
	case BiomeLot:
		return "lot"
	case BiomeNature:
		return "nature"
	default:
		return "unknown"
	}
}

// TileConfig describes one tile variant. A variant is either a single-cell
// tile, characterised by its four edge sockets, or a large (multi-cell) tile
// whose Large field is set. A large tile's external sockets are those of its
// anchor subtile.
type TileConfig struct {
	ID     TileID
	Biome  Biome
	Weight float64
	// Sockets apply to single tiles only. For large tiles use Anchor().
	Sockets Sockets
	// BaseTileID links a variant to its base tile; zero means the variant
	// is itself a base. Road lot-entry variants share the base of the
	// plain road they decorate.
	BaseTileID TileID
	// Large is set for multi-cell tiles.
	Large *LargeTileConfig
}

// LargeTileConfig describes the subgrid of a multi-cell tile. Subtiles are
// ordered row-major; the anchor is the one subcell through which the tile
// docks to the surrounding grid.
type LargeTileConfig struct {
	Width       int
	Height      int
	AnchorIndex int
	Subtiles    []TileConfig
}

// IsLarge reports whether the variant occupies more than one cell.
func (tc TileConfig) IsLarge() bool {
	return tc.Large != nil
}

// Anchor returns the anchor subtile of a large tile. For single tiles it
// returns the tile itself.
func (tc TileConfig) Anchor() TileConfig {
	if tc.Large == nil {
		return tc
	}
	return tc.Large.Subtiles[tc.Large.AnchorIndex]
}

// ExternalSockets returns the sockets the variant exposes to the grid: the
// tile's own sockets for singles, the anchor subtile's for large tiles.
func (tc TileConfig) ExternalSockets() Sockets {
	return tc.Anchor().Sockets
}

// LocalCellOf returns the 1-indexed local subgrid cell of the subtile at the
// given index.
func (l *LargeTileConfig) LocalCellOf(subIndex int) grid.Cell {
	return grid.Cell{X: subIndex%l.Width + 1, Y: subIndex/l.Width + 1}
}

// SubIndexOf is the inverse of LocalCellOf.
func (l *LargeTileConfig) SubIndexOf(local grid.Cell) int {
	return (local.X - 1) + (local.Y-1)*l.Width
}
