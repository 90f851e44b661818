package catalog

import (
	"fmt"
	"sort"

	"github.com/citysketch/citysketch/internal/grid"
)

// Bitmask is a four-bit record of which orthogonal neighbours of a cell hold
// a road tile, with weights up=1, left=2, right=4, down=8.
type Bitmask uint8

// BitmaskWeight returns the bitmask weight of a direction.
func BitmaskWeight(dir grid.Direction) Bitmask {
	switch dir {
	case grid.Up:
		return 1
	case grid.Left:
		return 2
	case grid.Right:
		return 4
	default:
		return 8
	}
}

// Catalog is the set of tile variants available to the tilemap and the WFC
// solver. Lookup order is deterministic: ids ascending.
type Catalog struct {
	tiles map[TileID]TileConfig
	order []TileID
	// subtiles holds the single tiles that make up large variants. They
	// are placed only through their parent, never offered in
	// superpositions on their own.
	subtiles map[TileID]TileConfig
	// baseRoadByMask maps a neighbour bitmask to the base road variant to
	// place there.
	baseRoadByMask map[Bitmask]TileID
}

// New builds a catalogue from the given variants and bitmask table. Subtiles
// of large variants are registered automatically.
func New(tiles []TileConfig, baseRoadByMask map[Bitmask]TileID) (*Catalog, error) {
	c := &Catalog{
		tiles:          make(map[TileID]TileConfig, len(tiles)),
		subtiles:       make(map[TileID]TileConfig),
		baseRoadByMask: baseRoadByMask,
	}
	for _, tc := range tiles {
		if _, dup := c.tiles[tc.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate tile id %d", tc.ID)
		}
		if tc.Weight < 0 || tc.Weight > 1 {
			return nil, fmt.Errorf("catalog: tile %d weight %v outside [0, 1]", tc.ID, tc.Weight)
		}
		if tc.Large != nil {
			l := tc.Large
			if len(l.Subtiles) != l.Width*l.Height {
				return nil, fmt.Errorf("catalog: tile %d has %d subtiles, want %d", tc.ID, len(l.Subtiles), l.Width*l.Height)
			}
			if l.AnchorIndex < 0 || l.AnchorIndex >= len(l.Subtiles) {
				return nil, fmt.Errorf("catalog: tile %d anchor index %d out of range", tc.ID, l.AnchorIndex)
			}
			for _, sub := range l.Subtiles {
				if _, dup := c.subtiles[sub.ID]; dup {
					return nil, fmt.Errorf("catalog: duplicate subtile id %d", sub.ID)
				}
				c.subtiles[sub.ID] = sub
			}
		}
		c.tiles[tc.ID] = tc
		c.order = append(c.order, tc.ID)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	for id := range c.subtiles {
		if _, clash := c.tiles[id]; clash {
			return nil, fmt.Errorf("catalog: subtile id %d clashes with a variant id", id)
		}
	}
	for mask, id := range baseRoadByMask {
		tc, ok := c.tiles[id]
		if !ok {
			return nil, fmt.Errorf("catalog: bitmask %04b maps to unknown tile %d", mask, id)
		}
		if tc.Biome != BiomeRoad {
			return nil, fmt.Errorf("catalog: bitmask %04b maps to non-road tile %d", mask, id)
		}
	}
	return c, nil
}

// Tile returns the variant or subtile with the given id.
func (c *Catalog) Tile(id TileID) (TileConfig, bool) {
	if tc, ok := c.tiles[id]; ok {
		return tc, true
	}
	tc, ok := c.subtiles[id]
	return tc, ok
}

// All returns every variant, ids ascending.
func (c *Catalog) All() []TileConfig {
	out := make([]TileConfig, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tiles[id])
	}
	return out
}

// IDs returns every variant id ascending.
func (c *Catalog) IDs() []TileID {
	out := make([]TileID, len(c.order))
	copy(out, c.order)
	return out
}

// RoadTiles returns the road-biome variants, ids ascending.
func (c *Catalog) RoadTiles() []TileConfig {
	return c.byBiome(BiomeRoad)
}

// DecorativeTiles returns the variants used by automated fill passes: every
// nature and lot variant, ids ascending.
func (c *Catalog) DecorativeTiles() []TileConfig {
	var out []TileConfig
	for _, id := range c.order {
		tc := c.tiles[id]
		if tc.Biome == BiomeNature || tc.Biome == BiomeLot {
			out = append(out, tc)
		}
	}
	return out
}

func (c *Catalog) byBiome(b Biome) []TileConfig {
	var out []TileConfig
	for _, id := range c.order {
		if c.tiles[id].Biome == b {
			out = append(out, c.tiles[id])
		}
	}
	return out
}

// IsRoad reports whether the id names a road-biome variant.
func (c *Catalog) IsRoad(id TileID) bool {
	tc, ok := c.tiles[id]
	return ok && tc.Biome == BiomeRoad
}

// BaseRoadID returns the base road variant for the given neighbour bitmask.
func (c *Catalog) BaseRoadID(mask Bitmask) (TileID, bool) {
	id, ok := c.baseRoadByMask[mask]
	return id, ok
}

// VariantsOfBase returns the variants whose BaseTileID is the given base,
// ids ascending. The base itself is not included.
func (c *Catalog) VariantsOfBase(base TileID) []TileConfig {
	var out []TileConfig
	for _, id := range c.order {
		if c.tiles[id].BaseTileID == base {
			out = append(out, c.tiles[id])
		}
	}
	return out
}

// TileIDsByOrthogonalMatch returns the ids of variants whose sockets on every
// edge constrained by bounds equal DefaultSocket. Used to seed superpositions
// so that cells on the map boundary only admit tiles that close toward the
// edge.
func (c *Catalog) TileIDsByOrthogonalMatch(tiles []TileConfig, bounds grid.BoundaryBits) []TileID {
	var out []TileID
	for _, tc := range tiles {
		sockets := tc.ExternalSockets()
		match := true
		for _, dir := range grid.AllDirections() {
			if bounds.ByDirection(dir) && sockets.ByDirection(dir) != DefaultSocket {
				match = false
				break
			}
		}
		if match {
			out = append(out, tc.ID)
		}
	}
	return out
}
