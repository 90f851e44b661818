package catalog

// Default catalogue tile ids. Road bases 1..15 correspond directly to the
// neighbour bitmask that selects them; 16 is the lone road placed when no
// neighbour is a road.
const (
	LoneRoadID        TileID = 16
	RoadHorizontalID  TileID = 6 // left+right
	RoadVerticalID    TileID = 9 // up+down
	LotEntryTopID     TileID = 17
	LotEntryBottomID  TileID = 18
	LotEntryLeftID    TileID = 19
	LotEntryRightID   TileID = 20
	GrassID           TileID = 30
	FlowersID         TileID = 31
	ForestID          TileID = 32
	ParkID            TileID = 33
	PondID            TileID = 34
	ResidentialLotID  TileID = 40
	residentialLotTL  TileID = 41
	residentialLotTR  TileID = 42
	residentialLotBL  TileID = 43
	residentialLotBRA TileID = 44 // anchor, driveway on bottom edge
)

// roadSockets returns the sockets of the base road variant for a bitmask:
// a road socket on every edge whose bit is set, default elsewhere.
func roadSockets(mask Bitmask) Sockets {
	pick := func(bit Bitmask) Socket {
		if mask&bit != 0 {
			return RoadSocket
		}
		return DefaultSocket
	}
	return Sockets{Top: pick(1), Left: pick(2), Right: pick(4), Bottom: pick(8)}
}

// Default returns the built-in catalogue: the sixteen base road variants,
// four lot-entry road variants, decorative nature tiles and one 2x2
// residential lot.
func Default() *Catalog {
	var tiles []TileConfig

	// Base roads 1..15 keyed by their own bitmask.
	for mask := Bitmask(1); mask <= 15; mask++ {
		tiles = append(tiles, TileConfig{
			ID:      TileID(mask),
			Biome:   BiomeRoad,
			Weight:  0.5,
			Sockets: roadSockets(mask),
		})
	}
	// Lone road: drawn as a crossroad, open to all four edges.
	tiles = append(tiles, TileConfig{
		ID:      LoneRoadID,
		Biome:   BiomeRoad,
		Weight:  0.5,
		Sockets: uniformSockets(RoadSocket),
	})

	// Lot-entry variants of the straight roads. The entry edge replaces a
	// default edge so a lot driveway can dock there.
	tiles = append(tiles,
		TileConfig{
			ID: LotEntryTopID, Biome: BiomeRoad, Weight: 0.25, BaseTileID: RoadHorizontalID,
			Sockets: Sockets{Top: LotEntrySocket, Left: RoadSocket, Right: RoadSocket, Bottom: DefaultSocket},
		},
		TileConfig{
			ID: LotEntryBottomID, Biome: BiomeRoad, Weight: 0.25, BaseTileID: RoadHorizontalID,
			Sockets: Sockets{Top: DefaultSocket, Left: RoadSocket, Right: RoadSocket, Bottom: LotEntrySocket},
		},
		TileConfig{
			ID: LotEntryLeftID, Biome: BiomeRoad, Weight: 0.25, BaseTileID: RoadVerticalID,
			Sockets: Sockets{Top: RoadSocket, Left: LotEntrySocket, Right: DefaultSocket, Bottom: RoadSocket},
		},
		TileConfig{
			ID: LotEntryRightID, Biome: BiomeRoad, Weight: 0.25, BaseTileID: RoadVerticalID,
			Sockets: Sockets{Top: RoadSocket, Left: DefaultSocket, Right: LotEntrySocket, Bottom: RoadSocket},
		},
	)

	// Decorative nature tiles.
	tiles = append(tiles,
		TileConfig{ID: GrassID, Biome: BiomeNature, Weight: 0.5, Sockets: uniformSockets(DefaultSocket)},
		TileConfig{ID: FlowersID, Biome: BiomeNature, Weight: 0.2, Sockets: uniformSockets(DefaultSocket)},
		TileConfig{ID: ForestID, Biome: BiomeNature, Weight: 0.15, Sockets: uniformSockets(GrassSocket)},
		TileConfig{ID: ParkID, Biome: BiomeNature, Weight: 0.08, Sockets: uniformSockets(GrassSocket)},
		TileConfig{ID: PondID, Biome: BiomeNature, Weight: 0.04, Sockets: uniformSockets(GrassSocket)},
	)

	// 2x2 residential lot. The anchor is the bottom-right subcell; its
	// driveway docks against a lot-entry road below.
	tiles = append(tiles, TileConfig{
		ID:     ResidentialLotID,
		Biome:  BiomeLot,
		Weight: 0.15,
		Large: &LargeTileConfig{
			Width:       2,
			Height:      2,
			AnchorIndex: 3,
			Subtiles: []TileConfig{
				{ID: residentialLotTL, Biome: BiomeLot,
					Sockets: Sockets{Top: DefaultSocket, Left: DefaultSocket, Right: LotLinkSocket, Bottom: LotLinkSocket}},
				{ID: residentialLotTR, Biome: BiomeLot,
					Sockets: Sockets{Top: DefaultSocket, Left: LotLinkSocket, Right: DefaultSocket, Bottom: LotLinkSocket}},
				{ID: residentialLotBL, Biome: BiomeLot,
					Sockets: Sockets{Top: LotLinkSocket, Left: DefaultSocket, Right: LotLinkSocket, Bottom: DefaultSocket}},
				{ID: residentialLotBRA, Biome: BiomeLot,
					Sockets: Sockets{Top: LotLinkSocket, Left: LotLinkSocket, Right: DefaultSocket, Bottom: LotDrivewaySocket}},
			},
		},
	})

	masks := make(map[Bitmask]TileID, 16)
	masks[0] = LoneRoadID
	for mask := Bitmask(1); mask <= 15; mask++ {
		masks[mask] = TileID(mask)
	}

	c, err := New(tiles, masks)
	if err != nil {
		// The built-in data is validated by tests; reaching here is a bug.
		panic(err)
	}
	return c
}
