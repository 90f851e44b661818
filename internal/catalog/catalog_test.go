package catalog

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/citysketch/citysketch/internal/grid"
)

func TestSocketPairingSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := Socket(rapid.IntRange(int(DefaultSocket), int(LotLinkSocket)).Draw(t, "a"))
		b := Socket(rapid.IntRange(int(DefaultSocket), int(LotLinkSocket)).Draw(t, "b"))
		if Compatible(a, b) != Compatible(b, a) {
			t.Fatalf("pairing of %v and %v is not symmetric", a, b)
		}
	})
}

func TestPairingsForSocket(t *testing.T) {
	for s := DefaultSocket; s <= LotLinkSocket; s++ {
		for _, partner := range PairingsForSocket(s) {
			if !Compatible(s, partner) {
				t.Errorf("PairingsForSocket(%v) lists incompatible %v", s, partner)
			}
		}
	}

	if !Compatible(LotEntrySocket, LotDrivewaySocket) {
		t.Error("lot entry should dock with lot driveway")
	}
	if Compatible(RoadSocket, DefaultSocket) {
		t.Error("road should not dock with default")
	}
}

func TestParseSocket(t *testing.T) {
	for s := DefaultSocket; s <= LotLinkSocket; s++ {
		got, err := ParseSocket(s.String())
		if err != nil {
			t.Fatalf("ParseSocket(%q) failed: %v", s.String(), err)
		}
		if got != s {
			t.Errorf("ParseSocket(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if _, err := ParseSocket("bogus"); err == nil {
		t.Error("ParseSocket(bogus) should fail")
	}
}

// The bitmask table and the road socket data must agree: any drift between
// them silently misfires, so both are pinned here.
func TestDefaultBitmaskTableMatchesSockets(t *testing.T) {
	cat := Default()

	id, ok := cat.BaseRoadID(0)
	if !ok || id != LoneRoadID {
		t.Fatalf("BaseRoadID(0) = %d, %v, want %d", id, ok, LoneRoadID)
	}

	for mask := Bitmask(1); mask <= 15; mask++ {
		id, ok := cat.BaseRoadID(mask)
		if !ok {
			t.Fatalf("BaseRoadID(%04b) missing", mask)
		}
		tc, ok := cat.Tile(id)
		if !ok {
			t.Fatalf("tile %d missing from catalogue", id)
		}
		for _, dir := range grid.AllDirections() {
			wantRoad := mask&BitmaskWeight(dir) != 0
			gotRoad := tc.Sockets.ByDirection(dir) == RoadSocket
			if wantRoad != gotRoad {
				t.Errorf("tile %d: %v edge road = %v, bitmask says %v", id, dir, gotRoad, wantRoad)
			}
		}
	}
}

func TestDefaultCatalogShape(t *testing.T) {
	cat := Default()

	roads := cat.RoadTiles()
	if len(roads) != 20 {
		t.Errorf("road variants = %d, want 20", len(roads))
	}

	if !cat.IsRoad(LoneRoadID) {
		t.Error("lone road should be road biome")
	}
	if cat.IsRoad(GrassID) {
		t.Error("grass should not be road biome")
	}

	lot, ok := cat.Tile(ResidentialLotID)
	if !ok || !lot.IsLarge() {
		t.Fatal("residential lot missing or not large")
	}
	if lot.Large.Width*lot.Large.Height != len(lot.Large.Subtiles) {
		t.Error("lot subtile count mismatch")
	}
	anchor := lot.Anchor()
	if anchor.Sockets.Bottom != LotDrivewaySocket {
		t.Errorf("lot anchor bottom socket = %v, want lot driveway", anchor.Sockets.Bottom)
	}

	// Subtiles resolve through Tile but never appear as variants.
	if _, ok := cat.Tile(lot.Large.Subtiles[0].ID); !ok {
		t.Error("lot subtile should resolve through Tile")
	}
	for _, tc := range cat.All() {
		if tc.ID == lot.Large.Subtiles[0].ID {
			t.Error("subtile leaked into All()")
		}
	}
}

func TestVariantsOfBase(t *testing.T) {
	cat := Default()

	variants := cat.VariantsOfBase(RoadHorizontalID)
	if len(variants) != 2 {
		t.Fatalf("horizontal road variants = %d, want 2", len(variants))
	}
	for _, v := range variants {
		if v.BaseTileID != RoadHorizontalID {
			t.Errorf("variant %d base = %d", v.ID, v.BaseTileID)
		}
	}

	if got := cat.VariantsOfBase(GrassID); len(got) != 0 {
		t.Errorf("grass variants = %v, want none", got)
	}
}

func TestTileIDsByOrthogonalMatch(t *testing.T) {
	cat := Default()
	roads := cat.RoadTiles()

	// A top-left corner only admits tiles closed toward up and left.
	corner := grid.BoundaryBits{Up: true, Left: true}
	ids := cat.TileIDsByOrthogonalMatch(roads, corner)
	for _, id := range ids {
		tc, _ := cat.Tile(id)
		if tc.Sockets.Top != DefaultSocket || tc.Sockets.Left != DefaultSocket {
			t.Errorf("tile %d has open socket toward the corner", id)
		}
	}
	// Masks without the up and left bits: 0b0000 is the lone road, which
	// is open on all edges and must be excluded.
	for _, id := range ids {
		if id == LoneRoadID {
			t.Error("lone road should not match a corner")
		}
	}

	inner := grid.BoundaryBits{}
	if got := cat.TileIDsByOrthogonalMatch(roads, inner); len(got) != len(roads) {
		t.Errorf("unconstrained match = %d ids, want %d", len(got), len(roads))
	}
}

func TestDecorativeTiles(t *testing.T) {
	cat := Default()
	for _, tc := range cat.DecorativeTiles() {
		if tc.Biome == BiomeRoad {
			t.Errorf("road tile %d in decorative set", tc.ID)
		}
	}
}

func TestNewRejectsBadData(t *testing.T) {
	tiles := []TileConfig{
		{ID: 1, Biome: BiomeRoad, Weight: 0.5},
		{ID: 1, Biome: BiomeRoad, Weight: 0.5},
	}
	if _, err := New(tiles, nil); err == nil {
		t.Error("duplicate ids should be rejected")
	}

	if _, err := New([]TileConfig{{ID: 1, Weight: 1.5}}, nil); err == nil {
		t.Error("weight above 1 should be rejected")
	}

	bad := []TileConfig{{
		ID: 1, Biome: BiomeLot, Weight: 0.5,
		Large: &LargeTileConfig{Width: 2, Height: 2, AnchorIndex: 4, Subtiles: make([]TileConfig, 4)},
	}}
	if _, err := New(bad, nil); err == nil {
		t.Error("out-of-range anchor should be rejected")
	}

	if _, err := New([]TileConfig{{ID: 1, Biome: BiomeNature, Weight: 0.5}}, map[Bitmask]TileID{0: 1}); err == nil {
		t.Error("bitmask entry pointing at a non-road tile should be rejected")
	}
}
