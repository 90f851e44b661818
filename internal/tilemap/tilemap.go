package tilemap

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
)

// CellSize is the physical edge length of one cell in world units.
const CellSize = 16.0

// placementAnimationDuration is how long a freshly placed tile carries its
// placement animation attribute.
const placementAnimationDuration = 0.3

// maxRecentPlacements bounds the adjacency-chained placement history.
const maxRecentPlacements = 3

// Config holds the cell dimensions of a tilemap.
type Config struct {
	HorizontalCellsAmount int
	VerticalCellsAmount   int
}

// BoundingBox is the physical extent of the tilemap, origin at (0, 0).
type BoundingBox struct {
	X, Y          float64
	Width, Height float64
}

// AnimationTimer tracks the remaining placement animation of one cell.
type AnimationTimer struct {
	Cell  grid.Cell
	timer *gween.Tween
}

// Tilemap is a dense grid of tiles. It exclusively owns its tiles; every
// mutation goes through updateCell.
type Tilemap struct {
	cells            []Tile
	config           Config
	catalog          *catalog.Catalog
	recentPlacements []grid.Cell
	animationTimers  []AnimationTimer
}

// New creates a tilemap whose cells are produced by the initializer, which
// receives each cell's dense array index.
func New(config Config, cat *catalog.Catalog, init func(index int) Tile) *Tilemap {
	tm := &Tilemap{
		cells:   make([]Tile, config.HorizontalCellsAmount*config.VerticalCellsAmount),
		config:  config,
		catalog: cat,
	}
	for i := range tm.cells {
		tm.cells[i] = init(i)
	}
	return tm
}

// NewEmpty creates a tilemap with every cell uninitialised.
func NewEmpty(config Config, cat *catalog.Catalog) *Tilemap {
	return New(config, cat, func(int) Tile { return NewUninitialized() })
}

// Size returns the cell dimensions.
func (tm *Tilemap) Size() grid.Size {
	return grid.Size{Width: tm.config.HorizontalCellsAmount, Height: tm.config.VerticalCellsAmount}
}

// Config returns the tilemap configuration.
func (tm *Tilemap) Config() Config {
	return tm.config
}

// Catalog returns the tile catalogue the map was built against.
func (tm *Tilemap) Catalog() *catalog.Catalog {
	return tm.catalog
}

// Width returns the physical width of the map.
func (tm *Tilemap) Width() float64 {
	return float64(tm.config.HorizontalCellsAmount) * CellSize
}

// Height returns the physical height of the map.
func (tm *Tilemap) Height() float64 {
	return float64(tm.config.VerticalCellsAmount) * CellSize
}

// Bounds returns the physical bounding box of the map.
func (tm *Tilemap) Bounds() BoundingBox {
	return BoundingBox{Width: tm.Width(), Height: tm.Height()}
}

// TileByCell returns the tile at the given cell.
func (tm *Tilemap) TileByCell(c grid.Cell) (Tile, bool) {
	if !c.Valid(tm.Size()) {
		return Tile{}, false
	}
	return tm.cells[c.Index(tm.Size())], true
}

// FixedTileByCell returns the tile at the given cell only if it is fixed.
func (tm *Tilemap) FixedTileByCell(c grid.Cell) (Tile, bool) {
	tile, ok := tm.TileByCell(c)
	if !ok || !tile.IsFixed() {
		return Tile{}, false
	}
	return tile, true
}

// updateCell is the single write path for cell mutations.
func (tm *Tilemap) updateCell(c grid.Cell, tile Tile) {
	tm.cells[c.Index(tm.Size())] = tile
}

// SetSuperpositionOptions replaces the cell's tile with a superposition over
// the given options.
func (tm *Tilemap) SetSuperpositionOptions(c grid.Cell, options []catalog.TileID) {
	if !c.Valid(tm.Size()) {
		return
	}
	tm.updateCell(c, NewSuperposition(options))
}

// ClearTile resets the cell to uninitialised.
func (tm *Tilemap) ClearTile(c grid.Cell) {
	if !c.Valid(tm.Size()) {
		return
	}
	tm.updateCell(c, NewUninitialized())
}

// AddTile places a user-built tile at the cell. The tile starts its life in
// Constructing, carries a placement animation and extends the recent
// placement chain.
func (tm *Tilemap) AddTile(tc catalog.TileConfig, c grid.Cell) []Action {
	if !c.Valid(tm.Size()) {
		return nil
	}
	tile, actions := NewFixed(tc.ID, nil, StateConstructing)
	tile.Animated = true
	tm.updateCell(c, tile)
	tm.pushAnimationTimer(c)
	tm.pushRecentPlacement(c)
	return actions
}

// AddTileFromWFC places a solver-generated tile at the cell. Generated tiles
// skip the construction phase and appear without audio.
func (tm *Tilemap) AddTileFromWFC(parent *ParentTile, tc catalog.TileConfig, c grid.Cell) []Action {
	if !c.Valid(tm.Size()) {
		return nil
	}
	tile, actions := NewFixed(tc.ID, parent, StateGenerated)
	tile.Animated = true
	tm.updateCell(c, tile)
	tm.pushAnimationTimer(c)
	return actions
}

// RemoveTile starts removal of the fixed tile at the cell. The tile stays in
// place, in Removing, until its timer drains and Update empties the cell.
// Removing a tile that cannot be removed is a no-op.
func (tm *Tilemap) RemoveTile(c grid.Cell) []Action {
	tile, ok := tm.FixedTileByCell(c)
	if !ok {
		return nil
	}
	actions := tile.attemptRemove()
	if actions == nil {
		return nil
	}
	tm.updateCell(c, tile)
	return actions
}

// UpdateTileID swaps the fixed tile's variant id, passing through Changing
// so the change is atomic from an observer's viewpoint.
func (tm *Tilemap) UpdateTileID(c grid.Cell, id catalog.TileID) []Action {
	tile, ok := tm.FixedTileByCell(c)
	if !ok {
		return nil
	}
	actions := tile.updateTileID(id)
	tm.updateCell(c, tile)
	return actions
}

func (tm *Tilemap) pushAnimationTimer(c grid.Cell) {
	tm.animationTimers = append(tm.animationTimers, AnimationTimer{
		Cell:  c,
		timer: gween.New(0, 1, placementAnimationDuration, ease.Linear),
	})
}

// pushRecentPlacement extends the placement chain when the new cell is
// orthogonally adjacent to the previous one and restarts it otherwise.
func (tm *Tilemap) pushRecentPlacement(c grid.Cell) {
	if n := len(tm.recentPlacements); n > 0 {
		if !orthogonallyAdjacent(tm.recentPlacements[n-1], c) {
			tm.recentPlacements = tm.recentPlacements[:0]
		}
	}
	tm.recentPlacements = append(tm.recentPlacements, c)
	if len(tm.recentPlacements) > maxRecentPlacements {
		tm.recentPlacements = tm.recentPlacements[1:]
	}
}

func orthogonallyAdjacent(a, b grid.Cell) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	return (dx == 0 && (dy == 1 || dy == -1)) || (dy == 0 && (dx == 1 || dx == -1))
}

// RecentPlacements returns the adjacency-chained history of the latest user
// placements, oldest first.
func (tm *Tilemap) RecentPlacements() []grid.Cell {
	return append([]grid.Cell(nil), tm.recentPlacements...)
}

// IsRoadAt reports whether the cell holds a committed road tile that is not
// on its way out. Tiles in Removing or Removed no longer count as roads for
// neighbour bitmasks.
func (tm *Tilemap) IsRoadAt(c grid.Cell) bool {
	tile, ok := tm.FixedTileByCell(c)
	if !ok {
		return false
	}
	state := tile.FSM.State()
	if state == StateRemoving || state == StateRemoved {
		return false
	}
	return tm.catalog.IsRoad(tile.ID)
}

// CellBitmask returns the four-bit road-neighbour record of the cell with
// weights up=1, left=2, right=4, down=8.
func (tm *Tilemap) CellBitmask(c grid.Cell) catalog.Bitmask {
	var mask catalog.Bitmask
	for _, dir := range grid.AllDirections() {
		if neighbor, ok := c.Next(tm.Size(), dir); ok && tm.IsRoadAt(neighbor) {
			mask |= catalog.BitmaskWeight(dir)
		}
	}
	return mask
}

// SuperpositionBySurroundings filters the candidate variants down to those
// whose sockets are compatible with the cell's surroundings: map edges
// require the default socket, fixed neighbours require a pairing with their
// facing socket, and open neighbours leave the edge unconstrained.
func (tm *Tilemap) SuperpositionBySurroundings(c grid.Cell, candidates []catalog.TileConfig) []catalog.TileID {
	bounds := c.ConnectedBounds(tm.Size())
	var options []catalog.TileID
	for _, tc := range candidates {
		if tm.tileFitsSurroundings(c, tc, bounds) {
			options = append(options, tc.ID)
		}
	}
	return options
}

func (tm *Tilemap) tileFitsSurroundings(c grid.Cell, tc catalog.TileConfig, bounds grid.BoundaryBits) bool {
	sockets := tc.ExternalSockets()
	for _, dir := range grid.AllDirections() {
		socket := sockets.ByDirection(dir)
		if bounds.ByDirection(dir) {
			if socket != catalog.DefaultSocket {
				return false
			}
			continue
		}
		neighbor, ok := c.Next(tm.Size(), dir)
		if !ok {
			continue
		}
		if fixed, isFixed := tm.FixedTileByCell(neighbor); isFixed {
			facing, found := tm.facingSocket(fixed, dir.Opposite())
			if found && !catalog.Compatible(socket, facing) {
				return false
			}
		}
	}
	return true
}

// facingSocket returns the socket a fixed tile exposes in the given
// direction.
func (tm *Tilemap) facingSocket(tile Tile, dir grid.Direction) (catalog.Socket, bool) {
	tc, ok := tm.catalog.Tile(tile.ID)
	if !ok {
		return catalog.DefaultSocket, false
	}
	return tc.Sockets.ByDirection(dir), true
}

// ResetTileBySurroundings reseeds the cell with a superposition over the
// decorative variants that fit its surroundings.
func (tm *Tilemap) ResetTileBySurroundings(c grid.Cell) {
	if !c.Valid(tm.Size()) {
		return
	}
	options := tm.SuperpositionBySurroundings(c, tm.catalog.DecorativeTiles())
	tm.SetSuperpositionOptions(c, options)
}

// ResetFixedTileBySurroundings reopens a fixed road tile to the superposition
// of its bitmask base variant and the sibling variants that still fit the
// surroundings. Non-road and non-fixed cells are left untouched.
func (tm *Tilemap) ResetFixedTileBySurroundings(c grid.Cell) {
	if !tm.IsRoadAt(c) {
		return
	}
	base, ok := tm.catalog.BaseRoadID(tm.CellBitmask(c))
	if !ok {
		return
	}
	tm.SetSuperpositionOptions(c, tm.roadReopenOptions(c, base))
}

// roadReopenOptions returns the base road id plus the variants of that base
// that fit the cell's surroundings. A variant whose open socket faces a
// superposition that offers no docking option is pruned: collapsing to it
// could only end in a backtrack.
func (tm *Tilemap) roadReopenOptions(c grid.Cell, base catalog.TileID) []catalog.TileID {
	options := []catalog.TileID{base}
	bounds := c.ConnectedBounds(tm.Size())
	for _, variant := range tm.catalog.VariantsOfBase(base) {
		if !tm.tileFitsSurroundings(c, variant, bounds) {
			continue
		}
		if !tm.variantCanDockOpenNeighbors(c, variant) {
			continue
		}
		options = append(options, variant.ID)
	}
	return options
}

// variantCanDockOpenNeighbors checks every non-default socket of the variant
// that faces a superposition neighbour for at least one docking option.
func (tm *Tilemap) variantCanDockOpenNeighbors(c grid.Cell, variant catalog.TileConfig) bool {
	sockets := variant.ExternalSockets()
	for _, dir := range grid.AllDirections() {
		socket := sockets.ByDirection(dir)
		if socket == catalog.DefaultSocket {
			continue
		}
		neighbor, ok := c.Next(tm.Size(), dir)
		if !ok {
			continue
		}
		tile, ok := tm.TileByCell(neighbor)
		if !ok || !tile.IsSuperposition() {
			continue
		}
		if !tm.SuperpositionCanDock(neighbor, socket, dir) {
			return false
		}
	}
	return true
}

// SuperpositionCanDock reports whether the superposition at the neighbour
// cell holds at least one option whose socket facing back along dir docks
// with the given socket.
func (tm *Tilemap) SuperpositionCanDock(neighbor grid.Cell, socket catalog.Socket, dir grid.Direction) bool {
	tile, ok := tm.TileByCell(neighbor)
	if !ok || !tile.IsSuperposition() {
		return false
	}
	for _, id := range tile.Options {
		tc, ok := tm.catalog.Tile(id)
		if !ok {
			continue
		}
		if catalog.Compatible(socket, tc.ExternalSockets().ByDirection(dir.Opposite())) {
			return true
		}
	}
	return false
}

// RemoveLargeTileIfExists wipes the whole large-tile instance the given cell
// belongs to: every subcell is reseeded with a decorative superposition and
// the road cell the lot's driveway docked against is reopened to its base
// variant plus applicable lot-entry variants. A cell that is not part of a
// large tile is left untouched.
func (tm *Tilemap) RemoveLargeTileIfExists(c grid.Cell) {
	tile, ok := tm.FixedTileByCell(c)
	if !ok || tile.Parent == nil {
		return
	}
	parentConfig, ok := tm.catalog.Tile(tile.Parent.LargeID)
	if !ok || parentConfig.Large == nil {
		return
	}
	large := parentConfig.Large

	// Recover the top-left corner from this subcell's position in the
	// subgrid, then visit the whole rectangle.
	local := large.LocalCellOf(tile.Parent.SubIndex)
	topLeft, ok := c.TranslateBy(tm.Size(), -(local.X - 1), -(local.Y - 1))
	if !ok {
		return
	}

	subCells := make([]grid.Cell, 0, len(large.Subtiles))
	var anchorCell grid.Cell
	for i := range large.Subtiles {
		sub, ok := grid.PlaceIn(tm.Size(), topLeft, large.LocalCellOf(i))
		if !ok {
			continue
		}
		subCells = append(subCells, sub)
		if i == large.AnchorIndex {
			anchorCell = sub
		}
	}

	for _, sub := range subCells {
		tm.ClearTile(sub)
	}

	// Reopen the road before reseeding the subcells: the anchor cell must
	// not be filtered against the still-fixed lot-entry road.
	tm.reopenDrivewayRoad(parentConfig, anchorCell)

	for _, sub := range subCells {
		tm.ResetTileBySurroundings(sub)
	}
}

// reopenDrivewayRoad reopens the road cell the lot's driveway was attached
// to, so the base variant and remaining lot-entry variants become available
// again.
func (tm *Tilemap) reopenDrivewayRoad(parentConfig catalog.TileConfig, anchorCell grid.Cell) {
	anchorSockets := parentConfig.ExternalSockets()
	for _, dir := range grid.AllDirections() {
		if anchorSockets.ByDirection(dir) != catalog.LotDrivewaySocket {
			continue
		}
		roadCell, ok := anchorCell.Next(tm.Size(), dir)
		if !ok || !tm.IsRoadAt(roadCell) {
			continue
		}
		tm.ResetFixedTileBySurroundings(roadCell)
	}
}
