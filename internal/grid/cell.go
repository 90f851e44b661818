// Package grid provides coordinate arithmetic for rectangular tilemaps.
// Cells are 1-indexed positions (1 <= x <= W, 1 <= y <= H) equivalent to a
// dense array index via index = (x-1) + (y-1)*W.
package grid

import (
	"errors"
	"fmt"
)

var ErrNotCollinear = errors.New("grid: cells do not share a row or column")

// Size describes the cell dimensions of a tilemap.
type Size struct {
	Width  int
	Height int
}

// Area returns the total number of cells.
func (s Size) Area() int {
	return s.Width * s.Height
}

// Cell is a 1-indexed (x, y) position in a tilemap.
type Cell struct {
	X, Y int
}

// New returns the cell at (x, y) if it lies within the given size.
func New(size Size, x, y int) (Cell, bool) {
	c := Cell{X: x, Y: y}
	return c, c.Valid(size)
}

// FromIndex converts a dense array index back into a cell.
func FromIndex(size Size, index int) (Cell, bool) {
	if index < 0 || index >= size.Area() {
		return Cell{}, false
	}
	return Cell{X: index%size.Width + 1, Y: index/size.Width + 1}, true
}

// Valid reports whether the cell lies within the given size.
func (c Cell) Valid(size Size) bool {
	return c.X >= 1 && c.X <= size.Width && c.Y >= 1 && c.Y <= size.Height
}

// Index returns the dense array index of the cell.
func (c Cell) Index(size Size) int {
	return (c.X - 1) + (c.Y-1)*size.Width
}

// String returns the cell as "(x, y)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Next returns the orthogonal neighbour in the given direction, if in bounds.
func (c Cell) Next(size Size, dir Direction) (Cell, bool) {
	dx, dy := dir.Delta()
	return c.TranslateBy(size, dx, dy)
}

// NextDiagonal returns the diagonal neighbour in the given direction, if in
// bounds.
func (c Cell) NextDiagonal(size Size, dir DiagonalDirection) (Cell, bool) {
	dx, dy := dir.Delta()
	return c.TranslateBy(size, dx, dy)
}

// QuadrantNeighbors returns the up to three in-bounds neighbours that share
// the quadrant corner named by dir, in clockwise order around the corner.
// For TopLeft these are the cells left, diagonally up-left and up of c.
func (c Cell) QuadrantNeighbors(size Size, dir DiagonalDirection) []Cell {
	var probes [3]struct{ dx, dy int }
	switch dir {
	case TopLeft:
		probes = [3]struct{ dx, dy int }{{-1, 0}, {-1, -1}, {0, -1}}
	case TopRight:
		probes = [3]struct{ dx, dy int }{{0, -1}, {1, -1}, {1, 0}}
	case BottomRight:
		probes = [3]struct{ dx, dy int }{{1, 0}, {1, 1}, {0, 1}}
	case BottomLeft:
		probes = [3]struct{ dx, dy int }{{0, 1}, {-1, 1}, {-1, 0}}
	}

	neighbors := make([]Cell, 0, 3)
	for _, p := range probes {
		if n, ok := c.TranslateBy(size, p.dx, p.dy); ok {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// TranslateBy returns the cell offset by (dx, dy), if in bounds.
func (c Cell) TranslateBy(size Size, dx, dy int) (Cell, bool) {
	moved := Cell{X: c.X + dx, Y: c.Y + dy}
	return moved, moved.Valid(size)
}

// PlaceIn maps a local subgrid cell onto the global grid given the subgrid's
// top-left corner. The local cell is 1-indexed within the subgrid.
func PlaceIn(size Size, origin Cell, local Cell) (Cell, bool) {
	return origin.TranslateBy(size, local.X-1, local.Y-1)
}

// OrthogonalDirection returns the direction that leads from one cell toward
// another. The cells must be distinct and share a row or column.
func OrthogonalDirection(from, to Cell) (Direction, error) {
	switch {
	case from.X == to.X && from.Y > to.Y:
		return Up, nil
	case from.X == to.X && from.Y < to.Y:
		return Down, nil
	case from.Y == to.Y && from.X > to.X:
		return Left, nil
	case from.Y == to.Y && from.X < to.X:
		return Right, nil
	default:
		return Up, fmt.Errorf("%w: %v -> %v", ErrNotCollinear, from, to)
	}
}

// BoundaryBits records which map edges a cell touches.
type BoundaryBits struct {
	Up    bool
	Left  bool
	Right bool
	Down  bool
}

// Any reports whether the cell touches at least one map edge.
func (b BoundaryBits) Any() bool {
	return b.Up || b.Left || b.Right || b.Down
}

// ByDirection returns the bit for the given direction.
func (b BoundaryBits) ByDirection(dir Direction) bool {
	switch dir {
	case Up:
		return b.Up
	case Left:
		return b.Left
	case Right:
		return b.Right
	default:
		return b.Down
	}
}

// ConnectedBounds reports, per direction, whether the cell sits on the
// corresponding map edge. Edge neighbours treat off-map as compatible with
// the default socket.
func (c Cell) ConnectedBounds(size Size) BoundaryBits {
	return BoundaryBits{
		Up:    c.Y == 1,
		Left:  c.X == 1,
		Right: c.X == size.Width,
		Down:  c.Y == size.Height,
	}
}
