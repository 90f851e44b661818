// Package wfc implements a stepwise Wave Function Collapse solver over a
// tilemap: constraint propagation through edge sockets, weighted random
// collapse, chronological backtracking with a bounded budget, and atomic
// multi-cell tile placement.
package wfc

import (
	"fmt"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/grid"
)

// FailureKind classifies solver failures.
type FailureKind int

const (
	// NoSuperpositionOptions means propagation emptied a superposition.
	NoSuperpositionOptions FailureKind = iota
	// InvalidBigTilePlacement means a large-tile subgrid left the map or
	// could not dock against a neighbour.
	InvalidBigTilePlacement
	// InvalidDirection means two cells passed to propagation are not
	// collinear. Internal bug; not recoverable.
	InvalidDirection
	// TileNotFound means a lookup for an expected cell or catalogue entry
	// returned nothing. Internal bug; not recoverable.
	TileNotFound
	// TileUnavailable means the inventory for a tile id is exhausted.
	TileUnavailable
	// BacktrackFailed means the history was exhausted or the backtrack
	// budget exceeded. Terminal.
	BacktrackFailed
)

// String returns the string representation of a FailureKind.
func (k FailureKind) String() string {
	switch k {
	case NoSuperpositionOptions:
		return "no_superposition_options"
	case InvalidBigTilePlacement:
		return "invalid_big_tile_placement"
	case InvalidDirection:
		return "invalid_direction"
	case TileNotFound:
		return "tile_not_found"
	case TileUnavailable:
		return "tile_unavailable"
	case BacktrackFailed:
		return "backtrack_failed"
	default:
		return "unknown"
	}
}

// Failure is a solver failure reported as a value.
type Failure struct {
	Kind   FailureKind
	Cell   grid.Cell
	TileID catalog.TileID
	Reason string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Reason != "" {
		return fmt.Sprintf("wfc: %s at %v (tile %d): %s", f.Kind, f.Cell, f.TileID, f.Reason)
	}
	return fmt.Sprintf("wfc: %s at %v", f.Kind, f.Cell)
}

// recoverable reports whether the failure can be handled by backtracking.
func (f *Failure) recoverable() bool {
	switch f.Kind {
	case NoSuperpositionOptions, InvalidBigTilePlacement, TileUnavailable:
		return true
	default:
		return false
	}
}

// clearsOpenSteps reports whether the failure invalidates the remaining open
// steps. Stale steps after these failures would cascade into more failures.
func (f *Failure) clearsOpenSteps() bool {
	return f.Kind == NoSuperpositionOptions || f.Kind == InvalidBigTilePlacement
}
