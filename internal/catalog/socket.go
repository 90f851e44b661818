// Package catalog holds the static tile catalogue: tile variants described by
// their four edge sockets, the symmetric socket pairings table, and the
// neighbour-bitmask lookup tables used to pick base road variants.
package catalog

import (
	"fmt"

	"github.com/citysketch/citysketch/internal/grid"
)

// Socket is a compatibility marker on one of a tile's four edges. Two tiles
// may sit next to each other iff their facing sockets are paired.
type Socket int

const (
	// DefaultSocket matches map edges and uninitialised neighbours.
	DefaultSocket Socket = iota
	RoadSocket
	GrassSocket
	ForestSocket
	ParkSocket
	WaterSocket
	PavementSocket
	LotEntrySocket
	LotDrivewaySocket
	LotLinkSocket
)

// String returns the string representation of a Socket.
func (s Socket) String() string {
	switch s {
	case DefaultSocket:
		return "default"
	case RoadSocket:
		return "road"
	case GrassSocket:
		return "grass"
	case ForestSocket:
		return "forest"
	case ParkSocket:
		return "park"
	case WaterSocket:
		return "water"
	case PavementSocket:
		return "pavement"
	case LotEntrySocket:
		return "lot_entry"
	case LotDrivewaySocket:
		return "lot_driveway"
	case LotLinkSocket:
		return "lot_link"
	default:
		return "unknown"
	}
}

// ParseSocket converts a socket name (as used in catalogue YAML) to a Socket.
func ParseSocket(name string) (Socket, error) {
	for s := DefaultSocket; s <= LotLinkSocket; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return DefaultSocket, fmt.Errorf("catalog: unknown socket %q", name)
}

// pairings defines which sockets can dock against each other. Entries are
// stored symmetrically via addPairing.
var pairings = map[Socket]map[Socket]bool{}

func addPairing(a, b Socket) {
	if pairings[a] == nil {
		pairings[a] = make(map[Socket]bool)
	}
	if pairings[b] == nil {
		pairings[b] = make(map[Socket]bool)
	}
	pairings[a][b] = true
	pairings[b][a] = true
}

func init() {
	addPairing(DefaultSocket, DefaultSocket)
	addPairing(DefaultSocket, GrassSocket)
	addPairing(RoadSocket, RoadSocket)
	addPairing(GrassSocket, GrassSocket)
	addPairing(GrassSocket, ForestSocket)
	addPairing(GrassSocket, ParkSocket)
	addPairing(GrassSocket, WaterSocket)
	addPairing(ForestSocket, ForestSocket)
	addPairing(ParkSocket, ParkSocket)
	addPairing(WaterSocket, WaterSocket)
	addPairing(PavementSocket, PavementSocket)
	addPairing(PavementSocket, GrassSocket)
	addPairing(LotEntrySocket, LotDrivewaySocket)
	addPairing(LotLinkSocket, LotLinkSocket)
}

// Compatible reports whether two sockets can dock against each other.
func Compatible(a, b Socket) bool {
	return pairings[a][b]
}

// PairingsForSocket returns the sockets that can dock against s, in socket
// declaration order.
func PairingsForSocket(s Socket) []Socket {
	var out []Socket
	for candidate := DefaultSocket; candidate <= LotLinkSocket; candidate++ {
		if pairings[s][candidate] {
			out = append(out, candidate)
		}
	}
	return out
}

// Sockets holds a tile's four edge sockets.
type Sockets struct {
	Top    Socket
	Right  Socket
	Bottom Socket
	Left   Socket
}

// ByDirection returns the socket on the edge facing the given direction.
func (s Sockets) ByDirection(dir grid.Direction) Socket {
	switch dir {
	case grid.Up:
		return s.Top
	case grid.Left:
		return s.Left
	case grid.Right:
		return s.Right
	default:
		return s.Bottom
	}
}

func uniformSockets(s Socket) Sockets {
	return Sockets{Top: s, Right: s, Bottom: s, Left: s}
}
