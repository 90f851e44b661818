package server

import (
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/tilemap"
)

// editMessage is what clients send: an action name and a 1-indexed cell.
type editMessage struct {
	Action string `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Outbound event payloads. Clients must ignore event types and action kinds
// they do not recognise.

type actionPayload struct {
	Type  string `json:"type"`
	Sound string `json:"sound,omitempty"`
}

type actionsEventPayload struct {
	Type    string          `json:"type"`
	Actions []actionPayload `json:"actions"`
}

type tilePayload struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	ID       int    `json:"id"`
	State    string `json:"state"`
	Animated bool   `json:"animated,omitempty"`
}

type snapshotEventPayload struct {
	Type   string        `json:"type"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Tiles  []tilePayload `json:"tiles"`
}

type tickEventPayload struct {
	Type         string          `json:"type"`
	Actions      []actionPayload `json:"actions,omitempty"`
	Transitioned []cellPayload   `json:"transitioned,omitempty"`
	Emptied      []cellPayload   `json:"emptied,omitempty"`
}

type cellPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type errorEventPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorEvent(message string) errorEventPayload {
	return errorEventPayload{Type: "error", Message: message}
}

func actionsEvent(actions []tilemap.Action) actionsEventPayload {
	return actionsEventPayload{Type: "actions", Actions: actionPayloads(actions)}
}

func actionPayloads(actions []tilemap.Action) []actionPayload {
	out := make([]actionPayload, 0, len(actions))
	for _, action := range actions {
		switch a := action.(type) {
		case tilemap.PlayAudio:
			out = append(out, actionPayload{Type: "play_audio", Sound: a.Sound.String()})
		}
	}
	return out
}

func tickEvent(result tilemap.UpdateResult) tickEventPayload {
	return tickEventPayload{
		Type:         "tick",
		Actions:      actionPayloads(result.Actions),
		Transitioned: cellPayloads(result.TransitionedCells),
		Emptied:      cellPayloads(result.EmptiedCells),
	}
}

func cellPayloads(cells []grid.Cell) []cellPayload {
	out := make([]cellPayload, 0, len(cells))
	for _, c := range cells {
		out = append(out, cellPayload{X: c.X, Y: c.Y})
	}
	return out
}

// snapshotEvent renders the fixed tiles of the tilemap for clients.
func snapshotEvent(tm *tilemap.Tilemap) snapshotEventPayload {
	size := tm.Size()
	tiles := tilemap.FoldTiles(tm, func(acc []tilePayload, c grid.Cell, t tilemap.Tile) []tilePayload {
		if !t.IsFixed() {
			return acc
		}
		return append(acc, tilePayload{
			X:        c.X,
			Y:        c.Y,
			ID:       int(t.ID),
			State:    t.FSM.State().String(),
			Animated: t.Animated,
		})
	}, nil)

	return snapshotEventPayload{
		Type:   "snapshot",
		Width:  size.Width,
		Height: size.Height,
		Tiles:  tiles,
	}
}
