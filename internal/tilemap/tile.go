// Package tilemap implements the tilemap data model: a dense grid of tiles,
// each carrying a tile state (uninitialised, superposition or fixed) and a
// per-tile lifecycle state machine driving build and removal animations.
package tilemap

import (
	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/fsm"
)

// TileState is a node of the per-tile lifecycle machine.
type TileState int

const (
	StateInitialized TileState = iota
	StateConstructing
	StateGenerated
	StateBuilt
	StateChanging
	StateRemoving
	StateRemoved
)

// String returns the string representation of a TileState.
func (s TileState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateConstructing:
		return "constructing"
	case StateGenerated:
		return "generated"
	case StateBuilt:
		return "built"
	case StateChanging:
		return "changing"
	case StateRemoving:
		return "removing"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Sound names an audio cue requested by the core.
type Sound int

const (
	SoundBuildRoadStart Sound = iota
	SoundBuildRoadEnd
	SoundDestroyRoad
)

// String returns the string representation of a Sound.
func (s Sound) String() string {
	switch s {
	case SoundBuildRoadStart:
		return "build_road_start"
	case SoundBuildRoadEnd:
		return "build_road_end"
	case SoundDestroyRoad:
		return "destroy_road"
	default:
		return "unknown"
	}
}

// Action is an event emitted by the core for external collaborators.
// Consumers must ignore actions they do not recognise.
type Action interface {
	isAction()
}

// PlayAudio asks the audio collaborator to play a sound.
type PlayAudio struct {
	Sound Sound
}

func (PlayAudio) isAction() {}

// Lifecycle timer durations in seconds.
const (
	constructingDuration = 0.25
	generatedDuration    = 0.125
	removingDuration     = 0.25
)

// lifecycle is the shared per-tile state machine. Constructing emits the
// build-start cue on entry and the build-end cue when its timer completes;
// the exit action is safe because the only way out of Constructing is the
// timer transition into Built.
var lifecycle = fsm.NewMachine(map[TileState]fsm.StateSpec[TileState, Action]{
	StateInitialized: {
		DirectTo: []TileState{StateConstructing, StateGenerated},
	},
	StateConstructing: {
		OnEntry: []Action{PlayAudio{Sound: SoundBuildRoadStart}},
		OnExit:  []Action{PlayAudio{Sound: SoundBuildRoadEnd}},
		Timed:   &fsm.TimedTransition[TileState]{To: StateBuilt, Duration: constructingDuration},
	},
	StateGenerated: {
		Timed: &fsm.TimedTransition[TileState]{To: StateBuilt, Duration: generatedDuration},
	},
	StateBuilt: {
		DirectTo: []TileState{StateChanging, StateRemoving},
	},
	StateChanging: {
		DirectTo: []TileState{StateBuilt, StateRemoving},
	},
	StateRemoving: {
		OnEntry: []Action{PlayAudio{Sound: SoundDestroyRoad}},
		Timed:   &fsm.TimedTransition[TileState]{To: StateRemoved, Duration: removingDuration},
	},
	StateRemoved: {},
})

// TileKind tags what a cell currently holds.
type TileKind int

const (
	KindUninitialized TileKind = iota
	KindSuperposition
	KindFixed
)

// ParentTile links a fixed subcell to the large tile instance it belongs to.
type ParentTile struct {
	LargeID  catalog.TileID
	SubIndex int
}

// Tile is the content of one cell.
type Tile struct {
	Kind TileKind
	// Options is the set of still-possible variant ids while Kind is
	// KindSuperposition.
	Options []catalog.TileID
	// ID is the committed variant id while Kind is KindFixed.
	ID catalog.TileID
	// Parent is set iff the cell is a subcell of a placed large tile.
	Parent *ParentTile
	// Animated marks the tile as carrying a placement animation; cleared
	// when its animation timer drains.
	Animated bool
	FSM      *fsm.Instance[TileState, Action]
}

// NewUninitialized returns an empty tile with a fresh lifecycle instance.
func NewUninitialized() Tile {
	inst, _ := lifecycle.Start(StateInitialized)
	return Tile{Kind: KindUninitialized, FSM: inst}
}

// NewSuperposition returns a tile holding the given options.
func NewSuperposition(options []catalog.TileID) Tile {
	inst, _ := lifecycle.Start(StateInitialized)
	return Tile{
		Kind:    KindSuperposition,
		Options: append([]catalog.TileID(nil), options...),
		FSM:     inst,
	}
}

// NewFixed returns a committed tile whose lifecycle starts in the given
// state, together with the state's entry actions.
func NewFixed(id catalog.TileID, parent *ParentTile, initial TileState) (Tile, []Action) {
	inst, actions := lifecycle.Start(initial)
	return Tile{Kind: KindFixed, ID: id, Parent: parent, FSM: inst}, actions
}

// IsFixed reports whether the tile is committed to a single variant.
func (t Tile) IsFixed() bool {
	return t.Kind == KindFixed
}

// IsSuperposition reports whether the tile is an uncommitted superposition,
// whatever the number of options it holds.
func (t Tile) IsSuperposition() bool {
	return t.Kind == KindSuperposition
}

// IsDynamic reports whether the tile is currently animating a build or a
// removal.
func (t Tile) IsDynamic() bool {
	state := t.FSM.State()
	return state == StateConstructing || state == StateRemoving
}

// attemptRemove requests a transition to Removing. If the current state
// forbids it the call is a no-op with no actions.
func (t *Tile) attemptRemove() []Action {
	if !t.FSM.CanTransitionTo(StateRemoving) {
		return nil
	}
	actions, err := t.FSM.TransitionTo(StateRemoving)
	if err != nil {
		return nil
	}
	return actions
}

// updateTileID swaps the committed variant id, passing through Changing so
// observers see a single atomic change.
func (t *Tile) updateTileID(id catalog.TileID) []Action {
	if !t.FSM.CanTransitionTo(StateChanging) {
		t.ID = id
		return nil
	}
	actions, _ := t.FSM.TransitionTo(StateChanging)
	t.ID = id
	more, _ := t.FSM.TransitionTo(StateBuilt)
	return append(actions, more...)
}
