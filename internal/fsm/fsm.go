// Package fsm provides a small generic state machine engine. States and
// actions are plain values; the transition table is static data. Transitions
// are direct (taken on request), timed (fire after a fixed duration) or
// conditional (checked on every update).
package fsm

import (
	"errors"
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var ErrTransitionNotAllowed = errors.New("fsm: transition not allowed")

// TimedTransition fires once the accumulated elapsed time in a state reaches
// Duration (seconds).
type TimedTransition[S comparable] struct {
	To       S
	Duration float32
}

// ConditionalTransition fires on update as soon as When returns true.
type ConditionalTransition[S comparable] struct {
	To   S
	When func() bool
}

// StateSpec describes one state: the actions emitted when entering and
// leaving it, and the transitions available out of it.
type StateSpec[S comparable, A any] struct {
	OnEntry     []A
	OnExit      []A
	Timed       *TimedTransition[S]
	Conditional []ConditionalTransition[S]
	// DirectTo lists the states a direct transition may reach from here.
	DirectTo []S
}

// Machine is an immutable transition table shared by any number of
// instances.
type Machine[S comparable, A any] struct {
	states map[S]StateSpec[S, A]
}

// NewMachine builds a machine from a state table.
func NewMachine[S comparable, A any](states map[S]StateSpec[S, A]) *Machine[S, A] {
	return &Machine[S, A]{states: states}
}

// Instance is one running occupant of a machine.
type Instance[S comparable, A any] struct {
	machine *Machine[S, A]
	state   S
	timer   *gween.Tween
}

// Start creates an instance in the given initial state and returns its entry
// actions.
func (m *Machine[S, A]) Start(initial S) (*Instance[S, A], []A) {
	inst := &Instance[S, A]{machine: m}
	actions := inst.enter(initial)
	return inst, actions
}

// State returns the current state.
func (i *Instance[S, A]) State() S {
	return i.state
}

// enter moves the instance into a state, arming its timer if it has a timed
// transition, and returns the state's entry actions.
func (i *Instance[S, A]) enter(to S) []A {
	i.state = to
	spec := i.machine.states[to]
	if spec.Timed != nil {
		i.timer = gween.New(0, 1, spec.Timed.Duration, ease.Linear)
	} else {
		i.timer = nil
	}
	return append([]A(nil), spec.OnEntry...)
}

func (i *Instance[S, A]) exit() []A {
	spec := i.machine.states[i.state]
	return append([]A(nil), spec.OnExit...)
}

// CanTransitionTo reports whether a direct transition to the given state is
// allowed from the current state.
func (i *Instance[S, A]) CanTransitionTo(to S) bool {
	for _, allowed := range i.machine.states[i.state].DirectTo {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo performs a direct transition, returning the exit actions of
// the old state followed by the entry actions of the new one.
func (i *Instance[S, A]) TransitionTo(to S) ([]A, error) {
	if !i.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %v -> %v", ErrTransitionNotAllowed, i.state, to)
	}
	actions := i.exit()
	actions = append(actions, i.enter(to)...)
	return actions, nil
}

// Update advances the instance by dt seconds. Timed transitions fire when
// their duration has elapsed; conditional transitions fire as soon as their
// predicate holds. Returns whether the state changed and any actions
// emitted.
func (i *Instance[S, A]) Update(dt float32) (bool, []A) {
	spec := i.machine.states[i.state]

	for _, cond := range spec.Conditional {
		if cond.When != nil && cond.When() {
			actions := i.exit()
			actions = append(actions, i.enter(cond.To)...)
			return true, actions
		}
	}

	if spec.Timed != nil && i.timer != nil {
		if _, finished := i.timer.Update(dt); finished {
			to := spec.Timed.To
			actions := i.exit()
			actions = append(actions, i.enter(to)...)
			return true, actions
		}
	}

	return false, nil
}
