package fsm

import "testing"

type testState int

const (
	stateIdle testState = iota
	stateWorking
	stateDone
	stateAborted
)

func testMachine() *Machine[testState, string] {
	return NewMachine(map[testState]StateSpec[testState, string]{
		stateIdle: {
			OnEntry:  []string{"enter_idle"},
			DirectTo: []testState{stateWorking},
		},
		stateWorking: {
			OnEntry:  []string{"enter_working"},
			OnExit:   []string{"exit_working"},
			Timed:    &TimedTransition[testState]{To: stateDone, Duration: 0.5},
			DirectTo: []testState{stateAborted},
		},
		stateDone:    {OnEntry: []string{"enter_done"}},
		stateAborted: {},
	})
}

func TestStartEmitsEntryActions(t *testing.T) {
	inst, actions := testMachine().Start(stateIdle)

	if got := inst.State(); got != stateIdle {
		t.Errorf("State() = %v, want idle", got)
	}
	if len(actions) != 1 || actions[0] != "enter_idle" {
		t.Errorf("entry actions = %v", actions)
	}
}

func TestDirectTransition(t *testing.T) {
	inst, _ := testMachine().Start(stateIdle)

	actions, err := inst.TransitionTo(stateWorking)
	if err != nil {
		t.Fatalf("TransitionTo(working) failed: %v", err)
	}
	if inst.State() != stateWorking {
		t.Errorf("State() = %v, want working", inst.State())
	}
	if len(actions) != 1 || actions[0] != "enter_working" {
		t.Errorf("actions = %v", actions)
	}
}

func TestDirectTransitionNotAllowed(t *testing.T) {
	inst, _ := testMachine().Start(stateIdle)

	if _, err := inst.TransitionTo(stateDone); err == nil {
		t.Error("idle -> done should not be allowed")
	}
	if inst.State() != stateIdle {
		t.Errorf("failed transition changed state to %v", inst.State())
	}
	if inst.CanTransitionTo(stateDone) {
		t.Error("CanTransitionTo(done) = true")
	}
	if !inst.CanTransitionTo(stateWorking) {
		t.Error("CanTransitionTo(working) = false")
	}
}

func TestTimedTransition(t *testing.T) {
	inst, _ := testMachine().Start(stateWorking)

	// Not enough elapsed time yet.
	changed, actions := inst.Update(0.3)
	if changed {
		t.Fatal("transition fired early")
	}
	if len(actions) != 0 {
		t.Errorf("early actions = %v", actions)
	}

	changed, actions = inst.Update(0.3)
	if !changed {
		t.Fatal("transition did not fire after full duration")
	}
	if inst.State() != stateDone {
		t.Errorf("State() = %v, want done", inst.State())
	}
	want := []string{"exit_working", "enter_done"}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("actions[%d] = %q, want %q", i, actions[i], want[i])
		}
	}
}

func TestTimedTransitionExactBoundary(t *testing.T) {
	inst, _ := testMachine().Start(stateWorking)

	if changed, _ := inst.Update(0.5); !changed {
		t.Error("transition should fire exactly at the configured duration")
	}
}

func TestUpdateInTerminalState(t *testing.T) {
	inst, _ := testMachine().Start(stateDone)

	changed, actions := inst.Update(10)
	if changed || len(actions) != 0 {
		t.Errorf("terminal state update = %v, %v", changed, actions)
	}
}

func TestConditionalTransition(t *testing.T) {
	ready := false
	machine := NewMachine(map[testState]StateSpec[testState, string]{
		stateIdle: {
			Conditional: []ConditionalTransition[testState]{
				{To: stateDone, When: func() bool { return ready }},
			},
		},
		stateDone: {OnEntry: []string{"enter_done"}},
	})
	inst, _ := machine.Start(stateIdle)

	if changed, _ := inst.Update(1); changed {
		t.Fatal("conditional fired before predicate held")
	}

	ready = true
	changed, actions := inst.Update(0)
	if !changed || inst.State() != stateDone {
		t.Fatalf("conditional did not fire: state %v", inst.State())
	}
	if len(actions) != 1 || actions[0] != "enter_done" {
		t.Errorf("actions = %v", actions)
	}
}
