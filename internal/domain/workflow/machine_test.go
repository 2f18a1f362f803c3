package workflow

import (
	"context"
	"errors"
	"testing"
)

type guardKey struct{}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, false},
		{StateApproved, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"approved", StateApproved, true},
		{"upper case", State("PENDING"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Status(t *testing.T) {
	if got := StateRejected.Status(); got.String() != "rejected" {
		t.Errorf("State.Status() = %v, want rejected", got)
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StatePending)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	if config2 := builder.Configure(StatePending); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildRejectsInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	machine, err := builder.Build(State("archived"))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Build() error = %v, want %v", err, ErrInvalidState)
	}
	if machine != nil {
		t.Error("Build() should not return a machine for an invalid state")
	}
}

func TestStateConfiguration_PermitPanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	builder.Configure(StatePending).Permit(TriggerApprove, State("INVALID"))
}

func TestStateMachine_Fire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	machine, err := builder.Build(StatePending)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if !machine.CanFire(TriggerApprove) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	if err := machine.Fire(context.Background(), TriggerApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateApproved)
	}
}

func TestStateMachine_TerminalStatesRefuseTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	for _, state := range []State{StateApproved, StateRejected} {
		machine, err := builder.Build(state)
		if err != nil {
			t.Fatalf("Build(%s) failed: %v", state, err)
		}

		for _, trigger := range []Trigger{TriggerApprove, TriggerReject} {
			err := machine.Fire(context.Background(), trigger)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(%s) from %s error = %v, want %v", trigger, state, err, ErrInvalidTransition)
			}
			if machine.State() != state {
				t.Errorf("State should remain %v after failed Fire(), got %v", state, machine.State())
			}
		}

		if triggers := machine.PermittedTriggers(); len(triggers) != 0 {
			t.Errorf("terminal state %s has %d permitted triggers, want 0", state, len(triggers))
		}
	}
}

func TestStateConfiguration_PermitIf(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		PermitIf(TriggerApprove, StateApproved, func(ctx context.Context) bool {
			allowed, _ := ctx.Value(guardKey{}).(bool)
			return allowed
		})

	t.Run("guard passes", func(t *testing.T) {
		machine, _ := builder.Build(StatePending)
		ctx := context.WithValue(context.Background(), guardKey{}, true)

		if err := machine.Fire(ctx, TriggerApprove); err != nil {
			t.Errorf("Fire() failed: %v", err)
		}
		if machine.State() != StateApproved {
			t.Errorf("State after Fire() = %v, want %v", machine.State(), StateApproved)
		}
	})

	t.Run("guard fails", func(t *testing.T) {
		machine, _ := builder.Build(StatePending)

		err := machine.Fire(context.Background(), TriggerApprove)
		if !errors.Is(err, ErrGuardFailed) {
			t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
		}
		if machine.State() != StatePending {
			t.Errorf("State should remain %v after failed Fire(), got %v", StatePending, machine.State())
		}
	})
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	machine, _ := NewBuilder().Build(StatePending)

	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerApprove, StateApproved)

	machine, _ := builder.Build(StatePending)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 2 || triggers[0] != TriggerApprove || triggers[1] != TriggerReject {
		t.Errorf("PermittedTriggers() = %v, want [APPROVE REJECT]", triggers)
	}
}

func TestStateMachine_Independence(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved)

	machine1, _ := builder.Build(StatePending)
	machine2, _ := builder.Build(StatePending)

	if err := machine1.Fire(context.Background(), TriggerApprove); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine2.State() != StatePending {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), StatePending)
	}
}
