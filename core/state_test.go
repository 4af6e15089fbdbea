package core

import "testing"

func TestTaskState_Valid(t *testing.T) {
	for _, s := range []TaskState{
		TaskStateSubmitted, TaskStateWorking, TaskStateCompleted,
		TaskStateFailed, TaskStateCancelled, TaskStateInputRequired,
	} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if TaskState("running").Valid() {
		t.Error("unknown state should not be valid")
	}
}

func TestTaskState_Terminal(t *testing.T) {
	terminal := map[TaskState]bool{
		TaskStateSubmitted:     false,
		TaskStateWorking:       false,
		TaskStateInputRequired: false,
		TaskStateCompleted:     true,
		TaskStateFailed:        true,
		TaskStateCancelled:     true,
	}
	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestTaskState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TaskState
		want     bool
	}{
		{TaskStateSubmitted, TaskStateWorking, true},
		{TaskStateSubmitted, TaskStateCancelled, true},
		{TaskStateWorking, TaskStateCompleted, true},
		{TaskStateWorking, TaskStateFailed, true},
		{TaskStateWorking, TaskStateCancelled, true},

		// Terminal states accept nothing.
		{TaskStateCompleted, TaskStateFailed, false},
		{TaskStateCompleted, TaskStateCancelled, false},
		{TaskStateCancelled, TaskStateCompleted, false},
		{TaskStateCancelled, TaskStateFailed, false},
		{TaskStateFailed, TaskStateWorking, false},

		// No skipping or going backwards.
		{TaskStateSubmitted, TaskStateCompleted, false},
		{TaskStateSubmitted, TaskStateFailed, false},
		{TaskStateWorking, TaskStateSubmitted, false},
		{TaskStateCompleted, TaskStateCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
