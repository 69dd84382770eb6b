package helper

import (
	"testing"

	"backend-hms/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		valid bool
	}{
		{"waiting", "in-consultation", true},
		{"waiting", "cancelled", true},
		{"waiting", "completed", false},
		{"in-consultation", "completed", true},
		{"in-consultation", "cancelled", false},
		{"in-consultation", "waiting", false},
		{"completed", "waiting", false},
		{"completed", "in-consultation", false},
		{"completed", "cancelled", false},
		{"cancelled", "waiting", false},
		{"cancelled", "completed", false},
		{"unknown", "waiting", false},
		{"waiting", "unknown", false},
	}

	for _, tt := range cases {
		if got := CanTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("CanTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestCanTransitionSameStateIsIdempotent(t *testing.T) {
	for _, status := range []string{
		models.StatusWaiting,
		models.StatusInConsultation,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		assert.True(t, CanTransition(status, status), "same-state %q should be a no-op", status)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(models.StatusWaiting))
	assert.False(t, IsTerminal(models.StatusInConsultation))
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal("unknown"))
}
