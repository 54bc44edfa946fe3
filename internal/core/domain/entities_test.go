package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	// Allowed edges of the state machine
	assert.True(t, CanTransition(StatusPending, StatusAccepted))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusAccepted, StatusCompleted))
	assert.True(t, CanTransition(StatusAccepted, StatusCancelled))

	// pending cannot skip straight to completed
	assert.False(t, CanTransition(StatusPending, StatusCompleted))

	// Terminal states have no outgoing transitions
	for _, from := range []RequestStatus{StatusCompleted, StatusCancelled} {
		for _, to := range []RequestStatus{StatusPending, StatusAccepted, StatusCompleted, StatusCancelled} {
			assert.False(t, CanTransition(from, to), "%s → %s should be rejected", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAccepted.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("PATIENT"))
	assert.True(t, IsValidRole("DONOR"))
	assert.True(t, IsValidRole("HOSPITAL"))

	// Admin is never self-assigned
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("patient"))
	assert.False(t, IsValidRole(""))
}

func TestIsValidKind(t *testing.T) {
	assert.True(t, IsValidKind("normal"))
	assert.True(t, IsValidKind("emergency"))
	assert.False(t, IsValidKind("urgent"))
	assert.False(t, IsValidKind(""))
}
