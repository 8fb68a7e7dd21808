package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusPreparing))
	assert.True(t, StatusPreparing.CanTransitionTo(StatusOnWay))
	assert.True(t, StatusOnWay.CanTransitionTo(StatusDelivered))

	// cancelled reachable from any non-terminal state
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusOnWay} {
		assert.True(t, s.CanTransitionTo(StatusCancelled), string(s))
	}

	// terminal states admit nothing new
	for _, s := range []Status{StatusDelivered, StatusCancelled} {
		for _, next := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusOnWay} {
			assert.False(t, s.CanTransitionTo(next), "%s -> %s", s, next)
		}
	}
	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))

	// no skipping ahead or moving backwards
	assert.False(t, StatusPending.CanTransitionTo(StatusPreparing))
	assert.False(t, StatusPending.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusOnWay.CanTransitionTo(StatusPending))

	// self-transitions are idempotent no-ops
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusCancelled.CanTransitionTo(StatusCancelled))

	// enum membership
	assert.False(t, StatusPending.CanTransitionTo(Status("shipped")))
	assert.False(t, ValidStatus(Status("shipped")))
	assert.True(t, ValidStatus(StatusOnWay))
}
