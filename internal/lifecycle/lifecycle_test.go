package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusShipped,
	StatusDelivered, StatusCancelled, StatusCompleted,
}

func TestB2CTransitions(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusShipped}:   true,
		{StatusPending, StatusCancelled}: true,
		{StatusShipped, StatusDelivered}: true,
	}

	// Everything outside the fixed table must be rejected, including
	// "later" states reached by skipping and any move out of a terminal
	// state.
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanB2C(from, to)
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, got, "b2c %s -> %s", from, to)
		}
	}
}

func TestB2BTransitions(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusShipped}:   true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusShipped, StatusDelivered}:   true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			got := CanB2B(from, to)
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, got, "b2b %s -> %s", from, to)
		}
	}
}

func TestNoSkippingStates(t *testing.T) {
	// A B2B order may not jump straight to shipped or delivered even though
	// both are "later" than pending.
	assert.False(t, CanB2B(StatusPending, StatusShipped))
	assert.False(t, CanB2B(StatusPending, StatusDelivered))
	assert.False(t, CanB2C(StatusPending, StatusDelivered))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, TerminalB2C(StatusDelivered))
	assert.True(t, TerminalB2C(StatusCancelled))
	assert.False(t, TerminalB2C(StatusPending))
	assert.False(t, TerminalB2C(StatusShipped))

	assert.True(t, TerminalB2B(StatusDelivered))
	assert.True(t, TerminalB2B(StatusCancelled))
	assert.True(t, TerminalB2B(StatusCompleted))
	assert.False(t, TerminalB2B(StatusConfirmed))
}

func TestRevenueEligibility(t *testing.T) {
	// Cash on delivery: money exists only once delivered.
	assert.True(t, RevenueEligibleB2C(StatusDelivered))
	assert.False(t, RevenueEligibleB2C(StatusPending))
	assert.False(t, RevenueEligibleB2C(StatusShipped))
	assert.False(t, RevenueEligibleB2C(StatusCancelled))

	// Business orders: invoiced at shipment, plus the legacy completed alias.
	assert.True(t, RevenueEligibleB2B(StatusShipped))
	assert.True(t, RevenueEligibleB2B(StatusDelivered))
	assert.True(t, RevenueEligibleB2B(StatusCompleted))
	assert.False(t, RevenueEligibleB2B(StatusPending))
	assert.False(t, RevenueEligibleB2B(StatusConfirmed))
	assert.False(t, RevenueEligibleB2B(StatusCancelled))

	assert.ElementsMatch(t,
		[]Status{StatusShipped, StatusDelivered, StatusCompleted},
		RevenueStatusesB2B())
}

func TestParse(t *testing.T) {
	for _, s := range allStatuses {
		parsed, err := Parse(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := Parse("returned")
	require.Error(t, err)
}
