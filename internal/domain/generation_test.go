package domain_test

import (
	"testing"
	"time"

	"server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := domain.Generation{ID: "g1", Status: domain.StatusPending}

	got, err := domain.Transition(g, domain.Event{Kind: domain.EventStart}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	assert.Equal(t, now, got.StartedAt)
	assert.True(t, got.CompletedAt.IsZero())

	// the input snapshot is untouched
	assert.Equal(t, domain.StatusPending, g.Status)
}

func TestTransitionCompleteDerivesProcessingTime(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	done := started.Add(2500 * time.Millisecond)
	g := domain.Generation{ID: "g1", Status: domain.StatusProcessing, StartedAt: started}

	got, err := domain.Transition(g, domain.Event{Kind: domain.EventComplete}, done)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, done, got.CompletedAt)
	assert.InDelta(t, 2.5, got.ProcessingTime, 1e-9)
}

func TestTransitionCompleteWithoutStartLeavesProcessingTimeUnset(t *testing.T) {
	t.Parallel()

	g := domain.Generation{ID: "g1", Status: domain.StatusPending}
	got, err := domain.Transition(g, domain.Event{Kind: domain.EventComplete}, time.Now())
	require.NoError(t, err)
	assert.Zero(t, got.ProcessingTime)
}

func TestTransitionFailRequiresMessage(t *testing.T) {
	t.Parallel()

	g := domain.Generation{ID: "g1", Status: domain.StatusProcessing}
	_, err := domain.Transition(g, domain.Event{Kind: domain.EventFail}, time.Now())
	require.Error(t, err)

	got, err := domain.Transition(g, domain.Event{Kind: domain.EventFail, ErrorMessage: "vendor exploded"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "vendor exploded", got.ErrorMessage)
	assert.False(t, got.CompletedAt.IsZero())
}

func TestTransitionNeverLeavesTerminalStates(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.Status{domain.StatusCompleted, domain.StatusFailed} {
		g := domain.Generation{ID: "g1", Status: status, CompletedAt: time.Now()}
		for _, kind := range []domain.EventKind{domain.EventStart, domain.EventComplete, domain.EventFail} {
			_, err := domain.Transition(g, domain.Event{Kind: kind, ErrorMessage: "x"}, time.Now())
			assert.Error(t, err, "status %s event %s", status, kind)
		}
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := domain.NewError(domain.KindFileSizeExceeded, "too big", "")
	assert.Equal(t, domain.KindFileSizeExceeded, domain.KindOf(err))
	assert.Equal(t, domain.KindInternal, domain.KindOf(assert.AnError))
}
