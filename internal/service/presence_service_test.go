package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employee-portal/internal/model"
)

func TestHeartbeatRecordsRow(t *testing.T) {
	store := &fakePresenceStore{}
	svc := NewPresenceService(store, nil)

	svc.Heartbeat(context.Background(), "u-1", "/dashboard", "test-agent")

	require.Equal(t, 1, store.count())
	recent, err := svc.Recent(context.Background(), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "u-1", recent[0].UserID)
	assert.Equal(t, "/dashboard", recent[0].Page)
}

func TestHeartbeatSwallowsStorageFailure(t *testing.T) {
	store := &fakePresenceStore{failAll: model.ErrStorageUnavailable}
	svc := NewPresenceService(store, nil)

	// Must not panic or propagate: presence is fire-and-forget.
	svc.Heartbeat(context.Background(), "u-1", "/dashboard", "")
	assert.Equal(t, 0, store.count())
}

func TestPresenceRuntimeLifecycle(t *testing.T) {
	store := &fakePresenceStore{}
	svc := NewPresenceService(store, nil)
	runtime := NewPresenceRuntime(svc, 10*time.Millisecond)

	runtime.Track("u-1")
	runtime.Track("u-1") // second tab
	runtime.Start(context.Background())

	assert.Eventually(t, func() bool {
		return store.count() >= 2
	}, time.Second, 5*time.Millisecond)

	runtime.Stop()
	after := store.count()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, store.count(), "no ticks after stop")

	// Stop is idempotent.
	runtime.Stop()
}

func TestPresenceRuntimeUntrack(t *testing.T) {
	store := &fakePresenceStore{}
	svc := NewPresenceService(store, nil)
	runtime := NewPresenceRuntime(svc, 10*time.Millisecond)

	runtime.Track("u-1")
	runtime.Track("u-1")
	runtime.Untrack("u-1")

	runtime.Start(context.Background())
	defer runtime.Stop()

	// One reference remains, so the subject is still tracked.
	assert.Eventually(t, func() bool {
		return store.count() >= 1
	}, time.Second, 5*time.Millisecond)

	runtime.Untrack("u-1")
	runtime.Untrack("u-1") // dropping below zero is a no-op
}
