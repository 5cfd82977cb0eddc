package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, title string) *WorkItem {
	return &WorkItem{ID: id, Title: title, Status: StatusQueued}
}

func TestRegistry_CreateOnFirstTouch(t *testing.T) {
	registry := NewRegistry()

	entry := registry.Get("s1")
	require.NotNil(t, entry)
	assert.Same(t, entry, registry.Get("s1"), "same entry on repeat access")

	state := entry.Snapshot()
	assert.Empty(t, state.Deferred)
	assert.Empty(t, state.Parallel)
}

func TestRegistry_Evict(t *testing.T) {
	registry := NewRegistry()

	entry := registry.Get("s1")
	entry.Update(func(s *State) {
		s.PushDeferred(item("a:1", "a"))
	})

	registry.Evict("s1")

	fresh := registry.Get("s1")
	assert.NotSame(t, entry, fresh)
	assert.Empty(t, fresh.Snapshot().Deferred)
}

func TestState_PushDeferred_MoveToFront(t *testing.T) {
	var state State
	state.PushDeferred(item("a:1", "first"))
	state.PushDeferred(item("b:2", "second"))
	state.PushDeferred(item("a:1", "first again"))

	require.Len(t, state.Deferred, 2)
	assert.Equal(t, "a:1", state.Deferred[0].ID)
	assert.Equal(t, "first again", state.Deferred[0].Title)
	assert.Equal(t, "b:2", state.Deferred[1].ID)
}

func TestState_QueuesCappedAtCapacity(t *testing.T) {
	var state State
	for i := 0; i < queueCapacity+5; i++ {
		state.PushDeferred(item(fmt.Sprintf("d:%02d", i), ""))
		state.PushParallel(item(fmt.Sprintf("p:%02d", i), ""))
	}

	require.Len(t, state.Deferred, queueCapacity)
	require.Len(t, state.Parallel, queueCapacity)
	assert.Equal(t, fmt.Sprintf("d:%02d", queueCapacity+4), state.Deferred[0].ID)
	assert.Equal(t, fmt.Sprintf("d:%02d", 5), state.Deferred[queueCapacity-1].ID)
}

func TestState_Clear(t *testing.T) {
	var state State
	state.PushDeferred(item("a:1", ""))
	state.PushParallel(item("b:2", ""))

	state.Clear()

	assert.Empty(t, state.Deferred)
	assert.Empty(t, state.Parallel)
}

func TestEntry_SnapshotIsCopy(t *testing.T) {
	registry := NewRegistry()
	entry := registry.Get("s1")
	entry.Update(func(s *State) {
		s.PushDeferred(item("a:1", "a"))
	})

	snapshot := entry.Snapshot()
	entry.Update(func(s *State) {
		s.PushDeferred(item("b:2", "b"))
	})

	require.Len(t, snapshot.Deferred, 1)
	assert.Equal(t, "a:1", snapshot.Deferred[0].ID)
}
