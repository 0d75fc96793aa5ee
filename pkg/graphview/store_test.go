package graphview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPayload_LastRequestWins(t *testing.T) {
	store := NewStore()
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	older := payloadOfSize(3, t0)
	newer := payloadOfSize(5, t0.Add(time.Second))

	// Responses arrive out of order: the newer payload lands first.
	assert.True(t, store.ApplyPayload(newer))
	assert.False(t, store.ApplyPayload(older), "older payload must be discarded")
	assert.Equal(t, 5, len(store.Payload().Nodes))

	// Same generation time is also stale.
	assert.False(t, store.ApplyPayload(payloadOfSize(7, t0.Add(time.Second))))
	assert.Equal(t, 5, len(store.Payload().Nodes))
}

func TestApplyPayload_ResetsPartition(t *testing.T) {
	store := NewStore()
	t0 := time.Now()

	require.True(t, store.ApplyPayload(payloadOfSize(3, t0)))
	store.SetPartition(Partition{VisibleNodes: []string{"n0"}})
	require.NotEmpty(t, store.Partition().VisibleNodes)

	require.True(t, store.ApplyPayload(payloadOfSize(4, t0.Add(time.Second))))
	assert.Empty(t, store.Partition().VisibleNodes,
		"a new payload invalidates the previous visibility partition")
}

func TestSubscribe_DeliversEvents(t *testing.T) {
	store := NewStore()

	var events []EventKind
	unsubscribe := store.Subscribe(func(e Event) {
		events = append(events, e.Kind)
	})

	store.ApplyPayload(payloadOfSize(2, time.Now()))
	store.SetMode(ModeUltra)
	store.SetViewport(Bounds{MaxX: 100})
	store.SetPartition(Partition{})
	store.SetMetrics(RenderMetrics{FrameRate: 60})

	assert.Equal(t, []EventKind{EventPayload, EventMode, EventViewport, EventVisibility, EventMetrics}, events)

	unsubscribe()
	store.SetMode(ModeStandard)
	assert.Len(t, events, 5, "unsubscribed observers receive nothing")
}

func TestSetMode_NotifiesOnlyOnChange(t *testing.T) {
	store := NewStore()

	count := 0
	store.Subscribe(func(e Event) {
		if e.Kind == EventMode {
			count++
		}
	})

	store.SetMode(ModeHighPerformance)
	store.SetMode(ModeHighPerformance)
	assert.Equal(t, 1, count)
}

func TestStore_StateAccessors(t *testing.T) {
	store := NewStore()

	assert.Nil(t, store.Payload())
	assert.Equal(t, ModeStandard, store.Mode())

	b := Bounds{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4, Zoom: 1.5}
	store.SetViewport(b)
	assert.Equal(t, b, store.Viewport())

	m := RenderMetrics{FrameRate: 42, VisibleNodes: 7}
	store.SetMetrics(m)
	assert.Equal(t, m, store.Metrics())
}
