package graphview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngineFixture(t *testing.T, opts ...EngineOption) (*Engine, *fakeRenderer, *manualScheduler) {
	t.Helper()

	renderer := &fakeRenderer{}
	engine := NewEngine(renderer, nil, opts...)

	sched := &manualScheduler{}
	engine.culler.schedule = sched.schedule

	return engine, renderer, sched
}

func TestEngine_LoadStandard(t *testing.T) {
	engine, renderer, sched := newEngineFixture(t)

	applied, err := engine.Load(context.Background(), payloadOfSize(50, time.Now()))
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, ModeStandard, engine.Store().Mode())

	styles := renderer.styleCalls()
	require.Len(t, styles, 1)
	assert.Equal(t, EffectsFull, styles[0].Effects)

	// Standard mode loads in a single pass and never culls.
	batches := renderer.batchCalls()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].nodes, 50)

	engine.SetViewport(Bounds{MaxX: 100, MaxY: 100})
	assert.Zero(t, sched.pendingCount(), "viewport ticks are ignored while culling is off")
}

func TestEngine_LoadHighPerformance(t *testing.T) {
	engine, renderer, sched := newEngineFixture(t)

	applied, err := engine.Load(context.Background(), payloadOfSize(600, time.Now()))
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, ModeHighPerformance, engine.Store().Mode())

	styles := renderer.styleCalls()
	require.Len(t, styles, 1)
	assert.Equal(t, EffectsReduced, styles[0].Effects)

	// Still a single insert pass; lazy loading is Ultra-only.
	require.Len(t, renderer.batchCalls(), 1)

	// Culling is live: a viewport tick schedules a pass.
	engine.SetViewport(Bounds{MaxX: 100, MaxY: 100})
	assert.Positive(t, sched.pendingCount())
}

func TestEngine_LoadUltraBatches(t *testing.T) {
	engine, renderer, _ := newEngineFixture(t)

	applied, err := engine.Load(context.Background(), payloadOfSize(1000, time.Now()))
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, ModeUltra, engine.Store().Mode())
	assert.Len(t, renderer.batchCalls(), 10)
	assert.Equal(t, 1000, renderer.insertedNodes())

	styles := renderer.styleCalls()
	require.Len(t, styles, 1)
	assert.Equal(t, EffectsMinimal, styles[0].Effects)
}

func TestEngine_LoadDiscardsStalePayload(t *testing.T) {
	engine, renderer, _ := newEngineFixture(t)
	t0 := time.Now()

	applied, err := engine.Load(context.Background(), payloadOfSize(50, t0.Add(time.Second)))
	require.NoError(t, err)
	require.True(t, applied)
	insertsAfterFirst := len(renderer.batchCalls())

	// The response for an earlier request arrives late.
	applied, err = engine.Load(context.Background(), payloadOfSize(200, t0))
	require.NoError(t, err)
	assert.False(t, applied)

	assert.Len(t, renderer.batchCalls(), insertsAfterFirst, "stale payload must not touch the renderer")
	assert.Equal(t, 50, len(engine.Store().Payload().Nodes))
}

func TestEngine_CustomThresholds(t *testing.T) {
	engine, _, _ := newEngineFixture(t, WithThresholds(Thresholds{HighPerformance: 10, Ultra: 20}))

	applied, err := engine.Load(context.Background(), payloadOfSize(15, time.Now()))
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, ModeHighPerformance, engine.Store().Mode())
}

func recordLowFrameRate(engine *Engine, start time.Time) {
	for i := 0; i < frameSampleWindow; i++ {
		engine.RecordFrame(start.Add(time.Duration(i) * 100 * time.Millisecond))
	}
}

func TestEngine_AdaptiveDegradationOptIn(t *testing.T) {
	engine, renderer, _ := newEngineFixture(t, WithAdaptiveDegradation())

	applied, err := engine.Load(context.Background(), payloadOfSize(50, time.Now()))
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, ModeStandard, engine.Store().Mode())

	// A full window of 10 fps frames steps the mode down once.
	recordLowFrameRate(engine, time.Now())
	assert.Equal(t, ModeHighPerformance, engine.Store().Mode())

	styles := renderer.styleCalls()
	assert.Equal(t, EffectsReduced, styles[len(styles)-1].Effects)

	// One degradation per payload: continued low frame rate does not
	// cascade further down.
	recordLowFrameRate(engine, time.Now().Add(time.Minute))
	assert.Equal(t, ModeHighPerformance, engine.Store().Mode())
}

func TestEngine_NoDegradationWithoutOptIn(t *testing.T) {
	engine, _, _ := newEngineFixture(t)

	applied, err := engine.Load(context.Background(), payloadOfSize(50, time.Now()))
	require.NoError(t, err)
	require.True(t, applied)

	recordLowFrameRate(engine, time.Now())
	assert.Equal(t, ModeStandard, engine.Store().Mode(),
		"the engine never changes fidelity unless asked to")
}

func TestEngine_DegradationNeverUpgrades(t *testing.T) {
	engine, _, _ := newEngineFixture(t, WithAdaptiveDegradation())

	applied, err := engine.Load(context.Background(), payloadOfSize(1200, time.Now()))
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, ModeUltra, engine.Store().Mode())

	// Ultra is the floor: sustained low frame rate changes nothing, and a
	// healthy frame rate never steps back up.
	recordLowFrameRate(engine, time.Now())
	assert.Equal(t, ModeUltra, engine.Store().Mode())
}

func TestEngine_MetricsPublishesSnapshot(t *testing.T) {
	engine, _, _ := newEngineFixture(t)

	applied, err := engine.Load(context.Background(), payloadOfSize(50, time.Now()))
	require.NoError(t, err)
	require.True(t, applied)

	engine.Store().SetPartition(Partition{
		VisibleNodes: []string{"n0", "n1"},
		VisibleEdges: []string{"e1"},
	})
	engine.RecordRender(10 * time.Millisecond)

	m := engine.Metrics()
	assert.Equal(t, 2, m.VisibleNodes)
	assert.Equal(t, 1, m.VisibleEdges)
	assert.InDelta(t, 10.0, m.LastRenderMs, 0.0001)
	assert.Equal(t, m, engine.Store().Metrics())
}
