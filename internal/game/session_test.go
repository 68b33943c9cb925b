package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Kjarrigan/base-builder/internal/assets"
	"github.com/Kjarrigan/base-builder/internal/build"
	"github.com/Kjarrigan/base-builder/internal/eventbus"
	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/Kjarrigan/base-builder/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Width == 0 {
		opts.Width, opts.Height = 5, 5
	}
	s, err := NewSession(opts)
	require.NoError(t, err)
	return s
}

func variantsRow(g *world.Grid, y int) []world.VariantKey {
	out := make([]world.VariantKey, 0, g.Width())
	for x := 0; x < g.Width(); x++ {
		tile, _ := g.TileAt(x, y)
		out = append(out, tile.VariantKey())
	}
	return out
}

func TestNewSessionValidatesAssets(t *testing.T) {
	_, err := NewSession(Options{Width: 2, Height: 2, Assets: assets.NewIndex(0, 0)})
	assert.ErrorIs(t, err, assets.ErrUnresolvedVariant)

	_, err = NewSession(Options{Width: 0, Height: 2})
	assert.Error(t, err)
}

func TestSessionLayers(t *testing.T) {
	s := newTestSession(t, Options{})
	layers := s.Stack().Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, world.BaseLayerName, layers[0].Name)
	assert.Equal(t, StagingLayerName, layers[1].Name)
	assert.Equal(t, block.Blank, s.Staging().Default)
	assert.Equal(t, StagingAttributes, s.Staging().Attrs)
}

func TestStageBuildsWallLineAtPace(t *testing.T) {
	s := newTestSession(t, Options{Width: 3, Height: 1, DrainInterval: 50 * time.Millisecond})

	jobs, err := s.Stage(Rect{X1: 0, Y1: 0, X2: 64, Y2: 0}, block.Wall)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	staged := s.Staging().Grid
	assert.Equal(t, []world.VariantKey{"Wall_E", "Wall_E_W", "Wall_W"}, variantsRow(staged, 0))
	for x := 0; x < 3; x++ {
		tile, _ := staged.TileAt(x, 0)
		assert.True(t, tile.HasOverlay(PreviewOverlay))
	}

	t0 := time.Now()
	res, ok := s.Update(t0)
	require.True(t, ok)
	assert.Equal(t, build.JobCommitted, res.Job.State)

	_, ok = s.Update(t0.Add(10 * time.Millisecond))
	assert.False(t, ok, "no second commit inside the interval")

	_, ok = s.Update(t0.Add(50 * time.Millisecond))
	require.True(t, ok)
	_, ok = s.Update(t0.Add(100 * time.Millisecond))
	require.True(t, ok)
	_, ok = s.Update(t0.Add(150 * time.Millisecond))
	assert.False(t, ok, "queue drained")

	assert.Equal(t, []world.VariantKey{"Wall_E", "Wall_E_W", "Wall_W"}, variantsRow(s.Base().Grid, 0))
	assert.Equal(t, []world.VariantKey{"Blank", "Blank", "Blank"}, variantsRow(staged, 0))
	for x := 0; x < 3; x++ {
		tile, _ := staged.TileAt(x, 0)
		assert.Empty(t, tile.Overlays())
	}

	st := s.Stats()
	assert.Equal(t, uint64(5), st.Frames)
	assert.Equal(t, uint64(3), st.Enqueued)
	assert.Equal(t, uint64(3), st.Committed)
	assert.Zero(t, st.QueueDepth)
}

func TestCancelSupersedesJobs(t *testing.T) {
	s := newTestSession(t, Options{Width: 3, Height: 1, DrainInterval: time.Millisecond})

	_, err := s.Stage(Rect{X2: 64}, block.Floor)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Cancel(Rect{X1: 32, X2: 32}))
	assert.Zero(t, s.Cancel(Rect{X1: 32, X2: 32}))

	t0 := time.Now()
	var states []build.JobState
	for i := 0; i < 3; i++ {
		res, ok := s.Update(t0.Add(time.Duration(i) * time.Millisecond))
		require.True(t, ok)
		states = append(states, res.Job.State)
	}
	assert.Equal(t, []build.JobState{build.JobCommitted, build.JobSuperseded, build.JobCommitted}, states)
	assert.Equal(t, []world.VariantKey{"Floor", "Ground", "Floor"}, variantsRow(s.Base().Grid, 0))

	st := s.Stats()
	assert.Equal(t, uint64(2), st.Committed)
	assert.Equal(t, uint64(1), st.Superseded)
}

func TestRestageLastWriteWins(t *testing.T) {
	s := newTestSession(t, Options{Width: 1, Height: 1})

	_, err := s.Stage(Rect{}, block.Wall)
	require.NoError(t, err)
	_, err = s.Stage(Rect{}, block.Floor)
	require.NoError(t, err)
	require.Len(t, s.Queue(), 2)

	t0 := time.Now()
	first, ok := s.Update(t0)
	require.True(t, ok)
	assert.Equal(t, block.Floor, first.Committed)

	second, ok := s.Update(t0.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, build.JobSuperseded, second.Job.State)
}

func TestStageRejectsNonBuildable(t *testing.T) {
	s := newTestSession(t, Options{})
	_, err := s.Stage(Rect{}, block.Blank)
	assert.ErrorIs(t, err, ErrNotBuildable)
	_, err = s.Paint(Rect{}, block.Empty)
	assert.ErrorIs(t, err, ErrNotBuildable)
	assert.Empty(t, s.Queue())
}

func TestPaintIsImmediate(t *testing.T) {
	s := newTestSession(t, Options{Width: 3, Height: 3})

	n, err := s.Paint(Rect{X1: 32, Y1: 0, X2: 32, Y2: 64}, block.Wall)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, s.Queue())

	mid, _ := s.Base().Grid.TileAt(1, 1)
	assert.Equal(t, world.VariantKey("Wall_N_S"), mid.VariantKey())

	assert.True(t, s.Dirty())
	f := s.Frame()
	assert.Equal(t, []string{",╷,", ",│,", ",╵,"}, f.Rows)
	assert.True(t, s.Dirty(), "Frame only reads")

	f, ok := s.Redraw()
	require.True(t, ok)
	assert.Equal(t, []string{",╷,", ",│,", ",╵,"}, f.Rows)
	assert.False(t, s.Dirty())

	f, ok = s.Redraw()
	assert.False(t, ok)
	assert.Nil(t, f)
}

func TestSessionPublishesEvents(t *testing.T) {
	bus := eventbus.NewMemoryBus(64)
	var mu sync.Mutex
	counts := map[string]int{}
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		counts[ev.EventType]++
		mu.Unlock()
	})
	require.NoError(t, err)

	s := newTestSession(t, Options{Width: 2, Height: 1, Bus: bus})
	_, err = s.Stage(Rect{X2: 32}, block.Wall)
	require.NoError(t, err)
	s.Cancel(Rect{X1: 32, X2: 32})
	t0 := time.Now()
	s.Update(t0)
	s.Update(t0.Add(time.Second))
	_, err = s.Paint(Rect{}, block.Floor)
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	assert.Equal(t, map[string]int{
		EventJobEnqueued:      2,
		EventStagingCancelled: 1,
		EventJobCommitted:     1,
		EventJobSuperseded:    1,
		EventTilesPainted:     1,
	}, counts)
}

func TestSessionMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	s := newTestSession(t, Options{Width: 2, Height: 1, Metrics: m})

	_, err := s.Stage(Rect{X2: 32}, block.Wall)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.enqueued))

	s.Update(time.Now())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.committed))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.superseded))
}

func TestRunDrainsAndServesActions(t *testing.T) {
	s := newTestSession(t, Options{
		Width: 4, Height: 1,
		DrainInterval: time.Millisecond,
		FrameInterval: time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var stageErr error
	require.NoError(t, s.Do(ctx, func(s *Session) {
		_, stageErr = s.Stage(Rect{X2: 96}, block.Wall)
	}))
	require.NoError(t, stageErr)

	require.Eventually(t, func() bool {
		var depth int
		if err := s.Do(ctx, func(s *Session) { depth = s.Stats().QueueDepth }); err != nil {
			return false
		}
		return depth == 0
	}, 2*time.Second, 5*time.Millisecond)

	var row []world.VariantKey
	require.NoError(t, s.Do(ctx, func(s *Session) { row = variantsRow(s.Base().Grid, 0) }))
	assert.Equal(t, []world.VariantKey{"Wall_E", "Wall_E_W", "Wall_E_W", "Wall_W"}, row)

	cancel()
	require.NoError(t, <-done)
	assert.ErrorIs(t, s.Do(context.Background(), func(*Session) {}), ErrStopped)
}

func TestDoSkipsActionAfterDeadline(t *testing.T) {
	s := newTestSession(t, Options{Width: 2, Height: 1, FrameInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Занимаем цикл, пока истекает дедлайн второго действия
	busy := make(chan struct{})
	release := make(chan struct{})
	blocked := make(chan error, 1)
	go func() {
		blocked <- s.Do(ctx, func(*Session) {
			close(busy)
			<-release
		})
	}()
	<-busy

	ran := false
	short, cancelShort := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancelShort()
	err := s.Do(short, func(s *Session) {
		ran = true
		_, _ = s.Stage(Rect{}, block.Wall)
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-blocked)

	var depth int
	var staged block.Category
	require.NoError(t, s.Do(ctx, func(s *Session) {
		depth = s.Stats().QueueDepth
		tile, _ := s.Staging().Grid.TileAt(0, 0)
		staged = tile.Category()
	}))
	assert.False(t, ran)
	assert.Equal(t, 0, depth)
	assert.Equal(t, block.Blank, staged)
}
