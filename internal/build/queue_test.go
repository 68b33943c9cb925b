package build

import (
	"testing"
	"time"

	"github.com/Kjarrigan/base-builder/internal/vec"
	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/Kjarrigan/base-builder/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayers(t *testing.T, w, h int) (*world.Layer, *world.Layer) {
	t.Helper()
	stack := world.NewLayerStack(w, h, block.Ground)
	staging := stack.AddLayer("build_preview", block.Blank, world.DrawAttributes{Alpha: 0.5})
	return stack.Base(), staging
}

func stage(t *testing.T, staging *world.Layer, pos vec.Vec2, c block.Category) {
	t.Helper()
	tile, ok := staging.Grid.Tile(pos)
	require.True(t, ok)
	staging.Grid.ApplyAndPropagate(tile, c)
	staging.Grid.AddOverlay(tile, "Build_Preview")
}

func TestQueueFIFO(t *testing.T) {
	base, staging := newLayers(t, 4, 1)
	q := NewQueue()

	for x := 0; x < 3; x++ {
		stage(t, staging, vec.Vec2{X: x}, block.Wall)
		q.Enqueue(vec.Vec2{X: x}, block.Wall)
	}
	require.Equal(t, 3, q.Len())

	for x := 0; x < 3; x++ {
		res, ok := q.DrainOne(base, staging)
		require.True(t, ok)
		assert.Equal(t, vec.Vec2{X: x}, res.Job.Position)
		assert.Equal(t, JobCommitted, res.Job.State)
		assert.Equal(t, block.Wall, res.Committed)
	}
	assert.Equal(t, 0, q.Len())
}

func TestDrainEmptyQueue(t *testing.T) {
	base, staging := newLayers(t, 2, 2)
	q := NewQueue()

	_, ok := q.DrainOne(base, staging)
	assert.False(t, ok)
	assert.False(t, base.Grid.HasChanges())
}

func TestDrainCommitsAndResetsStaging(t *testing.T) {
	base, staging := newLayers(t, 3, 1)
	q := NewQueue()

	stage(t, staging, vec.Vec2{X: 0}, block.Wall)
	stage(t, staging, vec.Vec2{X: 1}, block.Wall)
	q.Enqueue(vec.Vec2{X: 0}, block.Wall)
	q.Enqueue(vec.Vec2{X: 1}, block.Wall)

	previewRight, _ := staging.Grid.TileAt(1, 0)
	assert.Equal(t, world.VariantKey("Wall_W"), previewRight.VariantKey())

	_, ok := q.DrainOne(base, staging)
	require.True(t, ok)

	committed, _ := base.Grid.TileAt(0, 0)
	assert.Equal(t, block.Wall, committed.Category())
	assert.Equal(t, world.VariantKey("Wall"), committed.VariantKey())

	previewLeft, _ := staging.Grid.TileAt(0, 0)
	assert.Equal(t, block.Blank, previewLeft.Category())
	assert.Empty(t, previewLeft.Overlays())
	// Сосед в предпросмотре потерял друга
	assert.Equal(t, world.VariantKey("Wall"), previewRight.VariantKey())

	_, ok = q.DrainOne(base, staging)
	require.True(t, ok)
	right, _ := base.Grid.TileAt(1, 0)
	assert.Equal(t, world.VariantKey("Wall_E"), committed.VariantKey())
	assert.Equal(t, world.VariantKey("Wall_W"), right.VariantKey())
}

func TestDrainLastWriteWins(t *testing.T) {
	base, staging := newLayers(t, 2, 2)
	q := NewQueue()
	pos := vec.Vec2{X: 1, Y: 1}

	stage(t, staging, pos, block.Wall)
	q.Enqueue(pos, block.Wall)
	// Перекрашено до переноса
	stage(t, staging, pos, block.Floor)

	res, ok := q.DrainOne(base, staging)
	require.True(t, ok)
	assert.Equal(t, block.Wall, res.Job.Category)
	assert.Equal(t, block.Floor, res.Committed)

	tile, _ := base.Grid.Tile(pos)
	assert.Equal(t, block.Floor, tile.Category())
}

func TestDrainDuplicateJobsSupersedesSecond(t *testing.T) {
	base, staging := newLayers(t, 2, 1)
	q := NewQueue()
	pos := vec.Vec2{}

	stage(t, staging, pos, block.Floor)
	q.Enqueue(pos, block.Floor)
	q.Enqueue(pos, block.Floor)

	first, ok := q.DrainOne(base, staging)
	require.True(t, ok)
	assert.Equal(t, JobCommitted, first.Job.State)

	second, ok := q.DrainOne(base, staging)
	require.True(t, ok)
	assert.Equal(t, JobSuperseded, second.Job.State)
	assert.Equal(t, 0, q.Len())
}

func TestDrainOutOfBoundsSuperseded(t *testing.T) {
	base, staging := newLayers(t, 2, 2)
	q := NewQueue()
	q.Enqueue(vec.Vec2{X: 9, Y: 9}, block.Wall)

	res, ok := q.DrainOne(base, staging)
	require.True(t, ok)
	assert.Equal(t, JobSuperseded, res.Job.State)
}

func TestPendingIsCopy(t *testing.T) {
	q := NewQueue()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return fixed }

	job := q.Enqueue(vec.Vec2{X: 1}, block.Wall)
	assert.Equal(t, fixed, job.EnqueuedAt)
	assert.Equal(t, JobPending, job.State)

	pending := q.Pending()
	require.Len(t, pending, 1)
	pending[0].Position = vec.Vec2{X: 5}
	assert.Equal(t, vec.Vec2{X: 1}, q.Pending()[0].Position)
}
