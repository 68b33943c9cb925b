package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIndexValid(t *testing.T) {
	ix := Default()
	require.NoError(t, ix.Validate())
	assert.Equal(t, 20, ix.Len())

	for _, key := range world.AllWallVariants() {
		a, err := ix.Resolve(key)
		require.NoError(t, err, key)
		assert.True(t, a.Drawable())
		assert.NotEmpty(t, a.Glyph)
	}
}

func TestSlotGeometry(t *testing.T) {
	ix := Default()

	wall := ix.MustResolve("Wall")
	assert.Equal(t, Asset{Key: "Wall", Slot: 1, X: 0, Y: 0, W: 32, H: 32, Glyph: "▪"}, wall)

	cross := ix.MustResolve("Wall_N_E_W")
	assert.Equal(t, 15*32, cross.X)
	assert.Equal(t, 0, cross.Y)

	ground := ix.MustResolve("Ground")
	assert.Equal(t, 0, ground.X)
	assert.Equal(t, 64, ground.Y)

	preview := ix.MustResolve("Build_Preview")
	assert.Equal(t, 0, preview.X)
	assert.Equal(t, 96, preview.Y)
}

func TestResolveUnknown(t *testing.T) {
	ix := NewIndex(0, 0)
	_, err := ix.Resolve("Wall_N")
	assert.ErrorIs(t, err, ErrUnresolvedVariant)
	assert.Contains(t, err.Error(), "Wall_N")

	assert.Panics(t, func() { ix.MustResolve("Wall_N") })
}

func TestEmptyNeverNeedsAsset(t *testing.T) {
	ix := NewIndex(0, 0)
	a, err := ix.Resolve("Empty")
	require.NoError(t, err)
	assert.False(t, a.Drawable())
}

func TestValidateReportsAllMissing(t *testing.T) {
	ix := Default()
	delete(ix.assets, "Wall_N_S")
	delete(ix.assets, "Floor")

	err := ix.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedVariant)
	assert.Contains(t, err.Error(), "Wall_N_S")
	assert.Contains(t, err.Error(), "Floor")
}

func TestSetRejectsBadInput(t *testing.T) {
	ix := NewIndex(32, 16)
	assert.Error(t, ix.Set("Wall", 0, "#"))
	assert.Error(t, ix.Set("Wall_S_N", 3, "#"))
	assert.Error(t, ix.Set("Lava", 3, "#"))
}

func TestKeysOrderedBySlot(t *testing.T) {
	keys := Default().Keys()
	require.Len(t, keys, 20)
	assert.Equal(t, world.VariantKey("Wall"), keys[0])
	assert.Equal(t, world.VariantKey("Build_Preview"), keys[len(keys)-1])
}

const manifestYAML = `
image: custom.png
tile_size: 16
columns: 4
assets:
  Wall: {slot: 1, glyph: "#"}
  Ground: {slot: 6, glyph: ","}
`

func TestParseManifest(t *testing.T) {
	ix, err := ParseManifest([]byte(manifestYAML))
	require.NoError(t, err)
	assert.Equal(t, "custom.png", ix.Image)
	assert.Equal(t, 16, ix.TileSize())

	ground := ix.MustResolve("Ground")
	assert.Equal(t, 16, ground.X)
	assert.Equal(t, 16, ground.Y)
	assert.Equal(t, 16, ground.W)

	// Неполный манифест не проходит проверку
	assert.ErrorIs(t, ix.Validate(), ErrUnresolvedVariant)
}

func TestParseManifestErrors(t *testing.T) {
	_, err := ParseManifest([]byte("assets: [1, 2"))
	assert.Error(t, err)

	_, err = ParseManifest([]byte("assets:\n  Wall_X: {slot: 1}\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	ix, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultImage, ix.Image)

	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifestYAML), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrUnresolvedVariant)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
