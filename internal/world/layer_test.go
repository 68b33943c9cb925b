package world

import (
	"testing"

	"github.com/Kjarrigan/base-builder/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layerNames(s *LayerStack) []string {
	names := make([]string, 0)
	for _, l := range s.Layers() {
		names = append(names, l.Name)
	}
	return names
}

func TestLayerStackInsertionOrder(t *testing.T) {
	s := NewLayerStack(6, 4, block.Ground, WithTileSize(16))
	s.AddLayer("zones", block.Empty, DrawAttributes{OverlayOnly: true})
	s.AddLayer("build_preview", block.Blank, DrawAttributes{Tint: "#80ffffff", Alpha: 0.5})
	s.AddLayer("annotations", block.Empty, DrawAttributes{})

	assert.Equal(t, []string{BaseLayerName, "zones", "build_preview", "annotations"}, layerNames(s))

	for _, l := range s.Layers() {
		assert.Equal(t, 6, l.Grid.Width())
		assert.Equal(t, 4, l.Grid.Height())
		assert.Equal(t, 16, l.Grid.TileSize())
	}

	preview, err := s.Layer("build_preview")
	require.NoError(t, err)
	assert.Equal(t, block.Blank, preview.Default)
	assert.Equal(t, 0.5, preview.Attrs.Alpha)
	tile, _ := preview.Grid.TileAt(0, 0)
	assert.Equal(t, block.Blank, tile.Category())
}

func TestLayerStackReAddKeepsPosition(t *testing.T) {
	s := NewLayerStack(3, 3, block.Ground)
	first := s.AddLayer("a", block.Blank, DrawAttributes{})
	s.AddLayer("b", block.Blank, DrawAttributes{})

	again := s.AddLayer("a", block.Empty, DrawAttributes{Tint: "red"})
	assert.Same(t, first, again)
	assert.Equal(t, block.Empty, again.Default)
	assert.Equal(t, []string{BaseLayerName, "a", "b"}, layerNames(s))
}

func TestLayerStackUnknownLayer(t *testing.T) {
	s := NewLayerStack(3, 3, block.Ground)
	_, err := s.Layer("roof")
	assert.ErrorIs(t, err, ErrUnknownLayer)
	assert.Equal(t, BaseLayerName, s.Base().Name)
}

func TestLayersKeepIndependentConnectivity(t *testing.T) {
	s := NewLayerStack(3, 1, block.Ground)
	preview := s.AddLayer("build_preview", block.Blank, DrawAttributes{})

	baseLeft, _ := s.Base().Grid.TileAt(0, 0)
	previewMid, _ := preview.Grid.TileAt(1, 0)
	s.Base().Grid.ApplyAndPropagate(baseLeft, block.Wall)
	preview.Grid.ApplyAndPropagate(previewMid, block.Wall)

	assert.Equal(t, VariantKey("Wall"), baseLeft.VariantKey())
	assert.Equal(t, VariantKey("Wall"), previewMid.VariantKey())

	assert.True(t, s.HasChanges())
	s.ClearChanges()
	assert.False(t, s.HasChanges())
}
