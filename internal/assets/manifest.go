package assets

import (
	"fmt"
	"os"

	"github.com/Kjarrigan/base-builder/internal/world"
	"gopkg.in/yaml.v3"
)

// Manifest представляет YAML описание тайлсета
//
//	image: tileset.png
//	tile_size: 32
//	columns: 16
//	assets:
//	  Wall: {slot: 1, glyph: "▪"}
type Manifest struct {
	Image    string                   `yaml:"image"`
	TileSize int                      `yaml:"tile_size"`
	Columns  int                      `yaml:"columns"`
	Assets   map[string]ManifestEntry `yaml:"assets"`
}

// ManifestEntry описывает один слот тайлсета
type ManifestEntry struct {
	Slot  int    `yaml:"slot"`
	Glyph string `yaml:"glyph"`
}

// ParseManifest строит индекс из YAML
func ParseManifest(data []byte) (*Index, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse asset manifest: %w", err)
	}
	return m.Index()
}

// LoadManifest читает манифест из файла
func LoadManifest(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset manifest: %w", err)
	}
	return ParseManifest(data)
}

// Index строит индекс по манифесту
func (m Manifest) Index() (*Index, error) {
	ix := NewIndex(m.TileSize, m.Columns)
	ix.Image = m.Image
	for key, e := range m.Assets {
		if err := ix.Set(world.VariantKey(key), e.Slot, e.Glyph); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Load возвращает индекс из манифеста или стандартный, если путь пуст.
// Результат всегда проходит Validate.
func Load(path string) (*Index, error) {
	ix := Default()
	if path != "" {
		var err error
		if ix, err = LoadManifest(path); err != nil {
			return nil, err
		}
	}
	if err := ix.Validate(); err != nil {
		return nil, fmt.Errorf("asset index %q: %w", path, err)
	}
	return ix, nil
}
