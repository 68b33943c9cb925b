package world

import (
	"github.com/Kjarrigan/base-builder/internal/util"
	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// Пороговые значения шума для генерации
const (
	DefaultFloorStart = 0.62 // Выше - остатки старого пола
	DefaultWallStart  = 0.74 // Выше - скальные выступы (стены)
)

// TerrainGenerator заполняет базовый слой по шуму Перлина.
// Результат детерминирован для одного и того же сида.
type TerrainGenerator struct {
	Seed       int64   // Сид для генерации шума
	NoiseScale float64 // Масштаб шума (чем меньше, тем крупнее пятна)
	FloorStart float64 // Порог появления пола
	WallStart  float64 // Порог появления стен
}

// NewTerrainGenerator создаёт генератор с настройками по умолчанию
func NewTerrainGenerator(seed int64) *TerrainGenerator {
	return &TerrainGenerator{
		Seed:       seed,
		NoiseScale: 0.12,
		FloorStart: DefaultFloorStart,
		WallStart:  DefaultWallStart,
	}
}

// CategoryAt возвращает категорию клетки для значения шума
func (tg *TerrainGenerator) CategoryAt(value float64) block.Category {
	switch {
	case value >= tg.WallStart:
		return block.Wall
	case value >= tg.FloorStart:
		return block.Floor
	default:
		return block.Ground
	}
}

// Generate перезаписывает сетку ландшафтом и пересчитывает соединения стен
func (tg *TerrainGenerator) Generate(g *Grid) {
	noise := util.NewNoise(tg.Seed)

	g.Each(func(t *Tile) {
		pos := t.Position()
		value := noise.At(float64(pos.X)*tg.NoiseScale, float64(pos.Y)*tg.NoiseScale)
		g.SetCategory(t, tg.CategoryAt(value))
	})

	// Соседи выставлены пачкой, поэтому соединения считаем одним проходом
	g.Rescan()
}
