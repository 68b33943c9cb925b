package world

import (
	"github.com/Kjarrigan/base-builder/internal/vec"
	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// Tile представляет одну клетку сетки.
// Изменяется только через методы Grid, чтобы сетка могла отслеживать изменения.
type Tile struct {
	pos          vec.Vec2       // Позиция в сетке, неизменна
	category     block.Category // Базовая категория
	connectivity Connectivity   // Соседи той же категории (только для соединяемых категорий)
	overlays     []string       // Оверлеи поверх базового варианта, в порядке отрисовки
}

// Position возвращает координаты тайла в сетке
func (t *Tile) Position() vec.Vec2 {
	return t.pos
}

// Category возвращает базовую категорию тайла
func (t *Tile) Category() block.Category {
	return t.category
}

// Connectivity возвращает маску соединений. Для несоединяемых категорий всегда 0.
func (t *Tile) Connectivity() Connectivity {
	return t.connectivity
}

// VariantKey вычисляет ключ варианта из категории и соединений
func (t *Tile) VariantKey() VariantKey {
	return VariantKeyFor(t.category, t.connectivity)
}

// Overlays возвращает копию списка оверлеев
func (t *Tile) Overlays() []string {
	if len(t.overlays) == 0 {
		return nil
	}
	out := make([]string, len(t.overlays))
	copy(out, t.overlays)
	return out
}

// HasOverlay проверяет наличие оверлея
func (t *Tile) HasOverlay(id string) bool {
	for _, o := range t.overlays {
		if o == id {
			return true
		}
	}
	return false
}
