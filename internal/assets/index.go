package assets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// ErrUnresolvedVariant возвращается, когда для ключа варианта нет изображения
var ErrUnresolvedVariant = errors.New("unresolved variant")

// Параметры тайлсета по умолчанию
const (
	DefaultTileSize = 32
	DefaultColumns  = 16
)

// Asset описывает прямоугольник в тайлсете и символ для текстовой отрисовки
type Asset struct {
	Key   world.VariantKey `json:"key"`
	Slot  int              `json:"slot"` // Номер слота, с 1
	X     int              `json:"x"`
	Y     int              `json:"y"`
	W     int              `json:"w"`
	H     int              `json:"h"`
	Glyph string           `json:"glyph"`
}

// Drawable сообщает, есть ли у ассета изображение. Empty не рисуется.
func (a Asset) Drawable() bool {
	return a.Slot > 0
}

// Index сопоставляет ключи вариантов с ассетами.
// Значение передаётся явно, глобального состояния нет.
type Index struct {
	Image    string
	tileSize int
	columns  int
	assets   map[world.VariantKey]Asset
}

// NewIndex создаёт пустой индекс для тайлсета с заданной геометрией
func NewIndex(tileSize, columns int) *Index {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Index{
		tileSize: tileSize,
		columns:  columns,
		assets:   make(map[world.VariantKey]Asset),
	}
}

// TileSize возвращает размер тайла в пикселях
func (ix *Index) TileSize() int { return ix.tileSize }

// Set регистрирует ключ в слоте тайлсета. Слоты нумеруются с 1, построчно.
func (ix *Index) Set(key world.VariantKey, slot int, glyph string) error {
	if slot <= 0 {
		return fmt.Errorf("asset %q: slot must be positive, got %d", key, slot)
	}
	if _, _, err := world.ParseVariantKey(key); err != nil {
		return fmt.Errorf("asset %q: %w", key, err)
	}

	i := slot - 1
	ix.assets[key] = Asset{
		Key:   key,
		Slot:  slot,
		X:     (i % ix.columns) * ix.tileSize,
		Y:     (i / ix.columns) * ix.tileSize,
		W:     ix.tileSize,
		H:     ix.tileSize,
		Glyph: glyph,
	}
	return nil
}

// Resolve возвращает ассет для ключа.
// Empty всегда разрешается в ассет без изображения.
func (ix *Index) Resolve(key world.VariantKey) (Asset, error) {
	if key == world.VariantKey(block.Empty.String()) {
		return Asset{Key: key}, nil
	}
	a, ok := ix.assets[key]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnresolvedVariant, key)
	}
	return a, nil
}

// MustResolve как Resolve, но паникует. Используется при композиции кадра,
// где отсутствующий ассет — ошибка сборки, а не пустая клетка.
func (ix *Index) MustResolve(key world.VariantKey) Asset {
	a, err := ix.Resolve(key)
	if err != nil {
		panic(err)
	}
	return a
}

// Validate проверяет, что каждый достижимый вариант каждой категории разрешается.
// Возвращает все отсутствующие ключи одной ошибкой.
func (ix *Index) Validate() error {
	var errs []error
	for _, category := range block.All() {
		if category == block.Empty {
			continue
		}
		for _, key := range world.AllVariants(category) {
			if _, err := ix.Resolve(key); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Keys возвращает зарегистрированные ключи по возрастанию слота
func (ix *Index) Keys() []world.VariantKey {
	keys := make([]world.VariantKey, 0, len(ix.assets))
	for k := range ix.assets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return ix.assets[keys[i]].Slot < ix.assets[keys[j]].Slot
	})
	return keys
}

// Len возвращает количество зарегистрированных ассетов
func (ix *Index) Len() int {
	return len(ix.assets)
}
