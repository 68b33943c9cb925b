package block

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory возвращается при разборе неизвестного имени категории
var ErrUnknownCategory = errors.New("unknown tile category")

// Category представляет базовую категорию тайла
type Category uint8

// Константы категорий. Нулевое значение Empty означает "ничего не рисуется".
const (
	Empty        Category = iota // Пустая клетка (слой без содержимого)
	Ground                       // Земля/трава, основа мира
	Floor                        // Пол постройки
	Wall                         // Стена, соединяется с соседними стенами
	Blank                        // Прозрачная заглушка служебных слоёв
	BuildPreview                 // Подсветка запланированного строительства

	categoryCount // всегда последний
)

var registry = [categoryCount]Behavior{
	Empty:        {Name: "Empty"},
	Ground:       {Name: "Ground", Buildable: true},
	Floor:        {Name: "Floor", Buildable: true},
	Wall:         {Name: "Wall", Merges: true, Buildable: true},
	Blank:        {Name: "Blank"},
	BuildPreview: {Name: "Build_Preview"},
}

// Get возвращает поведение для указанной категории
func Get(c Category) (Behavior, bool) {
	if c >= categoryCount {
		return Behavior{}, false
	}
	return registry[c], true
}

// IsValid проверяет, является ли значение допустимой категорией
func IsValid(c Category) bool {
	return c < categoryCount
}

// All возвращает все категории в порядке объявления
func All() []Category {
	out := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// Parse разбирает имя категории без учёта регистра.
// Допускаются как "Build_Preview", так и "buildpreview".
func Parse(name string) (Category, error) {
	norm := normalize(name)
	for c := Category(0); c < categoryCount; c++ {
		if normalize(registry[c].Name) == norm {
			return c, nil
		}
	}
	return Empty, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// String возвращает имя категории
func (c Category) String() string {
	if b, ok := Get(c); ok {
		return b.Name
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Merges сообщает, соединяется ли категория с соседями (автотайлинг)
func (c Category) Merges() bool {
	b, ok := Get(c)
	return ok && b.Merges
}

// Buildable сообщает, можно ли строить категорию
func (c Category) Buildable() bool {
	b, ok := Get(c)
	return ok && b.Buildable
}

// MarshalText реализует encoding.TextMarshaler (JSON/YAML)
func (c Category) MarshalText() ([]byte, error) {
	if !IsValid(c) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler (JSON/YAML)
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}
