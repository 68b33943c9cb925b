package world

import (
	"fmt"
	"strings"

	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// VariantKey обозначает конкретный визуальный вариант тайла, например "Floor" или "Wall_N_E".
// Внешний слой отрисовки сопоставляет ключ с изображением через assets.Index.
type VariantKey string

// Classify сопоставляет маску соединений стены с ключом варианта.
// Отображение тотально: каждое из 16 подмножеств даёт свой ключ.
func Classify(c Connectivity) VariantKey {
	return VariantKeyFor(block.Wall, c)
}

// VariantKeyFor возвращает ключ варианта для категории.
// Для несоединяемых категорий маска игнорируется.
func VariantKeyFor(category block.Category, c Connectivity) VariantKey {
	name := category.String()
	if !category.Merges() || c == 0 {
		return VariantKey(name)
	}
	return VariantKey(name + "_" + c.String())
}

// AllVariants перечисляет все ключи категории: 16 для соединяемых, иначе один
func AllVariants(category block.Category) []VariantKey {
	if !category.Merges() {
		return []VariantKey{VariantKeyFor(category, 0)}
	}
	conns := allConnectivities()
	out := make([]VariantKey, 0, len(conns))
	for _, c := range conns {
		out = append(out, VariantKeyFor(category, c))
	}
	return out
}

// AllWallVariants перечисляет 16 вариантов стены
func AllWallVariants() []VariantKey {
	return AllVariants(block.Wall)
}

// ParseVariantKey разбирает ключ обратно в категорию и маску соединений
func ParseVariantKey(key VariantKey) (block.Category, Connectivity, error) {
	s := string(key)
	for _, category := range block.All() {
		name := category.String()
		if s == name {
			return category, 0, nil
		}
		if !category.Merges() || !strings.HasPrefix(s, name+"_") {
			continue
		}
		c, ok := parseDirections(strings.TrimPrefix(s, name+"_"))
		if ok {
			return category, c, nil
		}
	}
	return block.Empty, 0, fmt.Errorf("malformed variant key %q", s)
}

// parseDirections принимает только канонический порядок N_E_S_W без повторов
func parseDirections(s string) (Connectivity, bool) {
	var c Connectivity
	next := 0
	for _, part := range strings.Split(s, "_") {
		found := false
		for i := next; i < len(Directions); i++ {
			if Directions[i].Short() == part {
				c = c.With(Directions[i])
				next = i + 1
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return c, true
}
