package world

import (
	"strings"

	"github.com/Kjarrigan/base-builder/internal/vec"
)

// Direction определяет одно из четырёх ортогональных направлений
type Direction uint8

const (
	North Direction = iota // y-1
	East                   // x+1
	South                  // y+1
	West                   // x-1

	directionCount // всегда последний: количество направлений
)

// Directions перечисляет направления в каноническом порядке N, E, S, W
var Directions = [directionCount]Direction{North, East, South, West}

var directionOffsets = [directionCount]vec.Vec2{
	North: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: 1},
	West:  {X: -1, Y: 0},
}

var directionNames = [directionCount]string{"North", "East", "South", "West"}
var directionShort = [directionCount]string{"N", "E", "S", "W"}

// Offset возвращает смещение клетки-соседа в этом направлении
func (d Direction) Offset() vec.Vec2 {
	return directionOffsets[d]
}

// Opposite возвращает противоположное направление
func (d Direction) Opposite() Direction {
	return (d + 2) % directionCount
}

// Short возвращает однобуквенное обозначение (N, E, S, W)
func (d Direction) Short() string {
	return directionShort[d]
}

func (d Direction) String() string {
	return directionNames[d]
}

// Connectivity представляет подмножество направлений, в которых у тайла есть сосед той же категории.
// Хранится как битовая маска: бит i соответствует Directions[i].
type Connectivity uint8

// ConnectivityOf собирает маску из перечисленных направлений
func ConnectivityOf(dirs ...Direction) Connectivity {
	var c Connectivity
	for _, d := range dirs {
		c = c.With(d)
	}
	return c
}

// Has проверяет наличие направления
func (c Connectivity) Has(d Direction) bool {
	return c&(1<<d) != 0
}

// With возвращает маску с добавленным направлением
func (c Connectivity) With(d Direction) Connectivity {
	return c | 1<<d
}

// Without возвращает маску без направления
func (c Connectivity) Without(d Direction) Connectivity {
	return c &^ (1 << d)
}

// Directions возвращает направления маски в каноническом порядке
func (c Connectivity) Directions() []Direction {
	out := make([]Direction, 0, directionCount)
	for _, d := range Directions {
		if c.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Count возвращает количество направлений в маске
func (c Connectivity) Count() int {
	n := 0
	for _, d := range Directions {
		if c.Has(d) {
			n++
		}
	}
	return n
}

// String возвращает направления через "_", например "N_E". Пустая маска даёт "".
func (c Connectivity) String() string {
	parts := make([]string, 0, directionCount)
	for _, d := range c.Directions() {
		parts = append(parts, d.Short())
	}
	return strings.Join(parts, "_")
}

// allConnectivities перечисляет все 16 подмножеств {N,E,S,W}
func allConnectivities() []Connectivity {
	out := make([]Connectivity, 0, 1<<directionCount)
	for c := 0; c < 1<<directionCount; c++ {
		out = append(out, Connectivity(c))
	}
	return out
}
