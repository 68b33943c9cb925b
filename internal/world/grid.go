package world

import (
	"fmt"

	"github.com/Kjarrigan/base-builder/internal/vec"
	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// DefaultTileSize задаёт размер тайла в пикселях по умолчанию
const DefaultTileSize = 32

// Grid владеет прямоугольным массивом тайлов width*height.
// Сетка не потокобезопасна: все изменения выполняются из одного игрового цикла.
type Grid struct {
	width, height   int
	tileSize        int
	defaultCategory block.Category
	tiles           []Tile // row-major: y*width + x

	changes     map[vec.Vec2]struct{} // Изменённые клетки с последнего ClearChanges
	changeCount int                   // Счетчик изменений
}

// GridOption настраивает создаваемую сетку
type GridOption func(*Grid)

// WithTileSize задаёт размер тайла в пикселях для TileAtPoint/TilesInRectangle
func WithTileSize(px int) GridOption {
	return func(g *Grid) {
		if px > 0 {
			g.tileSize = px
		}
	}
}

// NewGrid создаёт сетку, где каждая клетка имеет категорию defaultCategory.
// Неположительные размеры являются ошибкой программиста и вызывают панику.
func NewGrid(width, height int, defaultCategory block.Category, opts ...GridOption) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("world: invalid grid size %dx%d", width, height))
	}

	g := &Grid{
		width:           width,
		height:          height,
		tileSize:        DefaultTileSize,
		defaultCategory: defaultCategory,
		tiles:           make([]Tile, width*height),
		changes:         make(map[vec.Vec2]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.tiles[g.index(x, y)] = Tile{
				pos:      vec.Vec2{X: x, Y: y},
				category: defaultCategory,
			}
		}
	}
	return g
}

// Width возвращает ширину в клетках
func (g *Grid) Width() int { return g.width }

// Height возвращает высоту в клетках
func (g *Grid) Height() int { return g.height }

// Size возвращает размеры сетки в клетках
func (g *Grid) Size() vec.Vec2 { return vec.Vec2{X: g.width, Y: g.height} }

// TileSize возвращает размер тайла в пикселях
func (g *Grid) TileSize() int { return g.tileSize }

// DefaultCategory возвращает категорию, которой сетка была заполнена при создании
func (g *Grid) DefaultCategory() block.Category { return g.defaultCategory }

func (g *Grid) index(x, y int) int {
	return y*g.width + x
}

// InBounds проверяет, лежит ли клетка внутри сетки
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// TileAt возвращает тайл по координатам клетки.
// Вне сетки возвращает nil, false — это ожидаемый результат, а не ошибка.
func (g *Grid) TileAt(x, y int) (*Tile, bool) {
	if !g.InBounds(x, y) {
		return nil, false
	}
	return &g.tiles[g.index(x, y)], true
}

// Tile возвращает тайл по вектору координат
func (g *Grid) Tile(pos vec.Vec2) (*Tile, bool) {
	return g.TileAt(pos.X, pos.Y)
}

// TileAtPoint возвращает тайл под точкой в пикселях
func (g *Grid) TileAtPoint(px, py int) (*Tile, bool) {
	return g.Tile(vec.Vec2{X: px, Y: py}.FloorDiv(g.tileSize))
}

// Neighbors содержит четыре соседние клетки, nil на границе
type Neighbors [directionCount]*Tile

// Get возвращает соседа в направлении d (nil, если его нет)
func (n Neighbors) Get(d Direction) *Tile {
	return n[d]
}

// Neighbors возвращает ровно четыре ортогональных соседа тайла
func (g *Grid) Neighbors(t *Tile) Neighbors {
	var n Neighbors
	for _, d := range Directions {
		if nb, ok := g.Tile(t.pos.Add(d.Offset())); ok {
			n[d] = nb
		}
	}
	return n
}

// TilesInRectangle возвращает тайлы в прямоугольнике, заданном двумя углами в пикселях.
// Углы нормализуются, делятся на размер тайла и обрезаются по границам сетки.
func (g *Grid) TilesInRectangle(x1, y1, x2, y2 int) []*Tile {
	a := vec.Vec2{X: x1, Y: y1}.FloorDiv(g.tileSize)
	b := vec.Vec2{X: x2, Y: y2}.FloorDiv(g.tileSize)
	return g.TilesInCells(a, b)
}

// TilesInCells возвращает тайлы в прямоугольнике клеток (углы включительно) в порядке строк
func (g *Grid) TilesInCells(a, b vec.Vec2) []*Tile {
	lo := a.Min(b).Max(vec.Vec2{})
	hi := a.Max(b).Min(vec.Vec2{X: g.width - 1, Y: g.height - 1})
	if lo.X > hi.X || lo.Y > hi.Y {
		return nil
	}

	tiles := make([]*Tile, 0, (hi.X-lo.X+1)*(hi.Y-lo.Y+1))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			tiles = append(tiles, &g.tiles[g.index(x, y)])
		}
	}
	return tiles
}

// Each обходит все тайлы в порядке строк
func (g *Grid) Each(fn func(t *Tile)) {
	for i := range g.tiles {
		fn(&g.tiles[i])
	}
}

// SetCategory перезаписывает категорию тайла.
// Соседей не трогает: распространение — задача ApplyAndPropagate.
func (g *Grid) SetCategory(t *Tile, category block.Category) {
	if t.category == category {
		return
	}
	t.category = category
	if !category.Merges() {
		t.connectivity = 0
	}
	g.markChanged(t.pos)
}

// AddOverlay добавляет оверлей, если его ещё нет
func (g *Grid) AddOverlay(t *Tile, id string) {
	if t.HasOverlay(id) {
		return
	}
	t.overlays = append(t.overlays, id)
	g.markChanged(t.pos)
}

// RemoveOverlay удаляет оверлей и сообщает, был ли он
func (g *Grid) RemoveOverlay(t *Tile, id string) bool {
	for i, o := range t.overlays {
		if o == id {
			t.overlays = append(t.overlays[:i], t.overlays[i+1:]...)
			g.markChanged(t.pos)
			return true
		}
	}
	return false
}

// ClearOverlays удаляет все оверлеи тайла
func (g *Grid) ClearOverlays(t *Tile) {
	if len(t.overlays) == 0 {
		return
	}
	t.overlays = nil
	g.markChanged(t.pos)
}

func (g *Grid) markChanged(pos vec.Vec2) {
	g.changes[pos] = struct{}{}
	g.changeCount++
}

// HasChanges возвращает true, если в сетке есть изменения
func (g *Grid) HasChanges() bool {
	return g.changeCount > 0
}

// ChangeCount возвращает число изменений с последнего ClearChanges
func (g *Grid) ChangeCount() int {
	return g.changeCount
}

// Changes возвращает изменённые клетки с последнего ClearChanges (порядок не определён)
func (g *Grid) Changes() []vec.Vec2 {
	out := make([]vec.Vec2, 0, len(g.changes))
	for pos := range g.changes {
		out = append(out, pos)
	}
	return out
}

// ClearChanges очищает список изменений
func (g *Grid) ClearChanges() {
	g.changes = make(map[vec.Vec2]struct{})
	g.changeCount = 0
}
