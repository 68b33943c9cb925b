package render

import (
	"strings"

	"github.com/Kjarrigan/base-builder/internal/assets"
	"github.com/Kjarrigan/base-builder/internal/vec"
	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// Sprite описывает одну команду отрисовки для внешнего рендерера
type Sprite struct {
	Layer    string               `json:"layer"`
	Position vec.Vec2             `json:"position"`
	Asset    assets.Asset         `json:"asset"`
	Attrs    world.DrawAttributes `json:"attrs"`
	Overlay  bool                 `json:"overlay,omitempty"`
}

// Frame содержит результат композиции стека слоев
type Frame struct {
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	Rows    []string   `json:"rows"`
	Sprites []Sprite   `json:"sprites"`
	glyphs  [][]string // [y][x]
}

// String возвращает текстовый кадр, строки разделены переводом строки
func (f *Frame) String() string {
	return strings.Join(f.Rows, "\n")
}

// GlyphAt возвращает символ клетки или пустую строку вне кадра
func (f *Frame) GlyphAt(x, y int) string {
	if y < 0 || y >= len(f.glyphs) || x < 0 || x >= len(f.glyphs[y]) {
		return ""
	}
	return f.glyphs[y][x]
}

// Compose обходит слои в порядке стека и собирает кадр.
//
// Верхний слой перекрывает нижний. Клетки Empty и клетки вспомогательных слоев
// в их категории по умолчанию прозрачны. Слои OverlayOnly дают только оверлеи.
// Неразрешённый вариант вызывает панику через MustResolve.
func Compose(stack *world.LayerStack, index *assets.Index) *Frame {
	w, h := stack.Width(), stack.Height()
	f := &Frame{
		Width:  w,
		Height: h,
		glyphs: make([][]string, h),
	}
	for y := range f.glyphs {
		f.glyphs[y] = make([]string, w)
		for x := range f.glyphs[y] {
			f.glyphs[y][x] = " "
		}
	}

	for _, layer := range stack.Layers() {
		isBase := layer.Name == world.BaseLayerName
		layer.Grid.Each(func(t *world.Tile) {
			pos := t.Position()

			if !layer.Attrs.OverlayOnly && drawsCategory(t.Category(), layer.Default, isBase) {
				f.place(layer, pos, index.MustResolve(t.VariantKey()), false, true)
			}

			// В текстовом кадре оверлеи видны только у слоев OverlayOnly
			for _, id := range t.Overlays() {
				f.place(layer, pos, index.MustResolve(world.VariantKey(id)), true, layer.Attrs.OverlayOnly)
			}
		})
	}

	f.Rows = make([]string, h)
	for y, row := range f.glyphs {
		f.Rows[y] = strings.Join(row, "")
	}
	return f
}

func drawsCategory(c, layerDefault block.Category, isBase bool) bool {
	if c == block.Empty {
		return false
	}
	return isBase || c != layerDefault
}

func (f *Frame) place(layer *world.Layer, pos vec.Vec2, a assets.Asset, overlay, glyph bool) {
	if !a.Drawable() {
		return
	}
	f.Sprites = append(f.Sprites, Sprite{
		Layer: layer.Name, Position: pos, Asset: a, Attrs: layer.Attrs, Overlay: overlay,
	})
	if glyph && a.Glyph != "" {
		f.glyphs[pos.Y][pos.X] = a.Glyph
	}
}
