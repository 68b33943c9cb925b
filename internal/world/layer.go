package world

import (
	"errors"
	"fmt"

	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// BaseLayerName задаёт имя базового (авторитетного) слоя
const BaseLayerName = "base"

// ErrUnknownLayer возвращается при обращении к несуществующему слою
var ErrUnknownLayer = errors.New("unknown layer")

// DrawAttributes содержит атрибуты отрисовки слоя. Ядро их не интерпретирует,
// они передаются внешнему рендереру как есть.
type DrawAttributes struct {
	Tint        string  `yaml:"tint" json:"tint,omitempty"`                 // Цвет тонировки, например "#80ffffff"
	Alpha       float64 `yaml:"alpha" json:"alpha,omitempty"`               // Прозрачность 0..1, 0 — непрозрачный
	OverlayOnly bool    `yaml:"overlay_only" json:"overlay_only,omitempty"` // Рисовать только оверлеи
}

// Layer представляет именованную сетку в стеке слоев
type Layer struct {
	Name    string
	Grid    *Grid
	Default block.Category // Категория "ничего не запланировано"
	Attrs   DrawAttributes
}

// LayerStack представляет упорядоченный набор сеток одинакового размера.
// Порядок композиции совпадает с порядком добавления; базовый слой всегда первый.
type LayerStack struct {
	width, height int
	gridOpts      []GridOption
	order         []*Layer
	byName        map[string]*Layer
}

// NewLayerStack создаёт стек с базовым слоем, заполненным категорией base
func NewLayerStack(width, height int, base block.Category, opts ...GridOption) *LayerStack {
	s := &LayerStack{
		width:    width,
		height:   height,
		gridOpts: opts,
		byName:   make(map[string]*Layer),
	}
	s.AddLayer(BaseLayerName, base, DrawAttributes{})
	return s
}

// AddLayer добавляет слой поверх существующих.
// Повторное добавление имени заменяет сетку, сохраняя исходную позицию слоя.
func (s *LayerStack) AddLayer(name string, defaultCategory block.Category, attrs DrawAttributes) *Layer {
	layer := &Layer{
		Name:    name,
		Grid:    NewGrid(s.width, s.height, defaultCategory, s.gridOpts...),
		Default: defaultCategory,
		Attrs:   attrs,
	}

	if existing, ok := s.byName[name]; ok {
		*existing = *layer
		return existing
	}

	s.byName[name] = layer
	s.order = append(s.order, layer)
	return layer
}

// Base возвращает базовый слой
func (s *LayerStack) Base() *Layer {
	return s.byName[BaseLayerName]
}

// Layer возвращает слой по имени
func (s *LayerStack) Layer(name string) (*Layer, error) {
	layer, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	return layer, nil
}

// Layers возвращает слои в порядке композиции (снизу вверх)
func (s *LayerStack) Layers() []*Layer {
	out := make([]*Layer, len(s.order))
	copy(out, s.order)
	return out
}

// Width возвращает ширину стека в клетках
func (s *LayerStack) Width() int { return s.width }

// Height возвращает высоту стека в клетках
func (s *LayerStack) Height() int { return s.height }

// HasChanges сообщает, изменился ли хотя бы один слой
func (s *LayerStack) HasChanges() bool {
	for _, l := range s.order {
		if l.Grid.HasChanges() {
			return true
		}
	}
	return false
}

// ClearChanges сбрасывает списки изменений всех слоев (после перекомпозиции)
func (s *LayerStack) ClearChanges() {
	for _, l := range s.order {
		l.Grid.ClearChanges()
	}
}
