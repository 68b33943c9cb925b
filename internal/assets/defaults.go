package assets

import "github.com/Kjarrigan/base-builder/internal/world"

// DefaultImage это тайлсет по умолчанию
const DefaultImage = "tileset.png"

type defaultEntry struct {
	slot  int
	glyph string
}

// Раскладка стандартного тайлсета: 16 слотов в ряду, стены в первом ряду
var defaultLayout = map[world.VariantKey]defaultEntry{
	"Wall":          {1, "▪"},
	"Wall_E":        {2, "╶"},
	"Wall_S_W":      {3, "┐"},
	"Wall_E_S":      {4, "┌"},
	"Wall_W":        {5, "╴"},
	"Wall_N_E":      {6, "└"},
	"Wall_N_W":      {7, "┘"},
	"Wall_E_S_W":    {8, "┬"},
	"Wall_N_S_W":    {9, "┤"},
	"Wall_N_E_S":    {10, "├"},
	"Wall_E_W":      {11, "─"},
	"Wall_N_S":      {12, "│"},
	"Wall_N":        {13, "╵"},
	"Wall_S":        {14, "╷"},
	"Wall_N_E_S_W":  {15, "┼"},
	"Wall_N_E_W":    {16, "┴"},
	"Ground":        {33, ","},
	"Floor":         {34, "."},
	"Blank":         {35, " "},
	"Build_Preview": {49, "+"},
}

// Default возвращает индекс стандартного тайлсета
func Default() *Index {
	ix := NewIndex(DefaultTileSize, DefaultColumns)
	ix.Image = DefaultImage
	for key, e := range defaultLayout {
		if err := ix.Set(key, e.slot, e.glyph); err != nil {
			panic(err)
		}
	}
	return ix
}
