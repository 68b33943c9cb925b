package world

import "github.com/Kjarrigan/base-builder/internal/world/block"

// Friends содержит соседей той же базовой категории, по направлениям
type Friends map[Direction]*Tile

// Connectivity собирает маску направлений, в которых есть друзья
func (f Friends) Connectivity() Connectivity {
	var c Connectivity
	for d := range f {
		c = c.With(d)
	}
	return c
}

// friendsOf возвращает соседей той же базовой категории, не изменяя тайл
func (g *Grid) friendsOf(t *Tile) Friends {
	friends := make(Friends, directionCount)
	for _, d := range Directions {
		nb, ok := g.Tile(t.pos.Add(d.Offset()))
		if ok && nb.category == t.category {
			friends[d] = nb
		}
	}
	return friends
}

// Reclassify пересчитывает соединения тайла по текущим соседям.
// Сравнивается только базовая категория. Маска сохраняется лишь для соединяемых
// категорий; друзья возвращаются всегда, чтобы вызывающий мог обновить их.
func (g *Grid) Reclassify(t *Tile) Friends {
	friends := g.friendsOf(t)

	var conn Connectivity
	if t.category.Merges() {
		conn = friends.Connectivity()
	}
	if conn != t.connectivity {
		t.connectivity = conn
		g.markChanged(t.pos)
	}
	return friends
}

// ApplyAndPropagate меняет категорию тайла и на один шаг обновляет соседей.
//
// Пересчитываются сам тайл, его друзья по новой категории и бывшие друзья по старой:
// отношение к изменённому тайлу есть только у них, а их собственные соседи не менялись.
// После возврата соединения всех тайлов сетки совпадают с полным пересчётом.
func (g *Grid) ApplyAndPropagate(t *Tile, category block.Category) {
	former := g.friendsOf(t)

	g.SetCategory(t, category)
	friends := g.Reclassify(t)

	for _, f := range friends {
		g.Reclassify(f)
	}
	for d, f := range former {
		if friends[d] != f {
			g.Reclassify(f)
		}
	}
}

// Rescan пересчитывает соединения всех тайлов сетки
func (g *Grid) Rescan() {
	g.Each(func(t *Tile) {
		g.Reclassify(t)
	})
}
