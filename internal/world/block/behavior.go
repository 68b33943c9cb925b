package block

// Behavior определяет свойства категории тайла
type Behavior struct {
	Name      string // Имя категории, совпадает с ключом ассета
	Merges    bool   // Соединяется с соседями той же категории (вариант зависит от соседей)
	Buildable bool   // Может быть заказана через очередь строительства
}
