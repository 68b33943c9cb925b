package vec

import "fmt"

// Vec2 представляет целочисленные 2D координаты (клетка сетки или пиксель)
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Mul умножает вектор на скаляр (клетка -> пиксели при умножении на размер тайла)
func (v Vec2) Mul(scalar int) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

// FloorDiv делит координаты с округлением вниз.
// В отличие от оператора /, отрицательные пиксели попадают в клетку -1, а не 0.
func (v Vec2) FloorDiv(d int) Vec2 {
	return Vec2{X: floorDiv(v.X, d), Y: floorDiv(v.Y, d)}
}

// Min возвращает покомпонентный минимум
func (v Vec2) Min(other Vec2) Vec2 {
	return Vec2{X: min(v.X, other.X), Y: min(v.Y, other.Y)}
}

// Max возвращает покомпонентный максимум
func (v Vec2) Max(other Vec2) Vec2 {
	return Vec2{X: max(v.X, other.X), Y: max(v.Y, other.Y)}
}

// String возвращает строковое представление "(x,y)"
func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

func floorDiv(a, d int) int {
	q := a / d
	if (a%d != 0) && ((a < 0) != (d < 0)) {
		q--
	}
	return q
}
