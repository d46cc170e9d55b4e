package fuzzy

import (
	"fmt"
	"math"
)

// DefuzzMethod метод дефаззификации
type DefuzzMethod string

const (
	DefuzzCentroid DefuzzMethod = "centroid"
	DefuzzBisector DefuzzMethod = "bisector"
	DefuzzMOM      DefuzzMethod = "mom"
	DefuzzSOM      DefuzzMethod = "som"
	DefuzzLOM      DefuzzMethod = "lom"
)

// DefaultSpread относительный разброс при фаззификации чёткого значения
const DefaultSpread = 0.05

// Triangular треугольное нечёткое число (left, peak, right).
// Инвариант left <= right проверяется при создании; peak может
// выходить за границы носителя, это допустимо.
type Triangular struct {
	Left  float64
	Peak  float64
	Right float64
}

// New создаёт треугольное нечёткое число.
// Единственная недопустимая конфигурация: left > right.
func New(left, peak, right float64) (Triangular, error) {
	if left > right {
		return Triangular{}, fmt.Errorf("invalid triangular bounds: left %.4f > right %.4f", left, right)
	}
	return Triangular{Left: left, Peak: peak, Right: right}, nil
}

// MustNew создаёт число и паникует при некорректных границах.
// Для констант и тестов.
func MustNew(left, peak, right float64) Triangular {
	t, err := New(left, peak, right)
	if err != nil {
		panic(err)
	}
	return t
}

// FromCrisp фаззифицирует чёткое значение с симметричным
// относительным разбросом spread (по умолчанию DefaultSpread).
func FromCrisp(value, spread float64) Triangular {
	d := math.Abs(value) * spread
	return Triangular{Left: value - d, Peak: value, Right: value + d}
}

// Zero возвращает нулевое число
func Zero() Triangular {
	return Triangular{}
}

// Infinity возвращает сентинел бесконечной стоимости
func Infinity() Triangular {
	return Triangular{Left: math.Inf(1), Peak: math.Inf(1), Right: math.Inf(1)}
}

// IsInfinite проверяет, является ли число бесконечным
func (t Triangular) IsInfinite() bool {
	return math.IsInf(t.Peak, 1)
}

// Add покомпонентное сложение
func (t Triangular) Add(o Triangular) Triangular {
	return Triangular{
		Left:  t.Left + o.Left,
		Peak:  t.Peak + o.Peak,
		Right: t.Right + o.Right,
	}
}

// Sub вычитание по правилам нечёткой арифметики:
// границы результата берутся от противоположных границ вычитаемого.
func (t Triangular) Sub(o Triangular) Triangular {
	return Triangular{
		Left:  t.Left - o.Right,
		Peak:  t.Peak - o.Peak,
		Right: t.Right - o.Left,
	}
}

// Scale умножение на скаляр. При отрицательном множителе
// границы меняются местами, чтобы сохранить left <= right.
func (t Triangular) Scale(k float64) Triangular {
	if k < 0 {
		return Triangular{Left: t.Right * k, Peak: t.Peak * k, Right: t.Left * k}
	}
	return Triangular{Left: t.Left * k, Peak: t.Peak * k, Right: t.Right * k}
}

// Defuzzify приводит нечёткое число к чёткому значению.
// Неизвестный метод трактуется как centroid.
func (t Triangular) Defuzzify(method DefuzzMethod) float64 {
	switch method {
	case DefuzzBisector:
		return (t.Left + 2*t.Peak + t.Right) / 4
	case DefuzzMOM, DefuzzSOM, DefuzzLOM:
		// у треугольной функции принадлежности максимум один
		return t.Peak
	default:
		return (t.Left + t.Peak + t.Right) / 3
	}
}

// Centroid дефаззификация методом центра тяжести
func (t Triangular) Centroid() float64 {
	return t.Defuzzify(DefuzzCentroid)
}

// OverlapDegree степень перекрытия носителей двух чисел:
// отношение длины пересечения к длине объединения.
func (t Triangular) OverlapDegree(o Triangular) float64 {
	lo := math.Max(t.Left, o.Left)
	hi := math.Min(t.Right, o.Right)
	if hi < lo {
		return 0
	}
	span := math.Max(t.Right, o.Right) - math.Min(t.Left, o.Left)
	if span == 0 {
		// оба носителя вырождены в одну точку
		return 1.0
	}
	return (hi - lo) / span
}

// Dominance степень доминирования t над o для ранжирования решений.
// 0.5 при равных нулевых пиках, 1.0 если нулевой пик только у t,
// 0.0 если только у o, иначе 1 - степень перекрытия.
func (t Triangular) Dominance(o Triangular) float64 {
	tZero := t.Peak == 0
	oZero := o.Peak == 0
	switch {
	case tZero && oZero:
		return 0.5
	case tZero:
		return 1.0
	case oZero:
		return 0.0
	}
	return 1.0 - t.OverlapDegree(o)
}

// PossibilityDegree возможность того, что t <= o.
// Ветвление по порядку пиков оставлено как в исходной модели,
// хотя обе ветви вычисляют одну и ту же формулу.
func (t Triangular) PossibilityDegree(o Triangular) float64 {
	if t.Peak <= o.Peak {
		if t.Right <= o.Left {
			return 1.0
		}
		if o.Right <= t.Left {
			return 0.0
		}
		num := o.Right - t.Left
		den := (t.Right - t.Left) + (o.Right - o.Left)
		return math.Min(1.0, math.Max(0.0, num/den))
	}
	if t.Right <= o.Left {
		return 1.0
	}
	if o.Right <= t.Left {
		return 0.0
	}
	num := o.Right - t.Left
	den := (t.Right - t.Left) + (o.Right - o.Left)
	return math.Min(1.0, math.Max(0.0, num/den))
}

// String возвращает строковое представление
func (t Triangular) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", t.Left, t.Peak, t.Right)
}
