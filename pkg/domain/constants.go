package domain

import "math"

// Математические константы
const (
	Epsilon  = 1e-9
	Infinity = math.MaxFloat64
)

// CapacityTolerance допуск по вместимости при первичной упаковке.
// Операторы поиска используют жёсткую границу без допуска.
const CapacityTolerance = 1.001

// FloatEquals сравнивает два float64 с учётом Epsilon
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// FloatLess проверяет a < b с учётом Epsilon
func FloatLess(a, b float64) bool {
	return a < b-Epsilon
}

// IsUnreachable проверяет, означает ли расстояние недостижимость
func IsUnreachable(d float64) bool {
	return math.IsInf(d, 1) || d >= Infinity
}
