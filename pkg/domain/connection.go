package domain

import (
	"fmt"

	"cvrp/pkg/fuzzy"
)

// RoadType тип дороги
type RoadType int

const (
	RoadTypeUnspecified RoadType = iota
	RoadTypeHighway
	RoadTypeNational
	RoadTypeMountain
	RoadTypeLocal
)

// String возвращает строковое представление типа дороги
func (r RoadType) String() string {
	switch r {
	case RoadTypeHighway:
		return "highway"
	case RoadTypeNational:
		return "national"
	case RoadTypeMountain:
		return "mountain"
	case RoadTypeLocal:
		return "local"
	default:
		return "unspecified"
	}
}

// TimeWindow временное окно с коэффициентом задержки
type TimeWindow struct {
	From   string
	To     string
	Factor float64
}

// Connection ненаправленное ребро сети между двумя пунктами.
// Концы хранятся в каноническом порядке (A <= B лексикографически),
// поэтому (x,y) и (y,x) дают одно и то же ребро.
type Connection struct {
	A        string
	B        string
	Distance float64
	BaseTime float64
	Road     RoadType
	Windows  []TimeWindow
}

// NewConnection создаёт ребро с канонизацией порядка концов
func NewConnection(from, to string, distance, baseTime float64, road RoadType, windows []TimeWindow) *Connection {
	a, b := from, to
	if b < a {
		a, b = b, a
	}
	return &Connection{
		A:        a,
		B:        b,
		Distance: distance,
		BaseTime: baseTime,
		Road:     road,
		Windows:  windows,
	}
}

// Key возвращает канонический ключ ребра
func (c *Connection) Key() string {
	return fmt.Sprintf("%s-%s", c.A, c.B)
}

// Connects проверяет, соединяет ли ребро указанную пару пунктов
func (c *Connection) Connects(x, y string) bool {
	if y < x {
		x, y = y, x
	}
	return c.A == x && c.B == y
}

// FuzzyTravelTime выводит нечёткое время проезда из базового времени
// и коэффициентов задержки временных окон:
// left из минимального коэффициента, right из максимального,
// пик из среднего коэффициента в диапазоне [1.1, 1.5]
// (если таких нет, пик равен базовому времени).
func (c *Connection) FuzzyTravelTime() fuzzy.Triangular {
	if len(c.Windows) == 0 {
		return fuzzy.Triangular{Left: c.BaseTime, Peak: c.BaseTime, Right: c.BaseTime}
	}

	minF := c.Windows[0].Factor
	maxF := c.Windows[0].Factor
	var midSum float64
	var midCount int
	for _, w := range c.Windows {
		if w.Factor < minF {
			minF = w.Factor
		}
		if w.Factor > maxF {
			maxF = w.Factor
		}
		if w.Factor >= 1.1 && w.Factor <= 1.5 {
			midSum += w.Factor
			midCount++
		}
	}

	peak := c.BaseTime
	if midCount > 0 {
		peak = c.BaseTime * midSum / float64(midCount)
	}

	return fuzzy.Triangular{
		Left:  c.BaseTime * minF,
		Peak:  peak,
		Right: c.BaseTime * maxF,
	}
}
