package domain

import (
	"math"
	"sort"
	"sync"

	"cvrp/pkg/fuzzy"
)

// distKey ключ кэша расстояний
type distKey struct {
	From string
	To   string
}

// neighbor смежный пункт с весом ребра
type neighbor struct {
	Code     string
	Distance float64
	Conn     *Connection
}

// Network транспортная сеть: неориентированный взвешенный граф
// над кодами пунктов. Топология неизменна после построения,
// лениво заполняется только кэш расстояний.
type Network struct {
	locations  map[string]*Location
	order      []string // порядок вставки, определяет разрешение ничьих
	adjacency  map[string][]neighbor
	codeToName map[string]string
	nameToCode map[string]string

	distCache map[distKey]float64
	mu        sync.RWMutex
}

// NewNetwork строит сеть из пунктов и рёбер.
// Ребро, ссылающееся на отсутствующий пункт, отбрасывается
// без ошибки. При precompute кэш расстояний заполняется
// полностью алгоритмом Дейкстры из каждого пункта.
func NewNetwork(locations []*Location, connections []*Connection, precompute bool) *Network {
	n := &Network{
		locations:  make(map[string]*Location, len(locations)),
		adjacency:  make(map[string][]neighbor),
		codeToName: make(map[string]string, len(locations)),
		nameToCode: make(map[string]string, len(locations)),
		distCache:  make(map[distKey]float64),
	}

	for _, loc := range locations {
		if _, exists := n.locations[loc.Code]; !exists {
			n.order = append(n.order, loc.Code)
		}
		n.locations[loc.Code] = loc
		n.codeToName[loc.Code] = loc.Name
		n.nameToCode[loc.Name] = loc.Code
	}

	for _, c := range connections {
		if _, ok := n.locations[c.A]; !ok {
			continue
		}
		if _, ok := n.locations[c.B]; !ok {
			continue
		}
		n.adjacency[c.A] = append(n.adjacency[c.A], neighbor{Code: c.B, Distance: c.Distance, Conn: c})
		n.adjacency[c.B] = append(n.adjacency[c.B], neighbor{Code: c.A, Distance: c.Distance, Conn: c})
	}

	if precompute {
		n.precomputeDistances()
	}

	return n
}

// precomputeDistances заполняет кэш всеми парами расстояний
func (n *Network) precomputeDistances() {
	for _, src := range n.order {
		dist, _ := n.dijkstraFrom(src)
		for _, dst := range n.order {
			d, ok := dist[dst]
			if !ok {
				d = math.Inf(1)
			}
			n.distCache[distKey{From: src, To: dst}] = d
			n.distCache[distKey{From: dst, To: src}] = d
		}
	}
}

// GetLocation возвращает пункт по коду
func (n *Network) GetLocation(code string) (*Location, bool) {
	loc, ok := n.locations[code]
	return loc, ok
}

// GetCountry возвращает страну пункта, пустую строку для неизвестного кода
func (n *Network) GetCountry(code string) string {
	if loc, ok := n.locations[code]; ok {
		return loc.Country
	}
	return ""
}

// CodeByName возвращает код пункта по отображаемому имени
func (n *Network) CodeByName(name string) (string, bool) {
	code, ok := n.nameToCode[name]
	return code, ok
}

// NameByCode возвращает отображаемое имя пункта по коду
func (n *Network) NameByCode(code string) (string, bool) {
	name, ok := n.codeToName[code]
	return name, ok
}

// LocationCount возвращает количество пунктов
func (n *Network) LocationCount() int {
	return len(n.locations)
}

// Depot возвращает первый склад отправления в порядке вставки
func (n *Network) Depot() (*Location, bool) {
	for _, code := range n.order {
		if n.locations[code].IsDepot() {
			return n.locations[code], true
		}
	}
	return nil, false
}

// ShortestPathLength возвращает длину кратчайшего пути между
// пунктами. Недостижимость не является ошибкой: возвращается
// +Inf, которое распространяется дальше арифметически.
func (n *Network) ShortestPathLength(a, b string) float64 {
	if a == b {
		return 0
	}

	n.mu.RLock()
	if d, ok := n.distCache[distKey{From: a, To: b}]; ok {
		n.mu.RUnlock()
		return d
	}
	n.mu.RUnlock()

	if _, ok := n.locations[a]; !ok {
		return math.Inf(1)
	}
	if _, ok := n.locations[b]; !ok {
		return math.Inf(1)
	}

	dist, _ := n.dijkstraFrom(a)
	d, ok := dist[b]
	if !ok {
		d = math.Inf(1)
	}

	n.mu.Lock()
	n.distCache[distKey{From: a, To: b}] = d
	n.distCache[distKey{From: b, To: a}] = d
	n.mu.Unlock()

	return d
}

// ShortestPath возвращает последовательность пунктов кратчайшего
// пути; второй результат false означает отсутствие пути.
func (n *Network) ShortestPath(a, b string) ([]string, bool) {
	if a == b {
		return []string{a}, true
	}
	if _, ok := n.locations[a]; !ok {
		return nil, false
	}
	if _, ok := n.locations[b]; !ok {
		return nil, false
	}

	dist, parent := n.dijkstraFrom(a)
	if _, ok := dist[b]; !ok {
		return nil, false
	}

	var path []string
	for cur := b; ; {
		path = append([]string{cur}, path...)
		if cur == a {
			break
		}
		p, ok := parent[cur]
		if !ok {
			return nil, false
		}
		cur = p
	}
	return path, true
}

// FindNearestNeighbors возвращает до n ближайших пунктов по
// возрастанию расстояния; ничьи разрешаются порядком вставки.
func (net *Network) FindNearestNeighbors(code string, n int) []string {
	if _, ok := net.locations[code]; !ok || n <= 0 {
		return nil
	}

	type candidate struct {
		Code     string
		Distance float64
	}
	var candidates []candidate
	for _, other := range net.order {
		if other == code {
			continue
		}
		d := net.ShortestPathLength(code, other)
		if IsUnreachable(d) {
			continue
		}
		candidates = append(candidates, candidate{Code: other, Distance: d})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	result := make([]string, len(candidates))
	for i, c := range candidates {
		result[i] = c.Code
	}
	return result
}

// FuzzyPathTime возвращает нечёткое время проезда вдоль
// кратчайшего пути; при отсутствии пути возвращается
// бесконечный сентинел стоимости.
func (n *Network) FuzzyPathTime(a, b string) fuzzy.Triangular {
	path, ok := n.ShortestPath(a, b)
	if !ok {
		return fuzzy.Infinity()
	}

	total := fuzzy.Zero()
	for i := 0; i+1 < len(path); i++ {
		conn := n.connectionBetween(path[i], path[i+1])
		if conn == nil {
			return fuzzy.Infinity()
		}
		total = total.Add(conn.FuzzyTravelTime())
	}
	return total
}

// connectionBetween возвращает ребро между смежными пунктами
func (n *Network) connectionBetween(a, b string) *Connection {
	for _, nb := range n.adjacency[a] {
		if nb.Code == b {
			return nb.Conn
		}
	}
	return nil
}
