package domain

import "container/heap"

// pqItem элемент очереди с приоритетом
type pqItem struct {
	Code     string
	Distance float64
}

// priorityQueue минимальная куча по расстоянию
type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].Distance < pq[j].Distance }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstraFrom выполняет алгоритм Дейкстры из одного источника.
// Возвращает расстояния до достижимых пунктов и карту родителей
// для восстановления путей.
func (n *Network) dijkstraFrom(src string) (map[string]float64, map[string]string) {
	dist := map[string]float64{src: 0}
	parent := make(map[string]string)
	done := make(map[string]bool)

	pq := &priorityQueue{{Code: src, Distance: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if done[item.Code] {
			continue
		}
		done[item.Code] = true

		for _, nb := range n.adjacency[item.Code] {
			if done[nb.Code] {
				continue
			}
			candidate := item.Distance + nb.Distance
			if cur, ok := dist[nb.Code]; !ok || candidate < cur {
				dist[nb.Code] = candidate
				parent[nb.Code] = item.Code
				heap.Push(pq, pqItem{Code: nb.Code, Distance: candidate})
			}
		}
	}

	return dist, parent
}
