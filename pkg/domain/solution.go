package domain

// Solution распределение грузов по автомобилям.
// Инвариант: каждый груз рабочего набора находится ровно
// в одном автомобиле; порядок грузов внутри автомобиля значим.
type Solution struct {
	Vehicles []*Vehicle
}

// NewSolution создаёт решение над переданным парком
func NewSolution(vehicles []*Vehicle) *Solution {
	return &Solution{Vehicles: vehicles}
}

// Clone создаёт глубокую копию решения. Копируются обёртки
// автомобилей и списки грузов; сами грузы разделяются.
func (s *Solution) Clone() *Solution {
	vehicles := make([]*Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		vehicles[i] = v.Clone()
	}
	return &Solution{Vehicles: vehicles}
}

// ActiveVehicles возвращает автомобили хотя бы с одним грузом
func (s *Solution) ActiveVehicles() []*Vehicle {
	var result []*Vehicle
	for _, v := range s.Vehicles {
		if !v.IsEmpty() {
			result = append(result, v)
		}
	}
	return result
}

// VehicleByID возвращает автомобиль по идентификатору
func (s *Solution) VehicleByID(id string) (*Vehicle, bool) {
	for _, v := range s.Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}

// ShipmentCount возвращает общее число грузов в решении
func (s *Solution) ShipmentCount() int {
	var n int
	for _, v := range s.Vehicles {
		n += len(v.Shipments)
	}
	return n
}

// TotalVolume возвращает суммарный объём грузов в решении
func (s *Solution) TotalVolume() float64 {
	var total float64
	for _, v := range s.Vehicles {
		total += v.CurrentVolume
	}
	return total
}

// TotalWeight возвращает суммарный вес грузов в решении
func (s *Solution) TotalWeight() float64 {
	var total float64
	for _, v := range s.Vehicles {
		total += v.CurrentWeight
	}
	return total
}
