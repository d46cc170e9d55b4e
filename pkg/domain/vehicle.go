package domain

// Vehicle транспортное средство с текущим состоянием загрузки
type Vehicle struct {
	ID             string
	Type           string
	Length         float64
	Width          float64
	Height         float64
	MaxWeight      float64
	FuelCapacity   float64
	FuelEfficiency float64

	// Мутабельное состояние, управляется конструктором решения
	// и операторами окрестности
	CurrentVolume float64
	CurrentWeight float64
	Shipments     []*Shipment
}

// MaxVolume возвращает объём грузового отсека
func (v *Vehicle) MaxVolume() float64 {
	return v.Length * v.Width * v.Height
}

// CanFit проверяет жёсткое ограничение вместимости (без допуска)
func (v *Vehicle) CanFit(volume, weight float64) bool {
	return v.CurrentVolume+volume <= v.MaxVolume() &&
		v.CurrentWeight+weight <= v.MaxWeight
}

// CanFitWithTolerance проверяет вместимость с допуском первичной упаковки
func (v *Vehicle) CanFitWithTolerance(volume, weight float64) bool {
	return v.CurrentVolume+volume <= v.MaxVolume()*CapacityTolerance &&
		v.CurrentWeight+weight <= v.MaxWeight*CapacityTolerance
}

// Load добавляет груз без проверки ограничений
func (v *Vehicle) Load(s *Shipment) {
	v.Shipments = append(v.Shipments, s)
	v.CurrentVolume += s.Volume
	v.CurrentWeight += s.Weight
}

// UnloadAt удаляет груз по позиции и возвращает его
func (v *Vehicle) UnloadAt(i int) *Shipment {
	s := v.Shipments[i]
	v.Shipments = append(v.Shipments[:i], v.Shipments[i+1:]...)
	v.CurrentVolume -= s.Volume
	v.CurrentWeight -= s.Weight
	return s
}

// Reset очищает состояние загрузки
func (v *Vehicle) Reset() {
	v.Shipments = nil
	v.CurrentVolume = 0
	v.CurrentWeight = 0
}

// IsEmpty проверяет, пуст ли автомобиль
func (v *Vehicle) IsEmpty() bool {
	return len(v.Shipments) == 0
}

// VolumeUtilization возвращает заполнение по объёму в процентах
func (v *Vehicle) VolumeUtilization() float64 {
	maxVol := v.MaxVolume()
	if maxVol <= Epsilon {
		return 0
	}
	return v.CurrentVolume / maxVol * 100
}

// WeightUtilization возвращает заполнение по весу в процентах
func (v *Vehicle) WeightUtilization() float64 {
	if v.MaxWeight <= Epsilon {
		return 0
	}
	return v.CurrentWeight / v.MaxWeight * 100
}

// Destinations возвращает уникальные пункты назначения грузов
// в порядке первого появления
func (v *Vehicle) Destinations() []string {
	seen := make(map[string]bool, len(v.Shipments))
	var result []string
	for _, s := range v.Shipments {
		if !seen[s.Destination] {
			seen[s.Destination] = true
			result = append(result, s.Destination)
		}
	}
	return result
}

// Clone создаёт копию автомобиля. Грузы неизменяемы,
// поэтому указатели на них разделяются между копиями.
func (v *Vehicle) Clone() *Vehicle {
	clone := *v
	clone.Shipments = make([]*Shipment, len(v.Shipments))
	copy(clone.Shipments, v.Shipments)
	return &clone
}
