package domain

// Shipment груз к доставке. Неизменяемое значение:
// после загрузки данные груза никогда не меняются,
// поэтому решения могут безопасно делить указатели на грузы.
type Shipment struct {
	ID          string
	OrderID     string
	Volume      float64
	Weight      float64
	Origin      string
	Destination string
	Value       float64
}
