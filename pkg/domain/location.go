package domain

// LocationKind тип пункта сети
type LocationKind int

const (
	LocationKindUnspecified LocationKind = iota
	LocationKindDepot
	LocationKindBorderCrossing
	LocationKindDelivery
)

// String возвращает строковое представление типа пункта
func (k LocationKind) String() string {
	switch k {
	case LocationKindDepot:
		return "depot"
	case LocationKindBorderCrossing:
		return "border_crossing"
	case LocationKindDelivery:
		return "delivery"
	default:
		return "unspecified"
	}
}

// OperatingHours окно работы пункта
type OperatingHours struct {
	Open  string
	Close string
}

// Location пункт транспортной сети
type Location struct {
	Code    string
	Name    string
	Country string
	Kind    LocationKind
	Hours   OperatingHours
}

// IsDepot проверяет, является ли пункт складом отправления
func (l *Location) IsDepot() bool {
	return l.Kind == LocationKindDepot
}

// IsBorderCrossing проверяет, является ли пункт пограничным переходом
func (l *Location) IsBorderCrossing() bool {
	return l.Kind == LocationKindBorderCrossing
}
