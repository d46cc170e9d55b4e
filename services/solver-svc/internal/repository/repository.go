package repository

import (
	"context"
	"errors"
	"time"
)

// Стандартные ошибки
var (
	ErrRunNotFound = errors.New("run not found")
)

// Run запись об одном запуске оптимизации
type Run struct {
	ID            string
	Scenario      string
	Strategy      string
	BestCost      float64
	CostLeft      float64
	CostPeak      float64
	CostRight     float64
	TotalDistance float64
	VehiclesUsed  int
	ShipmentCount int
	Iterations    int
	Accepted      int
	Rejected      int
	Improvements  int
	IsValid       bool
	Violations    []string
	Tags          []string
	ResultData    []byte // JSON
	CreatedAt     time.Time
}

// RunSummary краткая информация о запуске
type RunSummary struct {
	ID            string
	Scenario      string
	Strategy      string
	BestCost      float64
	TotalDistance float64
	VehiclesUsed  int
	Iterations    int
	IsValid       bool
	Tags          []string
	CreatedAt     time.Time
}

// ListFilter фильтры для списка
type ListFilter struct {
	Scenario  string
	Strategy  string
	ValidOnly bool
	Tags      []string
	MinCost   *float64
	MaxCost   *float64
	StartTime *time.Time
	EndTime   *time.Time
}

// SortOrder порядок сортировки
type SortOrder string

const (
	SortByCreatedDesc  SortOrder = "created_desc"
	SortByCreatedAsc   SortOrder = "created_asc"
	SortByBestCostAsc  SortOrder = "cost_asc"
	SortByBestCostDesc SortOrder = "cost_desc"
)

// ListOptions опции для списка
type ListOptions struct {
	Limit  int
	Offset int
	Filter *ListFilter
	Sort   SortOrder
}

// RunRepository интерфейс хранилища запусков
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error)

	// BestForScenario возвращает самый дешёвый валидный запуск сценария
	BestForScenario(ctx context.Context, scenario string) (*RunSummary, error)

	// PruneScenario оставляет keep последних запусков сценария,
	// остальные удаляет. Возвращает число удалённых записей.
	PruneScenario(ctx context.Context, scenario string, keep int) (int64, error)
}
