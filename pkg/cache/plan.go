package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// PlanCache специализированный кэш готовых планов развозки.
// Повторный запуск идентичного сценария отдаётся из кэша
// без запуска поиска.
type PlanCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedPlanResult кэшированный результат оптимизации
type CachedPlanResult struct {
	CostLeft        float64             `json:"cost_left"`
	CostPeak        float64             `json:"cost_peak"`
	CostRight       float64             `json:"cost_right"`
	DefuzzifiedCost float64             `json:"defuzzified_cost"`
	Valid           bool                `json:"valid"`
	Iterations      int                 `json:"iterations"`
	TotalDistance   float64             `json:"total_distance"`
	Assignments     map[string][]string `json:"assignments"` // vehicle id -> ordered shipment ids
	ComputedAt      time.Time           `json:"computed_at"`
}

// NewPlanCache создаёт кэш планов
func NewPlanCache(cache Cache, defaultTTL time.Duration) *PlanCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &PlanCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный план по хешу сценария и стратегии
func (pc *PlanCache) Get(ctx context.Context, scenarioHash, strategy string) (*CachedPlanResult, bool, error) {
	key := BuildPlanKey(scenarioHash, strategy)

	data, err := pc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedPlanResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённый кэш — удаляем, ошибку удаления игнорируем намеренно
		_ = pc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set сохраняет план в кэш
func (pc *PlanCache) Set(ctx context.Context, scenarioHash, strategy string, result *CachedPlanResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = pc.defaultTTL
	}

	key := BuildPlanKey(scenarioHash, strategy)
	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return pc.cache.Set(ctx, key, data, ttl)
}

// Invalidate удаляет все планы для сценария
func (pc *PlanCache) Invalidate(ctx context.Context, scenarioHash string) error {
	pattern := fmt.Sprintf("plan:*:%s", scenarioHash)
	_, err := pc.cache.DeleteByPattern(ctx, pattern)
	return err
}

// InvalidateAll удаляет весь кэш планов
func (pc *PlanCache) InvalidateAll(ctx context.Context) (int64, error) {
	return pc.cache.DeleteByPattern(ctx, "plan:*")
}
