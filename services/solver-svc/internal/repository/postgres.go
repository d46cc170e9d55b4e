package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq"

	"cvrp/pkg/database"
	"cvrp/pkg/telemetry"
)

// PostgresRunRepository PostgreSQL реализация
type PostgresRunRepository struct {
	db database.DB
}

// NewPostgresRunRepository создаёт новый репозиторий
func NewPostgresRunRepository(db database.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

func (r *PostgresRunRepository) Create(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Create")
	defer span.End()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	query := `
		INSERT INTO optimization_runs (
			id, scenario, strategy, best_cost,
			cost_left, cost_peak, cost_right,
			total_distance, vehicles_used, shipment_count,
			iterations, accepted, rejected, improvements,
			is_valid, violations, tags, result_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		run.ID,
		run.Scenario,
		run.Strategy,
		run.BestCost,
		run.CostLeft,
		run.CostPeak,
		run.CostRight,
		run.TotalDistance,
		run.VehiclesUsed,
		run.ShipmentCount,
		run.Iterations,
		run.Accepted,
		run.Rejected,
		run.Improvements,
		run.IsValid,
		pq.Array(run.Violations),
		pq.Array(run.Tags),
		run.ResultData,
	).Scan(&run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

func (r *PostgresRunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.GetByID")
	defer span.End()

	query := `
		SELECT
			id, scenario, strategy, best_cost,
			cost_left, cost_peak, cost_right,
			total_distance, vehicles_used, shipment_count,
			iterations, accepted, rejected, improvements,
			is_valid, violations, tags, result_data, created_at
		FROM optimization_runs
		WHERE id = $1
	`

	run := &Run{}
	var violations, tags pgtype.Array[string]

	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Scenario,
		&run.Strategy,
		&run.BestCost,
		&run.CostLeft,
		&run.CostPeak,
		&run.CostRight,
		&run.TotalDistance,
		&run.VehiclesUsed,
		&run.ShipmentCount,
		&run.Iterations,
		&run.Accepted,
		&run.Rejected,
		&run.Improvements,
		&run.IsValid,
		&violations,
		&tags,
		&run.ResultData,
		&run.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Violations = violations.Elements
	run.Tags = tags.Elements

	return run, nil
}

func (r *PostgresRunRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Delete")
	defer span.End()

	query := `DELETE FROM optimization_runs WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRunNotFound
	}

	return nil
}

func (r *PostgresRunRepository) List(
	ctx context.Context,
	opts *ListOptions,
) ([]*RunSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.List")
	defer span.End()

	if opts == nil {
		opts = &ListOptions{Limit: 20, Offset: 0, Sort: SortByCreatedDesc}
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	where, args := r.buildWhereClause(opts.Filter)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM optimization_runs WHERE %s`, where)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	orderBy := r.buildOrderBy(opts.Sort)

	selectQuery := fmt.Sprintf(`
		SELECT
			id, scenario, strategy, best_cost, total_distance,
			vehicles_used, iterations, is_valid, tags, created_at
		FROM optimization_runs
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)+1, len(args)+2)

	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []*RunSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return results, total, nil
}

func (r *PostgresRunRepository) BestForScenario(ctx context.Context, scenario string) (*RunSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.BestForScenario")
	defer span.End()

	query := `
		SELECT
			id, scenario, strategy, best_cost, total_distance,
			vehicles_used, iterations, is_valid, tags, created_at
		FROM optimization_runs
		WHERE scenario = $1 AND is_valid
		ORDER BY best_cost ASC, created_at DESC
		LIMIT 1
	`

	rows, err := r.db.Query(ctx, query, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to query best run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows iteration error: %w", err)
		}
		return nil, ErrRunNotFound
	}

	return scanSummary(rows)
}

// PruneScenario выбирает идентификаторы устаревших запусков и удаляет их
// в одной транзакции, чтобы параллельная вставка не попала под нож.
func (r *PostgresRunRepository) PruneScenario(ctx context.Context, scenario string, keep int) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.PruneScenario")
	defer span.End()

	if keep < 0 {
		keep = 0
	}

	var pruned int64
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			SELECT id FROM optimization_runs
			WHERE scenario = $1
			ORDER BY created_at DESC
			OFFSET $2
		`

		rows, err := tx.Query(ctx, query, scenario, keep)
		if err != nil {
			return fmt.Errorf("failed to select stale runs: %w", err)
		}
		defer rows.Close()

		var stale []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("failed to scan run id: %w", err)
			}
			stale = append(stale, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows iteration error: %w", err)
		}

		if len(stale) == 0 {
			return nil
		}

		result, err := tx.Exec(ctx,
			`DELETE FROM optimization_runs WHERE id = ANY($1)`, stale)
		if err != nil {
			return fmt.Errorf("failed to delete stale runs: %w", err)
		}

		pruned = result.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return pruned, nil
}

func scanSummary(rows pgx.Rows) (*RunSummary, error) {
	summary := &RunSummary{}
	var tags pgtype.Array[string]

	err := rows.Scan(
		&summary.ID,
		&summary.Scenario,
		&summary.Strategy,
		&summary.BestCost,
		&summary.TotalDistance,
		&summary.VehiclesUsed,
		&summary.Iterations,
		&summary.IsValid,
		&tags,
		&summary.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	summary.Tags = tags.Elements
	return summary, nil
}

func (r *PostgresRunRepository) buildWhereClause(filter *ListFilter) (string, []any) {
	conditions := []string{"TRUE"}
	var args []any
	argNum := 1

	if filter != nil {
		if filter.Scenario != "" {
			conditions = append(conditions, fmt.Sprintf("scenario = $%d", argNum))
			args = append(args, filter.Scenario)
			argNum++
		}

		if filter.Strategy != "" {
			conditions = append(conditions, fmt.Sprintf("strategy = $%d", argNum))
			args = append(args, filter.Strategy)
			argNum++
		}

		if filter.ValidOnly {
			conditions = append(conditions, "is_valid")
		}

		if len(filter.Tags) > 0 {
			conditions = append(conditions, fmt.Sprintf("tags && $%d", argNum))
			args = append(args, pq.Array(filter.Tags))
			argNum++
		}

		if filter.MinCost != nil {
			conditions = append(conditions, fmt.Sprintf("best_cost >= $%d", argNum))
			args = append(args, *filter.MinCost)
			argNum++
		}

		if filter.MaxCost != nil {
			conditions = append(conditions, fmt.Sprintf("best_cost <= $%d", argNum))
			args = append(args, *filter.MaxCost)
			argNum++
		}

		if filter.StartTime != nil {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
			args = append(args, *filter.StartTime)
			argNum++
		}

		if filter.EndTime != nil {
			conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argNum))
			args = append(args, *filter.EndTime)
		}
	}

	return strings.Join(conditions, " AND "), args
}

func (r *PostgresRunRepository) buildOrderBy(sort SortOrder) string {
	switch sort {
	case SortByCreatedAsc:
		return "created_at ASC"
	case SortByBestCostAsc:
		return "best_cost ASC"
	case SortByBestCostDesc:
		return "best_cost DESC"
	default:
		return "created_at DESC"
	}
}
