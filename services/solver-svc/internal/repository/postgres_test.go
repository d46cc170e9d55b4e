package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// MOCK DB ADAPTER
// ============================================================

type pgxMockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *pgxMockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}

func (a *pgxMockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}

func (a *pgxMockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}

func (a *pgxMockAdapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, txOptions)
}

func (a *pgxMockAdapter) Close() {
	a.mock.Close()
}

func (a *pgxMockAdapter) Ping(ctx context.Context) error {
	return a.mock.Ping(ctx)
}

// ============================================================
// HELPER FUNCTIONS
// ============================================================

func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRunRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	adapter := &pgxMockAdapter{mock: mock}
	repo := NewPostgresRunRepository(adapter)

	return mock, repo
}

// textArray создаёт pgtype.Array[string] для тестов
func textArray(elems []string) pgtype.Array[string] {
	if elems == nil {
		return pgtype.Array[string]{Valid: false}
	}
	return pgtype.Array[string]{
		Elements: elems,
		Valid:    true,
		Dims:     []pgtype.ArrayDimension{{Length: int32(len(elems)), LowerBound: 1}},
	}
}

func sampleRun() *Run {
	return &Run{
		Scenario:      "scenario-abc123",
		Strategy:      "ffd_grouped",
		BestCost:      14250.5,
		CostLeft:      13000,
		CostPeak:      14250.5,
		CostRight:     15800,
		TotalDistance: 4820,
		VehiclesUsed:  3,
		ShipmentCount: 17,
		Iterations:    1000,
		Accepted:      412,
		Rejected:      588,
		Improvements:  23,
		IsValid:       true,
		Violations:    []string{},
		Tags:          []string{"nightly"},
		ResultData:    []byte(`{"is_valid":true}`),
	}
}

// ============================================================
// CREATE TESTS
// ============================================================

func TestPostgresRunRepository_Create_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	ctx := context.Background()
	now := time.Now()
	run := sampleRun()

	mock.ExpectQuery("INSERT INTO optimization_runs").
		WithArgs(
			pgxmock.AnyArg(), // generated UUID
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
			pgxmock.AnyArg(), // violations
			pgxmock.AnyArg(), // tags
			run.ResultData,
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	err := repo.Create(ctx, run)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID, "ID should be generated when empty")
	assert.Equal(t, now, run.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_Create_KeepsExplicitID(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	run := sampleRun()
	run.ID = "run-fixed-id"

	mock.ExpectQuery("INSERT INTO optimization_runs").
		WithArgs(
			"run-fixed-id",
			run.Scenario, run.Strategy, run.BestCost,
			run.CostLeft, run.CostPeak, run.CostRight,
			run.TotalDistance, run.VehiclesUsed, run.ShipmentCount,
			run.Iterations, run.Accepted, run.Rejected, run.Improvements,
			run.IsValid, pgxmock.AnyArg(), pgxmock.AnyArg(), run.ResultData,
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	err := repo.Create(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "run-fixed-id", run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_Create_DBError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO optimization_runs").
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create run")
}

// ============================================================
// GET TESTS
// ============================================================

func TestPostgresRunRepository_GetByID_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "scenario", "strategy", "best_cost",
		"cost_left", "cost_peak", "cost_right",
		"total_distance", "vehicles_used", "shipment_count",
		"iterations", "accepted", "rejected", "improvements",
		"is_valid", "violations", "tags", "result_data", "created_at",
	}).AddRow(
		"run-1", "scenario-abc123", "ffd_grouped", 14250.5,
		13000.0, 14250.5, 15800.0,
		4820.0, 3, 17,
		1000, 412, 588, 23,
		true, textArray([]string{}), textArray([]string{"nightly"}),
		[]byte(`{"is_valid":true}`), now,
	)

	mock.ExpectQuery("SELECT(.+)FROM optimization_runs").
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.GetByID(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "scenario-abc123", run.Scenario)
	assert.Equal(t, "ffd_grouped", run.Strategy)
	assert.Equal(t, 14250.5, run.BestCost)
	assert.Equal(t, 3, run.VehiclesUsed)
	assert.Equal(t, []string{"nightly"}, run.Tags)
	assert.True(t, run.IsValid)
}

func TestPostgresRunRepository_GetByID_NotFound(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM optimization_runs").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	run, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// ============================================================
// DELETE TESTS
// ============================================================

func TestPostgresRunRepository_Delete_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM optimization_runs").
		WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "run-1")
	assert.NoError(t, err)
}

func TestPostgresRunRepository_Delete_NotFound(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM optimization_runs").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// ============================================================
// LIST TESTS
// ============================================================

func summaryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "scenario", "strategy", "best_cost", "total_distance",
		"vehicles_used", "iterations", "is_valid", "tags", "created_at",
	})
}

func TestPostgresRunRepository_List_Defaults(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT(.+)FROM optimization_runs").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	mock.ExpectQuery("SELECT(.+)FROM optimization_runs(.+)ORDER BY created_at DESC").
		WithArgs(20, 0).
		WillReturnRows(summaryRows().
			AddRow("run-2", "scenario-abc123", "ffd", 13100.0, 4500.0, 3, 1000, true, textArray(nil), time.Now()).
			AddRow("run-1", "scenario-abc123", "random", 15100.0, 5200.0, 4, 1000, false, textArray(nil), time.Now()))

	results, total, err := repo.List(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, results, 2)
	assert.Equal(t, "run-2", results[0].ID)
	assert.Equal(t, 13100.0, results[0].BestCost)
}

func TestPostgresRunRepository_List_WithFilters(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	minCost := 1000.0

	mock.ExpectQuery("SELECT COUNT(.+)FROM optimization_runs").
		WithArgs("scenario-abc123", "ffd_grouped", pgxmock.AnyArg(), minCost).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT(.+)FROM optimization_runs(.+)ORDER BY best_cost ASC").
		WithArgs("scenario-abc123", "ffd_grouped", pgxmock.AnyArg(), minCost, 10, 0).
		WillReturnRows(summaryRows().
			AddRow("run-3", "scenario-abc123", "ffd_grouped", 12900.0, 4100.0, 3, 1000, true, textArray([]string{"nightly"}), time.Now()))

	opts := &ListOptions{
		Limit: 10,
		Sort:  SortByBestCostAsc,
		Filter: &ListFilter{
			Scenario:  "scenario-abc123",
			Strategy:  "ffd_grouped",
			ValidOnly: true,
			Tags:      []string{"nightly"},
			MinCost:   &minCost,
		},
	}

	results, total, err := repo.List(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"nightly"}, results[0].Tags)
}

func TestPostgresRunRepository_List_CapsLimit(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT(.+)FROM optimization_runs").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

	mock.ExpectQuery("SELECT(.+)FROM optimization_runs").
		WithArgs(100, 0).
		WillReturnRows(summaryRows())

	_, _, err := repo.List(context.Background(), &ListOptions{Limit: 5000})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================
// BEST FOR SCENARIO TESTS
// ============================================================

func TestPostgresRunRepository_BestForScenario_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM optimization_runs(.+)ORDER BY best_cost ASC").
		WithArgs("scenario-abc123").
		WillReturnRows(summaryRows().
			AddRow("run-best", "scenario-abc123", "ffd_grouped", 12500.0, 4000.0, 3, 1000, true, textArray(nil), time.Now()))

	best, err := repo.BestForScenario(context.Background(), "scenario-abc123")
	require.NoError(t, err)

	assert.Equal(t, "run-best", best.ID)
	assert.Equal(t, 12500.0, best.BestCost)
	assert.True(t, best.IsValid)
}

func TestPostgresRunRepository_BestForScenario_NoRuns(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM optimization_runs").
		WithArgs("empty-scenario").
		WillReturnRows(summaryRows())

	best, err := repo.BestForScenario(context.Background(), "empty-scenario")
	assert.Nil(t, best)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// ============================================================
// PRUNE TESTS
// ============================================================

func TestPostgresRunRepository_PruneScenario_RemovesStale(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM optimization_runs(.+)OFFSET").
		WithArgs("scenario-abc123", 5).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).
			AddRow("run-old-1").
			AddRow("run-old-2"))
	mock.ExpectExec("DELETE FROM optimization_runs WHERE id = ANY").
		WithArgs([]string{"run-old-1", "run-old-2"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	pruned, err := repo.PruneScenario(context.Background(), "scenario-abc123", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_PruneScenario_NothingToPrune(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM optimization_runs(.+)OFFSET").
		WithArgs("scenario-abc123", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	pruned, err := repo.PruneScenario(context.Background(), "scenario-abc123", 10)
	require.NoError(t, err)
	assert.Zero(t, pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_PruneScenario_RollsBackOnError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM optimization_runs(.+)OFFSET").
		WithArgs("scenario-abc123", 0).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	_, err := repo.PruneScenario(context.Background(), "scenario-abc123", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select stale runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}
