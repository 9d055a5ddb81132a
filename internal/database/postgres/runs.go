package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kozaktomas/faceval/internal/constants"
	"github.com/kozaktomas/faceval/internal/database"
)

// RunRepository stores detection evaluation reports.
type RunRepository struct {
	pool *Pool
}

// NewRunRepository creates a new PostgreSQL run repository.
func NewRunRepository(pool *Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveRun stores a run, the ID must be set by the caller.
func (r *RunRepository) SaveRun(ctx context.Context, run database.EvaluationRun) error {
	if run.ID == uuid.Nil {
		return errors.New("run ID is required")
	}

	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO evaluation_runs (id, pred_dir, truth_dir, iou_threshold, format, num_classes, map, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, run.ID, run.PredDir, run.TruthDir, run.Report.IoUThreshold, string(run.Report.Format),
		run.Report.NumClasses, run.Report.MAP, string(report))
	if err != nil {
		return fmt.Errorf("save evaluation run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, returns nil if not found.
func (r *RunRepository) GetRun(ctx context.Context, id uuid.UUID) (*database.EvaluationRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, created_at, pred_dir, truth_dir, report
		FROM evaluation_runs
		WHERE id = $1
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]database.EvaluationRun, error) {
	if limit <= 0 {
		limit = constants.RunListLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, pred_dir, truth_dir, report
		FROM evaluation_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluation runs: %w", err)
	}
	defer rows.Close()

	var runs []database.EvaluationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (*database.EvaluationRun, error) {
	var run database.EvaluationRun
	var report []byte
	if err := row.Scan(&run.ID, &run.CreatedAt, &run.PredDir, &run.TruthDir, &report); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap, sql.ErrNoRows must stay comparable
	}
	if err := json.Unmarshal(report, &run.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &run, nil
}
