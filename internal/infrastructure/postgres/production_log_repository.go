package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/internal/domain/repository"
)

var _ repository.ProductionLogRepository = (*ProductionLogRepo)(nil)

// ProductionLogRepo implementación de ProductionLogRepository sobre PostgreSQL
// (usable con pool o tx). El desglose se persiste como JSONB: es un snapshot
// congelado, nunca se consulta por columnas.
type ProductionLogRepo struct {
	q Querier
}

// NewProductionLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionLogRepository(q Querier) *ProductionLogRepo {
	return &ProductionLogRepo{q: q}
}

// Create persiste un registro de producción con su desglose.
func (r *ProductionLogRepo) Create(ctx context.Context, log *entity.ProductionLog) error {
	breakdown, err := json.Marshal(log.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	query := `
		INSERT INTO production_logs (id, recipe_id, quantity_produced, ts, total_cost, cost_per_unit, breakdown, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
	_, err = r.q.Exec(ctx, query,
		log.ID, log.RecipeID, log.QuantityProduced, log.Timestamp,
		log.TotalCost, log.CostPerUnit, breakdown, log.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production log: %w", err)
	}
	return nil
}

const productionColumns = `id, recipe_id, quantity_produced, ts, total_cost, cost_per_unit, breakdown, created_by, created_at`

// GetByID obtiene un registro, nil si no existe.
func (r *ProductionLogRepo) GetByID(ctx context.Context, id string) (*entity.ProductionLog, error) {
	query := `SELECT ` + productionColumns + ` FROM production_logs WHERE id = $1`
	log, err := scanProductionLog(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production log: %w", err)
	}
	return log, nil
}

// ListBetween lista registros del rango [from, to] (cualquiera puede ser nil),
// más recientes primero, paginado. limit <= 0 lista todo.
func (r *ProductionLogRepo) ListBetween(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.ProductionLog, error) {
	query := `
		SELECT ` + productionColumns + `
		FROM production_logs
		WHERE ($1::timestamptz IS NULL OR ts >= $1)
		  AND ($2::timestamptz IS NULL OR ts <= $2)
		ORDER BY ts DESC
		LIMIT CASE WHEN $3 > 0 THEN $3 END OFFSET $4`
	rows, err := r.q.Query(ctx, query, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list production logs: %w", err)
	}
	defer rows.Close()
	return collectProductionLogs(rows)
}

// ListUntil devuelve todos los registros con ts <= until en orden ascendente,
// con su desglose (alimenta el replay del ledger).
func (r *ProductionLogRepo) ListUntil(ctx context.Context, until time.Time) ([]*entity.ProductionLog, error) {
	query := `
		SELECT ` + productionColumns + `
		FROM production_logs
		WHERE ts <= $1
		ORDER BY ts ASC, created_at ASC`
	rows, err := r.q.Query(ctx, query, until)
	if err != nil {
		return nil, fmt.Errorf("list production logs until: %w", err)
	}
	defer rows.Close()
	return collectProductionLogs(rows)
}

// HasForRecipe indica si la receta tiene producciones registradas.
func (r *ProductionLogRepo) HasForRecipe(ctx context.Context, recipeID string) (bool, error) {
	var has bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM production_logs WHERE recipe_id = $1)`, recipeID,
	).Scan(&has)
	if err != nil {
		return false, fmt.Errorf("has production logs: %w", err)
	}
	return has, nil
}

func collectProductionLogs(rows pgx.Rows) ([]*entity.ProductionLog, error) {
	var out []*entity.ProductionLog
	for rows.Next() {
		log, err := scanProductionLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production log: %w", err)
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

func scanProductionLog(row pgx.Row) (*entity.ProductionLog, error) {
	var log entity.ProductionLog
	var breakdown []byte
	if err := row.Scan(
		&log.ID, &log.RecipeID, &log.QuantityProduced, &log.Timestamp,
		&log.TotalCost, &log.CostPerUnit, &breakdown, &log.CreatedBy, &log.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &log.Breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
	}
	return &log, nil
}
