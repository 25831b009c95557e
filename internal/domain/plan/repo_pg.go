package plan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aegis-health/aegis/internal/platform/apperr"
	"github.com/aegis-health/aegis/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Plan PG Repo --

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository {
	return &planRepoPG{pool: pool}
}

const planCols = `id, name, description, active, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *planRepoPG) Create(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO plan (id, name, description, active)
		VALUES ($1,$2,$3,$4)`,
		p.ID, p.Name, p.Description, p.Active)
	return err
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := scanPlan(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+planCols+` FROM plan WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("plan %s", id)
		}
		return nil, err
	}
	return p, nil
}

func (r *planRepoPG) Update(ctx context.Context, p *Plan) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE plan SET name=$2, description=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Active)
	return err
}

func (r *planRepoPG) List(ctx context.Context, limit, offset int) ([]*Plan, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM plan`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+planCols+` FROM plan ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// -- CategoryCoverage PG Repo --

type coverageRepoPG struct{ pool *pgxpool.Pool }

func NewCoverageRepoPG(pool *pgxpool.Pool) CoverageRepository {
	return &coverageRepoPG{pool: pool}
}

const coverageCols = `id, plan_id, category_id, unlimited, annual_max, monthly_cap, created_at, updated_at`

func scanCoverage(row pgx.Row) (*CategoryCoverage, error) {
	var cc CategoryCoverage
	err := row.Scan(&cc.ID, &cc.PlanID, &cc.CategoryID, &cc.Unlimited, &cc.AnnualMax, &cc.MonthlyCap, &cc.CreatedAt, &cc.UpdatedAt)
	return &cc, err
}

func (r *coverageRepoPG) Create(ctx context.Context, cc *CategoryCoverage) error {
	cc.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO category_coverage (id, plan_id, category_id, unlimited, annual_max, monthly_cap)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		cc.ID, cc.PlanID, cc.CategoryID, cc.Unlimited, cc.AnnualMax, cc.MonthlyCap)
	return err
}

func (r *coverageRepoPG) GetByPlanAndCategory(ctx context.Context, planID, categoryID uuid.UUID) (*CategoryCoverage, error) {
	cc, err := scanCoverage(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+coverageCols+` FROM category_coverage WHERE plan_id = $1 AND category_id = $2`, planID, categoryID))
	if err != nil {
		// Absence of coverage is meaningful, not an error.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return cc, nil
}

func (r *coverageRepoPG) Update(ctx context.Context, cc *CategoryCoverage) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE category_coverage SET unlimited=$2, annual_max=$3, monthly_cap=$4, updated_at=NOW()
		WHERE id = $1`,
		cc.ID, cc.Unlimited, cc.AnnualMax, cc.MonthlyCap)
	return err
}

func (r *coverageRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM category_coverage WHERE id = $1`, id)
	return err
}

func (r *coverageRepoPG) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*CategoryCoverage, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+coverageCols+` FROM category_coverage WHERE plan_id = $1 ORDER BY created_at`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CategoryCoverage
	for rows.Next() {
		cc, err := scanCoverage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cc)
	}
	return items, rows.Err()
}

// -- PlanDetail PG Repo --

type detailRepoPG struct{ pool *pgxpool.Pool }

func NewDetailRepoPG(pool *pgxpool.Pool) DetailRepository {
	return &detailRepoPG{pool: pool}
}

const detailCols = `id, plan_id, subservice_id, created_at`

func scanDetail(row pgx.Row) (*PlanDetail, error) {
	var d PlanDetail
	err := row.Scan(&d.ID, &d.PlanID, &d.SubserviceID, &d.CreatedAt)
	return &d, err
}

func (r *detailRepoPG) Create(ctx context.Context, d *PlanDetail) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO plan_detail (id, plan_id, subservice_id)
		VALUES ($1,$2,$3)`,
		d.ID, d.PlanID, d.SubserviceID)
	return err
}

func (r *detailRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM plan_detail WHERE id = $1`, id)
	return err
}

func (r *detailRepoPG) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*PlanDetail, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+detailCols+` FROM plan_detail WHERE plan_id = $1 ORDER BY created_at`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PlanDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *detailRepoPG) Includes(ctx context.Context, planID, subserviceID uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM plan_detail WHERE plan_id = $1 AND subservice_id = $2)`, planID, subserviceID).Scan(&exists)
	return exists, err
}
