package catalog

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

func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFoundf(format, args...)
	}
	return err
}

// -- Provider PG Repo --

type providerRepoPG struct{ pool *pgxpool.Pool }

func NewProviderRepoPG(pool *pgxpool.Pool) ProviderRepository {
	return &providerRepoPG{pool: pool}
}

const providerCols = `id, name, tax_id, active, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.TaxID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *providerRepoPG) Create(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO provider (id, name, tax_id, active)
		VALUES ($1,$2,$3,$4)`,
		p.ID, p.Name, p.TaxID, p.Active)
	return err
}

func (r *providerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	p, err := scanProvider(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+providerCols+` FROM provider WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "provider %s", id)
	}
	return p, nil
}

func (r *providerRepoPG) Update(ctx context.Context, p *Provider) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE provider SET name=$2, tax_id=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.TaxID, p.Active)
	return err
}

func (r *providerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM provider WHERE id = $1`, id)
	return err
}

func (r *providerRepoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM provider`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+providerCols+` FROM provider ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// -- CareSite PG Repo --

type careSiteRepoPG struct{ pool *pgxpool.Pool }

func NewCareSiteRepoPG(pool *pgxpool.Pool) CareSiteRepository {
	return &careSiteRepoPG{pool: pool}
}

const careSiteCols = `id, provider_id, name, address, city, phone, active, created_at, updated_at`

func scanCareSite(row pgx.Row) (*CareSite, error) {
	var cs CareSite
	err := row.Scan(&cs.ID, &cs.ProviderID, &cs.Name, &cs.Address, &cs.City, &cs.Phone, &cs.Active, &cs.CreatedAt, &cs.UpdatedAt)
	return &cs, err
}

func (r *careSiteRepoPG) Create(ctx context.Context, cs *CareSite) error {
	cs.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO care_site (id, provider_id, name, address, city, phone, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		cs.ID, cs.ProviderID, cs.Name, cs.Address, cs.City, cs.Phone, cs.Active)
	return err
}

func (r *careSiteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CareSite, error) {
	cs, err := scanCareSite(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+careSiteCols+` FROM care_site WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "care site %s", id)
	}
	return cs, nil
}

func (r *careSiteRepoPG) Update(ctx context.Context, cs *CareSite) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE care_site SET name=$2, address=$3, city=$4, phone=$5, active=$6, updated_at=NOW()
		WHERE id = $1`,
		cs.ID, cs.Name, cs.Address, cs.City, cs.Phone, cs.Active)
	return err
}

func (r *careSiteRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM care_site WHERE id = $1`, id)
	return err
}

func (r *careSiteRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*CareSite, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+careSiteCols+` FROM care_site WHERE provider_id = $1 ORDER BY name`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CareSite
	for rows.Next() {
		cs, err := scanCareSite(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cs)
	}
	return items, rows.Err()
}

// -- ServiceCategory PG Repo --

type serviceCategoryRepoPG struct{ pool *pgxpool.Pool }

func NewServiceCategoryRepoPG(pool *pgxpool.Pool) ServiceCategoryRepository {
	return &serviceCategoryRepoPG{pool: pool}
}

const categoryCols = `id, name, active, created_at, updated_at`

func scanCategory(row pgx.Row) (*ServiceCategory, error) {
	var sc ServiceCategory
	err := row.Scan(&sc.ID, &sc.Name, &sc.Active, &sc.CreatedAt, &sc.UpdatedAt)
	return &sc, err
}

func (r *serviceCategoryRepoPG) Create(ctx context.Context, sc *ServiceCategory) error {
	sc.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO service_category (id, name, active)
		VALUES ($1,$2,$3)`,
		sc.ID, sc.Name, sc.Active)
	return err
}

func (r *serviceCategoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceCategory, error) {
	sc, err := scanCategory(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+categoryCols+` FROM service_category WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "service category %s", id)
	}
	return sc, nil
}

func (r *serviceCategoryRepoPG) Update(ctx context.Context, sc *ServiceCategory) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE service_category SET name=$2, active=$3, updated_at=NOW()
		WHERE id = $1`,
		sc.ID, sc.Name, sc.Active)
	return err
}

func (r *serviceCategoryRepoPG) List(ctx context.Context, limit, offset int) ([]*ServiceCategory, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM service_category`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+categoryCols+` FROM service_category ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ServiceCategory
	for rows.Next() {
		sc, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, sc)
	}
	return items, total, rows.Err()
}

// -- Subservice PG Repo --

type subserviceRepoPG struct{ pool *pgxpool.Pool }

func NewSubserviceRepoPG(pool *pgxpool.Pool) SubserviceRepository {
	return &subserviceRepoPG{pool: pool}
}

const subserviceCols = `id, category_id, code, description, active, created_at, updated_at`

func scanSubservice(row pgx.Row) (*Subservice, error) {
	var s Subservice
	err := row.Scan(&s.ID, &s.CategoryID, &s.Code, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *subserviceRepoPG) Create(ctx context.Context, s *Subservice) error {
	s.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO subservice (id, category_id, code, description, active)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.CategoryID, s.Code, s.Description, s.Active)
	return err
}

func (r *subserviceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Subservice, error) {
	s, err := scanSubservice(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+subserviceCols+` FROM subservice WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "subservice %s", id)
	}
	return s, nil
}

func (r *subserviceRepoPG) GetByCode(ctx context.Context, code string) (*Subservice, error) {
	s, err := scanSubservice(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+subserviceCols+` FROM subservice WHERE code = $1`, code))
	if err != nil {
		return nil, notFoundOr(err, "subservice code %s", code)
	}
	return s, nil
}

func (r *subserviceRepoPG) Update(ctx context.Context, s *Subservice) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE subservice SET category_id=$2, code=$3, description=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.CategoryID, s.Code, s.Description, s.Active)
	return err
}

func (r *subserviceRepoPG) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Subservice, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+subserviceCols+` FROM subservice WHERE category_id = $1 ORDER BY code`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Subservice
	for rows.Next() {
		s, err := scanSubservice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *subserviceRepoPG) List(ctx context.Context, limit, offset int) ([]*Subservice, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM subservice`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+subserviceCols+` FROM subservice ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Subservice
	for rows.Next() {
		s, err := scanSubservice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// -- FeeSchedule PG Repo --

type feeScheduleRepoPG struct{ pool *pgxpool.Pool }

func NewFeeScheduleRepoPG(pool *pgxpool.Pool) FeeScheduleRepository {
	return &feeScheduleRepoPG{pool: pool}
}

const feeItemCols = `id, provider_id, subservice_id, price, active, created_at, updated_at`

func scanFeeItem(row pgx.Row) (*FeeScheduleItem, error) {
	var f FeeScheduleItem
	err := row.Scan(&f.ID, &f.ProviderID, &f.SubserviceID, &f.Price, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	return &f, err
}

func (r *feeScheduleRepoPG) Create(ctx context.Context, f *FeeScheduleItem) error {
	f.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO fee_schedule_item (id, provider_id, subservice_id, price, active)
		VALUES ($1,$2,$3,$4,$5)`,
		f.ID, f.ProviderID, f.SubserviceID, f.Price, f.Active)
	return err
}

func (r *feeScheduleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*FeeScheduleItem, error) {
	f, err := scanFeeItem(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+feeItemCols+` FROM fee_schedule_item WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "fee schedule item %s", id)
	}
	return f, nil
}

func (r *feeScheduleRepoPG) GetByProviderAndSubservice(ctx context.Context, providerID, subserviceID uuid.UUID) (*FeeScheduleItem, error) {
	f, err := scanFeeItem(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+feeItemCols+` FROM fee_schedule_item WHERE provider_id = $1 AND subservice_id = $2 AND active`, providerID, subserviceID))
	if err != nil {
		return nil, notFoundOr(err, "fee schedule item for provider %s subservice %s", providerID, subserviceID)
	}
	return f, nil
}

func (r *feeScheduleRepoPG) Update(ctx context.Context, f *FeeScheduleItem) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE fee_schedule_item SET price=$2, active=$3, updated_at=NOW()
		WHERE id = $1`,
		f.ID, f.Price, f.Active)
	return err
}

func (r *feeScheduleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM fee_schedule_item WHERE id = $1`, id)
	return err
}

func (r *feeScheduleRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*FeeScheduleItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+feeItemCols+` FROM fee_schedule_item WHERE provider_id = $1 ORDER BY created_at`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*FeeScheduleItem
	for rows.Next() {
		f, err := scanFeeItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (r *feeScheduleRepoPG) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*FeeScheduleItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+feeItemCols+` FROM fee_schedule_item WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*FeeScheduleItem
	for rows.Next() {
		f, err := scanFeeItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
