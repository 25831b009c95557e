package enrollment

import (
	"context"
	"errors"
	"fmt"

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

// -- Client PG Repo --

type clientRepoPG struct{ pool *pgxpool.Pool }

func NewClientRepoPG(pool *pgxpool.Pool) ClientRepository {
	return &clientRepoPG{pool: pool}
}

const clientCols = `id, name, tax_id, active, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var cl Client
	err := row.Scan(&cl.ID, &cl.Name, &cl.TaxID, &cl.Active, &cl.CreatedAt, &cl.UpdatedAt)
	return &cl, err
}

func (r *clientRepoPG) Create(ctx context.Context, cl *Client) error {
	cl.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO client (id, name, tax_id, active)
		VALUES ($1,$2,$3,$4)`,
		cl.ID, cl.Name, cl.TaxID, cl.Active)
	return err
}

func (r *clientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	cl, err := scanClient(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+clientCols+` FROM client WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("client %s", id)
		}
		return nil, err
	}
	return cl, nil
}

func (r *clientRepoPG) Update(ctx context.Context, cl *Client) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE client SET name=$2, tax_id=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		cl.ID, cl.Name, cl.TaxID, cl.Active)
	return err
}

func (r *clientRepoPG) List(ctx context.Context, limit, offset int) ([]*Client, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM client`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+clientCols+` FROM client ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Client
	for rows.Next() {
		cl, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cl)
	}
	return items, total, rows.Err()
}

// -- Contract PG Repo --

type contractRepoPG struct{ pool *pgxpool.Pool }

func NewContractRepoPG(pool *pgxpool.Pool) ContractRepository {
	return &contractRepoPG{pool: pool}
}

const contractCols = `id, client_id, plan_id, number, insurer, entity, start_date, end_date, active, created_at, updated_at`

func scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.PlanID, &c.Number, &c.Insurer, &c.Entity,
		&c.StartDate, &c.EndDate, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *contractRepoPG) Create(ctx context.Context, c *Contract) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO contract (id, client_id, plan_id, number, insurer, entity, start_date, end_date, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.ClientID, c.PlanID, c.Number, c.Insurer, c.Entity, c.StartDate, c.EndDate, c.Active)
	return err
}

func (r *contractRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	c, err := scanContract(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+contractCols+` FROM contract WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("contract %s", id)
		}
		return nil, err
	}
	return c, nil
}

func (r *contractRepoPG) GetByNumber(ctx context.Context, number string) (*Contract, error) {
	c, err := scanContract(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+contractCols+` FROM contract WHERE number = $1`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("contract number %s", number)
		}
		return nil, err
	}
	return c, nil
}

func (r *contractRepoPG) Update(ctx context.Context, c *Contract) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE contract SET plan_id=$2, number=$3, insurer=$4, entity=$5, start_date=$6, end_date=$7, active=$8, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.PlanID, c.Number, c.Insurer, c.Entity, c.StartDate, c.EndDate, c.Active)
	return err
}

func (r *contractRepoPG) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Contract, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+contractCols+` FROM contract WHERE client_id = $1 ORDER BY start_date DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// -- Beneficiary PG Repo --

type beneficiaryRepoPG struct{ pool *pgxpool.Pool }

func NewBeneficiaryRepoPG(pool *pgxpool.Pool) BeneficiaryRepository {
	return &beneficiaryRepoPG{pool: pool}
}

const beneficiaryCols = `id, contract_id, document_id, full_name, birth_date, relationship, status, termination_date, created_at, updated_at`

func scanBeneficiary(row pgx.Row) (*Beneficiary, error) {
	var b Beneficiary
	err := row.Scan(&b.ID, &b.ContractID, &b.DocumentID, &b.FullName, &b.BirthDate,
		&b.Relationship, &b.Status, &b.TerminationDate, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *beneficiaryRepoPG) Create(ctx context.Context, b *Beneficiary) error {
	b.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO beneficiary (id, contract_id, document_id, full_name, birth_date, relationship, status, termination_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.ContractID, b.DocumentID, b.FullName, b.BirthDate, b.Relationship, b.Status, b.TerminationDate)
	return err
}

func (r *beneficiaryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error) {
	b, err := scanBeneficiary(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+beneficiaryCols+` FROM beneficiary WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("beneficiary %s", id)
		}
		return nil, err
	}
	return b, nil
}

func (r *beneficiaryRepoPG) GetByDocument(ctx context.Context, documentID string) (*Beneficiary, error) {
	b, err := scanBeneficiary(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+beneficiaryCols+` FROM beneficiary WHERE document_id = $1`, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("beneficiary document %s", documentID)
		}
		return nil, err
	}
	return b, nil
}

func (r *beneficiaryRepoPG) Update(ctx context.Context, b *Beneficiary) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE beneficiary SET document_id=$2, full_name=$3, birth_date=$4, relationship=$5, status=$6, termination_date=$7, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.DocumentID, b.FullName, b.BirthDate, b.Relationship, b.Status, b.TerminationDate)
	return err
}

func (r *beneficiaryRepoPG) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*Beneficiary, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+beneficiaryCols+` FROM beneficiary WHERE contract_id = $1 ORDER BY full_name`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Beneficiary
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *beneficiaryRepoPG) Search(ctx context.Context, q SearchQuery, limit, offset int) ([]*Beneficiary, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	if q.Text != "" {
		p := next()
		where += ` AND (b.full_name ILIKE '%' || ` + p + ` || '%' OR b.document_id ILIKE '%' || ` + p + ` || '%')`
		args = append(args, q.Text)
	}
	if q.ClientID != uuid.Nil {
		where += ` AND c.client_id = ` + next()
		args = append(args, q.ClientID)
	}
	if q.Insurer != "" {
		where += ` AND c.insurer = ` + next()
		args = append(args, q.Insurer)
	}
	if q.Entity != "" {
		where += ` AND c.entity = ` + next()
		args = append(args, q.Entity)
	}

	base := ` FROM beneficiary b JOIN contract c ON c.id = b.contract_id ` + where

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	cols := `b.id, b.contract_id, b.document_id, b.full_name, b.birth_date, b.relationship, b.status, b.termination_date, b.created_at, b.updated_at`
	sql := `SELECT ` + cols + base + ` ORDER BY b.full_name LIMIT ` + next()
	args = append(args, limit)
	sql += ` OFFSET ` + next()
	args = append(args, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Beneficiary
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}
