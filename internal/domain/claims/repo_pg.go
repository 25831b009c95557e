package claims

import (
	"context"
	"errors"
	"time"

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

// -- Incident PG Repo --

type incidentRepoPG struct{ pool *pgxpool.Pool }

func NewIncidentRepoPG(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepoPG{pool: pool}
}

const incidentCols = `id, seq, beneficiary_id, reported_at, description, state, created_at, updated_at`

func scanIncident(row pgx.Row) (*Incident, error) {
	var in Incident
	err := row.Scan(&in.ID, &in.Seq, &in.BeneficiaryID, &in.ReportedAt, &in.Description, &in.State, &in.CreatedAt, &in.UpdatedAt)
	return &in, err
}

func (r *incidentRepoPG) Create(ctx context.Context, in *Incident) error {
	in.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO incident (id, beneficiary_id, reported_at, description, state)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING seq`,
		in.ID, in.BeneficiaryID, in.ReportedAt, in.Description, in.State).Scan(&in.Seq)
}

func (r *incidentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	in, err := scanIncident(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+incidentCols+` FROM incident WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("incident %s", id)
		}
		return nil, err
	}
	return in, nil
}

func (r *incidentRepoPG) Update(ctx context.Context, in *Incident) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE incident SET description=$2, state=$3, updated_at=NOW()
		WHERE id = $1`,
		in.ID, in.Description, in.State)
	return err
}

func (r *incidentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM incident WHERE id = $1`, id)
	return err
}

// -- ServiceOrder PG Repo --

type orderRepoPG struct{ pool *pgxpool.Pool }

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository {
	return &orderRepoPG{pool: pool}
}

const orderCols = `incident_id, number, care_site_id, state, reference_amount, exonerated,
	issued_at, deadline_at, approver_id, authorized_at, rejection_reason,
	invoice_number, control_number, invoice_issued_at, invoice_received_at,
	amount_ves, amount_usd, fx_rate, created_at, updated_at`

func scanOrder(row pgx.Row) (*ServiceOrder, error) {
	var o ServiceOrder
	err := row.Scan(&o.IncidentID, &o.Number, &o.CareSiteID, &o.State, &o.ReferenceAmount, &o.Exonerated,
		&o.IssuedAt, &o.DeadlineAt, &o.ApproverID, &o.AuthorizedAt, &o.RejectionReason,
		&o.InvoiceNumber, &o.ControlNumber, &o.InvoiceIssuedAt, &o.InvoiceReceivedAt,
		&o.AmountVES, &o.AmountUSD, &o.FXRate, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *orderRepoPG) Create(ctx context.Context, o *ServiceOrder) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO service_order (incident_id, number, care_site_id, state, reference_amount, exonerated, issued_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.IncidentID, o.Number, o.CareSiteID, o.State, o.ReferenceAmount, o.Exonerated, o.IssuedAt)
	return err
}

func (r *orderRepoPG) getByID(ctx context.Context, incidentID uuid.UUID, lock string) (*ServiceOrder, error) {
	o, err := scanOrder(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderCols+` FROM service_order WHERE incident_id = $1`+lock, incidentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("order %s", incidentID)
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepoPG) GetByID(ctx context.Context, incidentID uuid.UUID) (*ServiceOrder, error) {
	return r.getByID(ctx, incidentID, ``)
}

func (r *orderRepoPG) GetByIDForUpdate(ctx context.Context, incidentID uuid.UUID) (*ServiceOrder, error) {
	return r.getByID(ctx, incidentID, ` FOR UPDATE`)
}

func (r *orderRepoPG) Update(ctx context.Context, o *ServiceOrder) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE service_order SET number=$2, state=$3, reference_amount=$4, exonerated=$5,
			deadline_at=$6, approver_id=$7, authorized_at=$8, rejection_reason=$9,
			invoice_number=$10, control_number=$11, invoice_issued_at=$12, invoice_received_at=$13,
			amount_ves=$14, amount_usd=$15, fx_rate=$16, updated_at=NOW()
		WHERE incident_id = $1`,
		o.IncidentID, o.Number, o.State, o.ReferenceAmount, o.Exonerated,
		o.DeadlineAt, o.ApproverID, o.AuthorizedAt, o.RejectionReason,
		o.InvoiceNumber, o.ControlNumber, o.InvoiceIssuedAt, o.InvoiceReceivedAt,
		o.AmountVES, o.AmountUSD, o.FXRate)
	return err
}

func (r *orderRepoPG) List(ctx context.Context, limit, offset int) ([]*ServiceOrder, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM service_order`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+orderCols+` FROM service_order ORDER BY issued_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func (r *orderRepoPG) ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID, limit, offset int) ([]*ServiceOrder, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT COUNT(*) FROM service_order o
		JOIN incident i ON i.id = o.incident_id
		WHERE i.beneficiary_id = $1`, beneficiaryID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+prefixedOrderCols("o.")+` FROM service_order o
		JOIN incident i ON i.id = o.incident_id
		WHERE i.beneficiary_id = $1
		ORDER BY o.issued_at DESC LIMIT $2 OFFSET $3`, beneficiaryID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func prefixedOrderCols(prefix string) string {
	return prefix + `incident_id, ` + prefix + `number, ` + prefix + `care_site_id, ` + prefix + `state, ` +
		prefix + `reference_amount, ` + prefix + `exonerated, ` + prefix + `issued_at, ` + prefix + `deadline_at, ` +
		prefix + `approver_id, ` + prefix + `authorized_at, ` + prefix + `rejection_reason, ` +
		prefix + `invoice_number, ` + prefix + `control_number, ` + prefix + `invoice_issued_at, ` +
		prefix + `invoice_received_at, ` + prefix + `amount_ves, ` + prefix + `amount_usd, ` + prefix + `fx_rate, ` +
		prefix + `created_at, ` + prefix + `updated_at`
}

func (r *orderRepoPG) ReplaceServices(ctx context.Context, incidentID uuid.UUID, feeItemIDs []uuid.UUID) error {
	c := conn(ctx, r.pool)
	if _, err := c.Exec(ctx, `DELETE FROM order_service WHERE order_id = $1`, incidentID); err != nil {
		return err
	}
	for _, id := range feeItemIDs {
		if _, err := c.Exec(ctx, `INSERT INTO order_service (order_id, fee_item_id) VALUES ($1,$2)`, incidentID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepoPG) ServiceIDs(ctx context.Context, incidentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT fee_item_id FROM order_service WHERE order_id = $1`, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *orderRepoPG) CountTouchingCategory(ctx context.Context, beneficiaryID, categoryID uuid.UUID, from, to time.Time, excludeOrderID uuid.UUID) (int, error) {
	var count int
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT COUNT(DISTINCT o.incident_id)
		FROM service_order o
		JOIN incident i ON i.id = o.incident_id
		JOIN order_service os ON os.order_id = o.incident_id
		JOIN fee_schedule_item f ON f.id = os.fee_item_id
		JOIN subservice s ON s.id = f.subservice_id
		WHERE i.beneficiary_id = $1
		  AND s.category_id = $2
		  AND o.issued_at >= $3 AND o.issued_at < $4
		  AND o.state NOT IN ($5, $6)
		  AND o.incident_id <> $7`,
		beneficiaryID, categoryID, from, to, StateRejected, StateSuspended, excludeOrderID).Scan(&count)
	return count, err
}

func (r *orderRepoPG) SubserviceUsage(ctx context.Context, beneficiaryID uuid.UUID, from, to time.Time) ([]*SubserviceUsage, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT s.id, s.code, COUNT(*)
		FROM service_order o
		JOIN incident i ON i.id = o.incident_id
		JOIN order_service os ON os.order_id = o.incident_id
		JOIN fee_schedule_item f ON f.id = os.fee_item_id
		JOIN subservice s ON s.id = f.subservice_id
		WHERE i.beneficiary_id = $1
		  AND o.issued_at >= $2 AND o.issued_at < $3
		  AND o.state NOT IN ($4, $5)
		GROUP BY s.id, s.code
		ORDER BY s.code`,
		beneficiaryID, from, to, StateRejected, StateSuspended)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SubserviceUsage
	for rows.Next() {
		var u SubserviceUsage
		if err := rows.Scan(&u.SubserviceID, &u.Code, &u.Count); err != nil {
			return nil, err
		}
		items = append(items, &u)
	}
	return items, rows.Err()
}

func (r *orderRepoPG) ListNotifiedPastDeadline(ctx context.Context, asOf time.Time) ([]*ServiceOrder, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+orderCols+` FROM service_order
		WHERE state = $1 AND deadline_at IS NOT NULL AND deadline_at < $2`,
		StateNotified, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
