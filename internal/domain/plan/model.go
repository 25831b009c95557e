package plan

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a commercial insurance product. Coverage limits hang off it per
// service category; the subservices it includes hang off it as details.
type Plan struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryCoverage is the limit a plan grants for one service category.
// At most one row per (plan, category). AnnualMax is an event count, not an
// amount. MonthlyCap of 0 means no monthly cap.
type CategoryCoverage struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PlanID     uuid.UUID `db:"plan_id" json:"plan_id"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	Unlimited  bool      `db:"unlimited" json:"unlimited"`
	AnnualMax  int       `db:"annual_max" json:"annual_max"`
	MonthlyCap int       `db:"monthly_cap" json:"monthly_cap"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PlanDetail marks one subservice as included in a plan. Only included
// subservices are selectable when attaching services to an order.
type PlanDetail struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PlanID       uuid.UUID `db:"plan_id" json:"plan_id"`
	SubserviceID uuid.UUID `db:"subservice_id" json:"subservice_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
