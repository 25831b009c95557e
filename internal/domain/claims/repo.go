package claims

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aegis-health/aegis/internal/domain/catalog"
	"github.com/aegis-health/aegis/internal/domain/enrollment"
	"github.com/aegis-health/aegis/internal/domain/plan"
)

type IncidentRepository interface {
	// Create assigns the incident id and its monotonically increasing seq.
	Create(ctx context.Context, in *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	Update(ctx context.Context, in *Incident) error
	// Delete removes the incident and, by cascade, its order and attached
	// services.
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *ServiceOrder) error
	GetByID(ctx context.Context, incidentID uuid.UUID) (*ServiceOrder, error)
	// GetByIDForUpdate locks the order row for the life of the surrounding
	// transaction.
	GetByIDForUpdate(ctx context.Context, incidentID uuid.UUID) (*ServiceOrder, error)
	Update(ctx context.Context, o *ServiceOrder) error
	List(ctx context.Context, limit, offset int) ([]*ServiceOrder, int, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID, limit, offset int) ([]*ServiceOrder, int, error)

	// ReplaceServices swaps the order's attached fee schedule items for the
	// given set.
	ReplaceServices(ctx context.Context, incidentID uuid.UUID, feeItemIDs []uuid.UUID) error
	ServiceIDs(ctx context.Context, incidentID uuid.UUID) ([]uuid.UUID, error)

	// CountTouchingCategory counts how many of the beneficiary's orders
	// issued within [from, to) touch the category through at least one
	// attached item. Each order counts once regardless of how many of its
	// items fall in the category. REJECTED and SUSPENDED orders are out of
	// scope, as is excludeOrderID.
	CountTouchingCategory(ctx context.Context, beneficiaryID, categoryID uuid.UUID, from, to time.Time, excludeOrderID uuid.UUID) (int, error)

	// SubserviceUsage tallies attached subservices across the beneficiary's
	// in-scope orders issued within [from, to).
	SubserviceUsage(ctx context.Context, beneficiaryID uuid.UUID, from, to time.Time) ([]*SubserviceUsage, error)

	// ListNotifiedPastDeadline returns NOTIFIED orders whose activation
	// deadline fell strictly before asOf.
	ListNotifiedPastDeadline(ctx context.Context, asOf time.Time) ([]*ServiceOrder, error)
}

// EnrollmentReader is the slice of the enrollment service the claims engine
// needs.
type EnrollmentReader interface {
	GetBeneficiary(ctx context.Context, id uuid.UUID) (*enrollment.Beneficiary, error)
	GetContract(ctx context.Context, id uuid.UUID) (*enrollment.Contract, error)
	CheckEligibility(ctx context.Context, beneficiaryID uuid.UUID, asOf time.Time) (enrollment.EligibilityResult, error)
}

// PlanReader exposes the plan coverage catalog to the claims engine.
type PlanReader interface {
	GetCoverage(ctx context.Context, planID, categoryID uuid.UUID) (*plan.CategoryCoverage, error)
	CoveragesByPlan(ctx context.Context, planID uuid.UUID) ([]*plan.CategoryCoverage, error)
	Includes(ctx context.Context, planID, subserviceID uuid.UUID) (bool, error)
}

// CatalogReader exposes provider and fee schedule lookups to the claims
// engine.
type CatalogReader interface {
	GetCareSite(ctx context.Context, id uuid.UUID) (*catalog.CareSite, error)
	GetSubservice(ctx context.Context, id uuid.UUID) (*catalog.Subservice, error)
	FeeItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.FeeScheduleItem, error)
}

// TxRunner executes fn inside a database transaction carried on the context.
// Tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
