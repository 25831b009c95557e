package plan

import (
	"context"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	List(ctx context.Context, limit, offset int) ([]*Plan, int, error)
}

type CoverageRepository interface {
	Create(ctx context.Context, cc *CategoryCoverage) error
	// GetByPlanAndCategory returns (nil, nil) when the plan carries no
	// coverage row for the category.
	GetByPlanAndCategory(ctx context.Context, planID, categoryID uuid.UUID) (*CategoryCoverage, error)
	Update(ctx context.Context, cc *CategoryCoverage) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*CategoryCoverage, error)
}

type DetailRepository interface {
	Create(ctx context.Context, d *PlanDetail) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*PlanDetail, error)
	Includes(ctx context.Context, planID, subserviceID uuid.UUID) (bool, error)
}
