package plan

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/aegis-health/aegis/internal/platform/apperr"
)

type Service struct {
	plans     PlanRepository
	coverages CoverageRepository
	details   DetailRepository
}

func NewService(plans PlanRepository, coverages CoverageRepository, details DetailRepository) *Service {
	return &Service{plans: plans, coverages: coverages, details: details}
}

// -- Plans --

func (s *Service) CreatePlan(ctx context.Context, p *Plan) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validationf("plan name is required")
	}
	return s.plans.Create(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) UpdatePlan(ctx context.Context, p *Plan) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validationf("plan name is required")
	}
	if _, err := s.plans.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.plans.Update(ctx, p)
}

func (s *Service) ListPlans(ctx context.Context, limit, offset int) ([]*Plan, int, error) {
	return s.plans.List(ctx, limit, offset)
}

// -- Coverage catalog --

// GetCoverage looks up the limit a plan grants for a category. A nil result
// with nil error means the plan does not cover the category at all, which is
// different from a zero-limit coverage row.
func (s *Service) GetCoverage(ctx context.Context, planID, categoryID uuid.UUID) (*CategoryCoverage, error) {
	return s.coverages.GetByPlanAndCategory(ctx, planID, categoryID)
}

func (s *Service) CreateCoverage(ctx context.Context, cc *CategoryCoverage) error {
	if err := validateCoverage(cc); err != nil {
		return err
	}
	if _, err := s.plans.GetByID(ctx, cc.PlanID); err != nil {
		return err
	}
	existing, err := s.coverages.GetByPlanAndCategory(ctx, cc.PlanID, cc.CategoryID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Validationf("plan already covers category %s", cc.CategoryID)
	}
	return s.coverages.Create(ctx, cc)
}

func (s *Service) UpdateCoverage(ctx context.Context, cc *CategoryCoverage) error {
	if err := validateCoverage(cc); err != nil {
		return err
	}
	return s.coverages.Update(ctx, cc)
}

func (s *Service) DeleteCoverage(ctx context.Context, id uuid.UUID) error {
	return s.coverages.Delete(ctx, id)
}

func (s *Service) CoveragesByPlan(ctx context.Context, planID uuid.UUID) ([]*CategoryCoverage, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, err
	}
	return s.coverages.ListByPlan(ctx, planID)
}

func validateCoverage(cc *CategoryCoverage) error {
	if cc.AnnualMax < 0 {
		return apperr.Validationf("annual max must not be negative")
	}
	if cc.MonthlyCap < 0 {
		return apperr.Validationf("monthly cap must not be negative")
	}
	if !cc.Unlimited && cc.AnnualMax == 0 {
		return apperr.Validationf("limited coverage requires an annual max")
	}
	return nil
}

// -- Plan details --

func (s *Service) AddDetail(ctx context.Context, d *PlanDetail) error {
	if _, err := s.plans.GetByID(ctx, d.PlanID); err != nil {
		return err
	}
	included, err := s.details.Includes(ctx, d.PlanID, d.SubserviceID)
	if err != nil {
		return err
	}
	if included {
		return apperr.Validationf("plan already includes subservice %s", d.SubserviceID)
	}
	return s.details.Create(ctx, d)
}

func (s *Service) RemoveDetail(ctx context.Context, id uuid.UUID) error {
	return s.details.Delete(ctx, id)
}

func (s *Service) DetailsByPlan(ctx context.Context, planID uuid.UUID) ([]*PlanDetail, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, err
	}
	return s.details.ListByPlan(ctx, planID)
}

// Includes reports whether the plan's detail set carries the subservice.
func (s *Service) Includes(ctx context.Context, planID, subserviceID uuid.UUID) (bool, error) {
	return s.details.Includes(ctx, planID, subserviceID)
}
