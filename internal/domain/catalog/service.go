package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/aegis-health/aegis/internal/platform/apperr"
)

type Service struct {
	providers  ProviderRepository
	careSites  CareSiteRepository
	categories ServiceCategoryRepository
	subs       SubserviceRepository
	fees       FeeScheduleRepository
}

func NewService(providers ProviderRepository, careSites CareSiteRepository, categories ServiceCategoryRepository, subs SubserviceRepository, fees FeeScheduleRepository) *Service {
	return &Service{providers: providers, careSites: careSites, categories: categories, subs: subs, fees: fees}
}

// -- Providers --

func (s *Service) CreateProvider(ctx context.Context, p *Provider) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validationf("provider name is required")
	}
	return s.providers.Create(ctx, p)
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) UpdateProvider(ctx context.Context, p *Provider) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validationf("provider name is required")
	}
	if _, err := s.providers.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.providers.Update(ctx, p)
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

// -- Care sites --

func (s *Service) CreateCareSite(ctx context.Context, cs *CareSite) error {
	if strings.TrimSpace(cs.Name) == "" {
		return apperr.Validationf("care site name is required")
	}
	if _, err := s.providers.GetByID(ctx, cs.ProviderID); err != nil {
		return err
	}
	return s.careSites.Create(ctx, cs)
}

func (s *Service) GetCareSite(ctx context.Context, id uuid.UUID) (*CareSite, error) {
	return s.careSites.GetByID(ctx, id)
}

func (s *Service) UpdateCareSite(ctx context.Context, cs *CareSite) error {
	if strings.TrimSpace(cs.Name) == "" {
		return apperr.Validationf("care site name is required")
	}
	if _, err := s.careSites.GetByID(ctx, cs.ID); err != nil {
		return err
	}
	return s.careSites.Update(ctx, cs)
}

// CareSitesByProvider lists a provider's points of attention, used when an
// analyst picks where an order will be served.
func (s *Service) CareSitesByProvider(ctx context.Context, providerID uuid.UUID) ([]*CareSite, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	return s.careSites.ListByProvider(ctx, providerID)
}

// -- Categories and subservices --

func (s *Service) CreateCategory(ctx context.Context, sc *ServiceCategory) error {
	if strings.TrimSpace(sc.Name) == "" {
		return apperr.Validationf("category name is required")
	}
	return s.categories.Create(ctx, sc)
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*ServiceCategory, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, limit, offset int) ([]*ServiceCategory, int, error) {
	return s.categories.List(ctx, limit, offset)
}

func (s *Service) CreateSubservice(ctx context.Context, sub *Subservice) error {
	if strings.TrimSpace(sub.Code) == "" {
		return apperr.Validationf("subservice code is required")
	}
	if _, err := s.categories.GetByID(ctx, sub.CategoryID); err != nil {
		return err
	}
	return s.subs.Create(ctx, sub)
}

func (s *Service) GetSubservice(ctx context.Context, id uuid.UUID) (*Subservice, error) {
	return s.subs.GetByID(ctx, id)
}

func (s *Service) SubservicesByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Subservice, error) {
	return s.subs.ListByCategory(ctx, categoryID)
}

func (s *Service) ListSubservices(ctx context.Context, limit, offset int) ([]*Subservice, int, error) {
	return s.subs.List(ctx, limit, offset)
}

// -- Fee schedule --

func (s *Service) CreateFeeItem(ctx context.Context, f *FeeScheduleItem) error {
	if f.Price < 0 {
		return apperr.Validationf("fee item price must not be negative")
	}
	if _, err := s.providers.GetByID(ctx, f.ProviderID); err != nil {
		return err
	}
	if _, err := s.subs.GetByID(ctx, f.SubserviceID); err != nil {
		return err
	}
	return s.fees.Create(ctx, f)
}

func (s *Service) UpdateFeeItem(ctx context.Context, f *FeeScheduleItem) error {
	if f.Price < 0 {
		return apperr.Validationf("fee item price must not be negative")
	}
	if _, err := s.fees.GetByID(ctx, f.ID); err != nil {
		return err
	}
	return s.fees.Update(ctx, f)
}

func (s *Service) FeeScheduleByProvider(ctx context.Context, providerID uuid.UUID) ([]*FeeScheduleItem, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	return s.fees.ListByProvider(ctx, providerID)
}

// FeeItemsByIDs resolves a set of fee schedule item ids in one round trip.
// Missing ids are simply absent from the result.
func (s *Service) FeeItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]*FeeScheduleItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.fees.ListByIDs(ctx, ids)
}
