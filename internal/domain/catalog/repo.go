package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ProviderRepository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
}

type CareSiteRepository interface {
	Create(ctx context.Context, cs *CareSite) error
	GetByID(ctx context.Context, id uuid.UUID) (*CareSite, error)
	Update(ctx context.Context, cs *CareSite) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*CareSite, error)
}

type ServiceCategoryRepository interface {
	Create(ctx context.Context, sc *ServiceCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceCategory, error)
	Update(ctx context.Context, sc *ServiceCategory) error
	List(ctx context.Context, limit, offset int) ([]*ServiceCategory, int, error)
}

type SubserviceRepository interface {
	Create(ctx context.Context, s *Subservice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Subservice, error)
	GetByCode(ctx context.Context, code string) (*Subservice, error)
	Update(ctx context.Context, s *Subservice) error
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Subservice, error)
	List(ctx context.Context, limit, offset int) ([]*Subservice, int, error)
}

type FeeScheduleRepository interface {
	Create(ctx context.Context, f *FeeScheduleItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*FeeScheduleItem, error)
	GetByProviderAndSubservice(ctx context.Context, providerID, subserviceID uuid.UUID) (*FeeScheduleItem, error)
	Update(ctx context.Context, f *FeeScheduleItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*FeeScheduleItem, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*FeeScheduleItem, error)
}
