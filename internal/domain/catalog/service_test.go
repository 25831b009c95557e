package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aegis-health/aegis/internal/platform/apperr"
)

// -- Mock Repositories --

type mockProviderRepo struct {
	items map[uuid.UUID]*Provider
}

func newMockProviderRepo() *mockProviderRepo {
	return &mockProviderRepo{items: make(map[uuid.UUID]*Provider)}
}

func (m *mockProviderRepo) Create(_ context.Context, p *Provider) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockProviderRepo) GetByID(_ context.Context, id uuid.UUID) (*Provider, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("provider %s", id)
	}
	return p, nil
}

func (m *mockProviderRepo) Update(_ context.Context, p *Provider) error {
	m.items[p.ID] = p
	return nil
}

func (m *mockProviderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockProviderRepo) List(_ context.Context, limit, offset int) ([]*Provider, int, error) {
	var result []*Provider
	for _, p := range m.items {
		result = append(result, p)
	}
	return result, len(result), nil
}

type mockCareSiteRepo struct {
	items map[uuid.UUID]*CareSite
}

func newMockCareSiteRepo() *mockCareSiteRepo {
	return &mockCareSiteRepo{items: make(map[uuid.UUID]*CareSite)}
}

func (m *mockCareSiteRepo) Create(_ context.Context, cs *CareSite) error {
	cs.ID = uuid.New()
	m.items[cs.ID] = cs
	return nil
}

func (m *mockCareSiteRepo) GetByID(_ context.Context, id uuid.UUID) (*CareSite, error) {
	cs, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("care site %s", id)
	}
	return cs, nil
}

func (m *mockCareSiteRepo) Update(_ context.Context, cs *CareSite) error {
	m.items[cs.ID] = cs
	return nil
}

func (m *mockCareSiteRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockCareSiteRepo) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*CareSite, error) {
	var result []*CareSite
	for _, cs := range m.items {
		if cs.ProviderID == providerID {
			result = append(result, cs)
		}
	}
	return result, nil
}

type mockCategoryRepo struct {
	items map[uuid.UUID]*ServiceCategory
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{items: make(map[uuid.UUID]*ServiceCategory)}
}

func (m *mockCategoryRepo) Create(_ context.Context, sc *ServiceCategory) error {
	sc.ID = uuid.New()
	m.items[sc.ID] = sc
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*ServiceCategory, error) {
	sc, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("service category %s", id)
	}
	return sc, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, sc *ServiceCategory) error {
	m.items[sc.ID] = sc
	return nil
}

func (m *mockCategoryRepo) List(_ context.Context, limit, offset int) ([]*ServiceCategory, int, error) {
	var result []*ServiceCategory
	for _, sc := range m.items {
		result = append(result, sc)
	}
	return result, len(result), nil
}

type mockSubserviceRepo struct {
	items map[uuid.UUID]*Subservice
}

func newMockSubserviceRepo() *mockSubserviceRepo {
	return &mockSubserviceRepo{items: make(map[uuid.UUID]*Subservice)}
}

func (m *mockSubserviceRepo) Create(_ context.Context, s *Subservice) error {
	s.ID = uuid.New()
	m.items[s.ID] = s
	return nil
}

func (m *mockSubserviceRepo) GetByID(_ context.Context, id uuid.UUID) (*Subservice, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("subservice %s", id)
	}
	return s, nil
}

func (m *mockSubserviceRepo) GetByCode(_ context.Context, code string) (*Subservice, error) {
	for _, s := range m.items {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, apperr.NotFoundf("subservice code %s", code)
}

func (m *mockSubserviceRepo) Update(_ context.Context, s *Subservice) error {
	m.items[s.ID] = s
	return nil
}

func (m *mockSubserviceRepo) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]*Subservice, error) {
	var result []*Subservice
	for _, s := range m.items {
		if s.CategoryID == categoryID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSubserviceRepo) List(_ context.Context, limit, offset int) ([]*Subservice, int, error) {
	var result []*Subservice
	for _, s := range m.items {
		result = append(result, s)
	}
	return result, len(result), nil
}

type mockFeeScheduleRepo struct {
	items map[uuid.UUID]*FeeScheduleItem
}

func newMockFeeScheduleRepo() *mockFeeScheduleRepo {
	return &mockFeeScheduleRepo{items: make(map[uuid.UUID]*FeeScheduleItem)}
}

func (m *mockFeeScheduleRepo) Create(_ context.Context, f *FeeScheduleItem) error {
	f.ID = uuid.New()
	m.items[f.ID] = f
	return nil
}

func (m *mockFeeScheduleRepo) GetByID(_ context.Context, id uuid.UUID) (*FeeScheduleItem, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("fee schedule item %s", id)
	}
	return f, nil
}

func (m *mockFeeScheduleRepo) GetByProviderAndSubservice(_ context.Context, providerID, subserviceID uuid.UUID) (*FeeScheduleItem, error) {
	for _, f := range m.items {
		if f.ProviderID == providerID && f.SubserviceID == subserviceID && f.Active {
			return f, nil
		}
	}
	return nil, apperr.NotFoundf("fee schedule item for provider %s subservice %s", providerID, subserviceID)
}

func (m *mockFeeScheduleRepo) Update(_ context.Context, f *FeeScheduleItem) error {
	m.items[f.ID] = f
	return nil
}

func (m *mockFeeScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockFeeScheduleRepo) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*FeeScheduleItem, error) {
	var result []*FeeScheduleItem
	for _, f := range m.items {
		if f.ProviderID == providerID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockFeeScheduleRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*FeeScheduleItem, error) {
	var result []*FeeScheduleItem
	for _, id := range ids {
		if f, ok := m.items[id]; ok {
			result = append(result, f)
		}
	}
	return result, nil
}

func newTestService() (*Service, *mockProviderRepo, *mockCareSiteRepo, *mockCategoryRepo, *mockSubserviceRepo, *mockFeeScheduleRepo) {
	providers := newMockProviderRepo()
	careSites := newMockCareSiteRepo()
	categories := newMockCategoryRepo()
	subs := newMockSubserviceRepo()
	fees := newMockFeeScheduleRepo()
	return NewService(providers, careSites, categories, subs, fees), providers, careSites, categories, subs, fees
}

// -- Tests --

func TestCreateProvider(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	p := &Provider{Name: "Centro Médico del Este", TaxID: "J-30123456-7", Active: true}
	if err := svc.CreateProvider(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected provider id to be assigned")
	}
}

func TestCreateProvider_EmptyName(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	err := svc.CreateProvider(context.Background(), &Provider{Name: "  "})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateCareSite_UnknownProvider(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	cs := &CareSite{ProviderID: uuid.New(), Name: "Sede Norte"}
	err := svc.CreateCareSite(context.Background(), cs)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCareSitesByProvider(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	p := &Provider{Name: "Clínica Ávila", Active: true}
	if err := svc.CreateProvider(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"Sede Principal", "Sede La Trinidad"} {
		cs := &CareSite{ProviderID: p.ID, Name: name, Active: true}
		if err := svc.CreateCareSite(context.Background(), cs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	sites, err := svc.CareSitesByProvider(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 2 {
		t.Errorf("expected 2 care sites, got %d", len(sites))
	}
}

func TestCreateSubservice_UnknownCategory(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	err := svc.CreateSubservice(context.Background(), &Subservice{CategoryID: uuid.New(), Code: "LAB-001"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateSubservice_EmptyCode(t *testing.T) {
	svc, _, _, cats, _, _ := newTestService()
	cat := &ServiceCategory{Name: "Laboratorio", Active: true}
	if err := cats.Create(context.Background(), cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.CreateSubservice(context.Background(), &Subservice{CategoryID: cat.ID, Code: ""})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateFeeItem_NegativePrice(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()
	err := svc.CreateFeeItem(context.Background(), &FeeScheduleItem{Price: -10})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateFeeItem(t *testing.T) {
	svc, providers, _, cats, subs, _ := newTestService()
	p := &Provider{Name: "Laboratorio Central", Active: true}
	if err := providers.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cat := &ServiceCategory{Name: "Laboratorio", Active: true}
	if err := cats.Create(context.Background(), cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sub := &Subservice{CategoryID: cat.ID, Code: "LAB-001", Description: "Hematología completa", Active: true}
	if err := subs.Create(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := &FeeScheduleItem{ProviderID: p.ID, SubserviceID: sub.ID, Price: 25.50, Active: true}
	if err := svc.CreateFeeItem(context.Background(), f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := svc.FeeScheduleByProvider(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Price != 25.50 {
		t.Errorf("expected one fee item priced 25.50, got %+v", items)
	}
}
