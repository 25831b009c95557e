package enrollment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aegis-health/aegis/internal/platform/apperr"
)

// -- Mock Repositories --

type mockClientRepo struct {
	items map[uuid.UUID]*Client
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{items: make(map[uuid.UUID]*Client)}
}

func (m *mockClientRepo) Create(_ context.Context, cl *Client) error {
	cl.ID = uuid.New()
	m.items[cl.ID] = cl
	return nil
}

func (m *mockClientRepo) GetByID(_ context.Context, id uuid.UUID) (*Client, error) {
	cl, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("client %s", id)
	}
	return cl, nil
}

func (m *mockClientRepo) Update(_ context.Context, cl *Client) error {
	m.items[cl.ID] = cl
	return nil
}

func (m *mockClientRepo) List(_ context.Context, limit, offset int) ([]*Client, int, error) {
	var result []*Client
	for _, cl := range m.items {
		result = append(result, cl)
	}
	return result, len(result), nil
}

type mockContractRepo struct {
	items map[uuid.UUID]*Contract
}

func newMockContractRepo() *mockContractRepo {
	return &mockContractRepo{items: make(map[uuid.UUID]*Contract)}
}

func (m *mockContractRepo) Create(_ context.Context, c *Contract) error {
	c.ID = uuid.New()
	m.items[c.ID] = c
	return nil
}

func (m *mockContractRepo) GetByID(_ context.Context, id uuid.UUID) (*Contract, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("contract %s", id)
	}
	return c, nil
}

func (m *mockContractRepo) GetByNumber(_ context.Context, number string) (*Contract, error) {
	for _, c := range m.items {
		if c.Number == number {
			return c, nil
		}
	}
	return nil, apperr.NotFoundf("contract number %s", number)
}

func (m *mockContractRepo) Update(_ context.Context, c *Contract) error {
	m.items[c.ID] = c
	return nil
}

func (m *mockContractRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]*Contract, error) {
	var result []*Contract
	for _, c := range m.items {
		if c.ClientID == clientID {
			result = append(result, c)
		}
	}
	return result, nil
}

type mockBeneficiaryRepo struct {
	items map[uuid.UUID]*Beneficiary
}

func newMockBeneficiaryRepo() *mockBeneficiaryRepo {
	return &mockBeneficiaryRepo{items: make(map[uuid.UUID]*Beneficiary)}
}

func (m *mockBeneficiaryRepo) Create(_ context.Context, b *Beneficiary) error {
	b.ID = uuid.New()
	m.items[b.ID] = b
	return nil
}

func (m *mockBeneficiaryRepo) GetByID(_ context.Context, id uuid.UUID) (*Beneficiary, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFoundf("beneficiary %s", id)
	}
	return b, nil
}

func (m *mockBeneficiaryRepo) GetByDocument(_ context.Context, documentID string) (*Beneficiary, error) {
	for _, b := range m.items {
		if b.DocumentID == documentID {
			return b, nil
		}
	}
	return nil, apperr.NotFoundf("beneficiary document %s", documentID)
}

func (m *mockBeneficiaryRepo) Update(_ context.Context, b *Beneficiary) error {
	m.items[b.ID] = b
	return nil
}

func (m *mockBeneficiaryRepo) ListByContract(_ context.Context, contractID uuid.UUID) ([]*Beneficiary, error) {
	var result []*Beneficiary
	for _, b := range m.items {
		if b.ContractID == contractID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockBeneficiaryRepo) Search(_ context.Context, q SearchQuery, limit, offset int) ([]*Beneficiary, int, error) {
	var result []*Beneficiary
	for _, b := range m.items {
		if q.Text != "" &&
			!strings.Contains(strings.ToLower(b.FullName), strings.ToLower(q.Text)) &&
			!strings.Contains(b.DocumentID, q.Text) {
			continue
		}
		result = append(result, b)
	}
	return result, len(result), nil
}

// -- Fixtures --

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, *mockClientRepo, *mockContractRepo, *mockBeneficiaryRepo) {
	clients := newMockClientRepo()
	contracts := newMockContractRepo()
	beneficiaries := newMockBeneficiaryRepo()
	return NewService(clients, contracts, beneficiaries), clients, contracts, beneficiaries
}

func seedContract(t *testing.T, contracts *mockContractRepo, active bool) *Contract {
	t.Helper()
	c := &Contract{
		ClientID:  uuid.New(),
		PlanID:    uuid.New(),
		Number:    "CT-2026-001",
		StartDate: date(2026, time.January, 1),
		EndDate:   date(2026, time.December, 31),
		Active:    active,
	}
	if err := contracts.Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func seedBeneficiary(t *testing.T, beneficiaries *mockBeneficiaryRepo, contractID uuid.UUID, status string) *Beneficiary {
	t.Helper()
	b := &Beneficiary{
		ContractID:   contractID,
		DocumentID:   "V-12345678",
		FullName:     "María González",
		BirthDate:    date(1985, time.March, 12),
		Relationship: RelHolder,
		Status:       status,
	}
	if err := beneficiaries.Create(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

// -- Eligibility tests --

func TestCheckEligibility_AllRulesPass(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, true)
	b := seedBeneficiary(t, beneficiaries, c.ID, StatusActive)

	res, err := svc.CheckEligibility(context.Background(), b.ID, date(2026, time.June, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Eligible {
		t.Errorf("expected eligible, got reasons %v", res.Reasons)
	}
	if len(res.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", res.Reasons)
	}
}

func TestCheckEligibility_ContractNotInForce(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, true)
	b := seedBeneficiary(t, beneficiaries, c.ID, StatusActive)

	res, err := svc.CheckEligibility(context.Background(), b.ID, date(2027, time.February, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Eligible {
		t.Error("expected ineligible past contract end")
	}
	if len(res.Reasons) != 1 || !strings.Contains(res.Reasons[0], "not in force") {
		t.Errorf("expected contract reason, got %v", res.Reasons)
	}
}

func TestCheckEligibility_InactiveContract(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, false)
	b := seedBeneficiary(t, beneficiaries, c.ID, StatusActive)

	res, err := svc.CheckEligibility(context.Background(), b.ID, date(2026, time.June, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Eligible {
		t.Error("expected ineligible under inactive contract")
	}
}

func TestCheckEligibility_TerminationReasonIncludesDate(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, true)
	b := seedBeneficiary(t, beneficiaries, c.ID, StatusActive)
	term := date(2026, time.April, 30)
	b.TerminationDate = &term
	if err := beneficiaries.Update(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := svc.CheckEligibility(context.Background(), b.ID, date(2026, time.June, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Eligible {
		t.Error("expected ineligible after termination")
	}
	found := false
	for _, r := range res.Reasons {
		if strings.Contains(r, "2026-04-30") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected termination reason to carry the date, got %v", res.Reasons)
	}
}

func TestCheckEligibility_FutureTerminationDoesNotBlock(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, true)
	b := seedBeneficiary(t, beneficiaries, c.ID, StatusActive)
	term := date(2026, time.October, 1)
	b.TerminationDate = &term
	if err := beneficiaries.Update(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := svc.CheckEligibility(context.Background(), b.ID, date(2026, time.June, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Eligible {
		t.Errorf("expected eligible before future termination, got %v", res.Reasons)
	}
}

func TestCheckEligibility_CollectsAllReasons(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, false)
	b := seedBeneficiary(t, beneficiaries, c.ID, StatusTerminated)
	term := date(2026, time.March, 1)
	b.TerminationDate = &term
	if err := beneficiaries.Update(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := svc.CheckEligibility(context.Background(), b.ID, date(2026, time.June, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Eligible {
		t.Error("expected ineligible")
	}
	if len(res.Reasons) != 3 {
		t.Errorf("expected all three reasons, got %v", res.Reasons)
	}
}

func TestCheckEligibility_StatusReasonIsHumanReadable(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, true)
	b := seedBeneficiary(t, beneficiaries, c.ID, StatusInactive)

	res, err := svc.CheckEligibility(context.Background(), b.ID, date(2026, time.June, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Eligible {
		t.Error("expected ineligible for inactive status")
	}
	if len(res.Reasons) != 1 || !strings.Contains(res.Reasons[0], "inactive") {
		t.Errorf("expected readable status reason, got %v", res.Reasons)
	}
}

func TestCheckEligibility_UnknownBeneficiary(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.CheckEligibility(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

// -- Search tests --

func TestSearchBeneficiaries_EvaluatesEligibility(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, true)
	seedBeneficiary(t, beneficiaries, c.ID, StatusActive)

	hits, total, err := svc.SearchBeneficiaries(context.Background(), SearchQuery{Text: "gonzález"}, date(2026, time.June, 15), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(hits) != 1 {
		t.Fatalf("expected one hit, got %d", total)
	}
	if !hits[0].Eligibility.Eligible {
		t.Errorf("expected eligible hit, got %v", hits[0].Eligibility.Reasons)
	}
}

func TestSearchBeneficiaries_NoMatch(t *testing.T) {
	svc, _, contracts, beneficiaries := newTestService()
	c := seedContract(t, contracts, true)
	seedBeneficiary(t, beneficiaries, c.ID, StatusActive)

	hits, total, err := svc.SearchBeneficiaries(context.Background(), SearchQuery{Text: "no-such-person"}, time.Now(), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(hits) != 0 {
		t.Errorf("expected no hits, got %d", total)
	}
}

// -- CRUD validation tests --

func TestCreateBeneficiary_SecondHolderRejected(t *testing.T) {
	svc, _, contracts, _ := newTestService()
	c := seedContract(t, contracts, true)

	first := &Beneficiary{ContractID: c.ID, DocumentID: "V-1", FullName: "Titular Uno", Relationship: RelHolder}
	if err := svc.CreateBeneficiary(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := &Beneficiary{ContractID: c.ID, DocumentID: "V-2", FullName: "Titular Dos", Relationship: RelHolder}
	err := svc.CreateBeneficiary(context.Background(), second)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for second holder, got %v", err)
	}
}

func TestCreateBeneficiary_InvalidRelationship(t *testing.T) {
	svc, _, contracts, _ := newTestService()
	c := seedContract(t, contracts, true)
	b := &Beneficiary{ContractID: c.ID, DocumentID: "V-3", FullName: "Primo", Relationship: "COUSIN"}
	err := svc.CreateBeneficiary(context.Background(), b)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateContract_DuplicateNumber(t *testing.T) {
	svc, clients, contracts, _ := newTestService()
	cl := &Client{Name: "Corporación XYZ", Active: true}
	if err := clients.Create(context.Background(), cl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seedContract(t, contracts, true)

	dup := &Contract{
		ClientID:  cl.ID,
		PlanID:    uuid.New(),
		Number:    "CT-2026-001",
		StartDate: date(2026, time.January, 1),
		EndDate:   date(2026, time.December, 31),
		Active:    true,
	}
	err := svc.CreateContract(context.Background(), dup)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for duplicate number, got %v", err)
	}
}

func TestCreateContract_InvertedWindow(t *testing.T) {
	svc, clients, _, _ := newTestService()
	cl := &Client{Name: "Corporación XYZ", Active: true}
	if err := clients.Create(context.Background(), cl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := &Contract{
		ClientID:  cl.ID,
		Number:    "CT-X",
		StartDate: date(2026, time.December, 31),
		EndDate:   date(2026, time.January, 1),
	}
	err := svc.CreateContract(context.Background(), c)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestContractInForce_Boundaries(t *testing.T) {
	c := &Contract{
		StartDate: date(2026, time.January, 1),
		EndDate:   date(2026, time.December, 31),
		Active:    true,
	}
	if !c.InForce(date(2026, time.January, 1)) {
		t.Error("expected in force on start date")
	}
	if !c.InForce(date(2026, time.December, 31)) {
		t.Error("expected in force on end date")
	}
	if c.InForce(date(2025, time.December, 31)) {
		t.Error("expected not in force before start")
	}
	if c.InForce(date(2027, time.January, 1)) {
		t.Error("expected not in force after end")
	}
}
