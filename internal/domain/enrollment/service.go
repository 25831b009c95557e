package enrollment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aegis-health/aegis/internal/platform/apperr"
)

type Service struct {
	clients       ClientRepository
	contracts     ContractRepository
	beneficiaries BeneficiaryRepository
}

func NewService(clients ClientRepository, contracts ContractRepository, beneficiaries BeneficiaryRepository) *Service {
	return &Service{clients: clients, contracts: contracts, beneficiaries: beneficiaries}
}

var validRelationships = map[string]bool{
	RelHolder: true, RelSpouse: true, RelChild: true,
	RelFather: true, RelMother: true, RelOther: true,
}

var validStatuses = map[string]bool{
	StatusActive: true, StatusInactive: true, StatusTerminated: true,
}

// -- Clients --

func (s *Service) CreateClient(ctx context.Context, cl *Client) error {
	if strings.TrimSpace(cl.Name) == "" {
		return apperr.Validationf("client name is required")
	}
	return s.clients.Create(ctx, cl)
}

func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *Service) UpdateClient(ctx context.Context, cl *Client) error {
	if strings.TrimSpace(cl.Name) == "" {
		return apperr.Validationf("client name is required")
	}
	if _, err := s.clients.GetByID(ctx, cl.ID); err != nil {
		return err
	}
	return s.clients.Update(ctx, cl)
}

func (s *Service) ListClients(ctx context.Context, limit, offset int) ([]*Client, int, error) {
	return s.clients.List(ctx, limit, offset)
}

// -- Contracts --

func (s *Service) CreateContract(ctx context.Context, c *Contract) error {
	if strings.TrimSpace(c.Number) == "" {
		return apperr.Validationf("contract number is required")
	}
	if !c.EndDate.After(c.StartDate) {
		return apperr.Validationf("contract end date must follow start date")
	}
	if _, err := s.clients.GetByID(ctx, c.ClientID); err != nil {
		return err
	}
	if existing, err := s.contracts.GetByNumber(ctx, c.Number); err == nil && existing != nil {
		return apperr.Validationf("contract number %s already exists", c.Number)
	}
	return s.contracts.Create(ctx, c)
}

func (s *Service) GetContract(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

func (s *Service) UpdateContract(ctx context.Context, c *Contract) error {
	if !c.EndDate.After(c.StartDate) {
		return apperr.Validationf("contract end date must follow start date")
	}
	if _, err := s.contracts.GetByID(ctx, c.ID); err != nil {
		return err
	}
	return s.contracts.Update(ctx, c)
}

func (s *Service) ContractsByClient(ctx context.Context, clientID uuid.UUID) ([]*Contract, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.contracts.ListByClient(ctx, clientID)
}

// -- Beneficiaries --

func (s *Service) CreateBeneficiary(ctx context.Context, b *Beneficiary) error {
	if strings.TrimSpace(b.FullName) == "" {
		return apperr.Validationf("beneficiary full name is required")
	}
	if strings.TrimSpace(b.DocumentID) == "" {
		return apperr.Validationf("beneficiary document id is required")
	}
	if !validRelationships[b.Relationship] {
		return apperr.Validationf("invalid relationship: %s", b.Relationship)
	}
	if b.Status == "" {
		b.Status = StatusActive
	}
	if !validStatuses[b.Status] {
		return apperr.Validationf("invalid status: %s", b.Status)
	}
	if _, err := s.contracts.GetByID(ctx, b.ContractID); err != nil {
		return err
	}
	if b.Relationship == RelHolder {
		existing, err := s.beneficiaries.ListByContract(ctx, b.ContractID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.Relationship == RelHolder {
				return apperr.Validationf("contract already has a holder")
			}
		}
	}
	return s.beneficiaries.Create(ctx, b)
}

func (s *Service) GetBeneficiary(ctx context.Context, id uuid.UUID) (*Beneficiary, error) {
	return s.beneficiaries.GetByID(ctx, id)
}

func (s *Service) UpdateBeneficiary(ctx context.Context, b *Beneficiary) error {
	if !validStatuses[b.Status] {
		return apperr.Validationf("invalid status: %s", b.Status)
	}
	if _, err := s.beneficiaries.GetByID(ctx, b.ID); err != nil {
		return err
	}
	return s.beneficiaries.Update(ctx, b)
}

func (s *Service) BeneficiariesByContract(ctx context.Context, contractID uuid.UUID) ([]*Beneficiary, error) {
	if _, err := s.contracts.GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.beneficiaries.ListByContract(ctx, contractID)
}

// -- Eligibility --

// CheckEligibility evaluates all three eligibility rules against the
// beneficiary's state at asOf. The rules do not short-circuit: an ineligible
// beneficiary gets every applicable reason, not just the first.
func (s *Service) CheckEligibility(ctx context.Context, beneficiaryID uuid.UUID, asOf time.Time) (EligibilityResult, error) {
	b, err := s.beneficiaries.GetByID(ctx, beneficiaryID)
	if err != nil {
		return EligibilityResult{}, err
	}
	c, err := s.contracts.GetByID(ctx, b.ContractID)
	if err != nil {
		return EligibilityResult{}, err
	}
	return evaluate(b, c, asOf), nil
}

func evaluate(b *Beneficiary, c *Contract, asOf time.Time) EligibilityResult {
	var reasons []string

	if !c.InForce(asOf) {
		reasons = append(reasons, fmt.Sprintf("contract %s is not in force on %s", c.Number, asOf.Format("2006-01-02")))
	}
	if b.TerminationDate != nil && !b.TerminationDate.After(asOf) {
		reasons = append(reasons, fmt.Sprintf("beneficiary was terminated on %s", b.TerminationDate.Format("2006-01-02")))
	}
	if b.Status != StatusActive {
		reasons = append(reasons, fmt.Sprintf("beneficiary status is %s", StatusLabel(b.Status)))
	}

	return EligibilityResult{Eligible: len(reasons) == 0, Reasons: reasons}
}

// SearchBeneficiaries finds beneficiaries by partial name or document match
// and evaluates each hit's eligibility at asOf.
func (s *Service) SearchBeneficiaries(ctx context.Context, q SearchQuery, asOf time.Time, limit, offset int) ([]*BeneficiaryHit, int, error) {
	items, total, err := s.beneficiaries.Search(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	hits := make([]*BeneficiaryHit, 0, len(items))
	for _, b := range items {
		c, err := s.contracts.GetByID(ctx, b.ContractID)
		if err != nil {
			return nil, 0, err
		}
		hits = append(hits, &BeneficiaryHit{Beneficiary: b, Eligibility: evaluate(b, c, asOf)})
	}
	return hits, total, nil
}
