package enrollment

import (
	"time"

	"github.com/google/uuid"
)

// Client is a corporate customer holding one or more collective contracts.
type Client struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TaxID     string    `db:"tax_id" json:"tax_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Contract binds a client to a plan for a validity window.
type Contract struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClientID  uuid.UUID `db:"client_id" json:"client_id"`
	PlanID    uuid.UUID `db:"plan_id" json:"plan_id"`
	Number    string    `db:"number" json:"number"`
	Insurer   string    `db:"insurer" json:"insurer"`
	Entity    string    `db:"entity" json:"entity"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InForce reports whether the contract is active and asOf falls inside its
// validity window (inclusive on both ends).
func (c *Contract) InForce(asOf time.Time) bool {
	if !c.Active {
		return false
	}
	return !asOf.Before(c.StartDate) && !asOf.After(c.EndDate)
}

// Beneficiary relationship to the contract holder.
const (
	RelHolder = "HOLDER"
	RelSpouse = "SPOUSE"
	RelChild  = "CHILD"
	RelFather = "FATHER"
	RelMother = "MOTHER"
	RelOther  = "OTHER"
)

// Individual beneficiary status, independent of the contract's validity.
const (
	StatusActive     = "ACTIVE"
	StatusInactive   = "INACTIVE"
	StatusTerminated = "TERMINATED"
)

var statusLabels = map[string]string{
	StatusActive:     "active",
	StatusInactive:   "inactive",
	StatusTerminated: "terminated",
}

// StatusLabel returns the human-readable form of a beneficiary status for
// use in eligibility reasons.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// Beneficiary is a covered person under a contract.
type Beneficiary struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ContractID      uuid.UUID  `db:"contract_id" json:"contract_id"`
	DocumentID      string     `db:"document_id" json:"document_id"`
	FullName        string     `db:"full_name" json:"full_name"`
	BirthDate       time.Time  `db:"birth_date" json:"birth_date"`
	Relationship    string     `db:"relationship" json:"relationship"`
	Status          string     `db:"status" json:"status"`
	TerminationDate *time.Time `db:"termination_date" json:"termination_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// EligibilityResult is the outcome of evaluating a beneficiary at a point in
// time. Eligible is true only when Reasons is empty.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
}

// BeneficiaryHit is one search result with its eligibility evaluated at
// search time.
type BeneficiaryHit struct {
	Beneficiary *Beneficiary      `json:"beneficiary"`
	Eligibility EligibilityResult `json:"eligibility"`
}

// SearchQuery filters beneficiary searches. Text matches partial name or
// document id.
type SearchQuery struct {
	Text     string
	ClientID uuid.UUID
	Insurer  string
	Entity   string
}
