package claims

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Incident states.
const (
	IncidentOpen            = "OPEN"
	IncidentClosedWithOrder = "CLOSED_WITH_ORDER"
	IncidentNotApplicable   = "NOT_APPLICABLE"
)

// Service order states.
const (
	StatePendingAuthorization = "PENDING_AUTHORIZATION"
	StateNotified             = "NOTIFIED"
	StateActivated            = "ACTIVATED"
	StateSuspended            = "SUSPENDED"
	StatePendingPayment       = "PENDING_PAYMENT"
	StatePaid                 = "PAID"
	StateRejected             = "REJECTED"
)

// ActivationWindow is how long a notified order stays activatable.
const ActivationWindow = 15 * 24 * time.Hour

// Incident is a beneficiary's reported event. Each incident owns at most one
// service order; deleting the incident cascades to the order.
type Incident struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Seq           int64     `db:"seq" json:"seq"`
	BeneficiaryID uuid.UUID `db:"beneficiary_id" json:"beneficiary_id"`
	ReportedAt    time.Time `db:"reported_at" json:"reported_at"`
	Description   string    `db:"description" json:"description"`
	State         string    `db:"state" json:"state"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceOrder authorizes care for one incident. Its key is the incident id.
type ServiceOrder struct {
	IncidentID      uuid.UUID  `db:"incident_id" json:"incident_id"`
	Number          string     `db:"number" json:"number"`
	CareSiteID      uuid.UUID  `db:"care_site_id" json:"care_site_id"`
	State           string     `db:"state" json:"state"`
	ReferenceAmount float64    `db:"reference_amount" json:"reference_amount"`
	Exonerated      bool       `db:"exonerated" json:"exonerated"`
	IssuedAt        time.Time  `db:"issued_at" json:"issued_at"`
	DeadlineAt      *time.Time `db:"deadline_at" json:"deadline_at,omitempty"`
	ApproverID      *string    `db:"approver_id" json:"approver_id,omitempty"`
	AuthorizedAt    *time.Time `db:"authorized_at" json:"authorized_at,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`

	// Passive invoice data recorded downstream; never interpreted here.
	InvoiceNumber    *string    `db:"invoice_number" json:"invoice_number,omitempty"`
	ControlNumber    *string    `db:"control_number" json:"control_number,omitempty"`
	InvoiceIssuedAt  *time.Time `db:"invoice_issued_at" json:"invoice_issued_at,omitempty"`
	InvoiceReceivedAt *time.Time `db:"invoice_received_at" json:"invoice_received_at,omitempty"`
	AmountVES        *float64   `db:"amount_ves" json:"amount_ves,omitempty"`
	AmountUSD        *float64   `db:"amount_usd" json:"amount_usd,omitempty"`
	FXRate           *float64   `db:"fx_rate" json:"fx_rate,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProvisionalNumber is the number an order carries until it is notified.
func ProvisionalNumber(seq int64) string {
	return fmt.Sprintf("SOL-%d", seq)
}

// PermanentNumber is assigned exactly once at the NOTIFIED transition.
func PermanentNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%d-%d-%d", at.Year(), int(at.Month()), seq)
}

// OrderOutcome is what an attach-services evaluation decided.
type OrderOutcome struct {
	RequiresAuthorization bool    `json:"requires_authorization"`
	NewState              string  `json:"new_state"`
	TotalAmount           float64 `json:"total_amount"`
}

// Invoice carries the passive billing fields recorded when an activated order
// moves to pending payment.
type Invoice struct {
	Number     string     `json:"number"`
	Control    string     `json:"control"`
	IssuedAt   *time.Time `json:"issued_at,omitempty"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
	AmountVES  *float64   `json:"amount_ves,omitempty"`
	AmountUSD  *float64   `json:"amount_usd,omitempty"`
	FXRate     *float64   `json:"fx_rate,omitempty"`
}

// CoverageUsageReport is the consumption picture for one covered category.
// Available is -1 when the coverage is unlimited. MonthlyUsed is nil when the
// coverage carries no monthly cap.
type CoverageUsageReport struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Unlimited   bool      `json:"unlimited"`
	AnnualMax   int       `json:"annual_max"`
	MonthlyCap  int       `json:"monthly_cap"`
	AnnualUsed  int       `json:"annual_used"`
	MonthlyUsed *int      `json:"monthly_used,omitempty"`
	Available   int       `json:"available"`
}

// SubserviceUsage summarizes how often one subservice was ordered inside the
// contract window.
type SubserviceUsage struct {
	SubserviceID uuid.UUID `json:"subservice_id"`
	Code         string    `json:"code"`
	Count        int       `json:"count"`
}

// CoverageReport is the full consumption view for a beneficiary.
type CoverageReport struct {
	BeneficiaryID uuid.UUID              `json:"beneficiary_id"`
	AsOf          time.Time              `json:"as_of"`
	Categories    []*CoverageUsageReport `json:"categories"`
	Subservices   []*SubserviceUsage     `json:"subservices"`
}
