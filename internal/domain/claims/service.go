package claims

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aegis-health/aegis/internal/domain/enrollment"
	"github.com/aegis-health/aegis/internal/domain/plan"
	"github.com/aegis-health/aegis/internal/platform/apperr"
	"github.com/aegis-health/aegis/internal/platform/auth"
)

type Service struct {
	incidents IncidentRepository
	orders    OrderRepository
	members   EnrollmentReader
	plans     PlanReader
	catalog   CatalogReader
	tx        TxRunner
	log       zerolog.Logger
}

func NewService(incidents IncidentRepository, orders OrderRepository, members EnrollmentReader, plans PlanReader, catalog CatalogReader, tx TxRunner, log zerolog.Logger) *Service {
	return &Service{
		incidents: incidents,
		orders:    orders,
		members:   members,
		plans:     plans,
		catalog:   catalog,
		tx:        tx,
		log:       log,
	}
}

// -- Order lifecycle --

// CreateOrder opens an incident for the beneficiary and issues a draft order
// in PENDING_AUTHORIZATION with a provisional number.
func (s *Service) CreateOrder(ctx context.Context, beneficiaryID uuid.UUID, description string, careSiteID uuid.UUID) (*ServiceOrder, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperr.Validationf("incident description is required")
	}
	if _, err := s.members.GetBeneficiary(ctx, beneficiaryID); err != nil {
		return nil, err
	}
	site, err := s.catalog.GetCareSite(ctx, careSiteID)
	if err != nil {
		return nil, err
	}
	if !site.Active {
		return nil, apperr.Validationf("care site %s is not active", site.Name)
	}

	now := time.Now()
	elig, err := s.members.CheckEligibility(ctx, beneficiaryID, now)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, apperr.Validationf("beneficiary is not eligible: %s", strings.Join(elig.Reasons, "; "))
	}

	var order *ServiceOrder
	err = s.tx(ctx, func(ctx context.Context) error {
		in := &Incident{
			BeneficiaryID: beneficiaryID,
			ReportedAt:    now,
			Description:   description,
			State:         IncidentOpen,
		}
		if err := s.incidents.Create(ctx, in); err != nil {
			return err
		}
		order = &ServiceOrder{
			IncidentID: in.ID,
			Number:     ProvisionalNumber(in.Seq),
			CareSiteID: careSiteID,
			State:      StatePendingAuthorization,
			IssuedAt:   now,
		}
		return s.orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order", order.Number).
		Str("beneficiary_id", beneficiaryID.String()).
		Msg("order created")
	return order, nil
}

// AttachServices records the selected fee schedule items on the order and
// runs the one-shot authorization evaluation: any uncovered or exhausted
// category keeps the order in PENDING_AUTHORIZATION for a supervisor; a
// fully covered selection advances it to NOTIFIED. The usage read and the
// state write share one transaction with the order row locked.
func (s *Service) AttachServices(ctx context.Context, orderID uuid.UUID, feeItemIDs []uuid.UUID) (*OrderOutcome, error) {
	ids := dedupe(feeItemIDs)
	if len(ids) == 0 {
		return nil, apperr.Validationf("at least one service must be selected")
	}

	var outcome *OrderOutcome
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.State != StatePendingAuthorization {
			if o.State == StateNotified {
				current, err := s.orders.ServiceIDs(ctx, orderID)
				if err != nil {
					return err
				}
				if sameSet(current, ids) {
					outcome = &OrderOutcome{NewState: o.State, TotalAmount: o.ReferenceAmount}
					return nil
				}
			}
			return apperr.InvalidTransitionf("order %s is %s", o.Number, o.State)
		}

		in, err := s.incidents.GetByID(ctx, o.IncidentID)
		if err != nil {
			return err
		}
		b, err := s.members.GetBeneficiary(ctx, in.BeneficiaryID)
		if err != nil {
			return err
		}
		contract, err := s.members.GetContract(ctx, b.ContractID)
		if err != nil {
			return err
		}
		site, err := s.catalog.GetCareSite(ctx, o.CareSiteID)
		if err != nil {
			return err
		}

		items, err := s.catalog.FeeItemsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(items) != len(ids) {
			return apperr.NotFoundf("one or more selected fee schedule items")
		}

		var total float64
		categories := make(map[uuid.UUID]bool)
		for _, item := range items {
			if item.ProviderID != site.ProviderID {
				return apperr.Validationf("fee item %s is not priced for the order's provider", item.ID)
			}
			included, err := s.plans.Includes(ctx, contract.PlanID, item.SubserviceID)
			if err != nil {
				return err
			}
			if !included {
				return apperr.Validationf("subservice %s is not included in the plan", item.SubserviceID)
			}
			sub, err := s.catalog.GetSubservice(ctx, item.SubserviceID)
			if err != nil {
				return err
			}
			categories[sub.CategoryID] = true
			total += item.Price
		}

		requires := false
		from, to := contractWindow(contract)
		for categoryID := range categories {
			cov, err := s.plans.GetCoverage(ctx, contract.PlanID, categoryID)
			if err != nil {
				return err
			}
			if cov == nil {
				requires = true
				continue
			}
			if cov.Unlimited {
				continue
			}
			used, err := s.orders.CountTouchingCategory(ctx, b.ID, categoryID, from, to, o.IncidentID)
			if err != nil {
				return err
			}
			if used >= cov.AnnualMax {
				requires = true
			}
		}

		if err := s.orders.ReplaceServices(ctx, o.IncidentID, ids); err != nil {
			return err
		}
		o.ReferenceAmount = total
		if !requires {
			s.notify(o, in.Seq, time.Now())
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		outcome = &OrderOutcome{RequiresAuthorization: requires, NewState: o.State, TotalAmount: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", orderID.String()).
		Bool("requires_authorization", outcome.RequiresAuthorization).
		Str("state", outcome.NewState).
		Float64("total", outcome.TotalAmount).
		Msg("services attached")
	return outcome, nil
}

// notify moves the order to NOTIFIED. The permanent number and the activation
// deadline are written exactly once; a re-notified order keeps them.
func (s *Service) notify(o *ServiceOrder, seq int64, at time.Time) {
	o.State = StateNotified
	if strings.HasPrefix(o.Number, "SOL-") {
		o.Number = PermanentNumber(at, seq)
		deadline := o.IssuedAt.Add(ActivationWindow)
		o.DeadlineAt = &deadline
	}
}

// Authorize lets a supervisor override a pending authorization and notify the
// order.
func (s *Service) Authorize(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*ServiceOrder, error) {
	if !actor.IsSupervisor() {
		return nil, apperr.PermissionDeniedf("actor %s may not authorize orders", actor.ID)
	}

	var order *ServiceOrder
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.State != StatePendingAuthorization {
			return apperr.InvalidTransitionf("order %s is %s, not pending authorization", o.Number, o.State)
		}
		in, err := s.incidents.GetByID(ctx, o.IncidentID)
		if err != nil {
			return err
		}
		now := time.Now()
		o.ApproverID = &actor.ID
		o.AuthorizedAt = &now
		s.notify(o, in.Seq, now)
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order", order.Number).
		Str("approver", actor.ID).
		Msg("order authorized")
	return order, nil
}

// Reject lets a supervisor decline a pending order with a mandatory reason.
func (s *Service) Reject(ctx context.Context, actor auth.Actor, orderID uuid.UUID, reason string) (*ServiceOrder, error) {
	if !actor.IsSupervisor() {
		return nil, apperr.PermissionDeniedf("actor %s may not reject orders", actor.ID)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validationf("rejection reason is required")
	}

	var order *ServiceOrder
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.State != StatePendingAuthorization {
			return apperr.InvalidTransitionf("order %s is %s, not pending authorization", o.Number, o.State)
		}
		in, err := s.incidents.GetByID(ctx, o.IncidentID)
		if err != nil {
			return err
		}
		now := time.Now()
		o.State = StateRejected
		o.ApproverID = &actor.ID
		o.AuthorizedAt = &now
		o.RejectionReason = &reason
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		in.State = IncidentNotApplicable
		if err := s.incidents.Update(ctx, in); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order", order.Number).
		Str("approver", actor.ID).
		Str("reason", reason).
		Msg("order rejected")
	return order, nil
}

// CancelDraft deletes an order that never got anywhere: no services attached
// and no authorization decision taken. The incident goes with it.
func (s *Service) CancelDraft(ctx context.Context, orderID uuid.UUID) error {
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.State != StatePendingAuthorization || o.ApproverID != nil {
			return apperr.InvalidTransitionf("order %s is past draft", o.Number)
		}
		attached, err := s.orders.ServiceIDs(ctx, orderID)
		if err != nil {
			return err
		}
		if len(attached) > 0 {
			return apperr.InvalidTransitionf("order %s already has services attached", o.Number)
		}
		return s.incidents.Delete(ctx, o.IncidentID)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("order_id", orderID.String()).Msg("draft order cancelled")
	return nil
}

// Activate marks a notified order as used at the care site. Past the
// activation deadline the order can no longer be activated; the expiry sweep
// will suspend it.
func (s *Service) Activate(ctx context.Context, orderID uuid.UUID, asOf time.Time) (*ServiceOrder, error) {
	var order *ServiceOrder
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.State != StateNotified {
			return apperr.InvalidTransitionf("order %s is %s, not notified", o.Number, o.State)
		}
		if o.DeadlineAt != nil && asOf.After(*o.DeadlineAt) {
			return apperr.InvalidTransitionf("order %s activation deadline passed on %s", o.Number, o.DeadlineAt.Format("2006-01-02"))
		}
		o.State = StateActivated
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		in, err := s.incidents.GetByID(ctx, o.IncidentID)
		if err != nil {
			return err
		}
		in.State = IncidentClosedWithOrder
		if err := s.incidents.Update(ctx, in); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order", order.Number).Msg("order activated")
	return order, nil
}

// ExpireOverdue suspends every notified order whose activation deadline has
// passed. Returns how many orders were suspended.
func (s *Service) ExpireOverdue(ctx context.Context, asOf time.Time) (int, error) {
	overdue, err := s.orders.ListNotifiedPastDeadline(ctx, asOf)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, o := range overdue {
		o.State = StateSuspended
		if err := s.orders.Update(ctx, o); err != nil {
			return count, err
		}
		count++
	}
	if count > 0 {
		s.log.Info().Int("suspended", count).Msg("overdue orders suspended")
	}
	return count, nil
}

// MarkPendingPayment records the provider's invoice on an activated order.
func (s *Service) MarkPendingPayment(ctx context.Context, orderID uuid.UUID, inv Invoice) (*ServiceOrder, error) {
	if strings.TrimSpace(inv.Number) == "" {
		return nil, apperr.Validationf("invoice number is required")
	}

	var order *ServiceOrder
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.State != StateActivated {
			return apperr.InvalidTransitionf("order %s is %s, not activated", o.Number, o.State)
		}
		o.State = StatePendingPayment
		o.InvoiceNumber = &inv.Number
		if inv.Control != "" {
			o.ControlNumber = &inv.Control
		}
		o.InvoiceIssuedAt = inv.IssuedAt
		o.InvoiceReceivedAt = inv.ReceivedAt
		o.AmountVES = inv.AmountVES
		o.AmountUSD = inv.AmountUSD
		o.FXRate = inv.FXRate
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order", order.Number).Str("invoice", inv.Number).Msg("order pending payment")
	return order, nil
}

// MarkPaid settles an order pending payment.
func (s *Service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*ServiceOrder, error) {
	var order *ServiceOrder
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.State != StatePendingPayment {
			return apperr.InvalidTransitionf("order %s is %s, not pending payment", o.Number, o.State)
		}
		o.State = StatePaid
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order", order.Number).Msg("order paid")
	return order, nil
}

// -- Reads --

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*ServiceOrder, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) GetIncident(ctx context.Context, id uuid.UUID) (*Incident, error) {
	return s.incidents.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]*ServiceOrder, int, error) {
	return s.orders.List(ctx, limit, offset)
}

func (s *Service) OrdersByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID, limit, offset int) ([]*ServiceOrder, int, error) {
	return s.orders.ListByBeneficiary(ctx, beneficiaryID, limit, offset)
}

// -- Consumption --

// CoverageUsage computes the usage picture for one covered category of the
// beneficiary. The annual window is the contract's validity window; the
// monthly window starts on the first day of asOf's month and only applies
// when the coverage carries a monthly cap.
func (s *Service) CoverageUsage(ctx context.Context, beneficiaryID uuid.UUID, contract *enrollment.Contract, cov *plan.CategoryCoverage, asOf time.Time) (*CoverageUsageReport, error) {
	from, to := contractWindow(contract)
	annualUsed, err := s.orders.CountTouchingCategory(ctx, beneficiaryID, cov.CategoryID, from, to, uuid.Nil)
	if err != nil {
		return nil, err
	}

	report := &CoverageUsageReport{
		CategoryID: cov.CategoryID,
		Unlimited:  cov.Unlimited,
		AnnualMax:  cov.AnnualMax,
		MonthlyCap: cov.MonthlyCap,
		AnnualUsed: annualUsed,
	}

	if cov.Unlimited {
		report.Available = -1
		return report, nil
	}

	available := cov.AnnualMax - annualUsed
	if available < 0 {
		available = 0
	}

	if cov.MonthlyCap > 0 {
		mFrom := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
		if mFrom.Before(from) {
			mFrom = from
		}
		mTo := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location()).AddDate(0, 1, 0)
		if mTo.After(to) {
			mTo = to
		}
		monthlyUsed, err := s.orders.CountTouchingCategory(ctx, beneficiaryID, cov.CategoryID, mFrom, mTo, uuid.Nil)
		if err != nil {
			return nil, err
		}
		report.MonthlyUsed = &monthlyUsed
		monthlyAvailable := cov.MonthlyCap - monthlyUsed
		if monthlyAvailable < 0 {
			monthlyAvailable = 0
		}
		if monthlyAvailable < available {
			available = monthlyAvailable
		}
	}

	report.Available = available
	return report, nil
}

// GetCoverageReport evaluates every covered category of the beneficiary's
// plan plus a per-subservice tally of the contract window.
func (s *Service) GetCoverageReport(ctx context.Context, beneficiaryID uuid.UUID, asOf time.Time) (*CoverageReport, error) {
	b, err := s.members.GetBeneficiary(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	contract, err := s.members.GetContract(ctx, b.ContractID)
	if err != nil {
		return nil, err
	}
	coverages, err := s.plans.CoveragesByPlan(ctx, contract.PlanID)
	if err != nil {
		return nil, err
	}

	report := &CoverageReport{BeneficiaryID: beneficiaryID, AsOf: asOf}
	for _, cov := range coverages {
		usage, err := s.CoverageUsage(ctx, beneficiaryID, contract, cov, asOf)
		if err != nil {
			return nil, err
		}
		report.Categories = append(report.Categories, usage)
	}

	from, to := contractWindow(contract)
	subs, err := s.orders.SubserviceUsage(ctx, beneficiaryID, from, to)
	if err != nil {
		return nil, err
	}
	report.Subservices = subs
	return report, nil
}

// contractWindow is the half-open [from, to) issuance window covered by the
// contract; the end date itself is a covered day.
func contractWindow(c *enrollment.Contract) (time.Time, time.Time) {
	return c.StartDate, c.EndDate.AddDate(0, 0, 1)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sameSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}
