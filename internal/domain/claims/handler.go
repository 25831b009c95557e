package claims

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aegis-health/aegis/internal/platform/apperr"
	"github.com/aegis-health/aegis/internal/platform/auth"
	"github.com/aegis-health/aegis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/orders", h.ListOrders)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)
	api.DELETE("/orders/:id", h.CancelDraft)
	api.PUT("/orders/:id/services", h.AttachServices)
	api.POST("/orders/:id/authorize", h.Authorize)
	api.POST("/orders/:id/reject", h.Reject)
	api.POST("/orders/:id/activate", h.Activate)
	api.POST("/orders/:id/invoice", h.MarkPendingPayment)
	api.POST("/orders/:id/paid", h.MarkPaid)
	api.POST("/orders/expire-overdue", h.ExpireOverdue)

	api.GET("/beneficiaries/:id/orders", h.OrdersByBeneficiary)
	api.GET("/beneficiaries/:id/coverage-report", h.CoverageReport)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type createOrderRequest struct {
	BeneficiaryID uuid.UUID `json:"beneficiary_id"`
	Description   string    `json:"description"`
	CareSiteID    uuid.UUID `json:"care_site_id"`
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	order, err := h.svc.CreateOrder(c.Request().Context(), req.BeneficiaryID, req.Description, req.CareSiteID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOrders(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type attachServicesRequest struct {
	FeeItemIDs []uuid.UUID `json:"fee_item_ids"`
}

func (h *Handler) AttachServices(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req attachServicesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	outcome, err := h.svc.AttachServices(c.Request().Context(), id, req.FeeItemIDs)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, outcome)
}

func (h *Handler) Authorize(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	order, err := h.svc.Authorize(c.Request().Context(), actor, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, order)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	order, err := h.svc.Reject(c.Request().Context(), actor, id, req.Reason)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelDraft(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.CancelDraft(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Activate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.svc.Activate(c.Request().Context(), id, time.Now())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) MarkPendingPayment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var inv Invoice
	if err := c.Bind(&inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	order, err := h.svc.MarkPendingPayment(c.Request().Context(), id, inv)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) MarkPaid(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.svc.MarkPaid(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) ExpireOverdue(c echo.Context) error {
	count, err := h.svc.ExpireOverdue(c.Request().Context(), time.Now())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"suspended": count})
}

func (h *Handler) OrdersByBeneficiary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.OrdersByBeneficiary(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CoverageReport(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	asOf := time.Now()
	if raw := c.QueryParam("as_of"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid as_of date")
		}
		asOf = t
	}
	report, err := h.svc.GetCoverageReport(c.Request().Context(), id, asOf)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, report)
}
