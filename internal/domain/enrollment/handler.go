package enrollment

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aegis-health/aegis/internal/platform/apperr"
	"github.com/aegis-health/aegis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/clients", h.ListClients)
	api.POST("/clients", h.CreateClient)
	api.GET("/clients/:id", h.GetClient)
	api.PUT("/clients/:id", h.UpdateClient)
	api.GET("/clients/:id/contracts", h.ContractsByClient)

	api.POST("/contracts", h.CreateContract)
	api.GET("/contracts/:id", h.GetContract)
	api.PUT("/contracts/:id", h.UpdateContract)
	api.GET("/contracts/:id/beneficiaries", h.BeneficiariesByContract)

	api.POST("/beneficiaries", h.CreateBeneficiary)
	api.GET("/beneficiaries/:id", h.GetBeneficiary)
	api.PUT("/beneficiaries/:id", h.UpdateBeneficiary)
	api.GET("/beneficiaries/:id/eligibility", h.CheckEligibility)
	api.GET("/beneficiaries", h.SearchBeneficiaries)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// asOf reads the optional ?as_of=YYYY-MM-DD query param, defaulting to now.
func asOf(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("as_of")
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid as_of date")
	}
	return t, nil
}

// -- Clients --

func (h *Handler) CreateClient(c echo.Context) error {
	var cl Client
	if err := c.Bind(&cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateClient(c.Request().Context(), &cl); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) GetClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cl, err := h.svc.GetClient(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) UpdateClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var cl Client
	if err := c.Bind(&cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl.ID = id
	if err := h.svc.UpdateClient(c.Request().Context(), &cl); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) ListClients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListClients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ContractsByClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ContractsByClient(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Contracts --

func (h *Handler) CreateContract(c echo.Context) error {
	var ct Contract
	if err := c.Bind(&ct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateContract(c.Request().Context(), &ct); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, ct)
}

func (h *Handler) GetContract(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ct, err := h.svc.GetContract(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *Handler) UpdateContract(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var ct Contract
	if err := c.Bind(&ct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ct.ID = id
	if err := h.svc.UpdateContract(c.Request().Context(), &ct); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *Handler) BeneficiariesByContract(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.BeneficiariesByContract(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Beneficiaries --

func (h *Handler) CreateBeneficiary(c echo.Context) error {
	var b Beneficiary
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBeneficiary(c.Request().Context(), &b); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBeneficiary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	b, err := h.svc.GetBeneficiary(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) UpdateBeneficiary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var b Beneficiary
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.ID = id
	if err := h.svc.UpdateBeneficiary(c.Request().Context(), &b); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) CheckEligibility(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	at, err := asOf(c)
	if err != nil {
		return err
	}
	result, err := h.svc.CheckEligibility(c.Request().Context(), id, at)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) SearchBeneficiaries(c echo.Context) error {
	at, err := asOf(c)
	if err != nil {
		return err
	}
	q := SearchQuery{
		Text:    c.QueryParam("q"),
		Insurer: c.QueryParam("insurer"),
		Entity:  c.QueryParam("entity"),
	}
	if raw := c.QueryParam("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client_id")
		}
		q.ClientID = clientID
	}
	pg := pagination.FromContext(c)
	hits, total, err := h.svc.SearchBeneficiaries(c.Request().Context(), q, at, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(hits, total, pg.Limit, pg.Offset))
}
