package catalog

import (
	"net/http"

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
	api.GET("/providers", h.ListProviders)
	api.POST("/providers", h.CreateProvider)
	api.GET("/providers/:id", h.GetProvider)
	api.PUT("/providers/:id", h.UpdateProvider)
	api.GET("/providers/:id/care-sites", h.CareSitesByProvider)
	api.GET("/providers/:id/fee-schedule", h.FeeScheduleByProvider)

	api.POST("/care-sites", h.CreateCareSite)
	api.GET("/care-sites/:id", h.GetCareSite)
	api.PUT("/care-sites/:id", h.UpdateCareSite)

	api.GET("/service-categories", h.ListCategories)
	api.POST("/service-categories", h.CreateCategory)
	api.GET("/service-categories/:id", h.GetCategory)
	api.GET("/service-categories/:id/subservices", h.SubservicesByCategory)

	api.GET("/subservices", h.ListSubservices)
	api.POST("/subservices", h.CreateSubservice)
	api.GET("/subservices/:id", h.GetSubservice)

	api.POST("/fee-schedule-items", h.CreateFeeItem)
	api.PUT("/fee-schedule-items/:id", h.UpdateFeeItem)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Providers --

func (h *Handler) CreateProvider(c echo.Context) error {
	var p Provider
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateProvider(c.Request().Context(), &p); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProvider(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var p Provider
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdateProvider(c.Request().Context(), &p); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProviders(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListProviders(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CareSitesByProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.CareSitesByProvider(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) FeeScheduleByProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.FeeScheduleByProvider(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Care sites --

func (h *Handler) CreateCareSite(c echo.Context) error {
	var cs CareSite
	if err := c.Bind(&cs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCareSite(c.Request().Context(), &cs); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, cs)
}

func (h *Handler) GetCareSite(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cs, err := h.svc.GetCareSite(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) UpdateCareSite(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var cs CareSite
	if err := c.Bind(&cs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs.ID = id
	if err := h.svc.UpdateCareSite(c.Request().Context(), &cs); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cs)
}

// -- Categories and subservices --

func (h *Handler) CreateCategory(c echo.Context) error {
	var sc ServiceCategory
	if err := c.Bind(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCategory(c.Request().Context(), &sc); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sc, err := h.svc.GetCategory(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) ListCategories(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCategories(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SubservicesByCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.SubservicesByCategory(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateSubservice(c echo.Context) error {
	var sub Subservice
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSubservice(c.Request().Context(), &sub); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *Handler) GetSubservice(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sub, err := h.svc.GetSubservice(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *Handler) ListSubservices(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSubservices(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Fee schedule --

func (h *Handler) CreateFeeItem(c echo.Context) error {
	var f FeeScheduleItem
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateFeeItem(c.Request().Context(), &f); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) UpdateFeeItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var f FeeScheduleItem
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.ID = id
	if err := h.svc.UpdateFeeItem(c.Request().Context(), &f); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, f)
}
