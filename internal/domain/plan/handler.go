package plan

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
	api.GET("/plans", h.ListPlans)
	api.POST("/plans", h.CreatePlan)
	api.GET("/plans/:id", h.GetPlan)
	api.PUT("/plans/:id", h.UpdatePlan)

	api.GET("/plans/:id/coverages", h.CoveragesByPlan)
	api.POST("/plans/:id/coverages", h.CreateCoverage)
	api.PUT("/coverages/:id", h.UpdateCoverage)
	api.DELETE("/coverages/:id", h.DeleteCoverage)
	api.GET("/plans/:id/coverages/:categoryId", h.GetCoverage)

	api.GET("/plans/:id/details", h.DetailsByPlan)
	api.POST("/plans/:id/details", h.AddDetail)
	api.DELETE("/details/:id", h.RemoveDetail)
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var p Plan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePlan(c.Request().Context(), &p); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePlan(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var p Plan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePlan(c.Request().Context(), &p); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPlans(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetCoverage(c echo.Context) error {
	planID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	categoryID, err := parseID(c, "categoryId")
	if err != nil {
		return err
	}
	cc, err := h.svc.GetCoverage(c.Request().Context(), planID, categoryID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if cc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "category not covered by plan")
	}
	return c.JSON(http.StatusOK, cc)
}

func (h *Handler) CreateCoverage(c echo.Context) error {
	planID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var cc CategoryCoverage
	if err := c.Bind(&cc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cc.PlanID = planID
	if err := h.svc.CreateCoverage(c.Request().Context(), &cc); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, cc)
}

func (h *Handler) UpdateCoverage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var cc CategoryCoverage
	if err := c.Bind(&cc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cc.ID = id
	if err := h.svc.UpdateCoverage(c.Request().Context(), &cc); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cc)
}

func (h *Handler) DeleteCoverage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCoverage(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CoveragesByPlan(c echo.Context) error {
	planID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.CoveragesByPlan(c.Request().Context(), planID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddDetail(c echo.Context) error {
	planID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var d PlanDetail
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.PlanID = planID
	if err := h.svc.AddDetail(c.Request().Context(), &d); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) RemoveDetail(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveDetail(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DetailsByPlan(c echo.Context) error {
	planID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.DetailsByPlan(c.Request().Context(), planID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}
