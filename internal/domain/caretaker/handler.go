package caretaker

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medsbuddy/medsbuddy/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/caretaker", auth.RequireRole(auth.RoleCaretaker))
	g.GET("/patients", h.ListPatients)
}

func (h *Handler) ListPatients(c echo.Context) error {
	ctx := c.Request().Context()
	email, ok := auth.UserEmailFromContext(ctx)
	if !ok || email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	overviews, err := h.svc.PatientOverviews(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patients": overviews,
	})
}
