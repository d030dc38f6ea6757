package profile

import (
	"errors"
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
	api.GET("/profile", h.Get)
	api.PUT("/profile/settings", h.UpdateSettings)
}

// Get returns the caller's profile, provisioning it on first request.
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	email, _ := auth.UserEmailFromContext(ctx)
	role, _ := auth.RoleFromContext(ctx)

	p, err := h.svc.EnsureProfile(ctx, userID, email, role)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

type settingsRequest struct {
	CaretakerEmail string `json:"caretaker_email"`
	WindowMinutes  int    `json:"notification_window_minutes"`
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	p, err := h.svc.UpdateSettings(ctx, userID, req.CaretakerEmail, req.WindowMinutes)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
