package alerts

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Handler exposes the batch job to the platform cron over HTTP. The endpoint
// is guarded by a static bearer secret, not user auth.
type Handler struct {
	job    *Job
	secret string
}

func NewHandler(job *Job, cronSecret string) *Handler {
	return &Handler{job: job, secret: cronSecret}
}

func (h *Handler) RegisterRoutes(internal *echo.Group) {
	internal.POST("/check-missed", h.CheckMissed)
}

func (h *Handler) CheckMissed(c echo.Context) error {
	// An unset secret disables the endpoint rather than opening it up.
	if h.secret == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.secret)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	result, err := h.job.Run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
