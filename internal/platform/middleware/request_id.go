package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header used to propagate request IDs between
// services and back to the caller.
const RequestIDHeader = "X-Request-ID"

// RequestID returns middleware that assigns a request ID to every request.
// An ID supplied by the caller in X-Request-ID is preserved so IDs stay
// stable across proxies; otherwise a new UUID is generated. The ID is stored
// on the echo context under "request_id" and echoed in the response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
