package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Claims is the token payload the identity provider issues. Subject carries
// the profile UUID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// JWTMiddleware returns middleware that validates the Authorization bearer
// token and stores the user's identity on the request context. Requests
// without a valid token receive 401.
func JWTMiddleware(signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return signingKey, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			role := claims.Role
			if role == "" {
				role = RolePatient
			}

			ctx := WithUser(c.Request().Context(), userID, claims.Email, role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// devUserID is the fixed identity DevAuthMiddleware assigns when the caller
// does not pick one.
var devUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// DevAuthMiddleware is a permissive replacement for JWTMiddleware used in
// local development. It trusts the X-Dev-User-ID, X-Dev-Email, and X-Dev-Role
// headers and falls back to a fixed patient identity. Never enable it outside
// the development environment.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := devUserID
			if raw := c.Request().Header.Get("X-Dev-User-ID"); raw != "" {
				parsed, err := uuid.Parse(raw)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid X-Dev-User-ID")
				}
				userID = parsed
			}

			email := c.Request().Header.Get("X-Dev-Email")
			if email == "" {
				email = "dev@localhost"
			}

			role := c.Request().Header.Get("X-Dev-Role")
			if role == "" {
				role = RolePatient
			}

			ctx := WithUser(c.Request().Context(), userID, email, role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
