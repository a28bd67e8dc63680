package middleware

import (
	"crypto/subtle"
	"strings"

	"reportshare/config"
	"reportshare/internal/delivery/api/response"
	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextKeyUserID = "userID"
	contextKeyRoles  = "roles"

	// HeaderWebhookSecret carries the shared secret of CRM webhooks.
	HeaderWebhookSecret = "X-Webhook-Secret"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc      service.TokenService
	webhookSecret []byte
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc:      tokenSvc,
		webhookSecret: []byte(cfg.SecretKey.Webhook),
	}
}

// Authenticate validates the bearer access token and stores the caller on the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		c.Set(contextKeyUserID, claims.UserID)
		c.Set(contextKeyRoles, entity.RolesFromStrings(claims.Roles))

		return next(c)
	}
}

// RequireRole checks that the authenticated caller has role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !HasRole(c, role) {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: require '"+role.String()+"' role")
			}

			return next(c)
		}
	}
}

// RequireWebhookSecret rejects CRM webhook calls that do not present the shared secret.
// The comparison runs in constant time and before the body is read.
func (m *AuthMiddleware) RequireWebhookSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		presented := []byte(c.Request().Header.Get(HeaderWebhookSecret))
		if len(m.webhookSecret) == 0 || subtle.ConstantTimeCompare(presented, m.webhookSecret) != 1 {
			return response.AppError(c, domainerrors.ErrWebhookUnauthorized)
		}

		return next(c)
	}
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(contextKeyUserID).(uuid.UUID)

	return userID, ok && userID != uuid.Nil
}

// HasRole reports whether the authenticated user holds role.
func HasRole(c echo.Context, role entity.Role) bool {
	roles, ok := c.Get(contextKeyRoles).(entity.Roles)

	return ok && roles.Contains(role)
}
