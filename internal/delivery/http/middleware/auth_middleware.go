package middleware

import (
	"errors"
	"strings"

	"learning-buddy/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxSubjectKey = "subject"
	CtxEmailKey   = "email"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxSubjectKey, claims.Subject)
		c.Locals(CtxEmailKey, claims.Email)

		return c.Next()
	}
}

// EmailFromContext returns the email stored by AuthMiddleware.
func EmailFromContext(c fiber.Ctx) (string, bool) {
	email, ok := c.Locals(CtxEmailKey).(string)
	if !ok || strings.TrimSpace(email) == "" {
		return "", false
	}
	return email, true
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
