package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mppise/eaappreciate/pkg/models"
)

// ContextKey represents keys for context values
type ContextKey string

const UserContextKey ContextKey = "user"

// JWTClaims carries the identity claims issued by the company SSO gateway.
// Token issuance happens outside this service; we only verify and read.
type JWTClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// RequireAuth validates the Bearer token on every request and places the
// resolved user in the echo context.
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			user, err := validateToken(tokenParts[1], secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(string(UserContextKey), user)
			return next(c)
		}
	}
}

func validateToken(tokenString, secret string) (models.CurrentUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = fmt.Errorf("invalid token")
		}
		return models.CurrentUser{}, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return models.CurrentUser{}, fmt.Errorf("invalid token claims")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return models.CurrentUser{}, fmt.Errorf("token missing subject")
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return models.CurrentUser{ID: claims.Subject, Name: name}, nil
}

// CurrentUser returns the authenticated user from the echo context.
func CurrentUser(c echo.Context) (models.CurrentUser, bool) {
	user, ok := c.Get(string(UserContextKey)).(models.CurrentUser)
	return user, ok
}
