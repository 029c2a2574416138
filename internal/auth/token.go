package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ms-restaurant/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// ActorFromJWT extracts the subject and role claims from an already-verified
// JWT. Signature verification happened upstream (OIDC middleware); this only
// reads claims for callers that hold the raw token.
func ActorFromJWT(tokenString string) (models.Actor, error) {
	if tokenString == "" {
		return models.Actor{}, errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Actor{}, errors.New("subject claim not found in token")
	}

	actor := models.Actor{ID: sub, Role: models.RoleUser}
	if role, ok := claims["role"].(string); ok {
		switch models.Role(role) {
		case models.RoleAdmin, models.RoleStaff:
			actor.Role = models.Role(role)
		}
	}
	return actor, nil
}
