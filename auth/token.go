package auth

import (
	"errors"
	"fmt"
	"time"

	"techhub/logger"
	"techhub/models"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is written to and required from every token.
const Issuer = "techhub"

// Claims defines the structure of the JWT claims.
type Claims struct {
	ID    string      `json:"id"` // canonical string form of the user id
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a signed HS256 token for user, valid for lifetime.
func GenerateJWT(user *models.User, secret string, lifetime time.Duration) (string, error) {
	if secret == "" {
		logger.Log.Error("JWT secret is empty. Cannot generate token.")
		return "", fmt.Errorf("%w: JWT secret is not configured", models.ErrConfiguration)
	}

	now := time.Now()
	claims := &Claims{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		logger.Log.Errorf("Failed to sign JWT token: %v", err)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT parses and validates a token string. Any failure other than a
// missing secret is ErrInvalidToken.
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		logger.Log.Error("JWT secret is empty. Cannot validate token.")
		return nil, fmt.Errorf("%w: JWT secret is not configured", models.ErrConfiguration)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Log.Debug("JWT validation failed: token expired")
			return nil, fmt.Errorf("%w: token has expired", models.ErrInvalidToken)
		}
		logger.Log.Debugf("JWT validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}
