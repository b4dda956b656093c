package auth

import (
	"fmt"
	"strings"

	"techhub/models"
	"techhub/utils"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding the verified *Claims.
const ClaimsKey = "claims"

// Authenticate creates a Gin middleware that requires a valid bearer token and
// stores its claims in the context.
func (s *Service) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		// The scheme is case-insensitive: "Bearer", "bearer" and "BEARER" are equivalent.
		scheme, tokenString, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			utils.RespondError(c, models.ErrUnauthenticated)
			return
		}

		claims, err := s.VerifyToken(tokenString)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

var roleLabels = map[models.Role]string{
	models.RoleStudent: "Student",
	models.RoleMentor:  "Mentor",
	models.RolePartner: "Internship Partner",
	models.RoleAdmin:   "Admin",
}

// RequireRole lets the request through when the authenticated caller holds role
// or is an admin. It must run after Authenticate.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			utils.RespondError(c, models.ErrUnauthenticated)
			return
		}
		if !claims.Role.Satisfies(role) {
			utils.GinForbidden(c, fmt.Sprintf("Access denied. %s only.", roleLabels[role]))
			return
		}
		c.Next()
	}
}
