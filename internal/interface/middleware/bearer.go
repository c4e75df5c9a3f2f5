package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
)

// BearerAuth reads "Authorization: Bearer <access token>" and trusts its claims
// without a store lookup.
type BearerAuth struct {
	JWT *helpers.JWTManager
}

func (b *BearerAuth) Authenticate(c *gin.Context) (*Identity, error) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, deny("missing bearer token")
	}
	claims, err := b.JWT.VerifyAccessToken(strings.TrimSpace(token))
	if err != nil {
		return nil, deny("invalid access token")
	}
	return &Identity{ID: claims.UserID, Role: entity.Role(claims.Role)}, nil
}
