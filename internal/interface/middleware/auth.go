package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
	"github.com/oksasatya/go-users-auth-api/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

// ErrUnauthenticated matches every rejection produced by a strategy
var ErrUnauthenticated = errors.New("unauthenticated")

// denial is a strategy rejection whose text is safe to show to the client
type denial struct{ reason string }

func (d *denial) Error() string        { return d.reason }
func (d *denial) Is(target error) bool { return target == ErrUnauthenticated }

func deny(reason string) error { return &denial{reason: reason} }

// Identity is the caller resolved by an Authenticator. User is set only by
// strategies that load the full record.
type Identity struct {
	ID   string
	Role entity.Role
	User *entity.User
}

// Authenticator resolves the caller of a request
type Authenticator interface {
	Authenticate(c *gin.Context) (*Identity, error)
}

// CredentialChecker verifies an email/password pair; (nil, nil) means "no match"
type CredentialChecker interface {
	CheckCredentials(ctx context.Context, email, password string) (*entity.User, error)
}

const (
	StrategyBearer = "bearer"
	StrategyBasic  = "basic"
)

// NewAuthenticator picks the strategy configured for the deployment
func NewAuthenticator(kind string, jwt *helpers.JWTManager, creds CredentialChecker) (Authenticator, error) {
	switch kind {
	case "", StrategyBearer:
		return &BearerAuth{JWT: jwt}, nil
	case StrategyBasic:
		return &BasicAuth{Credentials: creds}, nil
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", kind)
	}
}

// Authenticate runs the strategy and stores the identity in the Gin context.
// Missing or bad credentials abort with 401, anything else with 500.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(c)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				response.Fail(c, http.StatusUnauthorized, err.Error(), nil)
				return
			}
			if l := loggerFrom(c); l != nil {
				l.WithError(err).Error("authentication failed")
			}
			response.Fail(c, http.StatusInternalServerError, "internal error", nil)
			return
		}
		c.Set(CtxIdentityKey, id)
		c.Set(CtxUserIDKey, id.ID)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			response.Fail(c, http.StatusInternalServerError, "admin gate mounted without authentication", nil)
			return
		}
		if !id.Role.IsAdmin() {
			response.Fail(c, http.StatusForbidden, "admin only", nil)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by Authenticate
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}
