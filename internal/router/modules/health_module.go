package modules

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-users-auth-api/pkg/response"
)

type HealthModule struct {
	Check func(ctx context.Context) error
}

func NewHealthModule(check func(ctx context.Context) error) *HealthModule {
	return &HealthModule{Check: check}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		if m.Check != nil {
			if err := m.Check(c.Request.Context()); err != nil {
				response.Fail(c, http.StatusServiceUnavailable, "unhealthy", nil)
				return
			}
		}
		response.OK(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
	})
}
