package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-auth-api/internal/application"
	"github.com/oksasatya/go-users-auth-api/internal/interface/middleware"
	"github.com/oksasatya/go-users-auth-api/pkg/helpers"
	"github.com/oksasatya/go-users-auth-api/pkg/response"
	"github.com/oksasatya/go-users-auth-api/pkg/validation"
)

func logEntry(c *gin.Context, logger *logrus.Logger) *logrus.Entry {
	entry := logger.WithField("request_id", c.GetString("request_id"))
	if uid := c.GetString(middleware.CtxUserIDKey); uid != "" {
		entry = entry.WithField("user_id", uid)
	}
	return entry
}

func badRequest(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

// writeError maps service errors to a status and a client-safe message. Anything
// unrecognised is logged with its cause and reported as a bare 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, application.ErrBadCredentials):
		response.Fail(c, http.StatusUnauthorized, application.MsgBadCredentials, nil)
	case errors.Is(err, application.ErrRefreshInvalid):
		response.Fail(c, http.StatusUnauthorized, application.MsgRefreshInvalid, nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, "invalid payload", map[string]string{"email": "is already registered"})
	case errors.Is(err, application.ErrInvalidRole):
		response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"role": "must be one of: user, admin"})
	case errors.Is(err, application.ErrPasswordTooLong):
		response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"password": "must be at most 72 bytes"})
	case errors.Is(err, application.ErrAvatarsDisabled):
		response.Fail(c, http.StatusServiceUnavailable, "avatar uploads are not enabled", nil)
	default:
		entry := logEntry(c, logger).WithError(err)
		if errors.Is(err, helpers.ErrSigning) {
			entry.Error("token signing failed")
		} else {
			entry.Error("request failed")
		}
		response.Fail(c, http.StatusInternalServerError, "internal error", nil)
	}
}
