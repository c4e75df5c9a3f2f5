package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-auth-api/internal/application"
	"github.com/oksasatya/go-users-auth-api/internal/interface/middleware"
	"github.com/oksasatya/go-users-auth-api/pkg/response"
)

type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

func writePair(c *gin.Context, pair application.TokenPair, msg string) {
	response.OK(c, http.StatusOK,
		tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		msg,
		gin.H{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry},
	)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	writePair(c, pair, "login successful")
}

// RefreshTokens rotates the presented refresh token. A missing token is reported the
// same way as a bad one.
func (h *AuthHandler) RefreshTokens(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnauthorized, application.MsgRefreshInvalid, nil)
		return
	}
	pair, err := h.Svc.Rotate(c.Request.Context(), req.CurrentRefreshToken)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	writePair(c, pair, "token refreshed")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Fail(c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), id.ID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}
