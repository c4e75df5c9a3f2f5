package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-auth-api/internal/application"
	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-users-auth-api/internal/interface/middleware"
	"github.com/oksasatya/go-users-auth-api/pkg/response"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// identity returns the resolved caller; Authenticate guarantees it on protected routes.
func (h *UserHandler) identity(c *gin.Context) (*middleware.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		logEntry(c, h.Logger).Error("handler mounted without authentication")
		response.Fail(c, http.StatusInternalServerError, "internal error", nil)
	}
	return id, ok
}

func (in updateSelfRequest) toInput() application.UpdateInput {
	return application.UpdateInput{Email: in.Email, Password: in.Password, Name: in.Name}
}

// Create registers an account; the role is always user.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"id": u.ID}, "user created", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserResponses(users), "users fetched", gin.H{"count": len(users)})
}

func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

// Me answers 401 when the token outlived its user record.
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), id.ID)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Fail(c, http.StatusUnauthorized, "user no longer exists", nil)
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserResponse(u), "profile fetched", nil)
}

// UpdateMe applies a self-service patch; the role is not part of it.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req updateSelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.UpdateUser(c.Request.Context(), id.ID, req.toInput())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserResponse(u), "profile updated", nil)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteUser(c.Request.Context(), id.ID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadAvatar expects a multipart "avatar" image field.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "is required"})
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, "avatar too large", map[string]string{"avatar": "must be at most 5MB"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "must be an image"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), id.ID, f, fh.Filename, contentType)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}

// GetByID returns the target user next to the identity that asked for it.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"currentRequestingUser": identityResponse(id),
		"user":                  toUserResponse(u),
	}, "user fetched", nil)
}

func (h *UserHandler) UpdateByID(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := req.toInput()
	if req.Role != nil {
		role := entity.Role(*req.Role)
		in.Role = &role
	}
	u, err := h.Svc.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserResponse(u), "user updated", nil)
}

func (h *UserHandler) DeleteByID(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
