package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/identitylab/identity-service/internal/application"
	"github.com/identitylab/identity-service/internal/interface/middleware"
	"github.com/identitylab/identity-service/pkg/response"
)

// UserHandler exposes the read-only user endpoints behind the auth middleware.
type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// GetProfile GET /api/profile — the caller's own record, resolved from the token.
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "profile lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

// GetUser GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	p, err := h.Svc.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "user lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, p, "user", nil)
}

// ListUsers GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	profiles, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "listing users failed", nil)
		return
	}
	response.Success(c, http.StatusOK, profiles, "users", map[string]any{"count": len(profiles)})
}

// Search GET /api/users/search?q=...&size=...
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
