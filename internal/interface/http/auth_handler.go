package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/identitylab/identity-service/internal/application"
	"github.com/identitylab/identity-service/pkg/response"
	"github.com/identitylab/identity-service/pkg/validation"
)

// AuthHandler exposes the registration and login endpoints.
type AuthHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *userapp.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	Name      string `json:"name" binding:"required"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		var dup *userapp.DuplicateEmailError
		if errors.As(err, &dup) {
			response.Error(c, http.StatusConflict, dup.Error(), nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "registration failed", nil)
		return
	}

	response.Success(c, http.StatusCreated, res, "user registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// One message for unknown email and wrong password alike.
		if errors.Is(err, userapp.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	response.Success(c, http.StatusOK, res, "login successful", map[string]any{"expires_at": res.ExpiresAt})
}
