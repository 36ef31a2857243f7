package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/identitylab/identity-service/internal/interface/http"
	"github.com/identitylab/identity-service/internal/interface/middleware"
	"github.com/identitylab/identity-service/pkg/helpers"
)

// UserModule wires user lookup routes behind bearer-token auth.
// Protected: GET /api/profile, GET /api/users, GET /api/users/:id,
// GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.GET("/users", m.Handler.ListUsers)
		auth.GET("/users/search", m.Handler.Search)
		auth.GET("/users/:id", m.Handler.GetUser)
	}
}
