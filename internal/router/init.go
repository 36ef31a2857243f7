package router

import (
	userapp "github.com/identitylab/identity-service/internal/application"
	"github.com/identitylab/identity-service/internal/container"
	pginfra "github.com/identitylab/identity-service/internal/infrastructure/postgres"
	handlers "github.com/identitylab/identity-service/internal/interface/http"
	"github.com/identitylab/identity-service/internal/router/modules"
)

// InitModules builds the auth/user dependency graph from the container
// singletons and registers both feature modules. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := userapp.NewService(
		repo,
		container.GetHasher(),
		container.GetJWT(),
		container.GetRedis(),
		logger,
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetRabbitPub(),
		cfg.MailSendEnabled,
	)

	authHandler := handlers.NewAuthHandler(service, logger)
	userHandler := handlers.NewUserHandler(service, logger)

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
}
