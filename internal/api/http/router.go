package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keyfold/keyfold-server/internal/api/http/handler"
	"github.com/keyfold/keyfold-server/internal/api/http/middleware"
	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
)

// RouterParams collects everything the API surface depends on.
type RouterParams struct {
	TokenManager   model.TokenManager
	ConsumerKeys   handler.ConsumerKeyService
	ProjectKeys    handler.ProjectKeyService
	ConsumerSecret handler.ConsumerSecretService
	Logger         *logger.Logger
}

// NewRouter assembles the versioned REST API. Everything under /api/v1
// requires a valid bearer token.
func NewRouter(params RouterParams) http.Handler {
	consumerKeys := handler.NewConsumerKeyHandler(params.ConsumerKeys)
	projectKeys := handler.NewProjectKeyHandler(params.ProjectKeys)
	consumerSecrets := handler.NewConsumerSecretHandler(params.ConsumerSecret)

	r := chi.NewRouter()
	r.Use(middleware.Logging(params.Logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(params.TokenManager, params.Logger))

		r.Route("/consumer-keys", func(r chi.Router) {
			r.Get("/{orgId}", consumerKeys.GetLatest)
			r.Post("/{orgId}/share", consumerKeys.Share)
		})

		r.Route("/project-keys", func(r chi.Router) {
			r.Get("/{projectId}", projectKeys.GetLatest)
			r.Post("/{projectId}/members", projectKeys.AddMembers)
		})

		r.Route("/consumer-secrets", func(r chi.Router) {
			r.Post("/", consumerSecrets.Create)
			r.Get("/{orgId}", consumerSecrets.List)
			r.Patch("/{secretId}", consumerSecrets.Update)
			r.Delete("/{secretId}", consumerSecrets.Delete)
		})
	})

	return r
}
