package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/proid/proid/internal/api/handler"
	"github.com/proid/proid/internal/api/middleware"
	"github.com/proid/proid/internal/attribute"
	"github.com/proid/proid/internal/auth"
	"github.com/proid/proid/internal/dataconsumer"
	"github.com/proid/proid/internal/upload"
	"github.com/proid/proid/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger     handler.DBPinger
	Issuer       *auth.TokenIssuer
	AuthService  *auth.Service
	UserRepo     user.Repository
	AttrRepo     attribute.Repository
	ConsumerRepo dataconsumer.Repository
	Uploads      *upload.Store
	Version      string
	Dev          bool
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	requireAuth := middleware.Auth(deps.Issuer, deps.UserRepo)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.UserRepo, deps.Dev)
	attrHandler := handler.NewAttributeHandler(deps.AttrRepo, deps.Uploads, deps.Dev)
	consumerHandler := handler.NewDataConsumerHandler(deps.ConsumerRepo, deps.Dev)
	userHandler := handler.NewUserHandler(deps.AuthService, deps.UserRepo, deps.Dev)
	adminHandler := handler.NewAdminUserHandler(deps.UserRepo, deps.Dev)
	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(requireAuth).Get("/validate", authHandler.Validate)
		})

		r.Route("/attributes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", attrHandler.List)
			r.Post("/", attrHandler.Create)
			r.Put("/{id}", attrHandler.Update)
			r.Patch("/{id}", attrHandler.Update)
			r.Delete("/{id}", attrHandler.Delete)
		})

		r.Route("/data-consumers", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", consumerHandler.List)
			r.Post("/", consumerHandler.Create)
			r.Get("/{id}", consumerHandler.GetByID)
			r.Put("/{id}", consumerHandler.Update)
			r.Delete("/{id}", consumerHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Put("/password", userHandler.UpdatePassword)
		})

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireAdmin())
			r.Get("/", adminHandler.List)
			r.Get("/{id}", adminHandler.GetByID)
			r.Patch("/{id}", adminHandler.Update)
			r.Delete("/{id}", adminHandler.Delete)
		})
	})

	if deps.Uploads != nil {
		fileServer := http.StripPrefix(upload.PublicPrefix,
			http.FileServer(http.Dir(deps.Uploads.Dir())))
		r.Get(upload.PublicPrefix+"*", fileServer.ServeHTTP)
	}

	return r
}
