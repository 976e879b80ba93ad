// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/splitledger/docs"
	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/settlement"
	mw "github.com/fkhayef/splitledger/pkg/middleware"
)

// Options configures cross-cutting router behavior
type Options struct {
	AllowedOrigins []string

	// JWTSecret enables bearer authentication; when empty the X-User-ID header is trusted
	JWTSecret string
}

// New returns the API router
func New(
	opts Options,
	groupsV1 *group.Handler,
	expensesV1 *expense.Handler,
	settlementsV1 *settlement.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", mw.DevUserHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(mw.NewAuthenticator(opts.JWTSecret).Middleware)
		} else {
			r.Use(mw.DevUserMiddleware)
		}
		r.Use(middleware.AllowContentType("application/json"))

		r.Mount("/groups", groupsV1.Routes(settlementsV1.GroupRoutes))
		r.Mount("/expenses", expensesV1.Routes())
	})

	return router
}
