package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/receipts/internal/http/receipts"
	"github.com/MrJamesThe3rd/receipts/internal/http/uploads"
)

func New(
	receiptsV1 *receipts.Handler,
	confirmationV1 *receipts.ConfirmationHandler,
	uploadsV1 *uploads.Handler,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/receipts", receiptsV1.Routes)

		r.Route("/confirmation", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			confirmationV1.Routes(r)
		})

		r.Route("/uploads", uploadsV1.Routes)
		r.Route("/connectivity", uploadsV1.ConnectivityRoutes)
	})

	return router
}
