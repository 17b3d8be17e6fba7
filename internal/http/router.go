package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/invoiceai/internal/http/client"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/events"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/guard"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/payment"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/report"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/user"
)

type Info struct {
	Name        string
	Version     string
	CORSOrigins []string
}

type Handlers struct {
	Clients  *client.Handler
	Invoices *invoice.Handler
	Payments *payment.Handler
	Users    *user.Handler
	Reports  *report.Handler
	Events   *events.Handler
}

func New(info Info, resolver guard.Resolver, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   info.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", health(info))

		r.Group(func(r chi.Router) {
			r.Use(guard.Authenticate(resolver))

			r.Get("/auth/me", h.Users.Me)
			r.Route("/users", h.Users.Routes)

			r.Route("/clients", h.Clients.Routes)
			r.Route("/invoices", h.Invoices.Routes)
			r.Route("/payments", h.Payments.Routes)
			r.Route("/reports", h.Reports.Routes)

			r.Get("/events", h.Events.Stream)

			r.Route("/admin", func(r chi.Router) {
				r.Use(guard.RequireSuperuser, guard.Unrestricted)

				r.Route("/clients", h.Clients.Routes)
				r.Route("/invoices", h.Invoices.Routes)
				r.Route("/payments", h.Payments.Routes)
				r.Route("/reports", h.Reports.Routes)
			})
		})
	})

	return router
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func health(info Info) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: info.Name, Version: info.Version})
	}
}
