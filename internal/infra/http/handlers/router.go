package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
)

// Router groups every handler of the API. Health is optional.
type Router struct {
	Health        *HealthHandler
	Checkout      *CheckoutHandler
	Webhook       *WebhookHandler
	Leads         *LeadHandler
	Subscriptions *SubscriptionHandler
	Reports       *ReportHandler
	Notifications *NotificationHandler
	Companies     *CompanyHandler
	Config        *ConfigHandler

	Auth            *middleware.Auth
	WebhookLimiter  *middleware.RateLimiter
	CheckoutLimiter *middleware.RateLimiter
	AllowedOrigins  []string
	AccessLog       bool
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if rt.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rt.Health != nil {
		r.Get("/health", rt.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if rt.WebhookLimiter != nil {
			r.Use(rt.WebhookLimiter.Handler)
		}
		r.Post("/webhooks/wompi", rt.Webhook.Handle)
	})

	r.Group(func(r chi.Router) {
		r.Use(rt.Auth.Authenticate)

		if rt.CheckoutLimiter != nil {
			r.With(rt.CheckoutLimiter.Handler).Post("/checkout", rt.Checkout.Handle)
		} else {
			r.Post("/checkout", rt.Checkout.Handle)
		}
		r.Get("/recharges/await", rt.Checkout.Await)
		r.Get("/me/company", rt.Companies.Me)

		r.Get("/leads/available", rt.Leads.ListAvailable)
		r.Post("/leads/{leadID}/purchase", rt.Leads.Buy)
		r.Post("/purchases/{purchaseID}/convert", rt.Leads.Convert)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", rt.Subscriptions.List)
			r.Post("/", rt.Subscriptions.Create)
			r.Put("/{id}", rt.Subscriptions.Update)
			r.Patch("/{id}/active", rt.Subscriptions.SetActive)
			r.Delete("/{id}", rt.Subscriptions.Delete)
		})

		r.Post("/reports", rt.Reports.Create)

		r.Get("/notifications", rt.Notifications.List)
		r.Post("/notifications/read", rt.Notifications.MarkRead)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleAdmin))

			r.Post("/leads", rt.Leads.Create)
			r.Patch("/leads/{leadID}/status", rt.Leads.UpdateStatus)
			r.Post("/reports/{id}/review", rt.Reports.Review)
			r.Post("/reports/{id}/resolve", rt.Reports.Resolve)
			r.Post("/companies/{id}/balance-adjustments", rt.Companies.AdjustBalance)
			r.Patch("/companies/{id}/plan", rt.Companies.ChangePlan)
			r.Get("/config", rt.Config.Get)
			r.Put("/config", rt.Config.Update)
			r.Post("/recharges/{transactionID}/reconcile", rt.Webhook.Reconcile)
		})
	})

	return r
}
