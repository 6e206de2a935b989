package http

import (
	"log/slog"
	"os"

	"github.com/edutrack/tuition-backend-go/internal/handler/http/middleware"
	"github.com/edutrack/tuition-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	JWTService jwt.Service,
	tierHandler TierHandler,
	billingHandler BillingHandler,
	accessHandler AccessHandler,
	env string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "tuition-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Public: the registration page lists tiers and fees
		r.Get("/tiers", tierHandler.ListTiers)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/accounts/{accountID}", func(r chi.Router) {
				r.Get("/access", accessHandler.GetAccountAccess)
				r.Get("/payments", accessHandler.AccountHistory)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Patch("/accounts/{accountID}/lock", accessHandler.SetAccountLock)

				r.Route("/tiers", func(r chi.Router) {
					r.Post("/", tierHandler.CreateTier)
					r.Get("/{tierID}", tierHandler.GetTier)
					r.Patch("/{tierID}/fee", tierHandler.UpdateFee)
				})

				r.Route("/payments", func(r chi.Router) {
					r.Get("/", billingHandler.ListPayments)
					r.Post("/", billingHandler.CreatePayment)
					r.Post("/batch", billingHandler.GenerateBatch)
					r.Post("/sweep", billingHandler.SweepOverdue)
					r.Get("/summary", billingHandler.PeriodSummary)
					r.Patch("/{paymentID}/status", billingHandler.SetPaymentStatus)
				})
			})
		})
	})
	return r
}
