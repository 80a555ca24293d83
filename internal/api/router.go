package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"wifi-billing/internal/api/handler"
	mw "wifi-billing/internal/api/middleware"
	"wifi-billing/internal/batch"
	"wifi-billing/internal/config"
	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/domain/payment"
	"wifi-billing/internal/domain/report"
	"wifi-billing/internal/domain/suspension"

	_ "wifi-billing/docs"
)

// Services bundles everything the HTTP surface needs.
type Services struct {
	Customers   customer.CustomerService
	Payments    payment.PaymentService
	Suspensions suspension.SuspensionService
	Reports     report.ReportService
	Accumulator *batch.DebtAccumulationJob
}

func SetupRouter(svc Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupCustomerRoutes(router, cfg, svc, logger)
	setupPaymentRoutes(router, cfg, svc, logger)
	setupSuspensionRoutes(router, cfg, svc, logger)
	setupReportRoutes(router, cfg, svc, logger)
	setupBatchRoutes(router, cfg, svc, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(*cfg, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupCustomerRoutes(router *chi.Mux, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc.Customers, svc.Suspensions, logger)
	sh := handler.NewSuspensionHandler(svc.Suspensions, logger)
	ph := handler.NewPaymentHandler(svc.Payments, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
			r.Get("/bill", h.GetBill)
			r.Get("/payments", ph.ListCustomerPayments)
			r.Post("/suspensions", sh.AddSuspension)
			r.Get("/suspensions", sh.ListCustomerSuspensions)
			r.Delete("/suspensions/{suspensionID}", sh.DeleteSuspension)
		})
	})
}

func setupPaymentRoutes(router *chi.Mux, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewPaymentHandler(svc.Payments, logger)

	router.Route("/payments", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.ProcessPayment)
		r.Get("/", h.ListPayments)
		r.Route("/{paymentID}", func(r chi.Router) {
			r.Get("/", h.GetPayment)
			r.Put("/", h.UpdatePayment)
			r.Delete("/", h.DeletePayment)
		})
	})
}

func setupSuspensionRoutes(router *chi.Mux, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewSuspensionHandler(svc.Suspensions, logger)

	router.Route("/suspensions", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/", h.ListSuspensions)
	})
}

func setupReportRoutes(router *chi.Mux, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewReportHandler(svc.Reports, logger)

	router.Route("/reports", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/summary", h.GetSummary)
		r.Get("/ledger", h.GetLedger)
	})
}

func setupBatchRoutes(router *chi.Mux, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewBatchHandler(svc.Accumulator, logger)

	router.Route("/batch", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/accumulate-debt", h.TriggerAccumulation)
	})
}
