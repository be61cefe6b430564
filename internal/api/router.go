package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/mechatrack/internal/auth"
	"github.com/erazemk/mechatrack/internal/config"
	"github.com/erazemk/mechatrack/internal/imaging"
	"github.com/erazemk/mechatrack/internal/logger"
	"github.com/erazemk/mechatrack/internal/metrics"
	"github.com/erazemk/mechatrack/internal/store"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      *sql.DB
	Auth    *auth.Service
	Revoked *store.RevokedTokens
	Items   *store.Items
	Tools   *store.Tools
	Jobs    *store.Jobs
	Images  *imaging.Processor
	Metrics *metrics.HTTPMetrics
	// RateLimiter enables login/signup throttling when non-nil.
	RateLimiter RateLimiterStore
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	logg := d.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	images := d.Images
	if images == nil {
		images = imaging.NewProcessor(d.Config.Images.MaxUploadBytes)
	}

	authHandler := &AuthHandler{Service: d.Auth, Revoked: d.Revoked, Logger: logg}
	itemsHandler := &ItemsHandler{Items: d.Items, Images: images, Logger: logg}
	toolsHandler := &ToolsHandler{Tools: d.Tools, Logger: logg}
	jobsHandler := &JobsHandler{Jobs: d.Jobs, Logger: logg}
	reportsHandler := &ReportsHandler{
		Jobs:              d.Jobs,
		Items:             d.Items,
		LowStockThreshold: d.Config.Inventory.LowStockThreshold,
		Logger:            logg,
	}

	rl := d.Config.RateLimit
	loginPolicy := NewRateLimitPolicy("login", rl.LoginWindow, rl.LoginIPLimit, rl.LoginEmailLimit)
	signupPolicy := NewRateLimitPolicy("signup", rl.SignupWindow, rl.SignupIPLimit, rl.SignupEmailLimit)

	r := chi.NewRouter()
	r.Use(
		Recoverer(logg),
		RequestID(logg),
		Logging(logg),
		Metrics(d.Metrics),
		CORS(d.Config.CORS.AllowedOrigins),
	)
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/healthz", Health(d.DB))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	authMW := AuthMiddleware(d.Auth.Tokens, logg)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(AuthRateLimit(signupPolicy, d.RateLimiter, logg)).Post("/signup", authHandler.Signup)
		r.With(AuthRateLimit(loginPolicy, d.RateLimiter, logg)).Post("/login", authHandler.Login)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Get("/me", authHandler.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemsHandler.List)
			r.Post("/", itemsHandler.Create)
			r.Put("/{id}", itemsHandler.Update)
			r.Delete("/{id}", itemsHandler.Delete)
			r.Put("/{id}/image", itemsHandler.UploadImage)
			r.Get("/{id}/image", itemsHandler.GetImage)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", toolsHandler.List)
			r.Post("/", toolsHandler.Create)
			r.Put("/{id}", toolsHandler.Update)
			r.Delete("/{id}", toolsHandler.Delete)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobsHandler.List)
			r.Post("/", jobsHandler.Create)
			r.Put("/{id}", jobsHandler.Update)
			r.Delete("/{id}", jobsHandler.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportsHandler.JobSummary)
			r.Get("/stock", reportsHandler.StockSummary)
		})
	})

	return r
}
