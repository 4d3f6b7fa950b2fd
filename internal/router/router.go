package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tool-market/internal/handlers"
	"tool-market/internal/metrics"
	"tool-market/internal/middleware"
	"tool-market/internal/services"
)

// Deps are the process-wide services the routes are served from.
type Deps struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Tools    *services.ToolService
	Orders   *services.OrderService
	Reviews  *services.ReviewService
	Payments *services.PaymentService
	Checks   map[string]handlers.Pinger
}

type Options struct {
	// Strict selects the unified guard table; otherwise the legacy one is served.
	Strict         bool
	RateLimit      rate.Limit
	RateLimitBurst int
}

type guardLevel int

const (
	open guardLevel = iota
	authenticated
	admin
)

// guardTable lists, per policy, the guard in front of each route that has one.
var guardTable = map[string]struct{ legacy, strict guardLevel }{
	"PUT /tool/{id}":          {open, admin},
	"POST /tools":             {admin, admin},
	"GET /orders":             {authenticated, authenticated},
	"PATCH /order/{id}":       {open, authenticated},
	"GET /manageOrders":       {authenticated, admin},
	"DELETE /order/{email}":   {open, admin},
	"PUT /user/admin/{email}": {admin, admin},
}

// SetupRouter builds the route table. CORS wraps the router so preflight
// OPTIONS requests are answered before route matching.
func SetupRouter(deps Deps, opts Options, logger zerolog.Logger) http.Handler {
	guard := middleware.NewAccessGuard(deps.Auth, deps.Users, opts.Strict, logger)

	toolHandler := handlers.NewToolHandler(deps.Tools, logger)
	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Users, logger)
	reviewHandler := handlers.NewReviewHandler(deps.Reviews, logger)
	userHandler := handlers.NewUserHandler(deps.Users, logger)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments, logger)
	healthHandler := handlers.NewHealthHandler(deps.Checks, logger)

	r := mux.NewRouter()

	if opts.RateLimit == 0 {
		opts.RateLimit, opts.RateLimitBurst = rate.Limit(10), 20
	}
	rateLimiter := middleware.NewRateLimiter(opts.RateLimit, opts.RateLimitBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(rateLimiter.Middleware())
	r.Use(middleware.RequestValidation())

	handle := func(method, path string, h http.HandlerFunc) {
		level := open
		if entry, ok := guardTable[method+" "+path]; ok {
			level = entry.legacy
			if opts.Strict {
				level = entry.strict
			}
		}

		var handler http.Handler = h
		switch level {
		case authenticated:
			handler = guard.Authenticate(handler)
		case admin:
			handler = guard.Admin(handler)
		}
		r.Handle(path, handler).Methods(method)
	}

	handle("GET", "/tools", toolHandler.ListTools)
	handle("GET", "/tool/{id}", toolHandler.GetTool)
	handle("PUT", "/tool/{id}", toolHandler.UpsertTool)
	handle("POST", "/tools", toolHandler.CreateTool)

	handle("POST", "/orders", orderHandler.PlaceOrder)
	handle("GET", "/orders", orderHandler.ListOrders)
	handle("GET", "/order/{id}", orderHandler.GetOrder)
	handle("PATCH", "/order/{id}", orderHandler.ConfirmPayment)
	handle("GET", "/manageOrders", orderHandler.ManageOrders)
	handle("DELETE", "/order/{email}", orderHandler.DeleteOrders)

	handle("POST", "/reviews", reviewHandler.AddReview)
	handle("GET", "/reviews", reviewHandler.ListReviews)

	handle("GET", "/users", userHandler.GetUsers)
	handle("PUT", "/user/admin/{email}", userHandler.MakeAdmin)
	handle("PUT", "/user/{email}", userHandler.UpsertUser)
	handle("GET", "/admin/{email}", userHandler.AdminStatus)

	handle("POST", "/create-payment-intent", paymentHandler.CreatePaymentIntent)

	handle("GET", "/", healthHandler.Root)
	handle("GET", "/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	return middleware.CORS()(r)
}
