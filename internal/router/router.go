package router

import (
	"fmt"
	"net/http"
	"time"

	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Services struct {
	Users        *services.UserService
	Products     *services.ProductService
	Orders       *services.OrderService
	Transactions *services.TransactionService
}

type Options struct {
	RateLimitRPS         float64
	RateLimitBurst       int
	SlowRequestThreshold time.Duration
}

func SetupRouter(svc Services, opts Options, logger zerolog.Logger) http.Handler {
	authHandler := handlers.NewAuthHandler(svc.Users, logger)
	productHandler := handlers.NewProductHandler(svc.Products, logger)
	orderHandler := handlers.NewOrderHandler(svc.Orders, logger)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, logger)

	authenticate := middleware.Authentication(svc.Users, logger)
	protected := func(h http.HandlerFunc) http.Handler { return authenticate(h) }

	r := mux.NewRouter()
	r.NotFoundHandler = errorHandler(http.StatusNotFound, "Route not found")
	r.MethodNotAllowedHandler = errorHandler(http.StatusMethodNotAllowed, "Method not allowed")

	rateLimiter := middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(opts.SlowRequestThreshold, logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(rateLimiter.Middleware())

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "API is working")
	}).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequestValidation())

	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	users.HandleFunc("/login", authHandler.Login).Methods("POST")
	users.Handle("/refresh", protected(authHandler.Refresh)).Methods("POST")

	// Product reads are public; every mutation needs a bearer token.
	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", productHandler.List).Methods("GET")
	products.HandleFunc("/{id}", productHandler.Get).Methods("GET")
	products.Handle("", protected(productHandler.Create)).Methods("POST")
	products.Handle("/{id}", protected(productHandler.Update)).Methods("PUT")
	products.Handle("/{id}", protected(productHandler.Delete)).Methods("DELETE")

	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(authenticate)
	orders.HandleFunc("", orderHandler.List).Methods("GET")
	orders.HandleFunc("", orderHandler.Create).Methods("POST")
	orders.HandleFunc("/{id}", orderHandler.Get).Methods("GET")
	orders.HandleFunc("/{id}", orderHandler.Update).Methods("PUT")
	orders.HandleFunc("/{id}", orderHandler.Delete).Methods("DELETE")

	transactions := api.PathPrefix("/transactions").Subrouter()
	transactions.Use(authenticate)
	transactions.HandleFunc("", transactionHandler.List).Methods("GET")
	transactions.HandleFunc("", transactionHandler.Create).Methods("POST")
	transactions.HandleFunc("/{id}", transactionHandler.Get).Methods("GET")
	transactions.HandleFunc("/{id}", transactionHandler.Delete).Methods("DELETE")

	// CORS wraps the router so preflight requests are answered before
	// route matching rejects the OPTIONS method.
	return middleware.CORS()(r)
}

func errorHandler(code int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"error":%q}`, message)
	})
}
