package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tgarrido/payments-api/common/broker"
	"github.com/tgarrido/payments-api/common/logger"
	"github.com/tgarrido/payments-api/common/metrics"
	"github.com/tgarrido/payments-api/login"
	"github.com/tgarrido/payments-api/payments"
	"github.com/tgarrido/payments-api/payments/processor"
	"github.com/tgarrido/payments-api/products"
	"github.com/tgarrido/payments-api/users"
)

type App struct {
	config      Config
	logger      *slog.Logger
	db          *sql.DB
	cache       *products.ProductCache
	closeBroker func() error
	httpServer  *http.Server
	httpMetrics *metrics.HTTPMetrics
}

type Config struct {
	ServiceName        string
	HTTPAddr           string
	DatabaseURL        string
	RedisAddr          string
	CacheTTLSeconds    int
	AMQPUser           string
	AMQPPass           string
	AMQPHost           string
	AMQPPort           string
	StripeKey          string
	JWTSecret          string
	ConfirmRedirectURL string
	StripeReturnURL    string
}

func NewApp(config Config) (*App, error) {
	log := logger.NewLogger(config.ServiceName)

	// One process-wide database handle, injected into every store.
	db, err := openDatabase(config.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", slog.Any("error", err))
		return nil, err
	}
	log.Info("postgres connected successfully")

	return &App{
		config: config,
		logger: log,
		db:     db,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	// Stores
	userStore := users.NewPostgresStore(a.db)
	productStore := products.NewPostgresStore(a.db)
	paymentStore := payments.NewPostgresStore(a.db)

	// Optional Redis cache-aside layer for catalog reads
	var catalog products.Store = productStore
	if a.config.RedisAddr != "" {
		ttl := time.Duration(a.config.CacheTTLSeconds) * time.Second
		cache, err := products.NewProductCache(a.config.RedisAddr, ttl)
		if err != nil {
			a.logger.Error("failed to connect to redis", slog.Any("error", err))
			return err
		}
		a.cache = cache
		catalog = products.NewCachedStore(productStore, cache, a.logger)
		a.logger.Info("redis product cache enabled", slog.String("addr", a.config.RedisAddr))
	}

	// Optional RabbitMQ event publishing
	var events payments.EventPublisher
	if a.config.AMQPHost != "" {
		ch, closeBroker, err := broker.Connect(
			a.config.AMQPUser,
			a.config.AMQPPass,
			a.config.AMQPHost,
			a.config.AMQPPort,
		)
		if err != nil {
			a.logger.Error("failed to connect to rabbitmq", slog.Any("error", err))
			return err
		}
		a.closeBroker = closeBroker
		events = payments.NewAMQPPublisher(ch)
		a.logger.Info("rabbitmq connected successfully")
	} else {
		a.logger.Info("amqp host not provided, event publishing disabled")
	}

	// Metrics
	a.httpMetrics = metrics.NewHTTPMetrics(a.config.ServiceName)
	businessMetrics := metrics.NewBusinessMetrics(a.config.ServiceName)

	// External charge provider
	stripeProcessor := processor.NewStripeProcessor(
		a.config.StripeKey,
		a.config.StripeReturnURL,
		businessMetrics,
		a.logger,
	)
	a.logger.Info("stripe processor initialized")

	// Services
	userService := users.NewService(userStore, a.logger)
	productService := products.NewService(catalog, a.logger)
	paymentService := payments.NewService(
		paymentStore,
		userStore,
		catalog,
		stripeProcessor,
		events,
		businessMetrics,
		a.logger,
		a.config.ConfirmRedirectURL,
	)

	// HTTP surface
	secret := []byte(a.config.JWTSecret)
	mux := http.NewServeMux()
	users.NewHTTPHandler(userService, a.logger).RegisterRoutes(mux)
	products.NewHTTPHandler(productService, a.logger).RegisterRoutes(mux)
	payments.NewHTTPHandler(paymentService, login.RequireAuth(secret), a.logger).RegisterRoutes(mux)
	login.NewHTTPHandler(stripeProcessor, secret, a.logger).RegisterRoutes(mux)

	mux.Handle("GET /metrics", promhttp.Handler())

	metricsHandler := a.metricsMiddleware(mux)
	corsHandler := a.corsMiddleware(metricsHandler)

	a.httpServer = &http.Server{
		Addr:    a.config.HTTPAddr,
		Handler: corsHandler,
	}

	a.logger.Info("starting http server", slog.String("addr", a.config.HTTPAddr))
	return a.httpServer.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down gracefully")

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("http server shutdown error", slog.Any("error", err))
		}
	}

	if a.closeBroker != nil {
		if err := a.closeBroker(); err != nil {
			a.logger.Error("error closing rabbitmq", slog.Any("error", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("error closing redis", slog.Any("error", err))
		}
	}

	return a.db.Close()
}

func openDatabase(connectionString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// metricsMiddleware wraps HTTP handlers to record Prometheus metrics
func (a *App) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Don't record metrics for /metrics endpoint itself
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		status := strconv.Itoa(recorder.statusCode)
		a.httpMetrics.RecordHTTPRequest(r.Method, r.URL.Path, status, duration)
	})
}

// responseRecorder wraps http.ResponseWriter to capture status code
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers for browser clients
func (a *App) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "http://localhost:3000" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
