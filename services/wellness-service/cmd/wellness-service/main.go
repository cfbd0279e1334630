package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sharif-mahmud/wellpoint/libs/config"
	"github.com/sharif-mahmud/wellpoint/libs/db"
	"github.com/sharif-mahmud/wellpoint/libs/httpx"
	"github.com/sharif-mahmud/wellpoint/libs/kafkax"
	otelx "github.com/sharif-mahmud/wellpoint/libs/otel"
	"github.com/sharif-mahmud/wellpoint/libs/runtime"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/handlers"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/outbox"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/storage"
)

const serviceName = "wellness-service"

func main() {
	logger := runtime.NewLogger(serviceName)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(serviceName))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = otelShutdown(shutdownCtx)
	}()

	port, err := config.Port("PORT", "8084")
	if err != nil {
		logger.Error("invalid port", "err", err)
		os.Exit(1)
	}
	databaseURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		logger.Error("missing configuration", "err", err)
		os.Exit(1)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		logger.Error("missing configuration", "err", err)
		os.Exit(1)
	}

	pool, err := db.Open(ctx, databaseURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 0)),
	})
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	users := storage.NewUserRepository(pool)
	providers := storage.NewProviderRepository(pool)
	availability := storage.NewAvailabilityRepository(pool)
	appointments := storage.NewAppointmentRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go publisher.Run(ctx)

	authHandler := handlers.NewAuthHandler(users, logger, jwtSecret, config.Duration("JWT_TTL", time.Hour))
	providerHandler := handlers.NewProviderHandler(providers, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availability, providers, outboxRepo, logger)
	appointmentHandler := handlers.NewAppointmentHandler(appointments, users, providers, outboxRepo, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "postgres", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{
			Name:  "kafka",
			Check: kafkax.ReadyCheck(kafkaBrokers),
		})
	}

	var rateLimit httpx.Middleware
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer rdb.Close()
		limiter := httpx.NewRedisRateLimiter(rdb,
			config.Int("RATE_LIMIT", 120),
			config.Duration("RATE_LIMIT_WINDOW", time.Minute),
			serviceName,
		)
		rateLimit = limiter.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	} else {
		rateLimit = httpx.NewRateLimiter(
			config.Int("RATE_LIMIT", 120),
			config.Duration("RATE_LIMIT_WINDOW", time.Minute),
		).Middleware()
	}

	mux := runtime.NewBaseMux(readyChecks...)

	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	requireAuth := handlers.RequireAuth(jwtSecret)

	mux.Handle("POST /providers/{$}", requireAuth(http.HandlerFunc(providerHandler.Create)))
	mux.HandleFunc("GET /providers/{id}", providerHandler.Get)

	mux.Handle("POST /providers-availability/{$}", requireAuth(http.HandlerFunc(availabilityHandler.Create)))
	mux.HandleFunc("GET /providers-availability/{provider_id}", availabilityHandler.ListByProvider)
	mux.HandleFunc("GET /providers-availability/{provider_id}/available", availabilityHandler.OpenByProvider)
	mux.HandleFunc("GET /providers-availability/all/available", availabilityHandler.AllOpen)
	mux.Handle("DELETE /providers-availability/{id}", requireAuth(http.HandlerFunc(availabilityHandler.Delete)))

	mux.Handle("POST /appointments/{$}", requireAuth(http.HandlerFunc(appointmentHandler.Create)))
	mux.Handle("GET /appointments/user/{user_id}", requireAuth(http.HandlerFunc(appointmentHandler.ListByUser)))
	mux.Handle("PUT /appointments/{id}/cancel", requireAuth(http.HandlerFunc(appointmentHandler.Cancel)))

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   strings.Split(config.String("CORS_ALLOWED_ORIGINS", ""), ","),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		rateLimit,
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           otelhttp.NewHandler(handler, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
