package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/catalog"
	catalog_api "ms-restaurant/internal/catalog/api"
	"ms-restaurant/internal/config"
	"ms-restaurant/internal/database/migrations"
	"ms-restaurant/internal/inventory"
	inventory_api "ms-restaurant/internal/inventory/api"
	"ms-restaurant/internal/kafka"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/order"
	orderdb "ms-restaurant/internal/order/db"
	"ms-restaurant/internal/order/order_api"
	"ms-restaurant/internal/payment"
	"ms-restaurant/internal/policy"
	"ms-restaurant/internal/reservation"
	reservation_api "ms-restaurant/internal/reservation/api"
	reservationdb "ms-restaurant/internal/reservation/db"
	rediswrap "ms-restaurant/internal/reservation/redis"
	"ms-restaurant/internal/tables"
	"ms-restaurant/internal/users"
	"ms-restaurant/internal/utils"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		err = sqldb.Ping()
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Restaurant Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.MigrateUp(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	if version, err := runner.Version(); err == nil {
		log.Info("DATABASE", fmt.Sprintf("Schema at version %d", version))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()
	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	kafkaProducer := kafka.Disabled()
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers)
		log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Kafka.Brokers))
	} else {
		log.Warn("KAFKA", "Kafka publishing disabled by configuration")
	}
	defer kafkaProducer.Close()

	pol := policy.New()

	userDB := &users.DB{Bun: bunDB}
	tableDB := &tables.DB{Bun: bunDB}

	catalogService := catalog.NewService(&catalog.DB{Bun: bunDB}, pol)
	inventoryService := inventory.NewService(&inventory.DB{Bun: bunDB}, pol, log)

	orderService := order.NewOrderService(
		&orderdb.DB{Bun: bunDB},
		userDB,
		catalogService,
		kafkaProducer,
		pol,
		log,
	)
	orderService.Inventory = inventoryService

	reservationService := reservation.NewService(
		&reservationdb.DB{Bun: bunDB},
		rediswrap.NewRedis(redisClient),
		tableDB,
		kafkaProducer,
		pol,
		log,
	)

	paymentService, err := payment.NewService(log)
	if err != nil {
		log.Warn("STRIPE", fmt.Sprintf("Payment service disabled: %v", err))
	}

	orderHandler := order_api.NewHandler(orderService, paymentService, log)
	reservationHandler := reservation_api.NewHandler(reservationService, log)
	catalogHandler := catalog_api.NewHandler(catalogService, tableDB, log)
	inventoryHandler := inventory_api.NewHandler(inventoryService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.OIDCIssuer))
		log.Info("AUTH", "OIDC middleware applied to protected API routes")

		r.Get("/api/v1/me", func(w http.ResponseWriter, req *http.Request) {
			actor := auth.Actor(req.Context())
			u, err := userDB.GetUser(actor.ID)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(apperr.HTTPStatus(err))
				_ = json.NewEncoder(w).Encode(utils.ErrorResponse("GetMe failed", apperr.KindOf(err)))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(u)
		})

		orderHandler.Routes(r)
		reservationHandler.Routes(r)
		catalogHandler.Routes(r)
		inventoryHandler.Routes(r)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Restaurant Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("APP", "Shutdown signal received. Cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("HTTP", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("APP", "✅ Server exited gracefully")
}
