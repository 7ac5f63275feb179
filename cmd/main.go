/**
 * @description
 * This is the main entry point for the vendor-management service. It loads
 * configuration, connects to PostgreSQL, Redis and RabbitMQ, wires the services into
 * the HTTP router and serves the Resource API together with the embedded UI.
 *
 * Key features:
 * - Optional schema bootstrap (DB_AUTO_MIGRATE).
 * - Redis-backed session revocation; sign-out degrades to cookie clearing without Redis.
 * - Vendor change events on RabbitMQ, with a logging fallback when the broker is down.
 * - Graceful shutdown on SIGINT/SIGTERM.
 *
 * @dependencies
 * - pgxpool for database connection, godotenv for local config, go-redis for
 *   revocations and rabbitmq for event publishing.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sumamakhan761/vendor-management/internal/api"
	"github.com/sumamakhan761/vendor-management/internal/app"
	"github.com/sumamakhan761/vendor-management/internal/config"
	"github.com/sumamakhan761/vendor-management/internal/store"
	"github.com/sumamakhan761/vendor-management/internal/web"
	"github.com/sumamakhan761/vendor-management/pkg/googleauth"
	"github.com/sumamakhan761/vendor-management/pkg/metrics"
	"github.com/sumamakhan761/vendor-management/pkg/middleware"
	"github.com/sumamakhan761/vendor-management/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found; using environment variables\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"cannot load config\" err=%v", err)
	}
	if cfg.GoogleClientID == "" {
		log.Println("level=warn component=bootstrap msg=\"google client id missing; sign-in will reject every credential\" env=GOOGLE_CLIENT_ID")
	}

	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"unable to parse database url\" err=%v", err)
	}
	dbConfig.MaxConns = 20
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute
	// Disable prepared statement caching to work behind PgBouncer transaction pooling.
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"unable to connect to database\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connection established\"")

	if cfg.DBAutoMigrate {
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.ApplySchema(migrateCtx, dbpool); err != nil {
			cancelMigrate()
			log.Fatalf("level=fatal component=bootstrap msg=\"schema bootstrap failed\" err=%v", err)
		}
		cancelMigrate()
		log.Println("level=info component=bootstrap msg=\"schema applied\"")
	}

	var revocations store.SessionRevocationStore
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; sign-out will not revoke sessions server-side\" env=REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; session revocation disabled\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(pingCtx).Err()
			cancelPing()
			if pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; session revocation disabled\" err=%v", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				revocations = store.NewRedisSessionRevocationStore(redisClient, cfg.SessionRevocationPrefix)
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}

	var publisher rabbitmq.Publisher = &rabbitmq.LogPublisher{}
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; vendor events will only be logged\" env=RABBITMQ_URL")
	} else if producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL); err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq unavailable; vendor events will only be logged\" err=%v", err)
	} else {
		publisher = producer
		log.Println("level=info component=bootstrap msg=\"rabbitmq connected\"")
	}
	defer publisher.Close()

	vendorRepo := store.NewPostgresVendorRepository(dbpool)
	userRepo := store.NewPostgresUserRepository(dbpool)

	sessions := app.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL(), revocations)
	authService := app.NewAuthService(googleauth.NewVerifier(cfg.GoogleJWKSURL, cfg.GoogleClientID), userRepo, sessions)
	vendorService := app.NewVendorService(vendorRepo, publisher, cfg.VendorEventsExchange)

	ui, err := web.NewHandler(web.Options{
		GoogleClientID: cfg.GoogleClientID,
		IsSignedIn: func(r *http.Request) bool {
			return middleware.GetSessionFromContext(r.Context()).HasUserID()
		},
	})
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"failed to load ui templates\" err=%v", err)
	}

	router := api.NewRouter(&cfg, vendorService, authService, ui, metrics.NewRecorder())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("level=info component=bootstrap msg=\"starting http server\" port=%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=bootstrap msg=\"could not start server\" err=%v", err)
		}
	}()

	// Wait for termination signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("level=info component=bootstrap msg=\"shutting down vendor-management\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=bootstrap msg=\"server shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=bootstrap msg=\"server stopped\"")
}
