package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-pos/internal/audit"
	"ms-pos/internal/auth"
	"ms-pos/internal/config"
	"ms-pos/internal/database/migrations"
	"ms-pos/internal/finance"
	"ms-pos/internal/hotel"
	"ms-pos/internal/kafka"
	"ms-pos/internal/kitchen"
	kitchenapi "ms-pos/internal/kitchen/api"
	"ms-pos/internal/ktv"
	ktvapi "ms-pos/internal/ktv/api"
	ktvdb "ms-pos/internal/ktv/db"
	ktvredis "ms-pos/internal/ktv/redis"
	"ms-pos/internal/logger"
	"ms-pos/internal/menu"
	"ms-pos/internal/order"
	orderapi "ms-pos/internal/order/api"
	orderdb "ms-pos/internal/order/db"
	"ms-pos/internal/payment"
	"ms-pos/internal/receipt"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment")
	}
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Close()

	// --- PostgreSQL ---
	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("open: %v", err))
	}
	defer sqldb.Close()
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("ping: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	if err := migrations.Run(ctx, bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("migrate: %v", err))
	}
	if err := migrations.Seed(ctx, bunDB); err != nil {
		log.Warn("DATABASE", fmt.Sprintf("seed: %v", err))
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("ping: %v", err))
	}

	// --- Kafka + audit sink ---
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	var auditLog audit.Logger
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{
			cfg.Kafka.Topics.OrderEvents,
			cfg.Kafka.Topics.CheckoutEvents,
			cfg.Kafka.Topics.AuditEvents,
		}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("ensure topics: %v", err))
		}
		auditLog = audit.NewKafkaSink(producer, cfg.Kafka.Topics.AuditEvents, log)
	} else {
		auditLog = audit.NewLogSink(log)
	}

	// --- Wiring ---
	orderStore := &orderdb.DB{Bun: bunDB}
	roomStore := &ktvdb.DB{Bun: bunDB}
	menuStore := &menu.Store{Bun: bunDB}
	hotelStore := &hotel.Store{Bun: bunDB}
	roomLock := ktvredis.NewLock(redisClient, cfg.Redis.RoomLockTTL)

	printer := receipt.NewPrinter(cfg.Receipt.StoreName, os.Stdout, log)
	gateway := payment.NewGateway(log)

	orderService := order.NewService(orderStore, menuStore, producer, printer, gateway, auditLog, log, cfg.Kafka.Topics.OrderEvents, cfg.Billing.ServiceChargeRate)
	ktvService := ktv.NewService(roomStore, roomLock, orderStore, menuStore, printer, producer, auditLog, log, cfg.Kafka.Topics.CheckoutEvents)
	projector := kitchen.NewProjector(orderStore)
	financeService := finance.NewService(orderStore)

	orderHandler := orderapi.NewHandler(orderService, log)
	kitchenHandler := kitchenapi.NewHandler(projector, log)
	ktvHandler := ktvapi.NewHandler(ktvService, log)
	hotelHandler := &hotel.Handler{Store: hotelStore}
	menuHandler := &menu.Handler{Store: menuStore}
	financeHandler := &finance.Handler{Finance: financeService}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(requestLogger(log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Route("/orders", orderHandler.Routes)
		r.Route("/kitchen", kitchenHandler.Routes)
		r.Route("/ktv", ktvHandler.Routes)
		r.Route("/hotel", hotelHandler.Routes)
		r.Route("/menu", menuHandler.Routes)
		r.Route("/finance", financeHandler.Routes)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("POS engine listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("listen: %v", err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("SERVER", fmt.Sprintf("forced shutdown: %v", err))
	}
	log.Info("SERVER", "Server exited")
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.LogAPI(r.Method, r.URL.Path, "done", time.Since(start).String())
		})
	}
}
