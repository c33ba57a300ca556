package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"flight-booking/internal/booking"
	"flight-booking/internal/booking/booking_api"
	bookingdb "flight-booking/internal/booking/db"
	rediswrap "flight-booking/internal/booking/redis"
	"flight-booking/internal/config"
	"flight-booking/internal/kafka"
	"flight-booking/internal/logger"
)

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	// --- SQLite Setup ---
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Database.Path)
	if err != nil {
		log.Fatal("DATABASE", "Failed to open SQLite store: "+err.Error())
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", "Failed to connect to SQLite store: "+err.Error())
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	defer bunDB.Close()

	// Create the three tables if the store file is new.
	if err := bookingdb.Migrate(bunDB); err != nil {
		log.Fatal("DATABASE", "Schema creation failed: "+err.Error())
	}
	log.Info("DATABASE", "SQLite store ready at "+cfg.Database.Path)

	// --- Redis Setup (optional per-flight booking lock) ---
	var flightLock booking.FlightLock
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("REDIS", "Failed to connect to Redis: "+err.Error())
		}
		flightLock = rediswrap.NewRedis(redisClient)
		log.Info("REDIS", "Per-flight booking lock enabled")
	}

	// --- Kafka Setup (optional booking events) ---
	var publisher booking.EventPublisher
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.BookingEvents}); err != nil {
			log.Warn("KAFKA", "Topic setup failed: "+err.Error())
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.BookingEvents)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", "Booking events enabled on topic "+cfg.Kafka.Topics.BookingEvents)
	}

	// --- Initialize Dependencies ---
	dbLayer := &bookingdb.DB{Bun: bunDB}
	service := booking.NewBookingService(dbLayer, flightLock, publisher, log)
	handler := booking_api.NewHandler(service, log)

	// --- Setup Router ---
	r := chi.NewRouter()
	handler.Register(r)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "Booking service running on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "HTTP server error: "+err.Error())
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", "Server forced to shutdown: "+err.Error())
	}
	log.Info("SERVER", "Server exited gracefully")
}
