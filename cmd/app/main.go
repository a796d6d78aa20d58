package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookshop/api"
	"github.com/Domenick1991/bookshop/config"
	"github.com/Domenick1991/bookshop/internal/bootstrap"
	"github.com/Domenick1991/bookshop/internal/cache"
	"github.com/Domenick1991/bookshop/internal/kafka"
	"github.com/Domenick1991/bookshop/internal/repository"
	"github.com/Domenick1991/bookshop/internal/service/booking"
	"github.com/Domenick1991/bookshop/internal/service/product"
	"github.com/Domenick1991/bookshop/internal/upload"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Products.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	imageStorage := upload.NewLocalStorage(upload.Settings{
		Dir:               cfg.Upload.Dir,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		MaxBytes:          cfg.Upload.MaxBytes,
	})

	productRepo := repository.NewProductRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	productService := product.NewProductService(productRepo, redisCache, imageStorage)
	bookingService := booking.NewBookingService(
		bookingRepo,
		productRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	productHandler := api.NewProductHandler(productService)
	bookingHandler := api.NewBookingHandler(bookingService)

	if err := bootstrap.Run(ctx, cfg, productHandler, bookingHandler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
