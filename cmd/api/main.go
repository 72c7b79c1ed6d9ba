package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/tokohq/go-shop-api/internal/auth"
	"github.com/tokohq/go-shop-api/internal/config"
	"github.com/tokohq/go-shop-api/internal/httpx"
	kafkax "github.com/tokohq/go-shop-api/internal/kafka"
	"github.com/tokohq/go-shop-api/internal/postgres"
	"github.com/tokohq/go-shop-api/internal/redisx"
	"github.com/tokohq/go-shop-api/internal/shop"
	"github.com/tokohq/go-shop-api/internal/store"
	"github.com/tokohq/go-shop-api/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer: separate lifetime so it can flush after the
	// server has stopped taking requests.
	prodCtx, prodCancel := context.WithCancel(context.Background())
	prod := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderPlaced, 1024)
	prod.Start(prodCtx)

	// Stores & services
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	users := &store.UserStore{DB: db}
	products := &store.ProductStore{DB: db}
	orders := &shop.OrderService{
		Store:    &store.OrderStore{DB: db},
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}

	router := httpx.NewRouter()
	(&httpx.AuthHandler{Users: users, Tokens: tokens, BcryptCost: cfg.BcryptCost}).Register(router)
	(&httpx.UsersHandler{Users: users, Tokens: tokens}).Register(router)
	(&httpx.ProductsHandler{Products: products, Tokens: tokens}).Register(router)
	(&httpx.OrdersHandler{Orders: orders, Tokens: tokens}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("exit: %v", err)
	}

	prodCancel()      // stop producer loop -> flush & close writer
	prod.WaitClosed() // drain
}
