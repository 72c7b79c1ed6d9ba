package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tokohq/go-shop-api/internal/config"
	kafkax "github.com/tokohq/go-shop-api/internal/kafka"
	"github.com/tokohq/go-shop-api/internal/redisx"
	"github.com/tokohq/go-shop-api/internal/shop"
	"github.com/tokohq/go-shop-api/internal/statusfeed"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &statusfeed.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-worker",
	}

	group := getenv("STATUSFEED_GROUP", "statusfeed-svc")
	workers := getint("STATUSFEED_WORKERS", 8)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, shop.TopicOrderPlaced, workers)

	log.Printf("statusfeed consumer started: group=%s topic=%s workers=%d", group, shop.TopicOrderPlaced, workers)
	if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
		log.Fatalf("consumer exit: %v", err)
	}
	log.Println("shutting down consumer...")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
