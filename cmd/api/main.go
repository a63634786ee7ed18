package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dealerdesk/order-engine/internal/cart"
	"github.com/dealerdesk/order-engine/internal/catalog"
	"github.com/dealerdesk/order-engine/internal/checkout"
	"github.com/dealerdesk/order-engine/internal/clock"
	"github.com/dealerdesk/order-engine/internal/config"
	"github.com/dealerdesk/order-engine/internal/httpx"
	"github.com/dealerdesk/order-engine/internal/inventory"
	kafkax "github.com/dealerdesk/order-engine/internal/kafka"
	"github.com/dealerdesk/order-engine/internal/orders"
	"github.com/dealerdesk/order-engine/internal/postgres"
	"github.com/dealerdesk/order-engine/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Status-change event producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	prod.Start(ctx)

	catalogReader := &catalog.Reader{DB: db}
	inventoryRepo := &inventory.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	svc := &orders.Service{
		Repo:      orderRepo,
		Allocator: inventoryRepo,
		Validator: &checkout.Validator{Catalog: catalogReader, Stock: inventoryRepo},
		Catalog:   catalogReader,
		Notifier:  &orders.KafkaNotifier{Producer: prod, Service: cfg.ServiceName},
		Clock:     clock.NewSystem(),
		Policy:    inventory.ParsePolicy(cfg.AllocationPolicy),
	}

	router := httpx.NewRouter()
	(&httpx.CartHandler{
		Store:   &cart.Store{RDB: rdb},
		Catalog: catalogReader,
	}).Register(router)
	(&httpx.OrdersHandler{
		Service:   svc,
		Inventory: inventoryRepo,
		Redis:     rdb,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s (allocation policy: %s)", cfg.HTTPAddr, svc.Policy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()          // stop the producer loop
	prod.WaitClosed() // drain queued events
}
