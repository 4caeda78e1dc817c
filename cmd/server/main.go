package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shop_api/internal/cart"
	"github.com/Skotchmaster/shop_api/internal/catalog"
	"github.com/Skotchmaster/shop_api/internal/checkout"
	"github.com/Skotchmaster/shop_api/internal/config"
	"github.com/Skotchmaster/shop_api/internal/handlers"
	"github.com/Skotchmaster/shop_api/internal/logging"
	loggingmw "github.com/Skotchmaster/shop_api/internal/middleware/logging"
	"github.com/Skotchmaster/shop_api/internal/mykafka"
	"github.com/Skotchmaster/shop_api/internal/order"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/search"
	"github.com/Skotchmaster/shop_api/internal/session"
	httpserver "github.com/Skotchmaster/shop_api/internal/transport/http"
)

func main() {
	ctx := context.Background()

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	creds := repo.NewCredentialRepo(db)
	if err := creds.EnsureDefaultAdmin(ctx, configuration.ADMIN_USERNAME, configuration.ADMIN_PASSWORD); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer, err = mykafka.NewProducer(strings.Split(configuration.KAFKA_ADDRESS, ","))
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		defer producer.Close()
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var searchSvc *search.Service
	if configuration.ES_URL != "" {
		esClient, err := search.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchSvc = search.NewService(esClient, configuration.ES_INDEX)
	} else {
		logger.Warn("ES_URL not set, catalog search falls back to SQL")
	}

	sessions := session.NewRegistry()
	carts := cart.NewStore()
	catalogRepo := catalog.NewRepo(db)
	ledger := order.NewRepo(db)

	engine := &checkout.Engine{
		Sessions:           sessions,
		Carts:              carts,
		Catalog:            catalogRepo,
		Ledger:             ledger,
		RestoreFailedLines: configuration.RESTORE_FAILED_CART_LINES,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Sessions:         sessions,
		AuthHandler:      &handlers.AuthHandler{Creds: creds, Sessions: sessions, Producer: producer},
		ShopHandler:      &handlers.ShopHandler{Catalog: catalogRepo},
		SearchHandler:    &handlers.SearchHandler{Service: searchSvc},
		CartHandler:      &handlers.CartHandler{Carts: carts, Catalog: catalogRepo, Engine: engine, Producer: producer},
		OrderHandler:     &handlers.OrderHandler{Engine: engine, Ledger: ledger, Producer: producer},
		InventoryHandler: &handlers.InventoryHandler{Catalog: catalogRepo, Ledger: ledger, Search: searchSvc, Producer: producer},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server starting", "addr", configuration.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
