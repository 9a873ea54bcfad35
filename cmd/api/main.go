package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"enterprise-pos/internal/config"
	"enterprise-pos/internal/db"
	"enterprise-pos/internal/hold"
	"enterprise-pos/internal/httpserver"
	"enterprise-pos/internal/pos"
	customerrepo "enterprise-pos/internal/repository/customer"
	productrepo "enterprise-pos/internal/repository/product"
	salerepo "enterprise-pos/internal/repository/sale"
	catalogsvc "enterprise-pos/internal/service/catalog"
	customersvc "enterprise-pos/internal/service/customer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	saleRepo := salerepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(productRepo)
	customerService := customersvc.New(customerRepo)
	checkout := pos.NewCheckout(saleRepo, logger)
	holdStore := hold.NewStore()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:           catalogService,
		Customers:         customerService,
		Checkout:          checkout,
		Receipts:          saleRepo,
		Refunds:           saleRepo,
		Holds:             holdStore,
		DefaultTaxPercent: cfg.DefaultTaxPercent,
		CORSOrigins:       cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
