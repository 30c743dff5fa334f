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

	"fempowered-storefront/internal/checkout"
	"fempowered-storefront/internal/config"
	"fempowered-storefront/internal/db"
	"fempowered-storefront/internal/httpserver"
	"fempowered-storefront/internal/payment"
	orderrepo "fempowered-storefront/internal/repository/order"
	productrepo "fempowered-storefront/internal/repository/product"
	reviewrepo "fempowered-storefront/internal/repository/review"
	sessionrepo "fempowered-storefront/internal/repository/session"
	tokenrepo "fempowered-storefront/internal/repository/token"
	userrepo "fempowered-storefront/internal/repository/user"
	accountsvc "fempowered-storefront/internal/service/account"
	catalogsvc "fempowered-storefront/internal/service/catalog"
	reviewsvc "fempowered-storefront/internal/service/review"
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
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	reviewRepo := reviewrepo.NewPostgres(dbpool, logger)
	sessionRepo := sessionrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	stripeClient := payment.NewStripe(cfg.Stripe)

	catalogService := catalogsvc.New(productRepo)
	accountService := accountsvc.New(userRepo, orderRepo, tokenRepo, logger)
	reviewService := reviewsvc.New(reviewRepo, productRepo)
	checkoutService := checkout.New(orderRepo, userRepo, productRepo, stripeClient, cfg, logger)

	srv, err := httpserver.New(cfg, logger, dbpool, httpserver.Deps{
		Catalog:  catalogService,
		Accounts: accountService,
		Reviews:  reviewService,
		Checkout: checkoutService,
		Sessions: sessionRepo,
		Products: productRepo,
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
