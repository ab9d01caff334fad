package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	. "github.com/DrGermanius/Glonni/internal"
	"github.com/DrGermanius/Glonni/internal/state"
	"github.com/DrGermanius/Glonni/internal/toast"
)

func main() {
	//decimals at json as numbers
	//https://github.com/shopspring/decimal/issues/21
	decimal.MarshalJSONWithoutQuotes = true

	cfg := NewConfig()
	z, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	sugaredLogger := z.Sugar()
	defer func() { _ = sugaredLogger.Sync() }()

	seed, err := LoadSeed()
	if err != nil {
		sugaredLogger.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := state.NewBus()
	var storage state.Storage = state.NewMemoryStorage()
	var accounts IRepository = NewMemoryAccounts()

	if cfg.DatabaseURI != "" {
		repository, err := NewRepository(cfg.DatabaseURI, sugaredLogger)
		if err != nil {
			sugaredLogger.Fatal(err)
		}
		defer repository.Close()
		storage, accounts = repository, repository

		watcher := NewWatcher(cfg.DatabaseURI, bus, sugaredLogger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				sugaredLogger.Errorf("state watcher stopped: %s", err.Error())
			}
		}()
	} else {
		sugaredLogger.Info("DATABASE_URI is empty, running on in-memory storage")
	}

	var profiles IProfiles = accounts
	if cfg.ProfileSourceURL != "" {
		profiles = NewProfileClient(cfg.ProfileSourceURL, cfg.ProfileSourceKey, sugaredLogger)
	}

	stores := NewStores(storage, bus, seed)
	orders := NewOrderService(stores, sugaredLogger)
	admin := NewAdminService(stores, sugaredLogger)
	toasts := toast.New(cfg.ToastTTL)

	projector := NewProjector(stores, orders, sugaredLogger)
	projector.Start()
	defer projector.Stop()

	scheduler, err := NewScheduler(cfg.SettlementSchedule, admin, toasts, sugaredLogger)
	if err != nil {
		sugaredLogger.Fatal(err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	access := NewAccessService(profiles, stores, sugaredLogger)
	access.SetAdmins(cfg.AdminLogins)

	handlers := NewHandlers(Services{
		Auth:    NewService(accounts, cfg.JWTSecret, sugaredLogger),
		Access:  access,
		Orders:  orders,
		Returns: NewReturnService(stores, orders, sugaredLogger),
		Seller:  NewSellerService(stores, sugaredLogger),
		Admin:   admin,
		Wallet:  NewWalletService(stores, sugaredLogger),
		Toasts:  toasts,
	}, sugaredLogger)

	app := fiber.New()
	app.Use(logger.New())

	handlers.Routes(app.Group("/api"))

	go func() {
		if err := app.Listen(cfg.RunAddress); err != nil {
			sugaredLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("Shutting down service...")

	if err = app.Shutdown(); err != nil {
		sugaredLogger.Errorf("shutdown error: %s", err.Error())
	}
}
