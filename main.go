package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/peptidestore/cart"
	"github.com/peptidestore/catalog"
	"github.com/peptidestore/config"
	"github.com/peptidestore/pkg/logger"
	"github.com/peptidestore/storage"
	"github.com/peptidestore/warehouse"
	"github.com/peptidestore/web"
	"github.com/peptidestore/web/handlers"
)

func main() {
	// Command line flags
	var (
		quiet = flag.Bool("quiet", false, "Disable SQL query logging")
		help  = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *help {
		showHelp()
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(logger.Config{
		Level:        logger.LevelInfo,
		Format:       "json",
		Output:       "stdout",
		EnableCaller: true,
		Component:    "storefront",
		Environment:  cfg.App.Environment,
	})
	defer appLog.Close()

	// Open the durable store
	store, err := storage.OpenWithOptions(&cfg.Storage, *quiet)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Wire services
	source := catalog.NewAirtableClient(cfg.Catalog, appLog)
	search := catalog.NewSearchService(source, appLog)
	selections := warehouse.NewSelectionStore(store, appLog)
	carts := cart.NewManager(store, source, cart.ManagerConfig{
		FetchTimeout: cfg.Catalog.FetchTimeout,
		PassTimeout:  cfg.Catalog.PassTimeout,
		Debounce:     cfg.Catalog.Debounce,
	}, appLog)

	server := web.NewServer(&web.Handlers{
		Products: handlers.NewProductHandler(source, appLog),
		Search:   handlers.NewSearchHandler(search, appLog),
		Contact:  handlers.NewContactHandler(store, appLog),
		Cart:     handlers.NewCartHandler(carts, selections, appLog),
		Checkout: handlers.NewCheckoutHandler(carts, store, cfg.App.PaymentDelay, appLog),
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(cfg.App.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func showHelp() {
	log.Println(`
Peptide Storefront Server

Usage:
  go run main.go [options]

Options:
  -quiet    Disable SQL query logging
  -help     Show this help message

Environment:
  APP_PORT               HTTP port (default 8080)
  AIRTABLE_API_KEY       Catalog API key
  AIRTABLE_BASE_ID       Catalog base id
  AIRTABLE_TABLE_ID      Catalog table id
  STORAGE_PATH           sqlite path for the durable store (default storefront.db)`)
}
