/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the ACCU forecast service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Open the ledger store (SQLite or CSV file)
  3. Load the declared-projects portfolio
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite ledger database path; takes precedence over -ledger.
              Use ":memory:" for an in-memory database.
  -ledger     CSV ledger file path (default: ledger.csv)
  -portfolio  Declared-projects portfolio CSV path (required)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the ledger store
  4. Exit

EXAMPLES:
  ./server -portfolio=./data/portfolio.csv -ledger=./data/ledger.csv
  ./server -portfolio=./data/portfolio.csv -db=./data/ledger.db

SEE ALSO:
  - api/server.go: Router configuration
  - store/csvfile, store/sqlite: Ledger store implementations
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/accu-engine/api"
	"github.com/warp/accu-engine/inventory"
	"github.com/warp/accu-engine/store/csvfile"
	"github.com/warp/accu-engine/store/sqlite"
)

func main() {
	// .env is optional; flags win over environment defaults.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", os.Getenv("LEDGER_DB"), "SQLite ledger database path (overrides -ledger)")
	ledgerPath := flag.String("ledger", envString("LEDGER_CSV", "ledger.csv"), "CSV ledger file path")
	portfolioPath := flag.String("portfolio", os.Getenv("PORTFOLIO_CSV"), "declared-projects portfolio CSV path")
	flag.Parse()

	if *portfolioPath == "" {
		log.Fatal("a -portfolio CSV path is required")
	}

	// Ledger store
	var ledger inventory.LedgerStore
	if *dbPath != "" {
		store, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open ledger database: %v", err)
		}
		defer store.Close()
		ledger = store
	} else {
		ledger = csvfile.New(*ledgerPath)
	}

	// Portfolio metadata, validated once at startup.
	portfolioTable, err := csvfile.New(*portfolioPath).Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load portfolio: %v", err)
	}
	metadata, err := inventory.NewPortfolioTable(portfolioTable)
	if err != nil {
		log.Fatalf("Portfolio schema invalid: %v", err)
	}

	handler := api.NewHandler(ledger, metadata)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: router,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		close(done)
	}()

	log.Printf("ACCU forecast service listening on :%d", *port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-done
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
