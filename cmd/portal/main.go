/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vendor self-service portal backend.
  Handles configuration, dependency injection, and graceful shutdown.

COMMANDS:
  serve    Start the HTTP server
  seed     Load demo data into the database

STARTUP SEQUENCE (serve):
  1. Load YAML config, apply flag overrides
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with defaults (portal.db, port 8080)
  ./portal serve

  # Run with a config file and an override
  ./portal serve --config portal.yaml --port 3000

  # Seed the demo vendor and admin accounts
  ./portal seed --db ./portal.db

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: YAML configuration
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/portal-engine/api"
	"github.com/warp/portal-engine/config"
	"github.com/warp/portal-engine/docstore"
	"github.com/warp/portal-engine/leave"
	"github.com/warp/portal-engine/store/sqlite"
)

func main() {
	root := &cobra.Command{
		Use:   "portal",
		Short: "Vendor self-service portal backend",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newSeedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		dbPath     string
		uploadsDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Flags beat the config file.
			if c.Flags().Changed("port") {
				cfg.Port = port
			}
			if c.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if c.Flags().Changed("uploads") {
				cfg.UploadsDir = uploadsDir
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	cmd.Flags().StringVar(&dbPath, "db", "portal.db", "SQLite database path")
	cmd.Flags().StringVar(&uploadsDir, "uploads", "./uploads", "Document upload directory")
	return cmd
}

func serve(cfg config.Config) error {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	docs := docstore.NewOS(cfg.UploadsDir)
	handler := api.NewHandler(store, docs, time.Duration(cfg.SessionTTLHrs)*time.Hour)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func newSeedCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the database",
		RunE: func(c *cobra.Command, _ []string) error {
			store, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			defer store.Close()
			return seed(context.Background(), store)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "portal.db", "SQLite database path")
	return cmd
}

// seed loads one demo vendor, one admin account, and enough surrounding
// data to click through every page.
func seed(ctx context.Context, store *sqlite.Store) error {
	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		return string(h)
	}

	vendor := sqlite.Vendor{
		VendorID:     "V1001",
		FirstName:    "Priya",
		LastName:     "Sharma",
		Email:        "priya.sharma@example.com",
		Mobile:       "07700900123",
		Telephone:    "02079460001",
		PasswordHash: hash("vendor123"),
		Role:         "vendor",
	}
	if err := store.SaveVendor(ctx, vendor); err != nil {
		return err
	}
	admin := sqlite.Vendor{
		VendorID:     "A0001",
		FirstName:    "Portal",
		LastName:     "Admin",
		Email:        "admin@example.com",
		PasswordHash: hash("admin123"),
		Role:         "admin",
	}
	if err := store.SaveVendor(ctx, admin); err != nil {
		return err
	}

	if err := store.SaveUserDetails(ctx, vendor.VendorID,
		"14 Larch Close", "Milton Keynes", "", "Buckinghamshire", "MK6 3HU"); err != nil {
		return err
	}
	if err := store.SaveBankDetails(ctx, vendor.VendorID, sqlite.BankRecord{
		SortCode:      "20-00-00",
		AccountNumber: "13345678",
		AccountHolder: "Priya Sharma",
		PaymentMethod: "BACS",
	}); err != nil {
		return err
	}

	sheet := leave.BalanceSheet{
		leave.CategorySick:   {Allocated: decimal.NewFromInt(10)},
		leave.CategoryCasual: {Allocated: decimal.NewFromInt(8)},
		leave.CategoryAnnual: {Allocated: decimal.NewFromInt(20)},
	}
	if err := store.SaveLeaveBalances(ctx, vendor.VendorID, sheet); err != nil {
		return err
	}

	payments := []sqlite.Payment{
		{
			VendorID:        vendor.VendorID,
			AgreementNumber: "AGR-2025-014",
			PaymentMethod:   "BACS",
			PostingDate:     "2025-04-30",
			PaymentAmount:   decimal.RequireFromString("1250.00"),
			NetAmount:       decimal.RequireFromString("1250.00"),
			GrossAmount:     decimal.RequireFromString("1500.00"),
			FiscalYear:      "2025-2026",
		},
		{
			VendorID:        vendor.VendorID,
			AgreementNumber: "AGR-2025-014",
			PaymentMethod:   "Cheque",
			PostingDate:     "2025-05-31",
			ChequeNumber:    "000412",
			PaymentAmount:   decimal.RequireFromString("980.50"),
			NetAmount:       decimal.RequireFromString("980.50"),
			GrossAmount:     decimal.RequireFromString("1176.60"),
			FiscalYear:      "2025-2026",
			EncashmentDate:  "2025-06-04",
		},
	}
	for _, p := range payments {
		if err := store.SavePayment(ctx, p); err != nil {
			return err
		}
	}

	log.Printf("Seeded vendor %s (vendor123) and admin %s (admin123)", vendor.Email, admin.Email)
	return nil
}
