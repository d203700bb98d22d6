package main

import (
	"storefront/internal/config" // Custom import path (Config)
	"storefront/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg.MySQLDSN(), cfg.IsProd)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb, log); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	n, err := db.SeedProducts(gdb, log)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.WithField("products", n).Info("Migration complete")
}
