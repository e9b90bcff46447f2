package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pakproperty/pakproperty/internal/config"
	"github.com/pakproperty/pakproperty/internal/logger"
	"github.com/pakproperty/pakproperty/internal/seed"
	"github.com/pakproperty/pakproperty/internal/server"
)

func main() {
	fixturePath := flag.String("fixture", "", "Path to a YAML fixture file (uses built-in defaults when empty)")
	owners := flag.Int("owners", seed.DefaultCounts.Owners, "Number of owner accounts to create")
	tenants := flag.Int("tenants", seed.DefaultCounts.Tenants, "Number of tenant accounts to create")
	properties := flag.Int("properties", seed.DefaultCounts.Properties, "Number of listings to create")
	inquiries := flag.Int("inquiries", seed.DefaultCounts.Inquiries, "Number of inquiries to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, "console")
	log := logger.GetLogger()

	// Reuse the server's database initialization and migrations
	srv, err := server.New(cfg, log, "seed")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	fixture, err := seed.LoadFixture(*fixturePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load fixture")
	}

	counts := seed.Counts{
		Owners:     *owners,
		Tenants:    *tenants,
		Properties: *properties,
		Inquiries:  *inquiries,
	}

	if err := seed.Run(srv.GetDB(), fixture, counts, log); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().Msg("Seeding complete. All generated accounts use the password \"password123\"")
}
