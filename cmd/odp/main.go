package main

import (
	"context"
	"log"

	"github.com/odp-platform/odp/migrate"
	"github.com/odp-platform/odp/seed"
	"github.com/odp-platform/odp/server"
	"github.com/odp-platform/odp/store"
)

func main() {
	cfg := server.GetConfig()

	if err := migrate.RunFromEnv(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := seed.RunFromEnv(); err != nil {
		log.Fatalf("seed: %v", err)
	}

	dsn := cfg.DatabaseDSN()
	if dsn == "" {
		log.Fatal("no database DSN configured (set ODP_DATABASE__DSN)")
	}
	db, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	srv, err := server.NewServer(context.Background(), cfg, db)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	log.Printf("listening on %s (env %s)", cfg.HTTP.Addr, cfg.Env)
	if err := srv.Router().Run(cfg.HTTP.Addr); err != nil {
		log.Fatal(err)
	}
}
