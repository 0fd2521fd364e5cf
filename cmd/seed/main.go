// Package main inserts the starter books into an empty catalog.
//
// It reads the same configuration as the server, so DATABASE_URL selects the
// target store. A catalog that already holds books is left untouched.
//
// Usage:
//
//	go run ./cmd/seed
//	DATABASE_URL=postgresql://localhost/books go run ./cmd/seed
//	go run ./cmd/seed --database-url sqlite:///tmp/books.db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/listenupapp/bookshelf/internal/config"
	"github.com/listenupapp/bookshelf/internal/logger"
	"github.com/listenupapp/bookshelf/internal/service"
	"github.com/listenupapp/bookshelf/internal/store/sqlstore"
)

var databaseURL = flag.String("database-url", "", "Override the configured database URL")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if *databaseURL != "" {
		cfg.Database.URL = config.NormalizeDatabaseURL(*databaseURL)
	}

	log := logger.New(logger.Config{
		Format:      cfg.Logger.Format,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	st, err := sqlstore.Open(cfg.Database.URL, log.Logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := service.NewBookService(st, log.Logger).Bootstrap(ctx)
	if err != nil {
		return err
	}

	if n == 0 {
		log.Info("Catalog already has books, nothing to do")
		return nil
	}
	log.Info("Seeded catalog", "books", n, "dialect", st.Dialect())
	return nil
}
