package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf/internal/config"
	"github.com/listenupapp/bookshelf/internal/logger"
	"github.com/listenupapp/bookshelf/internal/service"
	"github.com/listenupapp/bookshelf/internal/store/sqlstore"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlstore.Open(cfg.Database.URL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "dialect", db.Dialect())

	return &StoreHandle{Store: db}, nil
}

// Bootstrap contains the startup seeding result.
type Bootstrap struct {
	Seeded int
}

// ProvideBootstrap seeds an empty catalog with the starter books when enabled.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	bookService := do.MustInvoke[*service.BookService](i)

	if !cfg.Database.Seed {
		log.Info("Startup seeding disabled by configuration")
		return &Bootstrap{}, nil
	}

	n, err := bookService.Bootstrap(context.Background())
	if err != nil {
		return nil, err
	}

	if n > 0 {
		log.Info("Catalog seeded", "books", n)
	} else {
		log.Info("Using existing catalog")
	}

	return &Bootstrap{Seeded: n}, nil
}
