package di

import (
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/config"
	"github.com/listenupapp/bookshelf/internal/di/providers"
	"github.com/listenupapp/bookshelf/internal/service"
)

func setupEnv(t *testing.T, dbURL string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "development")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", dbURL)
}

func TestContainer_SeedsEmptyCatalog(t *testing.T) {
	dbURL := "sqlite:///" + filepath.Join(t.TempDir(), "books.db")
	setupEnv(t, dbURL)

	injector := NewContainer()
	t.Cleanup(func() { _ = injector.Shutdown() })

	cfg := do.MustInvoke[*config.Config](injector)
	assert.Equal(t, dbURL, cfg.Database.URL)

	boot, err := do.Invoke[*providers.Bootstrap](injector)
	require.NoError(t, err)
	assert.Equal(t, 7, boot.Seeded)

	svc := do.MustInvoke[*service.BookService](injector)
	books, err := svc.ListBooks(t.Context())
	require.NoError(t, err)
	assert.Len(t, books, 7)
}

func TestContainer_ReusesExistingCatalog(t *testing.T) {
	dbURL := "sqlite:///" + filepath.Join(t.TempDir(), "books.db")
	setupEnv(t, dbURL)

	first := NewContainer()
	_, err := do.Invoke[*providers.Bootstrap](first)
	require.NoError(t, err)
	_ = first.Shutdown()

	second := NewContainer()
	t.Cleanup(func() { _ = second.Shutdown() })

	boot, err := do.Invoke[*providers.Bootstrap](second)
	require.NoError(t, err)
	assert.Zero(t, boot.Seeded)
}

func TestContainer_SeedingDisabled(t *testing.T) {
	setupEnv(t, "sqlite:///"+filepath.Join(t.TempDir(), "books.db"))
	t.Setenv("SEED_ON_START", "false")

	injector := NewContainer()
	t.Cleanup(func() { _ = injector.Shutdown() })

	boot, err := do.Invoke[*providers.Bootstrap](injector)
	require.NoError(t, err)
	assert.Zero(t, boot.Seeded)

	n, err := do.MustInvoke[*service.BookService](injector).CountBooks(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestContainer_InvalidConfig(t *testing.T) {
	setupEnv(t, "mysql://localhost/books")

	injector := NewContainer()
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[*config.Config](injector)
	assert.ErrorContains(t, err, "unsupported database scheme")
}
