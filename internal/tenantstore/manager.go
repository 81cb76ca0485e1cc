package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/logging"
	"github.com/smerino/gestion/internal/metrics"
)

var ErrMissingTenantID = errors.New("missing tenant id")

// Manager maps a tenant id to its isolated store, opening and
// migrating it on first resolution. singleflight guarantees a single
// open per tenant even when first resolutions race.
type Manager struct {
	dataDir string

	mu     sync.RWMutex
	stores map[string]*gorm.DB
	sf     singleflight.Group
}

func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir: dataDir,
		stores:  make(map[string]*gorm.DB),
	}
}

// Resolve returns the cached handle for tenantID, creating the store
// on first access. The same id always yields the identical handle for
// the process lifetime.
func (m *Manager) Resolve(ctx context.Context, tenantID string) (*gorm.DB, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, ErrMissingTenantID
	}

	m.mu.RLock()
	if db, ok := m.stores[tenantID]; ok {
		m.mu.RUnlock()
		return db, nil
	}
	m.mu.RUnlock()

	v, err, _ := m.sf.Do(tenantID, func() (any, error) {
		m.mu.RLock()
		db, ok := m.stores[tenantID]
		m.mu.RUnlock()
		if ok {
			return db, nil
		}

		db, err := m.open(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.stores[tenantID] = db
		m.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gorm.DB), nil
}

func (m *Manager) open(ctx context.Context, tenantID string) (*gorm.DB, error) {
	l := logging.FromContext(ctx).With("svc", "tenantstore", "tenant", tenantID)

	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tenant data dir: %w", err)
	}

	path := filepath.Join(m.dataDir, tenantID+".db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open tenant store %s: %w", tenantID, err)
	}

	// AutoMigrate is idempotent, so re-opening an existing store just
	// applies whatever schema is still pending.
	if err := db.AutoMigrate(&Proveedor{}, &Producto{}, &Pedido{}); err != nil {
		return nil, fmt.Errorf("migrate tenant store %s: %w", tenantID, err)
	}

	metrics.TenantStoresOpen.Inc()
	l.Info("tenant_store_ready", "path", path)
	return db, nil
}

// Count reports how many tenant stores are currently open.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores)
}

// Close tears down every open handle. Used on shutdown and in tests.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for id, db := range m.stores {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(m.stores, id)
		metrics.TenantStoresOpen.Dec()
	}
	return firstErr
}
