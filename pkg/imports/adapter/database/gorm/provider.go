package gorm

import (
	"fmt"
	"sync"
	"time"

	dbconfig "github.com/tigerroll/reimport/pkg/imports/adapter/database/config"
	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"

	"gorm.io/gorm"
)

// DialectorFactory generates a gorm.Dialector from a DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
// Driver subpackages call this from their init functions; importing a driver
// package for its side effects is enough to enable its database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory for the specified DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s (did you import the driver package?)", dbType)
	}
	return factory, nil
}

// Provider implements database.Provider for all GORM-backed database types.
type Provider struct {
	logLevel string
}

// NewProvider creates a GORM-backed database.Provider. logLevel controls the
// verbosity of SQL logging.
func NewProvider(logLevel string) *Provider {
	return &Provider{logLevel: logLevel}
}

// Supports implements database.Provider.
func (p *Provider) Supports(dbType string) bool {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	_, ok := dialectorRegistry[dbType]
	return ok
}

// Open implements database.Provider. It establishes a GORM connection and
// applies the configured pool settings.
func (p *Provider) Open(cfg dbconfig.DatabaseConfig, name string) (database.DBConnection, error) {
	factory, err := GetDialectorFactory(cfg.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", cfg.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 NewGormLogger(p.logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Pool.ConnMaxLifetime) * time.Second)
	}

	conn, err := NewGormDBAdapter(db, cfg, name)
	if err != nil {
		return nil, err
	}
	logger.Infof("Established new DB connection: %s (%s)", name, cfg.Type)
	return conn, nil
}
