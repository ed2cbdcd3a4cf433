// Package database owns the relational store: connection lifecycle, the
// versioned schema migrator, and sqlite maintenance helpers.
package database

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raychrisgdp/taskgenie/internal/config"
)

// State tracks the store lifecycle during startup.
type State int

const (
	StateUninitialized State = iota
	StateMigrating
	StateReady
	// StateDegraded means a permissive-policy migration failure: the process
	// serves traffic against a possibly stale schema.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateMigrating:
		return "migrating"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	}
	return "unknown"
}

// Store is the explicit handle to the relational store. It is created by the
// process entry point and passed down by dependency injection; there is no
// package-level connection.
type Store struct {
	db       *gorm.DB
	url      string
	filePath string // sqlite file path, "" for non-file stores
	inMemory bool

	mu    sync.RWMutex
	state State
}

// Open connects to the database described by the configuration. The dialect
// is selected from the URL scheme: postgres://, mysql://, otherwise sqlite.
func Open(cfg *config.Config) (*Store, error) {
	url := cfg.DatabaseURLResolved()

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		db  *gorm.DB
		err error
	)
	switch {
	case strings.HasPrefix(url, "postgres://"):
		db, err = gorm.Open(postgres.Open(url), gormCfg)
	case strings.HasPrefix(url, "mysql://"):
		db, err = gorm.Open(mysql.Open(strings.TrimPrefix(url, "mysql://")), gormCfg)
	default:
		dsn := strings.TrimPrefix(url, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
		if err == nil {
			// The sqlite driver leaves foreign key enforcement off.
			err = db.Exec("PRAGMA foreign_keys=ON").Error
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	path := cfg.DatabasePath()
	return &Store{
		db:       db,
		url:      url,
		filePath: path,
		inMemory: path == "" && !strings.HasPrefix(url, "postgres://") && !strings.HasPrefix(url, "mysql://"),
		state:    StateUninitialized,
	}, nil
}

// DB exposes the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// FilePath returns the sqlite database file path, or "" when the store is not
// file-backed.
func (s *Store) FilePath() string {
	return s.filePath
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Bootstrap brings the schema to the latest version before the store serves
// traffic. Under the strict policy a migration failure is returned (fatal);
// under the permissive policy it is logged and the store is marked degraded.
func (s *Store) Bootstrap(policy config.MigrationPolicy, log *slog.Logger) error {
	s.setState(StateMigrating)

	m := NewMigrator(s)
	need, err := m.NeedsMigration()
	if err != nil {
		// An unreadable marker never counts as up to date.
		log.Warn("could not determine schema version, migrating", "error", err)
		need = true
	}

	if need {
		log.Info("running database migrations", "target", m.LatestVersion())
		if err := m.Upgrade(""); err != nil {
			if policy == config.MigrationPolicyStrict {
				s.setState(StateDegraded)
				return fmt.Errorf("database migration failed: %w", err)
			}
			log.Warn("database migration failed, continuing with stale schema", "error", err)
			s.setState(StateDegraded)
			return nil
		}
		log.Info("database migrations completed", "version", m.LatestVersion())
	}

	s.setState(StateReady)
	return nil
}
