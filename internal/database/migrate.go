package database

import (
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"
)

// Migration is one versioned, ordered schema change. Apply and Revert run
// inside a transaction; the version marker is written in the same transaction
// so a failed step leaves the recorded version untouched.
type Migration struct {
	Version string
	Name    string
	Apply   func(tx *gorm.DB) error
	Revert  func(tx *gorm.DB) error
}

// SchemaMigration is the single-row version marker table.
type SchemaMigration struct {
	Version string `gorm:"size:100;primaryKey"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrator applies registered migrations to a store.
type Migrator struct {
	store      *Store
	migrations []Migration
}

func NewMigrator(store *Store) *Migrator {
	return &Migrator{store: store, migrations: Registered()}
}

// LatestVersion returns the newest registered migration version.
func (m *Migrator) LatestVersion() string {
	if len(m.migrations) == 0 {
		return ""
	}
	return m.migrations[len(m.migrations)-1].Version
}

// CurrentVersion reads the persisted version marker. It returns "" without
// error when the marker table does not exist or holds no row (fresh database).
func (m *Migrator) CurrentVersion() (string, error) {
	db := m.store.db
	if !db.Migrator().HasTable(&SchemaMigration{}) {
		return "", nil
	}
	var row SchemaMigration
	if err := db.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read schema version: %w", err)
	}
	return row.Version, nil
}

// NeedsMigration reports whether the schema must be migrated before serving.
// Ephemeral (in-memory) stores and missing database files always need
// migration; otherwise the stored version is compared to the latest one.
func (m *Migrator) NeedsMigration() (bool, error) {
	if m.store.inMemory {
		return true, nil
	}
	if p := m.store.filePath; p != "" {
		if _, err := os.Stat(p); err != nil {
			return true, nil
		}
	}
	current, err := m.CurrentVersion()
	if err != nil {
		return true, err
	}
	return current != m.LatestVersion(), nil
}

// Upgrade applies pending migrations in version order up to target
// ("" or "head" means the latest). Re-running at the target version is a
// no-op.
func (m *Migrator) Upgrade(target string) error {
	if target == "" || target == "head" {
		target = m.LatestVersion()
	} else if !m.hasVersion(target) {
		return fmt.Errorf("unknown migration version %q", target)
	}

	current, err := m.CurrentVersion()
	if err != nil {
		return err
	}

	db := m.store.db
	if !db.Migrator().HasTable(&SchemaMigration{}) {
		if err := db.Migrator().CreateTable(&SchemaMigration{}); err != nil {
			return fmt.Errorf("create schema_migrations table: %w", err)
		}
	}

	for _, mig := range m.migrations {
		if mig.Version <= current || mig.Version > target {
			continue
		}
		step := mig
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := step.Apply(tx); err != nil {
				return err
			}
			return setVersion(tx, step.Version)
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", step.Version, err)
		}
	}
	return nil
}

// Downgrade reverts applied migrations newest-first down to target.
// Target "-1" means one step back; "" or "base" reverts everything.
func (m *Migrator) Downgrade(target string) error {
	current, err := m.CurrentVersion()
	if err != nil {
		return err
	}
	if current == "" {
		return nil
	}

	switch target {
	case "-1":
		target = ""
		for i, mig := range m.migrations {
			if mig.Version == current && i > 0 {
				target = m.migrations[i-1].Version
			}
		}
	case "base":
		target = ""
	default:
		if target != "" && !m.hasVersion(target) {
			return fmt.Errorf("unknown migration version %q", target)
		}
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > current {
			continue
		}
		if target != "" && mig.Version <= target {
			break
		}
		previous := ""
		if i > 0 {
			previous = m.migrations[i-1].Version
		}
		step := mig
		err := m.store.db.Transaction(func(tx *gorm.DB) error {
			if err := step.Revert(tx); err != nil {
				return err
			}
			return setVersion(tx, previous)
		})
		if err != nil {
			return fmt.Errorf("revert migration %s: %w", step.Version, err)
		}
	}
	return nil
}

func (m *Migrator) hasVersion(version string) bool {
	for _, mig := range m.migrations {
		if mig.Version == version {
			return true
		}
	}
	return false
}

func setVersion(tx *gorm.DB, version string) error {
	if err := tx.Where("1 = 1").Delete(&SchemaMigration{}).Error; err != nil {
		return err
	}
	if version == "" {
		return nil
	}
	return tx.Create(&SchemaMigration{Version: version}).Error
}
