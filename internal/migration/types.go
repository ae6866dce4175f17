// Package migration applies the versioned SQL files under migrations/ and
// tracks them in a schema_migrations table.
package migration

import (
	"path/filepath"
	"time"
)

// Direction of a migration run
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// HealthStatus summarizes the migration state
type HealthStatus string

const (
	StatusHealthy HealthStatus = "healthy" // everything applied
	StatusWarning HealthStatus = "warning" // pending migrations
	StatusError   HealthStatus = "error"   // a checksum mismatch
)

// Migration is one pair of up/down files
type Migration struct {
	Version      int64      `json:"version"`
	Name         string     `json:"name"`
	UpSQL        string     `json:"-"`
	DownSQL      string     `json:"-"`
	Applied      bool       `json:"applied"`
	AppliedAt    *time.Time `json:"appliedAt,omitempty"`
	UpChecksum   string     `json:"upChecksum"`
	DownChecksum string     `json:"downChecksum,omitempty"`
	UpFileSize   int64      `json:"upFileSize"`
	Description  string     `json:"description,omitempty"`
	HasDownFile  bool       `json:"hasDownFile"`
	Dirty        bool       `json:"dirty,omitempty"` // file changed after it was applied
}

// MigrationStatus is the combined view of files and tracking table
type MigrationStatus struct {
	CurrentVersion int64        `json:"currentVersion"`
	Migrations     []Migration  `json:"migrations"`
	TotalCount     int          `json:"totalCount"`
	AppliedCount   int          `json:"appliedCount"`
	PendingCount   int          `json:"pendingCount"`
	DirtyCount     int          `json:"dirtyCount"`
	LastAppliedAt  *time.Time   `json:"lastAppliedAt,omitempty"`
	SystemHealth   HealthStatus `json:"systemHealth"`
}

// MigrationResult is the outcome of running one migration
type MigrationResult struct {
	Success       bool          `json:"success"`
	Version       int64         `json:"version"`
	Name          string        `json:"name"`
	Direction     Direction     `json:"direction"`
	ExecutionTime time.Duration `json:"executionTime"`
	Error         string        `json:"error,omitempty"`
	StartedAt     time.Time     `json:"startedAt"`
}

// MigrationConfig controls a Runner
type MigrationConfig struct {
	MigrationsPath     string
	TableName          string
	ValidateChecksums  bool
	AllowDirtyMigrate  bool // warn instead of fail on changed files
	RequireDownFiles   bool
	TransactionTimeout time.Duration
	DryRun             bool
	Verbose            bool
	CreatedBy          string
}

// DefaultConfig returns the settings for migrations under path
func DefaultConfig(path string) *MigrationConfig {
	if path == "" {
		path = "./migrations"
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return &MigrationConfig{
		MigrationsPath:     path,
		TableName:          "schema_migrations",
		ValidateChecksums:  true,
		AllowDirtyMigrate:  false,
		RequireDownFiles:   false,
		TransactionTimeout: 5 * time.Minute,
		CreatedBy:          "system",
	}
}

// CLIConfig is used by cmd/migrate
func CLIConfig(path string) *MigrationConfig {
	c := DefaultConfig(path)
	c.RequireDownFiles = true
	c.Verbose = true
	c.CreatedBy = "cli"
	return c
}

// AppStartupConfig is used for AUTO_MIGRATE on server start
func AppStartupConfig(path string) *MigrationConfig {
	c := DefaultConfig(path)
	c.TransactionTimeout = time.Minute
	c.CreatedBy = "startup"
	return c
}
