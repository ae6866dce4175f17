package migration

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// 000001_name.up.sql (sequence) or 20250808123045_name.up.sql (timestamp)
var migrationFilePattern = regexp.MustCompile(`^(\d{6}|\d{14})_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)

var migrationNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// LoadMigrationsFromDisk reads every *.up.sql file, ordered by version.
// Files that do not follow the naming scheme are skipped.
func (r *Runner) LoadMigrationsFromDisk() ([]Migration, error) {
	upFiles, err := filepath.Glob(filepath.Join(r.config.MigrationsPath, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migration files: %w", err)
	}

	migrations := make([]Migration, 0, len(upFiles))
	seen := make(map[int64]string, len(upFiles))

	for _, upFile := range upFiles {
		m, err := r.parseMigrationFile(upFile)
		if err != nil {
			log.Warn().Err(err).Str("file", upFile).Msg("skipping migration file")
			continue
		}
		if other, dup := seen[m.Version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d in %s and %s", m.Version, other, filepath.Base(upFile))
		}
		seen[m.Version] = filepath.Base(upFile)
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func (r *Runner) parseMigrationFile(upFilePath string) (Migration, error) {
	filename := filepath.Base(upFilePath)
	matches := migrationFilePattern.FindStringSubmatch(filename)
	if len(matches) != 4 || matches[3] != "up" {
		return Migration{}, fmt.Errorf("invalid migration file name %s", filename)
	}

	version, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return Migration{}, fmt.Errorf("invalid migration version %s: %w", matches[1], err)
	}

	upContent, err := os.ReadFile(upFilePath)
	if err != nil {
		return Migration{}, fmt.Errorf("read %s: %w", filename, err)
	}

	m := Migration{
		Version:     version,
		Name:        toTitleCase(strings.ReplaceAll(matches[2], "_", " ")),
		UpSQL:       string(upContent),
		UpChecksum:  checksum(upContent),
		UpFileSize:  int64(len(upContent)),
		Description: extractDescription(string(upContent)),
	}

	downFilePath := strings.TrimSuffix(upFilePath, ".up.sql") + ".down.sql"
	downContent, err := os.ReadFile(downFilePath)
	switch {
	case err == nil:
		m.DownSQL = string(downContent)
		m.DownChecksum = checksum(downContent)
		m.HasDownFile = true
	case os.IsNotExist(err):
		if r.config.RequireDownFiles {
			return Migration{}, fmt.Errorf("missing down file for %s", filename)
		}
	default:
		return Migration{}, fmt.Errorf("read %s: %w", filepath.Base(downFilePath), err)
	}

	return m, nil
}

// CreateMigrationFiles writes an empty up/down pair with the next sequence
// number and returns both paths
func (r *Runner) CreateMigrationFiles(name string) (string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !migrationNamePattern.MatchString(name) {
		return "", "", fmt.Errorf("migration name must match %s", migrationNamePattern.String())
	}

	if err := os.MkdirAll(r.config.MigrationsPath, 0o755); err != nil {
		return "", "", fmt.Errorf("create migrations dir: %w", err)
	}

	existing, err := r.LoadMigrationsFromDisk()
	if err != nil {
		return "", "", err
	}
	var next int64 = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, name)
	upPath := filepath.Join(r.config.MigrationsPath, base+".up.sql")
	downPath := filepath.Join(r.config.MigrationsPath, base+".down.sql")

	header := fmt.Sprintf("-- Migration: %s\n-- Created: %s\n\n", name, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(upPath, []byte(header), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", upPath, err)
	}
	if err := os.WriteFile(downPath, []byte(header), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", downPath, err)
	}

	return upPath, downPath, nil
}

func checksum(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// extractDescription returns the first leading "--" comment of a SQL file
func extractDescription(sqlContent string) string {
	for _, line := range strings.Split(sqlContent, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}
		desc := strings.TrimSpace(strings.TrimPrefix(line, "--"))
		desc = strings.TrimSpace(strings.TrimPrefix(desc, "Migration:"))
		desc = strings.TrimSpace(strings.TrimPrefix(desc, "Description:"))
		if desc != "" {
			return desc
		}
	}
	return ""
}

func toTitleCase(s string) string {
	parts := strings.Fields(strings.ToLower(s))
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
