package database

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
)

// Migration is one embedded NNNNNN_name.up.sql / .down.sql pair.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations []Migration

func init() {
	loaded, err := loadMigrations(migrationFS)
	if err != nil {
		middleware.Logger.Error("failed to register embedded migrations", slog.String("error", err.Error()))
		return
	}
	migrations = loaded
}

// loadMigrations reads every up/down pair under migrations/ sorted by version.
func loadMigrations(efs fs.ReadFileFS) ([]Migration, error) {
	var out []Migration
	entries, err := fs.ReadDir(efs, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".up.sql")
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			middleware.Logger.Warn("Skipping migration with invalid naming", slog.String("file", name))
			continue
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil || version <= 0 {
			middleware.Logger.Warn("Skipping migration with invalid version", slog.String("file", name))
			continue
		}

		upBytes, err := efs.ReadFile(path.Join("migrations", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read up migration %s: %w", name, err)
		}

		downName := base + ".down.sql"
		downBytes, err := efs.ReadFile(path.Join("migrations", downName))
		if err != nil {
			return nil, fmt.Errorf("failed to read down migration %s: %w", downName, err)
		}

		out = append(out, Migration{
			Version:    version,
			Name:       parts[1],
			UpScript:   string(upBytes),
			DownScript: string(downBytes),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Version < out[j].Version
	})

	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %06d", out[i].Version)
		}
	}

	return out, nil
}

// GetMigrations returns the registered migrations in version order.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the migration with the given version, or nil.
func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}
