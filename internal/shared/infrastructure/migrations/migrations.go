// Package migrations creates the row store schema for each supported driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Files lists the up migrations for driver in execution order.
func Files(driver database.Driver) ([]string, error) {
	dir := driver.String()
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %s: %w", driver, err)
	}

	var up []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			up = append(up, dir+"/"+entry.Name())
		}
	}
	sort.Strings(up)
	return up, nil
}

// Run executes every migration for the connection's driver. The scripts use
// IF NOT EXISTS, so running them against an existing schema is a no-op.
func Run(ctx context.Context, conn database.Connection) error {
	names, err := Files(conn.Driver())
	if err != nil {
		return err
	}

	for _, name := range names {
		script, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := conn.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}
