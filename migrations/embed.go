// Package migrations embeds the schema of every supported store. Files are
// applied in name order and recorded in schema_migrations.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS

// Migration is one schema file; Version is its name without ".sql".
type Migration struct {
	Version string
	SQL     string
}

// Pending returns the files under dir that applied does not report as
// already recorded, in version order.
func Pending(fsys fs.FS, dir string, applied func(version string) (bool, error)) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migration dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []Migration
	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")
		done, err := applied(version)
		if err != nil {
			return nil, fmt.Errorf("check migration %s: %w", version, err)
		}
		if done {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: version, SQL: string(content)})
	}
	return out, nil
}
