package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-core/internal/logger"
	"go.uber.org/zap"
)

// LocalBackend persists artifacts as Parquet files under a filesystem root,
// using an in-process DuckDB connection: rows are staged through DuckDB's
// JSON reader, then exported with `COPY ... TO '...' (FORMAT PARQUET)`;
// reads go through
// a `read_parquet` view. Squirrel builds the few statements that are plain
// SELECTs; CREATE VIEW and COPY are raw SQL, since Squirrel has no query
// builder for either.
type LocalBackend struct {
	root   string
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewLocalBackend opens (creating if necessary) a DuckDB-backed backend
// rooted at root.
func NewLocalBackend(root string, log *logger.Logger) (*LocalBackend, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to create store root: %w", err)
	}

	return &LocalBackend{
		root:   root,
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func (b *LocalBackend) absPath(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}

// Save implements Backend. rows is marshaled to a scratch JSON file,
// staged into a DuckDB table via read_json_auto, then exported to Parquet.
// The write-then-rename happens at the OS level via a ".tmp" suffix so a
// reader never observes a partially-written file.
func (b *LocalBackend) Save(_ context.Context, key string, rows any) error {
	target := b.absPath(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create partition directory: %w", err)
	}

	encoded, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	tmpTarget := target + ".tmp"

	// An empty table carries no schema for read_json_auto to infer; export
	// a zero-row relation instead so the artifact still exists on disk.
	if string(encoded) == "null" || string(encoded) == "[]" {
		emptyQuery := fmt.Sprintf(`COPY (SELECT 1 AS placeholder WHERE false) TO '%s' (FORMAT PARQUET)`, tmpTarget)
		if _, err := b.db.Exec(emptyQuery); err != nil {
			return fmt.Errorf("failed to export empty parquet file: %w", err)
		}

		if err := os.Rename(tmpTarget, target); err != nil {
			return fmt.Errorf("failed to finalize parquet file: %w", err)
		}

		return nil
	}

	scratch, err := os.CreateTemp("", "argo-store-*.json")
	if err != nil {
		return fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer os.Remove(scratch.Name())

	if _, err := scratch.Write(encoded); err != nil {
		scratch.Close()

		return fmt.Errorf("failed to write scratch file: %w", err)
	}

	scratch.Close()

	stagingTable := "stage_" + sanitizeIdentifier(path.Base(key))

	if _, err := b.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, stagingTable)); err != nil {
		return fmt.Errorf("failed to drop staging table: %w", err)
	}

	createQuery := fmt.Sprintf(`CREATE TABLE %s AS SELECT * FROM read_json_auto('%s')`, stagingTable, scratch.Name())
	if _, err := b.db.Exec(createQuery); err != nil {
		return fmt.Errorf("failed to stage rows: %w", err)
	}

	defer b.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, stagingTable))

	copyQuery := fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, stagingTable, tmpTarget)
	if _, err := b.db.Exec(copyQuery); err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	if err := os.Rename(tmpTarget, target); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	if b.logger != nil {
		b.logger.Debug("saved artifact", zap.String("key", key))
	}

	return nil
}

// Load implements Backend. The Parquet file is exposed as a DuckDB view,
// re-serialized to JSON via to_json, and decoded back into dest.
func (b *LocalBackend) Load(_ context.Context, key string, dest any) (bool, error) {
	target := b.absPath(key)

	if _, err := os.Stat(target); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to stat artifact: %w", err)
	}

	viewName := "view_" + sanitizeIdentifier(path.Base(key))

	if _, err := b.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s`, viewName)); err != nil {
		return false, fmt.Errorf("failed to drop existing view: %w", err)
	}

	createViewQuery := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM read_parquet('%s')`, viewName, target)
	if _, err := b.db.Exec(createViewQuery); err != nil {
		return false, fmt.Errorf("failed to create view: %w", err)
	}

	defer b.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s`, viewName))

	row := b.sq.Select("COALESCE(json_group_array(to_json(t)), '[]')").
		From(viewName + " t").
		RunWith(b.db).
		QueryRow()

	// The driver hands the JSON aggregate back either as text or already
	// decoded into Go values; normalize both to a JSON string.
	var raw any
	if err := row.Scan(&raw); err != nil {
		return false, fmt.Errorf("failed to read parquet rows: %w", err)
	}

	var encoded string

	switch v := raw.(type) {
	case string:
		encoded = v
	case []byte:
		encoded = string(v)
	default:
		reencoded, err := json.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("failed to re-encode parquet rows: %w", err)
		}

		encoded = string(reencoded)
	}

	// DuckDB renders TIMESTAMP values as "YYYY-MM-DD HH:MM:SS[+00]";
	// restore the RFC 3339 shape so encoding/json can decode them back
	// into time.Time. All artifact timestamps are written in UTC.
	encoded = duckdbTimestampPattern.ReplaceAllString(encoded, `"${1}T${2}Z"`)

	if err := json.Unmarshal([]byte(encoded), dest); err != nil {
		return false, fmt.Errorf("failed to decode rows: %w", err)
	}

	return true, nil
}

var duckdbTimestampPattern = regexp.MustCompile(`"(\d{4}-\d{2}-\d{2}) (\d{2}:\d{2}:\d{2}(?:\.\d+)?)(?:\+00(?::?00)?)?"`)

// Exists implements Backend.
func (b *LocalBackend) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(b.absPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// List implements Backend by walking the filesystem beneath prefix and
// matching glob against each file's base name.
func (b *LocalBackend) List(_ context.Context, prefix, glob string) ([]string, error) {
	root := b.absPath(prefix)

	var out []string

	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}

			return err
		}

		if info.IsDir() {
			return nil
		}

		matched, matchErr := path.Match(glob, filepath.Base(p))
		if matchErr != nil {
			return matchErr
		}

		if matched {
			rel, relErr := filepath.Rel(b.root, p)
			if relErr != nil {
				return relErr
			}

			out = append(out, filepath.ToSlash(rel))
		}

		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return out, nil
}

func sanitizeIdentifier(s string) string {
	out := make([]rune, 0, len(s))

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}

	return string(out)
}
