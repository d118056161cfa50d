// Package store implements the artifact store: partitioned persistence of
// the four engine-produced artifact kinds (signals, portfolio_plan,
// entry_orders, exit_orders), keyed by target datetime, with pluggable
// backends (local DuckDB+Parquet, in-memory, S3).
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// Backend is the pluggable persistence contract a concrete store
// implementation (local filesystem, object store, in-memory) satisfies.
// Every backend must provide read-after-write consistency for keys it
// writes; eventual-consistency stores require synchronization outside the
// core.
type Backend interface {
	// Save writes table under the given key (a relative path, e.g.
	// "2024/01/signals_2024-01-01.parquet"), overwriting atomically from
	// the reader's perspective.
	Save(ctx context.Context, key string, rows any) error
	// Load reads the table previously written under key. It returns
	// ok=false if the key does not exist.
	Load(ctx context.Context, key string, dest any) (ok bool, err error)
	// Exists reports whether key has been written.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns every key under prefix matching glob (a filename glob
	// pattern applied to the key's base name).
	List(ctx context.Context, prefix, glob string) ([]string, error)
}

// ArtifactStore persists and loads each of {signals, portfolio_plan,
// entry_orders, exit_orders} individually, keyed by target datetime.
type ArtifactStore struct {
	backend Backend
	base    string
}

// New creates an ArtifactStore rooted at base (a backend-specific root,
// e.g. a filesystem directory or an S3 key prefix) backed by backend.
func New(backend Backend, base string) *ArtifactStore {
	return &ArtifactStore{backend: backend, base: base}
}

// PartitionPrefix produces the per-date partition prefix <base>/<YYYY>/<MM>
// for target. An empty base yields <YYYY>/<MM>, for backends whose root or
// bucket already carries the base path.
func (s *ArtifactStore) PartitionPrefix(target time.Time) string {
	prefix := fmt.Sprintf("%04d/%02d", target.Year(), int(target.Month()))
	if s.base == "" {
		return prefix
	}

	return s.base + "/" + prefix
}

func keyFor(prefix string, kind tables.Kind, target time.Time) string {
	return fmt.Sprintf("%s/%s_%s.parquet", prefix, kind, target.Format("2006-01-02"))
}

// Save persists rows (one of the tables.*Table types) as kind for target.
func (s *ArtifactStore) Save(ctx context.Context, kind tables.Kind, target time.Time, rows any) error {
	key := keyFor(s.PartitionPrefix(target), kind, target)

	if err := s.backend.Save(ctx, key, rows); err != nil {
		return errors.Wrap(errors.ErrCodeStorageError, fmt.Sprintf("failed to save %s for %s", kind, target.Format(time.RFC3339)), err)
	}

	return nil
}

// Load reads the artifact of kind persisted for target into dest, a
// pointer to one of the tables.*Table types. found is false if no artifact
// was ever written for (kind, target).
func (s *ArtifactStore) Load(ctx context.Context, kind tables.Kind, target time.Time, dest any) (found bool, err error) {
	key := keyFor(s.PartitionPrefix(target), kind, target)

	found, err = s.backend.Load(ctx, key, dest)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeStorageError, fmt.Sprintf("failed to load %s for %s", kind, target.Format(time.RFC3339)), err)
	}

	return found, nil
}

// Exists reports whether any of the four kinds exist for target.
func (s *ArtifactStore) Exists(ctx context.Context, target time.Time) (bool, error) {
	prefix := s.PartitionPrefix(target)

	for _, kind := range []tables.Kind{tables.KindSignals, tables.KindPortfolioPlan, tables.KindEntryOrders, tables.KindExitOrders} {
		ok, err := s.backend.Exists(ctx, keyFor(prefix, kind, target))
		if err != nil {
			return false, errors.Wrap(errors.ErrCodeStorageError, "failed to check artifact existence", err)
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}
