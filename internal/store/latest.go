package store

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-core/pkg/errors"
)

// signalsFilePattern matches signals_(YYYY-MM-DD).parquet file names.
var signalsFilePattern = regexp.MustCompile(`signals_(\d{4}-\d{2}-\d{2})\.parquet$`)

// Latest enumerates every signals_* file anywhere under the store's base
// (the backend walks all YYYY/MM partitions beneath prefix) and returns the
// maximum date found. It returns found=false iff no signals file has ever
// been written.
func (s *ArtifactStore) Latest(ctx context.Context) (latest time.Time, found bool, err error) {
	keys, err := s.backend.List(ctx, s.base, "signals_*.parquet")
	if err != nil {
		return time.Time{}, false, errors.Wrap(errors.ErrCodeStorageError, "failed to list signals files", err)
	}

	var dates []time.Time

	for _, key := range keys {
		m := signalsFilePattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}

		d, parseErr := time.Parse("2006-01-02", m[1])
		if parseErr != nil {
			continue
		}

		dates = append(dates, d)
	}

	if len(dates) == 0 {
		return time.Time{}, false, nil
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return dates[len(dates)-1], true, nil
}
