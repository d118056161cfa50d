package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-core/internal/logger"
	"github.com/rxtech-lab/argo-core/internal/tables"
	"github.com/rxtech-lab/argo-core/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBSource is a historical OHLCV DataSource backed by a Parquet file,
// read through a DuckDB view, the same read_parquet-view idiom the artifact
// store's local backend uses for reading.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBSource opens an in-process DuckDB connection and creates a view
// over the parquet file at path.
func NewDuckDBSource(path string, log *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to open duckdb connection", err)
	}

	query := fmt.Sprintf(`CREATE VIEW ohlcv_data AS SELECT * FROM read_parquet('%s');`, path)
	if _, err := db.Exec(query); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to create view over parquet source", err)
	}

	return &DuckDBSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Fetch implements DataSource, reading rows from the parquet-backed view
// within [start, end] and restricted to symbols when non-empty.
func (d *DuckDBSource) Fetch(ctx context.Context, start, end time.Time, symbols []string) (*tables.OHLCVTable, error) {
	d.logger.Debug("fetching ohlcv rows from duckdb source",
		zap.Time("start", start), zap.Time("end", end), zap.Strings("symbols", symbols))

	builder := d.sq.Select("datetime", "symbol", "open", "high", "low", "close", "volume").
		From("ohlcv_data").
		Where(squirrel.GtOrEq{"datetime": start}).
		Where(squirrel.LtOrEq{"datetime": end}).
		OrderBy("datetime ASC")

	if len(symbols) > 0 {
		builder = builder.Where(squirrel.Eq{"symbol": symbols})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to build ohlcv query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to query ohlcv data", err)
	}
	defer rows.Close()

	var out tables.OHLCVTable

	for rows.Next() {
		var row tables.OHLCVRow
		if err := rows.Scan(&row.Datetime, &row.Symbol, &row.Open, &row.High, &row.Low, &row.Close, &row.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataSourceError, "failed to scan ohlcv row", err)
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceError, "error iterating ohlcv rows", err)
	}

	return &out, nil
}

// Close releases the underlying DuckDB connection.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}
