package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-core/examples/strategy"
	"github.com/rxtech-lab/argo-core/internal/config"
	"github.com/rxtech-lab/argo-core/internal/datasource"
	"github.com/rxtech-lab/argo-core/internal/engine"
	"github.com/rxtech-lab/argo-core/internal/exchange"
	"github.com/rxtech-lab/argo-core/internal/logger"
	"github.com/rxtech-lab/argo-core/internal/simulator"
	"github.com/rxtech-lab/argo-core/internal/simulator/commission_fee"
	"github.com/rxtech-lab/argo-core/internal/store"
	"github.com/rxtech-lab/argo-core/internal/window"
	"github.com/rxtech-lab/argo-core/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

// buildDataSource instantiates the concrete datasource.DataSource named by
// a descriptor's ModuleHint.
func buildDataSource(desc config.DataSourceDescriptor, log *logger.Logger) (datasource.DataSource, error) {
	switch desc.ModuleHint {
	case "binance":
		return datasource.NewBinanceSource("1d"), nil
	case "polygon":
		return datasource.NewPolygonSource(os.Getenv("POLYGON_API_KEY"), 1, models.Day)
	case "duckdb", "":
		return datasource.NewDuckDBSource(desc.SourcePath, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown data source module hint %q for %q", desc.ModuleHint, desc.Name)
	}
}

// buildStorageBackend resolves cfg's storage selector into a concrete
// store.Backend.
func buildStorageBackend(ctx context.Context, cfg config.Config, log *logger.Logger) (store.Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		return store.NewMemoryBackend(), nil
	case config.StorageBackendS3:
		return store.NewS3Backend(ctx, cfg.StorageBase, "")
	case config.StorageBackendLocal, "":
		return store.NewLocalBackend(cfg.StorageBase, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown storage backend %q", cfg.StorageBackend)
	}
}

// buildEngine wires an *engine.Engine plus the simulated exchange client
// driving it, from a fully-typed Config. The strategy components are the
// bundled moving-average example (examples/strategy); a real deployment
// links its own implementations of strategycomp's four interfaces instead.
func buildEngine(ctx context.Context, cfg config.Config, cursor time.Time, log *logger.Logger) (*engine.Engine, *exchange.SimulatedExchangeClient, error) {
	backend, err := buildStorageBackend(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// The backend root (or bucket) already carries StorageBase, so the
	// store's key prefix stays empty.
	artifactStore := store.New(backend, "")

	dataSources := make(map[string]engine.DataSourceBinding, len(cfg.DataSources))

	var ohlcvSource datasource.DataSource

	for _, desc := range cfg.DataSources {
		src, err := buildDataSource(desc, log)
		if err != nil {
			return nil, nil, err
		}

		if desc.Name == "ohlcv" {
			src = datasource.NewOHLCVValidatingSource(src)
			ohlcvSource = src
		}

		dataSources[desc.Name] = engine.DataSourceBinding{
			Descriptor: window.Descriptor{
				Name:           desc.Name,
				DatetimeColumn: desc.DatetimeColumn,
				OffsetSeconds:  desc.OffsetSeconds,
				WindowSeconds:  desc.WindowSeconds,
				SourcePath:     desc.SourcePath,
				ModuleHint:     desc.ModuleHint,
			},
			Source: src,
		}
	}

	if ohlcvSource == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidConfiguration, "config must declare a data source named \"ohlcv\"")
	}

	broker := cfg.Cost.Broker
	if broker == "" {
		// Cost config carries a single commission_rate, so the
		// percentage schedule is the default when no broker is named.
		broker = commission_fee.BrokerPercentage
	}

	fee := commission_fee.GetCommissionFeeHandler(broker, cfg.Cost.CommissionRate)

	simCost := simulator.CostConfig{
		CommissionRate:      cfg.Cost.CommissionRate,
		SlippageBps:         cfg.Cost.SlippageBps,
		MarketFillPriceType: simulator.MarketFillPriceType(cfg.Cost.MarketFillPriceType),
		LimitFillBarType:    simulator.LimitFillBarType(cfg.Cost.LimitFillBarType),
	}

	sim := simulator.New(simCost, ohlcvSource, fee, cursor)
	exchangeClient := exchange.NewSimulatedExchangeClient(sim)

	params := strategy.MovingAverageParams{FastPeriod: 10, SlowPeriod: 30, OrderSize: 1}

	eng := engine.New(
		artifactStore,
		dataSources,
		strategy.NewSignalCalculator(params),
		strategy.NewPortfolioConstructor(params),
		strategy.NewEntryOrderCreator(params),
		strategy.NewExitOrderCreator(params),
		exchangeClient,
		log,
	)

	return eng, exchangeClient, nil
}

func loadConfig(path string) (config.Config, error) {
	data, err := readFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg config.Config
	if err := yamlv3.Unmarshal(data, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}
