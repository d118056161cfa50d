package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-core/internal/simulator/commission_fee"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLWithOptionalDates() {
	doc := `
data_sources:
  - name: ohlcv
    datetime_column: datetime
    offset_seconds: 60
    window_seconds: 3600
cost:
  commission_rate: 0.001
  slippage_bps: 10
  market_fill_price_type: next_open
  limit_fill_bar_type: next_bar
  broker: zero_commission
loop:
  frequency: daily
  start_date: 2024-01-01T00:00:00Z
storage_backend: memory
`

	var cfg Config
	suite.NoError(yaml.Unmarshal([]byte(doc), &cfg))

	suite.Len(cfg.DataSources, 1)
	suite.Equal("ohlcv", cfg.DataSources[0].Name)
	suite.Equal(MarketFillNextOpen, cfg.Cost.MarketFillPriceType)
	suite.True(cfg.Loop.StartDate.IsSome())
	suite.Equal(2024, cfg.Loop.StartDate.Unwrap().Year())
	suite.True(cfg.Loop.EndDate.IsNone())
	suite.Equal(StorageBackendMemory, cfg.StorageBackend)
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLFlatDataSourceDescriptor() {
	doc := []byte(`
name: ohlcv
datetime_column: datetime
offset_seconds: 0
window_seconds: 86400
`)

	var d DataSourceDescriptor
	suite.NoError(UnmarshalYAMLFlat(doc, &d))
	suite.Equal("ohlcv", d.Name)
	suite.Equal(int64(86400), d.WindowSeconds)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSONValid() {
	cfg := Empty()

	schemaJSON, err := cfg.GenerateSchemaJSON()
	suite.NoError(err)

	var decoded map[string]any
	suite.NoError(json.Unmarshal([]byte(schemaJSON), &decoded))
	suite.Equal("argo-core-config", decoded["title"])
}

func (suite *ConfigTestSuite) TestEmptyDefaults() {
	cfg := Empty()

	suite.Equal(MarketFillNextOpen, cfg.Cost.MarketFillPriceType)
	suite.Equal(LimitFillNextBar, cfg.Cost.LimitFillBarType)
	suite.Equal(commission_fee.BrokerZero, cfg.Cost.Broker)
	suite.Equal(StorageBackendMemory, cfg.StorageBackend)
}

func (suite *ConfigTestSuite) TestStepOffsetsReservedNotAppliedByCore() {
	cfg := Empty()
	cfg.StepOffsets.CalculateSignalsOffsetSeconds = 120

	// The field round-trips, but nothing in internal/window consumes it;
	// this test documents that the core does not apply it.
	suite.Equal(int64(120), cfg.StepOffsets.CalculateSignalsOffsetSeconds)
}

func (suite *ConfigTestSuite) TestLoopConfigOptionalDates() {
	cfg := Empty()
	suite.True(cfg.Loop.StartDate.IsNone())

	cfg.Loop.StartDate = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	suite.True(cfg.Loop.StartDate.IsSome())
}
