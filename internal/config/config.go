// Package config declares the typed configuration values the strategy
// engine consumes. The TOML/YAML parsing pipeline around this package is
// an external collaborator; the engine only ever sees an already-typed
// Config.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-core/internal/simulator/commission_fee"
	yamlv2 "gopkg.in/yaml.v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// MarketFillPriceType selects the base price a market order fills at.
type MarketFillPriceType string

const (
	MarketFillNextOpen     MarketFillPriceType = "next_open"
	MarketFillCurrentClose MarketFillPriceType = "current_close"
)

// LimitFillBarType selects the judging bar for a limit order.
type LimitFillBarType string

const (
	LimitFillNextBar    LimitFillBarType = "next_bar"
	LimitFillCurrentBar LimitFillBarType = "current_bar"
)

// StorageBackendKind selects which store.Backend the engine is wired to.
type StorageBackendKind string

const (
	StorageBackendLocal  StorageBackendKind = "local"
	StorageBackendMemory StorageBackendKind = "memory"
	StorageBackendS3     StorageBackendKind = "s3"
)

// DataSourceDescriptor describes one configured data source.
type DataSourceDescriptor struct {
	Name           string `yaml:"name" json:"name" jsonschema:"required,title=Name"`
	DatetimeColumn string `yaml:"datetime_column" json:"datetime_column" jsonschema:"required,title=Datetime Column"`
	OffsetSeconds  int64  `yaml:"offset_seconds" json:"offset_seconds" jsonschema:"title=Offset Seconds"`
	WindowSeconds  int64  `yaml:"window_seconds" json:"window_seconds" jsonschema:"required,title=Window Seconds,minimum=1"`
	SourcePath     string `yaml:"source_path" json:"source_path" jsonschema:"title=Source Path"`
	ModuleHint     string `yaml:"module_hint" json:"module_hint" jsonschema:"title=Module Hint,description=Provider hint: binance, polygon, duckdb"`
}

// CostConfig holds the simulator's fill-rule cost parameters.
type CostConfig struct {
	CommissionRate      float64               `yaml:"commission_rate" json:"commission_rate" jsonschema:"minimum=0"`
	SlippageBps         float64               `yaml:"slippage_bps" json:"slippage_bps" jsonschema:"minimum=0"`
	MarketFillPriceType MarketFillPriceType   `yaml:"market_fill_price_type" json:"market_fill_price_type" jsonschema:"enum=next_open,enum=current_close"`
	LimitFillBarType    LimitFillBarType      `yaml:"limit_fill_bar_type" json:"limit_fill_bar_type" jsonschema:"enum=next_bar,enum=current_bar"`
	Broker              commission_fee.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker"`
}

// LoopConfig holds the backtest/live loop's scheduling parameters.
type LoopConfig struct {
	Frequency string                     `yaml:"frequency" json:"frequency" jsonschema:"required,description=Cron-like loop frequency"`
	StartDate optional.Option[time.Time] `yaml:"start_date" json:"start_date"`
	EndDate   optional.Option[time.Time] `yaml:"end_date" json:"end_date"`
	Universe  []string                   `yaml:"universe" json:"universe" jsonschema:"description=Optional fixed symbol universe"`
}

// StepOffsets holds the six per-step offset-seconds overrides. They are
// reserved configuration surface: the core's window math only ever applies
// per-data-source offsets (see internal/window), never these. Whether a
// future revision composes per-step offsets into the window calculation is
// an open question this package deliberately does not resolve. The fields
// are exposed and otherwise unused by the engine.
type StepOffsets struct {
	CalculateSignalsOffsetSeconds   int64 `yaml:"calculate_signals_offset_seconds" json:"calculate_signals_offset_seconds"`
	ConstructPortfolioOffsetSeconds int64 `yaml:"construct_portfolio_offset_seconds" json:"construct_portfolio_offset_seconds"`
	CreateEntryOrdersOffsetSeconds  int64 `yaml:"create_entry_orders_offset_seconds" json:"create_entry_orders_offset_seconds"`
	CreateExitOrdersOffsetSeconds   int64 `yaml:"create_exit_orders_offset_seconds" json:"create_exit_orders_offset_seconds"`
	SubmitEntryOrdersOffsetSeconds  int64 `yaml:"submit_entry_orders_offset_seconds" json:"submit_entry_orders_offset_seconds"`
	SubmitExitOrdersOffsetSeconds   int64 `yaml:"submit_exit_orders_offset_seconds" json:"submit_exit_orders_offset_seconds"`
}

// Config is the engine's full typed configuration surface.
type Config struct {
	DataSources    []DataSourceDescriptor `yaml:"data_sources" json:"data_sources" jsonschema:"required"`
	Cost           CostConfig             `yaml:"cost" json:"cost" jsonschema:"required"`
	Loop           LoopConfig             `yaml:"loop" json:"loop" jsonschema:"required"`
	StepOffsets    StepOffsets            `yaml:"step_offsets" json:"step_offsets"`
	StorageBackend StorageBackendKind     `yaml:"storage_backend" json:"storage_backend" jsonschema:"enum=local,enum=memory,enum=s3"`
	StorageBase    string                 `yaml:"storage_base" json:"storage_base"`
}

// UnmarshalYAML implements gopkg.in/yaml.v3's Node-based Unmarshaler for
// Config, converting the plain *time.Time fields the node decodes into
// optional.Option values. Flat, non-nested fragments (a single
// DataSourceDescriptor read from a standalone file) go through
// UnmarshalYAMLFlat instead, using yaml.v2 directly.
func (c *Config) UnmarshalYAML(node *yamlv3.Node) error {
	type rawLoopConfig struct {
		Frequency string     `yaml:"frequency"`
		StartDate *time.Time `yaml:"start_date"`
		EndDate   *time.Time `yaml:"end_date"`
		Universe  []string   `yaml:"universe"`
	}

	type rawConfig struct {
		DataSources    []DataSourceDescriptor `yaml:"data_sources"`
		Cost           CostConfig             `yaml:"cost"`
		Loop           rawLoopConfig          `yaml:"loop"`
		StepOffsets    StepOffsets            `yaml:"step_offsets"`
		StorageBackend StorageBackendKind     `yaml:"storage_backend"`
		StorageBase    string                 `yaml:"storage_base"`
	}

	var raw rawConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.DataSources = raw.DataSources
	c.Cost = raw.Cost
	c.StepOffsets = raw.StepOffsets
	c.StorageBackend = raw.StorageBackend
	c.StorageBase = raw.StorageBase

	c.Loop = LoopConfig{
		Frequency: raw.Loop.Frequency,
		Universe:  raw.Loop.Universe,
		StartDate: optional.None[time.Time](),
		EndDate:   optional.None[time.Time](),
	}

	if raw.Loop.StartDate != nil {
		c.Loop.StartDate = optional.Some(*raw.Loop.StartDate)
	}

	if raw.Loop.EndDate != nil {
		c.Loop.EndDate = optional.Some(*raw.Loop.EndDate)
	}

	return nil
}

// UnmarshalYAMLFlat decodes a flat, non-nested fragment (such as a single
// DataSourceDescriptor read from a standalone file) using gopkg.in/yaml.v2.
func UnmarshalYAMLFlat(data []byte, out any) error {
	return yamlv2.Unmarshal(data, out)
}

// GenerateSchema reflects Config into a JSON schema, with a custom Mapper
// handling optional.Option[time.Time] fields and the commission_fee.Broker
// enum.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "argo-core-config"
	schema.Description = "Configuration schema for the strategy engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON is GenerateSchema, marshaled to an indented JSON string.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	return string(schemaBytes), nil
}

// Empty returns a Config with no data sources and default selectors
// (next_open, next_bar, zero_commission, memory storage), useful as a
// starting point for tests and the CLI's `schema` command.
func Empty() Config {
	return Config{
		Cost: CostConfig{
			MarketFillPriceType: MarketFillNextOpen,
			LimitFillBarType:    LimitFillNextBar,
			Broker:              commission_fee.BrokerZero,
		},
		StorageBackend: StorageBackendMemory,
	}
}
