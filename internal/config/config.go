// Package config defines all configuration for the intent settlement
// solver. Config is loaded from a YAML file (default: configs/config.yaml)
// with sensitive fields overridable via SOLVER_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	DryRun   bool           `mapstructure:"dry_run"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Pools    []PoolConfig   `mapstructure:"pools"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Solver   SolverConfig   `mapstructure:"solver"`
	API      APIConfig      `mapstructure:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AssetsConfig names the façade's token-alias table (spec §4.5): short
// ticker names ("SUI", "USDC") resolving to full on-chain type
// identifiers, plus the decimal exponent each type uses for raw<->human
// conversion. Aliases not listed pass through unchanged as raw type
// identifiers; types not listed in Decimals default to exponent 9.
type AssetsConfig struct {
	Aliases  map[string]string `mapstructure:"aliases"`
	Decimals map[string]int    `mapstructure:"decimals"`
}

// RPCConfig points at the chain's JSON-RPC and event-subscription endpoints.
type RPCConfig struct {
	URL             string        `mapstructure:"url"`
	WSURL           string        `mapstructure:"ws_url"`
	MaxGasPrice     uint64        `mapstructure:"max_gas_price"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ReadsPerSec     float64       `mapstructure:"reads_per_sec"`
	EventsPerSec    float64       `mapstructure:"events_per_sec"`
	DevInspectPerSec float64      `mapstructure:"dev_inspect_per_sec"`
	SubmitPerSec    float64       `mapstructure:"submit_per_sec"`
}

// WalletConfig holds the solver's own signing key, used to fund and sign
// execute_intent transactions. PrivateKey is never read from YAML.
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
	Address    string `mapstructure:"address"`
}

// ProtocolConfig names the deployed Move package and shared objects.
type ProtocolConfig struct {
	PackageID        string `mapstructure:"package_id"`
	ProtocolConfigID string `mapstructure:"protocol_config_id"`
	DeepbookPackageID string `mapstructure:"deepbook_package_id"`
}

// PoolConfig is one statically-configured CLOB pool the quoter may use.
type PoolConfig struct {
	PoolID             string `mapstructure:"pool_id"`
	BaseType           string `mapstructure:"base_type"`
	QuoteType          string `mapstructure:"quote_type"`
	BaseScalar         uint64 `mapstructure:"base_scalar"`
	QuoteScalar        uint64 `mapstructure:"quote_scalar"`
	TickSize           uint64 `mapstructure:"tick_size"`
	LotSize            uint64 `mapstructure:"lot_size"`
	DeepFeeType        string `mapstructure:"deep_fee_type"`
	DeepFeeCoinMinimum uint64 `mapstructure:"deep_fee_coin_minimum"`
}

// SolverConfig tunes solver engine behaviour.
//
//   - MinProfitBps: minimum acceptable profit in basis points of input
//     amount before an intent is executed.
//   - PollingIntervalMs / PollingBatchSize: pull-discovery cadence.
//   - EnableEvents: whether the push (subscribe_events) discovery path runs
//     alongside the poll loop.
//   - GasBudget: gas budget attached to every execute_intent PTB.
//   - OutputBufferBps: extra output-side buffer taken from solver inventory
//     to guard against between-quote-and-execute price movement (see OQ3).
//   - RevertRateThreshold / RevertWindow / CooldownAfterTrip: circuit
//     breaker for a malfunctioning execution path.
type SolverConfig struct {
	MinProfitBps        int           `mapstructure:"min_profit_bps"`
	PollingIntervalMs    int          `mapstructure:"polling_interval_ms"`
	PollingBatchSize    int           `mapstructure:"polling_batch_size"`
	EnableEvents        bool          `mapstructure:"enable_events"`
	GasBudget           uint64        `mapstructure:"gas_budget"`
	OutputBufferBps     int           `mapstructure:"output_buffer_bps"`
	RevertRateThreshold float64       `mapstructure:"revert_rate_threshold"`
	RevertWindow        time.Duration `mapstructure:"revert_window"`
	CooldownAfterTrip   time.Duration `mapstructure:"cooldown_after_trip"`
}

// APIConfig controls the HTTP façade server.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	SolverKey      string   `mapstructure:"solver_key"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides.
// Sensitive fields use env vars: SOLVER_PRIVATE_KEY, SOLVER_SOLVER_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Secrets come from the environment only, never from the YAML file.
	cfg.Wallet.PrivateKey = ""
	cfg.API.SolverKey = ""

	if key := os.Getenv("SOLVER_PRIVATE_KEY"); key != "" {
		cfg.Wallet.PrivateKey = key
	}
	if key := os.Getenv("SOLVER_SOLVER_KEY"); key != "" {
		cfg.API.SolverKey = key
	}
	if os.Getenv("SOLVER_DRY_RUN") == "true" || os.Getenv("SOLVER_DRY_RUN") == "1" {
		cfg.DryRun = true
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc.url is required")
	}
	if c.Wallet.PrivateKey == "" {
		return fmt.Errorf("wallet.private_key is required (set SOLVER_PRIVATE_KEY)")
	}
	if c.Protocol.PackageID == "" {
		return fmt.Errorf("protocol.package_id is required")
	}
	if c.Protocol.ProtocolConfigID == "" {
		return fmt.Errorf("protocol.protocol_config_id is required")
	}
	if len(c.Pools) == 0 {
		return fmt.Errorf("at least one pool must be configured")
	}
	for i, p := range c.Pools {
		if p.PoolID == "" || p.BaseType == "" || p.QuoteType == "" {
			return fmt.Errorf("pools[%d]: pool_id, base_type, and quote_type are required", i)
		}
		if p.BaseScalar == 0 || p.QuoteScalar == 0 {
			return fmt.Errorf("pools[%d]: base_scalar and quote_scalar must be > 0", i)
		}
	}
	if c.Solver.MinProfitBps < 0 {
		return fmt.Errorf("solver.min_profit_bps must be >= 0")
	}
	if c.Solver.PollingIntervalMs <= 0 {
		return fmt.Errorf("solver.polling_interval_ms must be > 0")
	}
	if c.Solver.GasBudget == 0 {
		return fmt.Errorf("solver.gas_budget must be > 0")
	}
	if c.API.Port == 0 {
		return fmt.Errorf("api.port is required")
	}
	return nil
}
