package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"drawstats/internal/browser"
	"drawstats/internal/lottery"
	"drawstats/internal/metrics"
	"drawstats/internal/revenue"
)

type Config struct {
	App       AppConfig             `yaml:"app"`
	Logging   LoggingConfig         `yaml:"logging"`
	RateLimit RateLimitConfig       `yaml:"rate_limit"`
	Browser   browser.Config        `yaml:"browser"`
	Lottery   lottery.ServiceConfig `yaml:"lottery"`
	Revenue   RevenueConfig         `yaml:"revenue"`
	API       APIConfig             `yaml:"api"`
	Metrics   MetricsConfig         `yaml:"metrics"`
}

type AppConfig struct {
	InstanceID      string        `yaml:"instance_id"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type RateLimitConfig struct {
	ByIP struct {
		RefillPerSec int `yaml:"refill_per_sec"`
		Burst        int `yaml:"burst"`
	} `yaml:"by_ip"`
}

// Revenue strategy names accepted in TokenConfig.Strategy.
const (
	StrategyAPI          = "api"
	StrategyBreakdown    = "breakdown"
	StrategyAccrualTable = "accrual_table"
)

// One tracked token. Strategy selects which of the three source blocks
// is read; the other two are ignored.
type TokenConfig struct {
	Symbol       string                     `yaml:"symbol"`
	Strategy     string                     `yaml:"strategy"`
	API          revenue.APIConfig          `yaml:"api"`
	Breakdown    revenue.BreakdownConfig    `yaml:"breakdown"`
	AccrualTable revenue.AccrualTableConfig `yaml:"accrual_table"`
}

type RevenueConfig struct {
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	RefreshEvery time.Duration `yaml:"refresh_every"` // 0 disables the background warmer
	Tokens       []TokenConfig `yaml:"tokens"`
}

type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
	Methods []string `yaml:"methods"`
	Headers []string `yaml:"headers"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORS         CORSConfig    `yaml:"cors"`
}

type APIConfig struct {
	HTTP HTTPConfig `yaml:"http"`
}

type MetricsConfig struct {
	Profiler metrics.ProfilerConfig `yaml:"profiler"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Revenue.Tokens) == 0 {
		return fmt.Errorf("revenue.tokens must name at least one token")
	}
	for i, tok := range c.Revenue.Tokens {
		if tok.Symbol == "" {
			return fmt.Errorf("revenue.tokens[%d]: symbol is required", i)
		}
		switch tok.Strategy {
		case StrategyAPI, StrategyBreakdown, StrategyAccrualTable:
		default:
			return fmt.Errorf("revenue.tokens[%d] (%s): unknown strategy %q", i, tok.Symbol, tok.Strategy)
		}
	}
	if c.Lottery.Navigator.ResultsURL == "" {
		return fmt.Errorf("lottery.navigator.results_url is required")
	}
	return nil
}
