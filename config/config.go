// Package config loads the service configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/meenmo/bondrv/analytics"
	"github.com/meenmo/bondrv/curve"
	"github.com/meenmo/bondrv/marketdata"
)

// FlyTriple names the three legs of a butterfly, in years.
type FlyTriple struct {
	Short float64 `mapstructure:"short"`
	Mid   float64 `mapstructure:"mid"`
	Long  float64 `mapstructure:"long"`
}

// Config is the full service configuration.
type Config struct {
	Countries        []string              `mapstructure:"countries"`
	ReferenceCountry string                `mapstructure:"reference_country"`
	CountryCurrency  map[string]string     `mapstructure:"country_currency"`
	SwapFixedLegFreq map[string]int        `mapstructure:"swap_fixed_leg_freq"`
	DisplayTenors    []float64             `mapstructure:"display_tenors"`
	TenorPairs       []analytics.TenorPair `mapstructure:"tenor_pairs"`
	FlyTriples       []FlyTriple           `mapstructure:"fly_triples"`
	Compounding      string                `mapstructure:"compounding"`
	Alignment        string                `mapstructure:"alignment"`
	RefreshInterval  time.Duration         `mapstructure:"refresh_interval"`

	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Default returns the configuration used when no file overrides it: the G10
// markets against German Bunds, refreshed every 90 seconds.
func Default() Config {
	return Config{
		Countries:        marketdata.DefaultCountries(),
		ReferenceCountry: "Germany",
		CountryCurrency: map[string]string{
			"Germany":        "EUR",
			"France":         "EUR",
			"Italy":          "EUR",
			"United States":  "USD",
			"United Kingdom": "GBP",
			"Canada":         "CAD",
			"Japan":          "JPY",
			"Australia":      "AUD",
			"New Zealand":    "NZD",
			"Sweden":         "SEK",
		},
		SwapFixedLegFreq: map[string]int{
			"EUR": 1, "USD": 2, "GBP": 2, "AUD": 2,
			"CAD": 2, "JPY": 2, "NZD": 2, "SEK": 1,
		},
		DisplayTenors: []float64{2, 5, 10, 30},
		TenorPairs:    analytics.DefaultTenorPairs,
		FlyTriples: []FlyTriple{
			{Short: 2, Mid: 5, Long: 10},
			{Short: 5, Mid: 10, Long: 30},
		},
		Compounding:     string(curve.CompContinuous),
		Alignment:       curve.AlignNearest.String(),
		RefreshInterval: 90 * time.Second,
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Postgres: PostgresConfig{
			DSN: "postgres://localhost/bondrv?sslmode=disable",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			FilePath:   "logs/bondrv.log",
			MaxSizeMB:  100,
			MaxBackups: 10,
			MaxAgeDays: 30,
		},
	}
}

// Load reads configuration from the given file path (optional) and BONDRV_*
// environment variables, layered over Default.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BONDRV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("countries", def.Countries)
	v.SetDefault("reference_country", def.ReferenceCountry)
	v.SetDefault("country_currency", def.CountryCurrency)
	v.SetDefault("swap_fixed_leg_freq", def.SwapFixedLegFreq)
	v.SetDefault("display_tenors", def.DisplayTenors)
	v.SetDefault("tenor_pairs", def.TenorPairs)
	v.SetDefault("fly_triples", def.FlyTriples)
	v.SetDefault("compounding", def.Compounding)
	v.SetDefault("alignment", def.Alignment)
	v.SetDefault("refresh_interval", def.RefreshInterval)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("redis.enabled", def.Redis.Enabled)
	v.SetDefault("redis.addr", def.Redis.Addr)
	v.SetDefault("redis.password", def.Redis.Password)
	v.SetDefault("redis.db", def.Redis.DB)
	v.SetDefault("postgres.enabled", def.Postgres.Enabled)
	v.SetDefault("postgres.dsn", def.Postgres.DSN)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)
	v.SetDefault("logging.file_path", def.Logging.FilePath)
	v.SetDefault("logging.max_size_mb", def.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", def.Logging.MaxAgeDays)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Load: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("Load: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if len(c.Countries) == 0 {
		return fmt.Errorf("Validate: no countries configured")
	}
	if c.ReferenceCountry == "" {
		return fmt.Errorf("Validate: reference_country is empty")
	}
	found := false
	for _, country := range c.Countries {
		if country == c.ReferenceCountry {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("Validate: reference_country %q not in countries", c.ReferenceCountry)
	}
	for _, country := range c.Countries {
		if _, ok := c.CountryCurrency[country]; !ok {
			return fmt.Errorf("Validate: no currency configured for %q", country)
		}
	}
	if _, err := curve.ParseAlignment(c.Alignment); err != nil {
		return fmt.Errorf("Validate: %w", err)
	}
	switch curve.Compounding(c.Compounding) {
	case curve.CompAnnual, curve.CompSemiannual, curve.CompContinuous:
	default:
		return fmt.Errorf("Validate: unknown compounding %q", c.Compounding)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("Validate: refresh_interval must be positive")
	}
	for _, p := range c.TenorPairs {
		if !(0 < p.Short && p.Short < p.Long) {
			return fmt.Errorf("Validate: tenor pair %q: want 0 < short < long, got %v/%v", p.Name, p.Short, p.Long)
		}
	}
	for _, f := range c.FlyTriples {
		if !(0 < f.Short && f.Short < f.Mid && f.Mid < f.Long) {
			return fmt.Errorf("Validate: fly %v/%v/%v: want 0 < short < mid < long", f.Short, f.Mid, f.Long)
		}
	}
	return nil
}

// Currency returns the swap currency for a country. A country outside the
// configured map reports false rather than guessing; callers omit the
// swap-dependent modes for it.
func (c Config) Currency(country string) (string, bool) {
	ccy, ok := c.CountryCurrency[country]
	return ccy, ok
}

// SwapFrequency returns the fixed-leg coupon frequency for a currency,
// defaulting to semiannual.
func (c Config) SwapFrequency(currency string) int {
	if f, ok := c.SwapFixedLegFreq[strings.ToUpper(currency)]; ok && f > 0 {
		return f
	}
	return 2
}
