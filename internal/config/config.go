// Package config provides Viper-based configuration loading for the fight simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when non-empty, also writes logs to a rotating file at this path.
	File string `mapstructure:"file"`
	// MaxSizeMB is the size in megabytes at which the log file is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays is the number of days to keep rotated files.
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// BoutConfig holds the fight engine's tunable constants.
type BoutConfig struct {
	// TickInterval is the wall-clock period of one simulated second.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Rounds is the scheduled number of rounds.
	Rounds int `mapstructure:"rounds"`
	// RoundSeconds is the fight-clock length of each round.
	RoundSeconds int `mapstructure:"round_seconds"`
	// ActionBaseProbability is added to the fighters' mean aggression to get the per-tick action chance.
	ActionBaseProbability float64 `mapstructure:"action_base_probability"`
	// StaminaRecoveryRate is the per-tick stamina regained by a fighter with recovery 100.
	StaminaRecoveryRate float64 `mapstructure:"stamina_recovery_rate"`
	// ExhaustionThreshold stops the bout when both fighters' stamina is below it.
	ExhaustionThreshold float64 `mapstructure:"exhaustion_threshold"`
	// SignificantStrikeThreshold is the minimum damage of a significant strike.
	SignificantStrikeThreshold float64 `mapstructure:"significant_strike_threshold"`
	CritChance                 float64 `mapstructure:"crit_chance"`
	CritMultiplier             float64 `mapstructure:"crit_multiplier"`
	KnockdownDamageThreshold   float64 `mapstructure:"knockdown_damage_threshold"`
	KnockdownChance            float64 `mapstructure:"knockdown_chance"`
	// FightIQThreshold is the fight IQ above which fighters favour high-percentage techniques.
	FightIQThreshold float64 `mapstructure:"fight_iq_threshold"`
	// AccuracyCeiling caps every effective accuracy.
	AccuracyCeiling float64 `mapstructure:"accuracy_ceiling"`
	// DecisionTimeout bounds each external decision provider call.
	DecisionTimeout time.Duration `mapstructure:"decision_timeout"`
}

// ArenaConfig holds fight server settings.
type ArenaConfig struct {
	// HTTPAddr is the listen address of the status API.
	HTTPAddr string `mapstructure:"http_addr"`
	// GRPCAddr is the listen address of the gRPC health service.
	GRPCAddr string `mapstructure:"grpc_addr"`
	// MaxBoutDuration is the wall-clock ceiling after which a running bout is stopped.
	MaxBoutDuration time.Duration `mapstructure:"max_bout_duration"`
	// FinishedTTL is how long finished bout snapshots stay queryable.
	FinishedTTL time.Duration `mapstructure:"finished_ttl"`
	// FinishedMax caps the number of cached finished bouts.
	FinishedMax int `mapstructure:"finished_max"`
}

// LLMConfig holds settings for the language-model decision provider.
type LLMConfig struct {
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// ScriptingConfig holds Lua strategy sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit is the maximum number of Lua opcodes per decision call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Bout      BoutConfig      `mapstructure:"bout"`
	Arena     ArenaConfig     `mapstructure:"arena"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBout(c.Bout); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateArena(c.Arena); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("llm.max_tokens must be >= 0, got %d", c.LLM.MaxTokens))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.File != "" && l.MaxSizeMB < 1 {
		return fmt.Errorf("logging.max_size_mb must be >= 1 when logging.file is set, got %d", l.MaxSizeMB)
	}
	return nil
}

func validateBout(b BoutConfig) error {
	var errs []string
	if b.TickInterval <= 0 {
		errs = append(errs, "bout.tick_interval must be > 0")
	}
	if b.Rounds < 1 {
		errs = append(errs, fmt.Sprintf("bout.rounds must be >= 1, got %d", b.Rounds))
	}
	if b.RoundSeconds < 1 {
		errs = append(errs, fmt.Sprintf("bout.round_seconds must be >= 1, got %d", b.RoundSeconds))
	}
	probs := map[string]float64{
		"bout.action_base_probability": b.ActionBaseProbability,
		"bout.crit_chance":             b.CritChance,
		"bout.knockdown_chance":        b.KnockdownChance,
		"bout.accuracy_ceiling":        b.AccuracyCeiling,
	}
	for _, name := range []string{"bout.action_base_probability", "bout.crit_chance", "bout.knockdown_chance", "bout.accuracy_ceiling"} {
		if p := probs[name]; p < 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %v", name, p))
		}
	}
	if b.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("bout.crit_multiplier must be >= 1, got %v", b.CritMultiplier))
	}
	if b.StaminaRecoveryRate < 0 || b.ExhaustionThreshold < 0 || b.SignificantStrikeThreshold < 0 {
		errs = append(errs, "bout.stamina_recovery_rate, bout.exhaustion_threshold, and bout.significant_strike_threshold must be >= 0")
	}
	if b.DecisionTimeout <= 0 {
		errs = append(errs, "bout.decision_timeout must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateArena(a ArenaConfig) error {
	var errs []string
	if a.HTTPAddr == "" {
		errs = append(errs, "arena.http_addr must not be empty")
	}
	if a.GRPCAddr == "" {
		errs = append(errs, "arena.grpc_addr must not be empty")
	}
	if a.MaxBoutDuration <= 0 {
		errs = append(errs, "arena.max_bout_duration must be > 0")
	}
	if a.FinishedTTL <= 0 {
		errs = append(errs, "arena.finished_ttl must be > 0")
	}
	if a.FinishedMax < 1 {
		errs = append(errs, fmt.Sprintf("arena.finished_max must be >= 1, got %d", a.FinishedMax))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default builds a Config from defaults and FIGHTSIM_ environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Default() (Config, error) {
	return LoadFromViper(newViper())
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with FIGHTSIM_ prefix
	v.SetEnvPrefix("FIGHTSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fightsim")
	v.SetDefault("database.password", "fightsim")
	v.SetDefault("database.name", "fightsim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("bout.tick_interval", "1s")
	v.SetDefault("bout.rounds", 3)
	v.SetDefault("bout.round_seconds", 300)
	v.SetDefault("bout.action_base_probability", 0.3)
	v.SetDefault("bout.stamina_recovery_rate", 0.5)
	v.SetDefault("bout.exhaustion_threshold", 10)
	v.SetDefault("bout.significant_strike_threshold", 5)
	v.SetDefault("bout.crit_chance", 0.05)
	v.SetDefault("bout.crit_multiplier", 1.5)
	v.SetDefault("bout.knockdown_damage_threshold", 10)
	v.SetDefault("bout.knockdown_chance", 0.4)
	v.SetDefault("bout.fight_iq_threshold", 70)
	v.SetDefault("bout.accuracy_ceiling", 0.95)
	v.SetDefault("bout.decision_timeout", "2s")

	v.SetDefault("arena.http_addr", "127.0.0.1:8080")
	v.SetDefault("arena.grpc_addr", "127.0.0.1:50051")
	v.SetDefault("arena.max_bout_duration", "20m")
	v.SetDefault("arena.finished_ttl", "1h")
	v.SetDefault("arena.finished_max", 500)

	v.SetDefault("llm.model", "claude-sonnet-4-5")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_tokens", 32)

	v.SetDefault("scripting.instruction_limit", 100000)
}
