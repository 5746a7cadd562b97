// Package config provides Viper-based configuration loading for the MUD server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the websocket listener settings.
type ServerConfig struct {
	// Host is the bind address for the websocket listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the websocket listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for client connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for client connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File is an optional log file path. Empty means stderr only.
	File string `mapstructure:"file"`
	// MaxSizeMB is the rotation threshold for the log file in megabytes.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to retain.
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays is the maximum age of a rotated log file in days.
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// DatabaseConfig holds the optional PostgreSQL character-mirror settings.
// The mirror is disabled when Enabled is false; the file store is always
// the source of truth.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
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

// GameConfig holds the game-core tuning values.
type GameConfig struct {
	// TickInterval is the base game clock interval (regen, respawns).
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// CombatTickInterval is the interval between combat rounds.
	CombatTickInterval time.Duration `mapstructure:"combat_tick_interval"`
	// RegenRatePerTick is the fraction of max health restored per tick.
	RegenRatePerTick float64 `mapstructure:"regen_rate_per_tick"`
	// DamageVariance is the uniform damage spread fraction (0.2 = ±20%).
	DamageVariance float64 `mapstructure:"damage_variance"`
	// FleeSuccessChance is the probability (0–1) that a flee attempt succeeds.
	FleeSuccessChance float64 `mapstructure:"flee_success_chance"`
	// DefaultRespawnRoom is the "area.room" id used when a character has no homestone.
	DefaultRespawnRoom string `mapstructure:"default_respawn_room"`
	// EnemyRespawnInterval is the delay before a defeated enemy returns.
	EnemyRespawnInterval time.Duration `mapstructure:"enemy_respawn_interval"`
	// InventoryCapacity is the maximum number of inventory entries per character.
	InventoryCapacity int `mapstructure:"inventory_capacity"`
	// NameMinLength and NameMaxLength bound character name length.
	NameMinLength int `mapstructure:"name_min_length"`
	NameMaxLength int `mapstructure:"name_max_length"`
	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength int `mapstructure:"password_min_length"`
	// SaveRetries is the number of times a failed character save is retried.
	SaveRetries int `mapstructure:"save_retries"`
}

// ContentConfig holds the content directory location.
type ContentConfig struct {
	// Dir is the root of the content tree (items/, npcs/, quests/, enemies/, areas/).
	Dir string `mapstructure:"dir"`
}

// PlayersConfig holds the character file directory location.
type PlayersConfig struct {
	// Dir is the directory holding one JSON file per character.
	Dir string `mapstructure:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Content  ContentConfig  `mapstructure:"content"`
	Players  PlayersConfig  `mapstructure:"players"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.Players.Dir == "" {
		errs = append(errs, "players.dir must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
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

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
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

func validateGame(g GameConfig) error {
	var errs []string
	if g.TickInterval <= 0 {
		errs = append(errs, "game.tick_interval must be > 0")
	}
	if g.CombatTickInterval <= 0 {
		errs = append(errs, "game.combat_tick_interval must be > 0")
	}
	if g.RegenRatePerTick <= 0 || g.RegenRatePerTick > 1 {
		errs = append(errs, fmt.Sprintf("game.regen_rate_per_tick must be in (0, 1], got %g", g.RegenRatePerTick))
	}
	if g.DamageVariance < 0 || g.DamageVariance >= 1 {
		errs = append(errs, fmt.Sprintf("game.damage_variance must be in [0, 1), got %g", g.DamageVariance))
	}
	if g.FleeSuccessChance < 0 || g.FleeSuccessChance > 1 {
		errs = append(errs, fmt.Sprintf("game.flee_success_chance must be in [0, 1], got %g", g.FleeSuccessChance))
	}
	if g.DefaultRespawnRoom == "" {
		errs = append(errs, "game.default_respawn_room must not be empty")
	} else if !strings.Contains(g.DefaultRespawnRoom, ".") {
		errs = append(errs, fmt.Sprintf("game.default_respawn_room must be an area.room id, got %q", g.DefaultRespawnRoom))
	}
	if g.EnemyRespawnInterval <= 0 {
		errs = append(errs, "game.enemy_respawn_interval must be > 0")
	}
	if g.InventoryCapacity < 1 {
		errs = append(errs, fmt.Sprintf("game.inventory_capacity must be >= 1, got %d", g.InventoryCapacity))
	}
	if g.NameMinLength < 1 {
		errs = append(errs, "game.name_min_length must be >= 1")
	}
	if g.NameMaxLength < g.NameMinLength {
		errs = append(errs, "game.name_max_length must be >= game.name_min_length")
	}
	if g.PasswordMinLength < 1 {
		errs = append(errs, "game.password_min_length must be >= 1")
	}
	if g.SaveRetries < 0 {
		errs = append(errs, "game.save_retries must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MUD_ prefix
	v.SetEnvPrefix("MUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in default configuration.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Every key is covered by setDefaults, so unmarshalling cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", "5m")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mud")
	v.SetDefault("database.password", "mud")
	v.SetDefault("database.name", "mud")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("game.tick_interval", "2s")
	v.SetDefault("game.combat_tick_interval", "3s")
	v.SetDefault("game.regen_rate_per_tick", 0.05)
	v.SetDefault("game.damage_variance", 0.2)
	v.SetDefault("game.flee_success_chance", 0.6)
	v.SetDefault("game.default_respawn_room", "town.square")
	v.SetDefault("game.enemy_respawn_interval", "60s")
	v.SetDefault("game.inventory_capacity", 30)
	v.SetDefault("game.name_min_length", 3)
	v.SetDefault("game.name_max_length", 12)
	v.SetDefault("game.password_min_length", 3)
	v.SetDefault("game.save_retries", 2)
}
