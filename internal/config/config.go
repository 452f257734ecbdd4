package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "BDHUB"

// Config holds application configuration.
type Config struct {
	Hub      HubConfig      `mapstructure:"hub"`
	History  HistoryConfig  `mapstructure:"history"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Games    GamesConfig    `mapstructure:"games"`
}

type HubConfig struct {
	Title string `mapstructure:"title"`
	// StartPath is the location the hub opens at, e.g. "./shoot".
	StartPath string `mapstructure:"start_path"`
	// Aliases maps game ids to short path segments. Empty means the
	// built-in aliases.
	Aliases map[string]string `mapstructure:"aliases"`
}

// HistoryConfig controls whether the last location is restored on start.
type HistoryConfig struct {
	Resume bool `mapstructure:"resume"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Path        string `mapstructure:"path"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig enables the prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type GamesConfig struct {
	Seed        uint64            `mapstructure:"seed"`
	NoteShooter NoteShooterConfig `mapstructure:"note_shooter"`
}

type NoteShooterConfig struct {
	Round time.Duration `mapstructure:"round"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"path":         "hub.start_path",
	"title":        "hub.title",
	"db":           "database.path",
	"resume":       "history.resume",
	"log-level":    "log.level",
	"log-file":     "log.path",
	"metrics-addr": "metrics.addr",
	"seed":         "games.seed",
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "bdhub")
}

// Path returns the config file location: $BDHUB_CONFIG, or
// ~/.config/bdhub/config.toml.
func Path() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "bdhub", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hub.title", "BanG Dream Hub")
	v.SetDefault("hub.start_path", "")
	v.SetDefault("history.resume", true)
	v.SetDefault("database.path", filepath.Join(dataDir(), "bdhub.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dataDir(), "bdhub.log"))
	v.SetDefault("log.development", false)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("games.seed", 0)
	v.SetDefault("games.note_shooter.round", "30s")
}

// Load reads configuration from defaults, the config file, BDHUB_ env vars
// and finally any changed flags. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return Config{}, fmt.Errorf("read config %s: %w", Path(), err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// Validate checks the fields the hub cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is empty"))
	}
	if c.Games.NoteShooter.Round < 0 {
		errs = append(errs, fmt.Errorf("games.note_shooter.round %s is negative", c.Games.NoteShooter.Round))
	}
	for id, alias := range c.Hub.Aliases {
		if strings.TrimSpace(id) == "" || strings.TrimSpace(alias) == "" {
			errs = append(errs, fmt.Errorf("hub.aliases has an empty entry (%q = %q)", id, alias))
		}
	}
	return errors.Join(errs...)
}

// Save writes cfg to Path, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("hub.title", cfg.Hub.Title)
	v.Set("hub.start_path", cfg.Hub.StartPath)
	if len(cfg.Hub.Aliases) > 0 {
		v.Set("hub.aliases", cfg.Hub.Aliases)
	}
	v.Set("history.resume", cfg.History.Resume)
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.development", cfg.Log.Development)
	v.Set("metrics.addr", cfg.Metrics.Addr)
	v.Set("games.seed", cfg.Games.Seed)
	v.Set("games.note_shooter.round", cfg.Games.NoteShooter.Round.String())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
