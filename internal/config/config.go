// Package config loads voxstore settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/joshuapare/voxstore/internal/format"
	"github.com/joshuapare/voxstore/internal/logger"
	"github.com/joshuapare/voxstore/storage"
)

// ErrInvalid indicates a setting outside its allowed range.
var ErrInvalid = errors.New("config: invalid setting")

// Config is the full configuration file.
type Config struct {
	World   World   `toml:"world"`
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
}

// World describes the vertical extent of chunk columns.
type World struct {
	MinY int `toml:"min_y"`
	MaxY int `toml:"max_y"`
}

// Storage configures the region worker. Durations use time.ParseDuration
// syntax.
type Storage struct {
	Dir            string `toml:"dir"`
	Compression    string `toml:"compression"`
	MaxOpenRegions int    `toml:"max_open_regions"`
	IdleTimeout    string `toml:"idle_timeout"`
	SweepInterval  string `toml:"sweep_interval"`
	QueueSize      int    `toml:"queue_size"`
	ResultSize     int    `toml:"result_size"`
}

// Log configures internal/logger.
type Log struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Dir     string `toml:"dir"`
	JSON    bool   `toml:"json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		World: World{MinY: -64, MaxY: 320},
		Storage: Storage{
			Dir:            "region",
			Compression:    format.DefaultCompression.String(),
			MaxOpenRegions: storage.DefaultMaxOpenRegions,
			IdleTimeout:    storage.DefaultIdleTimeout.String(),
			SweepInterval:  "15s",
			QueueSize:      storage.DefaultQueueSize,
			ResultSize:     storage.DefaultResultSize,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the file at path. Keys it does not set keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML data over Default and validates the result.
func Parse(data []byte) (Config, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Config{}, err
	}

	c := Default()
	p := parser{tree: tree}
	p.getInt("world.min_y", &c.World.MinY)
	p.getInt("world.max_y", &c.World.MaxY)

	p.getString("storage.dir", &c.Storage.Dir)
	p.getString("storage.compression", &c.Storage.Compression)
	p.getInt("storage.max_open_regions", &c.Storage.MaxOpenRegions)
	p.getString("storage.idle_timeout", &c.Storage.IdleTimeout)
	p.getString("storage.sweep_interval", &c.Storage.SweepInterval)
	p.getInt("storage.queue_size", &c.Storage.QueueSize)
	p.getInt("storage.result_size", &c.Storage.ResultSize)

	p.getBool("log.enabled", &c.Log.Enabled)
	p.getString("log.level", &c.Log.Level)
	p.getString("log.dir", &c.Log.Dir)
	p.getBool("log.json", &c.Log.JSON)
	if p.err != nil {
		return Config{}, p.err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// parser copies typed values out of a tree, keeping the first type error.
type parser struct {
	tree *toml.Tree
	err  error
}

func (p *parser) get(key string) (any, bool) {
	if p.err != nil || !p.tree.Has(key) {
		return nil, false
	}
	return p.tree.Get(key), true
}

func (p *parser) mismatch(key string, v any, want string) {
	p.err = fmt.Errorf("%s: %T is not a %s: %w", key, v, want, ErrInvalid)
}

func (p *parser) getInt(key string, dst *int) {
	if v, ok := p.get(key); ok {
		n, isInt := v.(int64)
		if !isInt {
			p.mismatch(key, v, "integer")
			return
		}
		*dst = int(n)
	}
}

func (p *parser) getString(key string, dst *string) {
	if v, ok := p.get(key); ok {
		s, isString := v.(string)
		if !isString {
			p.mismatch(key, v, "string")
			return
		}
		*dst = s
	}
}

func (p *parser) getBool(key string, dst *bool) {
	if v, ok := p.get(key); ok {
		b, isBool := v.(bool)
		if !isBool {
			p.mismatch(key, v, "boolean")
			return
		}
		*dst = b
	}
}

// Validate checks every setting.
func (c Config) Validate() error {
	var errs []error
	bad := func(msg string, args ...any) {
		errs = append(errs, fmt.Errorf(msg+": %w", append(args, ErrInvalid)...))
	}

	if c.World.MinY%16 != 0 || c.World.MaxY%16 != 0 || c.World.MaxY <= c.World.MinY {
		bad("world: height range [%d,%d) must be non-empty multiples of 16", c.World.MinY, c.World.MaxY)
	}
	if c.Storage.Dir == "" {
		bad("storage.dir: empty")
	}
	if _, err := format.ParseCompression(c.Storage.Compression); err != nil {
		errs = append(errs, fmt.Errorf("storage.compression: %w", err))
	}
	for key, v := range map[string]int{
		"storage.max_open_regions": c.Storage.MaxOpenRegions,
		"storage.queue_size":       c.Storage.QueueSize,
		"storage.result_size":      c.Storage.ResultSize,
	} {
		if v < 0 {
			bad("%s: %d is negative", key, v)
		}
	}
	for key, v := range map[string]string{
		"storage.idle_timeout":   c.Storage.IdleTimeout,
		"storage.sweep_interval": c.Storage.SweepInterval,
	} {
		if d, err := parseDuration(v); err != nil || d < 0 {
			bad("%s: %q is not a duration", key, v)
		}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		bad("log.level: %q", c.Log.Level)
	}
	return errors.Join(errs...)
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// StorageOptions converts the storage table. l becomes the worker's logger.
func (c Config) StorageOptions(l *slog.Logger) (storage.Options, error) {
	comp, err := format.ParseCompression(c.Storage.Compression)
	if err != nil {
		return storage.Options{}, err
	}
	idle, err := parseDuration(c.Storage.IdleTimeout)
	if err != nil {
		return storage.Options{}, fmt.Errorf("storage.idle_timeout: %w", err)
	}
	sweep, err := parseDuration(c.Storage.SweepInterval)
	if err != nil {
		return storage.Options{}, fmt.Errorf("storage.sweep_interval: %w", err)
	}
	return storage.Options{
		Dir:            c.Storage.Dir,
		MaxOpenRegions: c.Storage.MaxOpenRegions,
		IdleTimeout:    idle,
		SweepInterval:  sweep,
		QueueSize:      c.Storage.QueueSize,
		ResultSize:     c.Storage.ResultSize,
		Compression:    comp,
		Logger:         l,
	}, nil
}

// LoggerOptions converts the log table.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Enabled: c.Log.Enabled,
		LogDir:  c.Log.Dir,
		Level:   logger.ParseLevel(c.Log.Level),
		JSON:    c.Log.JSON,
	}
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
