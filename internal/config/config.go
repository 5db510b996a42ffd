package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"logdam/internal/export"
	"logdam/internal/ingest"
	"logdam/internal/loggen"
	"logdam/internal/model"
	"logdam/internal/parse"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// StrategyAuto defers the strategy choice to detection.
const StrategyAuto = "auto"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	File     string  `yaml:"file"`
	Stdin    bool    `yaml:"stdin"`
	Follow   bool    `yaml:"follow"`
	Demo     string  `yaml:"demo"`
	DemoRate float64 `yaml:"demo_rate"`
	DemoKeys int     `yaml:"demo_keys"`

	// ReadLimit caps the bytes consumed per frame.
	ReadLimit int `yaml:"read_limit"`

	Strategy        string `yaml:"strategy"`
	RecordDelimiter string `yaml:"record_delimiter"`
	FieldDelimiter  string `yaml:"field_delimiter"`
	KeyColumn       int    `yaml:"key_column"`
	Encoding        string `yaml:"encoding"`

	Interval time.Duration `yaml:"interval"`
	Bell     bool          `yaml:"bell"`
	Paused   bool          `yaml:"paused"`
	Theme    Theme         `yaml:"theme"`

	Offline       bool          `yaml:"offline"`
	NoCache       bool          `yaml:"no_cache"`
	OpenAIModel   string        `yaml:"openai_model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	OpenAITimeout time.Duration `yaml:"openai_timeout"`

	ExportFormat string `yaml:"export_format"`
	ExportOut    string `yaml:"export_out"`

	// Internal
	ConfigFile   string `yaml:"-"`
	IsPipedStdin bool   `yaml:"-"`
}

func Default() *Config {
	opt := parse.DefaultOptions()
	return &Config{
		DemoRate:        5,
		DemoKeys:        8,
		ReadLimit:       ingest.DefaultReadLimit,
		Strategy:        StrategyAuto,
		RecordDelimiter: opt.RecordDelimiter,
		FieldDelimiter:  opt.FieldDelimiter,
		KeyColumn:       opt.KeyColumn,
		Encoding:        opt.Encoding,
		Interval:        100 * time.Millisecond,
		Theme:           ThemeDark,
		OpenAIModel:     "gpt-4o-mini",
		OpenAITimeout:   30 * time.Second,
		ExportOut:       "logdam-export.csv",
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.KeyColumn < parse.NoKey || c.KeyColumn >= model.MaxFields {
		return fmt.Errorf("%w: key column %d outside -1..%d", ErrInvalid, c.KeyColumn, model.MaxFields-1)
	}
	if c.RecordDelimiter == "" || c.FieldDelimiter == "" {
		return fmt.Errorf("%w: delimiters must not be empty", ErrInvalid)
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("%w: read limit must be positive", ErrInvalid)
	}
	if c.DemoKeys <= 0 {
		return fmt.Errorf("%w: demo keys must be positive", ErrInvalid)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalid)
	}
	if c.Strategy != StrategyAuto {
		if _, ok := parse.Canonical(c.Strategy); !ok {
			return fmt.Errorf("%w: unknown strategy %q (want auto or one of %s)", ErrInvalid, c.Strategy, strings.Join(parse.Labels(), ", "))
		}
	}
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return fmt.Errorf("%w: theme must be dark or light", ErrInvalid)
	}
	if c.Follow && c.File == "" {
		return fmt.Errorf("%w: --follow requires --file", ErrInvalid)
	}
	if _, err := export.FormatFor(c.ExportFormat, c.ExportOut); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Demo != "" && !loggen.Supported(loggen.Normalize(c.Demo)) {
		return fmt.Errorf("%w: unknown demo format %q", ErrInvalid, c.Demo)
	}
	return nil
}

// InitialStrategy is the label the shell starts with. Auto starts on the
// generic strategy and lets detection swap it later.
func (c *Config) InitialStrategy() string {
	if l, ok := parse.Canonical(c.Strategy); ok {
		return l
	}
	return parse.LabelDefault
}

func (c *Config) AutoDetect() bool { return c.Strategy == StrategyAuto }

func (c *Config) ParseOptions() parse.Options {
	return parse.Options{
		RecordDelimiter: c.RecordDelimiter,
		FieldDelimiter:  c.FieldDelimiter,
		KeyColumn:       c.KeyColumn,
		Encoding:        c.Encoding,
	}
}

// SourceOptions picks the input: an explicit file, then stdin, then a demo
// generator.
func (c *Config) SourceOptions() ingest.Options {
	switch {
	case c.File != "":
		return ingest.Options{Source: ingest.SourceFile, Path: c.File, Follow: c.Follow, ReadLimit: c.ReadLimit}
	case c.Stdin:
		return ingest.Options{Source: ingest.SourceStdin, ReadLimit: c.ReadLimit}
	default:
		demo := c.Demo
		if demo == "" {
			demo = loggen.FormatTSV
		}
		return ingest.Options{Source: ingest.SourceDemo, DemoFormat: demo, DemoRate: c.DemoRate, DemoKeys: c.DemoKeys}
	}
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

func (c *Config) String() string {
	return fmt.Sprintf("file=%s stdin=%v follow=%v demo=%s strategy=%s key=%d interval=%s offline=%v",
		c.File, c.Stdin, c.Follow, c.Demo, c.Strategy, c.KeyColumn, c.Interval, c.Offline)
}
