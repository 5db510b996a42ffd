package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"logdam/internal/parse"
	"logdam/internal/util/logx"
)

// ConfigPaths are searched in priority order when --config is not given.
var ConfigPaths = []string{
	"./.logdam.yaml",
	"~/.config/logdam/config.yaml",
}

const envPrefix = "LOGDAM_"

var stdinPiped = func() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice == 0
}

// setters map a flag name to a parser writing into Config. Env overrides use
// the same table under LOGDAM_<NAME>.
var setters = map[string]func(c *Config, v string) error{
	"file":             func(c *Config, v string) error { c.File = v; return nil },
	"stdin":            func(c *Config, v string) error { return parseBool(v, &c.Stdin) },
	"follow":           func(c *Config, v string) error { return parseBool(v, &c.Follow) },
	"demo":             func(c *Config, v string) error { c.Demo = v; return nil },
	"demo-rate":        func(c *Config, v string) error { return parseFloat(v, &c.DemoRate) },
	"demo-keys":        func(c *Config, v string) error { return parseInt(v, &c.DemoKeys) },
	"read-limit":       func(c *Config, v string) error { return parseInt(v, &c.ReadLimit) },
	"strategy":         func(c *Config, v string) error { c.Strategy = normalizeStrategy(v); return nil },
	"record-delimiter": func(c *Config, v string) error { c.RecordDelimiter = Unescape(v); return nil },
	"field-delimiter":  func(c *Config, v string) error { c.FieldDelimiter = Unescape(v); return nil },
	"key-column":       func(c *Config, v string) error { return parseKeyColumn(v, &c.KeyColumn) },
	"encoding":         func(c *Config, v string) error { c.Encoding = v; return nil },
	"interval":         func(c *Config, v string) error { return parseDuration(v, &c.Interval) },
	"bell":             func(c *Config, v string) error { return parseBool(v, &c.Bell) },
	"paused":           func(c *Config, v string) error { return parseBool(v, &c.Paused) },
	"theme":            func(c *Config, v string) error { c.Theme = Theme(strings.ToLower(v)); return nil },
	"offline":          func(c *Config, v string) error { return parseBool(v, &c.Offline) },
	"no-cache":         func(c *Config, v string) error { return parseBool(v, &c.NoCache) },
	"openai-model":     func(c *Config, v string) error { c.OpenAIModel = v; return nil },
	"openai-base-url":  func(c *Config, v string) error { c.OpenAIBaseURL = v; return nil },
	"openai-timeout":   func(c *Config, v string) error { return parseDuration(v, &c.OpenAITimeout) },
	"export-format":    func(c *Config, v string) error { c.ExportFormat = v; return nil },
	"export-out":       func(c *Config, v string) error { c.ExportOut = v; return nil },
}

// BindFlags registers every setting on fs, showing defaults in help.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("file", "f", "", "path to log file")
	fs.Bool("stdin", false, "read from stdin (default: auto if piped)")
	fs.Bool("follow", false, "follow file from its end (tail -F)")
	fs.String("demo", "", "generate sample input: tsv|syslog|tcpdump|weblog")
	fs.Float64("demo-rate", d.DemoRate, "demo lines per second")
	fs.Int("demo-keys", d.DemoKeys, "distinct keys in demo input; small values make rows update in place")
	fs.Int("read-limit", d.ReadLimit, "maximum bytes consumed per refresh")
	fs.StringP("strategy", "s", d.Strategy, "parsing strategy: auto|Default|TcpDump|WebLog|SysLog")
	fs.String("record-delimiter", `\n`, "record delimiter for the Default strategy (escapes allowed)")
	fs.String("field-delimiter", `\t`, "field delimiter for the Default strategy (escapes allowed)")
	fs.IntP("key-column", "k", d.KeyColumn, "key column for the Default strategy (-1 appends every row)")
	fs.String("encoding", d.Encoding, "input text encoding")
	fs.Duration("interval", d.Interval, "refresh interval")
	fs.Bool("bell", false, "ring the terminal bell when new data arrives")
	fs.Bool("paused", false, "start with refresh paused")
	fs.String("theme", string(d.Theme), "theme: dark|light")
	fs.Bool("offline", false, "disable OpenAI strategy suggestions")
	fs.Bool("no-cache", false, "disable strategy cache (skip read/write)")
	fs.String("openai-model", d.OpenAIModel, "OpenAI model")
	fs.String("openai-base-url", "", "OpenAI base URL override")
	fs.Duration("openai-timeout", d.OpenAITimeout, "OpenAI request timeout")
	fs.String("export-format", "", "export format for the e key: csv|ndjson (default: from --export-out extension)")
	fs.String("export-out", d.ExportOut, "export path for the e key")
}

// Load resolves configuration with precedence flags > env (.env included) >
// YAML file > defaults. Only flags the user changed take part.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("config: %s: %w", configFile, err)
		}
		cfg.ConfigFile = configFile
	} else {
		for i := len(ConfigPaths) - 1; i >= 0; i-- {
			p := expandPath(ConfigPaths[i])
			if !fileExists(p) {
				continue
			}
			if err := loadFromFile(cfg, p); err != nil {
				logx.Warnf("config: skipping %s: %v", p, err)
				continue
			}
			cfg.ConfigFile = p
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logx.Warnf("config: .env: %v", err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if flags != nil {
		var ferr error
		flags.Visit(func(f *pflag.Flag) {
			set, ok := setters[f.Name]
			if !ok || ferr != nil {
				return
			}
			if err := set(cfg, f.Value.String()); err != nil {
				ferr = fmt.Errorf("config: --%s: %w", f.Name, err)
			}
		})
		if ferr != nil {
			return nil, ferr
		}
	}

	cfg.IsPipedStdin = stdinPiped()
	if cfg.File == "" && cfg.Demo == "" && cfg.IsPipedStdin {
		cfg.Stdin = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logx.Debugf("config: %s", cfg)
	return cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg.
func loadFromFile(cfg *Config, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return errors.New("config file must have .yaml or .yml extension")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.Strategy = normalizeStrategy(cfg.Strategy)
	cfg.RecordDelimiter = Unescape(cfg.RecordDelimiter)
	cfg.FieldDelimiter = Unescape(cfg.FieldDelimiter)
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	for name, set := range setters {
		key := envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if v, ok := os.LookupEnv(key); ok && v != "" {
			if err := set(cfg, v); err != nil {
				return fmt.Errorf("config: invalid value for %s: %w", key, err)
			}
		}
	}
	return nil
}

// Unescape turns user-typed escapes such as `\t` into the characters they
// name. Values that are not valid escapes are returned unchanged.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	if u, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`); err == nil {
		return u
	}
	return s
}

func normalizeStrategy(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, StrategyAuto) || s == "" {
		return StrategyAuto
	}
	return s
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

// parseKeyColumn accepts a column index or "none" for keyless tables.
func parseKeyColumn(v string, dst *int) error {
	if strings.EqualFold(strings.TrimSpace(v), "none") {
		*dst = parse.NoKey
		return nil
	}
	return parseInt(v, dst)
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
