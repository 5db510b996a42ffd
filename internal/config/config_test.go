package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"logdam/internal/ingest"
	"logdam/internal/parse"
)

// isolate keeps Load away from the developer's home, cwd config and stdin.
func isolate(t *testing.T, piped bool) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	oldPaths, oldPiped := ConfigPaths, stdinPiped
	ConfigPaths = []string{filepath.Join(dir, "none.yaml")}
	stdinPiped = func() bool { return piped }
	t.Cleanup(func() { ConfigPaths, stdinPiped = oldPaths, oldPiped })
	return dir
}

func flagsFor(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestDefaults(t *testing.T) {
	isolate(t, false)
	cfg, err := Load(flagsFor(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interval != 100*time.Millisecond || cfg.FieldDelimiter != "\t" || cfg.RecordDelimiter != "\n" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.AutoDetect() || cfg.InitialStrategy() != parse.LabelDefault {
		t.Fatalf("strategy %q", cfg.Strategy)
	}
	if so := cfg.SourceOptions(); so.Source != ingest.SourceDemo || so.DemoFormat != "tsv" {
		t.Fatalf("source %+v", so)
	}
}

func TestPrecedence(t *testing.T) {
	dir := isolate(t, false)
	yml := filepath.Join(dir, "logdam.yaml")
	body := "strategy: weblog\nkey_column: 3\ninterval: 250ms\nfield_delimiter: '\\|'\nbell: true\n"
	if err := os.WriteFile(yml, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOGDAM_KEY_COLUMN", "4")
	t.Setenv("LOGDAM_INTERVAL", "500ms")

	cfg, err := Load(flagsFor(t, "--interval", "50ms"), yml)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy != "weblog" || cfg.InitialStrategy() != parse.LabelWebLog {
		t.Fatalf("yaml strategy lost: %q", cfg.Strategy)
	}
	if cfg.KeyColumn != 4 {
		t.Fatalf("env should beat yaml, key=%d", cfg.KeyColumn)
	}
	if cfg.Interval != 50*time.Millisecond {
		t.Fatalf("flag should beat env, interval=%s", cfg.Interval)
	}
	if !cfg.Bell || cfg.FieldDelimiter != `\|` {
		t.Fatalf("yaml values: bell=%v delim=%q", cfg.Bell, cfg.FieldDelimiter)
	}
	if cfg.ConfigFile != yml {
		t.Fatalf("config file %q", cfg.ConfigFile)
	}
}

func TestSearchPathsLowestFirst(t *testing.T) {
	dir := isolate(t, false)
	hi, lo := filepath.Join(dir, "hi.yaml"), filepath.Join(dir, "lo.yaml")
	os.WriteFile(hi, []byte("theme: light\n"), 0o644)
	os.WriteFile(lo, []byte("theme: dark\nbell: true\n"), 0o644)
	ConfigPaths = []string{hi, lo}
	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != ThemeLight || !cfg.Bell {
		t.Fatalf("theme=%s bell=%v", cfg.Theme, cfg.Bell)
	}
	if cfg.ConfigFile != hi {
		t.Fatalf("config file %q", cfg.ConfigFile)
	}
}

func TestFlagEscapes(t *testing.T) {
	isolate(t, false)
	cfg, err := Load(flagsFor(t, "--field-delimiter", `,`, "--record-delimiter", `\r\n`, "-k", "2"), "")
	if err != nil {
		t.Fatal(err)
	}
	opt := cfg.ParseOptions()
	if opt.FieldDelimiter != "," || opt.RecordDelimiter != "\r\n" || opt.KeyColumn != 2 {
		t.Fatalf("options %+v", opt)
	}
}

func TestPipedStdinSelected(t *testing.T) {
	isolate(t, true)
	cfg, err := Load(flagsFor(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if so := cfg.SourceOptions(); so.Source != ingest.SourceStdin {
		t.Fatalf("source %+v", so)
	}
	cfg, err = Load(flagsFor(t, "--file", "x.log"), "")
	if err != nil {
		t.Fatal(err)
	}
	if so := cfg.SourceOptions(); so.Source != ingest.SourceFile || so.Path != "x.log" {
		t.Fatalf("file should win over stdin: %+v", so)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"key below none":  func(c *Config) { c.KeyColumn = -2 },
		"zero read limit": func(c *Config) { c.ReadLimit = 0 },
		"zero demo keys":  func(c *Config) { c.DemoKeys = 0 },
		"key too large":   func(c *Config) { c.KeyColumn = 125 },
		"empty record":    func(c *Config) { c.RecordDelimiter = "" },
		"empty field":     func(c *Config) { c.FieldDelimiter = "" },
		"zero interval":   func(c *Config) { c.Interval = 0 },
		"bad strategy":    func(c *Config) { c.Strategy = "csv" },
		"bad theme":       func(c *Config) { c.Theme = "pink" },
		"follow no file":  func(c *Config) { c.Follow = true },
		"bad demo format": func(c *Config) { c.Demo = "xml" },
		"bad export":      func(c *Config) { c.ExportFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err=%v", err)
			}
		})
	}
	c := Default()
	c.KeyColumn = 124
	if err := c.Validate(); err != nil {
		t.Fatalf("key 124 should be valid: %v", err)
	}
	c.KeyColumn = parse.NoKey
	if err := c.Validate(); err != nil {
		t.Fatalf("keyless should be valid: %v", err)
	}
}

func TestKeylessAndDemoKnobs(t *testing.T) {
	isolate(t, false)
	t.Setenv("LOGDAM_KEY_COLUMN", "none")
	cfg, err := Load(flagsFor(t, "--demo", "syslog", "--demo-keys", "3", "--read-limit", "4096"), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.KeyColumn != parse.NoKey {
		t.Fatalf("key column %d", cfg.KeyColumn)
	}
	so := cfg.SourceOptions()
	if so.DemoKeys != 3 || so.DemoFormat != "syslog" {
		t.Fatalf("demo options %+v", so)
	}
	pc, err := parse.New(parse.LabelDefault, nil, cfg.ParseOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, keyed := pc.Metadata(nil).Key(); keyed {
		t.Fatalf("Default with key none should not be keyed")
	}

	cfg, err = Load(flagsFor(t, "--file", "x.log", "--key-column=-1"), "")
	if err != nil {
		t.Fatal(err)
	}
	if so := cfg.SourceOptions(); so.ReadLimit != ingest.DefaultReadLimit || cfg.KeyColumn != parse.NoKey {
		t.Fatalf("file options %+v key %d", so, cfg.KeyColumn)
	}
}

func TestBadEnvValue(t *testing.T) {
	isolate(t, false)
	t.Setenv("LOGDAM_BELL", "sometimes")
	if _, err := Load(nil, ""); err == nil {
		t.Fatalf("expected error for bad env bool")
	}
}

func TestUnescape(t *testing.T) {
	cases := map[string]string{`\t`: "\t", `\n`: "\n", `,`: ",", `\|`: `\|`, `"`: `"`}
	for in, want := range cases {
		if got := Unescape(in); got != want {
			t.Errorf("Unescape(%q)=%q want %q", in, got, want)
		}
	}
}
