// Package config loads the TOML run configuration cmd/lrgen reads at
// startup: processor options plus the file paths the CLI defaults to when
// the corresponding flag is not given. The format and library choice mirror
// tunaq's own TOML-backed config (internal/tqw, internal/game), which uses
// BurntSushi/toml for exactly the same "small struct, Unmarshal, done" shape.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the root of an lrgen.toml document.
type Config struct {
	// ForceLalr1 mirrors process.Options.ForceLalr1; kept as a plain bool
	// here rather than importing internal/process, since config must not
	// depend on the pipeline it configures.
	ForceLalr1 bool `toml:"force_lalr1"`

	GrammarPath string `toml:"grammar_path"`
	TablePath   string `toml:"table_path"`
	ReportPath  string `toml:"report_path"`
}

// Default returns the configuration used when no lrgen.toml is present.
func Default() Config {
	return Config{
		GrammarPath: "grammar.txt",
		TablePath:   "parser.tab",
		ReportPath:  "report.html",
	}
}

// Load reads and decodes a TOML config file at path. A missing file is not
// an error: it returns Default() unchanged, since the CLI is expected to
// work with no config file at all, driven purely by flags.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
