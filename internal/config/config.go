// Package config loads process settings from the environment and game
// tuning from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gopkg.in/yaml.v3"

	"skirmish/internal/domain/rules"
)

type Server struct {
	Addr         string `env:"SKIRMISH_ADDR" envDefault:":8080"`
	ObserverAddr string `env:"SKIRMISH_OBSERVER_ADDR" envDefault:":8081"`
	// DBDSN selects postgres; SQLitePath selects sqlite. With neither set
	// games live in memory only.
	DBDSN       string `env:"SKIRMISH_DB_DSN"`
	SQLitePath  string `env:"SKIRMISH_SQLITE_PATH"`
	DataDir     string `env:"SKIRMISH_DATA_DIR" envDefault:"./data"`
	TuningPath  string `env:"SKIRMISH_TUNING_PATH" envDefault:"./configs/tuning.yaml"`
	SchemasDir  string `env:"SKIRMISH_SCHEMAS_DIR" envDefault:"./schemas"`
	CORSOrigins string `env:"SKIRMISH_CORS_ORIGINS"`
	// DevMutator applies a rules mutator to every submission. Test servers
	// only.
	DevMutator         string `env:"SKIRMISH_DEV_MUTATOR"`
	LogLevel           string `env:"SKIRMISH_LOG_LEVEL" envDefault:"info"`
	TurnTimeoutSeconds int    `env:"SKIRMISH_TURN_TIMEOUT_SECONDS" envDefault:"0"`
}

func (s Server) TurnTimeout() time.Duration {
	if s.TurnTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TurnTimeoutSeconds) * time.Second
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TurnTimeoutSeconds < 0 {
		return Server{}, fmt.Errorf("SKIRMISH_TURN_TIMEOUT_SECONDS must not be negative: %d", cfg.TurnTimeoutSeconds)
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return Server{}, fmt.Errorf("unknown SKIRMISH_LOG_LEVEL %q", cfg.LogLevel)
	}
	if cfg.DevMutator != "" {
		if _, ok := rules.LookupMutator(cfg.DevMutator); !ok {
			return Server{}, fmt.Errorf("unknown SKIRMISH_DEV_MUTATOR %q (known: %v)", cfg.DevMutator, rules.MutatorNames())
		}
	}
	return cfg, nil
}

// LoadTuning reads path and fills every missing knob with its default. A
// missing file yields the defaults.
func LoadTuning(path string) (rules.Tuning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rules.DefaultTuning(), nil
		}
		return rules.Tuning{}, err
	}
	var t rules.Tuning
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return rules.Tuning{}, fmt.Errorf("decode tuning %s: %w", path, err)
	}
	return t.Normalize(), nil
}

// ApplyLogLevel sets the process-wide hlog level.
func ApplyLogLevel(level string) {
	if l, ok := parseLevel(level); ok {
		hlog.SetLevel(l)
	}
}

func parseLevel(level string) (hlog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return hlog.LevelDebug, true
	case "", "info":
		return hlog.LevelInfo, true
	case "warn":
		return hlog.LevelWarn, true
	case "error":
		return hlog.LevelError, true
	default:
		return hlog.LevelInfo, false
	}
}
