// Package config loads fscoin settings: built-in defaults, then YAML files in
// order, then FSCOIN_* environment variables.
package config

import (
	"io"
	"time"

	"github.com/xtding233/fscoin/internal/coin"
	"github.com/xtding233/fscoin/internal/kvstore"
	"github.com/xtding233/fscoin/internal/logging"
	"github.com/xtding233/fscoin/internal/tone"
)

// Config mirrors the YAML schema.
type Config struct {
	Version string        `yaml:"version,omitempty"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Random  RandomConfig  `yaml:"random"`
	Coin    CoinConfig    `yaml:"coin"`
	Tone    ToneConfig    `yaml:"tone"`
	IDs     IDConfig      `yaml:"ids"`
}

type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" env:"FSCOIN_HTTP_ADDR"`
	GRPCAddr string `yaml:"grpc_addr" env:"FSCOIN_GRPC_ADDR"` // empty disables the health endpoint
	// caps /integers and /simulate so one request can't pin a core
	MaxQuantity int `yaml:"max_quantity" env:"FSCOIN_MAX_QUANTITY"`
	MaxRuns     int `yaml:"max_runs" env:"FSCOIN_MAX_RUNS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"FSCOIN_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FSCOIN_LOG_FORMAT"` // logfmt, json
}

type StorageConfig struct {
	Backend string `yaml:"backend" env:"FSCOIN_STORAGE_BACKEND"` // memory, badger, sqlite
	Path    string `yaml:"path" env:"FSCOIN_STORAGE_PATH"`
}

type RandomConfig struct {
	// Seed > 0 switches to the replayable PCG source. 0 means crypto/rand.
	Seed uint64 `yaml:"seed" env:"FSCOIN_SEED"`
}

type CoinConfig struct {
	MaxTrials int64 `yaml:"max_trials" env:"FSCOIN_MAX_TRIALS"`
	SampleMax int64 `yaml:"sample_max" env:"FSCOIN_SAMPLE_MAX"`
}

type ToneConfig struct {
	Step       time.Duration `yaml:"step" env:"FSCOIN_TONE_STEP"`
	SampleRate int           `yaml:"sample_rate" env:"FSCOIN_TONE_SAMPLE_RATE"`
}

type IDConfig struct {
	Persist bool   `yaml:"persist" env:"FSCOIN_IDS_PERSIST"`
	Key     string `yaml:"key" env:"FSCOIN_IDS_KEY"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:    ":8080",
			GRPCAddr:    ":9090",
			MaxQuantity: 10000,
			MaxRuns:     100000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "logfmt",
		},
		Storage: StorageConfig{
			Backend: string(kvstore.KindMemory),
		},
		Coin: CoinConfig{
			MaxTrials: coin.DefaultMaxTrials,
			SampleMax: coin.DefaultSampleMax,
		},
		Tone: ToneConfig{
			Step:       tone.DefaultStep,
			SampleRate: tone.DefaultSampleRate,
		},
		IDs: IDConfig{
			Key: "count",
		},
	}
}

// CoinParams converts the coin section.
func (c Config) CoinParams() coin.Params {
	return coin.Params{MaxTrials: c.Coin.MaxTrials, SampleMax: c.Coin.SampleMax}
}

// Logger builds the logger described by the log section, writing to w.
func (c Config) Logger(w io.Writer) (*logging.Logger, error) {
	lvl, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	f, err := logging.ParseFormat(c.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(w, f, lvl), nil
}
