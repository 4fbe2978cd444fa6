// Package config parses process configuration from the environment and flags.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration.
type Config struct {
	HTTPAddr string `env:"FARKLE_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"FARKLE_GRPC_ADDR" envDefault:":8081"`
	// DBPath is the sqlite file; empty keeps everything in memory.
	DBPath        string        `env:"FARKLE_DB_PATH"`
	RulesDir      string        `env:"FARKLE_RULES_DIR" envDefault:"config"`
	NATSURL       string        `env:"FARKLE_NATS_URL"`
	WatchInterval time.Duration `env:"FARKLE_RULES_WATCH_INTERVAL" envDefault:"5s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfig parses environment and then flags into a Config. Flags win.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path (empty uses memory)")
	fs.StringVar(&cfg.RulesDir, "rules", cfg.RulesDir, "directory holding rules/*.yaml")
	fs.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "NATS URL for result events (empty disables)")
	fs.DurationVar(&cfg.WatchInterval, "watch", cfg.WatchInterval, "rules reload poll interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}
	return cfg, nil
}
