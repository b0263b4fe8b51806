// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/louisbranch/entropy.space/internal/platform/cmd"
	"github.com/louisbranch/entropy.space/internal/services/sampling/app"
	"github.com/louisbranch/entropy.space/internal/services/sampling/service"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath    string `env:"ENTROPY_SPACE_DB_PATH"       envDefault:"draws.db"`
	HTTPAddr  string `env:"ENTROPY_SPACE_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"ENTROPY_SPACE_MCP_TRANSPORT" envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the draw journal database")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the sampling MCP server with a SQLite-backed draw journal.
func Run(ctx context.Context, cfg Config) error {
	return cmd.RunWithTelemetry(ctx, cmd.ServiceMCP, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open draw journal: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close draw journal: %v", err)
			}
		}()

		sampler := app.NewSampler(store)
		return service.Run(ctx, sampler, service.Config{
			Transport: service.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
		})
	})
}
