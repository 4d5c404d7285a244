package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	visio "github.com/Therealkorris/MCP"
	"github.com/Therealkorris/MCP/internal/config"
	"github.com/Therealkorris/MCP/internal/logging"
	"github.com/Therealkorris/MCP/pkg/adapters/httpexec"
	redisadapter "github.com/Therealkorris/MCP/pkg/adapters/redis"
)

var rootCmd = &cobra.Command{
	Use:   "visio-mcp",
	Short: "Bridge between AI agents and a Visio automation host",
	Long: `visio-mcp translates agent-friendly diagram commands into calls against
a privileged Visio automation host, tracking shape identities per session so
agents can keep referring to shapes by small stable IDs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return logging.New(level)
}

// buildBridge wires a bridge from configuration: HTTP executor towards the
// host, optional Redis persistence and locking, optional local catalog.
func buildBridge(cfg *config.Config, logger *slog.Logger, extra ...visio.Option) (*visio.Bridge, error) {
	opts := []visio.Option{
		visio.WithExecutor(httpexec.New(cfg.Relay.URL)),
		visio.WithTimeout(cfg.Relay.Timeout),
		visio.WithRetryReads(cfg.Relay.RetryReads),
		visio.WithLogger(logger),
	}

	if cfg.Redis.Address != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		var storeOpts []redisadapter.Option
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisadapter.WithTTL(cfg.Redis.TTL))
		}
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redisadapter.WithPrefix(cfg.Redis.Prefix))
		}
		opts = append(opts,
			visio.WithRegistryStore(redisadapter.NewFromClient(client, storeOpts...)),
			visio.WithDistributedLocker(redisadapter.NewLocker(client, cfg.Redis.Prefix)),
		)
	}

	if cfg.Stencils.CatalogDir != "" {
		opts = append(opts, visio.WithCatalogDir(cfg.Stencils.CatalogDir))
	}
	if len(cfg.Stencils.SearchPaths) > 0 {
		opts = append(opts, visio.WithSearchPaths(cfg.Stencils.SearchPaths))
	}

	return visio.New(append(opts, extra...)...)
}
