package main

import (
	"github.com/spf13/cobra"

	"github.com/tinywebd/tinywebd/internal/config"
	"github.com/tinywebd/tinywebd/internal/logging"
	"github.com/tinywebd/tinywebd/internal/server"
)

// version is overridable at build time via -ldflags.
var version = "0.1.0"

var configDir string

var rootCmd = &cobra.Command{
	Use:   "tinywebd",
	Short: "tinywebd serves one HTTP GET per connection from a local document root",
	Long: `tinywebd is a deliberately small web server: it accepts a TCP connection,
reads one GET request, serves a file from the document root (substituting the
date and server-name tokens in text resources), and closes the connection.
Missing text resources fall back to the 404 page in the fallback directory;
missing images fall back to the same-named file there.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.SetVersionTemplate("tinywebd version {{.Version}}\n")

	flags := rootCmd.Flags()
	flags.StringVar(&configDir, "config", "", "directory containing tinywebd.yaml")
	flags.String("listen", config.DefaultListen, "TCP listen address")
	flags.String("root", config.DefaultDocRoot, "document root directory")
	flags.String("fallback-dir", config.DefaultFallbackDir, "directory holding the 404 page and image substitutes")
	flags.String("server-name", config.DefaultServerName, "server identification string")
	flags.Bool("restrict-traversal", false, "reject request paths that escape the document root")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, or error")
	flags.String("log-format", config.DefaultLogFormat, "log format: text or json")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	srv := &server.Server{
		Addr:   cfg.Listen,
		Worker: server.NewWorker(cfg, logger),
		Logger: logger,
	}
	logger.Info("starting",
		"root", cfg.DocRoot,
		"fallback_dir", cfg.FallbackDir,
		"restrict_traversal", cfg.RestrictTraversal)
	return srv.ListenAndServe()
}
