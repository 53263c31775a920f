package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/spotsize/internal/config"
	"github.com/ironsheep/spotsize/internal/imaging"
	"github.com/ironsheep/spotsize/internal/logger"
	"github.com/ironsheep/spotsize/internal/metrics"
	"github.com/ironsheep/spotsize/internal/server"
	"github.com/ironsheep/spotsize/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("spotsize-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("spotsize-mcp - MCP server for spot-test droplet sizing")
			fmt.Println()
			fmt.Println("Usage: spotsize-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SPOTSIZE_CONFIG=path         YAML configuration file")
			fmt.Println("  SPOTSIZE_LOG_LEVEL=debug     Enable debug logging (info, debug, trace)")
			fmt.Println("  SPOTSIZE_S3_REGION           Region for s3:// scan locations")
			fmt.Println("  SPOTSIZE_S3_ENDPOINT         S3-compatible endpoint URL")
			fmt.Println("  SPOTSIZE_S3_PATH_STYLE=true  Use path-style S3 addressing")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Logging goes to stderr (stdout is for MCP protocol)
	log := logger.New(logger.WithLevel(logger.FromEnv(logger.LevelInfo)))

	cfg := config.Default()
	if path := os.Getenv("SPOTSIZE_CONFIG"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			log.Fatal("%v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration: %v", err)
	}
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	log.Debug("Spot MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := source.NewRouter()
	s3src, err := source.NewS3(ctx, source.S3Config{
		Region:    cfg.Source.S3.Region,
		Endpoint:  cfg.Source.S3.Endpoint,
		PathStyle: cfg.Source.S3.PathStyle,
	})
	if err != nil {
		log.Info("s3:// locations disabled: %v", err)
	} else {
		router.Handle("s3", s3src)
	}

	rec := metrics.New()
	srv := server.New(
		server.WithConfig(cfg),
		server.WithLoader(imaging.NewLoader(router)),
		server.WithLogger(log),
		server.WithMetrics(rec),
		server.WithVersion(Version),
	)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("Server error: %v", err)
	}

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Info("failed to write metrics: %v", err)
		}
	}
}
