package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/hpungsan/passforge/internal/config"
	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/mcp"
	"github.com/hpungsan/passforge/internal/metrics"
	"github.com/hpungsan/passforge/internal/ops"
	"github.com/hpungsan/passforge/internal/random"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"generate": true, "analyze": true, "status": true,
	"preset": true, "serve": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  passforge
  ---------
  Secure password generator

  Usage: passforge <command> [options]
         passforge --help

  MCP server mode requires piped input.`)
}

// newLogger returns the process logger. Stdout carries command output and
// the MCP protocol, so logs always go to stderr.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// loadConfig reads ~/.passforge/config.json, the nearest repo .passforge
// config, then .env files and the process environment.
func loadConfig(baseDir string) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not determine working directory: %w", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env, err := config.ReadEnv(filepath.Join(baseDir, ".env"), ".env")
	if err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := config.ApplyEnv(cfg, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDeps wires the database, random source, generator, and metrics.
func newDeps(database *sql.DB, cfg *config.Config, logger *slog.Logger) ops.Deps {
	rng := random.Default(logger)
	return ops.Deps{
		DB:        database,
		Config:    cfg,
		Generator: generator.New(rng, generator.WithConcurrency(cfg.BatchConcurrency)),
		Metrics:   metrics.New(),
		Logger:    logger,
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(ops.Deps{})
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}

	baseDir := filepath.Join(homeDir, ".passforge")
	logger := newLogger()

	cfg, err := loadConfig(baseDir)
	if err != nil {
		fail("%v", err)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fail("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	deps := newDeps(database, cfg, logger)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(deps)
		if err := app.Run(os.Args); err != nil {
			database.Close()
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'passforge --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(deps, Version); err != nil {
		database.Close()
		fail("%v", err)
	}
}
