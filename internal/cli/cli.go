package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rpy-localizer/internal/config"
	"rpy-localizer/internal/script"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:          "rpy-localizer",
		Short:        "Extract, edit and harvest translatable text in Ren'Py scripts",
		Long:         "A localization tool for Ren'Py visual novel scripts: extracts editable text, writes edits back byte-exact and keeps a translation memory.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(harvestCmd())
	rootCmd.AddCommand(recallCmd())
	rootCmd.AddCommand(graphCmd())

	return rootCmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func newParser(cfg *config.Config) *script.Parser {
	return script.NewParser(script.WithMarker(cfg.BreakpointMarker))
}

func parseMode(s string) (script.Mode, error) {
	switch strings.ToLower(s) {
	case "direct", "":
		return script.ModeDirect, nil
	case "translate":
		return script.ModeTranslate, nil
	}
	return script.ModeDirect, fmt.Errorf("unknown mode %q: want direct or translate", s)
}

// modeFor guesses the parse mode from a project-relative path: files under
// a tl/ directory are translation files.
func modeFor(rel string) script.Mode {
	if strings.HasPrefix(rel, "tl/") || strings.Contains(rel, "/tl/") {
		return script.ModeTranslate
	}
	return script.ModeDirect
}

// openPostgres connects the translation memory pool.
func openPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pgPool, nil
}

// openNeo4j connects the scene graph driver.
func openNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}
