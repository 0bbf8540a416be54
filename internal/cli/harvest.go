package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rpy-localizer/internal/config"
	"rpy-localizer/internal/filewalker"
	"rpy-localizer/internal/memory"
	"rpy-localizer/internal/script"
	"rpy-localizer/internal/scriptfile"
	"rpy-localizer/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func harvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest <directory>",
		Short: "Store the translation pairs of a project in the translation memory",
		Long: `Parses every script under the directory in translate mode and upserts
each original/translation pair into the PostgreSQL translation memory.
Pairs are keyed by language and original text, so re-running only updates
changed translations. With --export the memory is also written to a TSV or
JSON file, chosen by the file extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportPath, _ := cmd.Flags().GetString("export")
			language, _ := cmd.Flags().GetString("language")
			return runHarvest(args[0], exportPath, language)
		},
	}

	cmd.Flags().String("export", "", "Export the memory to this .tsv or .json file")
	cmd.Flags().String("language", "", "Only export entries of this language")

	return cmd
}

func runHarvest(dir, exportPath, language string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	entries, err := collectEntries(ctx, cfg, dir)
	if err != nil {
		return err
	}

	pgPool, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	store := memory.NewStore(pgPool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	written, err := store.Upsert(ctx, entries)
	if err != nil {
		return err
	}
	log.Info().Int("pairs", len(entries)).Int("written", written).Msg("Harvest complete")

	if exportPath == "" {
		return nil
	}
	stored, err := store.All(ctx, language)
	if err != nil {
		return err
	}
	return exportEntries(exportPath, stored)
}

// collectEntries parses every script of a project in translate mode and
// returns the pairs found as memory entries.
func collectEntries(ctx context.Context, cfg *config.Config, dir string) ([]memory.Entry, error) {
	walker := filewalker.NewWalker(cfg.ScriptExtensions...)
	files, err := walker.Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	p := newParser(cfg)
	pool := worker.NewPool(cfg.WorkerCount, func(_ context.Context, e filewalker.FileEntry) ([]memory.Entry, error) {
		doc, err := scriptfile.Open(e.Path, p, script.ModeTranslate)
		if err != nil {
			return nil, err
		}
		for _, d := range doc.Result.Diagnostics {
			log.Warn().Str("file", e.Rel).Int("line", d.Line+1).Msg(d.Message)
		}
		return memory.EntriesFromPairs(e.Rel, doc.Result.Pairs), nil
	})

	var entries []memory.Entry
	for _, task := range pool.Execute(ctx, files) {
		if task.Err != nil {
			return nil, fmt.Errorf("harvest %s: %w", task.Input.Rel, task.Err)
		}
		entries = append(entries, task.Result...)
	}
	return entries, nil
}

func exportEntries(path string, entries []memory.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = memory.WriteJSON(f, entries)
	default:
		err = memory.WriteTSV(f, entries)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("entries", len(entries)).Msg("Exported translation memory")
	return nil
}
