package cli

import (
	"context"
	"fmt"
	"io"

	"rpy-localizer/internal/config"
	"rpy-localizer/internal/filewalker"
	"rpy-localizer/internal/graph"
	"rpy-localizer/internal/script"
	"rpy-localizer/internal/scriptfile"
	"rpy-localizer/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <directory>",
		Short: "Load labels, speakers and lines of a project into Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			return runGraph(args[0], top, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int("top", 10, "Number of speakers to list after loading")

	return cmd
}

type fileRecords struct {
	Rel     string
	Records []graph.LineRecord
}

func runGraph(dir string, top int, out io.Writer) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	walker := filewalker.NewWalker(cfg.ScriptExtensions...)
	files, err := walker.Walk(dir)
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}

	p := newParser(cfg)
	pool := worker.NewPool(cfg.WorkerCount, func(_ context.Context, e filewalker.FileEntry) (fileRecords, error) {
		doc, err := scriptfile.Open(e.Path, p, script.ModeDirect)
		if err != nil {
			return fileRecords{}, err
		}
		return fileRecords{Rel: e.Rel, Records: graph.RecordsFromItems(e.Rel, doc.Result.Items)}, nil
	})
	tasks := pool.Execute(ctx, files)

	driver, err := openNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	builder := graph.NewSceneBuilder(driver)
	if err := builder.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	lines := 0
	for _, task := range tasks {
		if task.Err != nil {
			return fmt.Errorf("parse %s: %w", task.Input.Rel, task.Err)
		}
		if err := builder.AddFile(ctx, task.Result.Rel, task.Result.Records); err != nil {
			return err
		}
		lines += len(task.Result.Records)
	}
	log.Info().Int("files", len(files)).Int("lines", lines).Msg("Scene graph loaded")

	if top <= 0 {
		return nil
	}
	stats, err := graph.NewSceneQuerier(driver).Speakers(ctx, top)
	if err != nil {
		return err
	}
	for _, s := range stats {
		fmt.Fprintf(out, "%-20s %6d lines in %d scopes\n", s.Tag, s.Lines, s.Scopes)
	}
	return nil
}
