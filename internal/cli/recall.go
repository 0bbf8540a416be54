package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"rpy-localizer/internal/config"
	"rpy-localizer/internal/memory"
	"rpy-localizer/internal/script"
	"rpy-localizer/internal/scriptfile"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// translationSource looks up a remembered translation.
type translationSource interface {
	Lookup(ctx context.Context, language, source string) (string, bool, error)
}

func recallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <file>",
		Short: "Fill untranslated lines of a translation file from the translation memory",
		Long: `Parses a translation file and, for every pair whose translation is empty
or still equal to the original, looks the original up in the translation
memory. Found translations are written back into the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runRecall(args[0], dryRun, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Bool("dry-run", false, "List the lines that would be filled without saving")

	return cmd
}

func runRecall(path string, dryRun bool, out io.Writer) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	doc, err := scriptfile.Open(path, newParser(cfg), script.ModeTranslate)
	if err != nil {
		return err
	}

	pgPool, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	store := memory.NewStore(pgPool)
	if err := store.Preload(ctx); err != nil {
		return err
	}

	filled, err := recallPairs(ctx, store, doc.Result.Pairs, out)
	if err != nil {
		return err
	}
	if filled == 0 || dryRun {
		log.Info().Str("file", path).Int("filled", filled).Bool("dry_run", dryRun).Msg("Recall complete")
		return nil
	}

	if err := doc.Save(); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("filled", filled).Msg("Recall complete")
	return nil
}

// recallPairs replaces the translation of untranslated pairs with the
// remembered one and reports each change to out.
func recallPairs(ctx context.Context, src translationSource, pairs []*script.Pair, out io.Writer) (int, error) {
	filled := 0
	for _, p := range pairs {
		if !untranslated(p) {
			continue
		}
		text, ok, err := src.Lookup(ctx, p.Language, p.OriginalText)
		if err != nil {
			return filled, err
		}
		if !ok || text == p.TranslatedText {
			continue
		}
		p.TranslatedText = text
		filled++
		fmt.Fprintf(out, "%d\t%s\n", p.TranslatedLine+1, memory.EscapeTSV(text))
	}
	return filled, nil
}

func untranslated(p *script.Pair) bool {
	return strings.TrimSpace(p.TranslatedText) == "" || p.TranslatedText == p.OriginalText
}
