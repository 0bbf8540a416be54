package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"rpy-localizer/internal/config"
	"rpy-localizer/internal/filewalker"
	"rpy-localizer/internal/interpolation"
	"rpy-localizer/internal/script"
	"rpy-localizer/internal/scriptfile"
	"rpy-localizer/internal/textutil"
	"rpy-localizer/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errVerifyFailed is returned by scan --verify when any file does not
// survive an unedited save.
var errVerifyFailed = errors.New("round-trip verification failed")

// fileReport summarises one parsed script.
type fileReport struct {
	Rel          string
	Mode         script.Mode
	Units        int
	Breakpoints  int
	Diagnostics  []script.Diagnostic
	Placeholders []string
	Violations   []string
}

func scanCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Parse every script in a project and report what was found",
		Long: `Parses every script file under the directory in a worker pool.
Files under tl/ are parsed in translate mode, all others in direct mode.
With --verify every extracted line is rebuilt and every file re-encoded,
and any difference from the source fails the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runScan(ctx, config.Load(), args[0], verify, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the round-trip identity of every file")

	return cmd
}

func runScan(ctx context.Context, cfg *config.Config, dir string, verify bool, out io.Writer) error {
	walker := filewalker.NewWalker(cfg.ScriptExtensions...)
	entries, err := walker.Walk(dir)
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}

	p := newParser(cfg)
	pool := worker.NewPool(cfg.WorkerCount, func(_ context.Context, e filewalker.FileEntry) (*fileReport, error) {
		return scanFile(p, e, verify)
	})
	tasks := pool.Execute(ctx, entries)

	var (
		failed     int
		violations int
		units      int
	)
	for _, task := range tasks {
		if task.Err != nil {
			failed++
			log.Error().Err(task.Err).Str("file", task.Input.Rel).Msg("Failed to scan file")
			continue
		}
		r := task.Result
		units += r.Units
		fmt.Fprintf(out, "%-9s %5d units %3d breakpoints  %s\n", r.Mode, r.Units, r.Breakpoints, r.Rel)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(out, "  warning: %s:%d: %s\n", r.Rel, d.Line+1, d.Message)
		}
		for _, m := range r.Placeholders {
			fmt.Fprintf(out, "  placeholder: %s:%s\n", r.Rel, m)
		}
		for _, v := range r.Violations {
			violations++
			fmt.Fprintf(out, "  mismatch: %s: %s\n", r.Rel, v)
		}
	}

	log.Info().
		Int("files", len(entries)).
		Int("units", units).
		Int("failed", failed).
		Int("violations", violations).
		Msg("Scan complete")

	if failed > 0 {
		return fmt.Errorf("scan %d files: %d could not be read", len(entries), failed)
	}
	if verify && violations > 0 {
		return fmt.Errorf("%w: %d mismatches", errVerifyFailed, violations)
	}
	return nil
}

func scanFile(p *script.Parser, e filewalker.FileEntry, verify bool) (*fileReport, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}

	mode := modeFor(e.Rel)
	doc := scriptfile.Decode(data, p, mode)
	report := &fileReport{
		Rel:         e.Rel,
		Mode:        mode,
		Units:       len(doc.Result.Units()),
		Breakpoints: doc.Result.Breakpoints.Len(),
		Diagnostics: doc.Result.Diagnostics,
	}
	report.Placeholders = checkPlaceholders(doc.Result.Pairs)
	if verify {
		report.Violations = verifyDocument(p, doc, data)
	}
	return report, nil
}

// checkPlaceholders compares the interpolations and text tags of every
// pair's original and translation.
func checkPlaceholders(pairs []*script.Pair) []string {
	var out []string
	for _, p := range pairs {
		missing, extra := interpolation.Compare(p.OriginalText, p.TranslatedText)
		if len(missing) == 0 && len(extra) == 0 {
			continue
		}
		msg := fmt.Sprintf("%d:", p.TranslatedLine+1)
		if len(missing) > 0 {
			msg += " missing " + strings.Join(missing, " ")
		}
		if len(extra) > 0 {
			msg += " unexpected " + strings.Join(extra, " ")
		}
		out = append(out, msg)
	}
	return out
}

// verifyDocument rebuilds every unit of an unedited document and re-encodes
// it, returning a description of each difference from the source. Marker
// spacing is normalised on save and is not reported.
func verifyDocument(p *script.Parser, doc *scriptfile.Document, data []byte) []string {
	var violations []string
	for _, u := range doc.Result.Units() {
		line := u.TargetLine()
		got, err := u.Rebuild()
		if err != nil {
			violations = append(violations, err.Error())
			continue
		}
		if want := doc.Result.Lines[line]; got != want {
			violations = append(violations, fmt.Sprintf("line %d: rebuilt %q, source %q",
				line+1, textutil.Truncate(got, 60), textutil.Truncate(want, 60)))
		}
	}

	encoded, err := doc.Encode()
	if err != nil {
		return append(violations, err.Error())
	}
	if bytes.Equal(encoded, data) {
		return violations
	}
	again := scriptfile.Decode(encoded, p, doc.Mode)
	if !slices.Equal(again.Result.Lines, doc.Result.Lines) ||
		!slices.Equal(again.Result.Breakpoints.Sorted(), doc.Result.Breakpoints.Sorted()) {
		violations = append(violations, "re-encoded file differs from source")
	}
	return violations
}
