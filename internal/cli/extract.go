package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"rpy-localizer/internal/config"
	"rpy-localizer/internal/memory"
	"rpy-localizer/internal/script"
	"rpy-localizer/internal/scriptfile"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// extractRow is one editable unit as exported by extract. Line is 1-based
// and names the line an edit rewrites.
type extractRow struct {
	Line       int    `json:"line"`
	Kind       string `json:"kind"`
	Scope      string `json:"scope,omitempty"`
	Speaker    string `json:"speaker,omitempty"`
	Original   string `json:"original,omitempty"`
	Text       string `json:"text"`
	Breakpoint bool   `json:"breakpoint,omitempty"`
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the editable text of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modeName, _ := cmd.Flags().GetString("mode")
			format, _ := cmd.Flags().GetString("format")
			return runExtract(config.Load(), args[0], modeName, format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("mode", "direct", "Parse mode: direct or translate")
	cmd.Flags().String("format", "tsv", "Output format: tsv or json")

	return cmd
}

func runExtract(cfg *config.Config, path, modeName, format string, out io.Writer) error {
	mode, err := parseMode(modeName)
	if err != nil {
		return err
	}

	doc, err := scriptfile.Open(path, newParser(cfg), mode)
	if err != nil {
		return err
	}
	rows := extractRows(doc.Result)

	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if rows == nil {
			rows = []extractRow{}
		}
		if err := encoder.Encode(rows); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case "tsv":
		if err := writeRowsTSV(out, rows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q: want tsv or json", format)
	}

	log.Debug().Str("file", path).Str("mode", mode.String()).Int("rows", len(rows)).Msg("Extracted script")
	return nil
}

func extractRows(res *script.Result) []extractRow {
	var rows []extractRow
	for _, it := range res.Items {
		rows = append(rows, extractRow{
			Line:       it.Line + 1,
			Kind:       it.Kind.String(),
			Scope:      it.Scope,
			Speaker:    it.Speaker,
			Text:       it.Text,
			Breakpoint: it.Breakpoint,
		})
	}
	for _, p := range res.Pairs {
		rows = append(rows, extractRow{
			Line:       p.TranslatedLine + 1,
			Kind:       p.Kind.String(),
			Scope:      p.Scope,
			Speaker:    p.SpeakerTranslated,
			Original:   p.OriginalText,
			Text:       p.TranslatedText,
			Breakpoint: p.Breakpoint,
		})
	}
	return rows
}

// writeRowsTSV writes rows with the line first and the text last, the
// layout apply reads back.
func writeRowsTSV(w io.Writer, rows []extractRow) error {
	if _, err := fmt.Fprintln(w, "line\tkind\tscope\tspeaker\toriginal\ttext"); err != nil {
		return fmt.Errorf("write TSV header: %w", err)
	}
	for _, r := range rows {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Line,
			r.Kind,
			r.Scope,
			r.Speaker,
			memory.EscapeTSV(r.Original),
			memory.EscapeTSV(r.Text),
		)
		if err != nil {
			return fmt.Errorf("write TSV row: %w", err)
		}
	}
	return nil
}

// edit is one text replacement read from an apply file.
type edit struct {
	Line int // 0-based
	Text string
}

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <file> <edits.tsv>",
		Short: "Write edited text back into a script",
		Long: `Reads tab-separated rows whose first column is a 1-based line number and
whose last column is the new text, as produced by extract. Each row replaces
the text of the unit that rewrites that line. The script is saved only when
every edit applies and every line rebuilds.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			modeName, _ := cmd.Flags().GetString("mode")
			output, _ := cmd.Flags().GetString("output")
			return runApply(config.Load(), args[0], args[1], modeName, output)
		},
	}

	cmd.Flags().String("mode", "direct", "Parse mode: direct or translate")
	cmd.Flags().String("output", "", "Write to this path instead of overwriting the script")

	return cmd
}

func runApply(cfg *config.Config, path, editsPath, modeName, output string) error {
	mode, err := parseMode(modeName)
	if err != nil {
		return err
	}

	f, err := os.Open(editsPath)
	if err != nil {
		return fmt.Errorf("open edits: %w", err)
	}
	defer f.Close()

	edits, err := readEdits(f)
	if err != nil {
		return err
	}

	doc, err := scriptfile.Open(path, newParser(cfg), mode)
	if err != nil {
		return err
	}
	for _, e := range edits {
		if err := doc.Edit(e.Line, e.Text); err != nil {
			return err
		}
	}

	if output == "" {
		output = path
	}
	if err := doc.SaveAs(output); err != nil {
		return err
	}

	log.Info().Str("file", output).Int("edits", len(edits)).Msg("Applied edits")
	return nil
}

// readEdits parses apply rows. A header row whose first column is "line"
// and blank lines are skipped.
func readEdits(r io.Reader) ([]edit, error) {
	var edits []edit
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		row := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(row) == "" {
			continue
		}
		fields := strings.Split(row, "\t")
		if n == 1 && fields[0] == "line" {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("edits row %d: want at least 2 columns, got %d", n, len(fields))
		}
		line, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || line < 1 {
			return nil, fmt.Errorf("edits row %d: invalid line number %q", n, fields[0])
		}
		edits = append(edits, edit{
			Line: line - 1,
			Text: memory.UnescapeTSV(fields[len(fields)-1]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edits: %w", err)
	}
	return edits, nil
}
