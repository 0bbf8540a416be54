package scriptfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"rpy-localizer/internal/script"

	"github.com/rs/zerolog/log"
)

// ErrNoUnit is returned when an edit targets a line with no editable text.
var ErrNoUnit = errors.New("no editable text on line")

const bom = "\uFEFF"

// format remembers the byte-level conventions of the loaded file.
type format struct {
	bom             bool
	crlf            bool
	trailingNewline bool
}

// Document is a parsed script file that can be edited and saved.
type Document struct {
	Path   string
	Mode   script.Mode
	Result *script.Result

	parser *script.Parser
	format format
}

// Open reads and parses a script file.
func Open(path string, p *script.Parser, mode script.Mode) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}
	doc := Decode(data, p, mode)
	doc.Path = path
	return doc, nil
}

// Decode parses raw file content.
func Decode(data []byte, p *script.Parser, mode script.Mode) *Document {
	if p == nil {
		p = script.NewParser()
	}
	lines, f := splitLines(string(data))
	return &Document{
		Mode:   mode,
		Result: p.Parse(lines, mode),
		parser: p,
		format: f,
	}
}

func splitLines(raw string) ([]string, format) {
	var f format
	if after, ok := strings.CutPrefix(raw, bom); ok {
		f.bom = true
		raw = after
	}
	if strings.Contains(raw, "\r\n") {
		f.crlf = true
		raw = strings.ReplaceAll(raw, "\r\n", "\n")
	}
	if raw == "" {
		return nil, f
	}
	if strings.HasSuffix(raw, "\n") {
		f.trailingNewline = true
		raw = strings.TrimSuffix(raw, "\n")
	}
	return strings.Split(raw, "\n"), f
}

// Edit replaces the text of the unit that rewrites line.
func (d *Document) Edit(line int, text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("edit line %d: text must be a single line", line+1)
	}
	if err := script.CheckText(text); err != nil {
		return fmt.Errorf("edit line %d: %w", line+1, err)
	}
	for _, it := range d.Result.Items {
		if it.Line == line {
			it.Text = text
			return nil
		}
	}
	for _, p := range d.Result.Pairs {
		if p.TranslatedLine == line {
			p.TranslatedText = text
			return nil
		}
	}
	return fmt.Errorf("edit line %d: %w", line+1, ErrNoUnit)
}

// Lines renders the current content, markers included.
func (d *Document) Lines() ([]string, error) {
	return script.Render(d.Result.Lines, d.Result.Units(), d.Result.Breakpoints, d.parser.Marker())
}

// InsertLines inserts raw lines before index at and reparses. Breakpoints
// stay attached to the lines they were set on.
func (d *Document) InsertLines(at int, lines ...string) error {
	cur, err := d.plainLines()
	if err != nil {
		return err
	}
	if at < 0 || at > len(cur) {
		return fmt.Errorf("insert at %d: out of range (%d lines)", at, len(cur))
	}
	next := make([]string, 0, len(cur)+len(lines))
	next = append(next, cur[:at]...)
	next = append(next, lines...)
	next = append(next, cur[at:]...)

	d.Result.Breakpoints.InsertLines(at, len(lines))
	d.reparse(next)
	return nil
}

// DeleteLines removes n lines starting at index at and reparses.
func (d *Document) DeleteLines(at, n int) error {
	cur, err := d.plainLines()
	if err != nil {
		return err
	}
	if at < 0 || n < 0 || at+n > len(cur) {
		return fmt.Errorf("delete %d lines at %d: out of range (%d lines)", n, at, len(cur))
	}
	next := append(append([]string{}, cur[:at]...), cur[at+n:]...)

	d.Result.Breakpoints.DeleteLines(at, n)
	d.reparse(next)
	return nil
}

// ToggleBreakpoint flips the marker on line.
func (d *Document) ToggleBreakpoint(line int) bool {
	return d.Result.Breakpoints.Toggle(line)
}

func (d *Document) plainLines() ([]string, error) {
	lines, err := script.Render(d.Result.Lines, d.Result.Units(), nil, d.parser.Marker())
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return lines, nil
}

func (d *Document) reparse(clean []string) {
	marked := script.AttachMarkers(clean, d.Result.Breakpoints, d.parser.Marker())
	d.Result = d.parser.Parse(marked, d.Mode)
}

// Encode returns the file bytes with the original BOM and line endings.
func (d *Document) Encode() ([]byte, error) {
	lines, err := d.Lines()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if d.format.bom {
		buf.WriteString(bom)
	}
	eol := "\n"
	if d.format.crlf {
		eol = "\r\n"
	}
	buf.WriteString(strings.Join(lines, eol))
	if d.format.trailingNewline {
		buf.WriteString(eol)
	}
	return buf.Bytes(), nil
}

// Save writes the document back to Path. Nothing is written when any line
// fails to rebuild.
func (d *Document) Save() error {
	if d.Path == "" {
		return errors.New("save document: no path")
	}
	return d.SaveAs(d.Path)
}

// SaveAs writes the document to path.
func (d *Document) SaveAs(path string) error {
	data, err := d.Encode()
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write script file: %w", err)
	}
	log.Debug().
		Str("path", path).
		Int("lines", len(d.Result.Lines)).
		Int("breakpoints", d.Result.Breakpoints.Len()).
		Msg("Script saved")
	return nil
}
