package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"rpy-localizer/internal/script"
	"rpy-localizer/internal/textutil"
)

// Entry is one original→translated pair harvested from a translation file.
type Entry struct {
	Hash           string `json:"hash" db:"hash"`
	Language       string `json:"language" db:"language"`
	Kind           string `json:"kind" db:"kind"`
	Speaker        string `json:"speaker,omitempty" db:"speaker"`
	SourceText     string `json:"source_text" db:"source_text"`
	TranslatedText string `json:"translated_text" db:"translated_text"`
	File           string `json:"file" db:"file"`
	Line           int    `json:"line" db:"line"`
}

// EntryHash keys an entry by language and source text.
func EntryHash(language, source string) string {
	return textutil.Hash(language, source)
}

// EntriesFromPairs converts parsed pairs into memory entries. Pairs with an
// empty translation are skipped.
func EntriesFromPairs(file string, pairs []*script.Pair) []Entry {
	entries := make([]Entry, 0, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p.TranslatedText) == "" {
			continue
		}
		entries = append(entries, Entry{
			Hash:           EntryHash(p.Language, p.OriginalText),
			Language:       p.Language,
			Kind:           p.Kind.String(),
			Speaker:        p.SpeakerOriginal,
			SourceText:     p.OriginalText,
			TranslatedText: p.TranslatedText,
			File:           file,
			Line:           p.TranslatedLine + 1,
		})
	}
	return entries
}

// WriteTSV writes entries as tab-separated rows with a header.
func WriteTSV(w io.Writer, entries []Entry) error {
	if _, err := fmt.Fprintln(w, "language\tkind\tspeaker\tsource_text\ttranslated_text\tfile\tline"); err != nil {
		return fmt.Errorf("write TSV header: %w", err)
	}
	for _, e := range entries {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			e.Language,
			e.Kind,
			e.Speaker,
			EscapeTSV(e.SourceText),
			EscapeTSV(e.TranslatedText),
			e.File,
			e.Line,
		)
		if err != nil {
			return fmt.Errorf("write TSV row: %w", err)
		}
	}
	return nil
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

var (
	tsvEscaper   = strings.NewReplacer("\\", "\\\\", "\t", "\\t", "\n", "\\n", "\r", "\\r")
	tsvUnescaper = strings.NewReplacer("\\\\", "\\", "\\t", "\t", "\\n", "\n", "\\r", "\r")
)

// EscapeTSV makes s safe for a single TSV cell.
func EscapeTSV(s string) string { return tsvEscaper.Replace(s) }

// UnescapeTSV reverses EscapeTSV.
func UnescapeTSV(s string) string { return tsvUnescaper.Replace(s) }
