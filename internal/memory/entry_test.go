package memory

import (
	"bytes"
	"encoding/json"
	"testing"

	"rpy-localizer/internal/script"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePairs() []*script.Pair {
	return []*script.Pair{
		{
			OriginalLine:    3,
			TranslatedLine:  4,
			OriginalText:    "Hello, \"world\".",
			TranslatedText:  "Merhaba,\tdünya.",
			Language:        "turkish",
			SpeakerOriginal: "e",
			Kind:            script.KindDialogue,
		},
		{
			OriginalLine:   8,
			TranslatedLine: 9,
			OriginalText:   "Untranslated.",
			TranslatedText: "  ",
			Language:       "turkish",
			Kind:           script.KindNarration,
		},
	}
}

func TestEntriesFromPairs(t *testing.T) {
	entries := EntriesFromPairs("tl/turkish/script.rpy", samplePairs())
	require.Len(t, entries, 1)

	want := Entry{
		Hash:           EntryHash("turkish", "Hello, \"world\"."),
		Language:       "turkish",
		Kind:           script.KindDialogue.String(),
		Speaker:        "e",
		SourceText:     "Hello, \"world\".",
		TranslatedText: "Merhaba,\tdünya.",
		File:           "tl/turkish/script.rpy",
		Line:           5,
	}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestEntryHashSeparatesLanguages(t *testing.T) {
	assert.NotEqual(t, EntryHash("turkish", "Hi"), EntryHash("french", "Hi"))
	assert.Equal(t, EntryHash("turkish", "Hi"), EntryHash("turkish", "Hi"))
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, EntriesFromPairs("a.rpy", samplePairs())))

	want := "language\tkind\tspeaker\tsource_text\ttranslated_text\tfile\tline\n" +
		"turkish\tdialogue\te\tHello, \"world\".\tMerhaba,\\tdünya.\ta.rpy\t5\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, EntriesFromPairs("a.rpy", samplePairs())))

	var got []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Merhaba,\tdünya.", got[0].TranslatedText)
	assert.Contains(t, buf.String(), `"source_text": "Hello, \"world\"."`)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEscapeTSV(t *testing.T) {
	in := "a\tb\nc\\d\re"
	assert.Equal(t, `a\tb\nc\\d\re`, EscapeTSV(in))
	assert.Equal(t, in, UnescapeTSV(EscapeTSV(in)))
}
