package graph

import (
	"strings"
	"testing"

	"rpy-localizer/internal/script"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneScript = `define e = Character("Eileen")

label start:
    e "Hello there."
    "The room is quiet."
    menu:
        "Leave":
            e "Bye."
`

func TestRecordsFromItems(t *testing.T) {
	res := script.Parse(strings.Split(sceneScript, "\n"), script.ModeDirect)
	records := RecordsFromItems("script.rpy", res.Items)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, "script.rpy", first.File)
	assert.Equal(t, 4, first.Line)
	assert.Equal(t, "dialogue", first.Kind)
	assert.Equal(t, "label", first.Context)
	assert.Equal(t, "label start", first.Scope)
	assert.Equal(t, "e", first.Speaker)
	assert.Equal(t, "Hello there.", first.Text)

	assert.Equal(t, "choice", records[2].Kind)
	assert.Empty(t, records[2].Speaker)
	assert.Equal(t, "e", records[3].Speaker)

	ids := map[string]bool{}
	for _, r := range records {
		ids[r.ID] = true
	}
	assert.Len(t, ids, len(records))
}

func TestRecordsFromItemsGlobalScope(t *testing.T) {
	res := script.Parse([]string{`"Top level narration."`}, script.ModeDirect)
	records := RecordsFromItems("a.rpy", res.Items)
	require.Len(t, records, 1)
	assert.Equal(t, "global", records[0].Scope)
}

func TestRowsParam(t *testing.T) {
	rows := rowsParam([]LineRecord{{ID: "x", File: "a.rpy", Line: 7, Kind: "narration", Scope: "label a", Text: "Hi"}})
	require.Len(t, rows, 1)

	row, ok := rows[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(7), row["line"])
	assert.Equal(t, "", row["speaker"])
	assert.Equal(t, "label a", row["scope"])
}
