package graph

import (
	"context"
	"fmt"

	"rpy-localizer/internal/script"
	"rpy-localizer/internal/textutil"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// LineRecord is one extracted line as stored in the scene graph.
type LineRecord struct {
	ID      string
	File    string
	Line    int
	Kind    string
	Context string
	Scope   string
	Speaker string
	Text    string
}

// RecordsFromItems converts parsed items of one file into graph records.
func RecordsFromItems(file string, items []*script.Item) []LineRecord {
	records := make([]LineRecord, 0, len(items))
	for _, it := range items {
		scope := it.Scope
		if scope == "" {
			scope = script.ContextGlobal.String()
		}
		records = append(records, LineRecord{
			ID:      textutil.Hash(file, fmt.Sprint(it.Line)),
			File:    file,
			Line:    it.Line + 1,
			Kind:    it.Kind.String(),
			Context: it.Context.String(),
			Scope:   scope,
			Speaker: it.Speaker,
			Text:    textutil.Truncate(it.Text, 200),
		})
	}
	return records
}

// rowsParam converts records into the parameter list consumed by UNWIND.
func rowsParam(records []LineRecord) []any {
	rows := make([]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]any{
			"id":      r.ID,
			"file":    r.File,
			"line":    int64(r.Line),
			"kind":    r.Kind,
			"context": r.Context,
			"scope":   r.Scope,
			"speaker": r.Speaker,
			"text":    r.Text,
		})
	}
	return rows
}

// SceneBuilder writes script structure into the Neo4j scene graph.
type SceneBuilder struct {
	driver neo4j.DriverWithContext
}

// NewSceneBuilder creates a new scene builder.
func NewSceneBuilder(driver neo4j.DriverWithContext) *SceneBuilder {
	return &SceneBuilder{driver: driver}
}

// EnsureSchema creates constraints and indexes on the Neo4j database.
func (sb *SceneBuilder) EnsureSchema(ctx context.Context) error {
	session := sb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (f:File) REQUIRE f.path IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Character) REQUIRE c.tag IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (l:Line) REQUIRE l.id IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (s:Scope) ON (s.file, s.name)",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// AddFile replaces the graph content of one file with the given records.
func (sb *SceneBuilder) AddFile(ctx context.Context, file string, records []LineRecord) error {
	session := sb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (f:File {path: $file})
			WITH f
			OPTIONAL MATCH (f)-[:DEFINES]->(s:Scope)-[:CONTAINS]->(l:Line)
			DETACH DELETE l
		`, map[string]any{"file": file}); err != nil {
			return nil, fmt.Errorf("clear file lines: %w", err)
		}

		if len(records) == 0 {
			return nil, nil
		}

		if _, err := tx.Run(ctx, `
			UNWIND $rows AS row
			MATCH (f:File {path: row.file})
			MERGE (s:Scope {file: row.file, name: row.scope})
			MERGE (f)-[:DEFINES]->(s)
			MERGE (l:Line {id: row.id})
			SET l.line = row.line,
			    l.kind = row.kind,
			    l.context = row.context,
			    l.text = row.text
			MERGE (s)-[:CONTAINS]->(l)
		`, map[string]any{"rows": rowsParam(records)}); err != nil {
			return nil, fmt.Errorf("upsert lines: %w", err)
		}

		if _, err := tx.Run(ctx, `
			UNWIND $rows AS row
			WITH row WHERE row.speaker <> ''
			MATCH (l:Line {id: row.id})
			MERGE (c:Character {tag: row.speaker})
			MERGE (c)-[:SPEAKS]->(l)
		`, map[string]any{"rows": rowsParam(records)}); err != nil {
			return nil, fmt.Errorf("link speakers: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("add file %s: %w", file, err)
	}

	log.Debug().Str("file", file).Int("lines", len(records)).Msg("Added file to scene graph")
	return nil
}
