package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// SpeakerStat counts the lines a character speaks.
type SpeakerStat struct {
	Tag    string
	Lines  int64
	Scopes int64
}

// SceneQuerier reads summaries back from the scene graph.
type SceneQuerier struct {
	driver neo4j.DriverWithContext
}

// NewSceneQuerier creates a new scene querier.
func NewSceneQuerier(driver neo4j.DriverWithContext) *SceneQuerier {
	return &SceneQuerier{driver: driver}
}

// Speakers lists characters by number of spoken lines, most first.
func (sq *SceneQuerier) Speakers(ctx context.Context, limit int) ([]SpeakerStat, error) {
	session := sq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Character)-[:SPEAKS]->(l:Line)<-[:CONTAINS]-(s:Scope)
		RETURN c.tag AS tag, count(DISTINCT l) AS lines, count(DISTINCT s) AS scopes
		ORDER BY lines DESC, tag
		LIMIT $limit
	`, map[string]any{"limit": int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}

	var stats []SpeakerStat
	for result.Next(ctx) {
		record := result.Record()
		tag, _, err := neo4j.GetRecordValue[string](record, "tag")
		if err != nil {
			return nil, fmt.Errorf("read tag: %w", err)
		}
		lines, _, err := neo4j.GetRecordValue[int64](record, "lines")
		if err != nil {
			return nil, fmt.Errorf("read lines: %w", err)
		}
		scopes, _, err := neo4j.GetRecordValue[int64](record, "scopes")
		if err != nil {
			return nil, fmt.Errorf("read scopes: %w", err)
		}
		stats = append(stats, SpeakerStat{Tag: tag, Lines: lines, Scopes: scopes})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterate speakers: %w", err)
	}
	return stats, nil
}
