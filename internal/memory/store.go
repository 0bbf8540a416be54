package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rpy-localizer/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const upsertBatchSize = 500

const schemaSQL = `
CREATE TABLE IF NOT EXISTS translation_memory (
    hash            TEXT PRIMARY KEY,
    language        TEXT NOT NULL,
    kind            TEXT NOT NULL,
    speaker         TEXT NOT NULL DEFAULT '',
    source_text     TEXT NOT NULL,
    translated_text TEXT NOT NULL,
    file            TEXT NOT NULL,
    line            INTEGER NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS translation_memory_language_idx ON translation_memory (language);`

const upsertSQL = `
INSERT INTO translation_memory (hash, language, kind, speaker, source_text, translated_text, file, line)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (hash) DO UPDATE SET
    translated_text = EXCLUDED.translated_text,
    kind = EXCLUDED.kind,
    speaker = EXCLUDED.speaker,
    file = EXCLUDED.file,
    line = EXCLUDED.line,
    updated_at = now()
WHERE translation_memory.translated_text IS DISTINCT FROM EXCLUDED.translated_text`

const selectSQL = `
SELECT hash, language, kind, speaker, source_text, translated_text, file, line
FROM translation_memory`

// Store is a PostgreSQL-backed translation memory with an in-memory
// lookup layer.
type Store struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string]string // hash → translated text
}

// NewStore creates a store on an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		memory: make(map[string]string),
	}
}

// EnsureSchema creates the translation memory table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create translation memory schema: %w", err)
	}
	return nil
}

// Upsert inserts new entries and updates changed translations. It returns
// the number of rows written.
func (s *Store) Upsert(ctx context.Context, entries []Entry) (int, error) {
	written := 0
	for _, chunk := range worker.Batch(entries, upsertBatchSize) {
		batch := &pgx.Batch{}
		for _, e := range chunk {
			batch.Queue(upsertSQL, e.Hash, e.Language, e.Kind, e.Speaker, e.SourceText, e.TranslatedText, e.File, e.Line)
		}

		br := s.pool.SendBatch(ctx, batch)
		for range chunk {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return written, fmt.Errorf("upsert memory entry: %w", err)
			}
			written += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return written, fmt.Errorf("close upsert batch: %w", err)
		}

		s.mu.Lock()
		for _, e := range chunk {
			s.memory[e.Hash] = e.TranslatedText
		}
		s.mu.Unlock()
	}

	log.Info().Int("entries", len(entries)).Int("written", written).Msg("Upserted translation memory")
	return written, nil
}

// Lookup returns the remembered translation of source in language.
func (s *Store) Lookup(ctx context.Context, language, source string) (string, bool, error) {
	hash := EntryHash(language, source)

	s.mu.RLock()
	if v, ok := s.memory[hash]; ok {
		s.mu.RUnlock()
		return v, true, nil
	}
	s.mu.RUnlock()

	var translated string
	err := s.pool.QueryRow(ctx, `SELECT translated_text FROM translation_memory WHERE hash = $1`, hash).Scan(&translated)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup memory entry: %w", err)
	}

	s.mu.Lock()
	s.memory[hash] = translated
	s.mu.Unlock()
	return translated, true, nil
}

// All returns every entry, optionally filtered by language, ordered by
// file and line.
func (s *Store) All(ctx context.Context, language string) ([]Entry, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if language == "" {
		rows, err = s.pool.Query(ctx, selectSQL+` ORDER BY file, line`)
	} else {
		rows, err = s.pool.Query(ctx, selectSQL+` WHERE language = $1 ORDER BY file, line`, language)
	}
	if err != nil {
		return nil, fmt.Errorf("query memory entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[Entry])
	if err != nil {
		return nil, fmt.Errorf("scan memory entries: %w", err)
	}
	return entries, nil
}

// Preload loads every stored translation into the lookup layer.
func (s *Store) Preload(ctx context.Context) error {
	entries, err := s.All(ctx, "")
	if err != nil {
		return fmt.Errorf("preload memory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.memory[e.Hash] = e.TranslatedText
	}

	log.Info().Int("count", len(entries)).Msg("Preloaded translation memory")
	return nil
}
