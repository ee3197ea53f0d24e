package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/google/uuid"
)

// Ensure CorpusStore implements docqa.CorpusStore at compile time.
var _ docqa.CorpusStore = (*CorpusStore)(nil)

// CorpusStore implements docqa.CorpusStore using SQLite.
type CorpusStore struct {
	db *DB
}

// NewCorpusStore creates a new CorpusStore.
func NewCorpusStore(db *DB) *CorpusStore {
	return &CorpusStore{db: db}
}

const corpusColumns = `id, name, directory, state, reason, fingerprint, page_count, chunk_count,
	embedding_model, processed_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCorpus(row scanner) (*docqa.Corpus, error) {
	var c docqa.Corpus
	var state, processedAt, createdAt, updatedAt string

	if err := row.Scan(&c.ID, &c.Name, &c.Directory, &state, &c.Reason, &c.Fingerprint,
		&c.PageCount, &c.ChunkCount, &c.EmbeddingModel, &processedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.State = docqa.CorpusState(state)

	var err error
	if c.ProcessedAt, err = parseOptionalRFC3339(processedAt, "processed_at"); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCorpusByName retrieves a corpus by name.
func (s *CorpusStore) FindCorpusByName(ctx context.Context, name string) (*docqa.Corpus, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+corpusColumns+` FROM corpora WHERE name = ?`, name)

	corpus, err := scanCorpus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "corpus %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return corpus, nil
}

// FindCorpora retrieves corpora matching the filter ordered by name.
func (s *CorpusStore) FindCorpora(ctx context.Context, filter docqa.CorpusFilter) ([]*docqa.Corpus, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + corpusColumns + ` FROM corpora WHERE 1=1`)

	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.State != nil {
		query.WriteString(" AND state = ?")
		args = append(args, string(*filter.State))
	}

	query.WriteString(" ORDER BY name")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	corpora := []*docqa.Corpus{}
	for rows.Next() {
		corpus, err := scanCorpus(rows)
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, corpus)
	}

	return corpora, rows.Err()
}

// SaveCorpus inserts the corpus or updates the record with the same name.
// The ID and creation time of an existing record are kept.
func (s *CorpusStore) SaveCorpus(ctx context.Context, corpus *docqa.Corpus) error {
	if err := corpus.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)
	corpus.UpdatedAt = now

	existing, err := s.FindCorpusByName(ctx, corpus.Name)
	switch {
	case docqa.ErrorCode(err) == docqa.ENOTFOUND:
		corpus.ID = uuid.New().String()
		corpus.CreatedAt = now
	case err != nil:
		return err
	default:
		corpus.ID = existing.ID
		corpus.CreatedAt = existing.CreatedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO corpora (`+corpusColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			directory = excluded.directory,
			state = excluded.state,
			reason = excluded.reason,
			fingerprint = excluded.fingerprint,
			page_count = excluded.page_count,
			chunk_count = excluded.chunk_count,
			embedding_model = excluded.embedding_model,
			processed_at = excluded.processed_at,
			updated_at = excluded.updated_at
	`, corpus.ID, corpus.Name, corpus.Directory, string(corpus.State), corpus.Reason, corpus.Fingerprint,
		corpus.PageCount, corpus.ChunkCount, corpus.EmbeddingModel,
		formatOptionalRFC3339(corpus.ProcessedAt),
		corpus.CreatedAt.Format(time.RFC3339), corpus.UpdatedAt.Format(time.RFC3339))

	return err
}

// DeleteCorpus permanently removes a corpus record.
func (s *CorpusStore) DeleteCorpus(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM corpora WHERE name = ?", name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return docqa.Errorf(docqa.ENOTFOUND, "corpus %q not found", name)
	}

	return nil
}
