package sqlite

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/flat"
	"github.com/fwojciec/docqa/fs"
)

// IndexFile is the name of the database file in a corpus index directory.
const IndexFile = "index.db"

// Ensure IndexStore implements docqa.IndexStore at compile time.
var _ docqa.IndexStore = (*IndexStore)(nil)

// IndexStore persists corpus indexes as one SQLite database per corpus,
// stored at <root>/<corpus>/index.db.
type IndexStore struct {
	root string
}

// NewIndexStore creates a new IndexStore rooted at root.
func NewIndexStore(root string) *IndexStore {
	return &IndexStore{root: root}
}

func (s *IndexStore) path(name string) string {
	return filepath.Join(s.root, name, IndexFile)
}

// Exists reports whether a persisted index exists for the corpus.
func (s *IndexStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := docqa.ValidateCorpusName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(name))
	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the index to a staging directory and moves it into place, so
// the previous index stays intact until the new one is complete.
func (s *IndexStore) Save(ctx context.Context, name string, idx docqa.VectorIndex) (err error) {
	if err := docqa.ValidateCorpusName(name); err != nil {
		return err
	}

	dir := fs.NewAtomicDir(s.root, name)
	if err := dir.Begin(); err != nil {
		return docqa.WrapError(err, docqa.EINTERNAL, "failed to create index directory")
	}
	defer func() {
		if err != nil {
			_ = dir.Abort()
		}
	}()

	if err := writeIndex(ctx, filepath.Join(dir.TempDir(), IndexFile), idx); err != nil {
		return err
	}

	if err := dir.Commit(); err != nil {
		return docqa.WrapError(err, docqa.EINTERNAL, "failed to commit index")
	}
	return nil
}

func writeIndex(ctx context.Context, path string, idx docqa.VectorIndex) error {
	db := newIndexDB(path)
	if err := db.Open(); err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := map[string]string{
		"dimensions": strconv.Itoa(idx.Dimensions()),
		"model":      idx.Model(),
		"metric":     idx.Metric(),
		"count":      strconv.Itoa(idx.Len()),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (seq, id, page_id, page_hash, title, source_url, ordinal, start_offset, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range idx.Chunks() {
		if _, err := stmt.ExecContext(ctx, i, c.ID, c.PageID, c.PageHash, c.Title, c.SourceURL,
			c.Ordinal, c.StartOffset, c.Text, flat.EncodeVector(c.Embedding)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load reads the persisted index of a corpus.
func (s *IndexStore) Load(ctx context.Context, name string) (docqa.VectorIndex, error) {
	if ok, err := s.Exists(ctx, name); err != nil {
		return nil, err
	} else if !ok {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "no index for corpus %q", name)
	}

	db := newIndexDB(s.path(name))
	if err := db.Open(); err != nil {
		return nil, err
	}
	defer db.Close()

	meta := make(map[string]string)
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, err
		}
		meta[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if meta["metric"] != docqa.MetricL2 {
		return nil, docqa.Errorf(docqa.EINVALID, "index for corpus %q uses unsupported metric %q", name, meta["metric"])
	}
	dimensions, err := strconv.Atoi(meta["dimensions"])
	if err != nil {
		return nil, docqa.WrapError(err, docqa.EINVALID, "index for corpus %q has invalid dimensions", name)
	}

	idx, err := flat.New(dimensions, meta["model"])
	if err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `
		SELECT id, page_id, page_hash, title, source_url, ordinal, start_offset, text, embedding
		FROM chunks
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*docqa.Chunk
	for rows.Next() {
		var c docqa.Chunk
		var embedding []byte
		if err := rows.Scan(&c.ID, &c.PageID, &c.PageHash, &c.Title, &c.SourceURL,
			&c.Ordinal, &c.StartOffset, &c.Text, &embedding); err != nil {
			return nil, err
		}
		if c.Embedding, err = flat.DecodeVector(embedding); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := idx.Add(chunks); err != nil {
		return nil, err
	}
	return idx, nil
}

// Delete removes the persisted index of a corpus. Deleting a missing index
// is not an error.
func (s *IndexStore) Delete(ctx context.Context, name string) error {
	if err := docqa.ValidateCorpusName(name); err != nil {
		return err
	}
	dir := fs.NewAtomicDir(s.root, name)
	if err := dir.Abort(); err != nil {
		return err
	}
	return os.RemoveAll(dir.FinalDir())
}
