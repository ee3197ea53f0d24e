// Package bolt persists corpus indexes in bbolt key/value files.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/flat"
	"github.com/fwojciec/docqa/fs"
	"go.etcd.io/bbolt"
)

// IndexFile is the name of the bbolt file in a corpus index directory.
const IndexFile = "index.bolt"

var (
	bucketMeta       = []byte("meta")
	bucketChunks     = []byte("chunks")
	bucketEmbeddings = []byte("embeddings")
)

// Ensure IndexStore implements docqa.IndexStore at compile time.
var _ docqa.IndexStore = (*IndexStore)(nil)

// IndexStore persists corpus indexes as one bbolt file per corpus, stored at
// <root>/<corpus>/index.bolt.
type IndexStore struct {
	root string
}

// NewIndexStore creates a new IndexStore rooted at root.
func NewIndexStore(root string) *IndexStore {
	return &IndexStore{root: root}
}

// chunkRecord is the stored form of a chunk. Embeddings live in their own
// bucket under the same key.
type chunkRecord struct {
	ID          string `json:"id"`
	PageID      string `json:"pageId"`
	PageHash    string `json:"pageHash"`
	Title       string `json:"title"`
	SourceURL   string `json:"sourceUrl"`
	Ordinal     int    `json:"ordinal"`
	StartOffset int    `json:"startOffset"`
	Text        string `json:"text"`
}

// seqKey encodes the insertion position so cursor order is insertion order.
func seqKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

func open(path string) (*bbolt.DB, error) {
	return bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
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

// Save writes the index to a staging directory and moves it into place.
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
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		chunks, err := tx.CreateBucket(bucketChunks)
		if err != nil {
			return err
		}
		embeddings, err := tx.CreateBucket(bucketEmbeddings)
		if err != nil {
			return err
		}

		for k, v := range map[string]string{
			"dimensions": strconv.Itoa(idx.Dimensions()),
			"model":      idx.Model(),
			"metric":     idx.Metric(),
			"count":      strconv.Itoa(idx.Len()),
		} {
			if err := meta.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}

		for i, c := range idx.Chunks() {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := json.Marshal(chunkRecord{
				ID:          c.ID,
				PageID:      c.PageID,
				PageHash:    c.PageHash,
				Title:       c.Title,
				SourceURL:   c.SourceURL,
				Ordinal:     c.Ordinal,
				StartOffset: c.StartOffset,
				Text:        c.Text,
			})
			if err != nil {
				return err
			}
			key := seqKey(i)
			if err := chunks.Put(key, data); err != nil {
				return err
			}
			if err := embeddings.Put(key, flat.EncodeVector(c.Embedding)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the persisted index of a corpus.
func (s *IndexStore) Load(ctx context.Context, name string) (docqa.VectorIndex, error) {
	if ok, err := s.Exists(ctx, name); err != nil {
		return nil, err
	} else if !ok {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "no index for corpus %q", name)
	}

	db, err := open(s.path(name))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var idx *flat.Index
	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		chunks := tx.Bucket(bucketChunks)
		embeddings := tx.Bucket(bucketEmbeddings)
		if meta == nil || chunks == nil || embeddings == nil {
			return docqa.Errorf(docqa.EINVALID, "index for corpus %q is incomplete", name)
		}

		if metric := string(meta.Get([]byte("metric"))); metric != docqa.MetricL2 {
			return docqa.Errorf(docqa.EINVALID, "index for corpus %q uses unsupported metric %q", name, metric)
		}
		dimensions, err := strconv.Atoi(string(meta.Get([]byte("dimensions"))))
		if err != nil {
			return docqa.WrapError(err, docqa.EINVALID, "index for corpus %q has invalid dimensions", name)
		}
		if idx, err = flat.New(dimensions, string(meta.Get([]byte("model")))); err != nil {
			return err
		}

		var loaded []*docqa.Chunk
		c := chunks.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec chunkRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return docqa.WrapError(err, docqa.EINVALID, "corrupt chunk record")
			}
			embedding, err := flat.DecodeVector(embeddings.Get(k))
			if err != nil {
				return err
			}
			loaded = append(loaded, &docqa.Chunk{
				ID:          rec.ID,
				PageID:      rec.PageID,
				PageHash:    rec.PageHash,
				Title:       rec.Title,
				SourceURL:   rec.SourceURL,
				Ordinal:     rec.Ordinal,
				StartOffset: rec.StartOffset,
				Text:        rec.Text,
				Embedding:   embedding,
			})
		}
		return idx.Add(loaded)
	})
	if err != nil {
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
