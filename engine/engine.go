// Package engine implements the documentation retrieval engine: ingestion of
// corpus directories into vector indexes, similarity retrieval and answer
// synthesis.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/flat"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Defaults applied to zero-valued Engine settings.
const (
	DefaultChunkSize    = 200
	DefaultChunkOverlap = 40
	DefaultTopK         = 3
	DefaultConcurrency  = 4
)

// Ensure Engine implements docqa.CorpusService at compile time.
var _ docqa.CorpusService = (*Engine)(nil)

// Engine implements docqa.CorpusService.
//
// Every corpus is a directory named after it under DocsRoot. Its record lives
// in Corpora, its persisted index in Indexes.
type Engine struct {
	Corpora     docqa.CorpusStore
	Indexes     docqa.IndexStore
	Loader      docqa.PageLoader
	Embedder    docqa.Embedder
	Synthesizer docqa.Synthesizer
	Logger      *slog.Logger

	DocsRoot string

	// Word windows used to chunk pages. The zero value selects
	// DefaultChunkSize and DefaultChunkOverlap.
	Chunking docqa.ChunkOptions

	TopK int

	// Maximum number of concurrent embedding calls.
	Concurrency int

	// Optional limit on the rate of embedding calls.
	Limiter *rate.Limiter

	registry Registry
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Engine) chunking() docqa.ChunkOptions {
	if e.Chunking == (docqa.ChunkOptions{}) {
		return docqa.ChunkOptions{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}
	}
	return e.Chunking
}

func (e *Engine) dir(name string) string {
	return filepath.Join(e.DocsRoot, name)
}

// Process ingests the corpus directory into the corpus index.
func (e *Engine) Process(ctx context.Context, name string) (*docqa.Corpus, error) {
	if err := docqa.ValidateCorpusName(name); err != nil {
		return nil, err
	}
	if err := e.chunking().Validate(); err != nil {
		return nil, err
	}

	unlock := e.registry.Lock(name)
	defer unlock()

	corpus, err := e.Corpora.FindCorpusByName(ctx, name)
	if docqa.ErrorCode(err) == docqa.ENOTFOUND {
		corpus = &docqa.Corpus{Name: name, State: docqa.CorpusUnprocessed}
	} else if err != nil {
		return nil, err
	}
	corpus.Directory = e.dir(name)

	fingerprint, fpErr := e.Loader.Fingerprint(ctx, corpus.Directory)
	if fpErr == nil && e.upToDate(ctx, corpus, fingerprint) {
		e.logger().Debug("corpus unchanged", "corpus", name)
		return corpus, nil
	}

	corpus.State = docqa.CorpusProcessing
	corpus.Reason = ""
	if err := e.Corpora.SaveCorpus(ctx, corpus); err != nil {
		return nil, err
	}

	if fpErr != nil {
		return nil, e.fail(ctx, corpus, fpErr)
	}

	idx, pages, err := e.build(ctx, corpus)
	if err != nil {
		return nil, e.fail(ctx, corpus, err)
	}

	if err := e.Indexes.Save(ctx, name, idx); err != nil {
		return nil, e.fail(ctx, corpus, err)
	}

	corpus.State = docqa.CorpusReady
	corpus.Fingerprint = fingerprint
	corpus.PageCount = pages
	corpus.ChunkCount = idx.Len()
	corpus.EmbeddingModel = idx.Model()
	corpus.ProcessedAt = time.Now().UTC()
	if err := e.Corpora.SaveCorpus(ctx, corpus); err != nil {
		return nil, e.fail(ctx, corpus, err)
	}
	e.registry.SetIndex(name, idx)

	return corpus, nil
}

// upToDate reports whether a ready corpus can be served without processing.
func (e *Engine) upToDate(ctx context.Context, corpus *docqa.Corpus, fingerprint string) bool {
	if corpus.State != docqa.CorpusReady ||
		corpus.Fingerprint != fingerprint ||
		corpus.EmbeddingModel != e.Embedder.Model() {
		return false
	}
	if e.registry.Index(corpus.Name) != nil {
		return true
	}
	ok, err := e.Indexes.Exists(ctx, corpus.Name)
	return err == nil && ok
}

// fail records a processing failure on the corpus and returns err.
func (e *Engine) fail(ctx context.Context, corpus *docqa.Corpus, err error) error {
	e.registry.SetIndex(corpus.Name, nil)

	corpus.State = docqa.CorpusFailed
	switch docqa.ErrorCode(err) {
	case docqa.ENODIR, docqa.ENODOCS:
		// A missing directory is reported to the caller as ENODIR but
		// recorded like an empty one.
		corpus.Reason = docqa.ReasonNoDocuments
	case docqa.EEMBED:
		corpus.Reason = docqa.ReasonEmbeddingFailure
	default:
		corpus.Reason = docqa.ReasonInternal
	}

	// Record the failure even when ctx was cancelled.
	if saveErr := e.Corpora.SaveCorpus(context.WithoutCancel(ctx), corpus); saveErr != nil {
		e.logger().Error("failed to record corpus failure", "corpus", corpus.Name, "err", saveErr)
	}
	return err
}

// build loads, chunks and embeds the pages of a corpus. Embeddings of chunks
// whose page and text are unchanged since the persisted index are reused.
func (e *Engine) build(ctx context.Context, corpus *docqa.Corpus) (*flat.Index, int, error) {
	set, err := e.Loader.LoadPages(ctx, corpus.Directory)
	if err != nil {
		return nil, 0, err
	}
	for _, s := range set.Skipped {
		e.logger().Warn("skipped page file", "corpus", corpus.Name, "path", s.Path, "reason", s.Reason)
	}
	if len(set.Pages) == 0 {
		return nil, 0, docqa.Errorf(docqa.ENODOCS, "no documents in corpus %q", corpus.Name)
	}

	previous := e.previousChunks(ctx, corpus.Name)
	opts := e.chunking()

	var chunks, pending []*docqa.Chunk
	for _, page := range set.Pages {
		for c := range docqa.ChunkPage(page, opts) {
			if prev, ok := previous[c.ID]; ok && prev.PageHash == c.PageHash &&
				prev.StartOffset == c.StartOffset && prev.Text == c.Text {
				c.Embedding = prev.Embedding
			} else {
				pending = append(pending, c)
			}
			chunks = append(chunks, c)
		}
	}

	e.logger().Info("embedding chunks", "corpus", corpus.Name,
		"pages", len(set.Pages), "chunks", len(chunks), "reused", len(chunks)-len(pending))

	if err := e.embed(ctx, pending); err != nil {
		return nil, 0, err
	}

	idx, err := flat.New(e.Embedder.Dimensions(), e.Embedder.Model())
	if err != nil {
		return nil, 0, err
	}
	if err := idx.Add(chunks); err != nil {
		return nil, 0, err
	}
	return idx, len(set.Pages), nil
}

// previousChunks returns the chunks of the current index of the corpus by
// ID, provided it was built with the configured embedder.
func (e *Engine) previousChunks(ctx context.Context, name string) map[string]*docqa.Chunk {
	idx := e.registry.Index(name)
	if idx == nil {
		ok, err := e.Indexes.Exists(ctx, name)
		if err != nil || !ok {
			return nil
		}
		if idx, err = e.Indexes.Load(ctx, name); err != nil {
			e.logger().Warn("ignoring unreadable index", "corpus", name, "err", err)
			return nil
		}
	}
	if idx.Model() != e.Embedder.Model() || idx.Dimensions() != e.Embedder.Dimensions() {
		return nil
	}

	chunks := make(map[string]*docqa.Chunk, idx.Len())
	for _, c := range idx.Chunks() {
		chunks[c.ID] = c
	}
	return chunks
}

// embed sets the embedding of every chunk. Any failure aborts the batch.
func (e *Engine) embed(ctx context.Context, chunks []*docqa.Chunk) error {
	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, c := range chunks {
		g.Go(func() error {
			if e.Limiter != nil {
				if err := e.Limiter.Wait(gctx); err != nil {
					return docqa.WrapError(err, docqa.EEMBED, "embedding cancelled")
				}
			}
			v, err := e.Embedder.Embed(gctx, c.Text)
			if err != nil {
				if docqa.ErrorCode(err) == docqa.EEMBED {
					return err
				}
				return docqa.WrapError(err, docqa.EEMBED, "failed to embed chunk %q", c.ID)
			}
			if len(v) != e.Embedder.Dimensions() {
				return docqa.Errorf(docqa.EEMBED, "embedding of chunk %q has %d dimensions, want %d", c.ID, len(v), e.Embedder.Dimensions())
			}
			c.Embedding = v
			return nil
		})
	}

	return g.Wait()
}

// Retrieve returns the k chunks of a ready corpus closest to query.
// A k of zero or less selects TopK.
func (e *Engine) Retrieve(ctx context.Context, name, query string, k int) ([]docqa.SearchResult, error) {
	if query == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "query required")
	}
	if k <= 0 {
		k = e.topK()
	}

	idx, err := e.readyIndex(ctx, name)
	if err != nil {
		return nil, err
	}

	v, err := e.Embedder.Embed(ctx, query)
	if err != nil {
		if docqa.ErrorCode(err) == docqa.EEMBED {
			return nil, err
		}
		return nil, docqa.WrapError(err, docqa.EEMBED, "failed to embed query")
	}

	return idx.Search(v, k)
}

func (e *Engine) topK() int {
	if e.TopK > 0 {
		return e.TopK
	}
	return DefaultTopK
}

// readyIndex returns the index of a ready corpus, loading it from the store
// if it is not in memory yet.
func (e *Engine) readyIndex(ctx context.Context, name string) (docqa.VectorIndex, error) {
	if err := docqa.ValidateCorpusName(name); err != nil {
		return nil, err
	}
	if e.registry.Processing(name) {
		return nil, docqa.Errorf(docqa.ENOTREADY, "corpus %q is being processed", name)
	}

	gen := e.registry.Generation(name)
	corpus, err := e.Corpora.FindCorpusByName(ctx, name)
	if docqa.ErrorCode(err) == docqa.ENOTFOUND {
		return nil, docqa.Errorf(docqa.ENOTREADY, "corpus %q has not been processed", name)
	} else if err != nil {
		return nil, err
	}
	if corpus.State != docqa.CorpusReady {
		return nil, docqa.Errorf(docqa.ENOTREADY, "corpus %q is %s", name, corpus.State)
	}

	idx := e.registry.Index(name)
	if idx == nil {
		idx, err = e.Indexes.Load(ctx, name)
		if docqa.ErrorCode(err) == docqa.ENOTFOUND {
			return nil, docqa.Errorf(docqa.ENOTREADY, "index of corpus %q is missing", name)
		} else if err != nil {
			return nil, err
		}
		live := e.registry.SetIndexIfCurrent(name, idx, gen)
		if live == nil {
			return nil, docqa.Errorf(docqa.ENOTREADY, "corpus %q changed while loading its index", name)
		}
		idx = live
	}

	if idx.Model() != e.Embedder.Model() || idx.Dimensions() != e.Embedder.Dimensions() {
		return nil, docqa.Errorf(docqa.EINVALID,
			"corpus %q was indexed with %s (%d dimensions) but the configured embedder is %s (%d dimensions)",
			name, idx.Model(), idx.Dimensions(), e.Embedder.Model(), e.Embedder.Dimensions())
	}
	return idx, nil
}

// Query answers a question from the documentation of a ready corpus.
func (e *Engine) Query(ctx context.Context, name, question string) (*docqa.QueryResult, error) {
	if question == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "question required")
	}

	results, err := e.Retrieve(ctx, name, question, e.topK())
	if err != nil {
		return nil, err
	}

	answer, err := e.Synthesizer.Synthesize(ctx, question, results)
	if err != nil {
		return nil, err
	}

	return &docqa.QueryResult{
		Question:   question,
		Answer:     answer.Answer,
		Reasoning:  answer.Reasoning,
		CorpusName: name,
		Sources:    docqa.Sources(results),
	}, nil
}

// ListCorpora lists the corpus directories under DocsRoot with their page
// counts and registry state. Unregistered directories are unprocessed.
func (e *Engine) ListCorpora(ctx context.Context) ([]*docqa.CorpusSummary, error) {
	summaries, err := e.Loader.ScanCorpora(ctx, e.DocsRoot)
	if err != nil {
		return nil, err
	}

	corpora, err := e.Corpora.FindCorpora(ctx, docqa.CorpusFilter{})
	if err != nil {
		return nil, err
	}
	states := make(map[string]docqa.CorpusState, len(corpora))
	for _, c := range corpora {
		states[c.Name] = c.State
	}

	for _, s := range summaries {
		s.State = docqa.CorpusUnprocessed
		if state, ok := states[s.Name]; ok {
			s.State = state
		}
	}
	return summaries, nil
}

// FindCorpus returns the corpus record.
func (e *Engine) FindCorpus(ctx context.Context, name string) (*docqa.Corpus, error) {
	if err := docqa.ValidateCorpusName(name); err != nil {
		return nil, err
	}
	return e.Corpora.FindCorpusByName(ctx, name)
}

// DeleteCorpus removes the corpus record, its live handle and its persisted
// index. It waits for processing of the corpus to finish.
func (e *Engine) DeleteCorpus(ctx context.Context, name string) error {
	if err := docqa.ValidateCorpusName(name); err != nil {
		return err
	}

	unlock := e.registry.Lock(name)
	defer unlock()

	if _, err := e.Corpora.FindCorpusByName(ctx, name); err != nil {
		return err
	}

	e.registry.SetIndex(name, nil)
	if err := e.Indexes.Delete(ctx, name); err != nil {
		return err
	}
	return e.Corpora.DeleteCorpus(ctx, name)
}
