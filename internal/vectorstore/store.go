// Package vectorstore provides optional semantic search over the portfolio
// document using chromem-go, a pure Go embedded vector database. The store is
// strictly additive: when disabled or failed to initialize, callers hold a nil
// *Store and every method degrades to a no-op.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "portfolio"

// Result is one similarity hit.
type Result struct {
	Content    string
	Similarity float32
}

// Store wraps a persistent chromem-go collection holding portfolio chunks.
// A nil *Store is valid and behaves as an always-empty store.
type Store struct {
	db     *chromem.DB
	col    *chromem.Collection
	logger *slog.Logger
	topK   int
}

// Options configure the store. EmbeddingsProvider selects where embeddings
// come from: "openai" or "huggingface" (served through an OpenAI-compatible
// endpoint).
type Options struct {
	StoragePath        string
	EmbeddingsProvider string
	EmbeddingsModel    string
	EmbeddingsAPIKey   string
	EmbeddingsAPIBase  string
	ChunkSize          int
	ChunkOverlap       int
	TopK               int
}

// New opens (or creates) the persistent store. Errors here are surfaced so
// the caller can log and continue without semantic search.
func New(opts Options, logger *slog.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(opts.StoragePath, false)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector store at %s: %w", opts.StoragePath, err)
	}

	embed, err := embeddingFunc(opts)
	if err != nil {
		return nil, err
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("cannot open collection %s: %w", collectionName, err)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 3
	}

	return &Store{db: db, col: col, logger: logger, topK: topK}, nil
}

func embeddingFunc(opts Options) (chromem.EmbeddingFunc, error) {
	switch opts.EmbeddingsProvider {
	case "openai", "":
		model := chromem.EmbeddingModelOpenAI(opts.EmbeddingsModel)
		if opts.EmbeddingsModel == "" {
			model = chromem.EmbeddingModelOpenAI3Small
		}
		return chromem.NewEmbeddingFuncOpenAI(opts.EmbeddingsAPIKey, model), nil
	case "huggingface":
		base := opts.EmbeddingsAPIBase
		if base == "" {
			base = "https://api-inference.huggingface.co/v1"
		}
		normalized := true
		return chromem.NewEmbeddingFuncOpenAICompat(base, opts.EmbeddingsAPIKey, opts.EmbeddingsModel, &normalized), nil
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", opts.EmbeddingsProvider)
	}
}

// IndexDocument splits the document into overlapping chunks and stores them.
// Re-indexing replaces earlier chunks by reusing their ids.
func (s *Store) IndexDocument(ctx context.Context, document string, chunkSize, chunkOverlap int) error {
	if s == nil {
		return nil
	}

	chunks := ChunkText(document, chunkSize, chunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:       "chunk-" + strconv.Itoa(i),
			Content:  chunk,
			Metadata: map[string]string{"chunk": strconv.Itoa(i)},
		})
	}

	if err := s.col.AddDocuments(ctx, docs, 2); err != nil {
		return fmt.Errorf("cannot index portfolio chunks: %w", err)
	}
	s.logger.Info("indexed portfolio document", "chunks", len(chunks))
	return nil
}

// SimilaritySearch returns up to topK chunks most similar to the query. It
// never fails the request: lookup errors log and return nil so the caller
// falls back to the full portfolio context.
func (s *Store) SimilaritySearch(ctx context.Context, query string) []Result {
	if s == nil || query == "" {
		return nil
	}

	n := s.topK
	if count := s.col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil
	}

	hits, err := s.col.Query(ctx, query, n, nil, nil)
	if err != nil {
		s.logger.Warn("vector search failed, falling back to full context", "err", err)
		return nil
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{Content: h.Content, Similarity: h.Similarity})
	}
	return results
}

// Count reports how many chunks are indexed.
func (s *Store) Count() int {
	if s == nil {
		return 0
	}
	return s.col.Count()
}

// ChunkText splits text into chunks of at most chunkSize characters with
// chunkOverlap characters carried between consecutive chunks. Splits prefer
// paragraph then line boundaries near the cut point.
func ChunkText(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		cut := boundaryBefore(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - chunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// boundaryBefore finds a natural split point at or before end, preferring a
// blank line, then a newline, within the last quarter of the window.
func boundaryBefore(text string, start, end int) int {
	window := text[start:end]
	floor := len(window) * 3 / 4

	if i := strings.LastIndex(window, "\n\n"); i >= floor {
		return start + i
	}
	if i := strings.LastIndex(window, "\n"); i >= floor {
		return start + i
	}
	return end
}
