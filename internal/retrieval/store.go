// Package retrieval maintains a per-brand vector store of policy documents
// and answers as similarity search. Each brand gets its own chromem
// collection so policy text never leaks across brands.
package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/concept"
)

const (
	defaultTopK           = 5
	defaultContextDocs    = 3
	defaultChunkSentences = 5

	metaDocumentID = "document_id"
	metaConcept    = "concept"
	metaChunkIndex = "chunk_index"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+\s+`)

// Result is one retrieved chunk with its similarity score.
type Result struct {
	ID         string
	DocumentID string
	Content    string
	Similarity float32
}

// Store holds one chromem collection per brand, created lazily.
type Store struct {
	db        *chromem.DB
	embedding chromem.EmbeddingFunc
	log       logger.Logger

	topK           int
	contextDocs    int
	chunkSentences int

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// Options tunes retrieval; zero values fall back to defaults.
type Options struct {
	TopK           int
	ContextDocs    int
	ChunkSentences int
}

func NewStore(embedding chromem.EmbeddingFunc, opts Options, log logger.Logger) *Store {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.ContextDocs <= 0 {
		opts.ContextDocs = defaultContextDocs
	}
	if opts.ChunkSentences <= 0 {
		opts.ChunkSentences = defaultChunkSentences
	}
	return &Store{
		db:             chromem.NewDB(),
		embedding:      embedding,
		log:            log,
		topK:           opts.TopK,
		contextDocs:    opts.ContextDocs,
		chunkSentences: opts.ChunkSentences,
		collections:    make(map[string]*chromem.Collection),
	}
}

// InitializeAll creates a collection for every known brand up front so the
// first query does not pay collection setup.
func (s *Store) InitializeAll() error {
	for _, c := range concept.ValidConcepts() {
		if _, err := s.collection(c); err != nil {
			return err
		}
	}
	s.log.Info("Vector store warmed", map[string]interface{}{
		"concepts": concept.ValidConcepts(),
	})
	return nil
}

func (s *Store) collection(rawConcept string) (*chromem.Collection, error) {
	normalized, err := concept.Normalize(rawConcept)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[normalized]; ok {
		return col, nil
	}
	col, err := s.db.GetOrCreateCollection(collectionName(normalized), nil, s.embedding)
	if err != nil {
		return nil, errors.NewRetrievalFailureError(normalized, err)
	}
	s.collections[normalized] = col
	return col, nil
}

func collectionName(normalizedConcept string) string {
	return "policies-" + strings.ToLower(normalizedConcept)
}

// AddDocument chunks the text by sentences and stores the chunks under a
// generated document id, which is returned for later deletion.
func (s *Store) AddDocument(ctx context.Context, rawConcept, text string) (string, int, error) {
	col, err := s.collection(rawConcept)
	if err != nil {
		return "", 0, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, errors.NewInvalidRequestError("document text must not be empty")
	}

	docID := uuid.NewString()
	chunks := s.chunk(text)
	normalized, _ := concept.Normalize(rawConcept)
	for i, chunk := range chunks {
		doc := chromem.Document{
			ID:      fmt.Sprintf("%s-%d", docID, i),
			Content: chunk,
			Metadata: map[string]string{
				metaDocumentID: docID,
				metaConcept:    normalized,
				metaChunkIndex: fmt.Sprintf("%d", i),
			},
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return "", 0, errors.NewRetrievalFailureError(normalized, err)
		}
	}

	s.log.Info("Policy document indexed", map[string]interface{}{
		"concept":    normalized,
		"documentId": docID,
		"chunks":     len(chunks),
	})
	return docID, len(chunks), nil
}

// DeleteDocument removes every chunk indexed under the given document id.
func (s *Store) DeleteDocument(ctx context.Context, rawConcept, documentID string) error {
	col, err := s.collection(rawConcept)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, map[string]string{metaDocumentID: documentID}, nil); err != nil {
		normalized, _ := concept.Normalize(rawConcept)
		return errors.NewRetrievalFailureError(normalized, err)
	}
	return nil
}

// ClearConcept drops and recreates the brand's collection.
func (s *Store) ClearConcept(ctx context.Context, rawConcept string) error {
	normalized, err := concept.Normalize(rawConcept)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(collectionName(normalized)); err != nil {
		return errors.NewRetrievalFailureError(normalized, err)
	}
	col, err := s.db.GetOrCreateCollection(collectionName(normalized), nil, s.embedding)
	if err != nil {
		return errors.NewRetrievalFailureError(normalized, err)
	}
	s.collections[normalized] = col
	return nil
}

// Search returns up to topK chunks ranked by similarity. An empty collection
// yields no results rather than an error.
func (s *Store) Search(ctx context.Context, rawConcept, query string) ([]Result, error) {
	col, err := s.collection(rawConcept)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	n := s.topK
	if n > count {
		n = count
	}

	hits, err := col.Query(ctx, query, n, nil, nil)
	if err != nil {
		normalized, _ := concept.Normalize(rawConcept)
		return nil, errors.NewRetrievalFailureError(normalized, err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			ID:         h.ID,
			DocumentID: h.Metadata[metaDocumentID],
			Content:    h.Content,
			Similarity: h.Similarity,
		})
	}
	return results, nil
}

// PolicyContext joins the best-matching chunks into the context block handed
// to the language model. Empty string means nothing relevant was found.
func (s *Store) PolicyContext(ctx context.Context, rawConcept, query string) (string, error) {
	results, err := s.Search(ctx, rawConcept, query)
	if err != nil {
		return "", err
	}
	if len(results) > s.contextDocs {
		results = results[:s.contextDocs]
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, "\n"), nil
}

// chunk groups sentences into fixed-size windows.
func (s *Store) chunk(text string) []string {
	sentences := sentenceSplit.Split(text, -1)
	cleaned := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if sent != "" {
			cleaned = append(cleaned, sent)
		}
	}
	if len(cleaned) == 0 {
		return []string{text}
	}

	var chunks []string
	for i := 0; i < len(cleaned); i += s.chunkSentences {
		end := i + s.chunkSentences
		if end > len(cleaned) {
			end = len(cleaned)
		}
		chunks = append(chunks, strings.Join(cleaned[i:end], ". "))
	}
	return chunks
}
