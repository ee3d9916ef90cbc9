package retrieval

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-chatbot/internal/common/logger"
)

// stubEmbedding is a deterministic bag-of-words embedding so tests run
// without a model endpoint. Shared words between texts yield higher cosine
// similarity.
func stubEmbedding() chromem.EmbeddingFunc {
	const dims = 64
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, dims)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(word))
			vec[h.Sum32()%dims]++
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		if norm == 0 {
			vec[0] = 1
			norm = 1
		}
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
		return vec, nil
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(stubEmbedding(), Options{}, logger.NewTestLogger(t))
}

func TestInitializeAll(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InitializeAll())
	assert.Len(t, s.collections, 4)
}

func TestAddAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, chunks, err := s.AddDocument(ctx, "MAX", "Returns are accepted within 30 days of purchase with the original receipt.")
	require.NoError(t, err)
	assert.NotEmpty(t, docID)
	assert.Equal(t, 1, chunks)

	results, err := s.Search(ctx, "MAX", "what is the returns window")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, docID, results[0].DocumentID)
	assert.Contains(t, results[0].Content, "30 days")
}

func TestSearchEmptyCollection(t *testing.T) {
	s := newTestStore(t)

	results, err := s.Search(context.Background(), "MAX", "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestConceptIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.AddDocument(ctx, "MAX", "Max exchanges happen in store within 14 days.")
	require.NoError(t, err)

	results, err := s.Search(ctx, "HOMECENTRE", "exchanges within days")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUnknownConcept(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.AddDocument(context.Background(), "NOT_A_BRAND", "text")
	require.Error(t, err)

	_, err = s.Search(context.Background(), "NOT_A_BRAND", "query")
	require.Error(t, err)
}

func TestAddDocumentEmptyText(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.AddDocument(context.Background(), "MAX", "   ")
	require.Error(t, err)
}

func TestChunkingBySentences(t *testing.T) {
	s := NewStore(stubEmbedding(), Options{ChunkSentences: 2}, logger.NewNoOpLogger())

	text := "First sentence. Second sentence. Third sentence. Fourth sentence. Fifth sentence."
	_, chunks, err := s.AddDocument(context.Background(), "LIFESTYLE", text)
	require.NoError(t, err)
	assert.Equal(t, 3, chunks)
}

func TestDeleteDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docID, _, err := s.AddDocument(ctx, "BABYSHOP", "Strollers can be returned if unused.")
	require.NoError(t, err)
	keepID, _, err := s.AddDocument(ctx, "BABYSHOP", "Diapers are not returnable once opened.")
	require.NoError(t, err)

	require.NoError(t, s.DeleteDocument(ctx, "BABYSHOP", docID))

	results, err := s.Search(ctx, "BABYSHOP", "returned unused strollers")
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, docID, r.DocumentID)
	}
	require.NotEmpty(t, results)
	assert.Equal(t, keepID, results[0].DocumentID)
}

func TestClearConcept(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.AddDocument(ctx, "MAX", "Some policy. Another rule.")
	require.NoError(t, err)
	require.NoError(t, s.ClearConcept(ctx, "MAX"))

	results, err := s.Search(ctx, "MAX", "policy rule")
	require.NoError(t, err)
	assert.Empty(t, results)

	// Cleared collection still accepts new documents.
	_, _, err = s.AddDocument(ctx, "MAX", "Fresh policy text.")
	require.NoError(t, err)
}

func TestPolicyContextJoinsTopChunks(t *testing.T) {
	s := NewStore(stubEmbedding(), Options{ContextDocs: 2}, logger.NewNoOpLogger())
	ctx := context.Background()

	_, _, err := s.AddDocument(ctx, "MAX", "Refunds reach the original payment method in seven days.")
	require.NoError(t, err)
	_, _, err = s.AddDocument(ctx, "MAX", "Refunds for cash purchases are issued as store credit.")
	require.NoError(t, err)
	_, _, err = s.AddDocument(ctx, "MAX", "Stores open at ten in the morning.")
	require.NoError(t, err)

	got, err := s.PolicyContext(ctx, "MAX", "refunds payment method days")
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, got, "Refunds")
}

func TestPolicyContextEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.PolicyContext(context.Background(), "LIFESTYLE", "anything")
	require.NoError(t, err)
	assert.Empty(t, got)
}
