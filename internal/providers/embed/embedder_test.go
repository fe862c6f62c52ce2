package embed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/recallbot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(url string, dim int) *Embedder {
	return NewEmbedder(&config.EmbeddingConfig{
		APIKey:    "test-key",
		Model:     "test-embed",
		BaseURL:   url,
		Dimension: dim,
	})
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	vec, err := newTestEmbedder(srv.URL, 3).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedder_Embed_DimensionMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]}]}`))
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv.URL, 3).Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension 2, want 3")
}

func TestEmbedder_Embed_EmptyText(t *testing.T) {
	t.Parallel()

	_, err := newTestEmbedder("http://unused", 3).Embed(context.Background(), "")
	require.Error(t, err)
}
