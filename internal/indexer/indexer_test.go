package indexer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/testutil"
)

func newTestIndexer(t *testing.T, emb embedding.Embedder, size, overlap int) *Indexer {
	t.Helper()
	cfg := config.Default()
	cfg.Chunking.MaxSize = size
	cfg.Chunking.Overlap = &overlap
	idx, err := New(cfg, emb, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx
}

type downEmbedder struct{ *embedding.HashingEmbedder }

func (downEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, &models.ProviderError{Reason: models.ReasonUnavailable, Retryable: true}
}

func (downEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, &models.ProviderError{Reason: models.ReasonUnavailable, Retryable: true}
}

func TestIndexer_Ingest(t *testing.T) {
	emb := embedding.NewHashingEmbedder(128)
	idx := newTestIndexer(t, emb, 40, 10)
	content := testutil.BuildPDF(
		"The capital of France is Paris. It is known for the Eiffel Tower.",
		"",
		"Berlin is the capital of Germany.",
	)
	vi, res, err := idx.Ingest(context.Background(), content)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Pages != 3 || res.EmptyPages != 1 {
		t.Errorf("pages=%d empty=%d", res.Pages, res.EmptyPages)
	}
	if res.Chunks != vi.Size() || res.Chunks < 3 {
		t.Errorf("chunks=%d index size=%d", res.Chunks, vi.Size())
	}
	if !strings.HasPrefix(res.DocumentID, "pdf:") {
		t.Errorf("document id: %s", res.DocumentID)
	}
	chunks := vi.Chunks()
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		if len([]rune(c.Text)) > 40 {
			t.Errorf("chunk %d exceeds max size: %q", i, c.Text)
		}
		if c.SourcePageIndex == 1 {
			t.Errorf("empty page produced chunk %+v", c)
		}
	}
	if last := chunks[len(chunks)-1]; last.SourcePageIndex != 2 {
		t.Errorf("last chunk should come from page 2, got %+v", last)
	}
}

func TestIndexer_Ingest_errors(t *testing.T) {
	emb := embedding.NewHashingEmbedder(32)
	ctx := context.Background()

	_, _, err := newTestIndexer(t, emb, 50, 5).Ingest(ctx, []byte("not a pdf"))
	var le *models.LoadError
	if !errors.As(err, &le) {
		t.Errorf("expected LoadError, got %v", err)
	}

	_, _, err = newTestIndexer(t, emb, 50, 5).Ingest(ctx, testutil.BuildPDF("", ""))
	var ce *models.ChunkError
	if !errors.As(err, &ce) || ce.Reason != models.ReasonEmptyDocument {
		t.Errorf("expected empty-document ChunkError, got %v", err)
	}

	vi, res, err := newTestIndexer(t, downEmbedder{emb}, 50, 5).Ingest(ctx, testutil.BuildPDF("Some text."))
	var be *models.IndexBuildError
	if !errors.As(err, &be) || !models.IsRetryable(err) {
		t.Errorf("expected retryable IndexBuildError, got %v", err)
	}
	if vi != nil || res != nil {
		t.Error("failed ingestion must not return an index or result")
	}
}

func TestNew_invalidChunking(t *testing.T) {
	cfg := config.Default()
	overlap := cfg.Chunking.MaxSize
	cfg.Chunking.Overlap = &overlap
	if _, err := New(cfg, embedding.NewHashingEmbedder(8), nil); err == nil {
		t.Error("expected error for overlap >= max size")
	}
}

func TestNew_chunkingFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("chunking:\n  max_size: 300\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	idx, err := New(cfg, embedding.NewHashingEmbedder(8), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx.chunker.MaxSize() != 300 || idx.chunker.Overlap() != 50 {
		t.Errorf("chunker max_size=%d overlap=%d, want 300/50", idx.chunker.MaxSize(), idx.chunker.Overlap())
	}
}
