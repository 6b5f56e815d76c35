package vector

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/models"
)

// failingEmbedder fails any batch containing failOn and counts batch calls.
type failingEmbedder struct {
	*embedding.HashingEmbedder
	failOn    string
	retryable bool
	calls     atomic.Int32
}

func (e *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	for _, text := range texts {
		if text == e.failOn {
			return nil, &models.ProviderError{Reason: models.ReasonUnavailable, Retryable: e.retryable}
		}
	}
	return e.HashingEmbedder.EmbedBatch(ctx, texts)
}

// batchRecorder records the size of every EmbedBatch call and rejects single Embed calls.
type batchRecorder struct {
	*embedding.HashingEmbedder
	mu    sync.Mutex
	sizes []int
	short bool
}

func (e *batchRecorder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("builder must embed through EmbedBatch")
}

func (e *batchRecorder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.sizes = append(e.sizes, len(texts))
	e.mu.Unlock()
	vecs, err := e.HashingEmbedder.EmbedBatch(ctx, texts)
	if e.short && err == nil {
		vecs = vecs[:len(vecs)-1]
	}
	return vecs, err
}

func sampleChunks() []models.Chunk {
	texts := []string{
		"The capital of France is Paris.",
		"Berlin is the capital of Germany.",
		"Photosynthesis converts sunlight into chemical energy.",
		"Rivers flow downhill towards the sea.",
		"The Eiffel Tower stands in Paris.",
	}
	out := make([]models.Chunk, len(texts))
	for i, t := range texts {
		out[i] = models.Chunk{SourcePageIndex: i / 2, Ordinal: i, Text: t}
	}
	return out
}

func TestBuilder_selfRetrieval(t *testing.T) {
	for _, indexType := range []string{"memory", "chromem"} {
		t.Run(indexType, func(t *testing.T) {
			ctx := context.Background()
			emb := embedding.NewHashingEmbedder(256)
			b, err := NewBuilder(indexType, WithConcurrency(3), WithBatchSize(2))
			if err != nil {
				t.Fatalf("NewBuilder: %v", err)
			}
			chunks := sampleChunks()
			idx, err := b.Build(ctx, chunks, emb)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			defer idx.Close()
			if idx.Size() != len(chunks) {
				t.Errorf("Size=%d, want %d", idx.Size(), len(chunks))
			}
			if !reflect.DeepEqual(idx.Chunks(), chunks) {
				t.Errorf("Chunks()=%v, want %v", idx.Chunks(), chunks)
			}

			for _, c := range chunks {
				q, err := emb.Embed(ctx, c.Text)
				if err != nil {
					t.Fatalf("Embed: %v", err)
				}
				hits, err := idx.Search(ctx, q, 1)
				if err != nil {
					t.Fatalf("Search: %v", err)
				}
				if len(hits) != 1 || hits[0].Chunk != c {
					t.Errorf("self search for chunk %d: got %v", c.Ordinal, hits)
				}
			}
		})
	}
}

func TestBuilder_embedsInBatches(t *testing.T) {
	emb := &batchRecorder{HashingEmbedder: embedding.NewHashingEmbedder(256)}
	b, err := NewBuilder("memory", WithConcurrency(1), WithBatchSize(2))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	chunks := sampleChunks()
	idx, err := b.Build(context.Background(), chunks, emb)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []int{2, 2, 1}; !reflect.DeepEqual(emb.sizes, want) {
		t.Errorf("batch sizes=%v, want %v", emb.sizes, want)
	}
	// Vectors must land on the chunk they were computed from.
	for _, c := range chunks {
		q, _ := emb.HashingEmbedder.Embed(context.Background(), c.Text)
		hits, err := idx.Search(context.Background(), q, 1)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if hits[0].Chunk.Ordinal != c.Ordinal {
			t.Errorf("chunk %d: top hit is chunk %d", c.Ordinal, hits[0].Chunk.Ordinal)
		}
	}
}

func TestBuilder_shortBatchResponse(t *testing.T) {
	emb := &batchRecorder{HashingEmbedder: embedding.NewHashingEmbedder(8), short: true}
	b, _ := NewBuilder("memory", WithBatchSize(4))
	idx, err := b.Build(context.Background(), sampleChunks(), emb)
	if idx != nil {
		t.Error("expected no index")
	}
	var be *models.IndexBuildError
	if !errors.As(err, &be) || be.Reason != models.ReasonEmbeddingFailed {
		t.Fatalf("expected embedding-failed IndexBuildError, got %v", err)
	}
	var pe *models.ProviderError
	if !errors.As(err, &pe) || pe.Reason != models.ReasonBadResponse {
		t.Errorf("expected bad-response ProviderError, got %v", err)
	}
}

func TestBuilder_idempotent(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewHashingEmbedder(128)
	b, err := NewBuilder("memory", WithConcurrency(4))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	first, err := b.Build(ctx, sampleChunks(), emb)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := b.Build(ctx, sampleChunks(), emb)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	q, _ := emb.Embed(ctx, "capital city Paris")
	r1, err := first.Search(ctx, q, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	r2, err := second.Search(ctx, q, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(r1) != len(r2) {
		t.Fatalf("len(r1)=%d len(r2)=%d", len(r1), len(r2))
	}
	for i := range r1 {
		if r1[i].Chunk != r2[i].Chunk || r1[i].Score != r2[i].Score {
			t.Errorf("result %d differs: %v vs %v", i, r1[i], r2[i])
		}
	}
	for i := 1; i < len(r1); i++ {
		if r1[i-1].Score < r1[i].Score {
			t.Errorf("results not sorted at %d: %f < %f", i, r1[i-1].Score, r1[i].Score)
		}
	}
}

func TestBuilder_noChunks(t *testing.T) {
	b, err := NewBuilder("memory")
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	_, err = b.Build(context.Background(), nil, embedding.NewHashingEmbedder(8))
	var be *models.IndexBuildError
	if !errors.As(err, &be) || be.Reason != models.ReasonNoChunks {
		t.Errorf("expected no-chunks IndexBuildError, got %v", err)
	}
}

func TestBuilder_blankChunkRejected(t *testing.T) {
	b, _ := NewBuilder("memory")
	chunks := []models.Chunk{{Ordinal: 0, Text: "ok"}, {Ordinal: 1, Text: "  \n "}}
	_, err := b.Build(context.Background(), chunks, embedding.NewHashingEmbedder(8))
	var be *models.IndexBuildError
	if !errors.As(err, &be) || be.Reason != models.ReasonEmptyChunk {
		t.Errorf("expected empty-chunk IndexBuildError, got %v", err)
	}
}

func TestBuilder_embeddingFailureAbortsBuild(t *testing.T) {
	chunks := sampleChunks()
	emb := &failingEmbedder{HashingEmbedder: embedding.NewHashingEmbedder(16), failOn: chunks[2].Text, retryable: true}
	b, _ := NewBuilder("memory", WithConcurrency(1), WithBatchSize(1))
	idx, err := b.Build(context.Background(), chunks, emb)
	if idx != nil {
		t.Error("expected no index")
	}
	var be *models.IndexBuildError
	if !errors.As(err, &be) || be.Reason != models.ReasonEmbeddingFailed {
		t.Fatalf("expected embedding-failed IndexBuildError, got %v", err)
	}
	var pe *models.ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("expected wrapped ProviderError, got %v", err)
	}
	if !models.IsRetryable(err) {
		t.Error("expected retryable error")
	}
	// With one worker, batches after the failing one are never embedded.
	if n := emb.calls.Load(); n > 4 {
		t.Errorf("calls=%d, want <= 4", n)
	}
}

func TestBuilder_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, _ := NewBuilder("memory")
	_, err := b.Build(ctx, sampleChunks(), embedding.NewHashingEmbedder(8))
	var be *models.IndexBuildError
	if !errors.As(err, &be) || be.Reason != models.ReasonCanceled {
		t.Errorf("expected canceled IndexBuildError, got %v", err)
	}
}

func TestNewBuilder_unknownType(t *testing.T) {
	_, err := NewBuilder("faiss")
	var ia *models.InvalidArgumentError
	if !errors.As(err, &ia) {
		t.Errorf("expected InvalidArgumentError, got %v", err)
	}
}

func BenchmarkMemoryIndexSearch(b *testing.B) {
	entries := make([]Entry, 1000)
	for i := range entries {
		vec := make([]float32, 384)
		vec[0] = float32(i) / 1000
		vec[1] = 1
		entries[i] = Entry{Chunk: models.Chunk{Ordinal: i, Text: fmt.Sprintf("chunk %d", i)}, Vector: vec}
	}
	idx, _ := NewMemoryIndex(entries)
	query := make([]float32, 384)
	query[0] = 1.0
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Search(ctx, query, 4)
	}
}
