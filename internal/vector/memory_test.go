package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/docqa/internal/models"
)

func entry(ordinal int, vec ...float32) Entry {
	return Entry{Chunk: models.Chunk{Ordinal: ordinal, Text: "chunk"}, Vector: vec}
}

func TestMemoryIndex_Search(t *testing.T) {
	idx, err := NewMemoryIndex([]Entry{
		entry(0, 1, 0, 0),
		entry(1, 0.9, 0.1, 0),
		entry(2, 0, 1, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	if idx.Size() != 3 || idx.Dimensions() != 3 {
		t.Errorf("Size=%d Dimensions=%d", idx.Size(), idx.Dimensions())
	}

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.Ordinal != 0 || results[1].Chunk.Ordinal != 1 {
		t.Errorf("unexpected order: %+v", results)
	}
	if results[0].Score < results[1].Score {
		t.Error("scores should be non-increasing")
	}
}

func TestMemoryIndex_cosineIgnoresMagnitude(t *testing.T) {
	idx, _ := NewMemoryIndex([]Entry{entry(0, 10, 0), entry(1, 0.5, 0.5)})
	results, err := idx.Search(context.Background(), []float32{3, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Chunk.Ordinal != 0 {
		t.Errorf("top=%d", results[0].Chunk.Ordinal)
	}
	if results[0].Score < 0.999 || results[0].Score > 1.0001 {
		t.Errorf("score=%f, want 1", results[0].Score)
	}
}

func TestMemoryIndex_tiesBrokenByOrdinal(t *testing.T) {
	idx, _ := NewMemoryIndex([]Entry{entry(3, 0, 1), entry(1, 0, 1), entry(2, 0, 1), entry(0, 1, 0)})
	results, err := idx.Search(context.Background(), []float32{0, 1}, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3, 0}
	for i, w := range want {
		if results[i].Chunk.Ordinal != w {
			t.Errorf("result %d ordinal=%d, want %d", i, results[i].Chunk.Ordinal, w)
		}
	}
}

func TestMemoryIndex_kLargerThanSize(t *testing.T) {
	idx, _ := NewMemoryIndex([]Entry{entry(0, 1, 0), entry(1, 0, 1)})
	results, err := idx.Search(context.Background(), []float32{1, 1}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected all 2 entries, got %d", len(results))
	}
}

func TestMemoryIndex_invalidSearch(t *testing.T) {
	idx, _ := NewMemoryIndex([]Entry{entry(0, 1, 0)})
	ctx := context.Background()
	for _, k := range []int{0, -1} {
		_, err := idx.Search(ctx, []float32{1, 0}, k)
		var ia *models.InvalidArgumentError
		if !errors.As(err, &ia) {
			t.Errorf("k=%d: expected InvalidArgumentError, got %v", k, err)
		}
	}
	if _, err := idx.Search(ctx, []float32{1, 0, 0}, 1); err == nil {
		t.Error("expected error for query dimension mismatch")
	}
}

func TestNewMemoryIndex_errors(t *testing.T) {
	var be *models.IndexBuildError
	if _, err := NewMemoryIndex(nil); !errors.As(err, &be) || be.Reason != models.ReasonNoChunks {
		t.Errorf("expected no-chunks, got %v", err)
	}
	if _, err := NewMemoryIndex([]Entry{entry(0, 1, 0), entry(1, 1)}); !errors.As(err, &be) || be.Reason != models.ReasonDimensionMismatch {
		t.Errorf("expected dimension-mismatch, got %v", err)
	}
}

func TestMemoryIndex_copiesVectors(t *testing.T) {
	vec := []float32{1, 0}
	idx, _ := NewMemoryIndex([]Entry{{Chunk: models.Chunk{Text: "a"}, Vector: vec}})
	vec[0], vec[1] = 0, 1
	results, _ := idx.Search(context.Background(), []float32{1, 0}, 1)
	if results[0].Score < 0.999 {
		t.Errorf("index should not alias caller vectors, score=%f", results[0].Score)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if s := CosineSimilarity([]float32{1, 0}, []float32{2, 0}); s < 0.999 {
		t.Errorf("parallel: %f", s)
	}
	if s := CosineSimilarity([]float32{1, 0}, []float32{-1, 0}); s > -0.999 {
		t.Errorf("opposite: %f", s)
	}
	if s := CosineSimilarity([]float32{0, 0}, []float32{1, 0}); s != 0 {
		t.Errorf("zero vector: %f", s)
	}
}
