package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/docqa/internal/models"
)

func TestChromemIndex_Search(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(ctx, []Entry{
		{Chunk: models.Chunk{Ordinal: 0, SourcePageIndex: 0, Text: "alpha"}, Vector: []float32{1, 0, 0}},
		{Chunk: models.Chunk{Ordinal: 1, SourcePageIndex: 0, Text: "beta"}, Vector: []float32{0.8, 0.2, 0}},
		{Chunk: models.Chunk{Ordinal: 2, SourcePageIndex: 1, Text: "gamma"}, Vector: []float32{0, 0, 1}},
	}, 2)
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	defer idx.Close()

	if idx.Size() != 3 || idx.Dimensions() != 3 {
		t.Errorf("Size=%d Dimensions=%d, want 3 and 3", idx.Size(), idx.Dimensions())
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits)=%d, want 2", len(hits))
	}
	if hits[0].Chunk.Text != "alpha" || hits[1].Chunk.Text != "beta" {
		t.Errorf("hits=%q,%q, want alpha,beta", hits[0].Chunk.Text, hits[1].Chunk.Text)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %f < %f", hits[0].Score, hits[1].Score)
	}

	all, err := idx.Search(ctx, []float32{0, 0, 1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("k larger than size: got %d hits, want 3", len(all))
	}
	if all[0].Chunk.SourcePageIndex != 1 {
		t.Errorf("top hit page=%d, want 1", all[0].Chunk.SourcePageIndex)
	}
}

func TestChromemIndex_tiesBrokenByOrdinal(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(ctx, []Entry{
		{Chunk: models.Chunk{Ordinal: 2, Text: "c"}, Vector: []float32{0, 1}},
		{Chunk: models.Chunk{Ordinal: 0, Text: "a"}, Vector: []float32{0, 1}},
		{Chunk: models.Chunk{Ordinal: 1, Text: "b"}, Vector: []float32{0, 1}},
	}, 1)
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	hits, err := idx.Search(ctx, []float32{0, 1}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if hits[i].Chunk.Text != want {
			t.Errorf("hit %d=%q, want %q", i, hits[i].Chunk.Text, want)
		}
	}
}

func TestChromemIndex_invalidK(t *testing.T) {
	idx, err := NewChromemIndex(context.Background(), []Entry{entry(0, 1, 0)}, 1)
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	_, err = idx.Search(context.Background(), []float32{1, 0}, 0)
	var ia *models.InvalidArgumentError
	if !errors.As(err, &ia) {
		t.Errorf("expected InvalidArgumentError, got %v", err)
	}
}

func TestChromemIndex_separateCollections(t *testing.T) {
	ctx := context.Background()
	a, err := NewChromemIndex(ctx, []Entry{entry(0, 1, 0)}, 1)
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	b, err := NewChromemIndex(ctx, []Entry{entry(0, 0, 1), entry(1, 1, 1)}, 1)
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	if a.Size() != 1 || b.Size() != 2 {
		t.Errorf("sizes=%d,%d, want 1,2", a.Size(), b.Size())
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if b.Size() != 2 {
		t.Errorf("closing one index changed another: Size=%d", b.Size())
	}
}
