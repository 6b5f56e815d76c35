package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/docqa/internal/models"
)

func TestNewVectorIndex_Memory(t *testing.T) {
	idx, err := NewVectorIndex(context.Background(), "memory", []Entry{entry(0, 1, 0, 0)}, 1)
	if err != nil {
		t.Fatalf("NewVectorIndex(memory): %v", err)
	}
	defer idx.Close()
	if idx.Size() != 1 || idx.Type() != "memory" {
		t.Errorf("Size=%d Type=%s", idx.Size(), idx.Type())
	}
}

func TestNewVectorIndex_Empty(t *testing.T) {
	// Empty string should default to memory
	idx, err := NewVectorIndex(context.Background(), "", []Entry{entry(0, 1)}, 1)
	if err != nil {
		t.Fatalf("NewVectorIndex(''): %v", err)
	}
	defer idx.Close()
	if _, ok := idx.(*MemoryIndex); !ok {
		t.Errorf("expected *MemoryIndex, got %T", idx)
	}
}

func TestNewVectorIndex_Chromem(t *testing.T) {
	idx, err := NewVectorIndex(context.Background(), "chromem", []Entry{entry(0, 1, 0)}, 2)
	if err != nil {
		t.Fatalf("NewVectorIndex(chromem): %v", err)
	}
	defer idx.Close()
	if _, ok := idx.(*ChromemIndex); !ok {
		t.Errorf("expected *ChromemIndex, got %T", idx)
	}
}

func TestNewVectorIndex_Unknown(t *testing.T) {
	_, err := NewVectorIndex(context.Background(), "faiss", []Entry{entry(0, 1)}, 1)
	var ia *models.InvalidArgumentError
	if !errors.As(err, &ia) {
		t.Fatalf("expected InvalidArgumentError for unknown index type, got %v", err)
	}
	if ia.Field != "index_type" {
		t.Errorf("Field=%q, want index_type", ia.Field)
	}
}
