package embedding

import (
	"context"

	"github.com/hyperjump/docqa/pkg/utils"
)

// HashingEmbedder is a deterministic local embedder using signed feature hashing of word
// unigrams and bigrams. Texts sharing words get cosine-similar vectors, which is enough for
// offline use and tests; it does not capture meaning beyond lexical overlap.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns an embedder producing unit vectors of the given dimensions.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 512
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed returns the L2-normalized hashed feature vector of text. Text without any word
// tokens maps to the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceledError(err)
	}
	emb := make([]float32, e.dimensions)
	tokens := Tokens(text)
	for i, tok := range tokens {
		e.add(emb, tok, 1)
		if i > 0 {
			e.add(emb, tokens[i-1]+" "+tok, 0.5)
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

func (e *HashingEmbedder) add(emb []float32, feature string, weight float32) {
	h := HashString(feature)
	idx := int(h % uint64(e.dimensions))
	if h&(1<<63) != 0 {
		weight = -weight
	}
	emb[idx] += weight
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashingEmbedder.
func (e *HashingEmbedder) Close() error {
	return nil
}
