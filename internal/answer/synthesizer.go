// Package answer provides the answer synthesizer: it grounds a language model on
// retrieved chunks and the chat history to answer a question.
package answer

import (
	"context"

	"github.com/hyperjump/docqa/internal/models"
)

// Synthesizer produces an answer to question from contextChunks. Failures are
// *models.SynthesisError.
type Synthesizer interface {
	Answer(ctx context.Context, question string, contextChunks []models.Chunk, history []models.ChatTurn) (*models.AnswerResult, error)
}
