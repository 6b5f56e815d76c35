// Package models defines core data structures for pages, chunks, chat turns, and answers.
package models

// PageRecord is the extracted text of one PDF page. PageIndex is 0-based in document order.
type PageRecord struct {
	PageIndex int    `json:"page_index"`
	Text      string `json:"text"`
}

// Chunk is a bounded window of page text, the unit of embedding and retrieval.
// Ordinal is 0-based and monotonic across the whole document.
type Chunk struct {
	SourcePageIndex int    `json:"page"`
	Ordinal         int    `json:"ordinal"`
	Text            string `json:"text"`
}

// ScoredChunk is a single vector search hit.
type ScoredChunk struct {
	Chunk Chunk
	Score float64 // cosine similarity, -1..1
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry of a session's chat history.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AnswerResult is a synthesized answer and the context chunks it was grounded on.
type AnswerResult struct {
	Text        string  `json:"answer"`
	UsedContext []Chunk `json:"context"`
}

// ContextTexts returns the text of each context chunk in retrieval order.
func (a *AnswerResult) ContextTexts() []string {
	out := make([]string, len(a.UsedContext))
	for i, c := range a.UsedContext {
		out[i] = c.Text
	}
	return out
}
