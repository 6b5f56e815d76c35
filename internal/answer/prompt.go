package answer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/tmc/langchaingo/prompts"
)

// DefaultTemplate is the built-in QA prompt. {{.context}} receives the retrieved chunk
// texts and {{.input}} the question, verbatim.
const DefaultTemplate = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If the context does not contain the answer, just say that you don't know. Always give the answer in detail with a clear explanation, and keep the answer concise.
<context>
{{.context}}
</context>
Question: {{.input}}`

// ContextSeparator joins chunk texts inside the prompt.
const ContextSeparator = "\n\n"

// Prompt renders the QA prompt.
type Prompt struct {
	template prompts.PromptTemplate
}

// NewPrompt parses template, or DefaultTemplate when template is empty. The template must
// reference both {{.context}} and {{.input}}.
func NewPrompt(template string) (*Prompt, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	for _, v := range []string{"{{.context}}", "{{.input}}"} {
		if !strings.Contains(template, v) {
			return nil, models.InvalidArgument("prompt.template", "must contain %s", v)
		}
	}
	pt := prompts.NewPromptTemplate(template, []string{"context", "input"})
	if _, err := pt.Format(map[string]any{"context": "", "input": ""}); err != nil {
		return nil, models.InvalidArgument("prompt.template", "%v", err)
	}
	return &Prompt{template: pt}, nil
}

// Format renders the prompt for question over chunks, in the given order.
func (p *Prompt) Format(question string, chunks []models.Chunk) (string, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	out, err := p.template.Format(map[string]any{
		"context": strings.Join(texts, ContextSeparator),
		"input":   question,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out, nil
}
