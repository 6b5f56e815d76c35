// Package cli provides CLI output helpers for docqa.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/docqa/internal/indexer"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
)

// OutputFormat is the format for answer output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ContextRule separates context chunks in text output.
const ContextRule = "--------------------------------"

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", models.InvalidArgument("output", "must be %q or %q, got %q", OutputText, OutputJSON, s)
	}
}

// WriteAnswer writes an answer and its supporting context to w.
// Context chunks longer than maxContext runes are shortened in text output; 0 disables shortening.
func WriteAnswer(w io.Writer, result *models.AnswerResult, format OutputFormat, maxContext int) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeAnswerText(w, result, maxContext)
		return nil
	}
}

func writeAnswerText(w io.Writer, result *models.AnswerResult, maxContext int) {
	fmt.Fprintf(w, "\n%s\n", result.Text)
	if len(result.UsedContext) == 0 {
		return
	}
	fmt.Fprintf(w, "\nContext (%d chunks):\n", len(result.UsedContext))
	for i, c := range result.UsedContext {
		if i > 0 {
			fmt.Fprintln(w, ContextRule)
		}
		fmt.Fprintf(w, "[page %d, chunk %d]\n", c.SourcePageIndex+1, c.Ordinal)
		fmt.Fprintln(w, utils.Truncate(c.Text, maxContext))
	}
}

// WriteIngestResult writes a one-line ingestion summary to w.
func WriteIngestResult(w io.Writer, res *indexer.IngestResult) {
	fmt.Fprintf(w, "Processed %s: %d pages (%d empty), %d chunks in %s\n",
		res.DocumentID, res.Pages, res.EmptyPages, res.Chunks, res.Duration.Round(time.Millisecond))
}
