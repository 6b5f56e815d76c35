// Package extract provides the document loader that turns PDF bytes into page text.
package extract

import (
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// Loader parses PDF documents into page records.
type Loader struct {
	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for debug output (page counts, empty pages).
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader returns a new Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{}
	for _, opt := range opts {
		opt(ld)
	}
	ld.logger = utils.LoggerOrNop(ld.logger)
	return ld
}

// Load parses content as a PDF and returns one PageRecord per page, in page order.
// Pages with no extractable text are returned with empty Text rather than failing.
// Returns a *models.LoadError when content is not a structurally valid PDF.
func (ld *Loader) Load(content []byte) ([]models.PageRecord, error) {
	pages, err := extractPDFPages(content)
	if err != nil {
		return nil, err
	}
	empty := 0
	for _, p := range pages {
		if utils.IsBlank(p.Text) {
			empty++
			ld.logger.Debug("page has no extractable text", zap.Int("page_index", p.PageIndex))
		}
	}
	ld.logger.Debug("pdf loaded", zap.Int("pages", len(pages)), zap.Int("empty_pages", empty))
	return pages, nil
}
