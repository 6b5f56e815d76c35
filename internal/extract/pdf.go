package extract

import (
	"bytes"
	"fmt"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/ledongthuc/pdf"
)

// extractPDFPages returns one PageRecord per page in document order. Pages whose
// text cannot be found come back with empty Text; structural failures are *models.LoadError.
func extractPDFPages(content []byte) (pages []models.PageRecord, err error) {
	// The pdf package panics on some corrupt object streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &models.LoadError{Reason: models.ReasonMalformedDocument, Err: fmt.Errorf("decode: %v", r)}
		}
	}()
	if !bytes.HasPrefix(bytes.TrimLeft(content, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, &models.LoadError{Reason: models.ReasonMalformedDocument, Err: fmt.Errorf("missing %%PDF header")}
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &models.LoadError{Reason: models.ReasonMalformedDocument, Err: fmt.Errorf("open PDF: %w", err)}
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return nil, &models.LoadError{Reason: models.ReasonMalformedDocument, Err: fmt.Errorf("no pages")}
	}
	pages = make([]models.PageRecord, 0, numPages)
	for i := 0; i < numPages; i++ {
		rec := models.PageRecord{PageIndex: i}
		page := r.Page(i + 1)
		if !page.V.IsNull() && !page.V.Key("Contents").IsNull() {
			text, err := page.GetPlainText(nil)
			if err != nil {
				return nil, &models.LoadError{Reason: models.ReasonMalformedDocument, Err: fmt.Errorf("extract page %d: %w", i+1, err)}
			}
			rec.Text = text
		}
		pages = append(pages, rec)
	}
	return pages, nil
}
