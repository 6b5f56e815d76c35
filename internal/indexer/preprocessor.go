package indexer

import (
	"strings"
	"unicode"
)

// Preprocess normalizes page text for chunking: trims it and collapses every whitespace
// run, including the line breaks PDF extraction leaves between text runs, to one space.
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
