// Package fileid provides a deterministic document ID from uploaded file content.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
)

const prefix = "pdf:"

// DocumentID returns a stable ID for content. Identical bytes always yield the same ID,
// so re-uploading a document can be recognized.
func DocumentID(content []byte) string {
	hash := sha256.Sum256(content)
	return prefix + hex.EncodeToString(hash[:])
}
