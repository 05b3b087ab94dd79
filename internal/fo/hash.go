package fo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// hashBlockSize is the read granularity for streaming hashes, so memory use
// is independent of file size.
const hashBlockSize = 64 * 1024

// Hasher produces content fingerprints. Fingerprint is the collision-resistant
// digest used as the deduplication key; QuickSum is a cheap non-cryptographic
// sum used only to prefilter candidate groups before fingerprinting.
type Hasher interface {
	Fingerprint(path string) (string, error)
	QuickSum(path string) (uint64, error)
}

// ContentHasher streams files from disk in fixed-size blocks.
type ContentHasher struct{}

func NewContentHasher() *ContentHasher { return &ContentHasher{} }

// Fingerprint returns the hex-encoded SHA-256 of the file's full content.
func (h *ContentHasher) Fingerprint(path string) (string, error) {
	digest := sha256.New()
	if err := streamFile(path, digest); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// QuickSum returns the xxhash64 of the file's full content.
func (h *ContentHasher) QuickSum(path string) (uint64, error) {
	digest := xxhash.New()
	if err := streamFile(path, digest); err != nil {
		return 0, err
	}
	return digest.Sum64(), nil
}

func streamFile(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapOSError(err)
	}
	defer f.Close()

	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		return fmt.Errorf("reading %s: %w", path, WrapOSError(err))
	}
	return nil
}
