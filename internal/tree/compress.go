package tree

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/flate"
)

// Deflate compresses data with raw DEFLATE (RFC 1951). The served
// "deflate" coding is this raw stream without the zlib (RFC 1950) wrapper
// that RFC 9110 names; browsers accept both forms.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("new deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}
	return buf.Bytes(), nil
}
