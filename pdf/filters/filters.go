// Package filters implements the stream filters used by generated
// documents. Content streams are Flate-compressed; nothing else is
// needed for writing.
package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateName is the PDF name of the Flate filter.
const FlateName = "FlateDecode"

// FlateEncode compresses data with zlib at the default level.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("flate encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flate encode: %w", err)
	}
	return buf.Bytes(), nil
}

// FlateDecode decompresses zlib-wrapped stream data.
func FlateDecode(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate decode: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("flate decode: %w", err)
	}
	return out, nil
}
