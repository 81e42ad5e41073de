package webcache

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// decodeBody reverses the Content-Encoding applied to a response body.
// When decoding fails the raw bytes are returned alongside the error so the
// caller can decide whether they are still usable.
func decodeBody(raw []byte, encoding string) ([]byte, error) {
	var reader io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(bytes.NewReader(raw))
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(bytes.NewReader(raw))
	default:
		return raw, fmt.Errorf("unsupported content encoding %q", encoding)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return raw, fmt.Errorf("decode %s body: %w", encoding, err)
	}
	return decoded, nil
}

// looksLikeHTML reports whether content starts with an HTML document marker.
// The check is intentionally shallow so interstitial or error pages served
// with a 200 status are rejected instead of cached.
func looksLikeHTML(content string) bool {
	head := strings.ToLower(content)
	if len(head) > 100 {
		head = head[:100]
	}
	return strings.Contains(head, "<!doctype") || strings.Contains(head, "<html")
}
