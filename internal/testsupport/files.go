package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteCachePage seeds a cached page under dir so fetch-dependent code can
// run without a network round trip.
func WriteCachePage(t testing.TB, dir, key, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, key+".html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
