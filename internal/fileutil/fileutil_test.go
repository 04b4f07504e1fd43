package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyVerifiedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.gif")
	dst := filepath.Join(dir, "dst.gif")
	payload := []byte("GIF89a not really, but bytes are bytes")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyVerified(src, dst); err != nil {
		t.Fatalf("CopyVerified: %v", err)
	}
	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(copied) != string(payload) {
		t.Fatal("copied content differs from source")
	}
}

func TestCopyVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyVerified(filepath.Join(dir, "absent"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}
