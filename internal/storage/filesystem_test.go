package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "uploads/u1/a.jpg", want: "uploads/u1/a.jpg"},
		{in: "/uploads//u1/./a.jpg", want: "uploads/u1/a.jpg"},
		{in: `uploads\u1\a.jpg`, want: "uploads/u1/a.jpg"},
		{in: "../etc/passwd", wantErr: true},
		{in: "uploads/../../x", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tc := range tests {
		got, err := sanitizeKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestFileStoreWriteURLDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "uploads/u1/photo.jpg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "uploads", "u1", "photo.jpg"))
	if err != nil || string(data) != "jpeg" {
		t.Fatalf("file contents = %q, %v", data, err)
	}
	if got := store.URL(key); got != "http://localhost:8080/static/uploads/u1/photo.jpg" {
		t.Fatalf("URL() = %q", got)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "uploads", "u1", "photo.jpg")); !os.IsNotExist(err) {
		t.Fatalf("file still present: %v", err)
	}
}
