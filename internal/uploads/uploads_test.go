package uploads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"studio/internal/domain"
	"studio/internal/storage"
)

func TestStoreOrderAndRemove(t *testing.T) {
	s := NewStore(nil)
	var ids []string
	for i := 0; i < 3; i++ {
		img, err := s.Add("u1:training", fmt.Sprintf("file:///%d.jpg", i))
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		ids = append(ids, img.ID)
	}
	if err := s.Remove(context.Background(), "u1:training", ids[1]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	uris := s.URIs("u1:training")
	if len(uris) != 2 || uris[0] != "file:///0.jpg" || uris[1] != "file:///2.jpg" {
		t.Fatalf("URIs() = %v", uris)
	}
	if err := s.Remove(context.Background(), "u1:training", ids[1]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Remove error = %v", err)
	}
	if got := s.List("u2:training"); len(got) != 0 {
		t.Fatalf("scopes must be independent, got %v", got)
	}
}

func TestStoreCapacity(t *testing.T) {
	s := NewStore(nil)
	for i := 0; i < Capacity; i++ {
		if _, err := s.Add("scope", fmt.Sprintf("file:///%d.jpg", i)); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
	if _, err := s.Add("scope", "file:///extra.jpg"); !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("Add over capacity error = %v", err)
	}
	if _, err := s.Add("scope", " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Add blank error = %v", err)
	}
}

func TestStoreAddFileAndClear(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir, "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s := NewStore(files)
	ctx := context.Background()

	img, err := s.AddFile(ctx, "u1:training", "Face.JPG", []byte("data"))
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if img.StorageKey != "uploads/u1_training/"+img.ID+".jpg" {
		t.Fatalf("storage key = %q", img.StorageKey)
	}
	if img.URI != "http://localhost:8080/static/"+img.StorageKey {
		t.Fatalf("uri = %q", img.URI)
	}
	if _, err := s.AddFile(ctx, "u1:training", "notes.txt", []byte("x")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("AddFile txt error = %v", err)
	}

	if err := s.Clear(ctx, "u1:training"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(s.List("u1:training")) != 0 {
		t.Fatal("Clear must empty the scope")
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(img.StorageKey))); !os.IsNotExist(err) {
		t.Fatalf("stored file still present: %v", err)
	}
}
