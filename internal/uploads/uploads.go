package uploads

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/storage"
)

// Capacity is the maximum number of images held per scope.
const Capacity = domain.MaxTrainingImages

var allowedExt = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".heic": {}}

// Store keeps an ordered sequence of uploaded images per scope.
type Store struct {
	files *storage.FileStore
	now   func() time.Time

	mu     sync.Mutex
	scopes map[string][]domain.UploadedImage
}

// NewStore returns a Store. files may be nil, in which case AddFile fails.
func NewStore(files *storage.FileStore) *Store {
	return &Store{
		files:  files,
		now:    func() time.Time { return time.Now().UTC() },
		scopes: make(map[string][]domain.UploadedImage),
	}
}

// Add appends an image referenced by uri.
func (s *Store) Add(scope, uri string) (domain.UploadedImage, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return domain.UploadedImage{}, domain.Invalid(domain.CodeEmptyImageURI, "uri", "image uri is empty")
	}
	return s.append(scope, domain.UploadedImage{ID: uuid.NewString(), URI: uri, CreatedAt: s.now()})
}

// AddFile stores data through the file store and appends the stored image.
func (s *Store) AddFile(ctx context.Context, scope, filename string, data []byte) (domain.UploadedImage, error) {
	if s.files == nil {
		return domain.UploadedImage{}, fmt.Errorf("uploads: file storage not configured")
	}
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := allowedExt[ext]; !ok {
		return domain.UploadedImage{}, domain.Invalid(domain.CodeUnsupportedFile, "file", ext)
	}
	if len(data) == 0 {
		return domain.UploadedImage{}, domain.Invalid(domain.CodeUnsupportedFile, "file", "empty file")
	}
	if err := s.checkCapacity(scope); err != nil {
		return domain.UploadedImage{}, err
	}
	id := uuid.NewString()
	key, err := s.files.Write(ctx, path.Join("uploads", scopeDir(scope), id+ext), data)
	if err != nil {
		return domain.UploadedImage{}, err
	}
	img, err := s.append(scope, domain.UploadedImage{ID: id, URI: s.files.URL(key), StorageKey: key, CreatedAt: s.now()})
	if err != nil {
		_ = s.files.Delete(ctx, key)
	}
	return img, err
}

func (s *Store) checkCapacity(scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.scopes[scope]) >= Capacity {
		return fmt.Errorf("%w: at most %d images", domain.ErrCapacityExceeded, Capacity)
	}
	return nil
}

func (s *Store) append(scope string, img domain.UploadedImage) (domain.UploadedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.scopes[scope]) >= Capacity {
		return domain.UploadedImage{}, fmt.Errorf("%w: at most %d images", domain.ErrCapacityExceeded, Capacity)
	}
	s.scopes[scope] = append(s.scopes[scope], img)
	return img, nil
}

// Remove deletes the image with id from scope.
func (s *Store) Remove(ctx context.Context, scope, id string) error {
	s.mu.Lock()
	list := s.scopes[scope]
	idx := -1
	for i, img := range list {
		if img.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("upload %s: %w", id, domain.ErrNotFound)
	}
	removed := list[idx]
	s.scopes[scope] = append(list[:idx:idx], list[idx+1:]...)
	s.mu.Unlock()

	if removed.StorageKey != "" && s.files != nil {
		return s.files.Delete(ctx, removed.StorageKey)
	}
	return nil
}

// List returns the images of scope in upload order.
func (s *Store) List(scope string) []domain.UploadedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.UploadedImage(nil), s.scopes[scope]...)
}

// URIs returns the image references of scope in upload order.
func (s *Store) URIs(scope string) []string {
	list := s.List(scope)
	out := make([]string, 0, len(list))
	for _, img := range list {
		out = append(out, img.URI)
	}
	return out
}

// Clear removes every image of scope.
func (s *Store) Clear(ctx context.Context, scope string) error {
	s.mu.Lock()
	list := s.scopes[scope]
	delete(s.scopes, scope)
	s.mu.Unlock()
	if s.files == nil {
		return nil
	}
	for _, img := range list {
		if img.StorageKey == "" {
			continue
		}
		if err := s.files.Delete(ctx, img.StorageKey); err != nil {
			return err
		}
	}
	return nil
}

func scopeDir(scope string) string {
	return strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(scope)
}
