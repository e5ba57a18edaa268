// Package blobstore stores incident photo attachments. It defines the
// PhotoStore port consumed by the incident intake handler and an in-memory
// implementation used in development and tests; a production deployment
// plugs an object-storage implementation into the same interface.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// DefaultMaxPhotoBytes is the fallback size cap when the store is built
// without an explicit limit.
const DefaultMaxPhotoBytes = 10 * 1024 * 1024

// AllowedContentTypes lists accepted photo MIME types.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
}

// PhotoMeta describes a stored photo.
type PhotoMeta struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// PhotoStore is the storage port for incident photos.
type PhotoStore interface {
	// Save validates and stores a photo, returning its metadata. The
	// returned URL is what gets persisted on the incident row.
	Save(ctx context.Context, fileName, contentType string, r io.Reader) (*PhotoMeta, error)
	// Get returns the metadata and content for a stored photo.
	Get(ctx context.Context, id string) (*PhotoMeta, []byte, error)
	// Delete removes a stored photo.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory PhotoStore.
type MemoryStore struct {
	mu       sync.RWMutex
	metas    map[string]*PhotoMeta
	contents map[string][]byte
	maxBytes int64
}

// NewMemoryStore creates a MemoryStore with the given size cap; maxBytes <= 0
// selects DefaultMaxPhotoBytes.
func NewMemoryStore(maxBytes int64) *MemoryStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPhotoBytes
	}
	return &MemoryStore{
		metas:    make(map[string]*PhotoMeta),
		contents: make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

func (s *MemoryStore) Save(_ context.Context, fileName, contentType string, r io.Reader) (*PhotoMeta, error) {
	if fileName == "" {
		return nil, ErrMissingFileName
	}
	if !AllowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, s.maxBytes+1)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if n > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	sum := sha256.Sum256(buf.Bytes())
	meta := &PhotoMeta{
		ID:          uuid.New().String(),
		FileName:    fileName,
		ContentType: contentType,
		Size:        n,
		Hash:        hex.EncodeToString(sum[:]),
		CreatedAt:   time.Now().UTC(),
	}
	meta.URL = "/api/v1/photos/" + meta.ID

	s.mu.Lock()
	s.metas[meta.ID] = meta
	s.contents[meta.ID] = buf.Bytes()
	s.mu.Unlock()

	return meta, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*PhotoMeta, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.metas[id]
	if !ok {
		return nil, nil, ErrPhotoNotFound
	}
	return meta, s.contents[id], nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.metas[id]; !ok {
		return ErrPhotoNotFound
	}
	delete(s.metas, id)
	delete(s.contents, id)
	return nil
}

var _ PhotoStore = (*MemoryStore)(nil)
