package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"hobbyhub/services/community/internal/entity"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ObjectStorage is the blob bucket images are uploaded to.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(url string) (string, bool)
}

var allowedImageTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// StagedFile is an image held in memory until the post is submitted.
type StagedFile struct {
	Name        string
	Ext         string
	ContentType string
	Data        []byte
}

type ImageStager struct {
	storage  ObjectStorage
	maxBytes int64
	now      func() time.Time
	suffix   func() string
}

func NewImageStager(storage ObjectStorage, maxBytes int64) *ImageStager {
	return &ImageStager{
		storage:  storage,
		maxBytes: maxBytes,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// StageMultipart stages the single file of an upload field. No files stages
// nothing; more than one is rejected.
func (s *ImageStager) StageMultipart(files []*multipart.FileHeader) (*StagedFile, error) {
	switch len(files) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, validationError("only one image may be attached")
	}

	src, err := files[0].Open()
	if err != nil {
		return nil, validationError(fmt.Sprintf("failed to open file: %v", err))
	}
	defer src.Close()

	return s.StageFile(files[0].Filename, files[0].Header.Get("Content-Type"), src)
}

// StageFile checks the name against the jpg/jpeg/png/gif allowlist, sniffs the
// bytes and keeps them in memory. It has no network effect.
func (s *ImageStager) StageFile(name, contentType string, r io.Reader) (*StagedFile, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	expected, ok := allowedImageTypes[strings.ToLower(ext)]
	if !ok {
		return nil, validationError(fmt.Sprintf("unsupported image type %q, allowed: jpg, jpeg, png, gif", name))
	}
	if contentType != "" && contentType != "application/octet-stream" && !strings.HasPrefix(contentType, "image/") {
		return nil, validationError(fmt.Sprintf("content type %q is not an image", contentType))
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, validationError(fmt.Sprintf("failed to read file: %v", err))
	}
	if int64(len(data)) > s.maxBytes {
		return nil, validationError(fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	if len(data) == 0 {
		return nil, validationError("image is empty")
	}

	detected := mimetype.Detect(data)
	if !detected.Is(expected) {
		return nil, validationError(fmt.Sprintf("file content is %s, expected %s", detected.String(), expected))
	}

	return &StagedFile{
		Name:        name,
		Ext:         ext,
		ContentType: expected,
		Data:        data,
	}, nil
}

// Key derives the storage key {unix-millis}-{suffix}.{ext}.
func (s *ImageStager) Key(file *StagedFile) string {
	return fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), s.suffix(), file.Ext)
}

// Upload stores the staged bytes and returns the templated public URL.
func (s *ImageStager) Upload(ctx context.Context, file *StagedFile) (string, error) {
	key := s.Key(file)
	if err := s.storage.PutObject(ctx, key, bytes.Clone(file.Data), file.ContentType); err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrUpload, err)
	}
	return s.storage.PublicURL(key), nil
}

// Discard removes an uploaded image by its public URL. URLs outside the
// bucket are ignored.
func (s *ImageStager) Discard(ctx context.Context, url string) error {
	key, ok := s.storage.KeyFromURL(url)
	if !ok {
		return nil
	}
	return s.storage.DeleteObject(ctx, key)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
}
