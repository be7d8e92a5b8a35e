package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for image.DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "golang.org/x/image/webp"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/storage"
)

// allowedImageTypes maps accepted MIME types to the extension stored in the key.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUpload is an image file chosen in the tie form.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ImageService stores tie images in an object store.
type ImageService struct {
	store  storage.ObjectStore
	logger *slog.Logger
	newID  func() (string, error)
}

// NewImageService constructs an ImageService writing to store.
func NewImageService(store storage.ObjectStore, logger *slog.Logger) *ImageService {
	return &ImageService{
		store:  store,
		logger: logger,
		newID:  func() (string, error) { return gonanoid.New() },
	}
}

// Validate checks that img is a decodable jpeg, png, gif or webp image and
// returns its MIME type and key extension.
func (s *ImageService) Validate(img ImageUpload) (contentType, ext string, err error) {
	invalid := func(msg string) error {
		return domain.ValidationErrors{{Field: "image", Message: msg}}
	}
	if len(img.Data) == 0 {
		return "", "", invalid("is empty")
	}

	mtype := mimetype.Detect(img.Data)
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", "", invalid("must be a jpeg, png, gif or webp image")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
		return "", "", invalid("could not be decoded")
	}
	return mtype.String(), ext, nil
}

// Upload stores img under ties/<ownerID>/<recordID>/ and returns its public URL.
// A previous image is deleted first; failing to delete it is logged and the
// upload goes ahead.
func (s *ImageService) Upload(ctx context.Context, ownerID string, img ImageUpload, recordID, previousURL string) (string, error) {
	contentType, ext, err := s.Validate(img)
	if err != nil {
		return "", err
	}

	if err := s.Delete(ctx, previousURL); err != nil {
		s.logger.WarnContext(ctx, "failed to delete previous image",
			"url", previousURL,
			"record_id", recordID,
			"error", err,
		)
	}

	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("service.ImageService.Upload: generate id: %w", err)
	}
	key := path.Join("ties", keySegment(ownerID), keySegment(recordID), id+ext)

	if err := s.store.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), contentType); err != nil {
		return "", fmt.Errorf("service.ImageService.Upload: %w", err)
	}
	return s.store.URL(key), nil
}

// Delete removes the image behind url. Empty, placeholder and foreign URLs
// are ignored, and an object that is already gone counts as deleted.
func (s *ImageService) Delete(ctx context.Context, url string) error {
	if url == "" || url == domain.PlaceholderImageURL {
		return nil
	}
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil
		}
		return fmt.Errorf("service.ImageService.Delete: %w", err)
	}
	return nil
}

// keySegment reduces s to characters that are safe in one key path segment.
func keySegment(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if out == "" {
		return "_"
	}
	return out
}
