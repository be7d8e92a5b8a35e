package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/service"
	"github.com/pkordes/tie-inventory/internal/storage"
)

const imageBase = "http://localhost:8080/images"

func newImageService(t *testing.T) (*service.ImageService, afero.Fs, *storage.FSStore) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store, err := storage.NewFSStore(fsys, "/images", imageBase)
	require.NoError(t, err)
	return service.NewImageService(store, discardLogger()), fsys, store
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 128, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func TestImageService_Validate_AcceptedFormats(t *testing.T) {
	svc, _, _ := newImageService(t)

	var jpg, gf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, testImage(), nil))
	require.NoError(t, gif.Encode(&gf, testImage(), nil))

	for name, tc := range map[string]struct {
		data []byte
		mime string
		ext  string
	}{
		"png":  {pngBytes(t), "image/png", ".png"},
		"jpeg": {jpg.Bytes(), "image/jpeg", ".jpg"},
		"gif":  {gf.Bytes(), "image/gif", ".gif"},
	} {
		mime, ext, err := svc.Validate(service.ImageUpload{Filename: "x", Data: tc.data})
		require.NoError(t, err, name)
		assert.Equal(t, tc.mime, mime, name)
		assert.Equal(t, tc.ext, ext, name)
	}
}

func TestImageService_Validate_Rejects(t *testing.T) {
	svc, _, _ := newImageService(t)
	truncated := pngBytes(t)[:12]

	for name, data := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("just some notes"),
		"pdf":       []byte("%PDF-1.4\n%âãÏÓ\n"),
		"truncated": truncated,
	} {
		_, _, err := svc.Validate(service.ImageUpload{Filename: name, Data: data})
		require.ErrorIs(t, err, domain.ErrValidation, name)
		assert.NotEmpty(t, domain.ValidationErrors(domain.FieldErrors(err)).Field("image"), name)
	}
}

func TestImageService_Upload_KeyedByOwnerAndRecord(t *testing.T) {
	svc, fsys, _ := newImageService(t)
	data := pngBytes(t)

	url, err := svc.Upload(context.Background(), "admin", service.ImageUpload{Filename: "navy.png", Data: data}, "rec-1", "")

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, imageBase+"/ties/admin/rec-1/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	stored, err := afero.ReadFile(fsys, "/images"+strings.TrimPrefix(url, imageBase))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestImageService_Upload_OwnerCannotEscapeNamespace(t *testing.T) {
	svc, _, _ := newImageService(t)

	url, err := svc.Upload(context.Background(), "../../etc", service.ImageUpload{Data: pngBytes(t)}, "r/1", "")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, imageBase+"/ties/______etc/r_1/"), url)
}

func TestImageService_Upload_DeletesPrevious(t *testing.T) {
	svc, fsys, _ := newImageService(t)
	ctx := context.Background()
	first, err := svc.Upload(ctx, "admin", service.ImageUpload{Data: pngBytes(t)}, "rec", "")
	require.NoError(t, err)

	second, err := svc.Upload(ctx, "admin", service.ImageUpload{Data: pngBytes(t)}, "rec", first)

	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	exists, _ := afero.Exists(fsys, "/images"+strings.TrimPrefix(first, imageBase))
	assert.False(t, exists, "previous image should be gone")
}

// failingDeleteStore wraps a real store but fails every delete.
type failingDeleteStore struct {
	storage.ObjectStore
}

func (failingDeleteStore) Delete(context.Context, string) error {
	return errors.New("permission denied")
}

func TestImageService_Upload_PreviousDeleteFailureIsNotFatal(t *testing.T) {
	_, _, store := newImageService(t)
	svc := service.NewImageService(failingDeleteStore{store}, discardLogger())

	url, err := svc.Upload(context.Background(), "admin", service.ImageUpload{Data: pngBytes(t)}, "rec", imageBase+"/ties/admin/rec/old.png")

	require.NoError(t, err)
	assert.NotEmpty(t, url)
}

func TestImageService_Delete_NoOps(t *testing.T) {
	svc, _, _ := newImageService(t)
	ctx := context.Background()

	for _, url := range []string{
		"",
		domain.PlaceholderImageURL,
		"https://elsewhere.example.com/x.png",
		imageBase + "/ties/admin/rec/missing.png",
	} {
		assert.NoError(t, svc.Delete(ctx, url), url)
	}
}

func TestImageService_Delete_PropagatesStoreErrors(t *testing.T) {
	_, _, store := newImageService(t)
	svc := service.NewImageService(failingDeleteStore{store}, discardLogger())

	err := svc.Delete(context.Background(), imageBase+"/ties/admin/rec/a.png")

	assert.ErrorContains(t, err, "permission denied")
}

// failingPutStore fails every write.
type failingPutStore struct {
	storage.ObjectStore
}

func (failingPutStore) Put(context.Context, string, io.Reader, int64, string) error {
	return errors.New("disk full")
}

func TestImageService_Upload_PutFailurePropagates(t *testing.T) {
	_, _, store := newImageService(t)
	svc := service.NewImageService(failingPutStore{store}, discardLogger())

	_, err := svc.Upload(context.Background(), "admin", service.ImageUpload{Data: pngBytes(t)}, "rec", "")

	assert.ErrorContains(t, err, "disk full")
}
