package imagestore

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/pkg/storage"
)

const testPublicURL = "http://localhost:5000/uploads"

func newTestStore(t *testing.T, maxBytes int64) (*StorageImageStore, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(storage.LocalConfig{
		BasePath:  t.TempDir(),
		PublicURL: testPublicURL,
	})
	require.NoError(t, err)

	return NewStorageImageStore(local, Options{
		MaxBytes:    maxBytes,
		MaxWidth:    800,
		MaxHeight:   600,
		JPEGQuality: 80,
		KeyPrefix:   "room-management/rooms/",
	}), local
}

func pngUpload(t *testing.T, w, h int) domain.ImageUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return domain.ImageUpload{
		Filename:    "ward.png",
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Content:     &buf,
	}
}

func keyOf(t *testing.T, url string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(url, testPublicURL+"/"))
	return strings.TrimPrefix(url, testPublicURL+"/")
}

func TestUpload_ScalesDownLargeImages(t *testing.T) {
	s, local := newTestStore(t, 0)
	ctx := context.Background()

	url, err := s.Upload(ctx, pngUpload(t, 1600, 900))
	require.NoError(t, err)

	key := keyOf(t, url)
	assert.True(t, strings.HasPrefix(key, "room-management/rooms/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	stored, err := imaging.Open(filepath.Join(local.BasePath(), key))
	require.NoError(t, err)
	assert.Equal(t, 800, stored.Bounds().Dx())
	assert.Equal(t, 450, stored.Bounds().Dy())
}

func TestUpload_KeepsSmallImages(t *testing.T) {
	s, local := newTestStore(t, 0)
	ctx := context.Background()

	url, err := s.Upload(ctx, pngUpload(t, 120, 80))
	require.NoError(t, err)

	stored, err := imaging.Open(filepath.Join(local.BasePath(), keyOf(t, url)))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(120, 80), stored.Bounds().Size())
}

func TestUpload_UniqueKeys(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	first, err := s.Upload(ctx, pngUpload(t, 10, 10))
	require.NoError(t, err)
	second, err := s.Upload(ctx, pngUpload(t, 10, 10))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestUpload_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		upload   func(t *testing.T) domain.ImageUpload
		wantErr  error
	}{
		{
			name: "not an image",
			upload: func(t *testing.T) domain.ImageUpload {
				return domain.ImageUpload{Filename: "notes.txt", Content: strings.NewReader("plain text")}
			},
			wantErr: ErrInvalidImage,
		},
		{
			name:     "too large",
			maxBytes: 64,
			upload: func(t *testing.T) domain.ImageUpload {
				return pngUpload(t, 400, 400)
			},
			wantErr: ErrImageTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, local := newTestStore(t, tt.maxBytes)

			_, err := s.Upload(context.Background(), tt.upload(t))
			assert.ErrorIs(t, err, tt.wantErr)

			var files []string
			err = filepath.WalkDir(local.BasePath(), func(path string, d fs.DirEntry, err error) error {
				if err == nil && !d.IsDir() {
					files = append(files, path)
				}
				return err
			})
			require.NoError(t, err)
			assert.Empty(t, files)
		})
	}
}

func TestDelete(t *testing.T) {
	s, local := newTestStore(t, 0)
	ctx := context.Background()

	url, err := s.Upload(ctx, pngUpload(t, 10, 10))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, url))

	_, err = os.Stat(filepath.Join(local.BasePath(), keyOf(t, url)))
	assert.True(t, os.IsNotExist(err))

	// Already gone.
	assert.NoError(t, s.Delete(ctx, url))
}

func TestKeyForURL(t *testing.T) {
	s, _ := newTestStore(t, 0)

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "issued url", url: testPublicURL + "/room-management/rooms/a.jpg", want: "room-management/rooms/a.jpg"},
		{name: "other host", url: "https://cdn.example.com/v1/room-management/rooms/b.jpg", want: "room-management/rooms/b.jpg"},
		{name: "foreign", url: "https://cdn.example.com/avatars/c.jpg", wantErr: true},
		{name: "bare prefix", url: testPublicURL + "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.KeyForURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForeignURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
