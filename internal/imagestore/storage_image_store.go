package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/pkg/log"
	"github.com/weiawesome/ward-rooms/pkg/storage"
)

// Options controls image normalisation.
type Options struct {
	MaxBytes    int64
	MaxWidth    int
	MaxHeight   int
	JPEGQuality int
	KeyPrefix   string
}

// StorageImageStore implements ImageStore on top of a storage backend.
// Every upload is re-encoded as JPEG and scaled down to fit the configured
// bounds; smaller images keep their size.
type StorageImageStore struct {
	store storage.Storage
	opts  Options
}

// NewStorageImageStore creates an image store writing to store.
func NewStorageImageStore(store storage.Storage, opts Options) *StorageImageStore {
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 85
	}
	return &StorageImageStore{store: store, opts: opts}
}

// Upload decodes, resizes and stores img.
func (s *StorageImageStore) Upload(ctx context.Context, img domain.ImageUpload) (string, error) {
	l := log.Ctx(ctx)

	src := img.Content
	if s.opts.MaxBytes > 0 {
		src = io.LimitReader(img.Content, s.opts.MaxBytes+1)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read image %q: %w", img.Filename, err)
	}
	if s.opts.MaxBytes > 0 && int64(len(raw)) > s.opts.MaxBytes {
		return "", fmt.Errorf("%w: %q exceeds %d bytes", ErrImageTooLarge, img.Filename, s.opts.MaxBytes)
	}

	decoded, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidImage, img.Filename, err)
	}

	if s.opts.MaxWidth > 0 && s.opts.MaxHeight > 0 {
		decoded = imaging.Fit(decoded, s.opts.MaxWidth, s.opts.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.JPEG, imaging.JPEGQuality(s.opts.JPEGQuality)); err != nil {
		return "", fmt.Errorf("encode image %q: %w", img.Filename, err)
	}

	key := s.newKey()
	if err := s.store.Write(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "image/jpeg"); err != nil {
		return "", fmt.Errorf("upload image %q: %w", img.Filename, err)
	}

	l.Debug().Str(log.FieldImageKey, key).Int("bytes", buf.Len()).Msg("image uploaded")
	return s.store.PublicURL(key), nil
}

// Delete removes the image behind rawURL.
func (s *StorageImageStore) Delete(ctx context.Context, rawURL string) error {
	key, err := s.KeyForURL(rawURL)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete image %q: %w", key, err)
	}
	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldImageKey, key).Msg("image deleted")
	return nil
}

// KeyForURL maps a public URL back to its storage key. URLs issued under a
// different public prefix are resolved by locating the key prefix in the path.
func (s *StorageImageStore) KeyForURL(rawURL string) (string, error) {
	base := s.store.PublicURL("")
	if strings.HasPrefix(rawURL, base) {
		if key := strings.TrimPrefix(rawURL, base); key != "" {
			return key, nil
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	path := strings.TrimPrefix(u.Path, "/")
	if s.opts.KeyPrefix != "" {
		if idx := strings.Index(path, s.opts.KeyPrefix+"/"); idx >= 0 {
			return path[idx:], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
}

func (s *StorageImageStore) newKey() string {
	name := uuid.New().String() + ".jpg"
	if s.opts.KeyPrefix == "" {
		return name
	}
	return s.opts.KeyPrefix + "/" + name
}
