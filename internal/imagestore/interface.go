package imagestore

import (
	"context"
	"errors"

	"github.com/weiawesome/ward-rooms/internal/domain"
)

var (
	// ErrInvalidImage is returned when upload data cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrImageTooLarge is returned when upload data exceeds the size limit.
	ErrImageTooLarge = errors.New("image too large")
	// ErrForeignURL is returned when a URL was not issued by this store.
	ErrForeignURL = errors.New("url not managed by image store")
)

// ImageStore persists room images and resolves them to public URLs.
type ImageStore interface {
	// Upload normalises the image and returns its public URL.
	Upload(ctx context.Context, img domain.ImageUpload) (string, error)
	// Delete removes the image behind url. Deleting a missing image is not an error.
	Delete(ctx context.Context, url string) error
}
