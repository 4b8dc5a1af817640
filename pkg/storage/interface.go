package storage

import (
	"context"
	"errors"
	"io"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Write stores content from the reader with the given key.
	// The size parameter is the expected content size (-1 if unknown).
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes the content with the given key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the URL clients use to fetch key.
	PublicURL(key string) string
}

// Config selects and configures a storage backend.
type Config struct {
	Driver string      `mapstructure:"driver"` // "local", "s3"
	Local  LocalConfig `mapstructure:"local"`
	S3     S3Config    `mapstructure:"s3"`
}

// New creates the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	case "local", "":
		return NewLocalStorage(cfg.Local)
	default:
		return nil, errors.New("unsupported storage driver: " + cfg.Driver)
	}
}
