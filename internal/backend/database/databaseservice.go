package database

import (
	"context"
	"errors"
)

var ErrPhotoNotFound = errors.New("photo not found")

// DatabaseService is the record store behind the photo API.
// Implementations must be safe for concurrent use.
type DatabaseService interface {
	// CreateDatabase prepares the schema; it must be idempotent.
	CreateDatabase() error
	DoesDatabaseExist() bool
	Close() error

	// ListPhotos returns every photo ordered by date, newest first.
	ListPhotos(ctx context.Context) ([]*Photo, error)
	// GetPhoto returns ErrPhotoNotFound for unknown ids.
	GetPhoto(ctx context.Context, id string) (*Photo, error)
	CreatePhoto(ctx context.Context, input NewPhoto) (*Photo, error)
	// UpdatePhoto merges the supplied fields and returns ErrPhotoNotFound for unknown ids.
	UpdatePhoto(ctx context.Context, id string, update PhotoUpdate) (*Photo, error)
	// DeletePhoto reports whether a photo existed; a missing id is not an error.
	DeletePhoto(ctx context.Context, id string) (bool, error)
}
