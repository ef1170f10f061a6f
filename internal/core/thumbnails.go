package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coocood/freecache"
	"github.com/jo-hoe/gotransform/internal/backend/commands"
	"github.com/jo-hoe/gotransform/internal/common"
)

const thumbnailCacheExpireSeconds = 24 * 60 * 60

// thumbnailKey is namespaced so the cache can hold other entries later.
func thumbnailKey(id string) []byte {
	return []byte("thumb::" + id)
}

func newThumbnailCache(sizeMB int) *freecache.Cache {
	return freecache.NewCache(sizeMB * 1024 * 1024)
}

// Thumbnail returns a PNG no wider than the configured thumbnail width.
// Results are cached until the photo changes.
func (service *CoreService) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	key := thumbnailKey(id)
	if cached, err := service.thumbnails.Get(key); err == nil {
		return cached, nil
	}

	photo, err := service.databaseService.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	data, _, err := common.DecodeDataURI(photo.FileData)
	if err != nil {
		return nil, fmt.Errorf("failed to read image of photo %s: %w", id, err)
	}
	command, err := commands.NewPixelScaleCommand(map[string]any{"maxWidth": service.config.ThumbnailWidth})
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail command: %w", err)
	}
	thumbnail, err := command.Execute(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate thumbnail: %w", err)
	}

	// entries above 1/1024 of the cache size are rejected; they are simply rebuilt next time
	if err := service.thumbnails.Set(key, thumbnail, thumbnailCacheExpireSeconds); err != nil {
		slog.Debug("thumbnail not cached", "photo_id", id, "size_bytes", len(thumbnail), "error", err)
	}
	return thumbnail, nil
}

func (service *CoreService) forgetThumbnail(id string) {
	service.thumbnails.Del(thumbnailKey(id))
}
