package libs

import (
	"context"
	"fmt"

	"catalog-admin/clients"
	"catalog-admin/config"
)

// Uploader stores a batch of files and returns their public URLs in order.
// A failed batch leaves nothing behind.
type Uploader interface {
	Upload(ctx context.Context, files []clients.UploadFile) ([]string, error)
}

// NewUploader picks the storage backend from UPLOAD_DRIVER. The default sends
// files to the catalog platform's own upload endpoint.
func NewUploader(ctx context.Context, cfg *config.Config, catalog *clients.CatalogClient) (Uploader, error) {
	switch cfg.UploadDriver {
	case "", "catalog":
		return catalog, nil
	case "cloudinary":
		return NewCloudinaryUploader(cfg)
	case "s3":
		return NewS3Uploader(ctx, S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown UPLOAD_DRIVER: %s", cfg.UploadDriver)
	}
}
