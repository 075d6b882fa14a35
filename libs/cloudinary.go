package libs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"catalog-admin/clients"
	"catalog-admin/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

// cloudinaryAPI is the part of the cloudinary upload API the uploader uses.
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type CloudinaryUploader struct {
	api    cloudinaryAPI
	folder string
}

func NewCloudinaryUploader(cfg *config.Config) (*CloudinaryUploader, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)

	switch {
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case cfg.CloudinaryURL != "":
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryUploader{api: &cld.Upload, folder: cfg.CloudinaryFolder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, files []clients.UploadFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	publicIDs := make([]string, 0, len(files))

	for _, f := range files {
		publicID := fmt.Sprintf("%d_%s", time.Now().UnixNano(), strings.ReplaceAll(f.Filename, " ", "_"))
		publicID = strings.TrimSuffix(publicID, filepath.Ext(publicID))

		res, err := u.api.Upload(ctx, f.Body, uploader.UploadParams{
			PublicID:       publicID,
			Folder:         u.folder,
			ResourceType:   "image",
			Transformation: "q_auto,f_auto",
		})
		if err == nil && res != nil && res.Error.Message != "" {
			err = errors.New(res.Error.Message)
		}
		if err != nil {
			u.rollback(ctx, publicIDs)
			return nil, fmt.Errorf("failed to upload %s to cloudinary: %w", f.Filename, err)
		}

		url := res.SecureURL
		if url == "" {
			url = res.URL
		}
		urls = append(urls, url)
		publicIDs = append(publicIDs, res.PublicID)
	}

	return urls, nil
}

func (u *CloudinaryUploader) rollback(ctx context.Context, publicIDs []string) {
	for _, id := range publicIDs {
		if _, err := u.api.Destroy(ctx, uploader.DestroyParams{PublicID: id, ResourceType: "image"}); err != nil {
			logrus.WithError(err).WithField("public_id", id).Warn("cloudinary rollback failed")
		}
	}
}
