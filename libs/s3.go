package libs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"catalog-admin/clients"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type S3Config struct {
	Region        string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Uploader struct {
	client        s3API
	bucket        string
	prefix        string
	publicBaseURL string
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Region == "" || cfg.Bucket == "" || cfg.PublicBaseURL == "" {
		return nil, errors.New("S3 config missing: S3_REGION, S3_BUCKET, S3_PUBLIC_BASE_URL required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Uploader{
		client:        s3.NewFromConfig(awsCfg),
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, files []clients.UploadFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	keys := make([]string, 0, len(files))

	for _, f := range files {
		key := u.objectKey(f.Filename)
		_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        f.Body,
			ContentType: aws.String(f.ContentType),
		})
		if err != nil {
			u.rollback(ctx, keys)
			return nil, fmt.Errorf("put %s: %w", f.Filename, err)
		}
		keys = append(keys, key)
		urls = append(urls, u.publicBaseURL+"/"+key)
	}

	return urls, nil
}

func (u *S3Uploader) objectKey(filename string) string {
	key := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if u.prefix != "" {
		key = u.prefix + "/" + key
	}
	return key
}

func (u *S3Uploader) rollback(ctx context.Context, keys []string) {
	for _, key := range keys {
		_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			logrus.WithError(err).WithField("key", key).Warn("s3 rollback failed")
		}
	}
}
