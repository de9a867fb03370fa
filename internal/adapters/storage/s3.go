// Package storage uploads event images to S3.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"devevents/internal/domain"
)

const (
	// MaxImageSize is the largest accepted event image (5MB).
	MaxImageSize = 5 * 1024 * 1024
	// FolderEvents is the S3 prefix for event images.
	FolderEvents = "events"
)

// ErrUnsupportedImage is returned for uploads that are not an allowed image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

// AllowedImageTypes maps accepted MIME types to their canonical extension.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3ImageStore struct {
	uploader uploader
	cfg      S3Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewS3ImageStore creates an ImageStore. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3ImageStore(ctx context.Context, cfg S3Config, logger *slog.Logger) (domain.ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 image store requires a bucket")
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else {
		logger.Warn("S3 image store using default credential chain")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	up := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	return newS3ImageStore(up, cfg, logger), nil
}

func newS3ImageStore(up uploader, cfg S3Config, logger *slog.Logger) *s3ImageStore {
	return &s3ImageStore{uploader: up, cfg: cfg, logger: logger, now: time.Now}
}

// ImageContentType resolves the MIME type of an upload from its declared
// content type or, failing that, its extension.
func ImageContentType(contentType, filename string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := AllowedImageTypes[ct]; ok {
		return ct, nil
	}
	if ct, ok := allowedImageExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct, nil
	}
	return "", ErrUnsupportedImage
}

// ImageKey returns events/{yyyy}/{mm}/{random}{ext}.
func ImageKey(now time.Time, contentType string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	name := hex.EncodeToString(buf) + AllowedImageTypes[contentType]
	return path.Join(FolderEvents, now.UTC().Format("2006"), now.UTC().Format("01"), name), nil
}

func (s *s3ImageStore) Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	if size > MaxImageSize {
		return "", domain.NewValidationError("image", fmt.Sprintf("must be at most %d bytes", MaxImageSize))
	}
	ct, err := ImageContentType(contentType, filename)
	if err != nil {
		return "", domain.NewValidationError("image", "must be a JPEG, PNG, WebP or GIF image").WithCause(err)
	}
	key, err := ImageKey(s.now(), ct)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(ct),
		ACL:         types.ObjectCannedACLPublicRead,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	url := s.publicURL(key)
	s.logger.InfoContext(ctx, "event image uploaded", "key", key, "size", size)
	return url, nil
}

func (s *s3ImageStore) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
