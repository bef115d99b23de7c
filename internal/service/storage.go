package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/pageza/recipe-manager/backend/config"
)

// ErrUnsupportedImage is returned for uploads that are not JPEG, PNG, GIF or
// WebP, or that declare more than maxImagePixels.
var ErrUnsupportedImage = errors.New("unsupported image type")

// ErrImageTooLarge marks images rejected for their pixel count. It is always
// reported together with ErrUnsupportedImage.
var ErrImageTooLarge = errors.New("image dimensions too large")

// maxImagePixels bounds the decoded size of an image regardless of its
// encoded size.
const maxImagePixels = 40_000_000

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProcessedImage is an upload ready to be stored.
type ProcessedImage struct {
	Data        []byte
	ContentType string
}

// Key returns a fresh object key with the extension of the content type.
func (p *ProcessedImage) Key() string {
	return "recipe-images/" + uuid.New().String() + imageExtensions[p.ContentType]
}

// ProcessImage sniffs the content type of data and downscales images whose
// width or height exceeds maxDimension. Images within bounds are returned
// untouched. GIF is re-encoded as PNG and WebP as JPEG when resized.
func ProcessImage(data []byte, maxDimension uint) (*ProcessedImage, error) {
	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("%w: %w: %dx%d exceeds %d pixels", ErrUnsupportedImage, ErrImageTooLarge, cfg.Width, cfg.Height, maxImagePixels)
	}
	if maxDimension == 0 || (uint(cfg.Width) <= maxDimension && uint(cfg.Height) <= maxDimension) {
		return &ProcessedImage{Data: data, ContentType: contentType}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch contentType {
	case "image/png", "image/gif":
		err = png.Encode(&buf, img)
		contentType = "image/png"
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
		contentType = "image/jpeg"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &ProcessedImage{Data: buf.Bytes(), ContentType: contentType}, nil
}

// LocalImageStore writes images below a directory served at publicBaseURL.
type LocalImageStore struct {
	dir           string
	publicBaseURL string
	log           *zap.Logger
}

func NewLocalImageStore(dir, publicBaseURL string, log *zap.Logger) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &LocalImageStore{dir: dir, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"), log: log}, nil
}

func (s *LocalImageStore) path(key string) (string, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return p, nil
}

func (s *LocalImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	url := s.publicBaseURL + "/" + key
	s.log.Debug("Stored image", zap.String("url", url), zap.String("content_type", contentType))
	return url, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	p, err := s.path(strings.TrimPrefix(url, prefix))
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// S3ImageStore keeps images in an S3 bucket.
type S3ImageStore struct {
	s3  *config.S3Config
	log *zap.Logger
}

func NewS3ImageStore(s3Config *config.S3Config, log *zap.Logger) *S3ImageStore {
	return &S3ImageStore{s3: s3Config, log: log}
}

// Upload uploads image data to S3 and returns the public URL
func (s *S3ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := s.s3.PublicURL(key)
	s.log.Info("Uploaded image to S3", zap.String("url", publicURL))
	return publicURL, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key, ok := s.s3.KeyFromURL(url)
	if !ok || key == "" {
		return nil
	}
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
