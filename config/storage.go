package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client        *s3.Client
	BucketName    string
	Region        string
	PublicBaseURL string
}

// NewS3Config initializes the S3 client from the upload settings. Credentials
// come from the default AWS chain (environment, shared config, instance role).
func NewS3Config(ctx context.Context, cfg UploadConfig) (*S3Config, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Config{
		Client:        client,
		BucketName:    cfg.S3Bucket,
		Region:        awsCfg.Region,
		PublicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// PublicURL returns the URL an uploaded object is served from.
func (s *S3Config) PublicURL(key string) string {
	if strings.HasPrefix(s.PublicBaseURL, "http://") || strings.HasPrefix(s.PublicBaseURL, "https://") {
		return s.PublicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.BucketName, key)
}

// KeyFromURL reverses PublicURL; ok is false for URLs outside this bucket.
func (s *S3Config) KeyFromURL(url string) (string, bool) {
	prefix := s.PublicURL("")
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
