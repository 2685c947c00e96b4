// Package storage uploads media to Supabase Storage through its
// S3-compatible endpoint and builds the public URLs the site serves.
package storage

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBucket holds thumbnails, post media and the resume PDF.
const DefaultBucket = "blog-images"

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Client struct {
	s3        objectAPI
	bucket    string
	publicURL string
	logger    zerolog.Logger
}

// New creates a storage client from config. It returns (nil, nil) when the
// S3 endpoint or credentials are missing so the server can start without
// uploads.
func New(c map[string]string) (*Client, error) {
	endpoint := strings.TrimRight(config.GetString(c, "SUPABASE_S3_ENDPOINT", ""), "/")
	accessKey := config.GetString(c, "SUPABASE_S3_ACCESS_KEY", "")
	secretKey := config.GetString(c, "SUPABASE_S3_SECRET_KEY", "")
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	s3Client := s3.New(s3.Options{
		Region:       config.GetString(c, "SUPABASE_S3_REGION", "us-east-1"),
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return newClient(s3Client, config.GetString(c, "STORAGE_BUCKET", DefaultBucket), config.GetString(c, "SUPABASE_URL", "")), nil
}

func newClient(api objectAPI, bucket, supabaseURL string) *Client {
	return &Client{
		s3:        api,
		bucket:    bucket,
		publicURL: strings.TrimRight(supabaseURL, "/"),
		logger:    log.With().Str("component", "storage").Logger(),
	}
}

func (c *Client) Bucket() string {
	return c.bucket
}

// Upload stores body at path in the configured bucket and returns its
// public URL.
func (c *Client) Upload(ctx context.Context, path, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return "", errs.NewStorageUploadError(c.bucket, path, err)
	}

	c.logger.Debug().Str("path", path).Int64("size", size).Msg("uploaded object")
	return c.PublicURL(path), nil
}

// Remove deletes the object at path.
func (c *Client) Remove(ctx context.Context, path string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return errs.NewStorageUploadError(c.bucket, path, err)
	}
	return nil
}

// PublicURL returns the URL Supabase serves a public object from.
func (c *Client) PublicURL(path string) string {
	return PublicURL(c.publicURL, c.bucket, path)
}

// PathFromURL extracts the object path from a public URL of this bucket.
func (c *Client) PathFromURL(rawURL string) (string, bool) {
	prefix := PublicURL(c.publicURL, c.bucket, "")
	if strings.HasPrefix(rawURL, prefix) && len(rawURL) > len(prefix) {
		return rawURL[len(prefix):], true
	}
	return "", false
}

func PublicURL(supabaseURL, bucket, path string) string {
	return strings.TrimRight(supabaseURL, "/") + "/storage/v1/object/public/" + bucket + "/" + strings.TrimLeft(path, "/")
}
