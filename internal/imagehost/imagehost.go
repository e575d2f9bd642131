package imagehost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"backend-ripple/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrDisabled = errors.New("image host disabled")

// Host is the external image service boundary: store picture data and get a
// public URL back, or drop a previously stored picture by its public id.
type Host interface {
	Upload(ctx context.Context, data string) (string, error)
	Destroy(ctx context.Context, publicID string) error
}

// objectAPI is the slice of the S3 client the host uses; stubbed in tests.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Client struct {
	api     objectAPI
	bucket  string
	baseURL string
}

// New builds an S3-backed host from config. When the bucket or endpoint is
// missing the host is disabled: uploads fail, destroys are no-ops.
func New(cfg config.Config) (*Client, error) {
	if cfg.ImageBucket == "" || cfg.ImageEndpoint == "" {
		return &Client{}, nil
	}

	endpoint := strings.TrimSuffix(cfg.ImageEndpoint, "/")
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.ImageRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.ImageAccessKey, cfg.ImageSecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load image host config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	baseURL := cfg.ImageBaseURL
	if baseURL == "" {
		baseURL = endpoint + "/" + cfg.ImageBucket
	}

	return &Client{api: api, bucket: cfg.ImageBucket, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (c *Client) Enabled() bool {
	return c.api != nil
}

// Upload accepts a base64 data URL (or bare base64 payload), stores it under
// a fresh key, and returns the public URL.
func (c *Client) Upload(ctx context.Context, data string) (string, error) {
	if c.api == nil {
		return "", ErrDisabled
	}

	contentType, payload := splitDataURL(data)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image data: %w", err)
	}

	key := uuid.NewString() + extensionFor(contentType)
	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(string(raw)),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return c.baseURL + "/" + key, nil
}

func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if c.api == nil || publicID == "" {
		return nil
	}
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("destroy image %s: %w", publicID, err)
	}
	return nil
}

// PublicID recovers the host key from a stored URL: the last path segment.
// The key keeps its extension so Destroy can address the stored object.
func PublicID(url string) string {
	if url == "" {
		return ""
	}
	return url[strings.LastIndex(url, "/")+1:]
}

func splitDataURL(data string) (contentType, payload string) {
	contentType = "image/jpeg"
	payload = data
	if !strings.HasPrefix(data, "data:") {
		return contentType, payload
	}
	meta, rest, ok := strings.Cut(data[len("data:"):], ",")
	if !ok {
		return contentType, payload
	}
	payload = rest
	if ct := strings.TrimSuffix(meta, ";base64"); ct != "" {
		contentType = ct
	}
	return contentType, payload
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
