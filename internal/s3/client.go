package s3

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/arencloud/bucketseed/internal/models"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

const codeBucketOwnedByYou = "BucketAlreadyOwnedByYou"

type Client struct{ mc *minio.Client }

// Stat returns object info (size, etag, content type) as the provider reports it.
func (c *Client) Stat(ctx context.Context, bucket, key string) (minio.ObjectInfo, error) {
	return c.mc.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
}

func normalizeEndpoint(endpoint string, useSSL bool) (host string, secure bool) {
	secure = useSSL
	if endpoint == "" {
		return "", secure
	}
	// If endpoint contains scheme, parse and strip it; prefer scheme over useSSL flag
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		if u, err := url.Parse(endpoint); err == nil {
			if u.Scheme == "https" {
				secure = true
			} else if u.Scheme == "http" {
				secure = false
			}
			return u.Host, secure
		}
	}
	return strings.TrimSuffix(endpoint, "/"), secure
}

func forcePathStyle(p models.Provider) bool {
	// Use path-style for non-AWS by default; AWS prefers virtual-hosted
	pt := strings.ToLower(strings.TrimSpace(p.Type))
	return pt == models.ProviderMinIO || pt == models.ProviderMCG || pt == models.ProviderGeneric || pt == ""
}

func bucketLookup(p models.Provider) minio.BucketLookupType {
	if forcePathStyle(p) {
		return minio.BucketLookupPath
	}
	return minio.BucketLookupAuto
}

func NewFromProvider(p models.Provider) (*Client, error) {
	endpoint, secure := normalizeEndpoint(p.Endpoint, p.UseSSL)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint must not be empty")
	}
	opts := &minio.Options{
		Creds:        credentials.NewStaticV4(p.AccessKey, p.SecretKey, ""),
		Secure:       secure,
		Region:       p.Region,
		BucketLookup: bucketLookup(p),
	}
	mc, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "s3: connect %s", endpoint)
	}
	return &Client{mc: mc}, nil
}

// CreateBucket asks the provider to create name in region. Provider errors are returned untouched.
func (c *Client) CreateBucket(ctx context.Context, name string, region string) error {
	return c.mc.MakeBucket(ctx, name, minio.MakeBucketOptions{Region: region})
}

func (c *Client) ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]minio.ObjectInfo, error) {
	var out []minio.ObjectInfo
	for obj := range c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: recursive}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (c *Client) Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) (minio.UploadInfo, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	return c.mc.PutObject(ctx, bucket, key, reader, size, opts)
}

// ErrorCode extracts the provider error code (e.g. AccessDenied), or "" if err is not a provider response.
func ErrorCode(err error) string {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code
	}
	return ""
}

// IsBucketOwnedByYou reports whether CreateBucket failed only because the caller already owns the bucket.
func IsBucketOwnedByYou(err error) bool {
	return err != nil && ErrorCode(err) == codeBucketOwnedByYou
}
