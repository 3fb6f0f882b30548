package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"hobbyhub/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// publicPathPrefix is the storage gateway path under which bucket objects are
// served without signing.
const publicPathPrefix = "/storage/v1/object/public/"

type Client struct {
	s3Client  *s3.S3
	bucket    string
	publicURL string
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
		// Failures surface to the caller once; nothing retries on its behalf.
		MaxRetries: aws.Int(0),
	}

	// S3-compatible gateways (MinIO, hosted storage) need path-style addressing
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if cfg.S3UseSSL == "false" {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := &Client{
		s3Client:  s3.New(sess),
		bucket:    cfg.S3BucketName,
		publicURL: strings.TrimRight(cfg.StoragePublicURL, "/"),
	}

	// Ensure bucket exists (local gateways start empty)
	_, err = client.s3Client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(cfg.S3BucketName),
	})
	if err != nil {
		// A concurrent creator or missing permission is not fatal here; uploads
		// will report the real problem.
		_, _ = client.s3Client.CreateBucket(&s3.CreateBucketInput{
			Bucket: aws.String(cfg.S3BucketName),
		})
	}

	return client, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// PublicURL templates the public address of key. The backend is not asked
// for a canonical URL.
func (c *Client) PublicURL(key string) string {
	return c.publicURL + publicPathPrefix + c.bucket + "/" + key
}

// KeyFromURL reverses PublicURL. ok is false for URLs outside this bucket.
func (c *Client) KeyFromURL(url string) (string, bool) {
	prefix := c.publicURL + publicPathPrefix + c.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}
