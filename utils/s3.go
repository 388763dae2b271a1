package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/saifurrahmanctg/micro-earn-server/config"
)

// S3Uploader stores task images in an S3-compatible bucket (Cloudflare R2
// works with a custom endpoint).
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Uploader(cfg *appconfig.Config) (*S3Uploader, error) {
	s3cfg := cfg.S3
	if s3cfg.Bucket == "" || s3cfg.AccessKey == "" || s3cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 bucket, access_key and secret_key must be configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(s3cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3cfg.AccessKey, s3cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
		}
	})

	return &S3Uploader{
		client:    client,
		bucket:    s3cfg.Bucket,
		publicURL: strings.TrimRight(s3cfg.PublicURL, "/"),
	}, nil
}

// Upload stores the object and returns a URL clients can render. With a
// public base URL configured the object URL is stable; otherwise a week-long
// presigned URL is returned.
func (u *S3Uploader) Upload(ctx context.Context, objectName string, file io.Reader) (string, error) {
	contentType := mime.TypeByExtension(path.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(objectName),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	if u.publicURL != "" {
		return u.publicURL + "/" + objectName, nil
	}
	return u.SignedURL(ctx, objectName, 7*24*time.Hour)
}

// SignedURL returns a presigned GET URL for the given object.
func (u *S3Uploader) SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	presigner := s3.NewPresignClient(u.client)
	presigned, err := presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(objectName),
		},
		func(po *s3.PresignOptions) {
			po.Expires = expiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("presign s3 url: %w", err)
	}
	return presigned.URL, nil
}
