package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"soukly-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Storage holds settlement payment proofs on Cloudflare R2 (S3 API).
type R2Storage struct {
	client        *s3.Client
	bucketName    string
	publicURL     string
	uploadTimeout time.Duration
}

func NewR2Storage(ctx context.Context, accountId, accessKey, secretKey, bucketName, publicURL string, uploadTimeout time.Duration) (*R2Storage, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:        client,
		bucketName:    bucketName,
		publicURL:     strings.TrimSuffix(publicURL, "/"),
		uploadTimeout: uploadTimeout,
	}, nil
}

// UploadProof normalizes the screenshot (resize + webp) and stores it under a
// key derived from the settlement, so re-uploads overwrite rather than pile up.
func (s *R2Storage) UploadProof(ctx context.Context, settlementID string, body io.Reader, contentType string) (string, error) {
	if !utils.IsImage(contentType) {
		return "", fmt.Errorf("unsupported proof content type %s", contentType)
	}

	data, outType, err := utils.ProcessImage(body)
	if err != nil {
		return "", fmt.Errorf("process proof image: %w", err)
	}

	ext := ".webp"
	if outType == "image/jpeg" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("proofs/%s%s", settlementID, ext)

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err = s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(outType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

// DeleteProof removes a stored proof by its public URL.
func (s *R2Storage) DeleteProof(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, s.publicURL) {
		return fmt.Errorf("invalid file URL: domain mismatch")
	}
	key := strings.TrimPrefix(strings.TrimPrefix(fileURL, s.publicURL), "/")
	if key == "" {
		return fmt.Errorf("invalid file key derived from URL")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}
