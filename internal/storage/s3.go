// Package storage uploads product images to an S3-compatible blob store.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageFile is one multipart upload part handed to the uploader.
type ImageFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	BaseURL         string
	Endpoint        string
}

type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// Seams for testing the AWS SDK wiring.
var (
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx, optFns...)
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	putObject = func(ctx context.Context, client *s3.Client, input *s3.PutObjectInput) error {
		_, err := client.PutObject(ctx, input)
		return err
	}
)

func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: cfg.Bucket, baseURL: cfg.BaseURL}, nil
}

func storageKey(productID int64, filename string) string {
	return fmt.Sprintf("products/%d/%v-%s", productID, uuid.New(), filename)
}

// Upload writes every file under the product's key prefix and returns the
// public URLs in input order. A failed part aborts the remainder.
func (u *S3Uploader) Upload(ctx context.Context, productID int64, files []ImageFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		key := storageKey(productID, file.Name)
		input := &s3.PutObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
			Body:   file.Reader,
		}
		if file.ContentType != "" {
			input.ContentType = aws.String(file.ContentType)
		}
		if err := putObject(ctx, u.client, input); err != nil {
			return nil, fmt.Errorf("put object %q: %w", key, err)
		}
		urls = append(urls, fmt.Sprintf("%s/%s", u.baseURL, key))
	}
	return urls, nil
}
