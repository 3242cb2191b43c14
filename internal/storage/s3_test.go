package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestNewS3Uploader_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var capturedEndpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint != nil {
			capturedEndpoint = *opts.BaseEndpoint
		}
		return s3.NewFromConfig(cfg)
	}

	_, err := NewS3Uploader(context.Background(), Config{
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Region:          "us-east-1",
		Bucket:          "commerce",
		BaseURL:         "http://127.0.0.1:9000/commerce",
		Endpoint:        "http://127.0.0.1:9000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("endpoint not applied: %q", capturedEndpoint)
	}
}

func TestNewS3Uploader_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	_, err := NewS3Uploader(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUpload_KeysAndURLs(t *testing.T) {
	orig := putObject
	t.Cleanup(func() { putObject = orig })

	type captured struct {
		key         string
		contentType string
		body        string
	}
	var puts []captured
	putObject = func(ctx context.Context, client *s3.Client, input *s3.PutObjectInput) error {
		body, err := io.ReadAll(input.Body)
		if err != nil {
			return err
		}
		if *input.Bucket != "commerce" {
			t.Fatalf("bucket mismatch: %q", *input.Bucket)
		}
		var ct string
		if input.ContentType != nil {
			ct = *input.ContentType
		}
		puts = append(puts, captured{key: *input.Key, contentType: ct, body: string(body)})
		return nil
	}

	u := &S3Uploader{bucket: "commerce", baseURL: "https://cdn.example.com"}
	urls, err := u.Upload(context.Background(), 42, []ImageFile{
		{Name: "front.png", ContentType: "image/png", Reader: strings.NewReader("png-bytes")},
		{Name: "back.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("jpg-bytes")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 || len(puts) != 2 {
		t.Fatalf("expected 2 uploads, got %d urls %d puts", len(urls), len(puts))
	}
	if !strings.HasPrefix(puts[0].key, "products/42/") || !strings.HasSuffix(puts[0].key, "-front.png") {
		t.Fatalf("unexpected key: %q", puts[0].key)
	}
	if puts[1].contentType != "image/jpeg" {
		t.Fatalf("content type mismatch: %q", puts[1].contentType)
	}
	if urls[0] != "https://cdn.example.com/"+puts[0].key {
		t.Fatalf("url mismatch: %q", urls[0])
	}
	if puts[0].body != "png-bytes" {
		t.Fatalf("body mismatch: %q", puts[0].body)
	}
}

func TestUpload_AbortsOnFailure(t *testing.T) {
	orig := putObject
	t.Cleanup(func() { putObject = orig })

	calls := 0
	putObject = func(ctx context.Context, client *s3.Client, input *s3.PutObjectInput) error {
		calls++
		return errors.New("denied")
	}

	u := &S3Uploader{bucket: "commerce", baseURL: "https://cdn.example.com"}
	_, err := u.Upload(context.Background(), 1, []ImageFile{
		{Name: "a.png", Reader: strings.NewReader("a")},
		{Name: "b.png", Reader: strings.NewReader("b")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected upload to stop after first failure, got %d calls", calls)
	}
}
