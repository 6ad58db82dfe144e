package registry

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxDocumentSize caps the registry document read from object storage.
const maxDocumentSize = 16 << 20

// ObjectGetter is the part of *s3.Client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Source reads a registry document from an S3-compatible bucket.
type S3Source struct {
	bucket string
	key    string
	opts   S3Options
	client ObjectGetter
}

func NewS3Source(bucket, key string, opts S3Options) *S3Source {
	return &S3Source{bucket: bucket, key: key, opts: opts}
}

// WithClient replaces the S3 client, mainly for tests.
func (s *S3Source) WithClient(c ObjectGetter) *S3Source {
	s.client = c
	return s
}

func (s *S3Source) Load(ctx context.Context) (*Registry, error) {
	client := s.client
	if client == nil {
		c, err := s.newClient(ctx)
		if err != nil {
			return nil, err
		}
		client = c
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("s3 read: %w", err)
	}

	return Decode(data, FormatFromPath(s.key))
}

func (s *S3Source) newClient(ctx context.Context) (*s3.Client, error) {
	optFns := []func(*config.LoadOptions) error{}
	if s.opts.Region != "" {
		optFns = append(optFns, config.WithRegion(s.opts.Region))
	}
	if s.opts.AccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.opts.AccessKey, s.opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}
