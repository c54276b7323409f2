package keystore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxKeyObjectSize caps how much of an object is read as PEM.
const maxKeyObjectSize = 64 << 10

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in, optFns...)
	}
)

// S3Source reads both halves from an S3-compatible bucket (AWS or MinIO).
type S3Source struct {
	Bucket      string
	PrivateKey  string
	PublicKey   string
	Region      string
	AccessKey   string
	SecretKey   string
	EndpointURL string
}

func (s *S3Source) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.Region)}
	if s.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.EndpointURL != "" {
			o.BaseEndpoint = aws.String(s.EndpointURL)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Source) Load(ctx context.Context) ([]byte, []byte, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, nil, err
	}
	priv, err := s.fetch(ctx, c, s.PrivateKey)
	if err != nil {
		return nil, nil, err
	}
	pub, err := s.fetch(ctx, c, s.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

func (s *S3Source) fetch(ctx context.Context, c *s3.Client, key string) ([]byte, error) {
	out, err := getObject(c, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(io.LimitReader(out.Body, maxKeyObjectSize))
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.Bucket, key, err)
	}
	return b, nil
}
