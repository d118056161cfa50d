package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Backend is an object-store Backend implementation built on the AWS
// SDK v2 (s3.NewFromConfig, manager.NewUploader, PutObject/GetObject).
type S3Backend struct {
	client *s3.Client
	bucket string
	keyFn  func(key string) string
}

// NewS3Backend loads the default AWS config (environment/shared config/IAM
// role chain) and returns a Backend writing objects to bucket, with every
// key prefixed by prefix.
func NewS3Backend(ctx context.Context, bucket, prefix string) (*S3Backend, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)

	return &S3Backend{
		client: client,
		bucket: bucket,
		keyFn: func(key string) string {
			return path.Join(prefix, key)
		},
	}, nil
}

// Save implements Backend via manager.NewUploader, streaming a JSON
// encoding of rows as the object body.
func (b *S3Backend) Save(ctx context.Context, key string, rows any) error {
	encoded, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	uploader := manager.NewUploader(b.client)

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.keyFn(key)),
		Body:   bytes.NewReader(encoded),
	})

	return err
}

// Load implements Backend via GetObject.
func (b *S3Backend) Load(ctx context.Context, key string, dest any) (bool, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.keyFn(key)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return false, nil
		}

		return false, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}

	return true, nil
}

// Exists implements Backend via HeadObject.
func (b *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.keyFn(key)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// List implements Backend via ListObjectsV2, paging through all results and
// matching glob against each object's base name.
func (b *S3Backend) List(ctx context.Context, prefix, glob string) ([]string, error) {
	var out []string

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.keyFn(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)

			matched, err := path.Match(glob, path.Base(key))
			if err != nil {
				return nil, err
			}

			if matched {
				out = append(out, strings.TrimPrefix(key, b.keyFn("")))
			}
		}
	}

	return out, nil
}
