// Package blobstore implements the gallery's image passthrough against an
// S3-compatible object store (R2, MinIO, or S3 itself).
package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lumapix/photogallery/internal/config"
	"github.com/lumapix/photogallery/internal/errx"
	"github.com/lumapix/photogallery/internal/gallery"
)

// S3Store implements gallery.BlobStore on an S3-compatible bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// New creates an S3Store from blob configuration. Path-style addressing is
// configurable because R2 and MinIO don't resolve virtual-host bucket URLs.
func New(ctx context.Context, cfg config.BlobConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     cfg.AccessKeyID,
					SecretAccessKey: cfg.SecretAccessKey,
				}, nil
			},
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.UsePathStyle
		o.Region = cfg.Region
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Get fetches one object by key. The caller owns the returned body.
func (s *S3Store) Get(ctx context.Context, key string) (gallery.Object, error) {
	const op = "blobstore.Get"

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return gallery.Object{}, errx.E(op, errx.NotFound, fmt.Errorf("object %q not found", key))
		}
		return gallery.Object{}, errx.E(op, errx.Unavailable, err)
	}

	obj := gallery.Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
	}
	if out.ContentLength != nil {
		obj.Size = *out.ContentLength
	}
	return obj, nil
}
