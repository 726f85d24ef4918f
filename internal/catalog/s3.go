package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a JSON catalog document from an S3 object.
type S3Source struct {
	client objectGetter
	bucket string
	key    string
}

// NewS3Source builds a source for s3://bucket/key.
func NewS3Source(client *s3.Client, bucket, key string) *S3Source {
	if client == nil {
		panic("catalog: S3 client cannot be nil")
	}
	return newS3SourceWithClient(client, bucket, key)
}

func newS3SourceWithClient(client objectGetter, bucket, key string) *S3Source {
	if bucket == "" || key == "" {
		panic("catalog: S3 bucket and key are required")
	}
	return &S3Source{client: client, bucket: bucket, key: key}
}

// Load fetches and decodes the object.
func (s *S3Source) Load(ctx context.Context) (*Catalog, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()
	return Decode(out.Body)
}
