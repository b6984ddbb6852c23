package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/facebookincubator/go-belt/tool/logger"
)

const contentTypeWAV = "audio/wav"

// S3Client is the part of the S3 API used by S3. *s3.Client implements it.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ S3Client = (*s3.Client)(nil)

// S3 uploads recordings into an S3 (or S3-compatible) bucket.
type S3 struct {
	client S3Client
	bucket string
	prefix string
}

var _ Sink = (*S3)(nil)

func NewS3(client S3Client, bucket, prefix string) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3) Store(ctx context.Context, name string, wav []byte) (_err error) {
	key := s.Key(name)
	logger.Debugf(ctx, "S3.Store(ctx, 's3://%s/%s', <%d bytes>)", s.bucket, key, len(wav))
	defer func() {
		logger.Debugf(ctx, "/S3.Store(ctx, 's3://%s/%s', <%d bytes>): %v", s.bucket, key, len(wav), _err)
	}()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(wav),
		ContentLength: aws.Int64(int64(len(wav))),
		ContentType:   aws.String(contentTypeWAV),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("unable to upload 's3://%s/%s' (%s): %w", s.bucket, key, apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("unable to upload 's3://%s/%s': %w", s.bucket, key, err)
	}
	return nil
}
