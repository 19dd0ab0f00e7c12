package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/claimdesk/claimdesk/internal/claims"
	"github.com/claimdesk/claimdesk/pkg/logging"
)

// S3API is the subset of the S3 client used by Sink.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink uploads CSV export snapshots to S3. If bucket is empty, all
// operations are no-ops.
type Sink struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewSink creates an export sink.
func NewSink(s3Client S3API, bucket string, logger *logging.Logger) *Sink {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sink{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if uploads are configured (bucket is set).
func (s *Sink) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// UploadCSV renders the collection and writes it under a dated key.
// Returns the object key.
func (s *Sink) UploadCSV(ctx context.Context, collection []claims.Claim) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	data, err := WriteCSV(collection)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("exports/claims/%d/%02d/claims-%s.csv",
		now.Year(), now.Month(), now.Format("20060102-150405"))

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("export: s3 put %s: %w", key, err)
	}

	s.logger.Info("uploaded claims export to S3",
		"s3_key", key,
		"claim_count", len(collection),
	)
	return key, nil
}
