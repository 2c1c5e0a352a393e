package documents

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"hotelops/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Store struct {
	client  objectPutter
	bucket  string
	timeout time.Duration
	log     *logger.Logger
}

func NewS3Store(client *s3.Client, bucket string, timeout time.Duration, log *logger.Logger) Store {
	if client == nil {
		return newS3Store(nil, bucket, timeout, log)
	}
	return newS3Store(client, bucket, timeout, log)
}

func newS3Store(client objectPutter, bucket string, timeout time.Duration, log *logger.Logger) *s3Store {
	return &s3Store{
		client:  client,
		bucket:  bucket,
		timeout: timeout,
		log:     log,
	}
}

func (s *s3Store) StoreDocument(ctx context.Context, bookingID string, doc *Document) (string, error) {
	if s.client == nil || s.bucket == "" {
		return "", fmt.Errorf("document storage is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := ObjectKey(bookingID, doc)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc.Content),
		ContentType: aws.String(doc.ContentType),
		Metadata: map[string]string{
			"booking-id":    bookingID,
			"document-type": string(doc.Type),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.log.Info("Document stored", "booking_id", bookingID, "type", doc.Type, "location", location)
	return location, nil
}

func ObjectKey(bookingID string, doc *Document) string {
	return fmt.Sprintf("bookings/%s/%s", bookingID, doc.Name)
}
