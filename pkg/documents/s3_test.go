package documents

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"hotelops/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_StoreDocument(t *testing.T) {
	putter := &fakePutter{}
	store := newS3Store(putter, "hotel-docs", time.Second, logger.Discard())
	doc := &Document{Type: TypeInvoice, Name: "BK-1-invoice.html", ContentType: ContentTypeHTML, Content: []byte("<html></html>")}

	location, err := store.StoreDocument(context.Background(), "b-1", doc)
	require.NoError(t, err)

	assert.Equal(t, "s3://hotel-docs/bookings/b-1/BK-1-invoice.html", location)
	assert.Equal(t, "hotel-docs", aws.ToString(putter.input.Bucket))
	assert.Equal(t, ContentTypeHTML, aws.ToString(putter.input.ContentType))
	assert.Equal(t, "invoice", putter.input.Metadata["document-type"])
	assert.Equal(t, "<html></html>", string(putter.body))
}

func TestS3Store_PropagatesFailure(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	store := newS3Store(putter, "hotel-docs", time.Second, logger.Discard())

	_, err := store.StoreDocument(context.Background(), "b-1", &Document{Name: "x.html"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3Store_NotConfigured(t *testing.T) {
	store := newS3Store(&fakePutter{}, "", time.Second, logger.Discard())

	_, err := store.StoreDocument(context.Background(), "b-1", &Document{Name: "x.html"})
	assert.Error(t, err)
}
