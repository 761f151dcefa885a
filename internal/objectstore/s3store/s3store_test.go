package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathsummarizer/internal/objectstore"
)

type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	getErr       error
	putErr       error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) GetObject(
	_ context.Context,
	in *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}

	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(
	_ context.Context,
	in *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.contentTypes[key] = aws.ToString(in.ContentType)

	return &s3.PutObjectOutput{}, nil
}

func TestStoreRoundTrip(t *testing.T) {
	api := newFakeS3()
	store := New(api, "path-summarize-data", slog.Default())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tag/fp", []byte(`{"cached":false}`)))

	got, err := store.Get(ctx, "tag/fp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"cached":false}`, string(got))
	assert.Equal(t, "application/json", api.contentTypes["path-summarize-data/tag/fp"])
}

func TestStoreMissingKey(t *testing.T) {
	store := New(newFakeS3(), "path-summarize-data", slog.Default())

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, objectstore.ErrNotFound)
}

func TestStoreNotFoundAPIError(t *testing.T) {
	api := newFakeS3()
	api.getErr = &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	store := New(api, "bucket", slog.Default())

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, objectstore.ErrNotFound)
}

func TestStorePropagatesFaults(t *testing.T) {
	api := newFakeS3()
	api.getErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
	api.putErr = errors.New("connection reset")
	store := New(api, "bucket", slog.Default())
	ctx := context.Background()

	_, err := store.Get(ctx, "key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, objectstore.ErrNotFound)

	err = store.Put(ctx, "key", []byte("value"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
