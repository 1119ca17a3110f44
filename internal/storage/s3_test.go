package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in a map. Methods not overridden panic through the
// nil embedded interface.
type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	types   map[string]string
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.types[*in.Key] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, awserr.NewRequestFailure(awserr.New(s3.ErrCodeNoSuchKey, "missing", nil), http.StatusNotFound, "req-1")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "missing", nil), http.StatusNotFound, "req-2")
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(ctx aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorageRoundTrip(t *testing.T) {
	api := newFakeS3()
	st := NewS3StorageWithClient(api, "aos")
	ctx := context.Background()

	require.NoError(t, st.Upload(ctx, "uploads/2024/03/x-aos.xlsx", bytes.NewReader([]byte("PK"))))
	assert.Equal(t, xlsxContentType, api.types["uploads/2024/03/x-aos.xlsx"])

	ok, err := st.Exists(ctx, "uploads/2024/03/x-aos.xlsx")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := st.Download(ctx, "uploads/2024/03/x-aos.xlsx")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data)

	require.NoError(t, st.Delete(ctx, "uploads/2024/03/x-aos.xlsx"))
	ok, err = st.Exists(ctx, "uploads/2024/03/x-aos.xlsx")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3StorageDownloadMissing(t *testing.T) {
	st := NewS3StorageWithClient(newFakeS3(), "aos")

	_, err := st.Download(context.Background(), "uploads/none.xlsx")

	assert.Error(t, err)
}

func TestS3StorageExistsPropagatesOtherErrors(t *testing.T) {
	api := newFakeS3()
	api.headErr = errors.New("connection refused")
	st := NewS3StorageWithClient(api, "aos")

	ok, err := st.Exists(context.Background(), "uploads/a.xlsx")

	assert.False(t, ok)
	assert.EqualError(t, err, "connection refused")
}
