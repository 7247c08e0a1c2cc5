package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweet-shop/internal/core/config"
)

// fakeS3 只实现上传所需的几个调用；小文件走单次 PutObject
type fakeS3 struct {
	key, contentType string
	body             string
	err              error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func TestPut_PublicURL(t *testing.T) {
	f := &fakeS3{}
	s := NewS3Store(f, "bucket", "/sweets/", "https://cdn.example.com/")

	url, err := s.Put(context.Background(), Object{Key: "abc.png", ContentType: "image/png", Body: strings.NewReader("PNG")})
	require.NoError(t, err)
	assert.Equal(t, "sweets/abc.png", f.key)
	assert.Equal(t, "image/png", f.contentType)
	assert.Equal(t, "PNG", f.body)
	assert.Equal(t, "https://cdn.example.com/sweets/abc.png", url)
}

func TestPut_Error(t *testing.T) {
	s := NewS3Store(&fakeS3{err: errors.New("denied")}, "bucket", "", "https://cdn")
	_, err := s.Put(context.Background(), Object{Key: "a", Body: strings.NewReader("x")})
	assert.ErrorContains(t, err, "denied")
}

func TestDisabled(t *testing.T) {
	_, err := New(context.Background(), config.Storage{})
	assert.ErrorIs(t, err, ErrDisabled)

	var s *S3Store
	_, err = s.Put(context.Background(), Object{})
	assert.ErrorIs(t, err, ErrDisabled)
}
