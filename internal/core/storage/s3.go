package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"sweet-shop/internal/core/config"
)

var ErrDisabled = errors.New("storage: no bucket configured")

type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// S3Store 商品图片上传到 S3（或兼容 API，如 MinIO）
type S3Store struct {
	uploader  *manager.Uploader
	bucket    string
	prefix    string
	publicURL string
}

func NewS3Store(client manager.UploadAPIClient, bucket, keyPrefix, publicURL string) *S3Store {
	return &S3Store{
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
		prefix:    strings.Trim(keyPrefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// New 按配置构建；未配置 bucket 时返回 ErrDisabled
func New(ctx context.Context, c config.Storage) (*S3Store, error) {
	if c.Bucket == "" {
		return nil, ErrDisabled
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(c.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client, c.Bucket, c.KeyPrefix, c.PublicURL), nil
}

func (s *S3Store) key(k string) string {
	k = strings.TrimLeft(k, "/")
	if s.prefix == "" {
		return k
	}
	return s.prefix + "/" + k
}

// Put 上传并返回可访问的 URL
func (s *S3Store) Put(ctx context.Context, obj Object) (string, error) {
	if s == nil {
		return "", ErrDisabled
	}
	key := s.key(obj.Key)
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
		ACL:         types.ObjectCannedACLPublicRead,
	}
	if obj.Size > 0 {
		in.ContentLength = aws.Int64(obj.Size)
	}
	out, err := s.uploader.Upload(ctx, in)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	return out.Location, nil
}
