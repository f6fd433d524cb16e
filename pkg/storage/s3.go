// Package storage keeps documents in S3 compatible object storage: converted
// results are uploaded and exported rows can be read back as input.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/harrisonrobin/gantta/pkg/config"
)

const (
	jsonContentType = "application/json"

	// URLScheme marks an input that names an object in the configured bucket.
	URLScheme = "s3://"
)

type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Store validates cfg and builds a client. No request is made until the
// first Put or Get.
func NewS3Store(cfg config.StorageConfig) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Store{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Put uploads a JSON document and returns the object key it was stored under.
func (s *S3Store) Put(ctx context.Context, name string, content []byte) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("store is nil")
	}
	key, err := ObjectKey(s.prefix, name)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: jsonContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

// Get downloads a stored document, such as exported rows uploaded earlier.
func (s *S3Store) Get(ctx context.Context, name string) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("store is nil")
	}
	key, err := ObjectKey(s.prefix, name)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return data, nil
}

// ObjectKey joins prefix and name into a bucket key.
func ObjectKey(prefix, name string) (string, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return "", fmt.Errorf("object name is required")
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return path.Clean(name), nil
	}
	return path.Join(prefix, name), nil
}

// ObjectName reports whether input is an s3:// reference and returns the
// object name after the scheme. The bucket always comes from config, so a
// name is relative to the configured prefix.
func ObjectName(input string) (string, bool) {
	if !strings.HasPrefix(input, URLScheme) {
		return "", false
	}
	name := strings.TrimLeft(strings.TrimPrefix(input, URLScheme), "/")
	if name == "" {
		return "", false
	}
	return name, true
}
