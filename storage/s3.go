// Package storage is the object-store adapter: user photos and generated
// plate barcodes go to an S3-compatible bucket (AWS S3 or MinIO). Surface is
// deliberately small: Upload(bytes, name) → url, Delete(url).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // 可选；MinIO 等自建端点
	PathStyle bool
}

type ObjectStore struct {
	client *s3.Client
	bucket string
	region string
	base   *url.URL // 自建端点时用来拼对象 URL
}

func New(ctx context.Context, cfg Config) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	var base *url.URL
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil {
			base = u
		}
	}
	return &ObjectStore{client: client, bucket: cfg.Bucket, region: region, base: base}, nil
}

// Upload 写入并返回可取回的 URL
func (s *ObjectStore) Upload(ctx context.Context, data []byte, name, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &name,
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return s.objectURL(name), nil
}

// Delete 按之前返回的 URL 删除对象；解析不出 key 时报错而不是瞎删
func (s *ObjectStore) Delete(ctx context.Context, rawURL string) error {
	key, err := s.keyFromURL(rawURL)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) objectURL(key string) string {
	if s.base != nil {
		u := *s.base
		u.Path = strings.TrimRight(u.Path, "/") + "/" + s.bucket + "/" + key
		return u.String()
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *ObjectStore) keyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse object url: %w", err)
	}
	path := strings.TrimPrefix(u.Path, "/")
	// path-style: bucket/key；virtual-hosted: key
	if strings.HasPrefix(path, s.bucket+"/") {
		path = strings.TrimPrefix(path, s.bucket+"/")
	}
	if path == "" {
		return "", fmt.Errorf("no object key in url %q", rawURL)
	}
	return path, nil
}
