// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage keeps uploaded document blobs in an S3-compatible bucket.

Blobs are opaque: the store knows keys, sizes and content types, never what
a file contains. Downloads are served through short-lived presigned URLs so
file bytes never pass through the application server twice.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/taibuivan/famvault/pkg/uuid"
)

// S3Config holds the bucket location and static credentials.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Store reads and writes blobs in a single bucket.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store builds the S3 client. A custom endpoint (e.g. MinIO) switches
// to path-style addressing.
func NewS3Store(context context.Context, cfg S3Config) (*S3Store, error) {
	options := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(context, options...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config failed: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// NewKey returns a fresh object key: users/<uid>/<yyyy>/<mm>/<uuid>.
func NewKey(userID string, now time.Time) string {
	return fmt.Sprintf("users/%s/%04d/%02d/%s", userID, now.Year(), int(now.Month()), uuid.New())
}

// Put uploads body under key.
func (store *S3Store) Put(context context.Context, key, contentType string, body io.ReadSeeker, size int64) error {
	_, err := store.client.PutObject(context, &s3.PutObjectInput{
		Bucket:        aws.String(store.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage: put_object_failed: %w", err)
	}
	return nil
}

// Delete removes the object at key. Missing objects are not an error.
func (store *S3Store) Delete(context context.Context, key string) error {
	_, err := store.client.DeleteObject(context, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete_object_failed: %w", err)
	}
	return nil
}

// PresignGet returns a URL that downloads key for ttl. The browser is told
// to save it under filename.
func (store *S3Store) PresignGet(context context.Context, key, filename string, ttl time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	}
	if filename != "" {
		input.ResponseContentDisposition = aws.String(
			mime.FormatMediaType("inline", map[string]string{"filename": filename}),
		)
	}

	request, err := store.presign.PresignGetObject(context, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("storage: presign_get_failed: %w", err)
	}
	return request.URL, nil
}

// Ping checks that the bucket is reachable with the configured credentials.
func (store *S3Store) Ping(context context.Context) error {
	_, err := store.client.HeadBucket(context, &s3.HeadBucketInput{Bucket: aws.String(store.bucket)})
	if err != nil {
		return fmt.Errorf("storage: head_bucket_failed: %w", err)
	}
	return nil
}
