// Package objectstore keeps binary blobs such as profile images.
package objectstore

import (
	"context"
	"io"
)

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
}

type Config struct {
	Backend       string // "s3" or "dir"
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Dir           string
}
