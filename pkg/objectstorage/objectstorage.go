/*
 *     Copyright 2024 The AI Verify Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//go:generate mockgen -destination mocks/objectstorage_mock.go -source objectstorage.go -package mocks

package objectstorage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Metadata struct {
	// Name is object storage name of type, it can be s3, oss or local.
	Name string

	// Region is storage region.
	Region string

	// Endpoint is datacenter endpoint.
	Endpoint string
}

type ObjectMetadata struct {
	// Key is object key.
	Key string

	// ContentLength is Content-Length header.
	ContentLength int64

	// ContentType is Content-Type header.
	ContentType string

	// ETag is ETag header.
	ETag string

	// Digest is object digest.
	Digest string

	// LastModifiedTime is last modified time.
	LastModifiedTime time.Time
}

// Config selects and configures a backend.
type Config struct {
	// Name is the backend, one of s3, oss or local.
	Name string

	// Region is storage region.
	Region string

	// Endpoint is datacenter endpoint, empty means the provider default.
	Endpoint string

	// AccessKey is access key ID, empty means the provider credential chain.
	AccessKey string

	// SecretKey is access key secret.
	SecretKey string

	// S3ForcePathStyle sets force path style for s3.
	S3ForcePathStyle bool

	// BaseDir is the root directory of the local backend.
	BaseDir string

	// HTTPClient carries the requests of remote backends, nil means the sdk default.
	HTTPClient *http.Client
}

type ObjectStorage interface {
	// GetMetadata returns metadata of object storage.
	GetMetadata(ctx context.Context) *Metadata

	// CreateBucket creates bucket of object storage.
	CreateBucket(ctx context.Context, bucketName string) error

	// IsBucketExist returns whether the bucket exists.
	IsBucketExist(ctx context.Context, bucketName string) (bool, error)

	// GetObjectMetadata returns metadata of object.
	GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error)

	// ListObjectMetadatas returns metadata of objects whose key starts with prefix,
	// ordered by key and starting after marker.
	ListObjectMetadatas(ctx context.Context, bucketName, prefix, marker string, limit int64) ([]*ObjectMetadata, error)

	// GetObject returns data of object.
	GetObject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error)

	// PutObject puts data of object.
	PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.Reader) error

	// DeleteObject deletes data of object.
	DeleteObject(ctx context.Context, bucketName, objectKey string) error

	// IsObjectExist returns whether the object exists.
	IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error)

	// GetSignURL returns sign url of object.
	GetSignURL(ctx context.Context, bucketName, objectKey string, method Method, expire time.Duration) (string, error)
}

// LocalStorage is implemented by backends whose objects are plain files.
type LocalStorage interface {
	// LocalPath returns the file path of an object key, an empty key names the bucket directory.
	LocalPath(bucketName, objectKey string) (string, error)
}

// New object storage interface.
func New(cfg Config) (ObjectStorage, error) {
	switch cfg.Name {
	case ServiceNameS3:
		return newS3(cfg)
	case ServiceNameOSS:
		return newOSS(cfg)
	case ServiceNameLocal:
		return newLocal(cfg.BaseDir)
	}

	return nil, fmt.Errorf("unknow service name %s", cfg.Name)
}
