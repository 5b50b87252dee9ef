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

package objectstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	aliyunoss "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/go-http-utils/headers"
)

// oss stores objects on Alibaba Cloud OSS. The sdk has no context support,
// so calls only check ctx before they start.
type oss struct {
	client   *aliyunoss.Client
	region   string
	endpoint string
}

func newOSS(cfg Config) (ObjectStorage, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Region == "" {
			return nil, errors.New("oss requires an endpoint or a region")
		}

		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Region)
	}

	// OSS has no ambient credential chain.
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("oss requires an access key and a secret key")
	}

	options := []aliyunoss.ClientOption{aliyunoss.Region(cfg.Region)}
	if cfg.HTTPClient != nil {
		options = append(options, aliyunoss.HTTPClient(cfg.HTTPClient))
	}

	client, err := aliyunoss.New(endpoint, cfg.AccessKey, cfg.SecretKey, options...)
	if err != nil {
		return nil, fmt.Errorf("new oss client failed: %s", err)
	}

	return &oss{client: client, region: cfg.Region, endpoint: endpoint}, nil
}

func (o *oss) GetMetadata(ctx context.Context) *Metadata {
	return &Metadata{
		Name:     ServiceNameOSS,
		Region:   o.region,
		Endpoint: o.endpoint,
	}
}

func (o *oss) bucket(ctx context.Context, bucketName string) (*aliyunoss.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return o.client.Bucket(bucketName)
}

func (o *oss) CreateBucket(ctx context.Context, bucketName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return o.client.CreateBucket(bucketName)
}

func (o *oss) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	return o.client.IsBucketExist(bucketName)
}

func (o *oss) GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error) {
	bucket, err := o.bucket(ctx, bucketName)
	if err != nil {
		return nil, false, err
	}

	header, err := bucket.GetObjectDetailedMeta(objectKey)
	if err != nil {
		if isOSSNotFound(err) {
			return nil, false, nil
		}

		return nil, false, err
	}

	contentLength, err := strconv.ParseInt(header.Get(headers.ContentLength), 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("invalid content length of %s: %w", objectKey, err)
	}

	metadata := &ObjectMetadata{
		Key:           objectKey,
		ContentLength: contentLength,
		ContentType:   header.Get(headers.ContentType),
		ETag:          header.Get(headers.ETag),
		Digest:        header.Get(aliyunoss.HTTPHeaderOssMetaPrefix + MetaDigest),
	}

	// Last-Modified is optional on HEAD responses.
	if lastModified := header.Get(aliyunoss.HTTPHeaderLastModified); lastModified != "" {
		if metadata.LastModifiedTime, err = time.Parse(http.TimeFormat, lastModified); err != nil {
			return nil, false, err
		}
	}

	return metadata, true, nil
}

func (o *oss) ListObjectMetadatas(ctx context.Context, bucketName, prefix, marker string, limit int64) ([]*ObjectMetadata, error) {
	bucket, err := o.bucket(ctx, bucketName)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}

	resp, err := bucket.ListObjects(aliyunoss.Prefix(prefix), aliyunoss.Marker(marker), aliyunoss.MaxKeys(int(limit)))
	if err != nil {
		return nil, err
	}

	metadatas := make([]*ObjectMetadata, 0, len(resp.Objects))
	for _, object := range resp.Objects {
		metadatas = append(metadatas, &ObjectMetadata{
			Key:              object.Key,
			ETag:             object.ETag,
			ContentLength:    object.Size,
			LastModifiedTime: object.LastModified,
		})
	}

	return metadatas, nil
}

func (o *oss) GetObject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error) {
	bucket, err := o.bucket(ctx, bucketName)
	if err != nil {
		return nil, err
	}

	return bucket.GetObject(objectKey)
}

func (o *oss) PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.Reader) error {
	bucket, err := o.bucket(ctx, bucketName)
	if err != nil {
		return err
	}

	var options []aliyunoss.Option
	if digest != "" {
		options = append(options, aliyunoss.Meta(MetaDigest, digest))
	}

	return bucket.PutObject(objectKey, reader, options...)
}

func (o *oss) DeleteObject(ctx context.Context, bucketName, objectKey string) error {
	bucket, err := o.bucket(ctx, bucketName)
	if err != nil {
		return err
	}

	return bucket.DeleteObject(objectKey)
}

func (o *oss) IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error) {
	_, exist, err := o.GetObjectMetadata(ctx, bucketName, objectKey)
	return exist, err
}

func (o *oss) GetSignURL(ctx context.Context, bucketName, objectKey string, method Method, expire time.Duration) (string, error) {
	var ossHTTPMethod aliyunoss.HTTPMethod
	switch method {
	case MethodGet:
		ossHTTPMethod = aliyunoss.HTTPGet
	case MethodPut:
		ossHTTPMethod = aliyunoss.HTTPPut
	case MethodHead:
		ossHTTPMethod = aliyunoss.HTTPHead
	case MethodDelete:
		ossHTTPMethod = aliyunoss.HTTPDelete
	default:
		return "", fmt.Errorf("not support method %s", method)
	}

	bucket, err := o.bucket(ctx, bucketName)
	if err != nil {
		return "", err
	}

	return bucket.SignURL(objectKey, ossHTTPMethod, int64(expire.Seconds()))
}

// isOSSNotFound reports a 404, HEAD responses carry no error code.
func isOSSNotFound(err error) bool {
	var serr aliyunoss.ServiceError
	return errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound
}
