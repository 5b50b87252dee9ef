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
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

type local struct {
	// baseDir is the root directory, each bucket is a sub directory of it.
	baseDir string
}

// New local instance.
func newLocal(baseDir string) (ObjectStorage, error) {
	if baseDir == "" {
		return nil, errors.New("local storage requires base directory")
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	if err := fileutils.MkdirAll(abs); err != nil {
		return nil, fmt.Errorf("create base directory failed: %s", err)
	}

	return &local{baseDir: abs}, nil
}

// GetMetadata returns metadata of object storage.
func (l *local) GetMetadata(ctx context.Context) *Metadata {
	return &Metadata{
		Name:     ServiceNameLocal,
		Endpoint: l.baseDir,
	}
}

// CreateBucket creates bucket of object storage.
func (l *local) CreateBucket(ctx context.Context, bucketName string) error {
	dir, err := l.bucketDir(bucketName)
	if err != nil {
		return err
	}

	return fileutils.MkdirAll(dir)
}

// IsBucketExist returns whether the bucket exists.
func (l *local) IsBucketExist(ctx context.Context, bucketName string) (bool, error) {
	dir, err := l.bucketDir(bucketName)
	if err != nil {
		return false, err
	}

	return fileutils.IsDir(dir), nil
}

// LocalPath returns the file path of an object key, an empty key names the bucket directory.
func (l *local) LocalPath(bucketName, objectKey string) (string, error) {
	dir, err := l.bucketDir(bucketName)
	if err != nil {
		return "", err
	}

	if objectKey == "" {
		return dir, nil
	}

	return fileutils.Join(dir, filepath.FromSlash(objectKey))
}

// GetObjectMetadata returns metadata of object.
func (l *local) GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error) {
	path, err := l.LocalPath(bucketName, objectKey)
	if err != nil {
		return nil, false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, err
	}

	if !info.Mode().IsRegular() {
		return nil, false, nil
	}

	return &ObjectMetadata{
		Key:              objectKey,
		ContentLength:    info.Size(),
		LastModifiedTime: info.ModTime(),
	}, true, nil
}

// ListObjectMetadatas returns metadata of objects.
func (l *local) ListObjectMetadatas(ctx context.Context, bucketName, prefix, marker string, limit int64) ([]*ObjectMetadata, error) {
	dir, err := l.bucketDir(bucketName)
	if err != nil {
		return nil, err
	}

	// Walk from the deepest directory named by the prefix.
	root := dir
	if i := strings.LastIndex(prefix, "/"); i > 0 {
		root, err = fileutils.Join(dir, filepath.FromSlash(prefix[:i]))
		if err != nil {
			return nil, err
		}
	}

	var metadatas []*ObjectMetadata
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}

		// Hidden entries hold staging data.
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) || key <= marker {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		metadatas = append(metadatas, &ObjectMetadata{
			Key:              key,
			ContentLength:    info.Size(),
			LastModifiedTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(metadatas, func(i, j int) bool {
		return metadatas[i].Key < metadatas[j].Key
	})

	if limit > 0 && int64(len(metadatas)) > limit {
		metadatas = metadatas[:limit]
	}

	return metadatas, nil
}

// GetObject returns data of object.
func (l *local) GetObject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error) {
	path, err := l.LocalPath(bucketName, objectKey)
	if err != nil {
		return nil, err
	}

	return os.Open(path)
}

// PutObject writes into a hidden temporary file and renames it over the key.
func (l *local) PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.Reader) error {
	path, err := l.LocalPath(bucketName, objectKey)
	if err != nil {
		return err
	}

	if err := fileutils.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// DeleteObject deletes data of object, missing objects are not an error.
func (l *local) DeleteObject(ctx context.Context, bucketName, objectKey string) error {
	path, err := l.LocalPath(bucketName, objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	l.pruneEmptyParents(bucketName, filepath.Dir(path))
	return nil
}

// IsObjectExist returns whether the object exists.
func (l *local) IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error) {
	_, isExist, err := l.GetObjectMetadata(ctx, bucketName, objectKey)
	if err != nil {
		return false, err
	}

	return isExist, nil
}

// GetSignURL is not supported by local storage.
func (l *local) GetSignURL(ctx context.Context, bucketName, objectKey string, method Method, expire time.Duration) (string, error) {
	return "", fmt.Errorf("local storage does not support sign url")
}

func (l *local) bucketDir(bucketName string) (string, error) {
	if bucketName == "" {
		return l.baseDir, nil
	}

	return fileutils.Join(l.baseDir, bucketName)
}

// pruneEmptyParents removes empty directories between dir and the bucket root.
func (l *local) pruneEmptyParents(bucketName, dir string) {
	root, err := l.bucketDir(bucketName)
	if err != nil {
		return
	}

	for fileutils.IsDescendant(root, dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
