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

package contentstore

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/objectstorage"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/retry"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const (
	// PluginPrefix holds plugin packages.
	PluginPrefix = "plugin"

	// PackagePrefix holds the zip of every plugin package, keyed by gid.
	PackagePrefix = "package"

	// ArtifactsPrefix holds files emitted by algorithms, keyed by test result.
	ArtifactsPrefix = "artifacts"

	// AssetPrefix is reserved.
	AssetPrefix = "asset"

	// MdxBundlesDir is the bundle directory inside a plugin.
	MdxBundlesDir = "mdx_bundles"

	// AlgorithmsDir is the algorithm directory inside a plugin.
	AlgorithmsDir = "algorithms"

	// BundleSuffix and SummaryBundleSuffix name compiled MDX files.
	BundleSuffix        = ".bundle.json"
	SummaryBundleSuffix = ".summary.bundle.json"
)

// ArtifactKind is the top level prefix of uploaded test artifacts.
type ArtifactKind string

const (
	ArtifactKindTestModel   ArtifactKind = "test_model"
	ArtifactKindTestDataset ArtifactKind = "test_dataset"
)

const (
	putInitBackoff = 0.2
	putMaxBackoff  = 2
	putMaxAttempts = 3
)

// Config addresses the store by a local path or an s3:// or oss:// URL.
type Config struct {
	// URL is the root, either a directory or scheme://bucket/prefix/.
	URL string

	// Region is object storage region.
	Region string

	// Endpoint is object storage endpoint.
	Endpoint string

	// AccessKey is object storage access key.
	AccessKey string

	// SecretKey is object storage secret key.
	SecretKey string

	// S3ForcePathStyle sets force path style for s3.
	S3ForcePathStyle bool
}

// Store lays out plugin packages, bundles and artifacts on an object storage.
type Store struct {
	storage objectstorage.ObjectStorage
	bucket  string
	prefix  string

	// localRoot is set when objects are plain files.
	localRoot string
}

// New returns a store for cfg.URL.
func New(ctx context.Context, cfg Config) (*Store, error) {
	name, bucket, prefix, baseDir, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeStoreFailure, err, "parse content store url")
	}

	storage, err := objectstorage.New(objectstorage.Config{
		Name:             name,
		Region:           cfg.Region,
		Endpoint:         cfg.Endpoint,
		AccessKey:        cfg.AccessKey,
		SecretKey:        cfg.SecretKey,
		S3ForcePathStyle: cfg.S3ForcePathStyle,
		BaseDir:          baseDir,
	})
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeStoreFailure, err, "create object storage")
	}

	if name != objectstorage.ServiceNameLocal {
		exist, err := storage.IsBucketExist(ctx, bucket)
		if err != nil {
			return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "check bucket %s", bucket)
		}

		if !exist {
			return nil, dferrors.Newf(dferrors.CodeStoreFailure, "bucket %s does not exist", bucket)
		}
	}

	return NewWithStorage(storage, bucket, prefix)
}

// NewWithStorage wraps an existing object storage.
func NewWithStorage(storage objectstorage.ObjectStorage, bucket, prefix string) (*Store, error) {
	s := &Store{
		storage: storage,
		bucket:  bucket,
		prefix:  normalizePrefix(prefix),
	}

	if local, ok := storage.(objectstorage.LocalStorage); ok {
		root, err := local.LocalPath(bucket, strings.TrimSuffix(s.prefix, "/"))
		if err != nil {
			return nil, err
		}

		s.localRoot = root
	}

	return s, nil
}

// ParseURL splits a content store URL into backend name, bucket, prefix and local base directory.
func ParseURL(raw string) (name, bucket, prefix, baseDir string, err error) {
	if raw == "" {
		return "", "", "", "", errors.New("empty content store url")
	}

	if !strings.Contains(raw, "://") {
		abs, err := filepath.Abs(raw)
		if err != nil {
			return "", "", "", "", err
		}

		return objectstorage.ServiceNameLocal, "", "", abs, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", "", "", err
	}

	switch u.Scheme {
	case objectstorage.ServiceNameS3, objectstorage.ServiceNameOSS:
		if u.Host == "" {
			return "", "", "", "", errors.Errorf("%s url requires a bucket", u.Scheme)
		}

		return u.Scheme, u.Host, normalizePrefix(strings.TrimPrefix(u.Path, "/")), "", nil
	case "file":
		return objectstorage.ServiceNameLocal, "", "", u.Path, nil
	default:
		return "", "", "", "", errors.Errorf("unsupported content store scheme %s", u.Scheme)
	}
}

// IsLocal reports whether objects are plain files.
func (s *Store) IsLocal() bool {
	return s.localRoot != ""
}

// Metadata returns metadata of the underlying storage.
func (s *Store) Metadata(ctx context.Context) *objectstorage.Metadata {
	return s.storage.GetMetadata(ctx)
}

// Key joins parts into an object key and refuses keys escaping the store root.
func Key(parts ...string) (string, error) {
	var segments []string
	for _, part := range parts {
		for _, segment := range strings.Split(filepath.ToSlash(part), "/") {
			switch segment {
			case "", ".":
				continue
			case "..":
				return "", dferrors.Wrapf(dferrors.CodeInputValidation, fileutils.ErrPathTraversal, "key %s", path.Join(parts...))
			}
			segments = append(segments, segment)
		}
	}

	if len(segments) == 0 {
		return "", dferrors.New(dferrors.CodeInputValidation, "empty key")
	}

	return strings.Join(segments, "/"), nil
}

// checkGID refuses gids that are not a single plain path segment. Hidden
// names are reserved for locks and staging areas.
func checkGID(gid string) error {
	if gid == "" || strings.HasPrefix(gid, ".") || strings.ContainsAny(gid, `/\`) {
		return dferrors.InputValidation("invalid plugin gid %q", gid)
	}

	return nil
}

// PluginKey returns the key of a plugin package directory.
func PluginKey(gid string) (string, error) {
	if err := checkGID(gid); err != nil {
		return "", err
	}

	return Key(PluginPrefix, gid)
}

// PluginZipKey returns the key of a plugin package zip. Zips live apart from
// the package directories, so no gid can name the zip of another.
func PluginZipKey(gid string) (string, error) {
	if err := checkGID(gid); err != nil {
		return "", err
	}

	return Key(PackagePrefix, gid+".zip")
}

// AlgorithmZipKey returns the key of an algorithm sub-package zip.
func AlgorithmZipKey(gid, cid string) (string, error) {
	if err := checkGID(gid); err != nil {
		return "", err
	}

	return Key(PluginPrefix, gid, AlgorithmsDir, cid+".zip")
}

// BundleKey returns the key of a compiled MDX bundle.
func BundleKey(gid, cid string, summary bool) (string, error) {
	suffix := BundleSuffix
	if summary {
		suffix = SummaryBundleSuffix
	}

	if err := checkGID(gid); err != nil {
		return "", err
	}

	return Key(PluginPrefix, gid, MdxBundlesDir, cid+suffix)
}

// ArtifactKey returns the key of a file emitted for a test result.
func ArtifactKey(testResultID, filename string) (string, error) {
	if err := fileutils.CheckFilename(filename); err != nil {
		return "", dferrors.Wrap(dferrors.CodeInputValidation, err, "artifact filename")
	}

	return Key(ArtifactsPrefix, testResultID, filename)
}

func (s *Store) objectKey(key string) string {
	return s.prefix + key
}

// Exists reports whether an object exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	exist, err := s.storage.IsObjectExist(ctx, s.bucket, s.objectKey(key))
	if err != nil {
		return false, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "stat %s", key)
	}

	return exist, nil
}

// Get opens an object for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	exist, err := s.Exists(ctx, key)
	if err != nil {
		return nil, err
	}

	if !exist {
		return nil, dferrors.Newf(dferrors.CodeReferenceNotFound, "%s not found", key)
	}

	rc, err := s.storage.GetObject(ctx, s.bucket, s.objectKey(key))
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "read %s", key)
	}

	return rc, nil
}

// ReadAll returns the content of an object.
func (s *Store) ReadAll(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "read %s", key)
	}

	return data, nil
}

// Put stores data under key.
func (s *Store) Put(ctx context.Context, key, digest string, data []byte) error {
	return s.put(ctx, key, digest, func() (io.ReadSeeker, func(), error) {
		return bytes.NewReader(data), func() {}, nil
	})
}

// PutFile stores the file at localPath under key.
func (s *Store) PutFile(ctx context.Context, key, digest, localPath string) error {
	return s.put(ctx, key, digest, func() (io.ReadSeeker, func(), error) {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, nil, err
		}

		return f, func() { f.Close() }, nil
	})
}

func (s *Store) put(ctx context.Context, key, digest string, open func() (io.ReadSeeker, func(), error)) error {
	_, _, err := retry.Run(ctx, putInitBackoff, putMaxBackoff, putMaxAttempts, func() (any, bool, error) {
		reader, closer, err := open()
		if err != nil {
			// Local read failures are not worth retrying.
			return nil, true, err
		}
		defer closer()

		if err := s.storage.PutObject(ctx, s.bucket, s.objectKey(key), digest, reader); err != nil {
			return nil, s.IsLocal(), err
		}

		return nil, false, nil
	})
	if err != nil {
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "write %s", key)
	}

	return nil
}

// Delete removes an object. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.storage.DeleteObject(ctx, s.bucket, s.objectKey(key)); err != nil {
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "delete %s", key)
	}

	return nil
}

// List returns the keys below dirKey, relative to the store root.
func (s *Store) List(ctx context.Context, dirKey string) ([]string, error) {
	prefix := s.objectKey(normalizePrefix(dirKey))

	var (
		keys   []string
		marker string
	)
	for {
		metadatas, err := s.storage.ListObjectMetadatas(ctx, s.bucket, prefix, marker, objectstorage.DefaultListLimit)
		if err != nil {
			return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "list %s", dirKey)
		}

		for _, m := range metadatas {
			keys = append(keys, strings.TrimPrefix(m.Key, s.prefix))
		}

		if len(metadatas) < objectstorage.DefaultListLimit {
			return keys, nil
		}
		marker = metadatas[len(metadatas)-1].Key
	}
}

// DeleteTree removes every object below dirKey.
func (s *Store) DeleteTree(ctx context.Context, dirKey string) error {
	if s.IsLocal() {
		dir, err := s.localPath(dirKey)
		if err != nil {
			return err
		}

		if err := os.RemoveAll(dir); err != nil {
			return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "delete %s", dirKey)
		}

		return nil
	}

	keys, err := s.List(ctx, dirKey)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}

// FetchTree copies every object below dirKey into dstDir and returns the number of files.
func (s *Store) FetchTree(ctx context.Context, dirKey, dstDir string) (int, error) {
	keys, err := s.List(ctx, dirKey)
	if err != nil {
		return 0, err
	}

	base := normalizePrefix(dirKey)
	for _, key := range keys {
		target, err := fileutils.Join(dstDir, filepath.FromSlash(strings.TrimPrefix(key, base)))
		if err != nil {
			return 0, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "fetch %s", key)
		}

		if err := s.FetchFile(ctx, key, target); err != nil {
			return 0, err
		}
	}

	return len(keys), nil
}

// FetchFile copies one object into dst.
func (s *Store) FetchFile(ctx context.Context, key, dst string) error {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := fileutils.MkdirAll(filepath.Dir(dst)); err != nil {
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "fetch %s", key)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "fetch %s", key)
	}

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "fetch %s", key)
	}

	if err := f.Close(); err != nil {
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "fetch %s", key)
	}

	return nil
}

// LocalDir returns the file system path of key when the store is local.
func (s *Store) LocalDir(key string) (string, bool) {
	if !s.IsLocal() {
		return "", false
	}

	p, err := s.localPath(key)
	if err != nil {
		return "", false
	}

	return p, true
}

func (s *Store) localPath(key string) (string, error) {
	p, err := fileutils.Join(s.localRoot, filepath.FromSlash(key))
	if err != nil {
		return "", dferrors.Wrapf(dferrors.CodeInputValidation, err, "key %s", key)
	}

	return p, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}

	return prefix + "/"
}
