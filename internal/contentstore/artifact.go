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
	"context"
	"os"
	"path/filepath"

	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/digest"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

// StoredArtifact describes an uploaded model or dataset after it is stored.
type StoredArtifact struct {
	// Key is the object key or key prefix of a folder.
	Key string

	// ZipHash is the file hash, or the hash of the deterministic zip of a folder.
	ZipHash string

	// Size is the byte size of the file or folder.
	Size int64

	// IsDir reports whether the artifact is a folder.
	IsDir bool
}

// TestArtifactKey returns the key of an uploaded model or dataset.
func TestArtifactKey(kind ArtifactKind, filename string) (string, error) {
	if err := fileutils.CheckFilename(filename); err != nil {
		return "", dferrors.Wrap(dferrors.CodeInputValidation, err, "artifact filename")
	}

	return Key(string(kind), filename)
}

// SaveTestArtifact stores the file or folder at localPath as filename.
func (s *Store) SaveTestArtifact(ctx context.Context, kind ArtifactKind, filename, localPath string) (*StoredArtifact, error) {
	key, err := TestArtifactKey(kind, filename)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "stat %s", localPath)
	}

	if !info.IsDir() {
		hash, err := digest.HashFile(localPath)
		if err != nil {
			return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "hash %s", filename)
		}

		if err := s.PutFile(ctx, key, hash, localPath); err != nil {
			return nil, err
		}

		return &StoredArtifact{Key: key, ZipHash: hash, Size: info.Size()}, nil
	}

	data, err := fileutils.ZipDirBytes(localPath)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "zip %s", filename)
	}

	// A previous upload under the same name must not leave files behind.
	if err := s.DeleteTree(ctx, key); err != nil {
		return nil, err
	}

	var size int64
	err = filepath.Walk(localPath, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(localPath, path)
		if err != nil {
			return err
		}

		objectKey, err := Key(key, rel)
		if err != nil {
			return err
		}

		hash, err := digest.HashFile(path)
		if err != nil {
			return err
		}

		size += fi.Size()
		return s.PutFile(ctx, objectKey, hash, path)
	})
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "store %s", filename)
	}

	return &StoredArtifact{Key: key, ZipHash: digest.SHA256FromBytes(data), Size: size, IsDir: true}, nil
}

// FetchTestArtifact copies an uploaded model or dataset into dstDir and
// returns its local path and hash.
func (s *Store) FetchTestArtifact(ctx context.Context, kind ArtifactKind, filename, dstDir string) (string, string, error) {
	key, err := TestArtifactKey(kind, filename)
	if err != nil {
		return "", "", err
	}

	target, err := fileutils.Join(dstDir, filename)
	if err != nil {
		return "", "", dferrors.Wrap(dferrors.CodeInputValidation, err, "artifact filename")
	}

	exist, err := s.Exists(ctx, key)
	if err != nil {
		return "", "", err
	}

	if exist {
		if err := s.FetchFile(ctx, key, target); err != nil {
			return "", "", err
		}

		hash, err := digest.HashFile(target)
		if err != nil {
			return "", "", dferrors.Wrapf(dferrors.CodeStoreFailure, err, "hash %s", filename)
		}

		return target, hash, nil
	}

	n, err := s.FetchTree(ctx, key, target)
	if err != nil {
		return "", "", err
	}

	if n == 0 {
		return "", "", dferrors.ReferenceNotFound("%s %s not found", kind, filename)
	}

	data, err := fileutils.ZipDirBytes(target)
	if err != nil {
		return "", "", dferrors.Wrapf(dferrors.CodeStoreFailure, err, "zip %s", filename)
	}

	return target, digest.SHA256FromBytes(data), nil
}

// DeleteTestArtifact removes an uploaded model or dataset, file or folder.
func (s *Store) DeleteTestArtifact(ctx context.Context, kind ArtifactKind, filename string) error {
	key, err := TestArtifactKey(kind, filename)
	if err != nil {
		return err
	}

	exist, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}

	if exist {
		return s.Delete(ctx, key)
	}

	return s.DeleteTree(ctx, key)
}

// SaveResultArtifact stores a file emitted for a test result.
func (s *Store) SaveResultArtifact(ctx context.Context, testResultID, filename string, data []byte) (string, error) {
	key, err := ArtifactKey(testResultID, filename)
	if err != nil {
		return "", err
	}

	if err := s.Put(ctx, key, digest.SHA256FromBytes(data), data); err != nil {
		return "", err
	}

	return key, nil
}

// GetResultArtifact returns a file emitted for a test result.
func (s *Store) GetResultArtifact(ctx context.Context, testResultID, filename string) ([]byte, error) {
	key, err := ArtifactKey(testResultID, filename)
	if err != nil {
		return nil, err
	}

	return s.ReadAll(ctx, key)
}

// DeleteResultArtifacts removes every file of a test result.
func (s *Store) DeleteResultArtifacts(ctx context.Context, testResultID string) error {
	key, err := Key(ArtifactsPrefix, testResultID)
	if err != nil {
		return err
	}

	return s.DeleteTree(ctx, key)
}
