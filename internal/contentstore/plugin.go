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
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/digest"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const (
	locksDir   = ".locks"
	stagingDir = ".staging"

	lockRetryDelay = 50 * time.Millisecond
)

// PluginCommit describes the staged content of one plugin.
type PluginCommit struct {
	// GID is the plugin gid.
	GID string

	// SourceDir is the verbatim plugin package.
	SourceDir string

	// AlgorithmDirs maps cid to the staged algorithm folder.
	AlgorithmDirs map[string]string

	// BundleDir holds compiled MDX bundles, may be empty.
	BundleDir string
}

// PluginCommitResult holds content hashes of a committed plugin.
type PluginCommitResult struct {
	// ZipHash is the hash of the deterministic package zip.
	ZipHash string

	// AlgorithmHashes maps cid to the hash of its sub-package zip.
	AlgorithmHashes map[string]string
}

// CommitPlugin hashes and stores a plugin package, its algorithm sub-packages
// and its MDX bundles. The tree is assembled in a staging directory first and
// replaces the previous content of the gid as a whole.
func (s *Store) CommitPlugin(ctx context.Context, commit PluginCommit) (*PluginCommitResult, error) {
	log := logger.WithPlugin(commit.GID)

	pluginKey, err := PluginKey(commit.GID)
	if err != nil {
		return nil, err
	}

	zipKey, err := PluginZipKey(commit.GID)
	if err != nil {
		return nil, err
	}

	packageZip, err := fileutils.ZipDirBytes(commit.SourceDir)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "zip plugin %s", commit.GID)
	}

	result := &PluginCommitResult{
		ZipHash:         digest.SHA256FromBytes(packageZip),
		AlgorithmHashes: make(map[string]string, len(commit.AlgorithmDirs)),
	}

	stageParent := ""
	if s.IsLocal() {
		// Staging next to the destination keeps the final rename on one filesystem.
		stageParent = filepath.Join(s.localRoot, PluginPrefix, stagingDir)
	}

	err = fileutils.WithTempDir(stageParent, commit.GID+"-*", func(stage string) error {
		if err := fileutils.CopyDir(stage, commit.SourceDir); err != nil {
			return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "stage plugin %s", commit.GID)
		}

		for cid, dir := range commit.AlgorithmDirs {
			algorithmZip, err := fileutils.ZipDirBytes(dir)
			if err != nil {
				return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "zip algorithm %s:%s", commit.GID, cid)
			}
			result.AlgorithmHashes[cid] = digest.SHA256FromBytes(algorithmZip)

			target := filepath.Join(stage, AlgorithmsDir, cid+".zip")
			if err := fileutils.MkdirAll(filepath.Dir(target)); err != nil {
				return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "stage algorithm %s:%s", commit.GID, cid)
			}

			if err := os.WriteFile(target, algorithmZip, 0644); err != nil {
				return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "stage algorithm %s:%s", commit.GID, cid)
			}
		}

		if commit.BundleDir != "" && fileutils.IsDir(commit.BundleDir) {
			if err := fileutils.CopyDir(filepath.Join(stage, MdxBundlesDir), commit.BundleDir); err != nil {
				return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "stage bundles %s", commit.GID)
			}
		}

		if s.IsLocal() {
			return s.publishLocal(ctx, commit.GID, pluginKey, stage)
		}

		return s.publishRemote(ctx, pluginKey, stage)
	})
	if err != nil {
		return nil, err
	}

	if err := s.Put(ctx, zipKey, result.ZipHash, packageZip); err != nil {
		return nil, err
	}

	log.Infof("committed plugin package, zip hash %s", result.ZipHash)
	return result, nil
}

// publishLocal swaps the staged tree into place under a per-gid file lock.
func (s *Store) publishLocal(ctx context.Context, gid, pluginKey, stage string) error {
	unlock, err := s.lockPlugin(ctx, gid)
	if err != nil {
		return err
	}
	defer unlock()

	dst, err := s.localPath(pluginKey)
	if err != nil {
		return err
	}

	trash := filepath.Join(filepath.Dir(stage), "trash-"+uuid.NewString())
	hadPrevious := fileutils.PathExist(dst)
	if hadPrevious {
		if err := os.Rename(dst, trash); err != nil {
			return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "publish plugin %s", gid)
		}
	}

	if err := os.Rename(stage, dst); err != nil {
		if hadPrevious {
			if rerr := os.Rename(trash, dst); rerr != nil {
				logger.WithPlugin(gid).Errorf("restore previous package failed: %v", rerr)
			}
		}

		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "publish plugin %s", gid)
	}

	if hadPrevious {
		if err := os.RemoveAll(trash); err != nil {
			logger.WithPlugin(gid).Warnf("remove previous package failed: %v", err)
		}
	}

	return nil
}

// publishRemote uploads the staged tree then removes keys absent from it.
func (s *Store) publishRemote(ctx context.Context, pluginKey, stage string) error {
	previous, err := s.List(ctx, pluginKey)
	if err != nil {
		return err
	}

	published := make(map[string]struct{})
	err = filepath.Walk(stage, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(stage, path)
		if err != nil {
			return err
		}

		key, err := Key(pluginKey, rel)
		if err != nil {
			return err
		}

		hash, err := digest.HashFile(path)
		if err != nil {
			return err
		}

		published[key] = struct{}{}
		return s.PutFile(ctx, key, hash, path)
	})
	if err != nil {
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "publish %s", pluginKey)
	}

	for _, key := range previous {
		if _, ok := published[key]; ok {
			continue
		}

		if err := s.Delete(ctx, key); err != nil {
			logger.StoreLogger.Warnf("remove stale object %s failed: %v", key, err)
		}
	}

	return nil
}

func (s *Store) lockPlugin(ctx context.Context, gid string) (func(), error) {
	lockPath := filepath.Join(s.localRoot, PluginPrefix, locksDir, gid+".lock")
	if err := fileutils.MkdirAll(filepath.Dir(lockPath)); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "lock plugin %s", gid)
	}

	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeStoreFailure, err, "lock plugin %s", gid)
	}

	if !locked {
		return nil, dferrors.Newf(dferrors.CodeStoreFailure, "lock plugin %s", gid)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			logger.WithPlugin(gid).Warnf("unlock plugin failed: %v", err)
		}
	}, nil
}

// RestorePlugin unpacks the stored package of gid into dstDir.
func (s *Store) RestorePlugin(ctx context.Context, gid, dstDir string) error {
	key, err := PluginZipKey(gid)
	if err != nil {
		return err
	}

	data, err := s.ReadAll(ctx, key)
	if err != nil {
		return err
	}

	if err := fileutils.UnzipBytes(data, dstDir); err != nil {
		return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "unpack plugin %s", gid)
	}

	return nil
}

// FetchAlgorithm unpacks an algorithm sub-package into dstDir and returns its hash.
func (s *Store) FetchAlgorithm(ctx context.Context, gid, cid, dstDir string) (string, error) {
	key, err := AlgorithmZipKey(gid, cid)
	if err != nil {
		return "", err
	}

	data, err := s.ReadAll(ctx, key)
	if err != nil {
		return "", err
	}

	if err := fileutils.UnzipBytes(data, dstDir); err != nil {
		return "", dferrors.Wrapf(dferrors.CodeStoreFailure, err, "unpack algorithm %s:%s", gid, cid)
	}

	return digest.SHA256FromBytes(data), nil
}

// GetBundle returns a compiled MDX bundle.
func (s *Store) GetBundle(ctx context.Context, gid, cid string, summary bool) ([]byte, error) {
	key, err := BundleKey(gid, cid, summary)
	if err != nil {
		return nil, err
	}

	return s.ReadAll(ctx, key)
}

// DeletePlugin removes the package, bundles and zips of gid.
func (s *Store) DeletePlugin(ctx context.Context, gid string) error {
	pluginKey, err := PluginKey(gid)
	if err != nil {
		return err
	}

	zipKey, err := PluginZipKey(gid)
	if err != nil {
		return err
	}

	if s.IsLocal() {
		unlock, err := s.lockPlugin(ctx, gid)
		if err != nil {
			return err
		}
		defer unlock()
	}

	if err := s.DeleteTree(ctx, pluginKey); err != nil {
		return err
	}

	return s.Delete(ctx, zipKey)
}

// DeleteAllPlugins removes every stored plugin.
func (s *Store) DeleteAllPlugins(ctx context.Context) error {
	if s.IsLocal() {
		root, err := s.localPath(PluginPrefix)
		if err != nil {
			return err
		}

		packages, err := s.localPath(PackagePrefix)
		if err != nil {
			return err
		}

		if err := os.RemoveAll(packages); err != nil {
			return dferrors.Wrap(dferrors.CodeStoreFailure, err, "delete plugin zips")
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return dferrors.Wrap(dferrors.CodeStoreFailure, err, "list plugins")
		}

		for _, entry := range entries {
			// Locks and staging areas may be in use.
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
				return dferrors.Wrapf(dferrors.CodeStoreFailure, err, "delete %s", entry.Name())
			}
		}

		return nil
	}

	if err := s.DeleteTree(ctx, PackagePrefix); err != nil {
		return err
	}

	return s.DeleteTree(ctx, PluginPrefix)
}

// ListPluginGIDs returns gids of stored plugin packages.
func (s *Store) ListPluginGIDs(ctx context.Context) ([]string, error) {
	keys, err := s.List(ctx, PackagePrefix)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, key := range keys {
		rest := strings.TrimPrefix(key, PackagePrefix+"/")
		if strings.HasSuffix(rest, ".zip") && !strings.Contains(rest, "/") {
			seen[strings.TrimSuffix(rest, ".zip")] = struct{}{}
		}
	}

	gids := make([]string, 0, len(seen))
	for gid := range seen {
		gids = append(gids, gid)
	}
	sort.Strings(gids)

	return gids, nil
}
