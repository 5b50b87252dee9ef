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

package service

import (
	"context"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/cache"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
)

func (s *service) UploadPlugin(ctx context.Context, zipPath string) (*models.Plugin, error) {
	return s.plugins.UploadPlugin(ctx, zipPath)
}

func (s *service) GetPlugin(ctx context.Context, gid string) (*models.Plugin, error) {
	plugin := models.Plugin{}
	if err := s.cache.OncePlugin(ctx, gid, &plugin, func() (any, error) {
		return s.plugins.GetPlugin(ctx, gid)
	}); err != nil {
		return nil, err
	}

	return &plugin, nil
}

func (s *service) GetPlugins(ctx context.Context) ([]models.Plugin, error) {
	return s.plugins.ListPlugins(ctx)
}

func (s *service) DestroyPlugin(ctx context.Context, gid string) error {
	return s.plugins.DeletePlugin(ctx, gid)
}

func (s *service) DestroyPlugins(ctx context.Context) error {
	return s.plugins.DeleteAllPlugins(ctx)
}

func (s *service) GetAlgorithm(ctx context.Context, gid, cid string) (*models.Algorithm, error) {
	return s.plugins.GetAlgorithm(ctx, gid, cid)
}

func (s *service) GetPluginZip(ctx context.Context, gid string) ([]byte, error) {
	return s.plugins.GetPluginZip(ctx, gid)
}

func (s *service) GetAlgorithmZip(ctx context.Context, gid, cid string) ([]byte, error) {
	return s.plugins.GetAlgorithmZip(ctx, gid, cid)
}

func (s *service) GetBundle(ctx context.Context, gid, cid string, summary bool) ([]byte, error) {
	plugin, err := s.GetPlugin(ctx, gid)
	if err != nil {
		return nil, err
	}

	var bundle []byte
	if err := s.cache.Once(ctx, cache.MakeBundleCacheKey(gid, cid, plugin.ZipHash, summary), &bundle, func() (any, error) {
		return s.plugins.GetBundle(ctx, gid, cid, summary)
	}); err != nil {
		return nil, err
	}

	return bundle, nil
}
