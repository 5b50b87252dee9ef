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

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

const (
	// Plugin prefix of cache key.
	PluginNamespace = "plugin"

	// Bundle prefix of cache key.
	BundleNamespace = "bundle"
)

// Cache is cache client.
type Cache struct {
	*cache.Cache
	TTL time.Duration

	// plugins tracks cached plugin keys so removing every plugin can drop them.
	plugins cmap.ConcurrentMap[struct{}]
}

// New cache instance. A nil rdb keeps entries in process only.
func New(cfg *config.CacheConfig, rdb redis.UniversalClient) *Cache {
	options := &cache.Options{}
	if cfg.LocalSize > 0 {
		options.LocalCache = cache.NewTinyLFU(cfg.LocalSize, cfg.LocalTTL)
	}

	if rdb != nil {
		options.Redis = rdb
	}

	return &Cache{
		Cache:   cache.New(options),
		TTL:     cfg.TTL,
		plugins: cmap.New[struct{}](),
	}
}

// Make cache key.
func MakeCacheKey(namespace string, id string) string {
	return fmt.Sprintf("apigw:%s:%s", namespace, id)
}

// Make cache key for plugin.
func MakePluginCacheKey(gid string) string {
	return MakeCacheKey(PluginNamespace, gid)
}

// Make cache key for mdx bundle. Keys carry the package hash, so a
// reinstalled plugin never reads bundles of the previous package.
func MakeBundleCacheKey(gid, cid, zipHash string, summary bool) string {
	kind := "full"
	if summary {
		kind = "summary"
	}

	return MakeCacheKey(BundleNamespace, fmt.Sprintf("%s:%s:%s:%s", gid, cid, zipHash, kind))
}

// Once loads the value of key into value, calling do on a miss.
func (c *Cache) Once(ctx context.Context, key string, value any, do func() (any, error)) error {
	return c.Cache.Once(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   c.TTL,
		Do: func(*cache.Item) (any, error) {
			return do()
		},
	})
}

// OncePlugin is Once for the plugin gid.
func (c *Cache) OncePlugin(ctx context.Context, gid string, value any, do func() (any, error)) error {
	key := MakePluginCacheKey(gid)
	if err := c.Once(ctx, key, value, do); err != nil {
		return err
	}

	c.plugins.Set(key, struct{}{})
	return nil
}

// InvalidatePlugin drops cached entries of gid, or of every plugin when gid
// is empty. It is registered as a plugin store change hook.
func (c *Cache) InvalidatePlugin(ctx context.Context, gid string) {
	keys := []string{MakePluginCacheKey(gid)}
	if gid == "" {
		keys = c.plugins.Keys()
	}

	for _, key := range keys {
		c.plugins.Remove(key)
		if err := c.Delete(ctx, key); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warnf("delete cache %s failed: %s", key, err.Error())
		}
	}
}
