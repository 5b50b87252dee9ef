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

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
)

// redisPingTimeout bounds the startup round trip to the queue server.
const redisPingTimeout = 5 * time.Second

// NewRedis connects to the queue server backing the bundle cache.
func NewRedis(cfg *config.QueueConfig) (redis.UniversalClient, error) {
	redis.SetLogger(&redisLogger{})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{addr},
		DB:       cfg.DB,
		Username: cfg.Username,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "ping queue server %s", addr)
	}

	return client, nil
}
