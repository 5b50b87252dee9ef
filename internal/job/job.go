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

//go:generate mockgen -destination mocks/job_mock.go -source job.go -package mocks

package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

const (
	// DefaultStream is the work stream consumed by test workers.
	DefaultStream = "aiverify:worker:task_queue"

	// DefaultGroup is the consumer group of test workers.
	DefaultGroup = "aiverify_workers"

	// TaskField is the stream entry field holding the task payload.
	TaskField = "task"

	// DefaultBlockTimeout bounds a blocking read of new entries.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultReadCount is the number of entries read at once.
	DefaultReadCount = 1

	// DefaultPingTimeout bounds the liveness round trip.
	DefaultPingTimeout = 2 * time.Second
)

const (
	pendingStreamID = "0"
	newStreamID     = ">"
	groupStartID    = "0"
	busyGroupPrefix = "BUSYGROUP"
)

// Config is the queue configuration.
type Config struct {
	// Addrs is the server addresses, host:port.
	Addrs []string

	// MasterName is the sentinel master name.
	MasterName string

	// Username is the server username.
	Username string

	// Password is the server password.
	Password string

	// DB is the server database.
	DB int

	// Stream is the stream name.
	Stream string

	// Group is the consumer group name.
	Group string
}

// Queue is a durable, consumer grouped work stream.
type Queue interface {
	// Ping checks the server is reachable.
	Ping(context.Context) error

	// EnsureGroup creates the stream and the consumer group when missing.
	EnsureGroup(context.Context) error

	// Enqueue appends a task and returns its entry id.
	Enqueue(context.Context, *Task) (string, error)

	// Remove deletes an entry and reports whether it existed.
	Remove(context.Context, string) (bool, error)

	// Read returns new entries for consumer, waiting up to the block timeout.
	Read(ctx context.Context, consumer string) ([]*Message, error)

	// ReadPending returns entries delivered to consumer but not acknowledged,
	// with ids greater than after. An empty after starts at the beginning.
	ReadPending(ctx context.Context, consumer string, after string) ([]*Message, error)

	// Ack acknowledges entries.
	Ack(context.Context, ...string) error

	// Len returns the number of entries in the stream.
	Len(context.Context) (int64, error)

	// Close releases the client.
	Close() error
}

type queue struct {
	rdb          redis.UniversalClient
	stream       string
	group        string
	blockTimeout time.Duration
}

// Option configures the queue.
type Option func(q *queue)

// WithBlockTimeout sets the blocking window of reads.
func WithBlockTimeout(d time.Duration) Option {
	return func(q *queue) {
		q.blockTimeout = d
	}
}

// New connects to the server and returns the queue.
func New(cfg *Config, options ...Option) (Queue, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("queue requires at least one address")
	}

	redis.SetLogger(&redisLogger{})

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
	})

	return NewWithClient(rdb, cfg.Stream, cfg.Group, options...), nil
}

// NewWithClient returns the queue over an existing client.
func NewWithClient(rdb redis.UniversalClient, stream, group string, options ...Option) Queue {
	if stream == "" {
		stream = DefaultStream
	}

	if group == "" {
		group = DefaultGroup
	}

	q := &queue{
		rdb:          rdb,
		stream:       stream,
		group:        group,
		blockTimeout: DefaultBlockTimeout,
	}

	for _, opt := range options {
		opt(q)
	}

	return q
}

func (q *queue) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	return q.rdb.Ping(ctx).Err()
}

func (q *queue) EnsureGroup(ctx context.Context) error {
	if err := q.rdb.XGroupCreateMkStream(ctx, q.stream, q.group, groupStartID).Err(); err != nil {
		if strings.HasPrefix(err.Error(), busyGroupPrefix) {
			return nil
		}

		return err
	}

	logger.JobLogger.Infof("created consumer group %s on stream %s", q.group, q.stream)
	return nil
}

func (q *queue) Enqueue(ctx context.Context, task *Task) (string, error) {
	payload, err := MarshalTask(task)
	if err != nil {
		return "", err
	}

	id, err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: []interface{}{TaskField, payload},
	}).Result()
	if err != nil {
		return "", err
	}

	logger.JobLogger.Infof("enqueued test run %s as %s", task.ID, id)
	return id, nil
}

func (q *queue) Remove(ctx context.Context, id string) (bool, error) {
	n, err := q.rdb.XDel(ctx, q.stream, id).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (q *queue) Read(ctx context.Context, consumer string) ([]*Message, error) {
	return q.read(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: consumer,
		Streams:  []string{q.stream, newStreamID},
		Count:    DefaultReadCount,
		Block:    q.blockTimeout,
	})
}

func (q *queue) ReadPending(ctx context.Context, consumer string, after string) ([]*Message, error) {
	if after == "" {
		after = pendingStreamID
	}

	// A concrete id reads the history of consumer and never blocks.
	return q.read(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: consumer,
		Streams:  []string{q.stream, after},
		Count:    DefaultReadCount,
		Block:    -1,
	})
}

func (q *queue) read(ctx context.Context, args *redis.XReadGroupArgs) ([]*Message, error) {
	streams, err := q.rdb.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	var messages []*Message
	for _, stream := range streams {
		for _, m := range stream.Messages {
			messages = append(messages, newMessage(m))
		}
	}

	return messages, nil
}

func (q *queue) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	return q.rdb.XAck(ctx, q.stream, q.group, ids...).Err()
}

func (q *queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.XLen(ctx, q.stream).Result()
}

func (q *queue) Close() error {
	return q.rdb.Close()
}

func newMessage(m redis.XMessage) *Message {
	msg := &Message{ID: m.ID}

	raw, ok := m.Values[TaskField]
	if !ok {
		// Entries deleted after delivery come back without fields.
		return msg
	}

	s, ok := raw.(string)
	if !ok {
		msg.Err = fmt.Errorf("entry %s has a non string task field", m.ID)
		return msg
	}

	task := &Task{}
	if err := UnmarshalTask(s, task); err != nil {
		msg.Err = err
		return msg
	}

	msg.Task = task
	return msg
}

// MarshalTask encodes a task payload.
func MarshalTask(task *Task) (string, error) {
	if task == nil {
		return "", errors.New("task is nil")
	}

	b, err := json.Marshal(task)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// UnmarshalTask decodes a task payload.
func UnmarshalTask(data string, task *Task) error {
	return json.Unmarshal([]byte(data), task)
}
