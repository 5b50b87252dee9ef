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

package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

var mockTask = &Task{
	ID:                     "7b0e4c2e-8d0c-4f57-9d8f-1f3a0c2d9a11",
	Mode:                   "upload",
	AlgorithmGID:           "stock.X",
	AlgorithmCID:           "algo_a",
	AlgorithmHash:          "sha256:aaaa",
	AlgorithmArgs:          []byte(`{}`),
	ModelFile:              "model_m.sav",
	ModelFileHash:          "sha256:bbbb",
	ModelType:              "classification",
	TestDataset:            "data_d.sav",
	TestDatasetHash:        "sha256:cccc",
	GroundTruthDataset:     "data_d.sav",
	GroundTruthDatasetHash: "sha256:cccc",
	GroundTruth:            "default",
}

func TestNew(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)

	q, err := New(&Config{Addrs: []string{"127.0.0.1:6379"}})
	assert.NoError(t, err)
	assert.NotNil(t, q)
	assert.NoError(t, q.Close())
}

func TestQueue_EnsureGroup(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(mock redismock.ClientMock)
		expect func(t *testing.T, err error)
	}{
		{
			name: "create group",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXGroupCreateMkStream(DefaultStream, DefaultGroup, "0").SetVal("OK")
			},
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "group already exists",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXGroupCreateMkStream(DefaultStream, DefaultGroup, "0").SetErr(errors.New("BUSYGROUP Consumer Group name already exists"))
			},
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "server error",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXGroupCreateMkStream(DefaultStream, DefaultGroup, "0").SetErr(errors.New("connection refused"))
			},
			expect: func(t *testing.T, err error) {
				assert.EqualError(t, err, "connection refused")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			tc.mock(mock)
			q := NewWithClient(rdb, "", "")
			tc.expect(t, q.EnsureGroup(context.Background()))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueue_Enqueue(t *testing.T) {
	payload, err := MarshalTask(mockTask)
	assert.NoError(t, err)

	tests := []struct {
		name   string
		mock   func(mock redismock.ClientMock)
		expect func(t *testing.T, id string, err error)
	}{
		{
			name: "enqueue task",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXAdd(&redis.XAddArgs{
					Stream: DefaultStream,
					Values: []interface{}{TaskField, payload},
				}).SetVal("1700000000000-0")
			},
			expect: func(t *testing.T, id string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, "1700000000000-0", id)
			},
		},
		{
			name: "server error",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXAdd(&redis.XAddArgs{
					Stream: DefaultStream,
					Values: []interface{}{TaskField, payload},
				}).SetErr(errors.New("foo"))
			},
			expect: func(t *testing.T, id string, err error) {
				assert.EqualError(t, err, "foo")
				assert.Empty(t, id)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			tc.mock(mock)
			q := NewWithClient(rdb, DefaultStream, DefaultGroup)
			id, err := q.Enqueue(context.Background(), mockTask)
			tc.expect(t, id, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueue_Remove(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	q := NewWithClient(rdb, "", "")

	mock.ExpectXDel(DefaultStream, "1-0").SetVal(1)
	ok, err := q.Remove(context.Background(), "1-0")
	assert.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectXDel(DefaultStream, "1-0").SetVal(0)
	ok, err = q.Remove(context.Background(), "1-0")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueue_Read(t *testing.T) {
	payload, err := MarshalTask(mockTask)
	assert.NoError(t, err)

	tests := []struct {
		name    string
		pending bool
		after   string
		mock    func(mock redismock.ClientMock)
		expect  func(t *testing.T, messages []*Message, err error)
	}{
		{
			name: "read new entry",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXReadGroup(&redis.XReadGroupArgs{
					Group:    DefaultGroup,
					Consumer: "worker-1",
					Streams:  []string{DefaultStream, ">"},
					Count:    DefaultReadCount,
					Block:    time.Second,
				}).SetVal([]redis.XStream{{
					Stream:   DefaultStream,
					Messages: []redis.XMessage{{ID: "1-0", Values: map[string]interface{}{TaskField: payload}}},
				}})
			},
			expect: func(t *testing.T, messages []*Message, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Len(messages, 1)
				assert.Equal("1-0", messages[0].ID)
				assert.Equal(mockTask.ID, messages[0].Task.ID)
				assert.Equal("default", messages[0].Task.GroundTruth)
				assert.False(messages[0].Deleted())
			},
		},
		{
			name:    "read own pending entries",
			pending: true,
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXReadGroup(&redis.XReadGroupArgs{
					Group:    DefaultGroup,
					Consumer: "worker-1",
					Streams:  []string{DefaultStream, "0"},
					Count:    DefaultReadCount,
					Block:    -1,
				}).SetVal([]redis.XStream{{
					Stream: DefaultStream,
					Messages: []redis.XMessage{
						{ID: "1-0", Values: map[string]interface{}{}},
						{ID: "2-0", Values: map[string]interface{}{TaskField: "{"}},
					},
				}})
			},
			expect: func(t *testing.T, messages []*Message, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Len(messages, 2)
				assert.True(messages[0].Deleted())
				assert.False(messages[1].Deleted())
				assert.Error(messages[1].Err)
			},
		},
		{
			name:    "read own pending entries after an id",
			pending: true,
			after:   "1-0",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXReadGroup(&redis.XReadGroupArgs{
					Group:    DefaultGroup,
					Consumer: "worker-1",
					Streams:  []string{DefaultStream, "1-0"},
					Count:    DefaultReadCount,
					Block:    -1,
				}).SetVal([]redis.XStream{{Stream: DefaultStream}})
			},
			expect: func(t *testing.T, messages []*Message, err error) {
				assert.NoError(t, err)
				assert.Empty(t, messages)
			},
		},
		{
			name: "block window elapsed",
			mock: func(mock redismock.ClientMock) {
				mock.ExpectXReadGroup(&redis.XReadGroupArgs{
					Group:    DefaultGroup,
					Consumer: "worker-1",
					Streams:  []string{DefaultStream, ">"},
					Count:    DefaultReadCount,
					Block:    time.Second,
				}).RedisNil()
			},
			expect: func(t *testing.T, messages []*Message, err error) {
				assert.NoError(t, err)
				assert.Empty(t, messages)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			tc.mock(mock)
			q := NewWithClient(rdb, "", "", WithBlockTimeout(time.Second))
			var messages []*Message
			if tc.pending {
				messages, err = q.ReadPending(context.Background(), "worker-1", tc.after)
			} else {
				messages, err = q.Read(context.Background(), "worker-1")
			}
			tc.expect(t, messages, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueue_AckAndLen(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	q := NewWithClient(rdb, "", "")

	assert.NoError(t, q.Ack(context.Background()))

	mock.ExpectXAck(DefaultStream, DefaultGroup, "1-0").SetVal(1)
	assert.NoError(t, q.Ack(context.Background(), "1-0"))

	mock.ExpectXLen(DefaultStream).SetVal(3)
	n, err := q.Len(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	assert.Error(t, q.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarshalTask(t *testing.T) {
	_, err := MarshalTask(nil)
	assert.Error(t, err)

	payload, err := MarshalTask(&Task{ID: "a", AlgorithmArgs: []byte(`{"k":1}`)})
	assert.NoError(t, err)
	assert.Contains(t, payload, `"algorithmArgs":{"k":1}`)
	assert.NotContains(t, payload, "groundTruth")
}
