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
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/objectstorage/mocks"
)

func TestStore_Remote(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(m *mocks.MockObjectStorageMockRecorder)
		expect func(t *testing.T, s *Store)
	}{
		{
			name: "put retries transient failures",
			mock: func(m *mocks.MockObjectStorageMockRecorder) {
				gomock.InOrder(
					m.PutObject(gomock.Any(), "bucket", "store/plugin/p1/plugin.zip", "sha256:abc", gomock.Any()).Return(errors.New("timeout")).Times(1),
					m.PutObject(gomock.Any(), "bucket", "store/plugin/p1/plugin.zip", "sha256:abc", gomock.Any()).Return(nil).Times(1),
				)
			},
			expect: func(t *testing.T, s *Store) {
				assert := assert.New(t)
				assert.False(s.IsLocal())
				assert.NoError(s.Put(context.Background(), "plugin/p1/plugin.zip", "sha256:abc", []byte("zip")))
			},
		},
		{
			name: "put gives up after the last attempt",
			mock: func(m *mocks.MockObjectStorageMockRecorder) {
				m.PutObject(gomock.Any(), "bucket", "store/a.txt", "", gomock.Any()).Return(errors.New("timeout")).Times(putMaxAttempts)
			},
			expect: func(t *testing.T, s *Store) {
				err := s.Put(context.Background(), "a.txt", "", []byte("a"))
				assert.True(t, dferrors.CheckError(err, dferrors.CodeStoreFailure))
			},
		},
		{
			name: "get missing object",
			mock: func(m *mocks.MockObjectStorageMockRecorder) {
				m.IsObjectExist(gomock.Any(), "bucket", "store/a.txt").Return(false, nil).Times(1)
			},
			expect: func(t *testing.T, s *Store) {
				_, err := s.ReadAll(context.Background(), "a.txt")
				assert.True(t, dferrors.CheckError(err, dferrors.CodeReferenceNotFound))
			},
		},
		{
			name: "get object",
			mock: func(m *mocks.MockObjectStorageMockRecorder) {
				m.IsObjectExist(gomock.Any(), "bucket", "store/a.txt").Return(true, nil).Times(1)
				m.GetObject(gomock.Any(), "bucket", "store/a.txt").Return(io.NopCloser(strings.NewReader("content")), nil).Times(1)
			},
			expect: func(t *testing.T, s *Store) {
				data, err := s.ReadAll(context.Background(), "a.txt")
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("content", string(data))
			},
		},
		{
			name: "stat failure",
			mock: func(m *mocks.MockObjectStorageMockRecorder) {
				m.IsObjectExist(gomock.Any(), "bucket", "store/a.txt").Return(false, errors.New("forbidden")).Times(1)
			},
			expect: func(t *testing.T, s *Store) {
				_, err := s.Exists(context.Background(), "a.txt")
				assert.True(t, dferrors.CheckError(err, dferrors.CodeStoreFailure))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			storage := mocks.NewMockObjectStorage(ctl)
			tc.mock(storage.EXPECT())

			s, err := NewWithStorage(storage, "bucket", "/store/")
			require.NoError(t, err)
			tc.expect(t, s)
		})
	}
}
