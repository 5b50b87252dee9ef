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
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testS3Endpoint = "http://s3.aiverify.test"

func TestS3(t *testing.T) {
	tests := []struct {
		name   string
		mock   func()
		expect func(t *testing.T, s ObjectStorage)
	}{
		{
			name: "bucket exists",
			mock: func() {
				httpmock.RegisterResponder(http.MethodHead, testS3Endpoint+"/bucket", httpmock.NewStringResponder(http.StatusOK, ""))
			},
			expect: func(t *testing.T, s ObjectStorage) {
				exist, err := s.IsBucketExist(context.Background(), "bucket")
				assert := assert.New(t)
				assert.NoError(err)
				assert.True(exist)
			},
		},
		{
			name: "bucket does not exist",
			mock: func() {
				httpmock.RegisterResponder(http.MethodHead, testS3Endpoint+"/bucket", httpmock.NewStringResponder(http.StatusNotFound, ""))
			},
			expect: func(t *testing.T, s ObjectStorage) {
				exist, err := s.IsBucketExist(context.Background(), "bucket")
				assert := assert.New(t)
				assert.NoError(err)
				assert.False(exist)
			},
		},
		{
			name: "object metadata",
			mock: func() {
				httpmock.RegisterResponder(http.MethodHead, testS3Endpoint+"/bucket/plugin/p1/plugin.zip", func(req *http.Request) (*http.Response, error) {
					resp := httpmock.NewStringResponse(http.StatusOK, "")
					resp.Header.Set("Content-Length", "3")
					resp.Header.Set("Content-Type", "application/zip")
					resp.Header.Set("ETag", `"etag"`)
					resp.Header.Set("X-Amz-Meta-Digest", "sha256:abc")
					return resp, nil
				})
			},
			expect: func(t *testing.T, s ObjectStorage) {
				metadata, exist, err := s.GetObjectMetadata(context.Background(), "bucket", "plugin/p1/plugin.zip")
				require.NoError(t, err)
				require.True(t, exist)
				assert := assert.New(t)
				assert.Equal("plugin/p1/plugin.zip", metadata.Key)
				assert.EqualValues(3, metadata.ContentLength)
				assert.Equal("application/zip", metadata.ContentType)
				assert.Equal("sha256:abc", metadata.Digest)
			},
		},
		{
			name: "missing object",
			mock: func() {
				httpmock.RegisterResponder(http.MethodHead, testS3Endpoint+"/bucket/a.txt", httpmock.NewStringResponder(http.StatusNotFound, ""))
			},
			expect: func(t *testing.T, s ObjectStorage) {
				exist, err := s.IsObjectExist(context.Background(), "bucket", "a.txt")
				assert := assert.New(t)
				assert.NoError(err)
				assert.False(exist)
			},
		},
		{
			name: "get object",
			mock: func() {
				httpmock.RegisterResponder(http.MethodGet, testS3Endpoint+"/bucket/a.txt", httpmock.NewStringResponder(http.StatusOK, "content"))
			},
			expect: func(t *testing.T, s ObjectStorage) {
				rc, err := s.GetObject(context.Background(), "bucket", "a.txt")
				require.NoError(t, err)
				defer rc.Close()

				data, err := io.ReadAll(rc)
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("content", string(data))
			},
		},
		{
			name: "put object with digest",
			mock: func() {
				httpmock.RegisterResponder(http.MethodPut, testS3Endpoint+"/bucket/a.txt", func(req *http.Request) (*http.Response, error) {
					if req.Header.Get("X-Amz-Meta-Digest") != "sha256:abc" {
						return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
					}

					return httpmock.NewStringResponse(http.StatusOK, ""), nil
				})
			},
			expect: func(t *testing.T, s ObjectStorage) {
				assert.NoError(t, s.PutObject(context.Background(), "bucket", "a.txt", "sha256:abc", strings.NewReader("content")))
			},
		},
		{
			name: "delete object",
			mock: func() {
				httpmock.RegisterResponder(http.MethodDelete, testS3Endpoint+"/bucket/a.txt", httpmock.NewStringResponder(http.StatusNoContent, ""))
			},
			expect: func(t *testing.T, s ObjectStorage) {
				assert.NoError(t, s.DeleteObject(context.Background(), "bucket", "a.txt"))
			},
		},
		{
			name: "unregistered request stays off the network",
			mock: func() {},
			expect: func(t *testing.T, s ObjectStorage) {
				_, err := s.IsObjectExist(context.Background(), "bucket", "b.txt")
				assert := assert.New(t)
				assert.Error(err)
				assert.Contains(err.Error(), "no responder found")
			},
		},
		{
			name: "sign url",
			mock: func() {},
			expect: func(t *testing.T, s ObjectStorage) {
				u, err := s.GetSignURL(context.Background(), "bucket", "a.txt", MethodGet, time.Minute)
				assert := assert.New(t)
				assert.NoError(err)
				assert.Contains(u, testS3Endpoint+"/bucket/a.txt?")
				assert.Contains(u, "X-Amz-Signature=")
			},
		},
		{
			name: "sign url with unknown method",
			mock: func() {},
			expect: func(t *testing.T, s ObjectStorage) {
				_, err := s.GetSignURL(context.Background(), "bucket", "a.txt", Method("PATCH"), time.Minute)
				assert.EqualError(t, err, "not support method PATCH")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := &http.Client{}
			httpmock.ActivateNonDefault(client)
			defer httpmock.DeactivateAndReset()
			tc.mock()

			s, err := New(Config{
				Name:             ServiceNameS3,
				Region:           "us-east-1",
				Endpoint:         testS3Endpoint,
				AccessKey:        "ak",
				SecretKey:        "sk",
				S3ForcePathStyle: true,
				HTTPClient:       client,
			})
			require.NoError(t, err)
			tc.expect(t, s)
		})
	}
}
