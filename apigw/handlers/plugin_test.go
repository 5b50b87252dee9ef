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

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-http-utils/headers"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/service/mocks"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

var mockPlugin = &models.Plugin{
	GID:     "stock.fairness",
	Version: "1.0.0",
	Name:    "Fairness",
	IsStock: true,
}

func mockPluginRouter(h *Handlers) *gin.Engine {
	r, apiv1 := newMockRouter()
	p := apiv1.Group("/plugins")
	p.POST("", h.UploadPlugin)
	p.DELETE(":gid", h.DestroyPlugin)
	p.DELETE("", h.DestroyPlugins)
	p.GET(":gid", h.GetPlugin)
	p.GET("", h.GetPlugins)
	p.GET(":gid/download", h.DownloadPlugin)
	p.GET(":gid/algorithms/:cid", h.GetAlgorithm)
	p.GET(":gid/algorithms/:cid/download", h.DownloadAlgorithm)
	p.GET(":gid/bundles/:cid", h.GetBundle)
	return r
}

func TestHandlers_Plugin(t *testing.T) {
	tests := []struct {
		name   string
		req    func() *http.Request
		mock   func(ms *mocks.MockServiceMockRecorder)
		expect func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "upload without file",
			req: func() *http.Request {
				return newUploadRequest("/api/v1/plugins", "", nil, nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "upload invalid package",
			req: func() *http.Request {
				return newUploadRequest("/api/v1/plugins", "plugin.zip", []byte("zip"), nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.UploadPlugin(gomock.Any(), gomock.Any()).Return(nil, dferrors.InputValidation("missing plugin.meta.json")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusBadRequest, w.Code)
				assert.Contains(w.Body.String(), "missing plugin.meta.json")
			},
		},
		{
			name: "upload",
			req: func() *http.Request {
				return newUploadRequest("/api/v1/plugins", "plugin.zip", []byte("zip"), nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.UploadPlugin(gomock.Any(), gomock.Any()).Return(mockPlugin, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.Contains(w.Body.String(), `"gid":"stock.fairness"`)
			},
		},
		{
			name: "get with invalid gid",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins/.hidden", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "get not found",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins/user.plugin", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetPlugin(gomock.Any(), gomock.Eq("user.plugin")).Return(nil, dferrors.ReferenceNotFound("plugin user.plugin not found")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusNotFound, w.Code)
			},
		},
		{
			name: "get plugins",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetPlugins(gomock.Any()).Return([]models.Plugin{*mockPlugin}, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
			},
		},
		{
			name: "destroy plugins",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodDelete, "/api/v1/plugins", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.DestroyPlugins(gomock.Any()).Return(nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
			},
		},
		{
			name: "download plugin",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins/stock.fairness/download", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetPluginZip(gomock.Any(), gomock.Eq("stock.fairness")).Return([]byte("PK"), nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.Equal(zipContentType, w.Header().Get(headers.ContentType))
				assert.Contains(w.Header().Get(headers.ContentDisposition), "stock.fairness.zip")
				assert.Equal("PK", w.Body.String())
			},
		},
		{
			name: "download algorithm",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins/stock.fairness/algorithms/fairness_metrics/download", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetAlgorithmZip(gomock.Any(), gomock.Eq("stock.fairness"), gomock.Eq("fairness_metrics")).Return([]byte("PK"), nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.Contains(w.Header().Get(headers.ContentDisposition), "fairness_metrics.zip")
			},
		},
		{
			name: "get algorithm",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins/stock.fairness/algorithms/fairness_metrics", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetAlgorithm(gomock.Any(), gomock.Eq("stock.fairness"), gomock.Eq("fairness_metrics")).Return(&models.Algorithm{}, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
			},
		},
		{
			name: "get summary bundle",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins/stock.fairness/bundles/ib1?summary=true", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetBundle(gomock.Any(), gomock.Eq("stock.fairness"), gomock.Eq("ib1"), gomock.Eq(true)).Return([]byte(`{"code":"summary"}`), nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.Contains(w.Header().Get(headers.ContentType), gin.MIMEJSON)
				assert.JSONEq(`{"code":"summary"}`, w.Body.String())
			},
		},
		{
			name: "get bundle with invalid summary",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/plugins/stock.fairness/bundles/ib1?summary=maybe", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()
			svc := mocks.NewMockService(ctl)
			w := httptest.NewRecorder()
			h := New(svc, WithWorkDir(t.TempDir()))
			mockRouter := mockPluginRouter(h)

			tc.mock(svc.EXPECT())
			mockRouter.ServeHTTP(w, tc.req())
			tc.expect(t, w)
		})
	}
}
