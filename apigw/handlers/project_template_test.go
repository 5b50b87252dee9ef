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
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/service/mocks"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

func mockProjectTemplateRouter(h *Handlers) *gin.Engine {
	r, apiv1 := newMockRouter()
	r.GET("/healthz", h.GetHealth)
	pt := apiv1.Group("/project_templates")
	pt.POST("", h.CreateProjectTemplate)
	pt.DELETE(":id", h.DestroyProjectTemplate)
	pt.PATCH(":id", h.UpdateProjectTemplate)
	pt.GET(":id", h.GetProjectTemplate)
	pt.GET("", h.GetProjectTemplates)
	return r
}

func TestHandlers_ProjectTemplate(t *testing.T) {
	tests := []struct {
		name   string
		req    *http.Request
		mock   func(ms *mocks.MockServiceMockRecorder)
		expect func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "create without name",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/project_templates", strings.NewReader(`{"data":{}}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "create with invalid data",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/project_templates", strings.NewReader(`{"name":"t","data":{"pages":1}}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.CreateProjectTemplate(gomock.Any(), gomock.Eq(types.CreateProjectTemplateRequest{
					Name: "t",
					Data: map[string]any{"pages": float64(1)},
				})).Return(nil, dferrors.InputValidation("invalid template data")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			},
		},
		{
			name: "create",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/project_templates", strings.NewReader(`{"name":"t"}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.CreateProjectTemplate(gomock.Any(), gomock.Any()).Return(&models.ProjectTemplate{
					BaseModel: models.BaseModel{ID: 1},
					Name:      "t",
				}, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.Contains(w.Body.String(), `"name":"t"`)
			},
		},
		{
			name: "update plugin template",
			req:  httptest.NewRequest(http.MethodPatch, "/api/v1/project_templates/1", strings.NewReader(`{"name":"renamed"}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.UpdateProjectTemplate(gomock.Any(), gomock.Eq(uint(1)), gomock.Eq(types.UpdateProjectTemplateRequest{Name: "renamed"})).Return(nil, dferrors.StateConflict("project template 1 is provided by a plugin")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusConflict, w.Code)
			},
		},
		{
			name: "destroy",
			req:  httptest.NewRequest(http.MethodDelete, "/api/v1/project_templates/1", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.DestroyProjectTemplate(gomock.Any(), gomock.Eq(uint(1))).Return(nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
			},
		},
		{
			name: "get templates",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/project_templates?page=2&per_page=5", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetProjectTemplates(gomock.Any(), gomock.Eq(types.GetProjectTemplatesQuery{Page: 2, PerPage: 5})).Return(nil, int64(6), nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
			},
		},
		{
			name: "get template",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/project_templates/1", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetProjectTemplate(gomock.Any(), gomock.Eq(uint(1))).Return(&models.ProjectTemplate{BaseModel: models.BaseModel{ID: 1}}, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
			},
		},
		{
			name: "healthy",
			req:  httptest.NewRequest(http.MethodGet, "/healthz", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.Ping(gomock.Any()).Return(nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.Equal(`"OK"`, w.Body.String())
			},
		},
		{
			name: "queue unhealthy",
			req:  httptest.NewRequest(http.MethodGet, "/healthz", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.Ping(gomock.Any()).Return(dferrors.Wrap(dferrors.CodeQueueUnavailable, errors.New("dial tcp"), "ping queue")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusServiceUnavailable, w.Code)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()
			svc := mocks.NewMockService(ctl)
			w := httptest.NewRecorder()
			h := New(svc)
			mockRouter := mockProjectTemplateRouter(h)

			tc.mock(svc.EXPECT())
			mockRouter.ServeHTTP(w, tc.req)
			tc.expect(t, w)
		})
	}
}
