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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-http-utils/headers"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/service/mocks"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

const mockTestRunID = "4f1f2d3c-8a6b-4c5d-9e7f-0a1b2c3d4e5f"

var (
	mockRunTestReqBody = `
		{
		   "mode": "upload",
		   "algorithmGID": "stock.fairness",
		   "algorithmCID": "fairness_metrics",
		   "modelFilename": "model.sav",
		   "testDatasetFilename": "data.sav",
		   "groundTruth": "default"
		}`
	mockRunTestRequest = types.RunTestRequest{
		Mode:                "upload",
		AlgorithmGID:        "stock.fairness",
		AlgorithmCID:        "fairness_metrics",
		ModelFilename:       "model.sav",
		TestDatasetFilename: "data.sav",
		GroundTruth:         "default",
	}
	mockTestRun = &models.TestRun{
		ID:          mockTestRunID,
		Status:      models.TestRunStatusPending,
		AlgorithmID: "stock.fairness:fairness_metrics",
		ModelID:     1,
	}
)

func mockTestRunRouter(h *Handlers) *gin.Engine {
	r, apiv1 := newMockRouter()
	tr := apiv1.Group("/test_runs")
	tr.POST("", h.CreateTestRun)
	tr.DELETE(":id", h.DestroyTestRun)
	tr.PATCH(":id", h.UpdateTestRun)
	tr.POST(":id/cancel", h.CancelTestRun)
	tr.GET(":id", h.GetTestRun)
	tr.GET("", h.GetTestRuns)
	return r
}

func TestHandlers_CreateTestRun(t *testing.T) {
	tests := []struct {
		name   string
		req    func() *http.Request
		mock   func(ms *mocks.MockServiceMockRecorder)
		expect func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "unprocessable entity caused by body",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/test_runs", nil)
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "unprocessable entity caused by unsafe filename",
			req: func() *http.Request {
				body := strings.Replace(mockRunTestReqBody, "model.sav", "../model.sav", 1)
				return httptest.NewRequest(http.MethodPost, "/api/v1/test_runs", strings.NewReader(body))
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "unprocessable entity caused by invalid gid",
			req: func() *http.Request {
				body := strings.Replace(mockRunTestReqBody, "stock.fairness", "-fairness", 1)
				return httptest.NewRequest(http.MethodPost, "/api/v1/test_runs", strings.NewReader(body))
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "algorithm not found",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/test_runs", strings.NewReader(mockRunTestReqBody))
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.CreateTestRun(gomock.Any(), gomock.Eq(mockRunTestRequest)).Return(nil, dferrors.ReferenceNotFound("algorithm not found")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusNotFound, w.Code)
				assert.Contains(w.Body.String(), "algorithm not found")
			},
		},
		{
			name: "queue unavailable",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/test_runs", strings.NewReader(mockRunTestReqBody))
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.CreateTestRun(gomock.Any(), gomock.Eq(mockRunTestRequest)).Return(nil, dferrors.New(dferrors.CodeQueueUnavailable, "queue down")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusServiceUnavailable, w.Code)
				assert.NotEmpty(w.Header().Get(headers.RetryAfter))
			},
		},
		{
			name: "success",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/test_runs", strings.NewReader(mockRunTestReqBody))
			},
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.CreateTestRun(gomock.Any(), gomock.Eq(mockRunTestRequest)).Return(mockTestRun, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)

				var testRun models.TestRun
				assert.NoError(json.Unmarshal(w.Body.Bytes(), &testRun))
				assert.Equal(mockTestRunID, testRun.ID)
				assert.Equal(models.TestRunStatusPending, testRun.Status)
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
			mockRouter := mockTestRunRouter(h)

			tc.mock(svc.EXPECT())
			mockRouter.ServeHTTP(w, tc.req())
			tc.expect(t, w)
		})
	}
}

func TestHandlers_UpdateTestRun(t *testing.T) {
	progress := 40
	tests := []struct {
		name   string
		req    *http.Request
		mock   func(ms *mocks.MockServiceMockRecorder)
		expect func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "unprocessable entity caused by uri",
			req:  httptest.NewRequest(http.MethodPatch, "/api/v1/test_runs/test", strings.NewReader(`{"status":"running"}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "unprocessable entity caused by status",
			req:  httptest.NewRequest(http.MethodPatch, "/api/v1/test_runs/"+mockTestRunID, strings.NewReader(`{"status":"cancelled"}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "unprocessable entity caused by progress",
			req:  httptest.NewRequest(http.MethodPatch, "/api/v1/test_runs/"+mockTestRunID, strings.NewReader(`{"status":"running","progress":101}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "terminal test run",
			req:  httptest.NewRequest(http.MethodPatch, "/api/v1/test_runs/"+mockTestRunID, strings.NewReader(`{"status":"running","progress":40}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.UpdateTestRun(gomock.Any(), gomock.Eq(mockTestRunID), gomock.Eq(types.UpdateTestRunRequest{
					Status:   models.TestRunStatusRunning,
					Progress: &progress,
				})).Return(nil, dferrors.StateConflict("test run is success")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusConflict, w.Code)
			},
		},
		{
			name: "success",
			req:  httptest.NewRequest(http.MethodPatch, "/api/v1/test_runs/"+mockTestRunID, strings.NewReader(`{"status":"running","progress":40}`)),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.UpdateTestRun(gomock.Any(), gomock.Eq(mockTestRunID), gomock.Any()).Return(&models.TestRun{
					ID:       mockTestRunID,
					Status:   models.TestRunStatusRunning,
					Progress: 40,
				}, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)

				var testRun models.TestRun
				assert.NoError(json.Unmarshal(w.Body.Bytes(), &testRun))
				assert.Equal(40, testRun.Progress)
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
			mockRouter := mockTestRunRouter(h)

			tc.mock(svc.EXPECT())
			mockRouter.ServeHTTP(w, tc.req)
			tc.expect(t, w)
		})
	}
}

func TestHandlers_CancelTestRun(t *testing.T) {
	tests := []struct {
		name   string
		req    *http.Request
		mock   func(ms *mocks.MockServiceMockRecorder)
		expect func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "not found",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/test_runs/"+mockTestRunID+"/cancel", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.CancelTestRun(gomock.Any(), gomock.Eq(mockTestRunID)).Return(nil, dferrors.ReferenceNotFound("test run not found")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusNotFound, w.Code)
			},
		},
		{
			name: "success",
			req:  httptest.NewRequest(http.MethodPost, "/api/v1/test_runs/"+mockTestRunID+"/cancel", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.CancelTestRun(gomock.Any(), gomock.Eq(mockTestRunID)).Return(&models.TestRun{
					ID:     mockTestRunID,
					Status: models.TestRunStatusCancelled,
				}, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				assert.Contains(w.Body.String(), `"status":"cancelled"`)
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
			mockRouter := mockTestRunRouter(h)

			tc.mock(svc.EXPECT())
			mockRouter.ServeHTTP(w, tc.req)
			tc.expect(t, w)
		})
	}
}

func TestHandlers_GetTestRuns(t *testing.T) {
	tests := []struct {
		name   string
		req    *http.Request
		mock   func(ms *mocks.MockServiceMockRecorder)
		expect func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "unprocessable entity",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/test_runs?status=unknown", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "success with pagination",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/test_runs?status=pending&per_page=2", nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetTestRuns(gomock.Any(), gomock.Eq(types.GetTestRunsQuery{
					Status:  models.TestRunStatusPending,
					Page:    1,
					PerPage: 2,
				})).Return([]models.TestRun{*mockTestRun}, int64(5), nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert := assert.New(t)
				assert.Equal(http.StatusOK, w.Code)
				link := w.Header().Get(headers.Link)
				assert.Contains(link, "rel=next")
				assert.Contains(link, "page=3")

				var testRuns []models.TestRun
				assert.NoError(json.Unmarshal(w.Body.Bytes(), &testRuns))
				assert.Len(testRuns, 1)
			},
		},
		{
			name: "get test run",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/test_runs/"+mockTestRunID, nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.GetTestRun(gomock.Any(), gomock.Eq(mockTestRunID)).Return(mockTestRun, nil).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
			},
		},
		{
			name: "destroy running test run",
			req:  httptest.NewRequest(http.MethodDelete, "/api/v1/test_runs/"+mockTestRunID, nil),
			mock: func(ms *mocks.MockServiceMockRecorder) {
				ms.DestroyTestRun(gomock.Any(), gomock.Eq(mockTestRunID)).Return(dferrors.StateConflict("test run is running")).Times(1)
			},
			expect: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusConflict, w.Code)
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
			mockRouter := mockTestRunRouter(h)

			tc.mock(svc.EXPECT())
			mockRouter.ServeHTTP(w, tc.req)
			tc.expect(t, w)
		})
	}
}
