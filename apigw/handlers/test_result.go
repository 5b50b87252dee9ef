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
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-http-utils/headers"

	_ "github.com/aiverify-foundation/aiverify-sub001/apigw/models" // nolint
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
)

// @Summary Destroy TestResult
// @Description Destroy a test result, its artifacts and the producing test run
// @Tags TestResult
// @Param id path string true "id"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /test_results/{id} [delete]
func (h *Handlers) DestroyTestResult(ctx *gin.Context) {
	var params types.TestResultParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	if err := h.service.DestroyTestResult(ctx.Request.Context(), params.ID); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Status(http.StatusOK)
}

// @Summary Update TestResult
// @Description Rename a test result
// @Tags TestResult
// @Accept json
// @Produce json
// @Param id path string true "id"
// @Param TestResult body types.UpdateTestResultRequest true "TestResult"
// @Success 200 {object} models.TestResult
// @Failure 404
// @Failure 500
// @Router /test_results/{id} [patch]
func (h *Handlers) UpdateTestResult(ctx *gin.Context) {
	var params types.TestResultParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	var json types.UpdateTestResultRequest
	if err := ctx.ShouldBindJSON(&json); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	testResult, err := h.service.UpdateTestResult(ctx.Request.Context(), params.ID, json)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, testResult)
}

// @Summary Get TestResult
// @Description Get TestResult by id with its artifacts
// @Tags TestResult
// @Produce json
// @Param id path string true "id"
// @Success 200 {object} models.TestResult
// @Failure 404
// @Failure 500
// @Router /test_results/{id} [get]
func (h *Handlers) GetTestResult(ctx *gin.Context) {
	var params types.TestResultParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	testResult, err := h.service.GetTestResult(ctx.Request.Context(), params.ID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, testResult)
}

// @Summary Get TestResults
// @Description Get TestResults
// @Tags TestResult
// @Produce json
// @Param gid query string false "algorithm gid"
// @Param cid query string false "algorithm cid"
// @Param page query int true "current page" default(0)
// @Param per_page query int true "return max item count, default 10, max 50" default(10) minimum(2) maximum(50)
// @Success 200 {object} []models.TestResult
// @Failure 500
// @Router /test_results [get]
func (h *Handlers) GetTestResults(ctx *gin.Context) {
	var query types.GetTestResultsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	h.setPaginationDefault(&query.Page, &query.PerPage)
	testResults, count, err := h.service.GetTestResults(ctx.Request.Context(), query)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	h.setPaginationLinkHeader(ctx, query.Page, query.PerPage, int(count))
	ctx.JSON(http.StatusOK, testResults)
}

// @Summary Get TestResult Artifact
// @Description Download a file emitted by the algorithm
// @Tags TestResult
// @Param id path string true "id"
// @Param filename path string true "filename"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /test_results/{id}/artifacts/{filename} [get]
func (h *Handlers) GetTestResultArtifact(ctx *gin.Context) {
	var params types.TestResultArtifactParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	// The route captures nested filenames with a leading slash.
	filename := strings.TrimPrefix(params.Filename, "/")
	artifact, data, err := h.service.GetTestResultArtifact(ctx.Request.Context(), params.ID, filename)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Header(headers.ContentDisposition, fmt.Sprintf("inline; filename=%q", path.Base(artifact.Filename)))
	ctx.Data(http.StatusOK, artifact.MimeType, data)
}
