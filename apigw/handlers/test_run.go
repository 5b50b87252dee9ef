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

	"github.com/gin-gonic/gin"

	_ "github.com/aiverify-foundation/aiverify-sub001/apigw/models" // nolint
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
)

// @Summary Create TestRun
// @Description Validate a test request and queue it for a worker
// @Tags TestRun
// @Accept json
// @Produce json
// @Param TestRun body types.RunTestRequest true "TestRun"
// @Success 200 {object} models.TestRun
// @Failure 400
// @Failure 404
// @Failure 503
// @Failure 500
// @Router /test_runs [post]
func (h *Handlers) CreateTestRun(ctx *gin.Context) {
	var json types.RunTestRequest
	if err := ctx.ShouldBindJSON(&json); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	testRun, err := h.service.CreateTestRun(ctx.Request.Context(), json)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, testRun)
}

// @Summary Destroy TestRun
// @Description Destroy a finished test run and its result
// @Tags TestRun
// @Param id path string true "id"
// @Success 200
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /test_runs/{id} [delete]
func (h *Handlers) DestroyTestRun(ctx *gin.Context) {
	var params types.TestRunParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	if err := h.service.DestroyTestRun(ctx.Request.Context(), params.ID); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Status(http.StatusOK)
}

// @Summary Update TestRun
// @Description Report progress or a terminal state of a test run
// @Tags TestRun
// @Accept json
// @Produce json
// @Param id path string true "id"
// @Param TestRun body types.UpdateTestRunRequest true "TestRun"
// @Success 200 {object} models.TestRun
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /test_runs/{id} [patch]
func (h *Handlers) UpdateTestRun(ctx *gin.Context) {
	var params types.TestRunParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	var json types.UpdateTestRunRequest
	if err := ctx.ShouldBindJSON(&json); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	testRun, err := h.service.UpdateTestRun(ctx.Request.Context(), params.ID, json)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, testRun)
}

// @Summary Cancel TestRun
// @Description Cancel a pending test run
// @Tags TestRun
// @Produce json
// @Param id path string true "id"
// @Success 200 {object} models.TestRun
// @Failure 404
// @Failure 409
// @Failure 503
// @Failure 500
// @Router /test_runs/{id}/cancel [post]
func (h *Handlers) CancelTestRun(ctx *gin.Context) {
	var params types.TestRunParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	testRun, err := h.service.CancelTestRun(ctx.Request.Context(), params.ID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, testRun)
}

// @Summary Get TestRun
// @Description Get TestRun by id
// @Tags TestRun
// @Produce json
// @Param id path string true "id"
// @Success 200 {object} models.TestRun
// @Failure 404
// @Failure 500
// @Router /test_runs/{id} [get]
func (h *Handlers) GetTestRun(ctx *gin.Context) {
	var params types.TestRunParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	testRun, err := h.service.GetTestRun(ctx.Request.Context(), params.ID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, testRun)
}

// @Summary Get TestRuns
// @Description Get TestRuns
// @Tags TestRun
// @Produce json
// @Param page query int true "current page" default(0)
// @Param per_page query int true "return max item count, default 10, max 50" default(10) minimum(2) maximum(50)
// @Success 200 {object} []models.TestRun
// @Failure 500
// @Router /test_runs [get]
func (h *Handlers) GetTestRuns(ctx *gin.Context) {
	var query types.GetTestRunsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	h.setPaginationDefault(&query.Page, &query.PerPage)
	testRuns, count, err := h.service.GetTestRuns(ctx.Request.Context(), query)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	h.setPaginationLinkHeader(ctx, query.Page, query.PerPage, int(count))
	ctx.JSON(http.StatusOK, testRuns)
}
