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

	"github.com/aiverify-foundation/aiverify-sub001/apigw/artifactstore"
	_ "github.com/aiverify-foundation/aiverify-sub001/apigw/models" // nolint
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
)

// @Summary Upload TestDataset
// @Description Upload a dataset file or a zipped folder
// @Tags TestDataset
// @Accept mpfd
// @Produce json
// @Param file formData file true "file"
// @Success 200 {object} models.TestDataset
// @Failure 400
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /test_datasets [post]
func (h *Handlers) UploadTestDataset(ctx *gin.Context) {
	var form types.UploadTestDatasetRequest
	if err := ctx.ShouldBind(&form); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	file, err := ctx.FormFile(uploadField)
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	if err := h.withUploadedFile(ctx, file, func(path string) error {
		dataset, err := h.service.UploadTestDataset(ctx.Request.Context(), artifactstore.Upload{
			Filename: file.Filename,
			Path:     path,
		}, form)
		if err != nil {
			return err
		}

		ctx.JSON(http.StatusOK, dataset)
		return nil
	}); err != nil {
		ctx.Error(err) // nolint: errcheck
	}
}

// @Summary Destroy TestDataset
// @Description Destroy by id
// @Tags TestDataset
// @Param id path string true "id"
// @Success 200
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /test_datasets/{id} [delete]
func (h *Handlers) DestroyTestDataset(ctx *gin.Context) {
	var params types.TestArtifactParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	if err := h.service.DestroyTestDataset(ctx.Request.Context(), params.ID); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Status(http.StatusOK)
}

// @Summary Update TestDataset
// @Description Update name or description
// @Tags TestDataset
// @Accept json
// @Produce json
// @Param id path string true "id"
// @Param TestDataset body types.UpdateTestArtifactRequest true "TestDataset"
// @Success 200 {object} models.TestDataset
// @Failure 404
// @Failure 500
// @Router /test_datasets/{id} [patch]
func (h *Handlers) UpdateTestDataset(ctx *gin.Context) {
	var params types.TestArtifactParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	var json types.UpdateTestArtifactRequest
	if err := ctx.ShouldBindJSON(&json); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	dataset, err := h.service.UpdateTestDataset(ctx.Request.Context(), params.ID, json)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, dataset)
}

// @Summary Get TestDataset
// @Description Get TestDataset by id
// @Tags TestDataset
// @Produce json
// @Param id path string true "id"
// @Success 200 {object} models.TestDataset
// @Failure 404
// @Failure 500
// @Router /test_datasets/{id} [get]
func (h *Handlers) GetTestDataset(ctx *gin.Context) {
	var params types.TestArtifactParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	dataset, err := h.service.GetTestDataset(ctx.Request.Context(), params.ID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, dataset)
}

// @Summary Get TestDatasets
// @Description Get TestDatasets
// @Tags TestDataset
// @Produce json
// @Param page query int true "current page" default(0)
// @Param per_page query int true "return max item count, default 10, max 50" default(10) minimum(2) maximum(50)
// @Success 200 {object} []models.TestDataset
// @Failure 500
// @Router /test_datasets [get]
func (h *Handlers) GetTestDatasets(ctx *gin.Context) {
	var query types.GetTestArtifactsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	h.setPaginationDefault(&query.Page, &query.PerPage)
	datasets, count, err := h.service.GetTestDatasets(ctx.Request.Context(), query)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	h.setPaginationLinkHeader(ctx, query.Page, query.PerPage, int(count))
	ctx.JSON(http.StatusOK, datasets)
}
