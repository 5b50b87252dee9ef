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

// @Summary Create ProjectTemplate
// @Description Create a user project template
// @Tags ProjectTemplate
// @Accept json
// @Produce json
// @Param ProjectTemplate body types.CreateProjectTemplateRequest true "ProjectTemplate"
// @Success 200 {object} models.ProjectTemplate
// @Failure 400
// @Failure 500
// @Router /project_templates [post]
func (h *Handlers) CreateProjectTemplate(ctx *gin.Context) {
	var json types.CreateProjectTemplateRequest
	if err := ctx.ShouldBindJSON(&json); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	projectTemplate, err := h.service.CreateProjectTemplate(ctx.Request.Context(), json)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, projectTemplate)
}

// @Summary Destroy ProjectTemplate
// @Description Destroy by id
// @Tags ProjectTemplate
// @Param id path string true "id"
// @Success 200
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /project_templates/{id} [delete]
func (h *Handlers) DestroyProjectTemplate(ctx *gin.Context) {
	var params types.ProjectTemplateParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	if err := h.service.DestroyProjectTemplate(ctx.Request.Context(), params.ID); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Status(http.StatusOK)
}

// @Summary Update ProjectTemplate
// @Description Update by json config
// @Tags ProjectTemplate
// @Accept json
// @Produce json
// @Param id path string true "id"
// @Param ProjectTemplate body types.UpdateProjectTemplateRequest true "ProjectTemplate"
// @Success 200 {object} models.ProjectTemplate
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /project_templates/{id} [patch]
func (h *Handlers) UpdateProjectTemplate(ctx *gin.Context) {
	var params types.ProjectTemplateParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	var json types.UpdateProjectTemplateRequest
	if err := ctx.ShouldBindJSON(&json); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	projectTemplate, err := h.service.UpdateProjectTemplate(ctx.Request.Context(), params.ID, json)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, projectTemplate)
}

// @Summary Get ProjectTemplate
// @Description Get ProjectTemplate by id
// @Tags ProjectTemplate
// @Produce json
// @Param id path string true "id"
// @Success 200 {object} models.ProjectTemplate
// @Failure 404
// @Failure 500
// @Router /project_templates/{id} [get]
func (h *Handlers) GetProjectTemplate(ctx *gin.Context) {
	var params types.ProjectTemplateParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	projectTemplate, err := h.service.GetProjectTemplate(ctx.Request.Context(), params.ID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, projectTemplate)
}

// @Summary Get ProjectTemplates
// @Description Get ProjectTemplates, plugin provided ones included
// @Tags ProjectTemplate
// @Produce json
// @Param page query int true "current page" default(0)
// @Param per_page query int true "return max item count, default 10, max 50" default(10) minimum(2) maximum(50)
// @Success 200 {object} []models.ProjectTemplate
// @Failure 500
// @Router /project_templates [get]
func (h *Handlers) GetProjectTemplates(ctx *gin.Context) {
	var query types.GetProjectTemplatesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	h.setPaginationDefault(&query.Page, &query.PerPage)
	projectTemplates, count, err := h.service.GetProjectTemplates(ctx.Request.Context(), query)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	h.setPaginationLinkHeader(ctx, query.Page, query.PerPage, int(count))
	ctx.JSON(http.StatusOK, projectTemplates)
}
