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

const zipContentType = "application/zip"

// @Summary Upload Plugin
// @Description Install a zipped plugin package, replacing a plugin with the same gid
// @Tags Plugin
// @Accept mpfd
// @Produce json
// @Param file formData file true "plugin package"
// @Success 200 {object} models.Plugin
// @Failure 400
// @Failure 422
// @Failure 500
// @Router /plugins [post]
func (h *Handlers) UploadPlugin(ctx *gin.Context) {
	file, err := ctx.FormFile(uploadField)
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	if err := h.withUploadedFile(ctx, file, func(path string) error {
		plugin, err := h.service.UploadPlugin(ctx.Request.Context(), path)
		if err != nil {
			return err
		}

		ctx.JSON(http.StatusOK, plugin)
		return nil
	}); err != nil {
		ctx.Error(err) // nolint: errcheck
	}
}

// @Summary Destroy Plugin
// @Description Destroy by gid
// @Tags Plugin
// @Param gid path string true "gid"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /plugins/{gid} [delete]
func (h *Handlers) DestroyPlugin(ctx *gin.Context) {
	var params types.PluginParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	if err := h.service.DestroyPlugin(ctx.Request.Context(), params.GID); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Status(http.StatusOK)
}

// @Summary Destroy Plugins
// @Description Destroy every plugin
// @Tags Plugin
// @Success 200
// @Failure 500
// @Router /plugins [delete]
func (h *Handlers) DestroyPlugins(ctx *gin.Context) {
	if err := h.service.DestroyPlugins(ctx.Request.Context()); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Status(http.StatusOK)
}

// @Summary Get Plugin
// @Description Get Plugin by gid
// @Tags Plugin
// @Produce json
// @Param gid path string true "gid"
// @Success 200 {object} models.Plugin
// @Failure 404
// @Failure 500
// @Router /plugins/{gid} [get]
func (h *Handlers) GetPlugin(ctx *gin.Context) {
	var params types.PluginParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	plugin, err := h.service.GetPlugin(ctx.Request.Context(), params.GID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, plugin)
}

// @Summary Get Plugins
// @Description Get Plugins
// @Tags Plugin
// @Produce json
// @Success 200 {object} []models.Plugin
// @Failure 500
// @Router /plugins [get]
func (h *Handlers) GetPlugins(ctx *gin.Context) {
	plugins, err := h.service.GetPlugins(ctx.Request.Context())
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, plugins)
}

// @Summary Download Plugin
// @Description Download the stored package of a plugin
// @Tags Plugin
// @Produce application/zip
// @Param gid path string true "gid"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /plugins/{gid}/download [get]
func (h *Handlers) DownloadPlugin(ctx *gin.Context) {
	var params types.PluginParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	data, err := h.service.GetPluginZip(ctx.Request.Context(), params.GID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	attachment(ctx, params.GID+".zip", zipContentType, data)
}

// @Summary Get Algorithm
// @Description Get Algorithm by gid and cid
// @Tags Plugin
// @Produce json
// @Param gid path string true "gid"
// @Param cid path string true "cid"
// @Success 200 {object} models.Algorithm
// @Failure 404
// @Failure 500
// @Router /plugins/{gid}/algorithms/{cid} [get]
func (h *Handlers) GetAlgorithm(ctx *gin.Context) {
	var params types.ComponentParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	algorithm, err := h.service.GetAlgorithm(ctx.Request.Context(), params.GID, params.CID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, algorithm)
}

// @Summary Download Algorithm
// @Description Download the stored sub-package of an algorithm
// @Tags Plugin
// @Produce application/zip
// @Param gid path string true "gid"
// @Param cid path string true "cid"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /plugins/{gid}/algorithms/{cid}/download [get]
func (h *Handlers) DownloadAlgorithm(ctx *gin.Context) {
	var params types.ComponentParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	data, err := h.service.GetAlgorithmZip(ctx.Request.Context(), params.GID, params.CID)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	attachment(ctx, params.CID+".zip", zipContentType, data)
}

// @Summary Get Bundle
// @Description Get the compiled MDX bundle of a widget or input block
// @Tags Plugin
// @Produce json
// @Param gid path string true "gid"
// @Param cid path string true "cid"
// @Param summary query bool false "summary bundle of an input block"
// @Success 200
// @Failure 404
// @Failure 500
// @Router /plugins/{gid}/bundles/{cid} [get]
func (h *Handlers) GetBundle(ctx *gin.Context) {
	var params types.ComponentParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	var query types.GetBundleQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"errors": err.Error()})
		return
	}

	bundle, err := h.service.GetBundle(ctx.Request.Context(), params.GID, params.CID, query.Summary)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.Data(http.StatusOK, gin.MIMEJSON, bundle)
}
