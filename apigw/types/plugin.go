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

package types

type PluginParams struct {
	GID string `uri:"gid" binding:"required,aiverify_id"`
}

type ComponentParams struct {
	GID string `uri:"gid" binding:"required,aiverify_id"`
	CID string `uri:"cid" binding:"required,aiverify_id"`
}

type GetBundleQuery struct {
	Summary bool `form:"summary" binding:"omitempty"`
}

type ValidatePluginRequest struct {
	Dir string `json:"dir" binding:"required"`
}

type ProjectTemplateParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateProjectTemplateRequest struct {
	Name        string         `json:"name" binding:"required,max=256"`
	Description string         `json:"description" binding:"omitempty"`
	Data        map[string]any `json:"data" binding:"omitempty"`
}

type UpdateProjectTemplateRequest struct {
	Name        string         `json:"name" binding:"omitempty,max=256"`
	Description string         `json:"description" binding:"omitempty"`
	Data        map[string]any `json:"data" binding:"omitempty"`
}

type GetProjectTemplatesQuery struct {
	Page    int `form:"page" binding:"omitempty,gte=1"`
	PerPage int `form:"per_page" binding:"omitempty,gte=1,lte=50"`
}
