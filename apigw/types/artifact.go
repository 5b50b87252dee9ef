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

type UploadTestModelRequest struct {
	Name        string `form:"name" binding:"omitempty,max=256"`
	Description string `form:"description" binding:"omitempty"`
	ModelType   string `form:"model_type" binding:"required,oneof=classification regression uplift"`
	FileType    string `form:"file_type" binding:"omitempty,oneof=file folder pipeline"`
}

type UploadTestDatasetRequest struct {
	Name        string `form:"name" binding:"omitempty,max=256"`
	Description string `form:"description" binding:"omitempty"`
	FileType    string `form:"file_type" binding:"omitempty,oneof=file folder"`
}

type UpdateTestArtifactRequest struct {
	Name        string `json:"name" binding:"omitempty,max=256"`
	Description string `json:"description" binding:"omitempty"`
}

type TestArtifactParams struct {
	ID uint `uri:"id" binding:"required"`
}

type GetTestArtifactsQuery struct {
	Status  string `form:"status" binding:"omitempty,oneof=pending valid invalid cancelled"`
	Page    int    `form:"page" binding:"omitempty,gte=1"`
	PerPage int    `form:"per_page" binding:"omitempty,gte=1,lte=50"`
}
