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

import (
	"encoding/json"
	"time"
)

type RunTestRequest struct {
	Mode                       string          `json:"mode" binding:"required,oneof=upload api"`
	AlgorithmGID               string          `json:"algorithmGID" binding:"required,aiverify_id"`
	AlgorithmCID               string          `json:"algorithmCID" binding:"required,aiverify_id"`
	AlgorithmArgs              json.RawMessage `json:"algorithmArgs" binding:"omitempty"`
	ModelFilename              string          `json:"modelFilename" binding:"required,aiverify_filename"`
	TestDatasetFilename        string          `json:"testDatasetFilename" binding:"required,aiverify_filename"`
	GroundTruthDatasetFilename string          `json:"groundTruthDatasetFilename" binding:"omitempty,aiverify_filename"`
	GroundTruth                string          `json:"groundTruth" binding:"omitempty"`
}

type UpdateTestRunRequest struct {
	Status        string               `json:"status" binding:"required,oneof=pending running success error"`
	Progress      *int                 `json:"progress" binding:"omitempty,gte=0,lte=100"`
	ErrorMessages *string              `json:"errorMessages" binding:"omitempty"`
	StartTime     *time.Time           `json:"startTime" binding:"omitempty"`
	TimeTaken     *float64             `json:"timeTaken" binding:"omitempty,gte=0"`
	Output        json.RawMessage      `json:"output" binding:"omitempty"`
	Artifacts     []TestArtifactUpload `json:"artifacts" binding:"omitempty,dive"`
}

type TestArtifactUpload struct {
	Filename string `json:"filename" binding:"required,aiverify_filename"`
	MimeType string `json:"mimeType" binding:"omitempty"`
	Data     []byte `json:"data" binding:"omitempty"`
}

type TestRunParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type GetTestRunsQuery struct {
	Status      string `form:"status" binding:"omitempty,oneof=pending running success error cancelled"`
	AlgorithmID string `form:"algorithm_id" binding:"omitempty"`
	Page        int    `form:"page" binding:"omitempty,gte=1"`
	PerPage     int    `form:"per_page" binding:"omitempty,gte=1,lte=50"`
}

type TestResultParams struct {
	ID uint `uri:"id" binding:"required"`
}

type TestResultArtifactParams struct {
	ID       uint   `uri:"id" binding:"required"`
	Filename string `uri:"filename" binding:"required"`
}

type UpdateTestResultRequest struct {
	Name string `json:"name" binding:"required,max=256"`
}

type GetTestResultsQuery struct {
	GID     string `form:"gid" binding:"omitempty"`
	CID     string `form:"cid" binding:"omitempty"`
	Page    int    `form:"page" binding:"omitempty,gte=1"`
	PerPage int    `form:"per_page" binding:"omitempty,gte=1,lte=50"`
}
