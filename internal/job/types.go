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

package job

import "encoding/json"

// Task is the payload of a queued test run.
type Task struct {
	ID                     string          `json:"id" validate:"required,uuid"`
	Mode                   string          `json:"mode" validate:"required"`
	AlgorithmGID           string          `json:"algorithmGID" validate:"required"`
	AlgorithmCID           string          `json:"algorithmCID" validate:"required"`
	AlgorithmHash          string          `json:"algorithmHash" validate:"omitempty"`
	AlgorithmArgs          json.RawMessage `json:"algorithmArgs"`
	ModelFile              string          `json:"modelFile" validate:"required"`
	ModelFileHash          string          `json:"modelFileHash" validate:"omitempty"`
	ModelType              string          `json:"modelType" validate:"required"`
	TestDataset            string          `json:"testDataset" validate:"required"`
	TestDatasetHash        string          `json:"testDatasetHash" validate:"omitempty"`
	GroundTruthDataset     string          `json:"groundTruthDataset,omitempty" validate:"omitempty"`
	GroundTruthDatasetHash string          `json:"groundTruthDatasetHash,omitempty" validate:"omitempty"`
	GroundTruth            string          `json:"groundTruth,omitempty" validate:"omitempty"`
}

// Message is a stream entry delivered to a consumer.
type Message struct {
	// ID is the entry id.
	ID string

	// Task is nil when the entry was deleted after delivery or failed to decode.
	Task *Task

	// Err is the decode error.
	Err error
}

// Deleted reports whether the entry was removed from the stream after delivery.
func (m *Message) Deleted() bool {
	return m.Task == nil && m.Err == nil
}
