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

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Statuses of a test run.
const (
	TestRunStatusPending   = "pending"
	TestRunStatusRunning   = "running"
	TestRunStatusSuccess   = "success"
	TestRunStatusError     = "error"
	TestRunStatusCancelled = "cancelled"
)

type TestRun struct {
	ID                   string         `gorm:"column:id;type:varchar(36);primaryKey;comment:uuid" json:"id"`
	JobID                string         `gorm:"column:job_id;type:varchar(64);index;comment:queue entry id" json:"job_id"`
	Status               string         `gorm:"column:status;type:varchar(16);index;not null;default:'pending';comment:status" json:"status"`
	AlgorithmID          string         `gorm:"column:algorithm_id;type:varchar(257);index;not null;comment:gid:cid" json:"algorithm_id"`
	ModelID              uint           `gorm:"column:model_id;index;not null;comment:test model id" json:"model_id"`
	TestDatasetID        uint           `gorm:"column:test_dataset_id;index;not null;comment:test dataset id" json:"test_dataset_id"`
	GroundTruthDatasetID *uint          `gorm:"column:ground_truth_dataset_id;index;comment:ground truth dataset id" json:"ground_truth_dataset_id"`
	GroundTruth          string         `gorm:"column:ground_truth;type:varchar(128);comment:ground truth column" json:"ground_truth"`
	AlgoArguments        datatypes.JSON `gorm:"column:algo_arguments;comment:algorithm arguments" json:"algo_arguments"`
	Progress             int            `gorm:"column:progress;not null;default:0;comment:percent complete" json:"progress"`
	TestResultID         *uint          `gorm:"column:test_result_id;index;comment:test result id" json:"test_result_id"`
	ErrorMessages        *string        `gorm:"column:error_messages;type:text;comment:error messages" json:"error_messages"`
	CreatedAt            time.Time      `gorm:"column:created_at;comment:created time" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"column:updated_at;comment:updated time" json:"updated_at"`
}

type TestResult struct {
	BaseModel
	Name                 string         `gorm:"column:name;type:varchar(256);not null;comment:name" json:"name"`
	GID                  string         `gorm:"column:gid;type:varchar(128);index;not null;comment:algorithm gid" json:"gid"`
	CID                  string         `gorm:"column:cid;type:varchar(128);not null;comment:algorithm cid" json:"cid"`
	Version              string         `gorm:"column:version;type:varchar(256);comment:algorithm version" json:"version"`
	TestRunID            string         `gorm:"column:test_run_id;type:varchar(36);index;comment:producing test run" json:"test_run_id"`
	ModelID              uint           `gorm:"column:model_id;index;not null;comment:test model id" json:"model_id"`
	TestDatasetID        uint           `gorm:"column:test_dataset_id;index;not null;comment:test dataset id" json:"test_dataset_id"`
	GroundTruthDatasetID *uint          `gorm:"column:ground_truth_dataset_id;index;comment:ground truth dataset id" json:"ground_truth_dataset_id"`
	GroundTruth          string         `gorm:"column:ground_truth;type:varchar(128);comment:ground truth column" json:"ground_truth"`
	StartTime            time.Time      `gorm:"column:start_time;comment:start time" json:"start_time"`
	TimeTaken            float64        `gorm:"column:time_taken;comment:seconds taken" json:"time_taken"`
	AlgoArguments        datatypes.JSON `gorm:"column:algo_arguments;comment:algorithm arguments" json:"algo_arguments"`
	Output               datatypes.JSON `gorm:"column:output;comment:algorithm output" json:"output"`
	Artifacts            []TestArtifact `gorm:"foreignKey:TestResultID" json:"artifacts"`
}

type TestArtifact struct {
	BaseModel
	TestResultID uint   `gorm:"column:test_result_id;index:uk_test_artifact,unique;not null;comment:test result id" json:"test_result_id"`
	Filename     string `gorm:"column:filename;type:varchar(1024);index:uk_test_artifact,unique;not null;comment:filename" json:"filename"`
	Suffix       string `gorm:"column:suffix;type:varchar(32);comment:file suffix" json:"suffix"`
	MimeType     string `gorm:"column:mime_type;type:varchar(128);comment:mime type" json:"mime_type"`
	Key          string `gorm:"column:key;type:varchar(2048);comment:content store key" json:"key"`
}
