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

package testrun

import (
	"context"
	"encoding/json"
	"mime"
	"path"
	"strconv"

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

const defaultMimeType = "application/octet-stream"

type testArguments struct {
	TestDataset        string          `json:"testDataset"`
	Mode               string          `json:"mode"`
	ModelType          string          `json:"modelType"`
	GroundTruthDataset string          `json:"groundTruthDataset,omitempty"`
	GroundTruth        string          `json:"groundTruth,omitempty"`
	AlgorithmArgs      json.RawMessage `json:"algorithmArgs"`
	ModelFile          string          `json:"modelFile,omitempty"`
}

// testResultDocument is the result as checked against the test result schema.
type testResultDocument struct {
	GID           string          `json:"gid"`
	CID           string          `json:"cid"`
	Version       string          `json:"version,omitempty"`
	StartTime     string          `json:"startTime"`
	TimeTaken     float64         `json:"timeTaken"`
	TestArguments testArguments   `json:"testArguments"`
	Output        json.RawMessage `json:"output"`
	Artifacts     []string        `json:"artifacts,omitempty"`
}

func marshalTestResultDocument(doc *testResultDocument) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "encode test result")
	}

	return data, nil
}

func (o *Orchestrator) saveArtifacts(ctx context.Context, tx *gorm.DB, testResult *models.TestResult, uploads []types.TestArtifactUpload) error {
	testResultID := strconv.FormatUint(uint64(testResult.ID), 10)
	for _, upload := range uploads {
		key, err := o.content.SaveResultArtifact(ctx, testResultID, upload.Filename, upload.Data)
		if err != nil {
			return err
		}

		suffix := path.Ext(upload.Filename)
		mimeType := upload.MimeType
		if mimeType == "" {
			if mimeType = mime.TypeByExtension(suffix); mimeType == "" {
				mimeType = defaultMimeType
			}
		}

		artifact := models.TestArtifact{
			TestResultID: testResult.ID,
			Filename:     upload.Filename,
			Suffix:       suffix,
			MimeType:     mimeType,
			Key:          key,
		}
		if err := tx.Create(&artifact).Error; err != nil {
			return err
		}

		testResult.Artifacts = append(testResult.Artifacts, artifact)
	}

	return nil
}

// GetTestResult returns a result with its artifacts.
func (o *Orchestrator) GetTestResult(ctx context.Context, id uint) (*models.TestResult, error) {
	return getTestResult(o.db.WithContext(ctx), id)
}

// ListTestResults returns a page of results, newest first, and the total count.
func (o *Orchestrator) ListTestResults(ctx context.Context, q types.GetTestResultsQuery) ([]models.TestResult, int64, error) {
	var count int64
	var testResults []models.TestResult
	tx := o.db.WithContext(ctx).Model(&models.TestResult{})
	if q.GID != "" {
		tx = tx.Where("gid = ?", q.GID)
	}

	if q.CID != "" {
		tx = tx.Where("cid = ?", q.CID)
	}

	if err := tx.Scopes(models.Paginate(q.Page, q.PerPage)).Order("id DESC").Find(&testResults).Limit(-1).Offset(-1).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	return testResults, count, nil
}

// UpdateTestResult renames a result.
func (o *Orchestrator) UpdateTestResult(ctx context.Context, id uint, json types.UpdateTestResultRequest) (*models.TestResult, error) {
	db := o.db.WithContext(ctx)
	testResult, err := getTestResult(db, id)
	if err != nil {
		return nil, err
	}

	if err := db.Model(testResult).Update("name", json.Name).Error; err != nil {
		return nil, err
	}

	return getTestResult(db, id)
}

// DeleteTestResult removes a result, its artifacts and the run that produced it,
// so no successful run is left without a result.
func (o *Orchestrator) DeleteTestResult(ctx context.Context, id uint) error {
	db := o.db.WithContext(ctx)
	testResult, err := getTestResult(db, id)
	if err != nil {
		return err
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_result_id = ?", testResult.ID).Delete(&models.TestRun{}).Error; err != nil {
			return err
		}

		return deleteTestResultRows(tx, testResult.ID)
	}); err != nil {
		return err
	}

	o.deleteResultContent(ctx, testResult.ID)
	logger.Infof("test result %d deleted", testResult.ID)
	return nil
}

// GetTestResultArtifact returns an artifact record and its bytes.
func (o *Orchestrator) GetTestResultArtifact(ctx context.Context, id uint, filename string) (*models.TestArtifact, []byte, error) {
	artifact := models.TestArtifact{}
	if err := o.db.WithContext(ctx).First(&artifact, "test_result_id = ? AND filename = ?", id, filename).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, nil, dferrors.ReferenceNotFound("artifact %s of test result %d not found", filename, id)
		}
		return nil, nil, err
	}

	data, err := o.content.GetResultArtifact(ctx, strconv.FormatUint(uint64(id), 10), filename)
	if err != nil {
		return nil, nil, err
	}

	return &artifact, data, nil
}

func getTestResult(tx *gorm.DB, id uint) (*models.TestResult, error) {
	testResult := models.TestResult{}
	if err := tx.Preload("Artifacts").First(&testResult, id).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("test result %d not found", id)
		}
		return nil, err
	}

	return &testResult, nil
}
