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
	"bytes"
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
)

const (
	defaultErrorMessage = "test run failed without an error message"
	completeProgress    = 100
)

// UpdateTestRun applies a worker update. Updates are ignored when they repeat
// a terminal status or move a running run back to pending; progress never
// decreases. A success update persists the result and its artifacts.
func (o *Orchestrator) UpdateTestRun(ctx context.Context, id string, json types.UpdateTestRunRequest) (*models.TestRun, error) {
	metrics.TestRunCount.WithLabelValues(metrics.OperationUpdate).Inc()
	testRun, err := o.updateTestRun(ctx, id, json)
	if err != nil {
		metrics.TestRunFailureCount.WithLabelValues(metrics.OperationUpdate).Inc()
		return nil, err
	}

	return testRun, nil
}

func (o *Orchestrator) updateTestRun(ctx context.Context, id string, json types.UpdateTestRunRequest) (*models.TestRun, error) {
	db := o.db.WithContext(ctx)
	testRun, err := getTestRun(db, id)
	if err != nil {
		return nil, err
	}

	log := logger.WithTestRunAndJobID(testRun.ID, testRun.JobID)
	status, apply, err := Transition(ctx, testRun.Status, json.Status)
	if err != nil {
		return nil, err
	}

	if !apply {
		log.Debugf("ignore %s update of %s test run", json.Status, testRun.Status)
		return testRun, nil
	}

	progress := testRun.Progress
	if json.Progress != nil && *json.Progress > progress {
		progress = *json.Progress
	}

	values := map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}

	switch status {
	case models.TestRunStatusSuccess:
		progress = completeProgress
	case models.TestRunStatusError:
		message := defaultErrorMessage
		if json.ErrorMessages != nil && *json.ErrorMessages != "" {
			message = *json.ErrorMessages
		}
		values["error_messages"] = message
	}
	values["progress"] = progress

	var testResult *models.TestResult
	if err := db.Transaction(func(tx *gorm.DB) error {
		if status == models.TestRunStatusSuccess {
			var err error
			if testResult, err = o.createTestResult(ctx, tx, testRun, json); err != nil {
				return err
			}
			values["test_result_id"] = testResult.ID
		}

		result := tx.Model(&models.TestRun{}).
			Where("id = ? AND status = ?", testRun.ID, testRun.Status).
			Updates(values)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return dferrors.StateConflict("test run %s changed while it was updated", testRun.ID)
		}

		return nil
	}); err != nil {
		if testResult != nil && testResult.ID != 0 {
			o.deleteResultContent(ctx, testResult.ID)
		}

		return nil, err
	}

	if status != testRun.Status {
		log.Infof("test run is %s", status)
	}

	return getTestRun(db, testRun.ID)
}

func (o *Orchestrator) createTestResult(ctx context.Context, tx *gorm.DB, testRun *models.TestRun, json types.UpdateTestRunRequest) (*models.TestResult, error) {
	algorithm, err := getAlgorithm(tx, testRun.AlgorithmID)
	if err != nil {
		return nil, err
	}

	output := bytes.TrimSpace(json.Output)
	if len(output) == 0 {
		return nil, dferrors.InputValidation("successful test run %s has no output", testRun.ID)
	}

	if err := o.schemas.ValidateWith(algorithm.OutputSchema, output); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "output of algorithm %s", algorithm.ID)
	}

	model := models.TestModel{}
	if err := tx.First(&model, testRun.ModelID).Error; err != nil {
		return nil, err
	}

	testDataset := models.TestDataset{}
	if err := tx.First(&testDataset, testRun.TestDatasetID).Error; err != nil {
		return nil, err
	}

	var groundTruthDataset string
	if testRun.GroundTruthDatasetID != nil {
		dataset := models.TestDataset{}
		if err := tx.First(&dataset, *testRun.GroundTruthDatasetID).Error; err != nil {
			return nil, err
		}
		groundTruthDataset = dataset.Filename
	}

	startTime := testRun.CreatedAt
	if json.StartTime != nil {
		startTime = *json.StartTime
	}

	timeTaken := time.Since(startTime).Seconds()
	if json.TimeTaken != nil {
		timeTaken = *json.TimeTaken
	}

	filenames := make([]string, 0, len(json.Artifacts))
	seen := make(map[string]struct{}, len(json.Artifacts))
	for _, artifact := range json.Artifacts {
		if _, ok := seen[artifact.Filename]; ok {
			return nil, dferrors.InputValidation("duplicate artifact %s", artifact.Filename)
		}
		seen[artifact.Filename] = struct{}{}
		filenames = append(filenames, artifact.Filename)
	}

	doc, err := marshalTestResultDocument(&testResultDocument{
		GID:       algorithm.GID,
		CID:       algorithm.CID,
		Version:   algorithm.Version,
		StartTime: startTime.UTC().Format(time.RFC3339),
		TimeTaken: timeTaken,
		TestArguments: testArguments{
			TestDataset:        testDataset.Filename,
			Mode:               model.Mode,
			ModelType:          model.ModelType,
			GroundTruthDataset: groundTruthDataset,
			GroundTruth:        testRun.GroundTruth,
			AlgorithmArgs:      []byte(testRun.AlgoArguments),
			ModelFile:          model.Filename,
		},
		Output:    output,
		Artifacts: filenames,
	})
	if err != nil {
		return nil, err
	}

	if err := o.schemas.Validate(schemas.TestResult, doc); err != nil {
		return nil, err
	}

	testResult := models.TestResult{
		Name:                 fmt.Sprintf("%s on %s", algorithm.Name, model.Filename),
		GID:                  algorithm.GID,
		CID:                  algorithm.CID,
		Version:              algorithm.Version,
		TestRunID:            testRun.ID,
		ModelID:              testRun.ModelID,
		TestDatasetID:        testRun.TestDatasetID,
		GroundTruthDatasetID: testRun.GroundTruthDatasetID,
		GroundTruth:          testRun.GroundTruth,
		StartTime:            startTime,
		TimeTaken:            timeTaken,
		AlgoArguments:        testRun.AlgoArguments,
		Output:               datatypes.JSON(output),
	}

	if err := tx.Create(&testResult).Error; err != nil {
		return nil, err
	}

	if err := o.saveArtifacts(ctx, tx, &testResult, json.Artifacts); err != nil {
		return &testResult, err
	}

	return &testResult, nil
}
