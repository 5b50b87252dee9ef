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
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/job"
)

const pingTimeout = 2 * time.Second

var emptyArgs = json.RawMessage(`{}`)

// RunTest validates a test request against the stored algorithm, model and
// datasets, records a pending test run and queues it for the workers.
func (o *Orchestrator) RunTest(ctx context.Context, json types.RunTestRequest) (*models.TestRun, error) {
	metrics.TestRunCount.WithLabelValues(metrics.OperationCreate).Inc()
	testRun, err := o.runTest(ctx, json)
	if err != nil {
		metrics.TestRunFailureCount.WithLabelValues(metrics.OperationCreate).Inc()
		return nil, err
	}

	return testRun, nil
}

func (o *Orchestrator) runTest(ctx context.Context, json types.RunTestRequest) (*models.TestRun, error) {
	db := o.db.WithContext(ctx)
	algorithmID := capability.AlgorithmID(json.AlgorithmGID, json.AlgorithmCID)
	algorithm, err := getAlgorithm(db, algorithmID)
	if err != nil {
		return nil, err
	}

	if algorithm.Script == "" {
		return nil, dferrors.InputValidation("algorithm %s has no script", algorithmID)
	}

	args := bytes.TrimSpace(json.AlgorithmArgs)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		args = emptyArgs
	}

	if args[0] != '{' {
		return nil, dferrors.InputValidation("arguments of algorithm %s must be a json object", algorithmID)
	}

	if err := o.schemas.ValidateWith(algorithm.InputSchema, args); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "arguments of algorithm %s", algorithmID)
	}

	model := models.TestModel{}
	if err := db.First(&model, "filename = ?", json.ModelFilename).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("model %s not found", json.ModelFilename)
		}
		return nil, err
	}

	if model.Mode != models.ModelModeUpload {
		return nil, dferrors.InputValidation("model %s is not an uploaded model", model.Filename)
	}

	if model.Size <= 0 {
		return nil, dferrors.InputValidation("model %s is empty", model.Filename)
	}

	if !algorithm.SupportsModelType(model.ModelType) {
		return nil, dferrors.InputValidation("algorithm %s does not support %s models", algorithmID, model.ModelType)
	}

	testDataset, err := getDataset(db, json.TestDatasetFilename)
	if err != nil {
		return nil, err
	}

	var groundTruthDataset *models.TestDataset
	if json.GroundTruthDatasetFilename != "" {
		if groundTruthDataset, err = getDataset(db, json.GroundTruthDatasetFilename); err != nil {
			return nil, err
		}
	}

	if algorithm.RequireGroundTruth && (groundTruthDataset == nil || json.GroundTruth == "") {
		return nil, dferrors.InputValidation("algorithm %s requires a ground truth dataset and column", algorithmID)
	}

	// Nothing is recorded while the queue is unreachable.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := o.queue.Ping(pingCtx); err != nil {
		metrics.QueueFailureCount.WithLabelValues(metrics.OperationPing).Inc()
		return nil, dferrors.Wrap(dferrors.CodeQueueUnavailable, err, "queue server is unreachable")
	}

	testRun := models.TestRun{
		ID:            uuid.NewString(),
		Status:        models.TestRunStatusPending,
		AlgorithmID:   algorithmID,
		ModelID:       model.ID,
		TestDatasetID: testDataset.ID,
		AlgoArguments: datatypes.JSON(args),
	}

	task := &job.Task{
		ID:              testRun.ID,
		Mode:            json.Mode,
		AlgorithmGID:    algorithm.GID,
		AlgorithmCID:    algorithm.CID,
		AlgorithmHash:   algorithm.ZipHash,
		AlgorithmArgs:   args,
		ModelFile:       model.Filename,
		ModelFileHash:   model.ZipHash,
		ModelType:       model.ModelType,
		TestDataset:     testDataset.Filename,
		TestDatasetHash: testDataset.ZipHash,
	}

	if groundTruthDataset != nil {
		testRun.GroundTruthDatasetID = &groundTruthDataset.ID
		testRun.GroundTruth = json.GroundTruth
		task.GroundTruthDataset = groundTruthDataset.Filename
		task.GroundTruthDatasetHash = groundTruthDataset.ZipHash
		task.GroundTruth = json.GroundTruth
	}

	log := logger.WithTestRunID(testRun.ID)
	var jobID string
	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&testRun).Error; err != nil {
			return err
		}

		id, err := o.queue.Enqueue(ctx, task)
		if err != nil {
			metrics.QueueFailureCount.WithLabelValues(metrics.OperationCreate).Inc()
			return dferrors.Wrap(dferrors.CodeQueueUnavailable, err, "enqueue test run")
		}
		jobID = id

		return tx.Model(&testRun).Update("job_id", jobID).Error
	}); err != nil {
		if jobID != "" {
			if _, rerr := o.queue.Remove(context.Background(), jobID); rerr != nil {
				log.Warnf("remove orphan queue entry %s failed: %s", jobID, rerr.Error())
			}
		}

		return nil, err
	}

	log.Infof("test run of %s queued as %s", algorithmID, jobID)
	return getTestRun(db, testRun.ID)
}

func getDataset(tx *gorm.DB, filename string) (*models.TestDataset, error) {
	dataset := models.TestDataset{}
	if err := tx.First(&dataset, "filename = ?", filename).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("dataset %s not found", filename)
		}
		return nil, err
	}

	if dataset.Size <= 0 {
		return nil, dferrors.InputValidation("dataset %s is empty", filename)
	}

	return &dataset, nil
}
