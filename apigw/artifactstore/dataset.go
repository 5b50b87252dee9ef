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

package artifactstore

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

const metricKindDataset = "dataset"

// UploadDataset records, probes and stores an uploaded dataset. A dataset the
// registry does not accept is recorded as invalid and returned without error.
func (s *Store) UploadDataset(ctx context.Context, upload Upload) (*models.TestDataset, error) {
	filename, err := upload.filename()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.TestDataset{}).Where("filename = ?", filename).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, dferrors.StateConflict("dataset %s already exists", filename)
	}

	dataset := models.TestDataset{
		Name:        upload.name(filename),
		Description: upload.Description,
		FileType:    fileType(upload.Path, false),
		Filename:    filename,
		Status:      models.ArtifactStatusPending,
	}
	if err := db.Create(&dataset).Error; err != nil {
		return nil, err
	}

	log := logger.WithArtifact(string(contentstore.ArtifactKindTestDataset), filename)
	result, err := s.validator.ValidateDataset(ctx, upload.Path)
	if err != nil {
		metrics.ArtifactValidateCount.WithLabelValues(metricKindDataset, models.ArtifactStatusInvalid).Inc()
		log.Warnf("dataset is not supported: %s", err.Error())
		if err := db.Model(&dataset).Updates(map[string]any{
			"status":        models.ArtifactStatusInvalid,
			"error_message": dferrors.Message(err),
		}).Error; err != nil {
			return nil, err
		}

		return s.GetDataset(ctx, dataset.ID)
	}

	columns, err := json.Marshal(result.Columns)
	if err != nil {
		return nil, err
	}

	stored, err := s.content.SaveTestArtifact(ctx, contentstore.ArtifactKindTestDataset, filename, upload.Path)
	if err != nil {
		if uerr := db.Model(&dataset).Updates(map[string]any{
			"status":        models.ArtifactStatusInvalid,
			"error_message": "failed to store dataset",
		}).Error; uerr != nil {
			log.Errorf("mark dataset invalid failed: %s", uerr.Error())
		}

		return nil, err
	}

	if err := db.Model(&dataset).Updates(map[string]any{
		"status":        models.ArtifactStatusValid,
		"data_format":   result.DataFormat,
		"serializer":    serializerName(result.Serializer),
		"zip_hash":      stored.ZipHash,
		"size":          stored.Size,
		"num_rows":      result.NumRows,
		"num_cols":      result.NumCols,
		"data_columns":  datatypes.JSON(columns),
		"error_message": "",
	}).Error; err != nil {
		return nil, err
	}

	metrics.ArtifactValidateCount.WithLabelValues(metricKindDataset, models.ArtifactStatusValid).Inc()
	log.Infof("dataset is %s/%s with %d rows and %d columns", result.DataFormat, serializerName(result.Serializer), result.NumRows, result.NumCols)
	return s.GetDataset(ctx, dataset.ID)
}

// GetDataset returns a dataset.
func (s *Store) GetDataset(ctx context.Context, id uint) (*models.TestDataset, error) {
	dataset := models.TestDataset{}
	if err := s.db.WithContext(ctx).First(&dataset, id).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("dataset %d not found", id)
		}
		return nil, err
	}

	return &dataset, nil
}

// ListDatasets returns a page of datasets, newest first, and the total count.
func (s *Store) ListDatasets(ctx context.Context, q types.GetTestArtifactsQuery) ([]models.TestDataset, int64, error) {
	var count int64
	var datasets []models.TestDataset
	if err := s.db.WithContext(ctx).Scopes(models.Paginate(q.Page, q.PerPage)).Where(&models.TestDataset{
		Status: q.Status,
	}).Order("id DESC").Find(&datasets).Limit(-1).Offset(-1).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	return datasets, count, nil
}

// UpdateDataset changes the name or description of a dataset.
func (s *Store) UpdateDataset(ctx context.Context, id uint, json types.UpdateTestArtifactRequest) (*models.TestDataset, error) {
	dataset, err := s.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(dataset).Updates(models.TestDataset{
		Name:        json.Name,
		Description: json.Description,
	}).Error; err != nil {
		return nil, err
	}

	return s.GetDataset(ctx, id)
}

// DeleteDataset removes a dataset no test run or result refers to, either as
// test data or as ground truth.
func (s *Store) DeleteDataset(ctx context.Context, id uint) error {
	dataset, err := s.GetDataset(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var testRuns, testResults int64
		if err := tx.Model(&models.TestRun{}).
			Where("test_dataset_id = ? OR ground_truth_dataset_id = ?", id, id).
			Count(&testRuns).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.TestResult{}).
			Where("test_dataset_id = ? OR ground_truth_dataset_id = ?", id, id).
			Count(&testResults).Error; err != nil {
			return err
		}

		if testRuns+testResults > 0 {
			return dferrors.DependencyInUse("dataset %s is used by %d test runs and %d test results", dataset.Filename, testRuns, testResults)
		}

		return tx.Delete(&models.TestDataset{}, id).Error
	}); err != nil {
		return err
	}

	s.deleteContent(ctx, contentstore.ArtifactKindTestDataset, dataset.Filename)
	logger.WithArtifact(string(contentstore.ArtifactKindTestDataset), dataset.Filename).Info("dataset deleted")
	return nil
}
