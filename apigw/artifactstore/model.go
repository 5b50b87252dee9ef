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

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

const metricKindModel = "model"

// UploadModel records, probes and stores an uploaded model. A model the
// registry does not accept is recorded as invalid and returned without error.
func (s *Store) UploadModel(ctx context.Context, upload Upload, modelType string, pipeline bool) (*models.TestModel, error) {
	filename, err := upload.filename()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.TestModel{}).Where("filename = ?", filename).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, dferrors.StateConflict("model %s already exists", filename)
	}

	// Folders are probed as pipelines before they are tried as plain models.
	if !pipeline && fileType(upload.Path, false) == models.FileTypeFolder {
		pipeline = s.validator.IsPipeline(ctx, upload.Path)
	}

	model := models.TestModel{
		Name:        upload.name(filename),
		Description: upload.Description,
		Mode:        models.ModelModeUpload,
		FileType:    fileType(upload.Path, pipeline),
		ModelType:   modelType,
		Filename:    filename,
		Status:      models.ArtifactStatusPending,
	}
	if err := db.Create(&model).Error; err != nil {
		return nil, err
	}

	log := logger.WithArtifact(string(contentstore.ArtifactKindTestModel), filename)
	result, err := s.validator.ValidateModel(ctx, upload.Path, pipeline)
	if err != nil {
		metrics.ArtifactValidateCount.WithLabelValues(metricKindModel, models.ArtifactStatusInvalid).Inc()
		log.Warnf("model is not supported: %s", err.Error())
		if err := db.Model(&model).Updates(map[string]any{
			"status":        models.ArtifactStatusInvalid,
			"error_message": dferrors.Message(err),
		}).Error; err != nil {
			return nil, err
		}

		return s.GetModel(ctx, model.ID)
	}

	stored, err := s.content.SaveTestArtifact(ctx, contentstore.ArtifactKindTestModel, filename, upload.Path)
	if err != nil {
		if uerr := db.Model(&model).Updates(map[string]any{
			"status":        models.ArtifactStatusInvalid,
			"error_message": "failed to store model",
		}).Error; uerr != nil {
			log.Errorf("mark model invalid failed: %s", uerr.Error())
		}

		return nil, err
	}

	if err := db.Model(&model).Updates(map[string]any{
		"status":        models.ArtifactStatusValid,
		"model_format":  result.ModelFormat,
		"serializer":    serializerName(result.Serializer),
		"zip_hash":      stored.ZipHash,
		"size":          stored.Size,
		"error_message": "",
	}).Error; err != nil {
		return nil, err
	}

	metrics.ArtifactValidateCount.WithLabelValues(metricKindModel, models.ArtifactStatusValid).Inc()
	log.Infof("model is %s/%s", result.ModelFormat, serializerName(result.Serializer))
	return s.GetModel(ctx, model.ID)
}

// GetModel returns a model.
func (s *Store) GetModel(ctx context.Context, id uint) (*models.TestModel, error) {
	model := models.TestModel{}
	if err := s.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("model %d not found", id)
		}
		return nil, err
	}

	return &model, nil
}

// ListModels returns a page of models, newest first, and the total count.
func (s *Store) ListModels(ctx context.Context, q types.GetTestArtifactsQuery) ([]models.TestModel, int64, error) {
	var count int64
	var testModels []models.TestModel
	if err := s.db.WithContext(ctx).Scopes(models.Paginate(q.Page, q.PerPage)).Where(&models.TestModel{
		Status: q.Status,
	}).Order("id DESC").Find(&testModels).Limit(-1).Offset(-1).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	return testModels, count, nil
}

// UpdateModel changes the name or description of a model.
func (s *Store) UpdateModel(ctx context.Context, id uint, json types.UpdateTestArtifactRequest) (*models.TestModel, error) {
	model, err := s.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(model).Updates(models.TestModel{
		Name:        json.Name,
		Description: json.Description,
	}).Error; err != nil {
		return nil, err
	}

	return s.GetModel(ctx, id)
}

// DeleteModel removes a model no test run or result refers to.
func (s *Store) DeleteModel(ctx context.Context, id uint) error {
	model, err := s.GetModel(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var testRuns, testResults int64
		if err := tx.Model(&models.TestRun{}).Where("model_id = ?", id).Count(&testRuns).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.TestResult{}).Where("model_id = ?", id).Count(&testResults).Error; err != nil {
			return err
		}

		if testRuns+testResults > 0 {
			return dferrors.DependencyInUse("model %s is used by %d test runs and %d test results", model.Filename, testRuns, testResults)
		}

		return tx.Delete(&models.TestModel{}, id).Error
	}); err != nil {
		return err
	}

	s.deleteContent(ctx, contentstore.ArtifactKindTestModel, model.Filename)
	logger.WithArtifact(string(contentstore.ArtifactKindTestModel), model.Filename).Info("model deleted")
	return nil
}
