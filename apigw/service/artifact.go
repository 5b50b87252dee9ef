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

package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/artifactstore"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

func (s *service) UploadTestModel(ctx context.Context, upload artifactstore.Upload, json types.UploadTestModelRequest) (*models.TestModel, error) {
	upload.Name = json.Name
	upload.Description = json.Description
	if json.FileType == "" || json.FileType == models.FileTypeFile {
		return s.artifacts.UploadModel(ctx, upload, json.ModelType, false)
	}

	var model *models.TestModel
	if err := s.withFolder(upload, func(folder artifactstore.Upload) (err error) {
		model, err = s.artifacts.UploadModel(ctx, folder, json.ModelType, json.FileType == models.FileTypePipeline)
		return err
	}); err != nil {
		return nil, err
	}

	return model, nil
}

func (s *service) GetTestModel(ctx context.Context, id uint) (*models.TestModel, error) {
	return s.artifacts.GetModel(ctx, id)
}

func (s *service) GetTestModels(ctx context.Context, q types.GetTestArtifactsQuery) ([]models.TestModel, int64, error) {
	return s.artifacts.ListModels(ctx, q)
}

func (s *service) UpdateTestModel(ctx context.Context, id uint, json types.UpdateTestArtifactRequest) (*models.TestModel, error) {
	return s.artifacts.UpdateModel(ctx, id, json)
}

func (s *service) DestroyTestModel(ctx context.Context, id uint) error {
	return s.artifacts.DeleteModel(ctx, id)
}

func (s *service) UploadTestDataset(ctx context.Context, upload artifactstore.Upload, json types.UploadTestDatasetRequest) (*models.TestDataset, error) {
	upload.Name = json.Name
	upload.Description = json.Description
	if json.FileType != models.FileTypeFolder {
		return s.artifacts.UploadDataset(ctx, upload)
	}

	var dataset *models.TestDataset
	if err := s.withFolder(upload, func(folder artifactstore.Upload) (err error) {
		dataset, err = s.artifacts.UploadDataset(ctx, folder)
		return err
	}); err != nil {
		return nil, err
	}

	return dataset, nil
}

func (s *service) GetTestDataset(ctx context.Context, id uint) (*models.TestDataset, error) {
	return s.artifacts.GetDataset(ctx, id)
}

func (s *service) GetTestDatasets(ctx context.Context, q types.GetTestArtifactsQuery) ([]models.TestDataset, int64, error) {
	return s.artifacts.ListDatasets(ctx, q)
}

func (s *service) UpdateTestDataset(ctx context.Context, id uint, json types.UpdateTestArtifactRequest) (*models.TestDataset, error) {
	return s.artifacts.UpdateDataset(ctx, id, json)
}

func (s *service) DestroyTestDataset(ctx context.Context, id uint) error {
	return s.artifacts.DeleteDataset(ctx, id)
}

// withFolder unpacks a zipped folder upload and passes it on under the
// archive name without its .zip suffix.
func (s *service) withFolder(upload artifactstore.Upload, f func(artifactstore.Upload) error) error {
	return fileutils.WithTempDir(s.workDir, "folder-*", func(tmp string) error {
		dir := filepath.Join(tmp, "folder")
		if err := fileutils.Unzip(upload.Path, dir); err != nil {
			return dferrors.Wrap(dferrors.CodeInputValidation, err, "unpack folder upload")
		}

		upload.Filename = strings.TrimSuffix(filepath.Base(upload.Filename), ".zip")
		upload.Path = dir
		return f(upload)
	})
}
