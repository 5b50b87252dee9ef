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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/config"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/database"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/validator"
	"github.com/aiverify-foundation/aiverify-sub001/internal/validator/mocks"
)

type testEnv struct {
	db        *gorm.DB
	content   *contentstore.Store
	validator *mocks.MockValidator
	store     *Store
	dir       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.New()
	cfg.Database.URI = "sqlite:///" + filepath.ToSlash(filepath.Join(t.TempDir(), "database.db"))
	db, err := database.Open(cfg)
	require.NoError(t, err)

	content, err := contentstore.New(context.Background(), contentstore.Config{URL: t.TempDir()})
	require.NoError(t, err)

	ctl := gomock.NewController(t)
	v := mocks.NewMockValidator(ctl)
	return &testEnv{
		db:        db,
		content:   content,
		validator: v,
		store:     New(db, content, v),
		dir:       t.TempDir(),
	}
}

func (env *testEnv) writeFile(t *testing.T, name string, size int) string {
	t.Helper()

	path := filepath.Join(env.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func sklearnModel() *validator.ModelResult {
	return &validator.ModelResult{
		ModelFormat: string(capability.ModelFormatSklearn),
		Serializer:  capability.SerializerPickle,
	}
}

func TestStore_UploadModel(t *testing.T) {
	tests := []struct {
		name     string
		upload   func(t *testing.T, env *testEnv) Upload
		pipeline bool
		mock     func(mv *mocks.MockValidatorMockRecorder)
		expect   func(t *testing.T, env *testEnv, model *models.TestModel, err error)
	}{
		{
			name: "valid classification model",
			upload: func(t *testing.T, env *testEnv) Upload {
				return Upload{Filename: "model_m.sav", Path: env.writeFile(t, "model_m.sav", 1024)}
			},
			mock: func(mv *mocks.MockValidatorMockRecorder) {
				mv.ValidateModel(gomock.Any(), gomock.Any(), false).Return(sklearnModel(), nil).Times(1)
			},
			expect: func(t *testing.T, env *testEnv, model *models.TestModel, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal(models.ArtifactStatusValid, model.Status)
				assert.Equal("model_m.sav", model.Filename)
				assert.Equal("model_m.sav", model.Name)
				assert.Equal(models.FileTypeFile, model.FileType)
				assert.Equal(models.ModelModeUpload, model.Mode)
				assert.Equal(string(capability.ModelFormatSklearn), model.ModelFormat)
				assert.Equal(string(capability.SerializerPickle), model.Serializer)
				assert.NotEmpty(model.ZipHash)
				assert.EqualValues(1024, model.Size)

				key, err := contentstore.TestArtifactKey(contentstore.ArtifactKindTestModel, "model_m.sav")
				require.NoError(t, err)
				exist, err := env.content.Exists(context.Background(), key)
				require.NoError(t, err)
				assert.True(exist)
			},
		},
		{
			name: "unsupported model is recorded as invalid",
			upload: func(t *testing.T, env *testEnv) Upload {
				return Upload{Filename: "notes.txt", Path: env.writeFile(t, "notes.txt", 16)}
			},
			mock: func(mv *mocks.MockValidatorMockRecorder) {
				mv.ValidateModel(gomock.Any(), gomock.Any(), false).
					Return(nil, dferrors.InputValidation("unsupported model")).Times(1)
			},
			expect: func(t *testing.T, env *testEnv, model *models.TestModel, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal(models.ArtifactStatusInvalid, model.Status)
				assert.Equal("unsupported model", model.ErrorMessage)
				assert.Empty(model.ZipHash)
				assert.Empty(model.Serializer)
			},
		},
		{
			name: "folder is probed as a pipeline",
			upload: func(t *testing.T, env *testEnv) Upload {
				env.writeFile(t, "pipe/pipeline.sav", 64)
				return Upload{Filename: "pipe", Path: filepath.Join(env.dir, "pipe")}
			},
			mock: func(mv *mocks.MockValidatorMockRecorder) {
				gomock.InOrder(
					mv.IsPipeline(gomock.Any(), gomock.Any()).Return(true).Times(1),
					mv.ValidateModel(gomock.Any(), gomock.Any(), true).Return(&validator.ModelResult{
						ModelFormat: string(capability.PipelineFormatSklearn),
						Serializer:  capability.SerializerJoblib,
						IsPipeline:  true,
					}, nil).Times(1),
				)
			},
			expect: func(t *testing.T, env *testEnv, model *models.TestModel, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal(models.ArtifactStatusValid, model.Status)
				assert.Equal(models.FileTypePipeline, model.FileType)
				assert.EqualValues(64, model.Size)
			},
		},
		{
			name: "requested pipeline skips the probe",
			upload: func(t *testing.T, env *testEnv) Upload {
				env.writeFile(t, "pipe/pipeline.sav", 8)
				return Upload{Filename: "pipe", Path: filepath.Join(env.dir, "pipe")}
			},
			pipeline: true,
			mock: func(mv *mocks.MockValidatorMockRecorder) {
				mv.ValidateModel(gomock.Any(), gomock.Any(), true).Return(sklearnModel(), nil).Times(1)
			},
			expect: func(t *testing.T, env *testEnv, model *models.TestModel, err error) {
				assert := assert.New(t)
				require.NoError(t, err)
				assert.Equal(models.FileTypePipeline, model.FileType)
			},
		},
		{
			name: "unsafe filename",
			upload: func(t *testing.T, env *testEnv) Upload {
				return Upload{Filename: "../model.sav", Path: env.writeFile(t, "model.sav", 4)}
			},
			mock: func(mv *mocks.MockValidatorMockRecorder) {},
			expect: func(t *testing.T, env *testEnv, model *models.TestModel, err error) {
				assert := assert.New(t)
				assert.Equal(dferrors.CodeInputValidation, dferrors.CodeOf(err))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			tc.mock(env.validator.EXPECT())
			model, err := env.store.UploadModel(context.Background(), tc.upload(t, env), models.ModelTypeClassification, tc.pipeline)
			tc.expect(t, env, model, err)
		})
	}
}

func TestStore_UploadModelDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.validator.EXPECT().ValidateModel(gomock.Any(), gomock.Any(), false).Return(sklearnModel(), nil).Times(1)

	path := env.writeFile(t, "model_m.sav", 1024)
	_, err := env.store.UploadModel(context.Background(), Upload{Filename: "model_m.sav", Path: path}, models.ModelTypeClassification, false)
	require.NoError(t, err)

	_, err = env.store.UploadModel(context.Background(), Upload{Filename: "model_m.sav", Path: path}, models.ModelTypeClassification, false)
	assert.Equal(t, dferrors.CodeStateConflict, dferrors.CodeOf(err))
}

func TestStore_UploadDataset(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv(t)

	columns := []validator.Column{
		{Name: "age", Datatype: "int64", Label: "age"},
		{Name: "income", Datatype: "float64", Label: "income"},
		{Name: "gender", Datatype: "int64", Label: "gender"},
		{Name: "race", Datatype: "int64", Label: "race"},
		{Name: "default", Datatype: "int64", Label: "default"},
	}
	env.validator.EXPECT().ValidateDataset(gomock.Any(), gomock.Any()).Return(&validator.DatasetResult{
		DataFormat: string(capability.DataFormatPandas),
		Serializer: capability.SerializerPickle,
		NumRows:    1000,
		NumCols:    5,
		Columns:    columns,
	}, nil).Times(1)

	dataset, err := env.store.UploadDataset(context.Background(), Upload{
		Filename:    "data_d.sav",
		Path:        env.writeFile(t, "data_d.sav", 2048),
		Description: "credit data",
	})
	require.NoError(t, err)
	assert.Equal(models.ArtifactStatusValid, dataset.Status)
	assert.Equal(1000, dataset.NumRows)
	assert.Equal(5, dataset.NumCols)
	assert.Equal("credit data", dataset.Description)
	assert.NotEmpty(dataset.ZipHash)

	var stored []validator.Column
	require.NoError(t, json.Unmarshal(dataset.DataColumns, &stored))
	assert.Contains(stored, validator.Column{Name: "default", Datatype: "int64", Label: "default"})

	datasets, count, err := env.store.ListDatasets(context.Background(), types.GetTestArtifactsQuery{Status: models.ArtifactStatusValid})
	require.NoError(t, err)
	assert.EqualValues(1, count)
	assert.Len(datasets, 1)

	updated, err := env.store.UpdateDataset(context.Background(), dataset.ID, types.UpdateTestArtifactRequest{Name: "credit"})
	require.NoError(t, err)
	assert.Equal("credit", updated.Name)
	assert.Equal("credit data", updated.Description)
}

func TestStore_UploadDatasetInvalid(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv(t)
	env.validator.EXPECT().ValidateDataset(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("dataset has no columns")).Times(1)

	dataset, err := env.store.UploadDataset(context.Background(), Upload{Filename: "empty.csv", Path: env.writeFile(t, "empty.csv", 0)})
	require.NoError(t, err)
	assert.Equal(models.ArtifactStatusInvalid, dataset.Status)
	assert.Equal("dataset has no columns", dataset.ErrorMessage)
}

func TestStore_DeleteModel(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	env.validator.EXPECT().ValidateModel(gomock.Any(), gomock.Any(), false).Return(sklearnModel(), nil).Times(2)

	used, err := env.store.UploadModel(ctx, Upload{Filename: "model_m.sav", Path: env.writeFile(t, "model_m.sav", 1024)}, models.ModelTypeClassification, false)
	require.NoError(t, err)
	unused, err := env.store.UploadModel(ctx, Upload{Filename: "spare.sav", Path: env.writeFile(t, "spare.sav", 32)}, models.ModelTypeClassification, false)
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&models.TestResult{
		Name:          "result",
		GID:           "stock.X",
		CID:           "algo_a",
		ModelID:       used.ID,
		TestDatasetID: 1,
	}).Error)

	err = env.store.DeleteModel(ctx, used.ID)
	assert.Equal(dferrors.CodeDependencyInUse, dferrors.CodeOf(err))
	_, err = env.store.GetModel(ctx, used.ID)
	assert.NoError(err)

	require.NoError(t, env.store.DeleteModel(ctx, unused.ID))
	_, err = env.store.GetModel(ctx, unused.ID)
	assert.Equal(dferrors.CodeReferenceNotFound, dferrors.CodeOf(err))

	key, err := contentstore.TestArtifactKey(contentstore.ArtifactKindTestModel, "spare.sav")
	require.NoError(t, err)
	exist, err := env.content.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(exist)

	testModels, count, err := env.store.ListModels(ctx, types.GetTestArtifactsQuery{})
	require.NoError(t, err)
	assert.EqualValues(1, count)
	assert.Len(testModels, 1)
}

func TestStore_DeleteDataset(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv(t)
	ctx := context.Background()
	env.validator.EXPECT().ValidateDataset(gomock.Any(), gomock.Any()).Return(&validator.DatasetResult{
		DataFormat: string(capability.DataFormatPandas),
		Serializer: capability.SerializerPickle,
		NumRows:    10,
		NumCols:    1,
		Columns:    []validator.Column{{Name: "default", Datatype: "int64", Label: "default"}},
	}, nil).Times(1)

	dataset, err := env.store.UploadDataset(ctx, Upload{Filename: "gt.sav", Path: env.writeFile(t, "gt.sav", 128)})
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&models.TestRun{
		ID:                   "run-1",
		Status:               models.TestRunStatusCancelled,
		AlgorithmID:          "stock.X:algo_a",
		ModelID:              1,
		TestDatasetID:        99,
		GroundTruthDatasetID: &dataset.ID,
		AlgoArguments:        []byte(`{}`),
	}).Error)

	err = env.store.DeleteDataset(ctx, dataset.ID)
	assert.Equal(dferrors.CodeDependencyInUse, dferrors.CodeOf(err))

	require.NoError(t, env.db.Delete(&models.TestRun{}, "id = ?", "run-1").Error)
	assert.NoError(env.store.DeleteDataset(ctx, dataset.ID))

	err = env.store.DeleteDataset(ctx, dataset.ID)
	assert.Equal(dferrors.CodeReferenceNotFound, dferrors.CodeOf(err))
}
