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

//go:generate mockgen -destination mocks/validator_mock.go -source validator.go -package mocks

// Package validator decides whether uploaded models and datasets are supported.
package validator

import (
	"context"

	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

// Column is a dataset column as recorded on the dataset row.
type Column struct {
	Name     string `json:"name"`
	Datatype string `json:"datatype"`
	Label    string `json:"label"`
}

// ModelResult is the outcome of a successful model validation.
type ModelResult struct {
	ModelFormat string
	Serializer  capability.SerializerType
	IsPipeline  bool
}

// DatasetResult is the outcome of a successful dataset validation.
type DatasetResult struct {
	DataFormat string
	Serializer capability.SerializerType
	NumRows    int
	NumCols    int
	Columns    []Column
}

type Validator interface {
	// ValidateModel probes path as a pipeline when isPipeline is set, otherwise as a model.
	ValidateModel(ctx context.Context, path string, isPipeline bool) (*ModelResult, error)

	// ValidateDataset probes path as a dataset and extracts its shape and columns.
	ValidateDataset(ctx context.Context, path string) (*DatasetResult, error)

	// IsPipeline reports whether path is accepted as a pipeline.
	IsPipeline(ctx context.Context, path string) bool
}

type validator struct {
	registry *capability.Registry
}

// New returns a validator resolving capabilities from registry.
func New(registry *capability.Registry) Validator {
	return &validator{registry: registry}
}

func serializerOf(s capability.Serializer) capability.SerializerType {
	if s == nil {
		return capability.SerializerNone
	}

	return s.SerializerPluginType()
}

func (v *validator) ValidateModel(ctx context.Context, path string, isPipeline bool) (*ModelResult, error) {
	if isPipeline {
		pipeline, serializer, err := v.registry.GetPipeline(ctx, path)
		if err != nil {
			return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "unsupported pipeline")
		}
		defer pipeline.Cleanup()

		if err := pipeline.Setup(ctx); err != nil {
			return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "pipeline setup failed")
		}

		return &ModelResult{
			ModelFormat: string(pipeline.PipelinePluginType()),
			Serializer:  serializerOf(serializer),
			IsPipeline:  true,
		}, nil
	}

	model, serializer, err := v.registry.GetModel(ctx, path)
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "unsupported model")
	}
	defer model.Cleanup()

	if err := model.Setup(ctx); err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "model setup failed")
	}

	logger.Debugf("model %s is %s/%s", path, model.ModelPluginType(), serializerOf(serializer))
	return &ModelResult{
		ModelFormat: string(model.ModelPluginType()),
		Serializer:  serializerOf(serializer),
	}, nil
}

func (v *validator) ValidateDataset(ctx context.Context, path string) (*DatasetResult, error) {
	data, serializer, err := v.registry.GetData(ctx, path)
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "unsupported dataset")
	}

	if err := data.Setup(ctx); err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "dataset setup failed")
	}

	if ok, msg := data.Validate(); !ok {
		return nil, dferrors.InputValidation("invalid dataset: %s", msg)
	}

	labels, err := data.ReadLabels()
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "read dataset columns")
	}

	if len(labels) == 0 {
		return nil, dferrors.InputValidation("dataset has no columns")
	}

	columns := make([]Column, 0, len(labels))
	for _, l := range labels {
		columns = append(columns, Column{Name: l.Name, Datatype: l.Datatype, Label: l.Name})
	}

	rows, cols := data.Shape()
	return &DatasetResult{
		DataFormat: string(data.DataPluginType()),
		Serializer: serializerOf(serializer),
		NumRows:    rows,
		NumCols:    cols,
		Columns:    columns,
	}, nil
}

func (v *validator) IsPipeline(ctx context.Context, path string) bool {
	return v.registry.IsPipeline(ctx, path)
}
