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

package capability

import (
	"context"
	"encoding/json"
	"fmt"
)

// PluginType groups capability providers.
type PluginType string

const (
	PluginTypeData       PluginType = "data"
	PluginTypeModel      PluginType = "model"
	PluginTypeSerializer PluginType = "serializer"
	PluginTypePipeline   PluginType = "pipeline"
	PluginTypeAlgorithm  PluginType = "algorithm"
)

// PluginTypes lists every plugin type in resolution order.
var PluginTypes = []PluginType{PluginTypeSerializer, PluginTypeData, PluginTypeModel, PluginTypePipeline, PluginTypeAlgorithm}

// ParsePluginType parses a plugin type name.
func ParsePluginType(s string) (PluginType, error) {
	for _, t := range PluginTypes {
		if string(t) == s {
			return t, nil
		}
	}

	return "", fmt.Errorf("unknown plugin type %q", s)
}

// DataFormat is the probed format of a dataset.
type DataFormat string

const (
	DataFormatPandas    DataFormat = "pandas"
	DataFormatDelimiter DataFormat = "delimiter"
	DataFormatArff      DataFormat = "arff"
	DataFormatImage     DataFormat = "image"
)

// ModelFormat is the probed format of a model.
type ModelFormat string

const (
	ModelFormatSklearn    ModelFormat = "sklearn"
	ModelFormatXGBoost    ModelFormat = "xgboost"
	ModelFormatLightGBM   ModelFormat = "lightgbm"
	ModelFormatTensorflow ModelFormat = "tensorflow"
	ModelFormatAPI        ModelFormat = "api"
)

// PipelineFormat is the probed format of a pipeline.
type PipelineFormat string

const (
	PipelineFormatSklearn PipelineFormat = "sklearn"
)

// SerializerType is the probed serializer of an artifact.
type SerializerType string

const (
	SerializerNone       SerializerType = ""
	SerializerPickle     SerializerType = "pickle"
	SerializerJoblib     SerializerType = "joblib"
	SerializerJSON       SerializerType = "json"
	SerializerTensorflow SerializerType = "tensorflow"
	SerializerDelimiter  SerializerType = "delimiter"
	SerializerImage      SerializerType = "image"
)

// Label is a dataset column and its data type.
type Label struct {
	Name     string `json:"name"`
	Datatype string `json:"datatype"`
}

// Provider is a registered capability provider.
type Provider interface {
	// ID identifies the provider within its type.
	ID() string

	// Type is the plugin type the provider serves.
	Type() PluginType
}

// Serializer is the serializer surface.
type Serializer interface {
	SerializerPluginType() SerializerType
}

// SerializerProvider recognizes how an artifact is serialized.
type SerializerProvider interface {
	Provider
	Accepts(ctx context.Context, probe *Probe) bool
	NewSerializer(probe *Probe) (Serializer, error)
}

// Data is the dataset surface.
type Data interface {
	Setup(ctx context.Context) error
	Validate() (bool, string)
	ReadLabels() ([]Label, error)
	Shape() (rows int, cols int)
	DataPluginType() DataFormat
	KeepGroundTruth(column string) bool
	RemoveGroundTruth(column string)
	Data() any
	SetData(data any)
}

// DataProvider constructs datasets it accepts.
type DataProvider interface {
	Provider
	Accepts(ctx context.Context, probe *Probe, serializer SerializerType) bool
	NewData(probe *Probe, serializer SerializerType) (Data, error)
}

// Model is the model surface.
type Model interface {
	Setup(ctx context.Context) error
	Cleanup()
	ModelPluginType() ModelFormat
}

// ModelProvider constructs models it accepts.
type ModelProvider interface {
	Provider
	Accepts(ctx context.Context, probe *Probe, serializer SerializerType) bool
	NewModel(probe *Probe, serializer SerializerType) (Model, error)
}

// Pipeline is the pipeline surface.
type Pipeline interface {
	Setup(ctx context.Context) error
	Cleanup()
	PipelinePluginType() PipelineFormat
	Pipeline() any
	SetPipeline(pipeline any)
}

// PipelineProvider constructs pipelines it accepts.
type PipelineProvider interface {
	Provider
	Accepts(ctx context.Context, probe *Probe, serializer SerializerType) bool
	NewPipeline(probe *Probe, serializer SerializerType) (Pipeline, error)
}

// AlgorithmInput is what an algorithm runs against.
type AlgorithmInput struct {
	// Data is the test dataset and DataSerializer its serializer.
	Data           Data
	DataSerializer SerializerType
	DataPath       string

	// Model is set for plain models, Pipeline for pipelines.
	Model           Model
	Pipeline        Pipeline
	ModelSerializer SerializerType
	ModelPath       string
	ModelType       string

	// GroundTruth is the optional ground truth dataset.
	GroundTruth           Data
	GroundTruthSerializer SerializerType
	GroundTruthPath       string
	GroundTruthColumn     string

	// Args are the validated algorithm arguments.
	Args json.RawMessage

	// OutputDir receives the files emitted by the algorithm.
	OutputDir string

	// Progress receives completion percentages, may be nil.
	Progress func(percent int)
}

// AlgorithmResult is what an algorithm produced.
type AlgorithmResult struct {
	// Output conforms to the algorithm output schema.
	Output json.RawMessage `json:"output"`

	// Artifacts are files below the output directory.
	Artifacts []string `json:"artifacts,omitempty"`
}

// Algorithm is the algorithm surface.
type Algorithm interface {
	Generate(ctx context.Context) error
	Results() (*AlgorithmResult, error)
}

// AlgorithmProvider constructs algorithm runs; its id is gid:cid.
type AlgorithmProvider interface {
	Provider
	Manifest() *AlgorithmManifest
	NewAlgorithm(input *AlgorithmInput) (Algorithm, error)
}

// AlgorithmID returns the composite id of an algorithm.
func AlgorithmID(gid, cid string) string {
	return gid + ":" + cid
}
