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
	"fmt"
	"sync"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

// Registry is the ordered catalog of capability providers, keyed by (type, id).
type Registry struct {
	mu          sync.RWMutex
	serializers []SerializerProvider
	data        []DataProvider
	models      []ModelProvider
	pipelines   []PipelineProvider
	algorithms  map[string]AlgorithmProvider

	options *options
}

type options struct {
	interpreters map[string][]string
}

// Option configures the registry.
type Option func(o *options)

// WithInterpreter sets the command running scripts of a language, e.g. python -> python3.
func WithInterpreter(language string, command ...string) Option {
	return func(o *options) {
		o.interpreters[language] = command
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	o := &options{
		interpreters: map[string][]string{
			LanguagePython: {DefaultPythonInterpreter},
		},
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Registry{
		algorithms: make(map[string]AlgorithmProvider),
		options:    o,
	}
}

// Register adds a provider. A provider with the same type and id is replaced in place.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch v := p.(type) {
	case SerializerProvider:
		r.serializers = replaceOrAppend(r.serializers, v)
	case DataProvider:
		r.data = replaceOrAppend(r.data, v)
	case ModelProvider:
		r.models = replaceOrAppend(r.models, v)
	case PipelineProvider:
		r.pipelines = replaceOrAppend(r.pipelines, v)
	case AlgorithmProvider:
		r.algorithms[v.ID()] = v
	default:
		return fmt.Errorf("provider %s of type %s has no known capability surface", p.ID(), p.Type())
	}

	logger.Debugf("registered %s provider %s", p.Type(), p.ID())
	return nil
}

func replaceOrAppend[T Provider](providers []T, p T) []T {
	for i, existing := range providers {
		if existing.ID() == p.ID() {
			providers[i] = p
			return providers
		}
	}

	return append(providers, p)
}

func removeByID[T Provider](providers []T, id string) ([]T, bool) {
	for i, existing := range providers {
		if existing.ID() == id {
			return append(providers[:i:i], providers[i+1:]...), true
		}
	}

	return providers, false
}

func containsID[T Provider](providers []T, id string) bool {
	for _, existing := range providers {
		if existing.ID() == id {
			return true
		}
	}

	return false
}

// IsPluginExists reports whether a provider is registered.
func (r *Registry) IsPluginExists(t PluginType, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch t {
	case PluginTypeSerializer:
		return containsID(r.serializers, id)
	case PluginTypeData:
		return containsID(r.data, id)
	case PluginTypeModel:
		return containsID(r.models, id)
	case PluginTypePipeline:
		return containsID(r.pipelines, id)
	case PluginTypeAlgorithm:
		_, ok := r.algorithms[id]
		return ok
	default:
		return false
	}
}

// RemovePlugin removes a provider and reports whether it was registered.
func (r *Registry) RemovePlugin(t PluginType, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ok bool
	switch t {
	case PluginTypeSerializer:
		r.serializers, ok = removeByID(r.serializers, id)
	case PluginTypeData:
		r.data, ok = removeByID(r.data, id)
	case PluginTypeModel:
		r.models, ok = removeByID(r.models, id)
	case PluginTypePipeline:
		r.pipelines, ok = removeByID(r.pipelines, id)
	case PluginTypeAlgorithm:
		_, ok = r.algorithms[id]
		delete(r.algorithms, id)
	}

	return ok
}

// List returns the ids of a type in resolution order.
func (r *Registry) List(t PluginType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	collect := func(p Provider) { ids = append(ids, p.ID()) }
	switch t {
	case PluginTypeSerializer:
		for _, p := range r.serializers {
			collect(p)
		}
	case PluginTypeData:
		for _, p := range r.data {
			collect(p)
		}
	case PluginTypeModel:
		for _, p := range r.models {
			collect(p)
		}
	case PluginTypePipeline:
		for _, p := range r.pipelines {
			collect(p)
		}
	case PluginTypeAlgorithm:
		for id := range r.algorithms {
			ids = append(ids, id)
		}
	}

	return ids
}

// Request selects an instance. Path is used for data, model and pipeline,
// AlgorithmID and Input for algorithms.
type Request struct {
	Path        string
	AlgorithmID string
	Input       *AlgorithmInput
}

// Instance is the outcome of a resolution; exactly one of the typed fields is set.
type Instance struct {
	Data       Data
	Model      Model
	Pipeline   Pipeline
	Algorithm  Algorithm
	Serializer Serializer
}

// GetInstance resolves a request against the providers of type t.
func (r *Registry) GetInstance(ctx context.Context, t PluginType, req Request) (*Instance, error) {
	switch t {
	case PluginTypeData:
		data, serializer, err := r.GetData(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		return &Instance{Data: data, Serializer: serializer}, nil
	case PluginTypeModel:
		model, serializer, err := r.GetModel(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		return &Instance{Model: model, Serializer: serializer}, nil
	case PluginTypePipeline:
		pipeline, serializer, err := r.GetPipeline(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		return &Instance{Pipeline: pipeline, Serializer: serializer}, nil
	case PluginTypeSerializer:
		serializer, err := r.GetSerializer(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		return &Instance{Serializer: serializer}, nil
	case PluginTypeAlgorithm:
		algorithm, err := r.GetAlgorithm(req.AlgorithmID, req.Input)
		if err != nil {
			return nil, err
		}
		return &Instance{Algorithm: algorithm}, nil
	default:
		return nil, dferrors.InputValidation("unknown plugin type %q", t)
	}
}

// acceptingSerializers returns the serializers accepting probe, in order.
func (r *Registry) acceptingSerializers(ctx context.Context, probe *Probe) []SerializerProvider {
	r.mu.RLock()
	serializers := append([]SerializerProvider(nil), r.serializers...)
	r.mu.RUnlock()

	var accepted []SerializerProvider
	for _, s := range serializers {
		if s.Accepts(ctx, probe) {
			accepted = append(accepted, s)
		}
	}

	return accepted
}

// GetSerializer returns the first serializer accepting path.
func (r *Registry) GetSerializer(ctx context.Context, path string) (Serializer, error) {
	probe, err := NewProbe(path)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "probe %s", path)
	}

	accepted := r.acceptingSerializers(ctx, probe)
	if len(accepted) == 0 {
		return nil, dferrors.InputValidation("no serializer supports the file")
	}

	return accepted[0].NewSerializer(probe)
}

// resolve iterates providers in order and, for each, the accepting serializers
// followed by no serializer. The first accepted pair is constructed.
func resolve[P Provider, I any](
	ctx context.Context,
	r *Registry,
	path string,
	kind string,
	providers []P,
	accepts func(P, *Probe, SerializerType) bool,
	construct func(P, *Probe, SerializerType) (I, error),
) (I, Serializer, error) {
	var zero I

	probe, err := NewProbe(path)
	if err != nil {
		return zero, nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "probe %s", path)
	}

	var serializers []Serializer
	for _, sp := range r.acceptingSerializers(ctx, probe) {
		s, err := sp.NewSerializer(probe)
		if err != nil {
			logger.Warnf("serializer %s accepted %s but failed to construct: %v", sp.ID(), path, err)
			continue
		}
		serializers = append(serializers, s)
	}

	for _, p := range providers {
		for _, s := range serializers {
			serializerType := s.SerializerPluginType()
			if !accepts(p, probe, serializerType) {
				continue
			}

			instance, err := construct(p, probe, serializerType)
			if err != nil {
				return zero, nil, err
			}

			return instance, s, nil
		}

		if accepts(p, probe, SerializerNone) {
			instance, err := construct(p, probe, SerializerNone)
			if err != nil {
				return zero, nil, err
			}

			return instance, nil, nil
		}
	}

	return zero, nil, dferrors.InputValidation("no %s plugin supports the %s", kind, describe(probe))
}

func describe(probe *Probe) string {
	if probe.IsDir {
		return "folder"
	}

	return "file"
}

// GetData returns a dataset instance for path and its serializer.
func (r *Registry) GetData(ctx context.Context, path string) (Data, Serializer, error) {
	r.mu.RLock()
	providers := append([]DataProvider(nil), r.data...)
	r.mu.RUnlock()

	return resolve(ctx, r, path, "data", providers,
		func(p DataProvider, probe *Probe, s SerializerType) bool { return p.Accepts(ctx, probe, s) },
		func(p DataProvider, probe *Probe, s SerializerType) (Data, error) { return p.NewData(probe, s) },
	)
}

// GetModel returns a model instance for path and its serializer.
func (r *Registry) GetModel(ctx context.Context, path string) (Model, Serializer, error) {
	r.mu.RLock()
	providers := append([]ModelProvider(nil), r.models...)
	r.mu.RUnlock()

	return resolve(ctx, r, path, "model", providers,
		func(p ModelProvider, probe *Probe, s SerializerType) bool { return p.Accepts(ctx, probe, s) },
		func(p ModelProvider, probe *Probe, s SerializerType) (Model, error) { return p.NewModel(probe, s) },
	)
}

// GetPipeline returns a pipeline instance for path and its serializer.
func (r *Registry) GetPipeline(ctx context.Context, path string) (Pipeline, Serializer, error) {
	r.mu.RLock()
	providers := append([]PipelineProvider(nil), r.pipelines...)
	r.mu.RUnlock()

	return resolve(ctx, r, path, "pipeline", providers,
		func(p PipelineProvider, probe *Probe, s SerializerType) bool { return p.Accepts(ctx, probe, s) },
		func(p PipelineProvider, probe *Probe, s SerializerType) (Pipeline, error) { return p.NewPipeline(probe, s) },
	)
}

// IsPipeline reports whether any pipeline provider accepts path.
func (r *Registry) IsPipeline(ctx context.Context, path string) bool {
	_, _, err := r.GetPipeline(ctx, path)
	return err == nil
}

// GetAlgorithm constructs a run of the algorithm gid:cid.
func (r *Registry) GetAlgorithm(id string, input *AlgorithmInput) (Algorithm, error) {
	r.mu.RLock()
	p, ok := r.algorithms[id]
	r.mu.RUnlock()

	if !ok {
		return nil, dferrors.ReferenceNotFound("algorithm %s is not registered", id)
	}

	if input == nil {
		return nil, dferrors.InputValidation("algorithm %s requires an input", id)
	}

	return p.NewAlgorithm(input)
}

// AlgorithmProvider returns the registered provider of gid:cid.
func (r *Registry) AlgorithmProvider(id string) (AlgorithmProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.algorithms[id]
	return p, ok
}

func (r *Registry) interpreter(language string) ([]string, bool) {
	command, ok := r.options.interpreters[language]
	return command, ok
}
