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

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
)

var lightgbmTextHeader = []byte("tree\nversion=")

// picklePrefixes returns whether a pickled artifact references any of the module prefixes.
func picklePrefixes(probe *capability.Probe, serializer capability.SerializerType, prefixes ...string) bool {
	if serializer != capability.SerializerPickle && serializer != capability.SerializerJoblib {
		return false
	}

	info, _ := probe.Pickle()
	return info != nil && info.HasModulePrefix(prefixes...)
}

// model is a built-in model whose accepts probe is rerun on setup.
type model struct {
	format     capability.ModelFormat
	probe      *capability.Probe
	serializer capability.SerializerType
	accepts    func(context.Context, *capability.Probe, capability.SerializerType) bool
	ready      bool
}

func (m *model) Setup(ctx context.Context) error {
	if _, err := os.Stat(m.probe.Path); err != nil {
		return err
	}

	if !m.accepts(ctx, m.probe, m.serializer) {
		return errors.Errorf("%s is not a %s model", m.probe.Path, m.format)
	}

	m.ready = true
	return nil
}

func (m *model) Cleanup() {
	m.ready = false
}

func (m *model) ModelPluginType() capability.ModelFormat {
	return m.format
}

type modelProvider struct {
	format  capability.ModelFormat
	accepts func(context.Context, *capability.Probe, capability.SerializerType) bool
}

func (p *modelProvider) ID() string {
	return string(p.format)
}

func (p *modelProvider) Type() capability.PluginType {
	return capability.PluginTypeModel
}

func (p *modelProvider) Accepts(ctx context.Context, probe *capability.Probe, serializer capability.SerializerType) bool {
	return p.accepts(ctx, probe, serializer)
}

func (p *modelProvider) NewModel(probe *capability.Probe, serializer capability.SerializerType) (capability.Model, error) {
	return &model{format: p.format, probe: probe, serializer: serializer, accepts: p.accepts}, nil
}

func newSklearnModelProvider() *modelProvider {
	return &modelProvider{
		format: capability.ModelFormatSklearn,
		accepts: func(_ context.Context, probe *capability.Probe, serializer capability.SerializerType) bool {
			return picklePrefixes(probe, serializer, "sklearn.") &&
				!picklePrefixes(probe, serializer, "xgboost.", "lightgbm.")
		},
	}
}

func newXGBoostModelProvider() *modelProvider {
	return &modelProvider{
		format: capability.ModelFormatXGBoost,
		accepts: func(_ context.Context, probe *capability.Probe, serializer capability.SerializerType) bool {
			if serializer == capability.SerializerJSON {
				return isXGBoostJSON(probe.Path)
			}

			return picklePrefixes(probe, serializer, "xgboost.")
		},
	}
}

// isXGBoostJSON reports whether path holds a booster saved with save_model(*.json).
func isXGBoostJSON(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var doc struct {
		Learner json.RawMessage `json:"learner"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}

	return len(doc.Learner) > 0 && doc.Learner[0] == '{'
}

func newLightGBMModelProvider() *modelProvider {
	return &modelProvider{
		format: capability.ModelFormatLightGBM,
		accepts: func(_ context.Context, probe *capability.Probe, serializer capability.SerializerType) bool {
			if serializer == capability.SerializerNone {
				return !probe.IsDir && bytes.HasPrefix(probe.Header(), lightgbmTextHeader)
			}

			return picklePrefixes(probe, serializer, "lightgbm.")
		},
	}
}

func newTensorflowModelProvider() *modelProvider {
	return &modelProvider{
		format: capability.ModelFormatTensorflow,
		accepts: func(_ context.Context, _ *capability.Probe, serializer capability.SerializerType) bool {
			return serializer == capability.SerializerTensorflow
		},
	}
}
