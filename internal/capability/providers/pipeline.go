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
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
)

const sklearnPipelineGlobal = "sklearn.pipeline.Pipeline"

var pipelineExtensions = map[string]struct{}{
	".sav":    {},
	".pkl":    {},
	".pickle": {},
	".joblib": {},
}

// sklearnPipelineProvider accepts a pickled sklearn Pipeline, either as a file
// or as the top level pipeline file of a folder carrying its custom modules.
type sklearnPipelineProvider struct{}

func (p *sklearnPipelineProvider) ID() string {
	return string(capability.PipelineFormatSklearn)
}

func (p *sklearnPipelineProvider) Type() capability.PluginType {
	return capability.PluginTypePipeline
}

func (p *sklearnPipelineProvider) Accepts(_ context.Context, probe *capability.Probe, serializer capability.SerializerType) bool {
	_, err := findPipelineFile(probe, serializer)
	return err == nil
}

func (p *sklearnPipelineProvider) NewPipeline(probe *capability.Probe, serializer capability.SerializerType) (capability.Pipeline, error) {
	return &sklearnPipeline{probe: probe, serializer: serializer}, nil
}

func findPipelineFile(probe *capability.Probe, serializer capability.SerializerType) (string, error) {
	if !probe.IsDir {
		if picklePrefixes(probe, serializer, "sklearn.") {
			info, _ := probe.Pickle()
			if info.HasGlobal(sklearnPipelineGlobal) {
				return probe.Path, nil
			}
		}

		return "", errors.Errorf("%s is not a sklearn pipeline", probe.Path)
	}

	if serializer != capability.SerializerNone {
		return "", errors.New("folder pipelines carry no serializer")
	}

	entries, err := os.ReadDir(probe.Path)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		if _, ok := pipelineExtensions[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			candidates = append(candidates, e.Name())
		}
	}
	sort.Strings(candidates)

	for _, name := range candidates {
		child, err := capability.NewProbe(filepath.Join(probe.Path, name))
		if err != nil {
			continue
		}

		info, _ := child.Pickle()
		if info != nil && info.HasGlobal(sklearnPipelineGlobal) {
			return child.Path, nil
		}
	}

	return "", errors.Errorf("%s has no sklearn pipeline file", probe.Path)
}

type sklearnPipeline struct {
	probe      *capability.Probe
	serializer capability.SerializerType
	file       string
	pipeline   any
}

func (p *sklearnPipeline) Setup(context.Context) error {
	file, err := findPipelineFile(p.probe, p.serializer)
	if err != nil {
		return err
	}

	p.file = file
	return nil
}

func (p *sklearnPipeline) Cleanup() {
	p.file = ""
	p.pipeline = nil
}

func (p *sklearnPipeline) PipelinePluginType() capability.PipelineFormat {
	return capability.PipelineFormatSklearn
}

// Pipeline returns the pipeline file path unless replaced by SetPipeline.
func (p *sklearnPipeline) Pipeline() any {
	if p.pipeline != nil {
		return p.pipeline
	}

	return p.file
}

func (p *sklearnPipeline) SetPipeline(pipeline any) {
	p.pipeline = pipeline
}
