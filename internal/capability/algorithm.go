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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const (
	// LanguagePython is the only algorithm language.
	LanguagePython = "python"

	// DefaultPythonInterpreter runs python algorithms.
	DefaultPythonInterpreter = "python3"

	// InputSchemaFileName and OutputSchemaFileName live next to the algorithm meta.
	InputSchemaFileName  = "input.schema.json"
	OutputSchemaFileName = "output.schema.json"

	pyprojectFileName = "pyproject.toml"
	algoMetaFileName  = "algo.meta.json"
	algoScriptName    = "algo.py"
	mainScriptName    = "__main__.py"

	algorithmInputFileName  = "algorithm.input.json"
	algorithmOutputFileName = "output.json"

	maxOutputLine = 1024 * 1024
)

// AlgorithmMeta is the decoded algorithm meta document.
type AlgorithmMeta struct {
	CID                string   `json:"cid"`
	GID                string   `json:"gid,omitempty"`
	Name               string   `json:"name"`
	ModelType          []string `json:"modelType"`
	Version            string   `json:"version,omitempty"`
	Author             string   `json:"author,omitempty"`
	Description        string   `json:"description,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	RequireGroundTruth bool     `json:"requireGroundTruth"`
	RequiredFiles      []string `json:"requiredFiles,omitempty"`
	Language           string   `json:"language,omitempty"`
	Script             string   `json:"script,omitempty"`
	ModuleName         string   `json:"module_name,omitempty"`
}

// AlgorithmLayout locates the files of an algorithm folder.
type AlgorithmLayout struct {
	// Root is the algorithm folder, algorithms/<cid> inside a plugin.
	Root string

	// MetaPath is the algorithm meta document.
	MetaPath string

	// ModuleDir holds the meta, schemas and script.
	ModuleDir string

	// ModuleName is the importable module name.
	ModuleName string

	// Script is the entrypoint relative to Root, slash separated; empty when none exists.
	Script string

	// InputSchemaPath and OutputSchemaPath may not exist.
	InputSchemaPath  string
	OutputSchemaPath string
}

type pyproject struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// LocateAlgorithm finds the meta, schemas and script of an algorithm folder. It accepts
// <cid>.meta.json with <cid>.py or algo.py, and pyproject.toml with <project>/algo.meta.json.
func LocateAlgorithm(root string) (*AlgorithmLayout, error) {
	cid := filepath.Base(root)
	layout := &AlgorithmLayout{Root: root}

	if legacyMeta := filepath.Join(root, cid+".meta.json"); fileutils.IsRegularFile(legacyMeta) {
		layout.MetaPath = legacyMeta
		layout.ModuleDir = root
		layout.ModuleName = strings.NewReplacer("-", "_", ".", "_").Replace(cid)

		for _, candidate := range []string{cid + ".py", algoScriptName} {
			if fileutils.IsRegularFile(filepath.Join(root, candidate)) {
				layout.Script = candidate
				break
			}
		}
	} else if pyprojectPath := filepath.Join(root, pyprojectFileName); fileutils.IsRegularFile(pyprojectPath) {
		data, err := os.ReadFile(pyprojectPath)
		if err != nil {
			return nil, err
		}

		var project pyproject
		if err := toml.Unmarshal(data, &project); err != nil {
			return nil, errors.Wrapf(err, "parse %s", pyprojectFileName)
		}

		name := project.Project.Name
		if name == "" {
			name = project.Tool.Poetry.Name
		}

		if name == "" {
			return nil, errors.Errorf("%s has no project name", pyprojectFileName)
		}

		layout.ModuleName = strings.ReplaceAll(name, "-", "_")
		moduleDir, err := fileutils.Join(root, layout.ModuleName)
		if err != nil {
			return nil, err
		}

		layout.ModuleDir = moduleDir
		layout.MetaPath = filepath.Join(moduleDir, algoMetaFileName)
		if !fileutils.IsRegularFile(layout.MetaPath) {
			return nil, errors.Errorf("%s/%s not found", layout.ModuleName, algoMetaFileName)
		}

		for _, candidate := range []string{algoScriptName, mainScriptName} {
			if fileutils.IsRegularFile(filepath.Join(moduleDir, candidate)) {
				layout.Script = path.Join(layout.ModuleName, candidate)
				break
			}
		}
	} else {
		return nil, errors.Errorf("algorithm folder %s has neither %s.meta.json nor %s", cid, cid, pyprojectFileName)
	}

	layout.InputSchemaPath = filepath.Join(layout.ModuleDir, InputSchemaFileName)
	layout.OutputSchemaPath = filepath.Join(layout.ModuleDir, OutputSchemaFileName)
	return layout, nil
}

// ReadMeta decodes the algorithm meta and applies script overrides it declares.
func (l *AlgorithmLayout) ReadMeta() (*AlgorithmMeta, []byte, error) {
	data, err := os.ReadFile(l.MetaPath)
	if err != nil {
		return nil, nil, err
	}

	meta := &AlgorithmMeta{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, nil, errors.Wrapf(err, "parse %s", filepath.Base(l.MetaPath))
	}

	if meta.Language == "" {
		meta.Language = LanguagePython
	}

	if meta.ModuleName != "" {
		l.ModuleName = meta.ModuleName
	}

	if meta.Script != "" {
		if _, err := fileutils.ResolveRegularFile(l.Root, meta.Script); err == nil {
			l.Script = path.Clean(filepath.ToSlash(meta.Script))
		} else if _, err := fileutils.ResolveRegularFile(l.ModuleDir, meta.Script); err == nil {
			rel, _ := filepath.Rel(l.Root, filepath.Join(l.ModuleDir, meta.Script))
			l.Script = filepath.ToSlash(rel)
		}
	}

	return meta, data, nil
}

// ReadSchemas returns the input and output schema documents, nil when absent.
func (l *AlgorithmLayout) ReadSchemas() (input []byte, output []byte, err error) {
	read := func(p string) ([]byte, error) {
		if !fileutils.IsRegularFile(p) {
			return nil, nil
		}
		return os.ReadFile(p)
	}

	if input, err = read(l.InputSchemaPath); err != nil {
		return nil, nil, err
	}

	if output, err = read(l.OutputSchemaPath); err != nil {
		return nil, nil, err
	}

	return input, output, nil
}

// AlgorithmManifest is what the registry knows of an algorithm.
type AlgorithmManifest struct {
	GID          string
	CID          string
	Meta         *AlgorithmMeta
	Layout       *AlgorithmLayout
	InputSchema  []byte
	OutputSchema []byte
}

// LoadAlgorithmManifest reads an algorithm folder of plugin gid.
func LoadAlgorithmManifest(gid, root string) (*AlgorithmManifest, error) {
	layout, err := LocateAlgorithm(root)
	if err != nil {
		return nil, err
	}

	meta, _, err := layout.ReadMeta()
	if err != nil {
		return nil, err
	}

	if gid == "" {
		gid = meta.GID
	}

	if gid == "" {
		return nil, errors.Errorf("algorithm %s has no gid", meta.CID)
	}

	input, output, err := layout.ReadSchemas()
	if err != nil {
		return nil, err
	}

	return &AlgorithmManifest{
		GID:          gid,
		CID:          meta.CID,
		Meta:         meta,
		Layout:       layout,
		InputSchema:  input,
		OutputSchema: output,
	}, nil
}

type execAlgorithmProvider struct {
	manifest *AlgorithmManifest
	command  []string
}

// NewAlgorithmProvider returns a provider running the manifest script with
// the interpreter registered for its language.
func (r *Registry) NewAlgorithmProvider(manifest *AlgorithmManifest) (AlgorithmProvider, error) {
	command, ok := r.interpreter(manifest.Meta.Language)
	if !ok {
		return nil, errors.Errorf("no interpreter for language %s", manifest.Meta.Language)
	}

	return &execAlgorithmProvider{manifest: manifest, command: command}, nil
}

func (p *execAlgorithmProvider) ID() string {
	return AlgorithmID(p.manifest.GID, p.manifest.CID)
}

func (p *execAlgorithmProvider) Type() PluginType {
	return PluginTypeAlgorithm
}

func (p *execAlgorithmProvider) Manifest() *AlgorithmManifest {
	return p.manifest
}

func (p *execAlgorithmProvider) NewAlgorithm(input *AlgorithmInput) (Algorithm, error) {
	if p.manifest.Layout.Script == "" {
		return nil, dferrors.InputValidation("algorithm %s has no script", p.ID())
	}

	if input.OutputDir == "" {
		return nil, dferrors.InputValidation("algorithm %s requires an output directory", p.ID())
	}

	if p.manifest.Meta.RequireGroundTruth && (input.GroundTruthPath == "" || input.GroundTruthColumn == "") {
		return nil, dferrors.InputValidation("algorithm %s requires a ground truth", p.ID())
	}

	return &execAlgorithm{provider: p, input: input}, nil
}

// execAlgorithm runs the script as
// `<interpreter> <script> --input <algorithm.input.json> --output <output.json>`.
// Lines of the form {"progress": n} on stdout report progress.
type execAlgorithm struct {
	provider *execAlgorithmProvider
	input    *AlgorithmInput
	result   *AlgorithmResult
}

type algorithmInputDocument struct {
	TestDataset           string          `json:"testDataset"`
	TestDatasetFormat     DataFormat      `json:"testDatasetFormat,omitempty"`
	TestDatasetSerializer SerializerType  `json:"testDatasetSerializer,omitempty"`
	ModelFile             string          `json:"modelFile"`
	ModelFormat           string          `json:"modelFormat,omitempty"`
	ModelSerializer       SerializerType  `json:"modelSerializer,omitempty"`
	ModelType             string          `json:"modelType"`
	IsPipeline            bool            `json:"isPipeline"`
	GroundTruthDataset    string          `json:"groundTruthDataset,omitempty"`
	GroundTruthSerializer SerializerType  `json:"groundTruthSerializer,omitempty"`
	GroundTruth           string          `json:"groundTruth,omitempty"`
	AlgorithmArgs         json.RawMessage `json:"algorithmArgs"`
	OutputDir             string          `json:"outputDir"`
}

type progressLine struct {
	Progress *int `json:"progress"`
}

func (a *execAlgorithm) Generate(ctx context.Context) error {
	in := a.input
	doc := algorithmInputDocument{
		TestDataset:           in.DataPath,
		TestDatasetSerializer: in.DataSerializer,
		ModelFile:             in.ModelPath,
		ModelSerializer:       in.ModelSerializer,
		ModelType:             in.ModelType,
		IsPipeline:            in.Pipeline != nil,
		GroundTruthDataset:    in.GroundTruthPath,
		GroundTruthSerializer: in.GroundTruthSerializer,
		GroundTruth:           in.GroundTruthColumn,
		AlgorithmArgs:         in.Args,
		OutputDir:             in.OutputDir,
	}

	if in.Data != nil {
		doc.TestDatasetFormat = in.Data.DataPluginType()
	}

	switch {
	case in.Pipeline != nil:
		doc.ModelFormat = string(in.Pipeline.PipelinePluginType())
	case in.Model != nil:
		doc.ModelFormat = string(in.Model.ModelPluginType())
	}

	if len(doc.AlgorithmArgs) == 0 {
		doc.AlgorithmArgs = json.RawMessage("{}")
	}

	if err := fileutils.MkdirAll(in.OutputDir); err != nil {
		return err
	}

	inputPath := filepath.Join(in.OutputDir, algorithmInputFileName)
	outputPath := filepath.Join(in.OutputDir, algorithmOutputFileName)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := os.WriteFile(inputPath, data, 0644); err != nil {
		return err
	}

	layout := a.provider.manifest.Layout
	args := append(append([]string(nil), a.provider.command[1:]...),
		filepath.FromSlash(layout.Script), "--input", inputPath, "--output", outputPath)
	cmd := exec.CommandContext(ctx, a.provider.command[0], args...)
	cmd.Dir = layout.Root

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	log := logger.With("algorithm", a.provider.ID())
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "start algorithm %s", a.provider.ID())
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxOutputLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		var p progressLine
		if json.Unmarshal(line, &p) == nil && p.Progress != nil {
			if in.Progress != nil {
				in.Progress(*p.Progress)
			}
			continue
		}

		log.Debugf("algorithm output: %s", line)
	}

	// Keep draining so an overlong line cannot block the child.
	if _, err := io.Copy(io.Discard, stdout); err != nil {
		log.Warnf("drain algorithm output failed: %v", err)
	}

	if err := cmd.Wait(); err != nil {
		return errors.Errorf("algorithm %s failed: %v: %s", a.provider.ID(), err, strings.TrimSpace(stderr.String()))
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		return errors.Wrapf(err, "algorithm %s wrote no output", a.provider.ID())
	}

	result := &AlgorithmResult{}
	if err := json.Unmarshal(output, result); err != nil {
		return errors.Wrapf(err, "algorithm %s wrote invalid output", a.provider.ID())
	}

	for _, artifact := range result.Artifacts {
		if _, err := fileutils.ResolveRegularFile(in.OutputDir, artifact); err != nil {
			return errors.Wrapf(err, "algorithm %s artifact", a.provider.ID())
		}
	}

	a.result = result
	return nil
}

func (a *execAlgorithm) Results() (*AlgorithmResult, error) {
	if a.result == nil {
		return nil, errors.New("algorithm has not generated results")
	}

	return a.result, nil
}
