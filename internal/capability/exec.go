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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

const (
	// ManifestFileName declares an external capability provider.
	ManifestFileName = "capability.meta.json"

	// RuntimeExec providers are commands speaking json over stdout.
	RuntimeExec = "exec"

	execAcceptsTimeout = 30 * time.Second
	execSetupTimeout   = 5 * time.Minute

	execOpAccepts = "accepts"
	execOpSetup   = "setup"
)

// ProviderManifest declares an external provider. The command is invoked as
// `<command...> accepts|setup <path> [serializer]` from the manifest folder and
// answers with one json document on stdout.
type ProviderManifest struct {
	ID          string           `json:"id"`
	Type        PluginType       `json:"type"`
	Runtime     string           `json:"runtime"`
	Command     []string         `json:"command"`
	Format      string           `json:"format"`
	Serializers []SerializerType `json:"serializers,omitempty"`
	Extensions  []string         `json:"extensions,omitempty"`
}

type execResponse struct {
	Accepts bool    `json:"accepts"`
	Format  string  `json:"format,omitempty"`
	Valid   *bool   `json:"valid,omitempty"`
	Message string  `json:"message,omitempty"`
	Labels  []Label `json:"labels,omitempty"`
	Rows    int     `json:"rows,omitempty"`
	Cols    int     `json:"cols,omitempty"`
}

// LoadProviderManifest reads and checks a provider manifest.
func LoadProviderManifest(path string) (*ProviderManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := &ProviderManifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	if m.ID == "" {
		return nil, errors.Errorf("%s has no id", path)
	}

	if m.Runtime != RuntimeExec {
		return nil, errors.Errorf("provider %s has unsupported runtime %q", m.ID, m.Runtime)
	}

	if len(m.Command) == 0 {
		return nil, errors.Errorf("provider %s has no command", m.ID)
	}

	if m.Type == PluginTypeAlgorithm {
		return nil, errors.Errorf("provider %s: algorithms are declared by algorithm meta", m.ID)
	}

	if _, err := ParsePluginType(string(m.Type)); err != nil {
		return nil, errors.Wrapf(err, "provider %s", m.ID)
	}

	return m, nil
}

// NewExecProvider returns the provider declared by a manifest found in dir.
func NewExecProvider(m *ProviderManifest, dir string) (Provider, error) {
	runner := &execRunner{manifest: m, dir: dir}
	switch m.Type {
	case PluginTypeSerializer:
		return &execSerializerProvider{runner}, nil
	case PluginTypeData:
		return &execDataProvider{runner}, nil
	case PluginTypeModel:
		return &execModelProvider{runner}, nil
	case PluginTypePipeline:
		return &execPipelineProvider{runner}, nil
	default:
		return nil, errors.Errorf("provider %s has unsupported type %s", m.ID, m.Type)
	}
}

type execRunner struct {
	manifest *ProviderManifest
	dir      string
}

func (r *execRunner) ID() string {
	return r.manifest.ID
}

func (r *execRunner) Type() PluginType {
	return r.manifest.Type
}

func (r *execRunner) run(ctx context.Context, timeout time.Duration, op string, path string, serializer SerializerType) (*execResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), r.manifest.Command[1:]...), op, path)
	if serializer != SerializerNone {
		args = append(args, string(serializer))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.manifest.Command[0], args...)
	cmd.Dir = r.dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.New(msg)
	}

	resp := &execResponse{}
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), resp); err != nil {
		return nil, errors.Wrapf(err, "provider %s answered %s with invalid json", r.manifest.ID, op)
	}

	return resp, nil
}

func (r *execRunner) accepts(ctx context.Context, probe *Probe, serializer SerializerType) bool {
	if len(r.manifest.Extensions) > 0 && !probe.IsDir {
		ok := false
		for _, ext := range r.manifest.Extensions {
			if lowerASCII(ext) == probe.Ext() {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(r.manifest.Serializers) > 0 {
		ok := false
		for _, s := range r.manifest.Serializers {
			if s == serializer {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	resp, err := r.run(ctx, execAcceptsTimeout, execOpAccepts, probe.Path, serializer)
	if err != nil {
		logger.Debugf("provider %s rejected %s: %v", r.manifest.ID, probe.Path, err)
		return false
	}

	return resp.Accepts
}

func (r *execRunner) format(resp *execResponse) string {
	if resp != nil && resp.Format != "" {
		return resp.Format
	}

	return r.manifest.Format
}

type execSerializerProvider struct{ *execRunner }

func (p *execSerializerProvider) Accepts(ctx context.Context, probe *Probe) bool {
	return p.accepts(ctx, probe, SerializerNone)
}

func (p *execSerializerProvider) NewSerializer(probe *Probe) (Serializer, error) {
	return serializerTag(p.format(nil)), nil
}

type serializerTag SerializerType

func (s serializerTag) SerializerPluginType() SerializerType {
	return SerializerType(s)
}

// NewSerializerTag returns a serializer instance carrying only its type.
func NewSerializerTag(t SerializerType) Serializer {
	return serializerTag(t)
}

type execDataProvider struct{ *execRunner }

func (p *execDataProvider) Accepts(ctx context.Context, probe *Probe, serializer SerializerType) bool {
	return p.accepts(ctx, probe, serializer)
}

func (p *execDataProvider) NewData(probe *Probe, serializer SerializerType) (Data, error) {
	return &execData{runner: p.execRunner, path: probe.Path, serializer: serializer}, nil
}

type execData struct {
	runner     *execRunner
	path       string
	serializer SerializerType
	resp       *execResponse
	labels     []Label
	rows       int
	data       any
}

func (d *execData) Setup(ctx context.Context) error {
	resp, err := d.runner.run(ctx, execSetupTimeout, execOpSetup, d.path, d.serializer)
	if err != nil {
		return err
	}

	d.resp = resp
	d.labels = resp.Labels
	d.rows = resp.Rows
	return nil
}

func (d *execData) Validate() (bool, string) {
	if d.resp == nil {
		return false, "dataset is not set up"
	}

	if d.resp.Valid != nil && !*d.resp.Valid {
		return false, d.resp.Message
	}

	return true, ""
}

func (d *execData) ReadLabels() ([]Label, error) {
	if d.resp == nil {
		return nil, errors.New("dataset is not set up")
	}

	return d.labels, nil
}

func (d *execData) Shape() (int, int) {
	return d.rows, len(d.labels)
}

func (d *execData) DataPluginType() DataFormat {
	return DataFormat(d.runner.format(d.resp))
}

func (d *execData) KeepGroundTruth(column string) bool {
	for _, l := range d.labels {
		if l.Name == column {
			d.labels = []Label{l}
			return true
		}
	}

	return false
}

func (d *execData) RemoveGroundTruth(column string) {
	d.labels = removeLabel(d.labels, column)
}

func (d *execData) Data() any {
	if d.data != nil {
		return d.data
	}

	return d.path
}

func (d *execData) SetData(data any) {
	d.data = data
}

type execModelProvider struct{ *execRunner }

func (p *execModelProvider) Accepts(ctx context.Context, probe *Probe, serializer SerializerType) bool {
	return p.accepts(ctx, probe, serializer)
}

func (p *execModelProvider) NewModel(probe *Probe, serializer SerializerType) (Model, error) {
	return &execModel{runner: p.execRunner, path: probe.Path, serializer: serializer}, nil
}

type execModel struct {
	runner     *execRunner
	path       string
	serializer SerializerType
	resp       *execResponse
}

func (m *execModel) Setup(ctx context.Context) error {
	resp, err := m.runner.run(ctx, execSetupTimeout, execOpSetup, m.path, m.serializer)
	if err != nil {
		return err
	}

	if resp.Valid != nil && !*resp.Valid {
		return errors.New(resp.Message)
	}

	m.resp = resp
	return nil
}

func (m *execModel) Cleanup() {
	m.resp = nil
}

func (m *execModel) ModelPluginType() ModelFormat {
	return ModelFormat(m.runner.format(m.resp))
}

type execPipelineProvider struct{ *execRunner }

func (p *execPipelineProvider) Accepts(ctx context.Context, probe *Probe, serializer SerializerType) bool {
	return p.accepts(ctx, probe, serializer)
}

func (p *execPipelineProvider) NewPipeline(probe *Probe, serializer SerializerType) (Pipeline, error) {
	return &execPipeline{execModel: execModel{runner: p.execRunner, path: probe.Path, serializer: serializer}}, nil
}

type execPipeline struct {
	execModel
	pipeline any
}

func (p *execPipeline) PipelinePluginType() PipelineFormat {
	return PipelineFormat(p.runner.format(p.resp))
}

func (p *execPipeline) Pipeline() any {
	if p.pipeline != nil {
		return p.pipeline
	}

	return p.path
}

func (p *execPipeline) SetPipeline(pipeline any) {
	p.pipeline = pipeline
}

func removeLabel(labels []Label, column string) []Label {
	out := labels[:0:0]
	for _, l := range labels {
		if l.Name != column {
			out = append(out, l)
		}
	}

	return out
}

// manifestDir returns the folder of a manifest path.
func manifestDir(path string) string {
	return filepath.Dir(path)
}
