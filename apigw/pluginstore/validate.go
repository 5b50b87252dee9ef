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

package pluginstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const (
	// PluginMetaFileName is required at the root of every plugin package.
	PluginMetaFileName = "plugin.meta.json"

	AlgorithmsDir = "algorithms"
	WidgetsDir    = "widgets"
	InputsDir     = "inputs"
	TemplatesDir  = "templates"

	// UserDefinedFilesDir is never scanned as a stock plugin.
	UserDefinedFilesDir = "user_defined_files"

	metaSuffix         = ".meta.json"
	mdxSuffix          = ".mdx"
	summaryMdxSuffix   = ".summary.mdx"
	templateDataSuffix = ".data.json"
)

// CheckID validates a gid or cid.
func CheckID(kind, id string) error {
	if !models.IsValidID(id) {
		return dferrors.InputValidation("invalid %s %q", kind, id)
	}

	return nil
}

type PluginMeta struct {
	GID         string `json:"gid"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ComponentMeta holds the fields every widget, input block and template meta shares.
type ComponentMeta struct {
	CID         string   `json:"cid"`
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type WidgetSize struct {
	MinW int `json:"minW"`
	MinH int `json:"minH"`
	MaxW int `json:"maxW"`
	MaxH int `json:"maxH"`
}

type WidgetProperty struct {
	Key     string `json:"key"`
	Helper  string `json:"helper"`
	Default string `json:"default,omitempty"`
}

type WidgetDependency struct {
	GID     string `json:"gid,omitempty"`
	CID     string `json:"cid"`
	Version string `json:"version,omitempty"`
}

// WidgetMockData is sample input of a widget. Data is the content of DataPath.
type WidgetMockData struct {
	Type     string          `json:"type"`
	GID      string          `json:"gid,omitempty"`
	CID      string          `json:"cid"`
	DataPath string          `json:"datapath"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type WidgetMeta struct {
	ComponentMeta
	WidgetSize    WidgetSize         `json:"widgetSize"`
	Properties    []WidgetProperty   `json:"properties,omitempty"`
	Dependencies  []WidgetDependency `json:"dependencies,omitempty"`
	MockData      []WidgetMockData   `json:"mockdata,omitempty"`
	DynamicHeight bool               `json:"dynamicHeight,omitempty"`
}

type InputBlockMeta struct {
	ComponentMeta
	Group       *string `json:"group,omitempty"`
	GroupNumber *int    `json:"groupNumber,omitempty"`
	Width       string  `json:"width,omitempty"`
	FullScreen  bool    `json:"fullScreen,omitempty"`
}

type TemplateMeta struct {
	ComponentMeta
}

type ValidatedAlgorithm struct {
	// Dir is the algorithm folder inside the package.
	Dir      string
	Manifest *capability.AlgorithmManifest
	MetaJSON []byte
}

type ValidatedWidget struct {
	Meta     WidgetMeta
	MetaJSON []byte
	MDXPath  string
}

type ValidatedInputBlock struct {
	Meta           InputBlockMeta
	MetaJSON       []byte
	MDXPath        string
	SummaryMDXPath string
}

type ValidatedTemplate struct {
	Meta     TemplateMeta
	MetaJSON []byte
	Data     []byte
}

// ValidatedPlugin is a plugin directory that passed every schema and layout check.
type ValidatedPlugin struct {
	Dir         string
	Meta        PluginMeta
	MetaJSON    []byte
	Algorithms  []*ValidatedAlgorithm
	Widgets     []*ValidatedWidget
	InputBlocks []*ValidatedInputBlock
	Templates   []*ValidatedTemplate
}

// ValidatePluginDirectory checks a plugin package without side effects.
func (s *Store) ValidatePluginDirectory(dir string) (*ValidatedPlugin, error) {
	if !fileutils.IsDir(dir) {
		return nil, dferrors.InputValidation("plugin directory %s not found", filepath.Base(dir))
	}

	metaPath := filepath.Join(dir, PluginMetaFileName)
	if !fileutils.IsRegularFile(metaPath) {
		return nil, dferrors.InputValidation("missing %s", PluginMetaFileName)
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read %s", PluginMetaFileName)
	}

	if err := s.schemas.Validate(schemas.Plugin, data); err != nil {
		return nil, err
	}

	plugin := &ValidatedPlugin{Dir: dir, MetaJSON: data}
	if err := json.Unmarshal(data, &plugin.Meta); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "decode %s", PluginMetaFileName)
	}

	if err := CheckID("gid", plugin.Meta.GID); err != nil {
		return nil, err
	}

	if plugin.Algorithms, err = s.validateAlgorithms(dir, plugin.Meta.GID); err != nil {
		return nil, err
	}

	if plugin.Widgets, err = s.validateWidgets(dir); err != nil {
		return nil, err
	}

	if plugin.InputBlocks, err = s.validateInputBlocks(dir); err != nil {
		return nil, err
	}

	if plugin.Templates, err = s.validateTemplates(dir); err != nil {
		return nil, err
	}

	return plugin, nil
}

func (s *Store) validateAlgorithms(dir, gid string) ([]*ValidatedAlgorithm, error) {
	root := filepath.Join(dir, AlgorithmsDir)
	if !fileutils.IsDir(root) {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read %s", AlgorithmsDir)
	}

	var algorithms []*ValidatedAlgorithm
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		algorithm, err := s.ValidateAlgorithmDirectory(filepath.Join(root, entry.Name()), gid)
		if err != nil {
			return nil, err
		}

		if entry.Name() != algorithm.Manifest.CID {
			return nil, dferrors.InputValidation("algorithm folder %s does not match cid %s", entry.Name(), algorithm.Manifest.CID)
		}

		algorithms = append(algorithms, algorithm)
	}

	return algorithms, nil
}

// ValidateAlgorithmDirectory checks one algorithm folder. An empty gid takes
// the gid declared by the algorithm meta.
func (s *Store) ValidateAlgorithmDirectory(dir, gid string) (*ValidatedAlgorithm, error) {
	layout, err := capability.LocateAlgorithm(dir)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "locate algorithm %s", filepath.Base(dir))
	}

	meta, data, err := layout.ReadMeta()
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read algorithm meta %s", filepath.Base(dir))
	}

	if err := s.schemas.Validate(schemas.Algorithm, data); err != nil {
		return nil, err
	}

	if err := CheckID("cid", meta.CID); err != nil {
		return nil, err
	}

	switch {
	case gid == "":
		gid = meta.GID
		if err := CheckID("gid", gid); err != nil {
			return nil, err
		}
	case meta.GID != "" && meta.GID != gid:
		return nil, dferrors.InputValidation("algorithm %s declares gid %s, plugin is %s", meta.CID, meta.GID, gid)
	}

	input, output, err := layout.ReadSchemas()
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read schemas of algorithm %s", meta.CID)
	}

	if input == nil {
		return nil, dferrors.InputValidation("algorithm %s has no %s", meta.CID, capability.InputSchemaFileName)
	}

	if output == nil {
		return nil, dferrors.InputValidation("algorithm %s has no %s", meta.CID, capability.OutputSchemaFileName)
	}

	if err := s.schemas.CheckSchema(input); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "algorithm %s input schema", meta.CID)
	}

	if err := s.schemas.CheckSchema(output); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "algorithm %s output schema", meta.CID)
	}

	return &ValidatedAlgorithm{
		Dir: dir,
		Manifest: &capability.AlgorithmManifest{
			GID:          gid,
			CID:          meta.CID,
			Meta:         meta,
			Layout:       layout,
			InputSchema:  input,
			OutputSchema: output,
		},
		MetaJSON: data,
	}, nil
}

func (s *Store) validateWidgets(dir string) ([]*ValidatedWidget, error) {
	widgetsDir := filepath.Join(dir, WidgetsDir)
	paths, err := listMeta(widgetsDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(paths))
	widgets := make([]*ValidatedWidget, 0, len(paths))
	for _, path := range paths {
		widget := &ValidatedWidget{}
		if widget.MetaJSON, err = s.readMeta(path, schemas.Widget, &widget.Meta); err != nil {
			return nil, err
		}

		cid := widget.Meta.CID
		if err := checkComponent("widget", cid, seen); err != nil {
			return nil, err
		}

		size := widget.Meta.WidgetSize
		if size.MinW > size.MaxW || size.MinH > size.MaxH {
			return nil, dferrors.InputValidation("widget %s size minimum exceeds maximum", cid)
		}

		if widget.MDXPath, err = componentFile(widgetsDir, cid+mdxSuffix); err != nil {
			return nil, err
		}

		for i := range widget.Meta.MockData {
			mock := &widget.Meta.MockData[i]
			path, err := fileutils.ResolveRegularFile(widgetsDir, mock.DataPath)
			if err != nil {
				return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "widget %s mock data %s", cid, mock.DataPath)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read widget %s mock data", cid)
			}

			if !json.Valid(data) {
				return nil, dferrors.InputValidation("widget %s mock data %s is not json", cid, mock.DataPath)
			}
			mock.Data = data
		}

		widgets = append(widgets, widget)
	}

	return widgets, nil
}

func (s *Store) validateInputBlocks(dir string) ([]*ValidatedInputBlock, error) {
	inputsDir := filepath.Join(dir, InputsDir)
	paths, err := listMeta(inputsDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(paths))
	inputBlocks := make([]*ValidatedInputBlock, 0, len(paths))
	for _, path := range paths {
		inputBlock := &ValidatedInputBlock{}
		if inputBlock.MetaJSON, err = s.readMeta(path, schemas.InputBlock, &inputBlock.Meta); err != nil {
			return nil, err
		}

		cid := inputBlock.Meta.CID
		if err := checkComponent("input block", cid, seen); err != nil {
			return nil, err
		}

		if inputBlock.MDXPath, err = componentFile(inputsDir, cid+mdxSuffix); err != nil {
			return nil, err
		}

		if inputBlock.SummaryMDXPath, err = componentFile(inputsDir, cid+summaryMdxSuffix); err != nil {
			return nil, err
		}

		inputBlocks = append(inputBlocks, inputBlock)
	}

	return inputBlocks, nil
}

func (s *Store) validateTemplates(dir string) ([]*ValidatedTemplate, error) {
	templatesDir := filepath.Join(dir, TemplatesDir)
	paths, err := listMeta(templatesDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(paths))
	templates := make([]*ValidatedTemplate, 0, len(paths))
	for _, path := range paths {
		template := &ValidatedTemplate{}
		if template.MetaJSON, err = s.readMeta(path, schemas.Template, &template.Meta); err != nil {
			return nil, err
		}

		cid := template.Meta.CID
		if err := checkComponent("template", cid, seen); err != nil {
			return nil, err
		}

		dataPath, err := componentFile(templatesDir, cid+templateDataSuffix)
		if err != nil {
			return nil, err
		}

		if template.Data, err = os.ReadFile(dataPath); err != nil {
			return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read template %s data", cid)
		}

		if err := s.schemas.Validate(schemas.TemplateData, template.Data); err != nil {
			return nil, err
		}

		templates = append(templates, template)
	}

	return templates, nil
}

// readMeta validates a component meta against its schema and decodes it into v.
func (s *Store) readMeta(path string, name schemas.Name, v any) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read %s", filepath.Base(path))
	}

	if err := s.schemas.Validate(name, data); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "validate %s", filepath.Base(path))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "decode %s", filepath.Base(path))
	}

	return data, nil
}

func checkComponent(kind, cid string, seen map[string]struct{}) error {
	if err := CheckID(kind+" cid", cid); err != nil {
		return err
	}

	if _, ok := seen[cid]; ok {
		return dferrors.InputValidation("duplicate %s %s", kind, cid)
	}
	seen[cid] = struct{}{}

	return nil
}

func componentFile(dir, name string) (string, error) {
	path, err := fileutils.ResolveRegularFile(dir, name)
	if err != nil {
		return "", dferrors.Wrapf(dferrors.CodeInputValidation, err, "missing %s/%s", filepath.Base(dir), name)
	}

	return path, nil
}

// listMeta returns the sorted *.meta.json files directly under dir.
func listMeta(dir string) ([]string, error) {
	if !fileutils.IsDir(dir) {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInputValidation, err, "read %s", filepath.Base(dir))
	}

	var paths []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), metaSuffix) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	return paths, nil
}
