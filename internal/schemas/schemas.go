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

package schemas

import (
	"bytes"
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/digest"
)

// Name is the file name of a schema document.
type Name string

const (
	Plugin       Name = "aiverify.plugin.schema.json"
	Algorithm    Name = "aiverify.algorithm.schema.json"
	Widget       Name = "aiverify.widget.schema.json"
	InputBlock   Name = "aiverify.input_block.schema.json"
	Template     Name = "aiverify.template.schema.json"
	TemplateData Name = "aiverify.template_data.schema.json"
	TestResult   Name = "aiverify.testresult.schema.json"
)

// Names lists every schema the registry loads.
var Names = []Name{Plugin, Algorithm, Widget, InputBlock, Template, TemplateData, TestResult}

const resourcePrefix = "file:///schemas/"

//go:embed json/*.json
var embedded embed.FS

// Registry holds compiled schemas. Documents are compiled on first use and kept.
type Registry struct {
	source fs.FS

	mu       sync.Mutex
	compiled map[Name]*jsonschema.Schema

	// documents caches schemas supplied by plugins, keyed by content digest.
	documents sync.Map
}

// New returns a registry reading schemas from dir, or the built-in documents when dir is empty.
func New(dir string) (*Registry, error) {
	var source fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "json")
		if err != nil {
			return nil, err
		}
		source = sub
	} else {
		source = os.DirFS(dir)
	}

	r := &Registry{
		source:   source,
		compiled: make(map[Name]*jsonschema.Schema, len(Names)),
	}

	for _, name := range Names {
		if _, err := r.schema(name); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) schema(name Name) (*jsonschema.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.compiled[name]; ok {
		return s, nil
	}

	data, err := fs.ReadFile(r.source, string(name))
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInternalInvariant, err, "load schema %s", name)
	}

	s, err := compile(resourcePrefix+string(name), data)
	if err != nil {
		return nil, dferrors.Wrapf(dferrors.CodeInternalInvariant, err, "compile schema %s", name)
	}

	r.compiled[name] = s
	return s, nil
}

// Validate checks a JSON document against a named schema.
func (r *Registry) Validate(name Name, doc []byte) error {
	s, err := r.schema(name)
	if err != nil {
		return err
	}

	return validate(s, doc, strings.TrimSuffix(string(name), ".schema.json"))
}

// ValidateValue checks a decoded value against a named schema.
func (r *Registry) ValidateValue(name Name, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return dferrors.Wrap(dferrors.CodeInputValidation, err, "encode document")
	}

	return r.Validate(name, doc)
}

// CheckSchema reports whether schemaDoc is itself a valid JSON schema.
func (r *Registry) CheckSchema(schemaDoc []byte) error {
	_, err := r.document(schemaDoc)
	return err
}

// ValidateWith checks doc against a schema document supplied at runtime,
// such as an algorithm input or output schema. An empty schema accepts everything.
func (r *Registry) ValidateWith(schemaDoc, doc []byte) error {
	if len(bytes.TrimSpace(schemaDoc)) == 0 {
		return nil
	}

	s, err := r.document(schemaDoc)
	if err != nil {
		return err
	}

	return validate(s, doc, "document")
}

func (r *Registry) document(schemaDoc []byte) (*jsonschema.Schema, error) {
	key := digest.SHA256FromBytes(schemaDoc)
	if s, ok := r.documents.Load(key); ok {
		return s.(*jsonschema.Schema), nil
	}

	s, err := compile(resourcePrefix+strings.ReplaceAll(key, ":", "-")+".json", schemaDoc)
	if err != nil {
		return nil, dferrors.Wrap(dferrors.CodeInputValidation, err, "invalid json schema")
	}

	r.documents.Store(key, s)
	return s, nil
}

func compile(url string, data []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return c.Compile(url)
}

func validate(s *jsonschema.Schema, doc []byte, what string) error {
	// Numbers stay json.Number so integer keywords validate exactly.
	var v any
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return dferrors.Wrapf(dferrors.CodeInputValidation, err, "invalid %s json", what)
	}
	if dec.More() {
		return dferrors.InputValidation("invalid %s json: trailing data", what)
	}

	if err := s.Validate(v); err != nil {
		return dferrors.Wrapf(dferrors.CodeInputValidation, err, "%s does not conform to schema", what)
	}

	return nil
}
