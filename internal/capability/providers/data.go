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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"

	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/safe"
)

// Column data types reported by the built-in data providers.
const (
	DatatypeInt64    = "int64"
	DatatypeFloat64  = "float64"
	DatatypeBool     = "bool"
	DatatypeObject   = "object"
	DatatypeCategory = "category"
)

// table is the columnar view shared by built-in datasets.
type table struct {
	labels []capability.Label
	rows   int
	data   any
}

func (t *table) ReadLabels() ([]capability.Label, error) {
	if t.labels == nil {
		return nil, errors.New("dataset is not set up")
	}

	return t.labels, nil
}

func (t *table) Shape() (int, int) {
	return t.rows, len(t.labels)
}

func (t *table) KeepGroundTruth(column string) bool {
	for _, l := range t.labels {
		if l.Name == column {
			t.labels = []capability.Label{l}
			return true
		}
	}

	return false
}

func (t *table) RemoveGroundTruth(column string) {
	out := t.labels[:0:0]
	for _, l := range t.labels {
		if l.Name != column {
			out = append(out, l)
		}
	}
	t.labels = out
}

func (t *table) Data() any {
	return t.data
}

func (t *table) SetData(data any) {
	t.data = data
}

type delimiterDataProvider struct{}

func (p *delimiterDataProvider) ID() string {
	return string(capability.DataFormatDelimiter)
}

func (p *delimiterDataProvider) Type() capability.PluginType {
	return capability.PluginTypeData
}

func (p *delimiterDataProvider) Accepts(_ context.Context, probe *capability.Probe, serializer capability.SerializerType) bool {
	if probe.IsDir {
		return false
	}

	if serializer != capability.SerializerDelimiter && serializer != capability.SerializerNone {
		return false
	}

	_, ok := sniffDelimiter(probe.Header())
	return ok
}

func (p *delimiterDataProvider) NewData(probe *capability.Probe, _ capability.SerializerType) (capability.Data, error) {
	comma, ok := sniffDelimiter(probe.Header())
	if !ok {
		return nil, errors.Errorf("%s is not delimited text", probe.Path)
	}

	return &delimiterData{path: probe.Path, comma: comma}, nil
}

// delimiterData is a delimited text table with a header row.
type delimiterData struct {
	table
	path    string
	comma   rune
	invalid string
}

func (d *delimiterData) Setup(ctx context.Context) error {
	f, err := os.Open(d.path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := gocsv.LazyCSVReader(f)
	if r, ok := reader.(*csv.Reader); ok {
		r.Comma = d.comma
		r.FieldsPerRecord = -1
		r.ReuseRecord = true
	}

	header, err := reader.Read()
	if err != nil {
		return errors.Wrap(err, "read header")
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	kinds := make([]columnKind, len(names))
	rows := 0
	for {
		if rows%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "read row %d", rows+1)
		}

		if len(record) != len(names) {
			if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
				continue
			}

			if d.invalid == "" {
				d.invalid = fmt.Sprintf("row %d has %d fields, expected %d", rows+1, len(record), len(names))
			}
		}

		for i := 0; i < len(names) && i < len(record); i++ {
			kinds[i] = kinds[i].observe(record[i])
		}
		rows++
	}

	labels := make([]capability.Label, len(names))
	for i, name := range names {
		labels[i] = capability.Label{Name: name, Datatype: kinds[i].datatype()}
	}

	d.labels = labels
	d.rows = rows
	d.data = d.path
	return nil
}

func (d *delimiterData) Validate() (bool, string) {
	if d.labels == nil {
		return false, "dataset is not set up"
	}

	for i, l := range d.labels {
		if l.Name == "" {
			return false, fmt.Sprintf("column %d has no name", i+1)
		}
	}

	if d.invalid != "" {
		return false, d.invalid
	}

	if d.rows == 0 {
		return false, "dataset has no rows"
	}

	return true, ""
}

func (d *delimiterData) DataPluginType() capability.DataFormat {
	return capability.DataFormatDelimiter
}

// columnKind is the narrowest type seen so far in a column.
type columnKind int

const (
	kindUnknown columnKind = iota
	kindBool
	kindInt
	kindFloat
	kindObject
)

func (k columnKind) observe(value string) columnKind {
	value = strings.TrimSpace(value)
	if value == "" || k == kindObject {
		return k
	}

	var v columnKind
	switch {
	case isBool(value):
		v = kindBool
	case isInt(value):
		v = kindInt
	case isFloat(value):
		v = kindFloat
	default:
		return kindObject
	}

	switch {
	case k == kindUnknown || k == v:
		return v
	case k == kindBool || v == kindBool:
		return kindObject
	case k > v:
		return k
	default:
		return v
	}
}

func (k columnKind) datatype() string {
	switch k {
	case kindBool:
		return DatatypeBool
	case kindInt:
		return DatatypeInt64
	case kindFloat:
		return DatatypeFloat64
	default:
		return DatatypeObject
	}
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}

	return false
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

type arffDataProvider struct{}

func (p *arffDataProvider) ID() string {
	return string(capability.DataFormatArff)
}

func (p *arffDataProvider) Type() capability.PluginType {
	return capability.PluginTypeData
}

func (p *arffDataProvider) Accepts(_ context.Context, probe *capability.Probe, serializer capability.SerializerType) bool {
	if probe.IsDir || serializer != capability.SerializerNone {
		return false
	}

	return probe.Ext() == ".arff" || hasArffRelation(probe.Header())
}

func (p *arffDataProvider) NewData(probe *capability.Probe, _ capability.SerializerType) (capability.Data, error) {
	return &arffData{path: probe.Path}, nil
}

// hasArffRelation reports whether the first statement is an @relation line.
func hasArffRelation(header []byte) bool {
	for _, line := range strings.Split(string(header), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		return strings.HasPrefix(strings.ToLower(line), "@relation")
	}

	return false
}

// arffData is an ARFF dataset loaded into golearn instances.
type arffData struct {
	table
	path string
}

func (d *arffData) Setup(context.Context) error {
	path, cleanup, err := normalizeArff(d.path)
	if err != nil {
		return errors.Wrap(err, "read arff")
	}
	defer cleanup()

	var instances *base.DenseInstances
	err = safe.CallE(func() error {
		var err error
		instances, err = base.ParseDenseARFFToInstances(path)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "parse arff")
	}

	attrs := instances.AllAttributes()
	labels := make([]capability.Label, 0, len(attrs))
	for _, attr := range attrs {
		labels = append(labels, capability.Label{Name: attr.GetName(), Datatype: arffDatatype(attr)})
	}

	_, rows := instances.Size()
	d.labels = labels
	d.rows = rows
	d.data = instances
	return nil
}

func (d *arffData) Validate() (bool, string) {
	if d.labels == nil {
		return false, "dataset is not set up"
	}

	if len(d.labels) == 0 {
		return false, "dataset has no attributes"
	}

	if d.rows == 0 {
		return false, "dataset has no rows"
	}

	return true, ""
}

func (d *arffData) DataPluginType() capability.DataFormat {
	return capability.DataFormatArff
}

// normalizeArff writes a copy of the file at path that golearn can parse.
// Keywords are lowered and the numeric and integer attribute types become
// real, the only numeric type golearn knows.
func normalizeArff(path string) (string, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = normalizeArffLine(line)
	}

	f, err := os.CreateTemp("", "aiverify-*.arff")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := f.WriteString(strings.Join(lines, "\n")); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}

	return f.Name(), cleanup, nil
}

func normalizeArffLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "@") {
		return strings.TrimRight(line, "\r")
	}

	fields := strings.Fields(trimmed)
	keyword := strings.ToLower(fields[0])
	if keyword == "@attribute" && len(fields) == 3 {
		switch strings.ToLower(fields[2]) {
		case "numeric", "integer", "real":
			return strings.Join([]string{keyword, fields[1], "real"}, " ")
		}
	}

	return keyword + trimmed[len(fields[0]):]
}

func arffDatatype(attr base.Attribute) string {
	switch attr.(type) {
	case *base.FloatAttribute:
		return DatatypeFloat64
	case *base.CategoricalAttribute:
		return DatatypeCategory
	case *base.BinaryAttribute:
		return DatatypeBool
	default:
		return DatatypeObject
	}
}
