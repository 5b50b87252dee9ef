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
	"compress/zlib"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
)

const (
	sklearnPickle  = "\x80\x02csklearn.tree._classes\nDecisionTreeClassifier\nq\x00)\x81q\x01}q\x02b."
	xgboostPickle  = "\x80\x02cxgboost.sklearn\nXGBClassifier\nq\x00)\x81q\x01}q\x02b."
	lightgbmPickle = "\x80\x02clightgbm.sklearn\nLGBMClassifier\nq\x00)\x81q\x01}q\x02b."
	pipelinePickle = "\x80\x04\x95\x00\x00\x00\x00\x00\x00\x00\x00" +
		"\x8c\x10sklearn.pipeline\x94\x8c\x08Pipeline\x94\x93\x94)\x81\x94."
)

func newRegistry(t *testing.T) *capability.Registry {
	r := capability.New()
	require.NoError(t, RegisterBuiltins(r))
	return r
}

func write(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func deflate(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRegisterBuiltins(t *testing.T) {
	r := newRegistry(t)

	assert := assert.New(t)
	assert.Equal([]string{"joblib", "pickle", "tensorflow", "json", "delimiter"}, r.List(capability.PluginTypeSerializer))
	assert.Equal([]string{"delimiter", "arff"}, r.List(capability.PluginTypeData))
	assert.Equal([]string{"sklearn", "xgboost", "lightgbm", "tensorflow"}, r.List(capability.PluginTypeModel))
	assert.Equal([]string{"sklearn"}, r.List(capability.PluginTypePipeline))
}

func TestSerializers(t *testing.T) {
	dir := t.TempDir()
	savedModel := filepath.Join(dir, "saved")
	write(t, filepath.Join(savedModel, "saved_model.pb"), []byte("pb"))

	tests := []struct {
		name   string
		path   string
		expect capability.SerializerType
	}{
		{
			name:   "pickle",
			path:   write(t, filepath.Join(dir, "model.sav"), []byte(sklearnPickle)),
			expect: capability.SerializerPickle,
		},
		{
			name:   "compressed joblib",
			path:   write(t, filepath.Join(dir, "model.joblib"), deflate(t, sklearnPickle)),
			expect: capability.SerializerJoblib,
		},
		{
			name:   "joblib array wrapper",
			path:   write(t, filepath.Join(dir, "array.joblib"), []byte("\x80\x04cjoblib.numpy_pickle\nNumpyArrayWrapper\nq\x00\x00\x01\x02")),
			expect: capability.SerializerJoblib,
		},
		{
			name:   "json",
			path:   write(t, filepath.Join(dir, "model.json"), []byte(`{"learner": {}}`)),
			expect: capability.SerializerJSON,
		},
		{
			name:   "hdf5",
			path:   write(t, filepath.Join(dir, "model.h5"), append([]byte("\x89HDF\r\n\x1a\n"), 0, 0)),
			expect: capability.SerializerTensorflow,
		},
		{
			name:   "saved model",
			path:   savedModel,
			expect: capability.SerializerTensorflow,
		},
		{
			name:   "tab separated",
			path:   write(t, filepath.Join(dir, "data.tsv"), []byte("a\tb\n1\t2\n")),
			expect: capability.SerializerDelimiter,
		},
	}

	r := newRegistry(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := r.GetSerializer(context.Background(), tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, s.SerializerPluginType())
		})
	}

	_, err := r.GetSerializer(context.Background(), write(t, filepath.Join(dir, "blob.bin"), []byte{0x00, 0x01, 0x02}))
	assert.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		header string
		comma  rune
		ok     bool
	}{
		{header: "a,b,c\n1,2,3\n", comma: ',', ok: true},
		{header: "a;b;c\r\n", comma: ';', ok: true},
		{header: "a|b\n", comma: '|', ok: true},
		{header: "@relation x\n", ok: false},
		{header: "% comment, with comma\n", ok: false},
		{header: "single\n", ok: false},
		{header: "", ok: false},
	}

	for _, tc := range tests {
		comma, ok := sniffDelimiter([]byte(tc.header))
		assert.Equal(t, tc.ok, ok, tc.header)
		if tc.ok {
			assert.Equal(t, tc.comma, comma, tc.header)
		}
	}
}

func TestDelimiterData(t *testing.T) {
	dir := t.TempDir()
	r := newRegistry(t)

	t.Run("valid", func(t *testing.T) {
		path := write(t, filepath.Join(dir, "data.csv"), []byte("age,gender,income,default\n30,m,1.5,true\n41,f,2,false\n,x,3,true\n"))

		assert := assert.New(t)
		data, serializer, err := r.GetData(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(capability.SerializerDelimiter, serializer.SerializerPluginType())
		assert.Equal(capability.DataFormatDelimiter, data.DataPluginType())
		require.NoError(t, data.Setup(context.Background()))

		ok, msg := data.Validate()
		assert.True(ok, msg)
		rows, cols := data.Shape()
		assert.Equal(3, rows)
		assert.Equal(4, cols)

		labels, err := data.ReadLabels()
		assert.NoError(err)
		assert.Equal([]capability.Label{
			{Name: "age", Datatype: DatatypeInt64},
			{Name: "gender", Datatype: DatatypeObject},
			{Name: "income", Datatype: DatatypeFloat64},
			{Name: "default", Datatype: DatatypeBool},
		}, labels)

		data.RemoveGroundTruth("default")
		_, cols = data.Shape()
		assert.Equal(3, cols)
		assert.False(data.KeepGroundTruth("default"))
		assert.True(data.KeepGroundTruth("age"))
		_, cols = data.Shape()
		assert.Equal(1, cols)
	})

	t.Run("ragged rows", func(t *testing.T) {
		path := write(t, filepath.Join(dir, "ragged.csv"), []byte("a,b\n1,2\n3\n"))

		data, _, err := r.GetData(context.Background(), path)
		require.NoError(t, err)
		require.NoError(t, data.Setup(context.Background()))
		ok, msg := data.Validate()
		assert.False(t, ok)
		assert.Contains(t, msg, "row 2")
	})

	t.Run("header only", func(t *testing.T) {
		path := write(t, filepath.Join(dir, "empty.csv"), []byte("a,b\n"))

		data, _, err := r.GetData(context.Background(), path)
		require.NoError(t, err)
		require.NoError(t, data.Setup(context.Background()))
		ok, _ := data.Validate()
		assert.False(t, ok)
	})
}

func TestArffData(t *testing.T) {
	path := write(t, filepath.Join(t.TempDir(), "data.arff"), []byte(`% test data
@relation credit

@attribute age numeric
@attribute income numeric
@attribute label {yes,no}

@data
30,1.5,yes
41,2.0,no
`))

	assert := assert.New(t)
	data, serializer, err := newRegistry(t).GetData(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(serializer)
	assert.Equal(capability.DataFormatArff, data.DataPluginType())
	require.NoError(t, data.Setup(context.Background()))

	ok, msg := data.Validate()
	assert.True(ok, msg)
	rows, cols := data.Shape()
	assert.Equal(2, rows)
	assert.Equal(3, cols)

	labels, err := data.ReadLabels()
	assert.NoError(err)
	assert.Equal(capability.Label{Name: "age", Datatype: DatatypeFloat64}, labels[0])
	assert.Equal(capability.Label{Name: "label", Datatype: DatatypeCategory}, labels[2])
	assert.NotNil(data.Data())
}

func TestArffData_AttributeTypes(t *testing.T) {
	path := write(t, filepath.Join(t.TempDir(), "iris.arff"), []byte("% iris sample\r\n"+
		"@RELATION iris\r\n"+
		"\r\n"+
		"@ATTRIBUTE sepallength NUMERIC\r\n"+
		"@attribute petals integer\r\n"+
		"@attribute petalwidth REAL\r\n"+
		"@ATTRIBUTE class {Iris-setosa,Iris-versicolor}\r\n"+
		"\r\n"+
		"@DATA\r\n"+
		"5.1,4,0.2,Iris-setosa\r\n"+
		"7.0,4,1.4,Iris-versicolor\r\n"+
		"6.4,5,1.5,Iris-versicolor\r\n"))

	assert := assert.New(t)
	data, _, err := newRegistry(t).GetData(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, data.Setup(context.Background()))

	rows, cols := data.Shape()
	assert.Equal(3, rows)
	assert.Equal(4, cols)

	labels, err := data.ReadLabels()
	require.NoError(t, err)
	require.Len(t, labels, 4)
	for _, label := range labels[:3] {
		assert.Equal(DatatypeFloat64, label.Datatype, label.Name)
	}
	assert.Equal(capability.Label{Name: "class", Datatype: DatatypeCategory}, labels[3])
}

func TestArffData_UnsupportedAttribute(t *testing.T) {
	path := write(t, filepath.Join(t.TempDir(), "notes.arff"), []byte(`@relation notes
@attribute note string
@attribute label {a,b}
@data
hello,a
`))

	data, _, err := newRegistry(t).GetData(context.Background(), path)
	require.NoError(t, err)
	assert.Error(t, data.Setup(context.Background()))
}

func TestModels(t *testing.T) {
	dir := t.TempDir()
	savedModel := filepath.Join(dir, "saved")
	write(t, filepath.Join(savedModel, "saved_model.pb"), []byte("pb"))

	tests := []struct {
		name       string
		path       string
		format     capability.ModelFormat
		serializer capability.SerializerType
	}{
		{
			name:       "sklearn pickle",
			path:       write(t, filepath.Join(dir, "model_m.sav"), []byte(sklearnPickle)),
			format:     capability.ModelFormatSklearn,
			serializer: capability.SerializerPickle,
		},
		{
			name:       "sklearn joblib",
			path:       write(t, filepath.Join(dir, "model_m.joblib"), deflate(t, sklearnPickle)),
			format:     capability.ModelFormatSklearn,
			serializer: capability.SerializerJoblib,
		},
		{
			name:       "xgboost pickle",
			path:       write(t, filepath.Join(dir, "xgb.sav"), []byte(xgboostPickle)),
			format:     capability.ModelFormatXGBoost,
			serializer: capability.SerializerPickle,
		},
		{
			name:       "xgboost json",
			path:       write(t, filepath.Join(dir, "xgb.json"), []byte(`{"learner": {"objective": {}}, "version": [1, 7, 6]}`)),
			format:     capability.ModelFormatXGBoost,
			serializer: capability.SerializerJSON,
		},
		{
			name:       "lightgbm pickle",
			path:       write(t, filepath.Join(dir, "lgbm.sav"), []byte(lightgbmPickle)),
			format:     capability.ModelFormatLightGBM,
			serializer: capability.SerializerPickle,
		},
		{
			name:       "lightgbm text",
			path:       write(t, filepath.Join(dir, "lgbm.txt"), []byte("tree\nversion=v3\nnum_class=1\n")),
			format:     capability.ModelFormatLightGBM,
			serializer: capability.SerializerNone,
		},
		{
			name:       "tensorflow saved model",
			path:       savedModel,
			format:     capability.ModelFormatTensorflow,
			serializer: capability.SerializerTensorflow,
		},
	}

	r := newRegistry(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			model, serializer, err := r.GetModel(context.Background(), tc.path)
			require.NoError(t, err)
			assert.Equal(tc.format, model.ModelPluginType())
			if tc.serializer == capability.SerializerNone {
				assert.Nil(serializer)
			} else {
				assert.Equal(tc.serializer, serializer.SerializerPluginType())
			}
			assert.NoError(model.Setup(context.Background()))
			model.Cleanup()
		})
	}

	_, _, err := r.GetModel(context.Background(), write(t, filepath.Join(dir, "plain.json"), []byte(`{"a": 1}`)))
	assert.Error(t, err)
}

func TestPipelines(t *testing.T) {
	dir := t.TempDir()
	file := write(t, filepath.Join(dir, "pipeline.sav"), []byte(pipelinePickle))
	folder := filepath.Join(dir, "pipeline_folder")
	write(t, filepath.Join(folder, "transformers.py"), []byte("class T: pass\n"))
	folderFile := write(t, filepath.Join(folder, "pipe.sav"), []byte(pipelinePickle))
	model := write(t, filepath.Join(dir, "model.sav"), []byte(sklearnPickle))

	r := newRegistry(t)
	ctx := context.Background()

	assert := assert.New(t)
	pipeline, serializer, err := r.GetPipeline(ctx, file)
	require.NoError(t, err)
	assert.Equal(capability.SerializerPickle, serializer.SerializerPluginType())
	assert.NoError(pipeline.Setup(ctx))
	assert.Equal(file, pipeline.Pipeline())

	pipeline, serializer, err = r.GetPipeline(ctx, folder)
	require.NoError(t, err)
	assert.Nil(serializer)
	assert.NoError(pipeline.Setup(ctx))
	assert.Equal(capability.PipelineFormatSklearn, pipeline.PipelinePluginType())
	assert.Equal(folderFile, pipeline.Pipeline())
	pipeline.SetPipeline("loaded")
	assert.Equal("loaded", pipeline.Pipeline())
	pipeline.Cleanup()

	assert.True(r.IsPipeline(ctx, folder))
	assert.False(r.IsPipeline(ctx, model))
}
