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
	"compress/zlib"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	// protocol 2, GLOBAL opcode.
	sklearnPickle = "\x80\x02csklearn.tree._classes\nDecisionTreeClassifier\nq\x00)\x81q\x01}q\x02b."

	// protocol 4, SHORT_BINUNICODE + MEMOIZE + STACK_GLOBAL, second global through BINGET.
	pipelinePickle = "\x80\x04\x95\x00\x00\x00\x00\x00\x00\x00\x00" +
		"\x8c\x10sklearn.pipeline\x94\x8c\x08Pipeline\x94\x93\x94)\x81\x94" +
		"h\x00\x8c\x0amake_union\x94\x93\x94."
)

func TestScanPickle(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		expect func(t *testing.T, info *PickleInfo, err error)
	}{
		{
			name: "global opcode",
			data: sklearnPickle,
			expect: func(t *testing.T, info *PickleInfo, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(2, info.Protocol)
				assert.Equal([]string{"sklearn.tree._classes.DecisionTreeClassifier"}, info.Globals)
				assert.True(info.HasModulePrefix("xgboost.", "sklearn."))
				assert.True(info.HasGlobal("sklearn.tree._classes.DecisionTreeClassifier"))
				assert.False(info.HasGlobal("sklearn.tree"))
			},
		},
		{
			name: "stack global with memo",
			data: pipelinePickle,
			expect: func(t *testing.T, info *PickleInfo, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(4, info.Protocol)
				assert.Equal([]string{"sklearn.pipeline.Pipeline", "sklearn.pipeline.make_union"}, info.Globals)
			},
		},
		{
			name: "text protocol",
			data: "(dp0\nS'a'\np1\nI1\ns.",
			expect: func(t *testing.T, info *PickleInfo, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(0, info.Protocol)
				assert.Empty(info.Globals)
			},
		},
		{
			name: "csv is not a pickle",
			data: "a,b,c\n1,2,3\n",
			expect: func(t *testing.T, info *PickleInfo, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Empty(info.Globals)
			},
		},
		{
			name: "truncated stream keeps globals",
			data: "\x80\x02csklearn.tree._classes\nDecisionTreeClassifier\nq\x00\x8e\xff\xff",
			expect: func(t *testing.T, info *PickleInfo, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Equal([]string{"sklearn.tree._classes.DecisionTreeClassifier"}, info.Globals)
			},
		},
		{
			name: "unsupported protocol",
			data: "\x80\x09.",
			expect: func(t *testing.T, info *PickleInfo, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := ScanPickle(bytes.NewReader([]byte(tc.data)))
			tc.expect(t, info, err)
		})
	}
}

func TestProbe_Pickle(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write([]byte(sklearnPickle))
	assert.NoError(t, zw.Close())

	compressed := filepath.Join(dir, "model.joblib")
	assert.NoError(t, os.WriteFile(compressed, buf.Bytes(), 0644))

	plain := filepath.Join(dir, "model.sav")
	assert.NoError(t, os.WriteFile(plain, []byte(sklearnPickle), 0644))

	assert := assert.New(t)
	probe, err := NewProbe(compressed)
	assert.NoError(err)
	assert.True(probe.IsZlib())
	info, err := probe.Pickle()
	assert.NoError(err)
	assert.True(info.Compressed)
	assert.True(info.HasModulePrefix("sklearn."))

	probe, err = NewProbe(plain)
	assert.NoError(err)
	assert.False(probe.IsZlib())
	assert.Equal(".sav", probe.Ext())
	assert.Equal(int64(len(sklearnPickle)), probe.Size)
	info, err = probe.Pickle()
	assert.NoError(err)
	assert.False(info.Compressed)

	probe, err = NewProbe(dir)
	assert.NoError(err)
	assert.True(probe.IsDir)
	assert.True(probe.HasFile("model.sav"))
	assert.False(probe.HasFile("missing"))
	_, err = probe.Pickle()
	assert.Error(err)
}
