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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

func TestNew(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	assert.Len(t, r.compiled, len(Names))

	_, err = New(t.TempDir())
	assert.Error(t, err)

	dir := t.TempDir()
	for _, name := range Names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(name)), []byte(`{"type":"object"}`), 0644))
	}
	r, err = New(dir)
	require.NoError(t, err)
	assert.NoError(t, r.Validate(Plugin, []byte(`{}`)))
}

func TestRegistry_Validate(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		schema Name
		doc    string
		expect func(t *testing.T, err error)
	}{
		{
			name:   "valid plugin",
			schema: Plugin,
			doc:    `{"gid":"stock.X","version":"1.0.0","name":"Stock X"}`,
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:   "plugin gid with invalid leading character",
			schema: Plugin,
			doc:    `{"gid":"-x","version":"1.0.0","name":"Stock X"}`,
			expect: func(t *testing.T, err error) {
				assert.True(t, dferrors.CheckError(err, dferrors.CodeInputValidation))
			},
		},
		{
			name:   "plugin missing version",
			schema: Plugin,
			doc:    `{"gid":"x","name":"Stock X"}`,
			expect: func(t *testing.T, err error) {
				assert.True(t, dferrors.CheckError(err, dferrors.CodeInputValidation))
			},
		},
		{
			name:   "algorithm with unknown model type",
			schema: Algorithm,
			doc:    `{"cid":"algo_a","name":"A","modelType":["clustering"],"requireGroundTruth":true}`,
			expect: func(t *testing.T, err error) {
				assert.True(t, dferrors.CheckError(err, dferrors.CodeInputValidation))
			},
		},
		{
			name:   "widget size out of range",
			schema: Widget,
			doc:    `{"cid":"w1","name":"W","widgetSize":{"minW":1,"minH":1,"maxW":13,"maxH":36}}`,
			expect: func(t *testing.T, err error) {
				assert.True(t, dferrors.CheckError(err, dferrors.CodeInputValidation))
			},
		},
		{
			name:   "input block width",
			schema: InputBlock,
			doc:    `{"cid":"ib","name":"IB","width":"lg","fullScreen":true}`,
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:   "template data without pages",
			schema: TemplateData,
			doc:    `{"globalVars":[]}`,
			expect: func(t *testing.T, err error) {
				assert.True(t, dferrors.CheckError(err, dferrors.CodeInputValidation))
			},
		},
		{
			name:   "widget size at upper bound",
			schema: Widget,
			doc:    `{"cid":"w1","name":"W","widgetSize":{"minW":1,"minH":1,"maxW":12,"maxH":36}}`,
			expect: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:   "trailing data after document",
			schema: Plugin,
			doc:    `{"gid":"x","version":"1.0.0","name":"X"} {}`,
			expect: func(t *testing.T, err error) {
				assert.True(t, dferrors.CheckError(err, dferrors.CodeInputValidation))
			},
		},
		{
			name:   "malformed json",
			schema: Template,
			doc:    `{"cid":`,
			expect: func(t *testing.T, err error) {
				assert.True(t, dferrors.CheckError(err, dferrors.CodeInputValidation))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, r.Validate(tc.schema, []byte(tc.doc)))
		})
	}
}

func TestRegistry_ValidateWith(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	assert := assert.New(t)

	schema := []byte(`{"type":"object","properties":{"n":{"type":"integer","minimum":1}},"required":["n"]}`)
	assert.NoError(r.ValidateWith(schema, []byte(`{"n":3}`)))
	assert.True(dferrors.CheckError(r.ValidateWith(schema, []byte(`{"n":0}`)), dferrors.CodeInputValidation))
	assert.True(dferrors.CheckError(r.ValidateWith(schema, []byte(`{}`)), dferrors.CodeInputValidation))

	assert.NoError(r.ValidateWith(nil, []byte(`{"anything":true}`)))

	assert.True(dferrors.CheckError(r.CheckSchema([]byte(`{"type":"nope"}`)), dferrors.CodeInputValidation))
	assert.NoError(r.CheckSchema(schema))
}
