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

package mdx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	okScript = `#!/bin/sh
printf '{"code":"var Component = () => null;","frontmatter":{"title":"%s"}}' "$(basename "$1")" > "$2"
`
	failScript = `#!/bin/sh
echo "unexpected token at line 3" >&2
exit 1
`
	badBundleScript = `#!/bin/sh
printf '{"code":"x"}' > "$2"
`
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0755))
	return path
}

func TestCompiler_Compile(t *testing.T) {
	dir := t.TempDir()
	mdxPath := filepath.Join(dir, "widget1.mdx")
	require.NoError(t, os.WriteFile(mdxPath, []byte("# hello"), 0644))

	tests := []struct {
		name   string
		config func(dir string) Config
		kind   Kind
		expect func(t *testing.T, data []byte, err error)
	}{
		{
			name: "compile default mdx",
			config: func(dir string) Config {
				return Config{NpxPath: "/bin/sh", CompilerScript: writeScript(t, dir, "compile.sh", okScript)}
			},
			kind: KindDefault,
			expect: func(t *testing.T, data []byte, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				bundle, err := ParseBundle(data)
				assert.NoError(err)
				assert.Equal("widget1.mdx", bundle.Frontmatter["title"])
			},
		},
		{
			name: "compile summary mdx",
			config: func(dir string) Config {
				return Config{NpxPath: "/bin/sh", SummaryCompilerScript: writeScript(t, dir, "summary.sh", okScript)}
			},
			kind: KindSummary,
			expect: func(t *testing.T, data []byte, err error) {
				assert.NoError(t, err)
				assert.NotEmpty(t, data)
			},
		},
		{
			name: "summary compiler missing",
			config: func(dir string) Config {
				return Config{NpxPath: "/bin/sh", CompilerScript: writeScript(t, dir, "compile.sh", okScript)}
			},
			kind: KindSummary,
			expect: func(t *testing.T, data []byte, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "non zero exit",
			config: func(dir string) Config {
				return Config{NpxPath: "/bin/sh", CompilerScript: writeScript(t, dir, "fail.sh", failScript)}
			},
			kind: KindDefault,
			expect: func(t *testing.T, data []byte, err error) {
				assert := assert.New(t)
				assert.True(errors.Is(err, ErrCompile))
				assert.Contains(err.Error(), "unexpected token")
				assert.Nil(data)
			},
		},
		{
			name: "bundle without frontmatter",
			config: func(dir string) Config {
				return Config{NpxPath: "/bin/sh", CompilerScript: writeScript(t, dir, "bad.sh", badBundleScript)}
			},
			kind: KindDefault,
			expect: func(t *testing.T, data []byte, err error) {
				assert.True(t, errors.Is(err, ErrCompile))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New(tc.config(t.TempDir()))
			data, err := c.Compile(context.Background(), mdxPath, tc.kind)
			tc.expect(t, data, err)
		})
	}
}

func TestParseBundle(t *testing.T) {
	_, err := ParseBundle([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseBundle([]byte(`{"frontmatter":{}}`))
	assert.EqualError(t, err, "bundle is missing code")

	bundle, err := ParseBundle([]byte(`{"code":"c","frontmatter":{"a":1}}`))
	assert.NoError(t, err)
	assert.Equal(t, "c", bundle.Code)
}
