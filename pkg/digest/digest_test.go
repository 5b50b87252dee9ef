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

package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestSHA256FromStrings(t *testing.T) {
	assert.Equal(t, helloSHA256, SHA256FromStrings("hello"))
	assert.Equal(t, helloSHA256, SHA256FromStrings("he", "llo"))
	assert.Equal(t, "", SHA256FromStrings())
}

func TestSHA256FromBytes(t *testing.T) {
	assert.Equal(t, helloSHA256, SHA256FromBytes([]byte("hello")))
}

func TestSHA256FromReader(t *testing.T) {
	encoded, err := SHA256FromReader(strings.NewReader("hello"))
	assert.NoError(t, err)
	assert.Equal(t, helloSHA256, encoded)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	encoded, err := HashFile(path)
	assert.NoError(t, err)
	assert.Equal(t, helloSHA256, encoded)

	_, err = HashFile(dir)
	assert.Error(t, err)

	_, err = HashFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		expect func(t *testing.T, encoded string, err error)
	}{
		{
			name:  "bare encoded value",
			value: helloSHA256,
			expect: func(t *testing.T, encoded string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, helloSHA256, encoded)
			},
		},
		{
			name:  "prefixed value",
			value: "sha256:" + helloSHA256,
			expect: func(t *testing.T, encoded string, err error) {
				assert.NoError(t, err)
				assert.Equal(t, helloSHA256, encoded)
			},
		},
		{
			name:  "invalid value",
			value: "sha256:xyz",
			expect: func(t *testing.T, encoded string, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := Parse(tc.value)
			tc.expect(t, encoded, err)
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(helloSHA256, "sha256:"+helloSHA256))
	assert.False(t, Equal(helloSHA256, SHA256FromStrings("world")))
	assert.False(t, Equal("", helloSHA256))
}
