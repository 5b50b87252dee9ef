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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

func zipPackage(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plugin.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, fileutils.ZipDir(f, dir))
	return path
}

func TestStore_UploadPlugin(t *testing.T) {
	tests := []struct {
		name   string
		layout func(t *testing.T) string
		expect func(t *testing.T, env *testEnv, err error)
	}{
		{
			name: "package at archive root",
			layout: func(t *testing.T) string {
				dir := t.TempDir()
				writePlugin(t, dir, testGID, "1.0.0")
				return zipPackage(t, dir)
			},
			expect: func(t *testing.T, env *testEnv, err error) {
				assert := assert.New(t)
				require.NoError(t, err)

				plugin, err := env.store.GetPlugin(context.Background(), testGID)
				require.NoError(t, err)
				assert.False(plugin.IsStock)
				assert.Len(plugin.Algorithms, 1)
			},
		},
		{
			name: "package in a single folder",
			layout: func(t *testing.T) string {
				dir := t.TempDir()
				writePlugin(t, filepath.Join(dir, "stock-x"), testGID, "1.0.0")
				return zipPackage(t, dir)
			},
			expect: func(t *testing.T, env *testEnv, err error) {
				require.NoError(t, err)
				_, err = env.store.GetPlugin(context.Background(), testGID)
				assert.NoError(t, err)
			},
		},
		{
			name: "package without plugin meta",
			layout: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "README.md"), "# nothing\n")
				return zipPackage(t, dir)
			},
			expect: func(t *testing.T, env *testEnv, err error) {
				assert.Equal(t, dferrors.CodeInputValidation, dferrors.CodeOf(err))
			},
		},
		{
			name: "not an archive",
			layout: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "plugin.zip")
				writeFile(t, path, "plain text")
				return path
			},
			expect: func(t *testing.T, env *testEnv, err error) {
				assert.Equal(t, dferrors.CodeInputValidation, dferrors.CodeOf(err))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.store.UploadPlugin(context.Background(), tc.layout(t))
			tc.expect(t, env, err)
		})
	}
}

func TestStore_Downloads(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	dir := t.TempDir()
	writePlugin(t, dir, testGID, "1.0.0")
	_, err := env.store.InstallPlugin(ctx, dir, false)
	require.NoError(t, err)

	data, err := env.store.GetPluginZip(ctx, testGID)
	require.NoError(t, err)
	assert.NotEmpty(data)

	data, err = env.store.GetAlgorithmZip(ctx, testGID, "algo_a")
	require.NoError(t, err)
	assert.NotEmpty(data)

	data, err = env.store.GetBundle(ctx, testGID, "w1", false)
	require.NoError(t, err)
	assert.Equal(testBundle, string(data))

	data, err = env.store.GetBundle(ctx, testGID, "ib1", true)
	require.NoError(t, err)
	assert.Equal(testBundle, string(data))

	_, err = env.store.GetBundle(ctx, testGID, "w1", true)
	assert.Equal(dferrors.CodeReferenceNotFound, dferrors.CodeOf(err))

	_, err = env.store.GetBundle(ctx, testGID, "missing", false)
	assert.Equal(dferrors.CodeReferenceNotFound, dferrors.CodeOf(err))

	_, err = env.store.GetPluginZip(ctx, "stock.Y")
	assert.Equal(dferrors.CodeReferenceNotFound, dferrors.CodeOf(err))

	_, err = env.store.GetAlgorithmZip(ctx, testGID, "missing")
	assert.Equal(dferrors.CodeReferenceNotFound, dferrors.CodeOf(err))
}
