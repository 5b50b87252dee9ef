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

package database

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const (
	sqliteURIPrefix = "sqlite://"

	sqliteMemory = ":memory:"

	// sqlitePragmas keeps concurrent requests from failing on a locked file.
	sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(0)"
)

// newSqlite opens sqlite:///relative/path, sqlite:////absolute/path or sqlite:///:memory:.
func newSqlite(uri string) (gorm.Dialector, error) {
	path, err := SqlitePath(uri)
	if err != nil {
		return nil, err
	}

	if path == sqliteMemory {
		return sqlite.Open("file::memory:?cache=shared"), nil
	}

	if err := fileutils.MkdirAll(filepath.Dir(path)); err != nil {
		return nil, err
	}

	return sqlite.Open(path + sqlitePragmas), nil
}

// SqlitePath returns the file path of a sqlite uri.
func SqlitePath(uri string) (string, error) {
	if !strings.HasPrefix(uri, sqliteURIPrefix+"/") {
		return "", errors.New("sqlite uri must start with sqlite:///")
	}

	path := strings.TrimPrefix(uri, sqliteURIPrefix+"/")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	if path == "" {
		return "", errors.New("sqlite uri requires a path")
	}

	if path == sqliteMemory {
		return path, nil
	}

	return filepath.Clean(filepath.FromSlash(path)), nil
}
