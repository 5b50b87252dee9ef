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

package fileutils

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// zipEpoch is the fixed modification time written into archives so identical
// trees always produce identical bytes.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ZipDir writes a deterministic archive of dir to w. Entry names are
// slash separated and relative to dir; symbolic links are skipped.
func ZipDir(w io.Writer, dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type().IsRegular() {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(files)

	zw := zip.NewWriter(w)
	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:     filepath.ToSlash(rel),
			Method:   zip.Deflate,
			Modified: zipEpoch,
		}
		header.SetMode(0644)

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		if err := copyFileTo(fw, path); err != nil {
			return err
		}
	}

	return zw.Close()
}

// ZipDirBytes returns the deterministic archive of dir.
func ZipDirBytes(dir string) ([]byte, error) {
	var buf bytes.Buffer
	if err := ZipDir(&buf, dir); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unzip extracts the archive at src into dst. Entries escaping dst are refused.
func Unzip(src, dst string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()

	return extract(&zr.Reader, dst)
}

// UnzipBytes extracts an in-memory archive into dst.
func UnzipBytes(data []byte, dst string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	return extract(zr, dst)
}

func extract(zr *zip.Reader, dst string) error {
	if err := MkdirAll(dst); err != nil {
		return err
	}

	for _, f := range zr.File {
		name := strings.TrimPrefix(filepath.FromSlash(f.Name), string(filepath.Separator))
		target, err := Join(dst, name)
		if err != nil {
			return errors.Wrapf(err, "zip entry %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := MkdirAll(target); err != nil {
				return err
			}
			continue
		}

		if !f.Mode().IsRegular() {
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := MkdirAll(filepath.Dir(target)); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func copyFileTo(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
