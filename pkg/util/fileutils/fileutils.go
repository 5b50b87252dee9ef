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
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrPathTraversal is returned when a path escapes its declared base.
	ErrPathTraversal = errors.New("path escapes base directory")

	// ErrInvalidFilename is returned for names that fail the filename rules.
	ErrInvalidFilename = errors.New("invalid filename")

	disallowedFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._/\-]`)
)

// MkdirAll creates path with 0755.
func MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// PathExist reports whether name exists.
func PathExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// IsDir reports whether name is a directory.
func IsDir(name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}

	return info.IsDir()
}

// IsRegularFile reports whether name is a regular file.
func IsRegularFile(name string) bool {
	info, err := os.Stat(name)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// CopyFile copies src to dst, creating parent directories of dst.
func CopyFile(dst string, src string) (written int64, err error) {
	s, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	if err := MkdirAll(filepath.Dir(dst)); err != nil {
		return 0, err
	}

	d, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}()

	return io.Copy(d, s)
}

// CopyDir recursively copies the regular files and directories of src into dst.
// Symbolic links are skipped.
func CopyDir(dst string, src string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return MkdirAll(target)
		case d.Type().IsRegular():
			_, err := CopyFile(target, path)
			return err
		default:
			return nil
		}
	})
}

// IsDescendant reports whether target resolves to a path strictly below base.
func IsDescendant(base, target string) bool {
	absBase, err := resolve(base)
	if err != nil {
		return false
	}

	absTarget, err := resolve(target)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return false
	}

	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// Join joins rel onto base and refuses results escaping base.
func Join(base, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", errors.Wrapf(ErrPathTraversal, "%s is absolute", rel)
	}

	target := filepath.Join(base, rel)
	if !IsDescendant(base, target) {
		return "", errors.Wrapf(ErrPathTraversal, "%s", rel)
	}

	return target, nil
}

// ResolveRegularFile resolves rel under base and accepts it only when it exists,
// is a regular file and base is a proper ancestor of it after resolving links.
func ResolveRegularFile(base, rel string) (string, error) {
	target, err := Join(base, rel)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}

	if !info.Mode().IsRegular() {
		return "", errors.Errorf("%s is not a regular file", rel)
	}

	if !IsDescendant(base, target) {
		return "", errors.Wrapf(ErrPathTraversal, "%s", rel)
	}

	return target, nil
}

// SanitizeFilename strips characters outside [A-Za-z0-9._/-] and validates the result.
func SanitizeFilename(name string) (string, error) {
	sanitized := disallowedFilenameChars.ReplaceAllString(name, "")
	if err := CheckFilename(sanitized); err != nil {
		return "", err
	}

	return sanitized, nil
}

// CheckFilename requires a leading alphanumeric character and no ".." segment.
func CheckFilename(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidFilename, "empty filename")
	}

	if !isAlphanumeric(name[0]) {
		return errors.Wrapf(ErrInvalidFilename, "%q must begin with an alphanumeric character", name)
	}

	for _, segment := range strings.Split(filepath.ToSlash(name), "/") {
		if segment == ".." {
			return errors.Wrapf(ErrInvalidFilename, "%q contains a parent segment", name)
		}
	}

	return nil
}

// WithTempDir creates a temporary directory, passes it to f and removes it on every exit path.
func WithTempDir(parent, pattern string, f func(dir string) error) (err error) {
	if parent != "" {
		if err := MkdirAll(parent); err != nil {
			return err
		}
	}

	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := os.RemoveAll(dir); rerr != nil && err == nil {
			err = rerr
		}
	}()

	return f(dir)
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	// Paths that do not exist yet are compared lexically.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	dir, file := filepath.Split(abs)
	if resolvedDir, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(resolvedDir, file), nil
	}

	return abs, nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
