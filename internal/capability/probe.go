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
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const (
	// headerSize is the number of leading bytes probes may inspect.
	headerSize = 64 * 1024

	// maxPickleSize bounds the bytes scanned for pickle globals.
	maxPickleSize = 256 * 1024 * 1024
)

var zlibMagic = [][]byte{{0x78, 0x01}, {0x78, 0x5e}, {0x78, 0x9c}, {0x78, 0xda}}

// Probe is the shared, lazily computed view of an artifact offered to accepts probes.
type Probe struct {
	// Path is the artifact path.
	Path string

	// IsDir reports whether the artifact is a folder.
	IsDir bool

	// Size is the file size, zero for folders.
	Size int64

	header []byte

	pickleOnce sync.Once
	pickle     *PickleInfo
	pickleErr  error
}

// NewProbe stats path and reads its header.
func NewProbe(path string) (*Probe, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	p := &Probe{Path: path, IsDir: info.IsDir()}
	if p.IsDir {
		return p, nil
	}

	p.Size = info.Size()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p.header, err = io.ReadAll(io.LimitReader(f, headerSize))
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Header returns the leading bytes of a file.
func (p *Probe) Header() []byte {
	return p.header
}

// Ext returns the lower case file extension.
func (p *Probe) Ext() string {
	return lowerASCII(filepath.Ext(p.Path))
}

// HasFile reports whether a folder artifact contains the relative file name.
func (p *Probe) HasFile(name string) bool {
	if !p.IsDir {
		return false
	}

	info, err := os.Stat(filepath.Join(p.Path, name))
	return err == nil && info.Mode().IsRegular()
}

// IsZlib reports whether the file starts with a zlib stream header.
func (p *Probe) IsZlib() bool {
	for _, magic := range zlibMagic {
		if bytes.HasPrefix(p.header, magic) {
			return true
		}
	}

	return false
}

// Pickle scans the file as a pickle stream, inflating zlib compressed files first.
// The result is computed once.
func (p *Probe) Pickle() (*PickleInfo, error) {
	p.pickleOnce.Do(func() {
		if p.IsDir {
			p.pickleErr = errors.New("folder is not a pickle stream")
			return
		}

		f, err := os.Open(p.Path)
		if err != nil {
			p.pickleErr = err
			return
		}
		defer f.Close()

		var r io.Reader = f
		compressed := p.IsZlib()
		if compressed {
			zr, err := zlib.NewReader(f)
			if err != nil {
				p.pickleErr = err
				return
			}
			defer zr.Close()
			r = zr
		}

		p.pickle, p.pickleErr = ScanPickle(io.LimitReader(r, maxPickleSize))
		if p.pickle != nil {
			p.pickle.Compressed = compressed
		}
	})

	return p.pickle, p.pickleErr
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}

	return string(b)
}
