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

//go:generate mockgen -destination mocks/mdx_mock.go -source mdx.go -package mocks

package mdx

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

// Kind selects the compiler entry point.
type Kind int

const (
	// KindDefault compiles widget and input block MDX.
	KindDefault Kind = iota

	// KindSummary compiles input block summary MDX.
	KindSummary
)

func (k Kind) String() string {
	if k == KindSummary {
		return "summary"
	}

	return "default"
}

const (
	// DefaultNpxPath is the binary running the compiler scripts.
	DefaultNpxPath = "node"

	// DefaultTimeout bounds one compilation.
	DefaultTimeout = 2 * time.Minute

	// maxStderr bounds the compiler output kept for error messages.
	maxStderr = 4096
)

// ErrCompile is returned when the compiler exits with a non-zero status
// or writes an invalid bundle.
var ErrCompile = errors.New("mdx compile failed")

// Bundle is a compiled MDX document.
type Bundle struct {
	Code        string         `json:"code"`
	Frontmatter map[string]any `json:"frontmatter"`
}

// Compiler turns an MDX script into a bundle.
type Compiler interface {
	// Compile compiles scriptPath and returns the bundle json.
	Compile(ctx context.Context, scriptPath string, kind Kind) ([]byte, error)
}

// Config is the compiler configuration.
type Config struct {
	// NpxPath is the binary running the compiler scripts.
	NpxPath string

	// CompilerScript compiles widget and input block MDX.
	CompilerScript string

	// SummaryCompilerScript compiles input block summary MDX.
	SummaryCompilerScript string

	// Timeout bounds one compilation.
	Timeout time.Duration
}

type compiler struct {
	config Config
}

// New returns a compiler running cfg.NpxPath on the configured scripts.
func New(cfg Config) Compiler {
	if cfg.NpxPath == "" {
		cfg.NpxPath = DefaultNpxPath
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &compiler{config: cfg}
}

// Compile runs `<npx> <compiler script> <script path> <output path>` and reads the bundle.
func (c *compiler) Compile(ctx context.Context, scriptPath string, kind Kind) ([]byte, error) {
	entry := c.config.CompilerScript
	if kind == KindSummary {
		entry = c.config.SummaryCompilerScript
	}

	if entry == "" {
		return nil, errors.Errorf("no %s mdx compiler configured", kind)
	}

	var bundle []byte
	err := fileutils.WithTempDir("", "mdx-*", func(dir string) error {
		output := filepath.Join(dir, strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))+".bundle.json")

		ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, c.config.NpxPath, entry, scriptPath, output)
		cmd.Stdout = &stderr
		cmd.Stderr = &stderr

		logger.Debugf("compile %s mdx %s", kind, scriptPath)
		if err := cmd.Run(); err != nil {
			return errors.Wrapf(ErrCompile, "%s: %v: %s", filepath.Base(scriptPath), err, truncate(stderr.String()))
		}

		data, err := os.ReadFile(output)
		if err != nil {
			return errors.Wrapf(ErrCompile, "%s: read bundle: %v", filepath.Base(scriptPath), err)
		}

		if _, err := ParseBundle(data); err != nil {
			return errors.Wrapf(ErrCompile, "%s: %v", filepath.Base(scriptPath), err)
		}

		bundle = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	return bundle, nil
}

// ParseBundle decodes a bundle and requires both code and frontmatter.
func ParseBundle(data []byte) (*Bundle, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid bundle json")
	}

	for _, field := range []string{"code", "frontmatter"} {
		if _, ok := raw[field]; !ok {
			return nil, errors.Errorf("bundle is missing %s", field)
		}
	}

	bundle := &Bundle{}
	if err := json.Unmarshal(data, bundle); err != nil {
		return nil, errors.Wrap(err, "invalid bundle json")
	}

	return bundle, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		return s[len(s)-maxStderr:]
	}

	return s
}
