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

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"unicode/utf8"

	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
)

const maxJSONSize = 64 * 1024 * 1024

var (
	hdf5Magic = []byte("\x89HDF\r\n\x1a\n")
	zipMagic  = []byte("PK\x03\x04")

	candidateDelimiters = []rune{',', '\t', ';', '|'}
)

func isJoblib(probe *capability.Probe) bool {
	if probe.IsDir {
		return false
	}

	info, err := probe.Pickle()
	if info == nil {
		return false
	}

	if info.HasModulePrefix("joblib.") {
		return true
	}

	return err == nil && info.Compressed
}

type joblibSerializer struct{}

func (s *joblibSerializer) ID() string {
	return string(capability.SerializerJoblib)
}

func (s *joblibSerializer) Type() capability.PluginType {
	return capability.PluginTypeSerializer
}

func (s *joblibSerializer) Accepts(_ context.Context, probe *capability.Probe) bool {
	return isJoblib(probe)
}

func (s *joblibSerializer) NewSerializer(*capability.Probe) (capability.Serializer, error) {
	return capability.NewSerializerTag(capability.SerializerJoblib), nil
}

type pickleSerializer struct{}

func (s *pickleSerializer) ID() string {
	return string(capability.SerializerPickle)
}

func (s *pickleSerializer) Type() capability.PluginType {
	return capability.PluginTypeSerializer
}

func (s *pickleSerializer) Accepts(_ context.Context, probe *capability.Probe) bool {
	if probe.IsDir || isJoblib(probe) {
		return false
	}

	info, err := probe.Pickle()
	return err == nil && info != nil
}

func (s *pickleSerializer) NewSerializer(*capability.Probe) (capability.Serializer, error) {
	return capability.NewSerializerTag(capability.SerializerPickle), nil
}

type tensorflowSerializer struct{}

func (s *tensorflowSerializer) ID() string {
	return string(capability.SerializerTensorflow)
}

func (s *tensorflowSerializer) Type() capability.PluginType {
	return capability.PluginTypeSerializer
}

func (s *tensorflowSerializer) Accepts(_ context.Context, probe *capability.Probe) bool {
	if probe.IsDir {
		return probe.HasFile("saved_model.pb") || probe.HasFile("saved_model.pbtxt")
	}

	switch probe.Ext() {
	case ".h5", ".hdf5":
		return bytes.HasPrefix(probe.Header(), hdf5Magic)
	case ".keras":
		return bytes.HasPrefix(probe.Header(), zipMagic)
	}

	return false
}

func (s *tensorflowSerializer) NewSerializer(*capability.Probe) (capability.Serializer, error) {
	return capability.NewSerializerTag(capability.SerializerTensorflow), nil
}

type jsonSerializer struct{}

func (s *jsonSerializer) ID() string {
	return string(capability.SerializerJSON)
}

func (s *jsonSerializer) Type() capability.PluginType {
	return capability.PluginTypeSerializer
}

func (s *jsonSerializer) Accepts(_ context.Context, probe *capability.Probe) bool {
	if probe.IsDir || probe.Size > maxJSONSize {
		return false
	}

	head := bytes.TrimLeft(probe.Header(), " \t\r\n")
	if len(head) == 0 || (head[0] != '{' && head[0] != '[') {
		return false
	}

	data, err := os.ReadFile(probe.Path)
	return err == nil && json.Valid(data)
}

func (s *jsonSerializer) NewSerializer(*capability.Probe) (capability.Serializer, error) {
	return capability.NewSerializerTag(capability.SerializerJSON), nil
}

type delimiterSerializer struct{}

func (s *delimiterSerializer) ID() string {
	return string(capability.SerializerDelimiter)
}

func (s *delimiterSerializer) Type() capability.PluginType {
	return capability.PluginTypeSerializer
}

func (s *delimiterSerializer) Accepts(_ context.Context, probe *capability.Probe) bool {
	if probe.IsDir {
		return false
	}

	_, ok := sniffDelimiter(probe.Header())
	return ok
}

func (s *delimiterSerializer) NewSerializer(*capability.Probe) (capability.Serializer, error) {
	return capability.NewSerializerTag(capability.SerializerDelimiter), nil
}

// sniffDelimiter picks the candidate splitting the first line into the most
// fields. Text must be valid UTF-8 and must not look like ARFF.
func sniffDelimiter(header []byte) (rune, bool) {
	if len(header) == 0 || bytes.IndexByte(header, 0) >= 0 {
		return 0, false
	}

	line := header
	if i := bytes.IndexByte(header, '\n'); i >= 0 {
		line = header[:i]
	} else if len(header) == 64*1024 {
		// One huge line is not a table header.
		return 0, false
	}

	line = bytes.TrimRight(line, "\r")
	if !utf8.Valid(line) || len(bytes.TrimSpace(line)) == 0 {
		return 0, false
	}

	trimmed := bytes.TrimSpace(line)
	if trimmed[0] == '@' || trimmed[0] == '%' || trimmed[0] == '{' || trimmed[0] == '[' {
		return 0, false
	}

	best, bestCount := rune(0), 0
	for _, d := range candidateDelimiters {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best, bestCount > 0
}
