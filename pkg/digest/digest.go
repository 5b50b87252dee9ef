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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"
)

const (
	// AlgorithmSHA256 is the only algorithm used for content addressing.
	AlgorithmSHA256 = digest.SHA256

	readBufferSize = 4 << 20
)

// SHA256FromStrings returns the hex encoded sha256 of the concatenated values.
func SHA256FromStrings(values ...string) string {
	if len(values) == 0 {
		return ""
	}

	digester := AlgorithmSHA256.Digester()
	for _, content := range values {
		if _, err := io.WriteString(digester.Hash(), content); err != nil {
			return ""
		}
	}

	return digester.Digest().Encoded()
}

// SHA256FromBytes returns the hex encoded sha256 of data.
func SHA256FromBytes(data []byte) string {
	return AlgorithmSHA256.FromBytes(data).Encoded()
}

// SHA256FromReader returns the hex encoded sha256 of everything read from reader.
func SHA256FromReader(reader io.Reader) (string, error) {
	d, err := AlgorithmSHA256.FromReader(reader)
	if err != nil {
		return "", err
	}

	return d.Encoded(), nil
}

// HashFile returns the hex encoded sha256 of a regular file.
func HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return SHA256FromReader(bufio.NewReaderSize(f, readBufferSize))
}

// String returns the digest string form "sha256:<encoded>".
func String(encoded string) string {
	return digest.NewDigestFromEncoded(AlgorithmSHA256, encoded).String()
}

// Parse accepts either "sha256:<encoded>" or a bare encoded value and returns the encoded part.
func Parse(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !strings.Contains(value, ":") {
		value = String(value)
	}

	d, err := digest.Parse(value)
	if err != nil {
		return "", err
	}

	if d.Algorithm() != AlgorithmSHA256 {
		return "", fmt.Errorf("unsupported digest algorithm %s", d.Algorithm())
	}

	return d.Encoded(), nil
}

// Equal reports whether two digests in either form name the same content.
func Equal(a, b string) bool {
	ea, err := Parse(a)
	if err != nil {
		return false
	}

	eb, err := Parse(b)
	if err != nil {
		return false
	}

	return ea == eb
}
