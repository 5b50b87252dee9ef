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

package artifactstore

import (
	"context"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/validator"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

// Store records uploaded models and datasets, probes them and keeps their
// bytes in the content store.
type Store struct {
	db        *gorm.DB
	content   *contentstore.Store
	validator validator.Validator
}

// New returns an artifact store.
func New(db *gorm.DB, content *contentstore.Store, validator validator.Validator) *Store {
	return &Store{
		db:        db,
		content:   content,
		validator: validator,
	}
}

// Upload is a received file or folder waiting to be recorded.
type Upload struct {
	// Filename is the client supplied name, sanitized before use.
	Filename string

	// Path is the local file or folder.
	Path string

	Name        string
	Description string
}

func (u *Upload) filename() (string, error) {
	filename, err := fileutils.SanitizeFilename(filepath.ToSlash(u.Filename))
	if err != nil {
		return "", dferrors.Wrap(dferrors.CodeInputValidation, err, "upload filename")
	}

	return strings.TrimSuffix(filename, "/"), nil
}

func (u *Upload) name(filename string) string {
	if u.Name != "" {
		return u.Name
	}

	return filename
}

func serializerName(s capability.SerializerType) string {
	if s == capability.SerializerNone {
		return models.SerializerNone
	}

	return string(s)
}

func fileType(path string, pipeline bool) string {
	switch {
	case pipeline:
		return models.FileTypePipeline
	case fileutils.IsDir(path):
		return models.FileTypeFolder
	default:
		return models.FileTypeFile
	}
}

// deleteContent removes stored bytes of a deleted artifact. Failures leave
// orphan objects only and are logged.
func (s *Store) deleteContent(ctx context.Context, kind contentstore.ArtifactKind, filename string) {
	if err := s.content.DeleteTestArtifact(ctx, kind, filename); err != nil {
		logger.WithArtifact(string(kind), filename).Warnf("delete stored artifact failed: %s", err.Error())
	}
}
