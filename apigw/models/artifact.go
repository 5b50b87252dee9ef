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

package models

import (
	"gorm.io/datatypes"
)

// Statuses of an uploaded model or dataset.
const (
	ArtifactStatusPending   = "pending"
	ArtifactStatusValid     = "valid"
	ArtifactStatusInvalid   = "invalid"
	ArtifactStatusCancelled = "cancelled"
)

// SerializerNone is recorded when an artifact needs no serializer.
const SerializerNone = "none"

// Model modes.
const (
	ModelModeUpload = "upload"
	ModelModeAPI    = "api"
)

// File types of an upload.
const (
	FileTypeFile     = "file"
	FileTypeFolder   = "folder"
	FileTypePipeline = "pipeline"
)

type TestModel struct {
	BaseModel
	Name         string `gorm:"column:name;type:varchar(256);not null;comment:name" json:"name"`
	Description  string `gorm:"column:description;type:text;comment:description" json:"description"`
	Mode         string `gorm:"column:mode;type:varchar(16);not null;default:'upload';comment:upload or api" json:"mode"`
	FileType     string `gorm:"column:file_type;type:varchar(16);not null;comment:file folder or pipeline" json:"file_type"`
	ModelType    string `gorm:"column:model_type;type:varchar(32);comment:classification or regression" json:"model_type"`
	ModelFormat  string `gorm:"column:model_format;type:varchar(64);comment:probed format" json:"model_format"`
	Serializer   string `gorm:"column:serializer;type:varchar(64);comment:probed serializer" json:"serializer"`
	Filename     string `gorm:"column:filename;type:varchar(1024);uniqueIndex;not null;comment:stored filename" json:"filename"`
	Size         int64  `gorm:"column:size;comment:byte size" json:"size"`
	ZipHash      string `gorm:"column:zip_hash;type:varchar(128);comment:content hash" json:"zip_hash"`
	Status       string `gorm:"column:status;type:varchar(16);not null;default:'pending';comment:validation status" json:"status"`
	ErrorMessage string `gorm:"column:error_message;type:text;comment:validation error" json:"error_message"`
}

type TestDataset struct {
	BaseModel
	Name         string         `gorm:"column:name;type:varchar(256);not null;comment:name" json:"name"`
	Description  string         `gorm:"column:description;type:text;comment:description" json:"description"`
	FileType     string         `gorm:"column:file_type;type:varchar(16);not null;comment:file or folder" json:"file_type"`
	DataFormat   string         `gorm:"column:data_format;type:varchar(64);comment:probed format" json:"data_format"`
	Serializer   string         `gorm:"column:serializer;type:varchar(64);comment:probed serializer" json:"serializer"`
	Filename     string         `gorm:"column:filename;type:varchar(1024);uniqueIndex;not null;comment:stored filename" json:"filename"`
	Size         int64          `gorm:"column:size;comment:byte size" json:"size"`
	ZipHash      string         `gorm:"column:zip_hash;type:varchar(128);comment:content hash" json:"zip_hash"`
	Status       string         `gorm:"column:status;type:varchar(16);not null;default:'pending';comment:validation status" json:"status"`
	ErrorMessage string         `gorm:"column:error_message;type:text;comment:validation error" json:"error_message"`
	NumRows      int            `gorm:"column:num_rows;comment:number of rows" json:"num_rows"`
	NumCols      int            `gorm:"column:num_cols;comment:number of columns" json:"num_cols"`
	DataColumns  datatypes.JSON `gorm:"column:data_columns;comment:name datatype label" json:"data_columns"`
}
