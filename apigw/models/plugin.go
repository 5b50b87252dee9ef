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
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Model types an algorithm may support.
const (
	ModelTypeClassification = "classification"
	ModelTypeRegression     = "regression"
	ModelTypeUplift         = "uplift"
)

// ModelTypes is the allowed model type tag set.
var ModelTypes = []string{ModelTypeClassification, ModelTypeRegression, ModelTypeUplift}

type Plugin struct {
	GID         string         `gorm:"column:gid;type:varchar(128);primaryKey;comment:global id" json:"gid"`
	Version     string         `gorm:"column:version;type:varchar(256);not null;comment:version" json:"version"`
	Name        string         `gorm:"column:name;type:varchar(128);not null;comment:name" json:"name"`
	Author      string         `gorm:"column:author;type:varchar(128);comment:author" json:"author"`
	Description string         `gorm:"column:description;type:text;comment:description" json:"description"`
	URL         string         `gorm:"column:url;type:varchar(2048);comment:project url" json:"url"`
	MetaJSON    datatypes.JSON `gorm:"column:meta;comment:plugin meta document" json:"meta"`
	IsStock     bool           `gorm:"column:is_stock;not null;default:false;comment:built-in plugin" json:"is_stock"`
	ZipHash     string         `gorm:"column:zip_hash;type:varchar(128);comment:package hash" json:"zip_hash"`
	CreatedAt   time.Time      `gorm:"column:created_at;comment:created time" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;comment:updated time" json:"updated_at"`
	Algorithms  []Algorithm    `gorm:"foreignKey:GID;references:GID" json:"algorithms"`
	Widgets     []Widget       `gorm:"foreignKey:GID;references:GID" json:"widgets"`
	InputBlocks []InputBlock   `gorm:"foreignKey:GID;references:GID" json:"input_blocks"`
	Templates   []Template     `gorm:"foreignKey:GID;references:GID" json:"templates"`
}

// Component is the record shared by every plugin component. ID is gid:cid,
// so it also keeps (gid, cid) unique.
type Component struct {
	ID          string         `gorm:"column:id;type:varchar(257);primaryKey;comment:gid:cid" json:"id"`
	GID         string         `gorm:"column:gid;type:varchar(128);index;not null;comment:plugin gid" json:"gid"`
	CID         string         `gorm:"column:cid;type:varchar(128);not null;comment:component id" json:"cid"`
	Name        string         `gorm:"column:name;type:varchar(128);not null;comment:name" json:"name"`
	Version     string         `gorm:"column:version;type:varchar(256);comment:version" json:"version"`
	Author      string         `gorm:"column:author;type:varchar(128);comment:author" json:"author"`
	Description string         `gorm:"column:description;type:text;comment:description" json:"description"`
	Tags        Array          `gorm:"column:tags;comment:tags" json:"tags"`
	MetaJSON    datatypes.JSON `gorm:"column:meta;comment:component meta document" json:"meta"`
	CreatedAt   time.Time      `gorm:"column:created_at;comment:created time" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;comment:updated time" json:"updated_at"`
}

// MaxIDLength bounds a gid or cid.
const MaxIDLength = 128

var idRegexp = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-._]*$`)

// IsValidID reports whether id is a well formed gid or cid.
func IsValidID(id string) bool {
	return len(id) > 0 && len(id) <= MaxIDLength && idRegexp.MatchString(id)
}

// ComponentID joins a plugin gid and a component cid.
func ComponentID(gid, cid string) string {
	return gid + ":" + cid
}

type Algorithm struct {
	Component          `gorm:"embedded"`
	ModelType          string `gorm:"column:model_type;type:varchar(128);not null;comment:comma joined model types" json:"model_type"`
	RequireGroundTruth bool   `gorm:"column:require_ground_truth;not null;default:false;comment:requires ground truth" json:"require_ground_truth"`
	InputSchema        []byte `gorm:"column:input_schema;comment:input json schema" json:"input_schema"`
	OutputSchema       []byte `gorm:"column:output_schema;comment:output json schema" json:"output_schema"`
	AlgoDir            string `gorm:"column:algo_dir;type:varchar(1024);comment:relative algorithm folder" json:"algo_dir"`
	Language           string `gorm:"column:language;type:varchar(32);not null;default:'python';comment:language" json:"language"`
	Script             string `gorm:"column:script;type:varchar(1024);comment:entrypoint" json:"script"`
	ModuleName         string `gorm:"column:module_name;type:varchar(256);comment:module name" json:"module_name"`
	ZipHash            string `gorm:"column:zip_hash;type:varchar(128);comment:sub package hash" json:"zip_hash"`
}

// ModelTypes splits the comma joined model types.
func (a *Algorithm) ModelTypes() []string {
	if a.ModelType == "" {
		return nil
	}

	return strings.Split(a.ModelType, ",")
}

// SupportsModelType reports whether the algorithm accepts modelType.
func (a *Algorithm) SupportsModelType(modelType string) bool {
	for _, t := range a.ModelTypes() {
		if strings.EqualFold(t, modelType) {
			return true
		}
	}

	return false
}

type Widget struct {
	Component     `gorm:"embedded"`
	WidgetSize    datatypes.JSON `gorm:"column:widget_size;comment:minW minH maxW maxH" json:"widget_size"`
	Properties    datatypes.JSON `gorm:"column:properties;comment:ordered properties" json:"properties"`
	MockData      datatypes.JSON `gorm:"column:mock_data;comment:mock data" json:"mock_data"`
	Dependencies  datatypes.JSON `gorm:"column:dependencies;comment:dependencies" json:"dependencies"`
	DynamicHeight bool           `gorm:"column:dynamic_height;not null;default:false;comment:dynamic height" json:"dynamic_height"`
}

// Input block widths.
const (
	InputBlockWidthXS = "xs"
	InputBlockWidthSM = "sm"
	InputBlockWidthMD = "md"
	InputBlockWidthLG = "lg"
	InputBlockWidthXL = "xl"
)

type InputBlock struct {
	Component   `gorm:"embedded"`
	Group       *string `gorm:"column:group_name;type:varchar(128);comment:group" json:"group"`
	GroupNumber *int    `gorm:"column:group_number;comment:group number" json:"group_number"`
	Width       string  `gorm:"column:width;type:varchar(8);not null;default:'md';comment:dialog width" json:"width"`
	FullScreen  bool    `gorm:"column:full_screen;not null;default:false;comment:fullscreen dialog" json:"full_screen"`
}

type Template struct {
	Component    `gorm:"embedded"`
	TemplateData datatypes.JSON `gorm:"column:template_data;comment:canvas data" json:"template_data"`
}

// ProjectTemplate is a report template. Rows copied from a plugin template
// carry TemplateID gid:cid; user created rows leave it null.
type ProjectTemplate struct {
	BaseModel
	Name        string         `gorm:"column:name;type:varchar(256);not null;comment:name" json:"name"`
	Description string         `gorm:"column:description;type:text;comment:description" json:"description"`
	TemplateID  *string        `gorm:"column:template_id;type:varchar(257);index;comment:plugin template id" json:"template_id"`
	Data        datatypes.JSON `gorm:"column:data;comment:canvas data" json:"data"`
}

// FromPlugin reports whether the row was derived from a plugin template.
func (p *ProjectTemplate) FromPlugin() bool {
	return p.TemplateID != nil && len(*p.TemplateID) > 0
}
