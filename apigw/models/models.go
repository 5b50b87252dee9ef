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
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type BaseModel struct {
	ID        uint      `gorm:"primarykey;comment:id" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;comment:created time" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;comment:updated time" json:"updated_at"`
}

// DefaultPerPage is the page size used when none is requested.
const DefaultPerPage = 10

func Paginate(page, perPage int) func(db *gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}

	if perPage < 1 {
		perPage = DefaultPerPage
	}

	return func(db *gorm.DB) *gorm.DB {
		offset := (page - 1) * perPage
		return db.Offset(offset).Limit(perPage)
	}
}

// Array is a string list stored as a json text column.
type Array []string

func (a Array) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	ba, err := a.MarshalJSON()
	return string(ba), err
}

func (a *Array) Scan(val any) error {
	var ba []byte
	switch v := val.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSON array value:", val))
	}
	t := []string{}
	err := json.Unmarshal(ba, &t)
	*a = Array(t)
	return err
}

func (a Array) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	t := ([]string)(a)
	return json.Marshal(t)
}

func (a *Array) UnmarshalJSON(b []byte) error {
	t := []string{}
	err := json.Unmarshal(b, &t)
	*a = Array(t)
	return err
}

func (Array) GormDataType() string {
	return "array"
}

func (Array) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return "text"
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&Plugin{},
		&Algorithm{},
		&Widget{},
		&InputBlock{},
		&Template{},
		&ProjectTemplate{},
		&TestModel{},
		&TestDataset{},
		&TestRun{},
		&TestResult{},
		&TestArtifact{},
	}
}
