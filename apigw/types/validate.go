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

package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const (
	// IDTag validates a plugin gid or component cid.
	IDTag = "aiverify_id"

	// FilenameTag validates an uploaded or emitted filename.
	FilenameTag = "aiverify_filename"
)

// RegisterValidations registers the custom binding tags on v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation(IDTag, validateID); err != nil {
		return err
	}

	return v.RegisterValidation(FilenameTag, validateFilename)
}

func validateID(fl validator.FieldLevel) bool {
	return models.IsValidID(fl.Field().String())
}

func validateFilename(fl validator.FieldLevel) bool {
	return fileutils.CheckFilename(fl.Field().String()) == nil
}
