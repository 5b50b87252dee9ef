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

package database

import (
	"net/url"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newPostgres(uri string) (gorm.Dialector, error) {
	// The driver understands postgres urls directly; only postgresql:// is normalized.
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	u.Scheme = "postgres"

	return postgres.New(postgres.Config{
		DSN:                  u.String(),
		PreferSimpleProtocol: true,
	}), nil
}
