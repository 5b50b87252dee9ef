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

package dferrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect Code
	}{
		{
			name:   "nil error",
			err:    nil,
			expect: CodeUnknown,
		},
		{
			name:   "typed error",
			err:    New(CodeStateConflict, "foo"),
			expect: CodeStateConflict,
		},
		{
			name:   "typed error wrapped by pkg/errors",
			err:    errors.Wrap(New(CodeDependencyInUse, "foo"), "bar"),
			expect: CodeDependencyInUse,
		},
		{
			name:   "wrapped cause keeps outer code",
			err:    Wrap(CodeStoreFailure, New(CodeInputValidation, "inner"), "outer"),
			expect: CodeStoreFailure,
		},
		{
			name:   "gorm record not found",
			err:    errors.Wrap(gorm.ErrRecordNotFound, "find plugin"),
			expect: CodeReferenceNotFound,
		},
		{
			name:   "plain error",
			err:    errors.New("baz"),
			expect: CodeUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, CodeOf(tc.err))
		})
	}
}

func TestDfError_Error(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("[InputValidation]bad gid", InputValidation("bad %s", "gid").Error())
	assert.Equal("[StoreFailure]write: disk full", Wrap(CodeStoreFailure, errors.New("disk full"), "write").Error())
	assert.Nil(Wrap(CodeStoreFailure, nil, "write"))
	assert.Nil(Wrapf(CodeStoreFailure, nil, "write %s", "x"))
	assert.Equal("Code(42)", Code(42).String())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrapf(CodeStoreFailure, cause, "write %s", "plugin")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "write plugin", Message(err))
	assert.Equal(t, "disk full", Message(cause))
}

func TestCheckError(t *testing.T) {
	assert.True(t, CheckError(ReferenceNotFound("x"), CodeReferenceNotFound))
	assert.False(t, CheckError(nil, CodeReferenceNotFound))
	assert.False(t, CheckError(StateConflict("x"), CodeReferenceNotFound))
	assert.True(t, CodeQueueUnavailable.Transient())
	assert.False(t, CodeStateConflict.Transient())
}
