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
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Code is the kind of a failure surfaced by the core.
type Code int

const (
	CodeUnknown Code = iota
	CodeInputValidation
	CodeReferenceNotFound
	CodeStateConflict
	CodeDependencyInUse
	CodeStoreFailure
	CodeQueueUnavailable
	CodeInternalInvariant
)

var codeNames = map[Code]string{
	CodeUnknown:           "Unknown",
	CodeInputValidation:   "InputValidation",
	CodeReferenceNotFound: "ReferenceNotFound",
	CodeStateConflict:     "StateConflict",
	CodeDependencyInUse:   "DependencyInUse",
	CodeStoreFailure:      "StoreFailure",
	CodeQueueUnavailable:  "QueueUnavailable",
	CodeInternalInvariant: "InternalInvariant",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("Code(%d)", int(c))
}

// Transient reports whether a caller may retry the same request later.
func (c Code) Transient() bool {
	return c == CodeQueueUnavailable
}

type DfError struct {
	Code    Code
	Message string
	cause   error
}

func (e *DfError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s]%s: %v", e.Code, e.Message, e.cause)
	}

	return fmt.Sprintf("[%s]%s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *DfError) Unwrap() error {
	return e.cause
}

func New(code Code, msg string) *DfError {
	return &DfError{
		Code:    code,
		Message: msg,
	}
}

func Newf(code Code, format string, a ...any) *DfError {
	return &DfError{
		Code:    code,
		Message: fmt.Sprintf(format, a...),
	}
}

// Wrap annotates err with a code and message. A nil err yields nil.
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}

	return &DfError{
		Code:    code,
		Message: msg,
		cause:   err,
	}
}

func Wrapf(code Code, err error, format string, a ...any) error {
	if err == nil {
		return nil
	}

	return &DfError{
		Code:    code,
		Message: fmt.Sprintf(format, a...),
		cause:   err,
	}
}

// CodeOf returns the kind of err. Record-not-found errors from gorm are ReferenceNotFound.
func CodeOf(err error) Code {
	if err == nil {
		return CodeUnknown
	}

	var dferr *DfError
	if errors.As(err, &dferr) {
		return dferr.Code
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CodeReferenceNotFound
	}

	return CodeUnknown
}

func CheckError(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Message returns the user facing message of err.
func Message(err error) string {
	var dferr *DfError
	if errors.As(err, &dferr) {
		return dferr.Message
	}

	return err.Error()
}

func InputValidation(format string, a ...any) *DfError {
	return Newf(CodeInputValidation, format, a...)
}

func ReferenceNotFound(format string, a ...any) *DfError {
	return Newf(CodeReferenceNotFound, format, a...)
}

func StateConflict(format string, a ...any) *DfError {
	return Newf(CodeStateConflict, format, a...)
}

func DependencyInUse(format string, a ...any) *DfError {
	return Newf(CodeDependencyInUse, format, a...)
}
