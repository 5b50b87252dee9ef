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

package safe

import (
	"fmt"
	"runtime/debug"

	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
)

// Call runs f and turns a panic into an error.
func Call(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
			logger.Errorf("panic: %v\n%s", r, string(debug.Stack()))
		}
	}()

	f()

	return
}

// CallE runs f and returns its error, or an error describing its panic.
func CallE(f func() error) (err error) {
	if perr := Call(func() { err = f() }); perr != nil {
		return perr
	}

	return err
}
