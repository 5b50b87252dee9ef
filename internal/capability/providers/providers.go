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

// Package providers holds the built-in capability providers.
package providers

import (
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
)

// Builtins returns the built-in providers in resolution order.
func Builtins() []capability.Provider {
	return []capability.Provider{
		// Serializers, joblib ahead of pickle since joblib streams are pickles too.
		&joblibSerializer{},
		&pickleSerializer{},
		&tensorflowSerializer{},
		&jsonSerializer{},
		&delimiterSerializer{},

		&delimiterDataProvider{},
		&arffDataProvider{},

		&sklearnPipelineProvider{},

		newSklearnModelProvider(),
		newXGBoostModelProvider(),
		newLightGBMModelProvider(),
		newTensorflowModelProvider(),
	}
}

// RegisterBuiltins registers the built-in providers.
func RegisterBuiltins(r *capability.Registry) error {
	for _, p := range Builtins() {
		if err := r.Register(p); err != nil {
			return err
		}
	}

	return nil
}
