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

package testrun

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

const (
	// Worker picked up the run.
	EventStart = "Start"

	// Worker persisted a result.
	EventSucceed = "Succeed"

	// Worker or orchestrator gave up on the run.
	EventFail = "Fail"

	// Operator removed the queued run.
	EventCancel = "Cancel"
)

func newStateMachine(status string) *fsm.FSM {
	return fsm.NewFSM(
		status,
		fsm.Events{
			{Name: EventStart, Src: []string{models.TestRunStatusPending}, Dst: models.TestRunStatusRunning},
			{Name: EventSucceed, Src: []string{models.TestRunStatusRunning}, Dst: models.TestRunStatusSuccess},
			{Name: EventFail, Src: []string{models.TestRunStatusPending, models.TestRunStatusRunning}, Dst: models.TestRunStatusError},
			{Name: EventCancel, Src: []string{models.TestRunStatusPending}, Dst: models.TestRunStatusCancelled},
		},
		fsm.Callbacks{},
	)
}

// IsTerminal reports whether status is a sink.
func IsTerminal(status string) bool {
	switch status {
	case models.TestRunStatusSuccess, models.TestRunStatusError, models.TestRunStatusCancelled:
		return true
	}

	return false
}

// Transition moves a run from current towards target. It returns the new
// status and whether the update should be applied. A repeated terminal status
// and a regression from running to pending are ignored. Success is only
// reachable from running.
func Transition(ctx context.Context, current, target string) (string, bool, error) {
	if current == target {
		return current, !IsTerminal(current), nil
	}

	if IsTerminal(current) {
		return current, false, dferrors.StateConflict("test run is already %s", current)
	}

	if current == models.TestRunStatusRunning && target == models.TestRunStatusPending {
		return current, false, nil
	}

	var events []string
	switch target {
	case models.TestRunStatusRunning:
		events = []string{EventStart}
	case models.TestRunStatusSuccess:
		events = []string{EventSucceed}
	case models.TestRunStatusError:
		events = []string{EventFail}
	case models.TestRunStatusCancelled:
		events = []string{EventCancel}
	default:
		return current, false, dferrors.InputValidation("unknown test run status %q", target)
	}

	f := newStateMachine(current)
	for _, event := range events {
		if !f.Can(event) {
			return current, false, dferrors.StateConflict("test run cannot go from %s to %s", current, target)
		}

		if err := f.Event(ctx, event); err != nil {
			return current, false, dferrors.Wrapf(dferrors.CodeInternalInvariant, err, "test run event %s", event)
		}
	}

	return f.Current(), true, nil
}
