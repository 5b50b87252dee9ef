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
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
)

// CancelTestRun removes a pending run from the queue and marks it cancelled.
func (o *Orchestrator) CancelTestRun(ctx context.Context, id string) (*models.TestRun, error) {
	metrics.TestRunCount.WithLabelValues(metrics.OperationCancel).Inc()
	testRun, err := o.cancelTestRun(ctx, id)
	if err != nil {
		metrics.TestRunFailureCount.WithLabelValues(metrics.OperationCancel).Inc()
		return nil, err
	}

	return testRun, nil
}

func (o *Orchestrator) cancelTestRun(ctx context.Context, id string) (*models.TestRun, error) {
	db := o.db.WithContext(ctx)
	testRun, err := getTestRun(db, id)
	if err != nil {
		return nil, err
	}

	status, apply, err := Transition(ctx, testRun.Status, models.TestRunStatusCancelled)
	if err != nil {
		return nil, err
	}

	// The queue entry of a run is removed only on its way out of pending.
	if !apply || testRun.Status != models.TestRunStatusPending {
		return nil, dferrors.StateConflict("test run is already %s", testRun.Status)
	}

	log := logger.WithTestRunAndJobID(testRun.ID, testRun.JobID)
	if testRun.JobID != "" {
		removed, err := o.queue.Remove(ctx, testRun.JobID)
		if err != nil {
			metrics.QueueFailureCount.WithLabelValues(metrics.OperationCancel).Inc()
			return nil, dferrors.Wrap(dferrors.CodeQueueUnavailable, err, "remove queue entry")
		}

		if !removed {
			log.Warn("queue entry was already gone")
		}
	}

	result := db.Model(&models.TestRun{}).
		Where("id = ? AND status = ?", testRun.ID, models.TestRunStatusPending).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, dferrors.StateConflict("test run %s left pending before it was cancelled", testRun.ID)
	}

	log.Info("test run cancelled")
	return getTestRun(db, testRun.ID)
}

// DeleteTestRun removes a run that is no longer pending together with its
// result and result artifacts.
func (o *Orchestrator) DeleteTestRun(ctx context.Context, id string) error {
	metrics.TestRunCount.WithLabelValues(metrics.OperationDelete).Inc()
	if err := o.deleteTestRun(ctx, id); err != nil {
		metrics.TestRunFailureCount.WithLabelValues(metrics.OperationDelete).Inc()
		return err
	}

	return nil
}

func (o *Orchestrator) deleteTestRun(ctx context.Context, id string) error {
	db := o.db.WithContext(ctx)
	testRun, err := getTestRun(db, id)
	if err != nil {
		return err
	}

	if testRun.Status == models.TestRunStatusPending {
		return dferrors.StateConflict("test run %s is pending, cancel it first", testRun.ID)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if testRun.TestResultID != nil {
			if err := deleteTestResultRows(tx, *testRun.TestResultID); err != nil {
				return err
			}
		}

		result := tx.Where("id = ? AND status <> ?", testRun.ID, models.TestRunStatusPending).Delete(&models.TestRun{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return dferrors.StateConflict("test run %s changed while it was deleted", testRun.ID)
		}

		return nil
	}); err != nil {
		return err
	}

	if testRun.TestResultID != nil {
		o.deleteResultContent(ctx, *testRun.TestResultID)
	}

	logger.WithTestRunID(testRun.ID).Info("test run deleted")
	return nil
}

func deleteTestResultRows(tx *gorm.DB, testResultID uint) error {
	if err := tx.Where("test_result_id = ?", testResultID).Delete(&models.TestArtifact{}).Error; err != nil {
		return err
	}

	return tx.Delete(&models.TestResult{}, testResultID).Error
}

// deleteResultContent removes stored artifacts of a deleted result. Failures
// leave orphan objects only and are logged.
func (o *Orchestrator) deleteResultContent(ctx context.Context, testResultID uint) {
	if err := o.content.DeleteResultArtifacts(ctx, strconv.FormatUint(uint64(testResultID), 10)); err != nil {
		logger.Warnf("delete artifacts of test result %d failed: %s", testResultID, err.Error())
	}
}
