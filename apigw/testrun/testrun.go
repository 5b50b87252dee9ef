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

	"gorm.io/gorm"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/job"
	"github.com/aiverify-foundation/aiverify-sub001/internal/schemas"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/retry"
)

const (
	// Backoff of the consumer group creation on startup, in seconds.
	ensureGroupInitBackoff = 0.5
	ensureGroupMaxBackoff  = 5
	ensureGroupMaxAttempts = 5
)

// Orchestrator accepts test runs, queues them for workers and reconciles
// worker updates.
type Orchestrator struct {
	db      *gorm.DB
	queue   job.Queue
	schemas *schemas.Registry
	content *contentstore.Store
}

// New returns an orchestrator.
func New(db *gorm.DB, queue job.Queue, schemas *schemas.Registry, content *contentstore.Store) *Orchestrator {
	return &Orchestrator{
		db:      db,
		queue:   queue,
		schemas: schemas,
		content: content,
	}
}

// Start makes sure the work stream and its consumer group exist.
func (o *Orchestrator) Start(ctx context.Context) error {
	if _, _, err := retry.Run(ctx, ensureGroupInitBackoff, ensureGroupMaxBackoff, ensureGroupMaxAttempts, func() (any, bool, error) {
		if err := o.queue.EnsureGroup(ctx); err != nil {
			logger.Warnf("ensure consumer group failed: %s", err.Error())
			return nil, false, err
		}

		return nil, false, nil
	}); err != nil {
		metrics.QueueFailureCount.WithLabelValues(metrics.OperationPing).Inc()
		return dferrors.Wrap(dferrors.CodeQueueUnavailable, err, "ensure consumer group")
	}

	return nil
}

// GetTestRun returns a test run.
func (o *Orchestrator) GetTestRun(ctx context.Context, id string) (*models.TestRun, error) {
	return getTestRun(o.db.WithContext(ctx), id)
}

// ListTestRuns returns a page of test runs, newest first, and the total count.
func (o *Orchestrator) ListTestRuns(ctx context.Context, q types.GetTestRunsQuery) ([]models.TestRun, int64, error) {
	var count int64
	var testRuns []models.TestRun
	tx := o.db.WithContext(ctx).Model(&models.TestRun{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if q.AlgorithmID != "" {
		tx = tx.Where("algorithm_id = ?", q.AlgorithmID)
	}

	if err := tx.Scopes(models.Paginate(q.Page, q.PerPage)).Order("created_at DESC").Find(&testRuns).Limit(-1).Offset(-1).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	return testRuns, count, nil
}

func getTestRun(tx *gorm.DB, id string) (*models.TestRun, error) {
	testRun := models.TestRun{}
	if err := tx.First(&testRun, "id = ?", id).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("test run %s not found", id)
		}
		return nil, err
	}

	return &testRun, nil
}

func getAlgorithm(tx *gorm.DB, id string) (*models.Algorithm, error) {
	algorithm := models.Algorithm{}
	if err := tx.First(&algorithm, "id = ?", id).Error; err != nil {
		if dferrors.CheckError(err, dferrors.CodeReferenceNotFound) {
			return nil, dferrors.ReferenceNotFound("algorithm %s not found", id)
		}
		return nil, err
	}

	return &algorithm, nil
}

// Ping checks the queue server.
func (o *Orchestrator) Ping(ctx context.Context) error {
	if err := o.queue.Ping(ctx); err != nil {
		metrics.QueueFailureCount.WithLabelValues(metrics.OperationPing).Inc()
		return dferrors.Wrap(dferrors.CodeQueueUnavailable, err, "ping queue")
	}

	return nil
}
