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

package service

import (
	"context"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
)

func (s *service) CreateTestRun(ctx context.Context, json types.RunTestRequest) (*models.TestRun, error) {
	return s.testRuns.RunTest(ctx, json)
}

func (s *service) GetTestRun(ctx context.Context, id string) (*models.TestRun, error) {
	return s.testRuns.GetTestRun(ctx, id)
}

func (s *service) GetTestRuns(ctx context.Context, q types.GetTestRunsQuery) ([]models.TestRun, int64, error) {
	return s.testRuns.ListTestRuns(ctx, q)
}

func (s *service) UpdateTestRun(ctx context.Context, id string, json types.UpdateTestRunRequest) (*models.TestRun, error) {
	return s.testRuns.UpdateTestRun(ctx, id, json)
}

func (s *service) CancelTestRun(ctx context.Context, id string) (*models.TestRun, error) {
	return s.testRuns.CancelTestRun(ctx, id)
}

func (s *service) DestroyTestRun(ctx context.Context, id string) error {
	return s.testRuns.DeleteTestRun(ctx, id)
}

func (s *service) GetTestResult(ctx context.Context, id uint) (*models.TestResult, error) {
	return s.testRuns.GetTestResult(ctx, id)
}

func (s *service) GetTestResults(ctx context.Context, q types.GetTestResultsQuery) ([]models.TestResult, int64, error) {
	return s.testRuns.ListTestResults(ctx, q)
}

func (s *service) UpdateTestResult(ctx context.Context, id uint, json types.UpdateTestResultRequest) (*models.TestResult, error) {
	return s.testRuns.UpdateTestResult(ctx, id, json)
}

func (s *service) DestroyTestResult(ctx context.Context, id uint) error {
	return s.testRuns.DeleteTestResult(ctx, id)
}

func (s *service) GetTestResultArtifact(ctx context.Context, id uint, filename string) (*models.TestArtifact, []byte, error) {
	return s.testRuns.GetTestResultArtifact(ctx, id, filename)
}
