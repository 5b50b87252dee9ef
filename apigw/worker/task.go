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

package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/metrics"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/dferrors"
	"github.com/aiverify-foundation/aiverify-sub001/internal/job"
	"github.com/aiverify-foundation/aiverify-sub001/pkg/util/fileutils"
)

const statusSkipped = "skipped"

// Handle executes one queue entry. The entry is acknowledged once its test run
// reached a state this worker no longer owns.
func (w *Worker) Handle(ctx context.Context, message *job.Message) {
	if message.Deleted() {
		// Cancelled before delivery.
		w.skip(ctx, message.ID)
		return
	}

	if message.Err != nil {
		logger.WorkerLogger.Errorf("drop undecodable entry %s: %s", message.ID, message.Err.Error())
		w.skip(ctx, message.ID)
		return
	}

	task := message.Task
	log := logger.WithTestRunAndJobID(task.ID, message.ID)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !w.inflight.SetIfAbsent(task.ID, cancel) {
		log.Warn("test run is already executing")
		w.skipped.Inc()
		metrics.WorkerTaskCount.WithLabelValues(statusSkipped).Inc()
		return
	}
	defer w.inflight.Remove(task.ID)

	w.running.Inc()
	defer w.running.Dec()

	if w.execute(ctx, runCtx, task, log) {
		w.ack(ctx, message.ID)
	}
}

// Cancel stops the execution of a test run owned by this worker.
func (w *Worker) Cancel(testRunID string) bool {
	cancel, ok := w.inflight.Get(testRunID)
	if !ok {
		return false
	}

	cancel()
	return true
}

// execute runs the task and reports its outcome, returning whether the entry
// can be acknowledged. Reports go through ctx so they survive the
// cancellation of runCtx.
func (w *Worker) execute(ctx, runCtx context.Context, task *job.Task, log *logger.SugaredLoggerOnWith) bool {
	start := time.Now()
	progress := 0
	if _, err := w.reporter.UpdateTestRun(ctx, task.ID, types.UpdateTestRunRequest{
		Status:    models.TestRunStatusRunning,
		Progress:  &progress,
		StartTime: &start,
	}); err != nil {
		return w.settle(task, err, log)
	}

	limiter := rate.NewLimiter(rate.Every(w.progressInterval), 1)
	onProgress := func(percent int) {
		if !limiter.Allow() {
			return
		}

		percent = clamp(percent, 0, 100)
		if _, err := w.reporter.UpdateTestRun(ctx, task.ID, types.UpdateTestRunRequest{
			Status:   models.TestRunStatusRunning,
			Progress: &percent,
		}); err != nil {
			if owned(err) {
				log.Warnf("report progress failed: %s", err.Error())
				return
			}

			log.Infof("test run left the running state, stop: %s", err.Error())
			w.Cancel(task.ID)
		}
	}

	result, artifacts, err := w.run(runCtx, task, onProgress)
	timeTaken := time.Since(start).Seconds()
	if err != nil {
		if ctx.Err() != nil {
			log.Warnf("worker stopping, test run is left pending: %s", err.Error())
			return false
		}

		log.Errorf("test run failed: %s", err.Error())
		message := err.Error()
		if _, rerr := w.reporter.UpdateTestRun(ctx, task.ID, types.UpdateTestRunRequest{
			Status:        models.TestRunStatusError,
			ErrorMessages: &message,
			TimeTaken:     &timeTaken,
		}); rerr != nil {
			return w.settle(task, rerr, log)
		}

		w.failed.Inc()
		metrics.WorkerTaskCount.WithLabelValues(models.TestRunStatusError).Inc()
		return true
	}

	if _, err := w.reporter.UpdateTestRun(ctx, task.ID, types.UpdateTestRunRequest{
		Status:    models.TestRunStatusSuccess,
		StartTime: &start,
		TimeTaken: &timeTaken,
		Output:    result.Output,
		Artifacts: artifacts,
	}); err != nil {
		return w.settle(task, err, log)
	}

	log.Infof("test run succeeded in %.2fs with %d artifacts", timeTaken, len(artifacts))
	w.succeeded.Inc()
	metrics.WorkerTaskCount.WithLabelValues(models.TestRunStatusSuccess).Inc()
	return true
}

// settle handles a rejected report. A test run that is gone or no longer
// running is released; anything else keeps the entry pending for a retry.
func (w *Worker) settle(task *job.Task, err error, log *logger.SugaredLoggerOnWith) bool {
	if owned(err) {
		log.Errorf("report test run failed, entry kept pending: %s", err.Error())
		return false
	}

	log.Infof("test run %s released: %s", task.ID, err.Error())
	w.skipped.Inc()
	metrics.WorkerTaskCount.WithLabelValues(models.TestRunStatusCancelled).Inc()
	return true
}

// owned reports whether err leaves the test run with this worker.
func owned(err error) bool {
	switch dferrors.CodeOf(err) {
	case dferrors.CodeStateConflict, dferrors.CodeReferenceNotFound:
		return false
	default:
		return true
	}
}

// run stages the algorithm and the artifacts of task in a private directory
// and executes the algorithm.
func (w *Worker) run(ctx context.Context, task *job.Task, onProgress func(int)) (*capability.AlgorithmResult, []types.TestArtifactUpload, error) {
	var (
		result    *capability.AlgorithmResult
		artifacts []types.TestArtifactUpload
	)

	err := fileutils.WithTempDir(w.workDir, "run-*", func(dir string) error {
		// The algorithm folder keeps the cid as its name, the layout is located by it.
		algorithmsDir := filepath.Join(dir, "algorithms")
		if err := fileutils.MkdirAll(algorithmsDir); err != nil {
			return err
		}

		algorithmDir, err := fileutils.Join(algorithmsDir, task.AlgorithmCID)
		if err != nil {
			return dferrors.Wrapf(dferrors.CodeInputValidation, err, "algorithm %s", task.AlgorithmCID)
		}

		provider, err := w.fetchAlgorithm(ctx, task, algorithmDir)
		if err != nil {
			return err
		}

		input := &capability.AlgorithmInput{
			ModelType: task.ModelType,
			Args:      task.AlgorithmArgs,
			OutputDir: filepath.Join(dir, "output"),
			Progress:  onProgress,
		}

		if err := w.stageModel(ctx, task, filepath.Join(dir, "model"), input); err != nil {
			return err
		}

		if err := w.stageDatasets(ctx, task, dir, input); err != nil {
			return err
		}

		algorithm, err := provider.NewAlgorithm(input)
		if err != nil {
			return err
		}

		if err := algorithm.Generate(ctx); err != nil {
			return err
		}

		if result, err = algorithm.Results(); err != nil {
			return err
		}

		for _, name := range result.Artifacts {
			path, err := fileutils.ResolveRegularFile(input.OutputDir, name)
			if err != nil {
				return errors.Wrapf(err, "artifact %s", name)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read artifact %s", name)
			}

			artifacts = append(artifacts, types.TestArtifactUpload{
				Filename: filepath.ToSlash(name),
				Data:     data,
			})
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result, artifacts, nil
}

// fetchAlgorithm unpacks the algorithm sub-package and loads a provider
// private to this run, so concurrent runs never share a directory.
func (w *Worker) fetchAlgorithm(ctx context.Context, task *job.Task, dir string) (capability.AlgorithmProvider, error) {
	hash, err := w.content.FetchAlgorithm(ctx, task.AlgorithmGID, task.AlgorithmCID, dir)
	if err != nil {
		return nil, err
	}

	id := capability.AlgorithmID(task.AlgorithmGID, task.AlgorithmCID)
	if task.AlgorithmHash != "" && task.AlgorithmHash != hash {
		return nil, dferrors.StateConflict("algorithm %s changed after the test run was queued", id)
	}

	manifest, err := capability.LoadAlgorithmManifest(task.AlgorithmGID, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "load algorithm %s", id)
	}

	return w.registry.NewAlgorithmProvider(manifest)
}

func (w *Worker) stageModel(ctx context.Context, task *job.Task, dir string, input *capability.AlgorithmInput) error {
	path, err := w.fetchArtifact(ctx, contentstore.ArtifactKindTestModel, task.ModelFile, task.ModelFileHash, dir)
	if err != nil {
		return err
	}
	input.ModelPath = path

	if fileutils.IsDir(path) {
		if pipeline, serializer, err := w.registry.GetPipeline(ctx, path); err == nil {
			input.Pipeline = pipeline
			input.ModelSerializer = serializerType(serializer)
			return nil
		}
	}

	model, serializer, err := w.registry.GetModel(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "model %s", task.ModelFile)
	}

	input.Model = model
	input.ModelSerializer = serializerType(serializer)
	return nil
}

func (w *Worker) stageDatasets(ctx context.Context, task *job.Task, dir string, input *capability.AlgorithmInput) error {
	path, err := w.fetchArtifact(ctx, contentstore.ArtifactKindTestDataset, task.TestDataset, task.TestDatasetHash, filepath.Join(dir, "dataset"))
	if err != nil {
		return err
	}

	data, serializer, err := w.registry.GetData(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "dataset %s", task.TestDataset)
	}

	if err := data.Setup(ctx); err != nil {
		return errors.Wrapf(err, "dataset %s", task.TestDataset)
	}

	input.Data = data
	input.DataPath = path
	input.DataSerializer = serializerType(serializer)
	if task.GroundTruthDataset == "" {
		return nil
	}

	path, err = w.fetchArtifact(ctx, contentstore.ArtifactKindTestDataset, task.GroundTruthDataset, task.GroundTruthDatasetHash, filepath.Join(dir, "ground_truth"))
	if err != nil {
		return err
	}

	groundTruth, serializer, err := w.registry.GetData(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "ground truth dataset %s", task.GroundTruthDataset)
	}

	if err := groundTruth.Setup(ctx); err != nil {
		return errors.Wrapf(err, "ground truth dataset %s", task.GroundTruthDataset)
	}

	if !groundTruth.KeepGroundTruth(task.GroundTruth) {
		return dferrors.InputValidation("ground truth column %s not found in %s", task.GroundTruth, task.GroundTruthDataset)
	}

	input.GroundTruth = groundTruth
	input.GroundTruthPath = path
	input.GroundTruthSerializer = serializerType(serializer)
	input.GroundTruthColumn = task.GroundTruth
	return nil
}

// fetchArtifact copies an artifact into dir and checks it is still the
// content the test run was queued with.
func (w *Worker) fetchArtifact(ctx context.Context, kind contentstore.ArtifactKind, filename, expected, dir string) (string, error) {
	path, hash, err := w.content.FetchTestArtifact(ctx, kind, filename, dir)
	if err != nil {
		return "", err
	}

	if expected != "" && expected != hash {
		return "", dferrors.StateConflict("%s %s changed after the test run was queued", kind, filename)
	}

	return path, nil
}

func (w *Worker) skip(ctx context.Context, id string) {
	w.skipped.Inc()
	metrics.WorkerTaskCount.WithLabelValues(statusSkipped).Inc()
	w.ack(ctx, id)
}

func (w *Worker) ack(ctx context.Context, id string) {
	if err := w.queue.Ack(ctx, id); err != nil {
		metrics.QueueFailureCount.WithLabelValues(metrics.OperationAck).Inc()
		logger.WorkerLogger.Errorf("ack entry %s failed: %s", id, err.Error())
	}
}

func serializerType(s capability.Serializer) capability.SerializerType {
	if s == nil {
		return capability.SerializerNone
	}

	return s.SerializerPluginType()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
