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

// Package worker is the reference test worker. It consumes queued test runs,
// executes the algorithm against the stored model and datasets and reports
// progress and results back to the orchestrator.
package worker

import (
	"context"
	"os"
	"time"

	"github.com/Showmax/go-fqdn"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/aiverify-foundation/aiverify-sub001/apigw/models"
	"github.com/aiverify-foundation/aiverify-sub001/apigw/types"
	"github.com/aiverify-foundation/aiverify-sub001/internal/capability"
	"github.com/aiverify-foundation/aiverify-sub001/internal/contentstore"
	logger "github.com/aiverify-foundation/aiverify-sub001/internal/dflog"
	"github.com/aiverify-foundation/aiverify-sub001/internal/job"
)

const (
	// DefaultConcurrency is the number of test runs executed at once.
	DefaultConcurrency = 1

	// DefaultProgressInterval is the minimum interval between progress updates.
	DefaultProgressInterval = time.Second

	// readBackoff is the pause after a failed queue read.
	readBackoff = 2 * time.Second
)

// Reporter receives test run updates.
type Reporter interface {
	UpdateTestRun(context.Context, string, types.UpdateTestRunRequest) (*models.TestRun, error)
}

// Stats is a snapshot of the worker counters.
type Stats struct {
	Running   int32
	Succeeded int64
	Failed    int64
	Skipped   int64
}

type Worker struct {
	queue    job.Queue
	reporter Reporter
	registry *capability.Registry
	content  *contentstore.Store

	consumer         string
	concurrency      int
	progressInterval time.Duration
	workDir          string

	// inflight maps a test run id to the cancel func of its execution.
	inflight cmap.ConcurrentMap[context.CancelFunc]

	running   *atomic.Int32
	succeeded *atomic.Int64
	failed    *atomic.Int64
	skipped   *atomic.Int64
}

// Option is a functional option for worker.
type Option func(w *Worker)

// WithConsumer sets the consumer name within the group.
func WithConsumer(consumer string) Option {
	return func(w *Worker) {
		w.consumer = consumer
	}
}

// WithConcurrency sets the number of test runs executed at once.
func WithConcurrency(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithProgressInterval sets the minimum interval between progress updates.
func WithProgressInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.progressInterval = d
	}
}

// WithWorkDir sets the parent of the per run directories.
func WithWorkDir(dir string) Option {
	return func(w *Worker) {
		w.workDir = dir
	}
}

// New returns a worker.
func New(queue job.Queue, reporter Reporter, registry *capability.Registry, content *contentstore.Store, options ...Option) *Worker {
	w := &Worker{
		queue:            queue,
		reporter:         reporter,
		registry:         registry,
		content:          content,
		concurrency:      DefaultConcurrency,
		progressInterval: DefaultProgressInterval,
		inflight:         cmap.New[context.CancelFunc](),
		running:          atomic.NewInt32(0),
		succeeded:        atomic.NewInt64(0),
		failed:           atomic.NewInt64(0),
		skipped:          atomic.NewInt64(0),
	}

	for _, opt := range options {
		opt(w)
	}

	if w.consumer == "" {
		w.consumer = hostname()
	}

	return w
}

// hostname prefers the fully qualified name so consumers on different hosts
// never share pending entries.
func hostname() string {
	if name, err := fqdn.FqdnHostname(); err == nil {
		return name
	}

	name, _ := os.Hostname()
	return name
}

// Stats returns the worker counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Running:   w.running.Load(),
		Succeeded: w.succeeded.Load(),
		Failed:    w.failed.Load(),
		Skipped:   w.skipped.Load(),
	}
}

// Serve recovers the entries left pending by a previous run of this consumer,
// then consumes new entries until ctx is done.
func (w *Worker) Serve(ctx context.Context) error {
	log := logger.WithConsumer(job.DefaultGroup, w.consumer)
	log.Infof("worker started with concurrency %d", w.concurrency)

	if err := w.recover(ctx); err != nil {
		return err
	}

	if n, err := w.queue.Len(ctx); err == nil {
		log.Infof("%d entries in the work stream", n)
	}

	g := errgroup.Group{}
	g.SetLimit(w.concurrency)
	defer func() {
		if err := g.Wait(); err != nil {
			log.Errorf("worker stopped: %s", err.Error())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Infof("worker stopped: %+v", w.Stats())
			return nil
		default:
		}

		messages, err := w.queue.Read(ctx, w.consumer)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}

			log.Errorf("read queue failed: %s", err.Error())
			select {
			case <-ctx.Done():
			case <-time.After(readBackoff):
			}
			continue
		}

		for _, message := range messages {
			message := message
			g.Go(func() error {
				w.Handle(ctx, message)
				return nil
			})
		}
	}
}

// recover handles the entries delivered to this consumer but never
// acknowledged, walking them once in id order. Entries that stay pending
// after handling are left for the next start.
func (w *Worker) recover(ctx context.Context) error {
	var (
		after     string
		recovered int
	)
	for {
		messages, err := w.queue.ReadPending(ctx, w.consumer, after)
		if err != nil {
			return err
		}

		if len(messages) == 0 {
			if recovered > 0 {
				logger.WorkerLogger.Infof("recovered %d pending entries", recovered)
			}

			return nil
		}

		for _, message := range messages {
			w.Handle(ctx, message)
			after = message.ID
			recovered++
		}
	}
}
