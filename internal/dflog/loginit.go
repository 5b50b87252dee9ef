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

package logger

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logInitMeta struct {
	fileName             string
	setSugaredLoggerFunc func(*zap.SugaredLogger)
}

// InitApigw initializes loggers of the api gateway.
func InitApigw(verbose, console bool, level zapcore.Level, dir string) error {
	if console {
		return createConsoleLogger(verbose, level)
	}

	logDir := filepath.Join(dir, "apigw")

	var meta = []logInitMeta{
		{
			fileName:             CoreLogFileName,
			setSugaredLoggerFunc: SetCoreLogger,
		},
		{
			fileName:             GinLogFileName,
			setSugaredLoggerFunc: SetGinLogger,
		},
		{
			fileName:             GormLogFileName,
			setSugaredLoggerFunc: SetGormLogger,
		},
		{
			fileName:             JobLogFileName,
			setSugaredLoggerFunc: SetJobLogger,
		},
		{
			fileName:             StoreLogFileName,
			setSugaredLoggerFunc: SetStoreLogger,
		},
	}

	if err := createFileLogger(verbose, level, meta, logDir); err != nil {
		return err
	}

	// The embedded worker writes into the core log.
	SetWorkerLogger(CoreLogger)
	return nil
}

// InitWorker initializes loggers of the reference worker.
func InitWorker(verbose, console bool, level zapcore.Level, dir string) error {
	if console {
		return createConsoleLogger(verbose, level)
	}

	logDir := filepath.Join(dir, "worker")

	var meta = []logInitMeta{
		{
			fileName:             CoreLogFileName,
			setSugaredLoggerFunc: SetCoreLogger,
		},
		{
			fileName:             GormLogFileName,
			setSugaredLoggerFunc: SetGormLogger,
		},
		{
			fileName:             JobLogFileName,
			setSugaredLoggerFunc: SetJobLogger,
		},
		{
			fileName:             StoreLogFileName,
			setSugaredLoggerFunc: SetStoreLogger,
		},
		{
			fileName:             WorkerLogFileName,
			setSugaredLoggerFunc: SetWorkerLogger,
		},
	}

	if err := createFileLogger(verbose, level, meta, logDir); err != nil {
		return err
	}

	SetGinLogger(CoreLogger)
	return nil
}

func createConsoleLogger(verbose bool, level zapcore.Level) error {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	if verbose {
		config.Level.SetLevel(zap.DebugLevel)
	}

	log, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	setAll(log.Sugar())
	resetLevels(config.Level)
	return nil
}

func createFileLogger(verbose bool, level zapcore.Level, meta []logInitMeta, logDir string) error {
	if verbose {
		level = zap.DebugLevel
	}

	resetLevels()
	for _, m := range meta {
		log, atomicLevel := CreateLogger(filepath.Join(logDir, m.fileName), false, level)
		m.setSugaredLoggerFunc(log.Sugar())
		appendLevel(atomicLevel)
	}

	return nil
}
