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
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	CoreLogger   *zap.SugaredLogger
	GinLogger    *zap.SugaredLogger
	GormLogger   *zap.SugaredLogger
	JobLogger    *zap.SugaredLogger
	StoreLogger  *zap.SugaredLogger
	WorkerLogger *zap.SugaredLogger

	coreLogLevelEnabler zapcore.LevelEnabler

	levelsMu sync.Mutex
	levels   []zap.AtomicLevel
)

func init() {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	log, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel), zap.AddCallerSkip(1))
	if err == nil {
		setAll(log.Sugar())
	}

	resetLevels(config.Level)
}

// SetLevel updates all log level.
func SetLevel(level zapcore.Level) {
	Infof("change log level to %s", level.String())

	levelsMu.Lock()
	defer levelsMu.Unlock()
	for _, l := range levels {
		l.SetLevel(level)
	}
}

// ParseLevel converts a textual level such as "debug" or "WARNING".
func ParseLevel(text string) (zapcore.Level, error) {
	if text == "warning" || text == "WARNING" {
		text = "warn"
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", text)
	}

	return level, nil
}

func resetLevels(ls ...zap.AtomicLevel) {
	levelsMu.Lock()
	defer levelsMu.Unlock()
	levels = ls
}

func appendLevel(l zap.AtomicLevel) {
	levelsMu.Lock()
	defer levelsMu.Unlock()
	levels = append(levels, l)
}

func setAll(log *zap.SugaredLogger) {
	SetCoreLogger(log)
	SetGinLogger(log)
	SetGormLogger(log)
	SetJobLogger(log)
	SetStoreLogger(log)
	SetWorkerLogger(log)
}

func SetCoreLogger(log *zap.SugaredLogger) {
	CoreLogger = log
	coreLogLevelEnabler = log.Desugar().Core()
}

func SetGinLogger(log *zap.SugaredLogger) {
	GinLogger = log
}

func SetGormLogger(log *zap.SugaredLogger) {
	GormLogger = log
}

func SetJobLogger(log *zap.SugaredLogger) {
	JobLogger = log
}

func SetStoreLogger(log *zap.SugaredLogger) {
	StoreLogger = log
}

func SetWorkerLogger(log *zap.SugaredLogger) {
	WorkerLogger = log
}

type SugaredLoggerOnWith struct {
	withArgs []any
}

func With(args ...any) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: args,
	}
}

func WithTestRunID(testRunID string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"testRunID", testRunID},
	}
}

func WithTestRunAndJobID(testRunID, jobID string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"testRunID", testRunID, "jobID", jobID},
	}
}

func WithPlugin(gid string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"gid", gid},
	}
}

func WithComponent(gid, cid string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"gid", gid, "cid", cid},
	}
}

func WithArtifact(kind, filename string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"artifact", kind, "filename", filename},
	}
}

func WithConsumer(group, consumer string) *SugaredLoggerOnWith {
	return &SugaredLoggerOnWith{
		withArgs: []any{"group", group, "consumer", consumer},
	}
}

func (log *SugaredLoggerOnWith) With(args ...any) *SugaredLoggerOnWith {
	args = append(args, log.withArgs...)
	return &SugaredLoggerOnWith{
		withArgs: args,
	}
}

func (log *SugaredLoggerOnWith) Infof(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.InfoLevel) {
		return
	}
	CoreLogger.Infow(fmt.Sprintf(template, args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Info(args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.InfoLevel) {
		return
	}
	CoreLogger.Infow(fmt.Sprint(args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Warnf(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.WarnLevel) {
		return
	}
	CoreLogger.Warnw(fmt.Sprintf(template, args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Warn(args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.WarnLevel) {
		return
	}
	CoreLogger.Warnw(fmt.Sprint(args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Errorf(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.ErrorLevel) {
		return
	}
	CoreLogger.Errorw(fmt.Sprintf(template, args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Error(args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.ErrorLevel) {
		return
	}
	CoreLogger.Errorw(fmt.Sprint(args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Debugf(template string, args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.DebugLevel) {
		return
	}
	CoreLogger.Debugw(fmt.Sprintf(template, args...), log.withArgs...)
}

func (log *SugaredLoggerOnWith) Debug(args ...any) {
	if !coreLogLevelEnabler.Enabled(zap.DebugLevel) {
		return
	}
	CoreLogger.Debugw(fmt.Sprint(args...), log.withArgs...)
}

func Infof(template string, args ...any) {
	CoreLogger.Infof(template, args...)
}

func Info(args ...any) {
	CoreLogger.Info(args...)
}

func Warnf(template string, args ...any) {
	CoreLogger.Warnf(template, args...)
}

func Warn(args ...any) {
	CoreLogger.Warn(args...)
}

func Errorf(template string, args ...any) {
	CoreLogger.Errorf(template, args...)
}

func Error(args ...any) {
	CoreLogger.Error(args...)
}

func Debugf(template string, args ...any) {
	CoreLogger.Debugf(template, args...)
}

func Debug(args ...any) {
	CoreLogger.Debug(args...)
}

func IsDebug() bool {
	return coreLogLevelEnabler.Enabled(zap.DebugLevel)
}

func Fatalf(template string, args ...any) {
	CoreLogger.Fatalf(template, args...)
}

func Fatal(args ...any) {
	CoreLogger.Fatal(args...)
}
