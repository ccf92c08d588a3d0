// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZap(t *testing.T) {
	t.Run("With unknown level falls back to debug", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(7, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())

		logger.Debug("test debug")
		flushLogger(t, logger)

		msg, err := extractMessage(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, "test debug", msg)

		lvl, err := extractLevel(buffer.Bytes())
		require.NoError(t, err)
		require.Equal(t, DebugLevel.String(), lvl)
	})
	t.Run("Without writers defaults to stdout", func(t *testing.T) {
		logger := NewZap(InfoLevel)
		require.Equal(t, []io.Writer{os.Stdout}, logger.LogOutput())
		require.NoError(t, logger.Flush())
	})
}

func TestLevels(t *testing.T) {
	testCases := []struct {
		name  string
		level Level
		log   func(Logger)
		want  string
	}{
		{"Info", InfoLevel, func(l Logger) { l.Info("hello") }, "hello"},
		{"Infof", InfoLevel, func(l Logger) { l.Infof("hello %s", "actor") }, "hello actor"},
		{"Warn", WarningLevel, func(l Logger) { l.Warn("careful") }, "careful"},
		{"Warnf", WarningLevel, func(l Logger) { l.Warnf("careful %d", 1) }, "careful 1"},
		{"Error", ErrorLevel, func(l Logger) { l.Error("boom") }, "boom"},
		{"Errorf", ErrorLevel, func(l Logger) { l.Errorf("boom %v", true) }, "boom true"},
		{"Debugf", DebugLevel, func(l Logger) { l.Debugf("trace %s", "me") }, "trace me"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buffer := new(bytes.Buffer)
			logger := NewZap(tc.level, buffer)
			require.Equal(t, tc.level, logger.LogLevel())

			tc.log(logger)
			flushLogger(t, logger)

			msg, err := extractMessage(buffer.Bytes())
			require.NoError(t, err)
			assert.Equal(t, tc.want, msg)

			lvl, err := extractLevel(buffer.Bytes())
			require.NoError(t, err)
			assert.Equal(t, tc.level.String(), lvl)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(ErrorLevel, buffer)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("dropped")
	flushLogger(t, logger)
	require.Empty(t, buffer.String())

	assert.False(t, logger.Enabled(InfoLevel))
	assert.True(t, logger.Enabled(ErrorLevel))
	assert.True(t, logger.Enabled(PanicLevel))
}

func TestWith(t *testing.T) {
	t.Run("Adds structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("actor", "counter", "attempts", 3, "cause", errors.New("oops")).Info("started")
		flushLogger(t, logger)

		fields := decode(t, buffer.Bytes())
		assert.Equal(t, "started", fields["msg"])
		assert.Equal(t, "counter", fields["actor"])
		assert.EqualValues(t, 3, fields["attempts"])
		assert.Equal(t, "oops", fields["cause"])
	})
	t.Run("Returns the same logger without fields", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer))
		assert.Equal(t, Logger(logger), logger.With())
		assert.Equal(t, Logger(logger), logger.With(1, "x"))
	})
	t.Run("Records an orphan value under underscore", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("a", 1, "orphan").Info("msg")
		flushLogger(t, logger)

		fields := decode(t, buffer.Bytes())
		assert.Contains(t, fields, "a")
		assert.Equal(t, "orphan", fields["_"])
	})
	t.Run("Skips non string keys", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		sub := logger.With(42, "ignored", "k", "v")
		sub.Info("msg")
		require.NoError(t, sub.Flush())

		fields := decode(t, buffer.Bytes())
		assert.Equal(t, "v", fields["k"])
		assert.NotContains(t, fields, "ignored")
	})
}

func TestPanic(t *testing.T) {
	logger := NewZap(PanicLevel, new(bytes.Buffer))
	assert.Panics(t, func() { logger.Panic("stop") })
	assert.Panics(t, func() { logger.Panicf("stop %d", 1) })
}

func TestFlushFile(t *testing.T) {
	file, err := os.Create(filepath.Join(t.TempDir(), "acta.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	logger := NewZap(InfoLevel, file)
	logger.Info("persisted")
	require.NoError(t, logger.Flush())

	content, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "persisted")
}

func TestStdLogger(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer)
	logger.StdLogger().Print("from std")
	flushLogger(t, logger)

	msg, err := extractMessage(buffer.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "from std", msg)
}

func TestDiscardLogger(t *testing.T) {
	DiscardLogger.Debug("x")
	DiscardLogger.Debugf("%s", "x")
	DiscardLogger.Info("x")
	DiscardLogger.Infof("%s", "x")
	DiscardLogger.Warn("x")
	DiscardLogger.Warnf("%s", "x")
	DiscardLogger.Error("x")
	DiscardLogger.Errorf("%s", "x")

	assert.Equal(t, DiscardLogger, DiscardLogger.With("actor", "test"))
	assert.Equal(t, InfoLevel, DiscardLogger.LogLevel())
	assert.Equal(t, []io.Writer{io.Discard}, DiscardLogger.LogOutput())
	assert.NotNil(t, DiscardLogger.StdLogger())
	assert.NoError(t, DiscardLogger.Flush())
	assert.False(t, DiscardLogger.Enabled(DebugLevel))
	assert.True(t, DiscardLogger.Enabled(PanicLevel))
	assert.PanicsWithValue(t, "boom", func() { DiscardLogger.Panic("boom") })
	assert.PanicsWithValue(t, "boom 1", func() { DiscardLogger.Panicf("boom %d", 1) })
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, WarningLevel, ParseLevel("warning"))
	assert.Equal(t, WarningLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, InvalidLevel, ParseLevel("loud"))
	assert.Equal(t, "invalid", InvalidLevel.String())
}

func flushLogger(t *testing.T, logger *Zap) {
	t.Helper()
	require.NoError(t, logger.Flush())
}

func decode(t *testing.T, out []byte) map[string]any {
	t.Helper()
	fields := make(map[string]any)
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &fields))
	return fields
}

func extractMessage(out []byte) (string, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(bytes.TrimSpace(out), &fields); err != nil {
		return "", err
	}
	msg, _ := fields["msg"].(string)
	return msg, nil
}

func extractLevel(out []byte) (string, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(bytes.TrimSpace(out), &fields); err != nil {
		return "", err
	}
	lvl, _ := fields["level"].(string)
	return lvl, nil
}
