package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igreport/pkg/config"
)

func bufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "json format", cfg: &config.LoggingConfig{Level: "info", Format: "json"}},
		{name: "invalid log level", cfg: &config.LoggingConfig{Level: "invalid"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "igreport.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := NewWithWriter(tt.cfg, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestJSONFormatWritesAppFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.WithField("username", "nasa").Info("scan started")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "igreport", line["app"])
	assert.Equal(t, "nasa", line["username"])
	assert.Equal(t, "scan started", line["message"])
}

func TestConsoleFormatWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&config.LoggingConfig{Level: "info", NoColor: true}, &buf)
	require.NoError(t, err)

	log.Warn("slow down")

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "| slow down")
	assert.NotContains(t, out, "\033[")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"panic", zerolog.PanicLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	log := bufferLogger(&buf)

	for name, logFn := range map[string]func(string){
		"debug": log.Debug,
		"info":  log.Info,
		"warn":  log.Warn,
		"error": log.Error,
	} {
		t.Run(name, func(t *testing.T) {
			buf.Reset()
			logFn(name + " message")
			assert.Contains(t, buf.String(), name+" message")
			assert.Contains(t, buf.String(), `"level":"`+name+`"`)
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	log := bufferLogger(&buf)

	base := log.WithField("field1", "value1")
	base.
		WithField("field2", "value2").
		WithFields(map[string]interface{}{"field3": "value3", "field4": 4}).
		Info("chained fields")

	out := buf.String()
	assert.Contains(t, out, `"field1":"value1"`)
	assert.Contains(t, out, `"field2":"value2"`)
	assert.Contains(t, out, `"field3":"value3"`)
	assert.Contains(t, out, `"field4":4`)

	buf.Reset()
	base.Info("parent untouched")
	assert.NotContains(t, buf.String(), "field2")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := bufferLogger(&buf)

	assert.Same(t, log, log.WithError(nil))

	log.WithError(errors.New("connection reset")).Error("request failed")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	log := bufferLogger(&buf)

	log.InfoWithFields("all types", map[string]interface{}{
		"string":   "test",
		"int":      123,
		"int64":    int64(456),
		"float":    3.5,
		"bool":     true,
		"time":     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": 5 * time.Second,
		"strings":  []string{"a", "b"},
		"ints":     []int{1, 2},
		"custom":   struct{ Name string }{Name: "x"},
	})

	out := buf.String()
	assert.Contains(t, out, `"int64":456`)
	assert.Contains(t, out, `"strings":["a","b"]`)
	assert.Contains(t, out, `"custom":{"Name":"x"}`)
}

func TestScanHelpers(t *testing.T) {
	log := NewTestLogger()

	LogScanProgress(log, "nasa", 10, 40)
	LogPacing(log, 4200*time.Millisecond)
	LogRemoteBlocked(log, "nasa", 15*time.Minute, errors.New("429"))
	LogDegraded(log, "login failed", errors.New("bad password"))

	progress, ok := log.FindMessage("Scan progress")
	require.True(t, ok)
	assert.Equal(t, "25.0%", progress.Fields["percentage"])

	pacing, ok := log.FindMessage("Pausing before next read")
	require.True(t, ok)
	assert.Equal(t, "4.2s", pacing.Fields["delay"])

	blocked, ok := log.FindMessage("Instagram is throttling requests")
	require.True(t, ok)
	assert.Equal(t, "15m0s", blocked.Fields["cooldown"])
	assert.EqualError(t, blocked.Error, "429")

	degraded, ok := log.FindMessage("Continuing in degraded mode")
	require.True(t, ok)
	assert.Equal(t, "WARN", degraded.Level)
	assert.Equal(t, true, degraded.Fields["degraded"])
}

func TestLogRequestLevels(t *testing.T) {
	log := NewTestLogger()

	LogRequest(log, "GET", "/api/v1/users/web_profile_info/", 200, 120*time.Millisecond)
	LogRequest(log, "GET", "/api/v1/feed/user/1/", 404, time.Millisecond)
	LogRequest(log, "POST", "/accounts/login/ajax/", 503, time.Millisecond)

	ok, found := log.FindMessage("HTTP request completed")
	require.True(t, found)
	assert.Equal(t, "DEBUG", ok.Level)
	assert.Equal(t, int64(120), ok.Fields["duration_ms"])

	assert.True(t, log.HasMessage("HTTP request client error"))
	assert.Len(t, log.GetMessagesByLevel("ERROR"), 1)
}

func TestComponentLifecycle(t *testing.T) {
	test := NewTestLogger()
	SetLogger(test)
	t.Cleanup(func() { SetLogger(nil) })

	LogComponentStart("mcp", map[string]interface{}{"version": "1.0.0"})
	LogComponentStop("mcp", "stdin closed")

	started, ok := test.FindMessage("Component started")
	require.True(t, ok)
	assert.Equal(t, "mcp", started.Fields["component"])
	assert.Equal(t, "1.0.0", started.Fields["version"])

	stopped, ok := test.FindMessage("Component stopped")
	require.True(t, ok)
	assert.Equal(t, "stdin closed", stopped.Fields["reason"])
}

func TestTestLogger(t *testing.T) {
	log := NewTestLogger()
	scoped := log.WithField("username", "nasa").WithError(errors.New("boom"))

	scoped.Info("first")
	scoped.WithFields(map[string]interface{}{"page": 2}).Warn("second")
	log.Info("first")

	assert.Equal(t, 2, log.CountMessages("first"))
	assert.Len(t, log.GetMessagesByLevel("WARN"), 1)
	assert.False(t, log.HasError())

	second, ok := log.FindMessage("second")
	require.True(t, ok)
	assert.Equal(t, "nasa", second.Fields["username"])
	assert.Equal(t, 2, second.Fields["page"])
	assert.EqualError(t, second.Error, "boom")
	assert.True(t, strings.Contains(log.String(), "[WARN] second"))

	log.Clear()
	assert.Empty(t, log.GetMessages())
}

func TestGlobalLogger(t *testing.T) {
	test := NewTestLogger()
	SetLogger(test)
	t.Cleanup(func() { SetLogger(nil) })

	Info("info message")
	WithField("key", "value").Warn("with field")
	WithError(errors.New("x")).Error("with error")

	assert.Same(t, test, GetLogger())
	assert.True(t, test.HasMessage("info message"))
	assert.True(t, test.HasError())
}
