package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/freekieb7/werver/test"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "werver"})
	test.AssertNoError(t, err)
	test.AssertNoError(t, shutdown(context.Background()))
}

func TestLoggerWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	previous := console
	console = &buf
	t.Cleanup(func() { console = previous })

	logger := Logger("werver/test")
	logger.Info("accepting connections", "addr", "127.0.0.1:7878")
	logger.Debug("hidden at the default level")

	out := buf.String()
	if !strings.Contains(out, "msg=\"accepting connections\"") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "logger=werver/test") {
		t.Errorf("missing logger name in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
}

func TestConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	previous := console
	console = &buf
	t.Cleanup(func() {
		console = previous
		ConsoleLevel.Set(slog.LevelInfo)
	})

	ConsoleLevel.Set(slog.LevelDebug)
	Logger("werver/test").With("conn", "abc").Debug("now visible")

	out := buf.String()
	if !strings.Contains(out, "now visible") || !strings.Contains(out, "conn=abc") {
		t.Errorf("unexpected console output %q", out)
	}
}
