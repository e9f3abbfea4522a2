package errorsink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func TestLogger_CapturesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	hlog.SetOutput(&buf)
	t.Cleanup(func() { hlog.SetOutput(os.Stderr) })

	l := &Logger{Component: "gameaction"}
	l.Capture(context.Background(), errors.New("publish to viewer 2: closed"))
	l.Capture(context.Background(), nil)

	if got := l.Captured(); got != 1 {
		t.Fatalf("captured mismatch: got=%d want=1", got)
	}
	if out := buf.String(); !strings.Contains(out, "gameaction: publish to viewer 2: closed") {
		t.Fatalf("log output mismatch: %q", out)
	}
}
