package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"productinventory/internal/logging"
)

func TestOnSIGTERMRunsEveryCloser(t *testing.T) {
	var buf bytes.Buffer
	var order []string
	hook := onSIGTERM(logging.NewWriter(&buf, zapcore.InfoLevel),
		func() error { order = append(order, "store"); return errors.New("pool busy") },
		func() error { order = append(order, "sync"); return nil },
	)
	hook()
	if strings.Join(order, ",") != "store,sync" {
		t.Fatalf("unexpected close order %v", order)
	}
	out := buf.String()
	if !strings.Contains(out, "shutdown_signal") || !strings.Contains(out, "pool busy") {
		t.Fatalf("unexpected log output %s", out)
	}
}
