package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExecuteReturnsStdout(t *testing.T) {
	out, err := New().Execute(context.Background(), "sh", "-c", "echo processed")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out) != "processed" {
		t.Errorf("stdout = %q", out)
	}
}

func TestExecuteFailureCarriesStderr(t *testing.T) {
	_, err := New().Execute(context.Background(), "sh", "-c", "echo stream corrupt >&2; exit 3")
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if !strings.Contains(err.Error(), "stream corrupt") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

func TestExecuteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Execute(ctx, "sleep", "5")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want wrapped context.Canceled", err)
	}
}
