package health

import (
	"context"
	"testing"

	"aria/client/internal/focus"
)

func TestCheckAllHealthy(t *testing.T) {
	mgr := focus.NewManager([]focus.ChannelSpec{{Name: "dialog", Priority: 100}}, nil)
	defer mgr.Shutdown()

	status := CheckAll(context.Background(), mgr)
	if !status.OK {
		t.Fatalf("expected healthy status, got %s", status)
	}
	if len(status.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(status.Checks))
	}
}

func TestCheckAllNoChannels(t *testing.T) {
	mgr := focus.NewManager(nil, nil)
	defer mgr.Shutdown()

	status := CheckAll(context.Background(), mgr)
	if status.OK {
		t.Fatal("expected failure with no channels registered")
	}
}
