package hfp

import (
	"errors"
	"io"
	"testing"
)

type discardRW struct{}

func (discardRW) Read([]byte) (int, error)  { return 0, io.EOF }
func (discardRW) Write(p []byte) (int, error) { return len(p), nil }

func newDriveTestConn(t *testing.T, role Role) *Conn {
	t.Helper()
	cfg, err := NewConfigBuilder().WithRole(role).WithFeaturesHF(0x23F).WithSLCRetries(2).Build()
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	return NewConn(role, cfg, discardRW{}, NewSharedTransport(), NewDeviceRecord(), nil)
}

func TestDriveHFSendsBRSFAndArmsExpectation(t *testing.T) {
	c := newDriveTestConn(t, RoleHF)

	if err := Drive(c, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State != Disconnected {
		t.Errorf("state advanced without a reply: %v", c.State)
	}
	if !c.HasExpectation() {
		t.Error("expected a +BRSF continuation to be armed")
	}
}

func TestDriveRetryCounterResetsOnStateChange(t *testing.T) {
	c := newDriveTestConn(t, RoleHF)

	if err := Drive(c, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Simulate one timeout without a reply.
	if err := Drive(c, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Retries != 1 {
		t.Errorf("retries = %d, want 1", c.Retries)
	}

	// A genuine state advance must zero the counter on the next tick.
	c.Advance(SLCBRSFSet)
	c.ClearExpectation()
	if err := Drive(c, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Retries != 0 {
		t.Errorf("retries = %d after state advance, want 0", c.Retries)
	}
}

func TestDriveTimesOutAfterRetryBudget(t *testing.T) {
	c := newDriveTestConn(t, RoleHF)

	if err := Drive(c, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < c.Cfg.SLCRetries; i++ {
		if err := Drive(c, true); err != nil {
			t.Fatalf("unexpected error on retry %d: %v", i, err)
		}
	}
	// The (SLCRetries+1)th timeout exceeds the budget.
	if err := Drive(c, true); !errors.Is(err, ErrTimedOut) {
		t.Errorf("expected ErrTimedOut, got %v", err)
	}
}

func TestDriveNoopOnceConnected(t *testing.T) {
	c := newDriveTestConn(t, RoleHF)
	c.Advance(Connected)

	if err := Drive(c, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HasExpectation() {
		t.Error("Drive should not arm any expectation once Connected")
	}
}
