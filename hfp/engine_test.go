package hfp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/blueheadset/rfcomm-hfp/at"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// expectFrame reads the next frame off peer and fails the test if it
// doesn't match (typ, command, value).
func expectFrame(t *testing.T, r *Reader, typ at.Type, command, value string) {
	t.Helper()
	f, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if f.Type != typ || f.Command != command || f.Value != value {
		t.Fatalf("got frame %+v, want {%v %q %q}", f, typ, command, value)
	}
}

func TestEngineHFFullSLCWithCodecNegotiation(t *testing.T) {
	engineSide, peerSide := net.Pipe()
	defer engineSide.Close()
	defer peerSide.Close()

	cfg, err := NewConfigBuilder().
		WithRole(RoleHF).
		WithFeaturesHF(0x23F).
		WithEnableMSBC(true).
		WithSLCTimeout(2 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}

	ctrl := gomock.NewController(t)
	sink := NewMockPropertySink(ctrl)
	sink.EXPECT().Notify(gomock.Any(), PropSampling|PropCodec).MinTimes(1)
	// The +CIND? response below reports battchg=3, which is published once.
	sink.EXPECT().Notify(gomock.Any(), PropBattery).Times(1)

	transport := NewSharedTransport()
	conn := NewConn(RoleHF, cfg, engineSide, transport, NewDeviceRecord(), sink)
	engine := NewEngine(conn, nil, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	peerR := NewReader(peerSide)
	peerW := NewWriter(peerSide, nil)

	expectFrame(t, peerR, at.CmdSet, "+BRSF", "575")
	if err := peerW.WriteResp("+BRSF", "512"); err != nil {
		t.Fatalf("writing +BRSF resp: %v", err)
	}
	if err := peerW.WriteOK(); err != nil {
		t.Fatalf("writing OK: %v", err)
	}

	expectFrame(t, peerR, at.CmdSet, "+BAC", "1,2")
	if err := peerW.WriteOK(); err != nil {
		t.Fatalf("writing OK: %v", err)
	}

	expectFrame(t, peerR, at.CmdTest, "+CIND", "")
	if err := peerW.WriteResp("+CIND", `("call",(0,1)),("callsetup",(0-3)),("service",(0-1)),("signal",(0-5)),("roam",(0-1)),("battchg",(0-5)),("callheld",(0-2))`); err != nil {
		t.Fatalf("writing CIND test resp: %v", err)
	}
	if err := peerW.WriteOK(); err != nil {
		t.Fatalf("writing OK: %v", err)
	}

	expectFrame(t, peerR, at.CmdGet, "+CIND", "")
	if err := peerW.WriteResp("+CIND", "0,0,1,4,0,3,0"); err != nil {
		t.Fatalf("writing CIND get resp: %v", err)
	}
	if err := peerW.WriteOK(); err != nil {
		t.Fatalf("writing OK: %v", err)
	}

	expectFrame(t, peerR, at.CmdSet, "+CMER", "3,0,0,1,0")
	if err := peerW.WriteOK(); err != nil {
		t.Fatalf("writing OK: %v", err)
	}

	if err := peerW.WriteResp("+BCS", "2"); err != nil {
		t.Fatalf("writing BCS announcement: %v", err)
	}
	expectFrame(t, peerR, at.CmdSet, "+BCS", "2")
	if err := peerW.WriteOK(); err != nil {
		t.Fatalf("writing OK: %v", err)
	}

	// Give the engine a moment to process the final OK and reach
	// Connected before tearing down the pipe.
	time.Sleep(50 * time.Millisecond)
	cancel()

	err = <-done
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("engine.Run returned unexpected error: %v", err)
	}
	if conn.State != Connected {
		t.Errorf("final state = %v, want CONNECTED", conn.State)
	}
	if conn.SelectedCodec != CodecMSBC {
		t.Errorf("selected codec = %v, want mSBC", conn.SelectedCodec)
	}
}

func TestEngineAGRoleWithoutCodecNegotiation(t *testing.T) {
	engineSide, peerSide := net.Pipe()
	defer engineSide.Close()
	defer peerSide.Close()

	cfg, err := NewConfigBuilder().
		WithRole(RoleAG).
		WithFeaturesAG(0x1FF).
		WithSLCTimeout(2 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}

	ctrl := gomock.NewController(t)
	sink := NewMockPropertySink(ctrl)
	sink.EXPECT().Notify(gomock.Any(), PropSampling|PropCodec).MinTimes(1)

	transport := NewSharedTransport()
	conn := NewConn(RoleAG, cfg, engineSide, transport, NewDeviceRecord(), sink)
	engine := NewEngine(conn, nil, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	peerR := NewReader(peerSide)
	peerW := NewWriter(peerSide, nil)

	if err := peerW.WriteCmd(at.CmdSet, "+BRSF", "319"); err != nil {
		t.Fatalf("writing +BRSF=: %v", err)
	}
	expectFrame(t, peerR, at.Resp, "+BRSF", "511")
	expectFrame(t, peerR, at.Resp, "", at.OK)

	if err := peerW.WriteCmd(at.CmdTest, "+CIND", ""); err != nil {
		t.Fatalf("writing +CIND=?: %v", err)
	}
	if _, err := peerR.ReadFrame(); err != nil {
		t.Fatalf("reading CIND test response: %v", err)
	}
	expectFrame(t, peerR, at.Resp, "", at.OK)

	if err := peerW.WriteCmd(at.CmdGet, "+CIND", ""); err != nil {
		t.Fatalf("writing +CIND?: %v", err)
	}
	if _, err := peerR.ReadFrame(); err != nil {
		t.Fatalf("reading CIND get response: %v", err)
	}
	expectFrame(t, peerR, at.Resp, "", at.OK)

	if err := peerW.WriteCmd(at.CmdSet, "+CMER", "3,0,0,1,0"); err != nil {
		t.Fatalf("writing +CMER=: %v", err)
	}
	expectFrame(t, peerR, at.Resp, "", at.OK)

	time.Sleep(50 * time.Millisecond)
	cancel()

	err = <-done
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("engine.Run returned unexpected error: %v", err)
	}
	if conn.State != Connected {
		t.Errorf("final state = %v, want CONNECTED", conn.State)
	}
	if conn.SelectedCodec != CodecCVSD {
		t.Errorf("selected codec = %v, want CVSD", conn.SelectedCodec)
	}
}

func TestEngineUnsupportedCommandRepliesError(t *testing.T) {
	engineSide, peerSide := net.Pipe()
	defer engineSide.Close()
	defer peerSide.Close()

	cfg, err := NewConfigBuilder().WithRole(RoleAG).WithFeaturesAG(0x1FF).Build()
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}

	conn := NewConn(RoleAG, cfg, engineSide, NewSharedTransport(), NewDeviceRecord(), nil)
	engine := NewEngine(conn, nil, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	peerR := NewReader(peerSide)
	peerW := NewWriter(peerSide, nil)

	if err := peerW.WriteCmd(at.CmdSet, "+XYZZY", "1"); err != nil {
		t.Fatalf("writing +XYZZY=: %v", err)
	}
	expectFrame(t, peerR, at.Resp, "", at.ERROR)

	cancel()
	<-done
}
