package hfp

import (
	"bytes"
	"testing"

	"github.com/blueheadset/rfcomm-hfp/at"
)

func TestWriterFormatsFrames(t *testing.T) {
	var buf bytes.Buffer
	var logged []at.Frame
	w := NewWriter(&buf, func(f at.Frame, wire []byte) { logged = append(logged, f) })

	if err := w.WriteCmd(at.CmdSet, "+BRSF", "575"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteResp("+BRSF", "512"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteOK(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.WriteError(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "AT+BRSF=575\r+BRSF: 512\r\nOK\r\nERROR\r\n"
	if buf.String() != want {
		t.Errorf("wire bytes = %q, want %q", buf.String(), want)
	}
	if len(logged) != 4 {
		t.Errorf("log callback invoked %d times, want 4", len(logged))
	}
}

func TestWriterRaw(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)

	if err := w.WriteRaw([]byte("AT+CUSTOM\r")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "AT+CUSTOM\r" {
		t.Errorf("wire bytes = %q", buf.String())
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

func TestWriterShortWriteIsFatal(t *testing.T) {
	w := NewWriter(shortWriter{}, nil)
	if err := w.WriteOK(); err == nil {
		t.Error("expected error on short write")
	}
}
