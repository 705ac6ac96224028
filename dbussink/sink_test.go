package dbussink

import (
	"testing"

	"github.com/blueheadset/rfcomm-hfp/hfp"
)

func TestObjectPathForDevice(t *testing.T) {
	got := ObjectPathForDevice("hci0", "AA:BB:CC:DD:EE:FF")
	want := "/org/bluealsa/hci0/dev_AA_BB_CC_DD_EE_FF/hfp"
	if string(got) != want {
		t.Errorf("ObjectPathForDevice() = %q, want %q", got, want)
	}
}

func TestCodecNameAndSamplingRate(t *testing.T) {
	cases := []struct {
		codec  hfp.Codec
		name   string
		sample uint32
	}{
		{hfp.CodecNone, "none", 8000},
		{hfp.CodecCVSD, "CVSD", 8000},
		{hfp.CodecMSBC, "mSBC", 16000},
	}
	for _, c := range cases {
		if got := codecName(c.codec); got != c.name {
			t.Errorf("codecName(%v) = %q, want %q", c.codec, got, c.name)
		}
		if got := samplingRate(c.codec); got != c.sample {
			t.Errorf("samplingRate(%v) = %d, want %d", c.codec, got, c.sample)
		}
	}
}
