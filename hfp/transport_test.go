package hfp

import "testing"

func TestSharedTransportIndicators(t *testing.T) {
	tr := NewSharedTransport()

	if _, ok := tr.Indicator(IndCall); ok {
		t.Error("expected no value before first SetIndicator")
	}

	tr.SetIndicator(IndCall, 1)
	v, ok := tr.Indicator(IndCall)
	if !ok || v != 1 {
		t.Errorf("Indicator(call) = (%d, %v), want (1, true)", v, ok)
	}
}

func TestSharedTransportAtomicFields(t *testing.T) {
	tr := NewSharedTransport()

	tr.SetCodec(CodecMSBC)
	if tr.Codec() != CodecMSBC {
		t.Errorf("Codec() = %v, want mSBC", tr.Codec())
	}

	tr.SetMicGain(7)
	tr.SetSpkGain(12)
	if tr.MicGain() != 7 || tr.SpkGain() != 12 {
		t.Errorf("gains = (%d, %d), want (7, 12)", tr.MicGain(), tr.SpkGain())
	}

	tr.SetFeatures(0x23F)
	if tr.Features() != 0x23F {
		t.Errorf("Features() = %#x, want 0x23F", tr.Features())
	}
}

func TestDeviceRecord(t *testing.T) {
	d := NewDeviceRecord()

	d.SetBatteryLevel(60)
	if d.BatteryLevel() != 60 {
		t.Errorf("BatteryLevel() = %d, want 60", d.BatteryLevel())
	}

	d.SetXAPL(XAPLInfo{VendorID: 0x4D, ProductID: 0x1, Version: 0x100, Features: 0xF})
	got := d.XAPL()
	if got.VendorID != 0x4D || got.ProductID != 0x1 {
		t.Errorf("XAPL() = %+v", got)
	}

	d.SetAccevDocked(1)
	if got := d.XAPL(); got.AccevDocked != 1 {
		t.Errorf("AccevDocked = %d, want 1", got.AccevDocked)
	}
}

func TestPropertyMaskString(t *testing.T) {
	cases := map[PropertyMask]string{
		0:                               "NONE",
		PropCodec:                       "CODEC",
		PropSampling | PropCodec:        "SAMPLING|CODEC",
		PropVolume | PropBattery:        "VOLUME|BATTERY",
	}
	for mask, want := range cases {
		if got := mask.String(); got != want {
			t.Errorf("PropertyMask(%d).String() = %q, want %q", mask, got, want)
		}
	}
}
