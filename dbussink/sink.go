// Package dbussink implements hfp.PropertySink by emitting standard
// org.freedesktop.DBus.Properties.PropertiesChanged signals, the same
// convention BlueZ itself uses for its own object properties.
package dbussink

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/blueheadset/rfcomm-hfp/hfp"
)

const propsIface = "org.freedesktop.DBus.Properties"

// Sink publishes transport property changes onto the D-Bus connection it
// was given (system or session bus) as PropertiesChanged signals for a given object path and interface name
// (the path/interface that represents this RFCOMM session's transport
// object on the bus).
type Sink struct {
	bus   *dbus.Conn
	path  dbus.ObjectPath
	iface string
}

// New returns a Sink that emits signals for path/iface over bus. bus is
// owned by the caller; Sink never closes it.
func New(bus *dbus.Conn, path dbus.ObjectPath, iface string) *Sink {
	return &Sink{bus: bus, path: path, iface: iface}
}

// Notify implements hfp.PropertySink. It never blocks: Emit queues the
// signal on the bus connection's write side and returns. PropBattery is
// deliberately not handled here: battery lives on hfp.DeviceRecord, which
// Notify never sees, so a battery-only mask produces no signal.
func (s *Sink) Notify(t *hfp.SharedTransport, mask hfp.PropertyMask) {
	changed := map[string]dbus.Variant{}

	if mask&hfp.PropCodec != 0 {
		changed["Codec"] = dbus.MakeVariant(codecName(t.Codec()))
	}
	if mask&hfp.PropSampling != 0 {
		changed["SamplingFrequency"] = dbus.MakeVariant(samplingRate(t.Codec()))
	}
	if mask&hfp.PropVolume != 0 {
		changed["SpeakerGain"] = dbus.MakeVariant(uint16(t.SpkGain()))
		changed["MicrophoneGain"] = dbus.MakeVariant(uint16(t.MicGain()))
	}
	if len(changed) == 0 {
		return
	}
	s.emit(changed)
}

func (s *Sink) emit(changed map[string]dbus.Variant) {
	err := s.bus.Emit(s.path, propsIface+".PropertiesChanged", s.iface, changed, []string{})
	if err != nil {
		// Emit failures are fire-and-forget from the engine's point of
		// view; the caller (hfp.Engine) has no recovery action for a
		// broken D-Bus connection, so this is swallowed here rather
		// than threaded back as a session error.
		_ = err
	}
}

func codecName(c hfp.Codec) string {
	switch c {
	case hfp.CodecMSBC:
		return "mSBC"
	case hfp.CodecCVSD:
		return "CVSD"
	default:
		return "none"
	}
}

func samplingRate(c hfp.Codec) uint32 {
	if c == hfp.CodecMSBC {
		return 16000
	}
	return 8000
}

// ObjectPathForDevice builds the conventional BlueZ-style transport
// object path for a device's Bluetooth address, e.g.
// "/org/bluealsa/hci0/dev_AA_BB_CC_DD_EE_FF/hfp".
func ObjectPathForDevice(adapter, mac string) dbus.ObjectPath {
	safe := make([]byte, 0, len(mac))
	for _, c := range []byte(mac) {
		if c == ':' {
			safe = append(safe, '_')
			continue
		}
		safe = append(safe, c)
	}
	return dbus.ObjectPath(fmt.Sprintf("/org/bluealsa/%s/dev_%s/hfp", adapter, safe))
}
