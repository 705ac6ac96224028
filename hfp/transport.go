package hfp

import (
	"sync"
	"sync/atomic"
)

// PropertyMask identifies which transport properties changed in a single
// notification. The property sink is always called synchronously and
// must not block — it exists to fan a change out to e.g. D-Bus
// subscribers, not to do the work itself.
type PropertyMask uint8

const (
	PropSampling PropertyMask = 1 << iota
	PropCodec
	PropVolume
	PropBattery
)

func (m PropertyMask) String() string {
	var names []string
	if m&PropSampling != 0 {
		names = append(names, "SAMPLING")
	}
	if m&PropCodec != 0 {
		names = append(names, "CODEC")
	}
	if m&PropVolume != 0 {
		names = append(names, "VOLUME")
	}
	if m&PropBattery != 0 {
		names = append(names, "BATTERY")
	}
	if len(names) == 0 {
		return "NONE"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += "|" + n
	}
	return out
}

// PropertySink receives synchronous, non-blocking notifications when
// fields of a SharedTransport change. A typical implementation forwards
// the change to a D-Bus PropertiesChanged signal; see package dbussink.
type PropertySink interface {
	Notify(t *SharedTransport, mask PropertyMask)
}

// NopSink discards every notification. It is the zero-value default so
// an Engine is usable without wiring a real sink.
type NopSink struct{}

func (NopSink) Notify(*SharedTransport, PropertyMask) {}

// SharedTransport is the record this engine shares with the audio-serving
// side of the daemon. This engine owns codec, features, and the
// indicator table; mic/speaker gain are shared — the audio side may also
// write them, publishing the change by sending SignalSetVolume on the
// engine's signal channel.
//
// Every field uses atomics or a narrowly-scoped mutex so no lock is ever
// held across a socket write.
type SharedTransport struct {
	codec       atomic.Int32
	micGain     atomic.Int32
	spkGain     atomic.Int32
	hfpFeatures atomic.Uint32

	indMu sync.RWMutex
	inds  map[IndicatorName]int
}

// NewSharedTransport returns a transport record with no codec negotiated
// and an empty indicator table.
func NewSharedTransport() *SharedTransport {
	return &SharedTransport{inds: make(map[IndicatorName]int)}
}

func (t *SharedTransport) Codec() Codec        { return Codec(t.codec.Load()) }
func (t *SharedTransport) SetCodec(c Codec)    { t.codec.Store(int32(c)) }
func (t *SharedTransport) MicGain() int        { return int(t.micGain.Load()) }
func (t *SharedTransport) SetMicGain(g int)    { t.micGain.Store(int32(g)) }
func (t *SharedTransport) SpkGain() int        { return int(t.spkGain.Load()) }
func (t *SharedTransport) SetSpkGain(g int)    { t.spkGain.Store(int32(g)) }
func (t *SharedTransport) Features() uint32    { return t.hfpFeatures.Load() }
func (t *SharedTransport) SetFeatures(f uint32) { t.hfpFeatures.Store(f) }

// Indicator returns the current value of indicator name and whether it
// has ever been set.
func (t *SharedTransport) Indicator(name IndicatorName) (int, bool) {
	t.indMu.RLock()
	defer t.indMu.RUnlock()
	v, ok := t.inds[name]
	return v, ok
}

// SetIndicator stores the current value of indicator name.
func (t *SharedTransport) SetIndicator(name IndicatorName, value int) {
	t.indMu.Lock()
	defer t.indMu.Unlock()
	t.inds[name] = value
}

// XAPLInfo captures the Apple accessory identification reported via
// AT+XAPL.
type XAPLInfo struct {
	VendorID    uint32
	ProductID   uint32
	Version     uint32
	Features    uint32
	AccevDocked int
}

// DeviceRecord is the shared sibling of SharedTransport; this engine
// writes only the battery level and Apple accessory descriptors.
type DeviceRecord struct {
	batteryLevel atomic.Int32

	xaplMu sync.Mutex
	xapl   XAPLInfo
}

// NewDeviceRecord returns a device record with battery level unknown (0)
// and no Apple accessory information.
func NewDeviceRecord() *DeviceRecord {
	return &DeviceRecord{}
}

func (d *DeviceRecord) BatteryLevel() int     { return int(d.batteryLevel.Load()) }
func (d *DeviceRecord) SetBatteryLevel(v int) { d.batteryLevel.Store(int32(v)) }

func (d *DeviceRecord) XAPL() XAPLInfo {
	d.xaplMu.Lock()
	defer d.xaplMu.Unlock()
	return d.xapl
}

func (d *DeviceRecord) SetXAPL(info XAPLInfo) {
	d.xaplMu.Lock()
	defer d.xaplMu.Unlock()
	d.xapl = info
}

func (d *DeviceRecord) SetAccevDocked(v int) {
	d.xaplMu.Lock()
	defer d.xaplMu.Unlock()
	d.xapl.AccevDocked = v
}
