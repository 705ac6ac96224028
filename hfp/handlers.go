package hfp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blueheadset/rfcomm-hfp/at"
)

// handleGenericOK is installed as a one-shot continuation after this
// engine sends a command whose only possible replies are OK or ERROR. It
// advances exactly one SLC step on OK and aborts the session on ERROR.
func handleGenericOK(c *Conn, frame at.Frame) error {
	switch frame.Value {
	case at.OK:
		c.Advance(next(c.State))
		return nil
	case at.ERROR:
		return ErrNotSupported
	default:
		return nil
	}
}

// handleBrsfSet runs on the AG side when the HF sends AT+BRSF=<feats>.
func handleBrsfSet(c *Conn, frame at.Frame) error {
	feats, err := strconv.ParseUint(frame.Value, 10, 32)
	if err != nil {
		return c.Writer.WriteError()
	}
	c.PeerFeatures = uint32(feats)
	if c.PeerFeatures&HFFeatureCodec == 0 {
		c.SelectedCodec = CodecCVSD
		c.Transport.SetCodec(CodecCVSD)
	}
	if err := c.Writer.WriteResp("+BRSF", strconv.FormatUint(uint64(c.Cfg.FeaturesAG), 10)); err != nil {
		return err
	}
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	c.Advance(SLCBRSFSetOK)
	return nil
}

// handleBrsfResp runs on the HF side when the AG replies to AT+BRSF=.
func handleBrsfResp(c *Conn, frame at.Frame) error {
	feats, err := strconv.ParseUint(frame.Value, 10, 32)
	if err != nil {
		return ErrBadMessage
	}
	c.PeerFeatures = uint32(feats)
	if c.PeerFeatures&AGFeatureCodec == 0 {
		c.SelectedCodec = CodecCVSD
		c.Transport.SetCodec(CodecCVSD)
	}
	c.Advance(SLCBRSFSet)
	return nil
}

// handleCindTest runs on the AG side for AT+CIND=?.
func handleCindTest(c *Conn, frame at.Frame) error {
	if err := c.Writer.WriteResp("+CIND", buildCindTestValue()); err != nil {
		return err
	}
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	if c.State < SLCCINDTestOK {
		c.Advance(SLCCINDTestOK)
	}
	return nil
}

// handleCindGet runs on the AG side for AT+CIND?.
func handleCindGet(c *Conn, frame at.Frame) error {
	if err := c.Writer.WriteResp("+CIND", buildCindGetValue()); err != nil {
		return err
	}
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	c.Advance(SLCCINDGetOK)
	return nil
}

// handleCindTestResp runs on the HF side as the continuation for
// AT+CIND=?, parsing the AG's indicator vocabulary.
func handleCindTestResp(c *Conn, frame at.Frame) error {
	m, err := ParseIndicatorMap(frame.Value)
	if err != nil {
		return ErrBadMessage
	}
	c.IndMap = m
	c.Advance(SLCCINDTest)
	return nil
}

// handleCindGetResp runs on the HF side as the continuation for
// AT+CIND?, parsing the AG's current indicator values.
func handleCindGetResp(c *Conn, frame at.Frame) error {
	values, err := ParseIndicatorValues(frame.Value)
	if err != nil {
		return ErrBadMessage
	}
	for pos, v := range values {
		name := c.IndMap.At(pos + 1)
		if name == "" {
			continue
		}
		prev, had := c.Transport.Indicator(name)
		c.Transport.SetIndicator(name, v)
		if name == IndBattChg && (!had || prev != v) {
			c.Device.SetBatteryLevel(v * 100 / 5)
			c.Sink.Notify(c.Transport, PropBattery)
		}
	}
	c.Advance(SLCCINDGet)
	return nil
}

// handleCmerSet runs on the AG side for AT+CMER=.
func handleCmerSet(c *Conn, frame at.Frame) error {
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	c.Advance(SLCCMERSetOK)
	return nil
}

// handleCievResp runs on the HF side for an unsolicited +CIEV: report.
func handleCievResp(c *Conn, frame at.Frame) error {
	idx, val, err := parseCievValue(frame.Value)
	if err != nil {
		return ErrBadMessage
	}
	name := c.IndMap.At(idx)
	if name == "" {
		return nil
	}
	c.Transport.SetIndicator(name, val)

	switch name {
	case IndCall, IndCallSetup:
		if c.Ping != nil {
			c.Ping()
		}
	case IndBattChg:
		c.Device.SetBatteryLevel(val * 100 / 5)
		c.Sink.Notify(c.Transport, PropBattery)
	}
	return nil
}

func parseCievValue(value string) (int, int, error) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("hfp: malformed CIEV value %q", value)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	val, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return idx, val, nil
}

// handleBiaSet runs on the AG side for AT+BIA=; we never change which
// indicators are advertised, so this only ever acknowledges.
func handleBiaSet(c *Conn, frame at.Frame) error {
	return c.Writer.WriteOK()
}

// handleVgmSet updates the shared mic gain, used on either role.
func handleVgmSet(c *Conn, frame at.Frame) error {
	g, err := strconv.Atoi(frame.Value)
	if err != nil {
		return c.Writer.WriteError()
	}
	c.CachedMicGain = g
	c.Transport.SetMicGain(g)
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	c.Sink.Notify(c.Transport, PropVolume)
	return nil
}

// handleVgsSet updates the shared speaker gain, used on either role.
func handleVgsSet(c *Conn, frame at.Frame) error {
	g, err := strconv.Atoi(frame.Value)
	if err != nil {
		return c.Writer.WriteError()
	}
	c.CachedSpkGain = g
	c.Transport.SetSpkGain(g)
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	c.Sink.Notify(c.Transport, PropVolume)
	return nil
}

// handleBtrhGet always replies bare OK; response-and-hold is a Non-goal.
func handleBtrhGet(c *Conn, frame at.Frame) error {
	return c.Writer.WriteOK()
}

// handleBcsSet runs on the AG side, confirming the HF accepted the
// codec this AG proposed via an earlier +BCS: announcement.
func handleBcsSet(c *Conn, frame at.Frame) error {
	n, err := strconv.Atoi(frame.Value)
	if err != nil {
		return c.Writer.WriteError()
	}
	if Codec(n) != c.SelectedCodec {
		return c.Writer.WriteError()
	}
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	c.Advance(CCBCSSetOK)
	return nil
}

// handleBcsResp runs on the HF side when the AG announces its chosen
// codec via an unsolicited "+BCS: <n>"; the HF must echo it back as a
// set command to confirm.
func handleBcsResp(c *Conn, frame at.Frame) error {
	n, err := strconv.Atoi(frame.Value)
	if err != nil {
		return ErrBadMessage
	}
	codec := Codec(n)
	c.SelectedCodec = codec
	c.Transport.SetCodec(codec)

	if err := c.Writer.WriteCmd(at.CmdSet, "+BCS", frame.Value); err != nil {
		return err
	}
	c.Expect(at.Resp, "", func(c *Conn, f at.Frame) error {
		if err := handleGenericOK(c, f); err != nil {
			return err
		}
		c.Sink.Notify(c.Transport, PropSampling|PropCodec)
		return nil
	})
	c.Advance(CCBCSSet)
	return nil
}

// handleBacSet runs on the AG side for AT+BAC=<codec-ids>.
func handleBacSet(c *Conn, frame at.Frame) error {
	for _, field := range strings.Split(frame.Value, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return c.Writer.WriteError()
		}
		if Codec(id) == CodecMSBC && c.Cfg.EnableMSBC {
			c.MSBCAvailable = true
		}
	}
	if err := c.Writer.WriteOK(); err != nil {
		return err
	}
	c.Advance(SLCBACSetOK)
	return nil
}

// handleIphoneaccevSet runs on the AG side for the Apple battery/dock
// vendor extension, AT+IPHONEACCEV=<count>,<key1>,<val1>,...
func handleIphoneaccevSet(c *Conn, frame at.Frame) error {
	fields := strings.Split(frame.Value, ",")
	if len(fields) == 0 {
		return c.Writer.WriteError()
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return c.Writer.WriteError()
	}
	fields = fields[1:]
	for i := 0; i < count && len(fields) >= 2; i++ {
		key := strings.TrimSpace(fields[0])
		val, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		fields = fields[2:]
		if err != nil {
			continue
		}
		switch key {
		case "1":
			c.Device.SetBatteryLevel(val * 100 / 9)
			c.Sink.Notify(c.Transport, PropBattery)
		case "2":
			c.Device.SetAccevDocked(val)
		default:
			c.Log.Warn("unrecognized IPHONEACCEV key", "key", key, "value", val)
		}
	}
	return c.Writer.WriteOK()
}

// handleXaplSet runs on the AG side for the Apple accessory
// identification extension, AT+XAPL=<vendor>-<product>-<version>,<feats>.
func handleXaplSet(c *Conn, frame at.Frame) error {
	info, err := parseXAPL(frame.Value)
	if err != nil {
		return c.Writer.WriteError()
	}
	c.Device.SetXAPL(info)
	return c.Writer.WriteResp("+XAPL", "BlueALSA,0")
}

func parseXAPL(value string) (XAPLInfo, error) {
	var vendor, product, version, features uint32
	n, err := fmt.Sscanf(value, "%x-%x-%d,%d", &vendor, &product, &version, &features)
	if err != nil || n != 4 {
		return XAPLInfo{}, fmt.Errorf("hfp: malformed XAPL value %q", value)
	}
	return XAPLInfo{
		VendorID:  vendor,
		ProductID: product,
		Version:   version,
		Features:  features,
	}, nil
}
