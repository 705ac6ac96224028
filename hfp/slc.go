package hfp

import (
	"strconv"

	"github.com/blueheadset/rfcomm-hfp/at"
)

func formatFeatures(f uint32) string {
	return strconv.FormatUint(uint64(f), 10)
}

// Drive runs one SLC driver tick for c. timedOut is true when the loop
// is calling this because the armed SLC_TIMEOUT fired rather than because
// a frame just arrived; in that case the driver re-emits whatever it last
// sent for the current state and the retry counter advances.
//
// Drive does nothing once State is Connected: no further SLC transitions
// occur past that point.
func Drive(c *Conn, timedOut bool) error {
	if c.State == Connected {
		return nil
	}

	c.NoteTick()
	if c.HasExpectation() && !timedOut {
		return nil
	}
	if timedOut {
		c.Retries++
		if c.Retries > c.Cfg.SLCRetries {
			return ErrTimedOut
		}
	}

	if c.Role == RoleHF {
		return driveHF(c)
	}
	return driveAG(c)
}

func driveHF(c *Conn) error {
	switch c.State {
	case Disconnected:
		return writeBRSFCmd(c)

	case SLCBRSFSet:
		c.Expect(at.Resp, "", handleGenericOK)
		return nil

	case SLCBRSFSetOK:
		if c.PeerFeatures&AGFeatureCodec != 0 {
			codecs := "1"
			if c.Cfg.EnableMSBC {
				codecs = "1,2"
			}
			if err := c.Writer.WriteCmd(at.CmdSet, "+BAC", codecs); err != nil {
				return err
			}
			c.Expect(at.Resp, "", handleGenericOK)
			return nil
		}
		c.Advance(SLCBACSetOK)
		fallthrough

	case SLCBACSetOK:
		if err := c.Writer.WriteCmd(at.CmdTest, "+CIND", ""); err != nil {
			return err
		}
		c.Expect(at.Resp, "+CIND", handleCindTestResp)
		return nil

	case SLCCINDTest:
		c.Expect(at.Resp, "", handleGenericOK)
		return nil

	case SLCCINDTestOK:
		if err := c.Writer.WriteCmd(at.CmdGet, "+CIND", ""); err != nil {
			return err
		}
		c.Expect(at.Resp, "+CIND", handleCindGetResp)
		return nil

	case SLCCINDGet:
		c.Expect(at.Resp, "", handleGenericOK)
		return nil

	case SLCCINDGetOK:
		if err := c.Writer.WriteCmd(at.CmdSet, "+CMER", "3,0,0,1,0"); err != nil {
			return err
		}
		c.Expect(at.Resp, "", handleGenericOK)
		return nil

	case SLCCMERSetOK:
		c.Advance(SLCConnected)
		fallthrough

	case SLCConnected:
		if c.PeerFeatures&AGFeatureCodec == 0 {
			c.Advance(Connected)
			c.Sink.Notify(c.Transport, PropSampling|PropCodec)
		}
		// Else remain here, waiting for the AG to announce a codec via
		// an unsolicited "+BCS:" response (handleBcsResp).
		return nil

	case CCBCSSet, CCBCSSetOK, CCConnected:
		c.Advance(Connected)
		c.Sink.Notify(c.Transport, PropSampling|PropCodec)
		return nil
	}

	return nil
}

// writeBRSFCmd sends AT+BRSF=<our-HF-features> and installs the
// continuation for the AG's +BRSF response.
func writeBRSFCmd(c *Conn) error {
	if err := c.Writer.WriteCmd(at.CmdSet, "+BRSF", formatFeatures(c.Cfg.FeaturesHF)); err != nil {
		return err
	}
	c.Expect(at.Resp, "+BRSF", handleBrsfResp)
	return nil
}

func driveAG(c *Conn) error {
	switch c.State {
	case SLCCMERSetOK:
		c.Advance(SLCConnected)
		fallthrough

	case SLCConnected:
		if c.PeerFeatures&HFFeatureCodec != 0 {
			codec := CodecCVSD
			if c.MSBCAvailable {
				codec = CodecMSBC
			}
			c.SelectedCodec = codec
			c.Transport.SetCodec(codec)
			if err := c.Writer.WriteResp("+BCS", formatFeatures(uint32(codec))); err != nil {
				return err
			}
			c.Expect(at.CmdSet, "+BCS", handleBcsSet)
			c.Advance(CCBCSSet)
			return nil
		}
		c.Advance(Connected)
		c.Sink.Notify(c.Transport, PropSampling|PropCodec)
		return nil

	case CCBCSSet:
		// The HF has not confirmed yet: re-announce the selected codec.
		if err := c.Writer.WriteResp("+BCS", formatFeatures(uint32(c.SelectedCodec))); err != nil {
			return err
		}
		c.Expect(at.CmdSet, "+BCS", handleBcsSet)
		return nil

	case CCBCSSetOK, CCConnected:
		c.Advance(Connected)
		c.Sink.Notify(c.Transport, PropSampling|PropCodec)
		return nil
	}

	// All earlier states are driven passively by inbound HF commands;
	// the registered handlers advance state as a side effect.
	return nil
}
