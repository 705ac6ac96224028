// Package config loads the daemon's process-level configuration: which
// role to play, the RFCOMM socket to attach to, the D-Bus bus to publish
// properties on, and the engine's own tunables. It mirrors the layered
// defaults/env/flags pattern the rest of this daemon's ancestry uses.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds the process-level configuration.
type Config struct {
	// Role is "hf" or "ag", selecting which side of the SLC handshake
	// this process drives.
	Role string

	// RFCOMMSocket is the path to a Unix-domain socket standing in for
	// an already-bridged RFCOMM file descriptor: this daemon never opens
	// or accepts Bluetooth sockets itself, it is handed a connected
	// byte stream.
	RFCOMMSocket string
	// HandlerSocket is the optional external AT-handler sibling's
	// socket path. Empty disables the external handler.
	HandlerSocket string

	// DBusSystemBus selects the system bus (true) or session bus
	// (false) for property-change notifications.
	DBusSystemBus bool
	// DBusObjectPath is the object path PropertiesChanged signals are
	// emitted on.
	DBusObjectPath string
	// DBusInterface is the interface name PropertiesChanged signals
	// report changes for.
	DBusInterface string

	LogLevel string

	// FeaturesHF / FeaturesAG are config.hfp.features_rfcomm_hf and
	// config.hfp.features_rfcomm_ag: the feature bitmask this process
	// advertises for the role it plays.
	FeaturesHF uint32
	FeaturesAG uint32

	// EnableMSBC mirrors the compile-time ENABLE_MSBC switch.
	EnableMSBC bool

	// SLCRetries / SLCTimeout are the SLC driver's retry budget.
	SLCRetries int
	SLCTimeout time.Duration
}

// Option is a function that modifies a Config.
type Option func(*Config) error

// Load creates a new Config by applying the given options in order.
func Load(opts ...Option) (*Config, error) {
	c := &Config{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithDefaults applies default configuration values.
func WithDefaults() Option {
	return func(c *Config) error {
		c.Role = "hf"
		c.RFCOMMSocket = "/run/bluealsa/rfcomm0"
		c.DBusSystemBus = true
		c.DBusObjectPath = "/org/bluealsa/hci0/dev_00_00_00_00_00_00/hfp"
		c.DBusInterface = "org.bluealsa.RFCOMM1"
		c.LogLevel = "info"
		c.FeaturesHF = 0x23F
		c.FeaturesAG = 0x1FF
		c.EnableMSBC = true
		c.SLCRetries = 10
		c.SLCTimeout = 10 * time.Second
		return nil
	}
}

// WithEnv loads configuration from environment variables.
func WithEnv() Option {
	return func(c *Config) error {
		if v := os.Getenv("HFP_ROLE"); v != "" {
			c.Role = v
		}
		if v := os.Getenv("RFCOMM_SOCKET"); v != "" {
			c.RFCOMMSocket = v
		}
		if v := os.Getenv("HANDLER_SOCKET"); v != "" {
			c.HandlerSocket = v
		}
		if v := os.Getenv("DBUS_SESSION_BUS"); v != "" {
			c.DBusSystemBus = false
		}
		if v := os.Getenv("DBUS_OBJECT_PATH"); v != "" {
			c.DBusObjectPath = v
		}
		if v := os.Getenv("DBUS_INTERFACE"); v != "" {
			c.DBusInterface = v
		}
		if v := os.Getenv("LOG_LEVEL"); v != "" {
			c.LogLevel = v
		}
		if v := os.Getenv("FEATURES_RFCOMM_HF"); v != "" {
			if n, err := strconv.ParseUint(v, 0, 32); err == nil {
				c.FeaturesHF = uint32(n)
			}
		}
		if v := os.Getenv("FEATURES_RFCOMM_AG"); v != "" {
			if n, err := strconv.ParseUint(v, 0, 32); err == nil {
				c.FeaturesAG = uint32(n)
			}
		}
		if v := os.Getenv("ENABLE_MSBC"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.EnableMSBC = b
			}
		}
		if v := os.Getenv("SLC_RETRIES"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.SLCRetries = n
			}
		}
		if v := os.Getenv("SLC_TIMEOUT"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.SLCTimeout = time.Duration(n) * time.Millisecond
			}
		}
		return nil
	}
}

// WithFlags loads configuration from command-line flags.
func WithFlags(fSet *flag.FlagSet) Option {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "role":
				c.Role = f.Value.String()
			case "rfcomm-socket":
				c.RFCOMMSocket = f.Value.String()
			case "handler-socket":
				c.HandlerSocket = f.Value.String()
			case "dbus-object-path":
				c.DBusObjectPath = f.Value.String()
			case "dbus-interface":
				c.DBusInterface = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			case "enable-msbc":
				if b, err := strconv.ParseBool(f.Value.String()); err == nil {
					c.EnableMSBC = b
				}
			case "slc-retries":
				if n, err := strconv.Atoi(f.Value.String()); err == nil {
					c.SLCRetries = n
				}
			case "slc-timeout-ms":
				if n, err := strconv.Atoi(f.Value.String()); err == nil {
					c.SLCTimeout = time.Duration(n) * time.Millisecond
				}
			}
		})
		return nil
	}
}
