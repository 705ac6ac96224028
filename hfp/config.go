package hfp

import "time"

// Config holds the tunables this engine is documented to accept: the
// role to play, the feature bitmasks to advertise/expect, whether mSBC
// was compiled in, and the SLC retry budget. Everything else (transport
// lifecycle, D-Bus wiring, logging) lives outside this package.
type Config struct {
	Role Role

	// FeaturesHF is our own HF feature bitmask, sent via AT+BRSF when
	// playing RoleHF.
	FeaturesHF uint32
	// FeaturesAG is our own AG feature bitmask, sent via +BRSF when
	// playing RoleAG.
	FeaturesAG uint32

	// EnableMSBC mirrors the compile-time ENABLE_MSBC switch: when false,
	// this engine never advertises or selects the mSBC codec regardless
	// of what the peer supports.
	EnableMSBC bool

	// SLCRetries is how many times the SLC driver will resend its
	// current message before giving up. Default 10.
	SLCRetries int
	// SLCTimeout is how long the SLC driver waits for a reply before
	// resending. Default 10s.
	SLCTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.SLCRetries == 0 {
		c.SLCRetries = 10
	}
	if c.SLCTimeout == 0 {
		c.SLCTimeout = 10 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Role != RoleHF && c.Role != RoleAG {
		return ErrNoRole
	}
	return nil
}

// ConfigBuilder assembles a Config through chained With* calls, mirroring
// the rest of the daemon's configuration layering.
type ConfigBuilder struct {
	cfg     Config
	roleSet bool
}

// NewConfigBuilder starts a new builder with no role set.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithRole(r Role) *ConfigBuilder {
	b.cfg.Role = r
	b.roleSet = true
	return b
}

func (b *ConfigBuilder) WithFeaturesHF(f uint32) *ConfigBuilder {
	b.cfg.FeaturesHF = f
	return b
}

func (b *ConfigBuilder) WithFeaturesAG(f uint32) *ConfigBuilder {
	b.cfg.FeaturesAG = f
	return b
}

func (b *ConfigBuilder) WithEnableMSBC(enable bool) *ConfigBuilder {
	b.cfg.EnableMSBC = enable
	return b
}

func (b *ConfigBuilder) WithSLCRetries(n int) *ConfigBuilder {
	b.cfg.SLCRetries = n
	return b
}

func (b *ConfigBuilder) WithSLCTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.SLCTimeout = d
	return b
}

// Build validates and returns the assembled Config, applying defaults for
// any unset tunable.
func (b *ConfigBuilder) Build() (Config, error) {
	if !b.roleSet {
		return Config{}, ErrNoRole
	}
	cfg := b.cfg
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
