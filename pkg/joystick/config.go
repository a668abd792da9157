package joystick

import (
	"flag"
	"time"

	"github.com/robotalks/alfred/pkg/joystick/device"
)

// Config defines the configurations for the pad.
type Config struct {
	DeviceIndex int
	Refresh     time.Duration
	Deadzone    int
	Verbose     bool
}

var defaultConfig = Config{
	DeviceIndex: -1,
	Refresh:     DefaultRefresh,
	Deadzone:    5,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.DurationVar(&defaultConfig.Refresh, "refresh", defaultConfig.Refresh, "Interval to resend the current speed.")
	flag.IntVar(&defaultConfig.Deadzone, "deadzone", defaultConfig.Deadzone, "Stick deadzone in percent.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Print Joystick events.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewPad creates a Pad using the config.
func (c *Config) NewPad(robot Commander) *Pad {
	pad := NewPad(robot, device.Opener(c.DeviceIndex))
	if c.Refresh > 0 {
		pad.Refresh = c.Refresh
	}
	pad.Deadzone = c.Deadzone
	pad.Verbose = c.Verbose
	return pad
}
