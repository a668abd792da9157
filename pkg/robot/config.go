package robot

import (
	"flag"
	"time"

	"github.com/robotalks/alfred/pkg/hal"
	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/watchdog"
)

// Config defines the configuration of the robot.
type Config struct {
	Identity          string
	SampleInterval    time.Duration
	WatchdogSubTick   time.Duration
	WatchdogThreshold int
}

var defaultConfig = Config{
	Identity:          link.RespIdentify,
	WatchdogSubTick:   watchdog.DefaultSubTick,
	WatchdogThreshold: watchdog.DefaultThreshold,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.SampleInterval, "sample-interval", defaultConfig.SampleInterval, "Interval between analog samples when streaming, 0 for no pacing.")
	flag.DurationVar(&defaultConfig.WatchdogSubTick, "watchdog-tick", defaultConfig.WatchdogSubTick, "Watchdog sub-tick interval.")
	flag.IntVar(&defaultConfig.WatchdogThreshold, "watchdog-ticks", defaultConfig.WatchdogThreshold, "Number of sub-ticks in a watchdog period.")
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

// NewRobot creates the Robot and its Watchdog sharing the same
// connection state.
func (c *Config) NewRobot(recv *link.Receiver, board hal.Board) (*Robot, *watchdog.Watchdog) {
	state := &watchdog.ConnState{}
	r := New(recv, board, state)
	if c.Identity != "" {
		r.Identity = c.Identity
	}
	r.SampleInterval = c.SampleInterval
	wd := watchdog.New(state, r.Motors, r.Indicator)
	if c.WatchdogSubTick > 0 {
		wd.SubTick = c.WatchdogSubTick
	}
	if c.WatchdogThreshold > 0 {
		wd.Threshold = c.WatchdogThreshold
	}
	return r, wd
}
